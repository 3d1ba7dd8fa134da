package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.GridConfig {
	return &engine.GridConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Rows:        5,
		Width:       100,
		Layout: []string{
			"S....",
			".###.",
			".....",
			".#.#.",
			"....E",
		},
	}
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GridConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	path := filepath.Join(dir, filename)
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		blank := createValidConfig()
		blank.Name = "Blank"
		writeConfigFile(t, dir, "blank", blank)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in grid", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed even without config files, got error: %v", err)
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Rows != engine.DefaultRows {
			t.Errorf("Expected %d rows, got %d", engine.DefaultRows, defaultConfig.Rows)
		}
	})

	t.Run("first valid file when blank is missing", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		other := createValidConfig()
		other.Name = "Other"
		writeConfigFile(t, dir, "other", other)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Other" {
			t.Errorf("Expected default 'Other', got '%s'", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	blank := createValidConfig()
	blank.Name = "Blank"
	writeConfigFile(t, dir, "blank", blank)

	maze := createValidConfig()
	maze.Name = "Maze"
	maze.Rows = 3
	maze.Layout = []string{"S#.", ".#.", "..E"}
	writeConfigFile(t, dir, "maze", maze)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("maze")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Maze" {
			t.Errorf("Expected config name 'Maze', got '%s'", config.Name)
		}
		if config.Rows != 3 {
			t.Errorf("Expected 3 rows, got %d", config.Rows)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("maze.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Maze" {
			t.Errorf("Expected config name 'Maze', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("maze")

		config2, err := manager.LoadConfig("maze")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if err != ErrConfigNotFound {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`)
		err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644)
		if err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err = manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644)
		if err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err = manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	blank := createValidConfig()
	blank.Name = "Blank Config"
	writeConfigFile(t, dir, "blank", blank)

	other := createValidConfig()
	other.Name = "Another"
	writeConfigFile(t, dir, "another", other)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := manager.GetDefault()
	if config == nil {
		t.Fatal("Expected default config to be non-nil")
	}
	if config.Name != "Blank Config" {
		t.Errorf("Expected default config name 'Blank Config', got '%s'", config.Name)
	}

	if err := manager.SetDefault("another"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if got := manager.GetDefault().Name; got != "Another" {
		t.Errorf("Expected default 'Another' after SetDefault, got '%s'", got)
	}

	if err := manager.SetDefault("missing"); err != ErrConfigNotFound {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	configs := []struct {
		filename string
		name     string
	}{
		{"blank", "Blank"},
		{"maze", "Maze"},
		{"spiral", "Spiral"},
		{"sealed", "Sealed"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Also add a non-JSON file that should be ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Errorf("Expected 4 configs, got %d", len(configList))
	}

	foundConfigs := make(map[string]bool)
	for _, info := range configList {
		foundConfigs[info.Name] = true
		if !info.HasStart || !info.HasEnd {
			t.Errorf("Expected %s to report start and end", info.ConfigID)
		}
		if info.Rows != 5 {
			t.Errorf("Expected 5 rows for %s, got %d", info.ConfigID, info.Rows)
		}
	}

	for _, cfg := range configs {
		if !foundConfigs[cfg.name] {
			t.Errorf("Config '%s' not found in list", cfg.name)
		}
	}
}

func TestManager_RefreshCache(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "blank", config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.Description != "Test configuration" {
		t.Errorf("Unexpected initial description %q", loaded.Description)
	}

	config.Description = "Updated"
	writeConfigFile(t, dir, "changeable", config)

	// Still cached
	cached, _ := manager.LoadConfig("changeable")
	if cached.Description != "Test configuration" {
		t.Errorf("Expected cached description, got %q", cached.Description)
	}

	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.Description != "Updated" {
		t.Errorf("Expected reloaded description 'Updated', got %q", reloaded.Description)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("valid config", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Errorf("Expected saved.json on disk: %v", err)
		}
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("Failed to load saved config: %v", err)
		}
		if loaded.Name != "Saved" {
			t.Errorf("Expected 'Saved', got '%s'", loaded.Name)
		}
	})

	t.Run("invalid layout", func(t *testing.T) {
		config := createValidConfig()
		config.Layout[0] = "SS..."
		err := manager.SaveConfig("broken", config)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("path in name", func(t *testing.T) {
		err := manager.SaveConfig("../escape", createValidConfig())
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "blank", createValidConfig())

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			_, err := manager.LoadConfig(configName)
			if err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "blank", createValidConfig())

	testConfig := createValidConfig()
	testConfig.Name = "Test"
	writeConfigFile(t, dir, "test", testConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	for i := 0; i < 10; i++ {
		config, err := manager.LoadConfig("test")
		if err != nil {
			t.Fatalf("Failed to load config on iteration %d: %v", i, err)
		}
		if config.Name != "Test" {
			t.Errorf("Unexpected config name on iteration %d", i)
		}
	}

	// blank and test
	if manager.count() != 2 {
		t.Errorf("Expected 2 configs in cache, got %d", manager.count())
	}
}

func (m *Manager) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
