package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
	"github.com/wricardo/mcp-training/pathviz/transport/mcp"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "A* Path Visualizer Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestInitializeServices(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	visualizerService, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if visualizerService == nil {
		t.Fatal("Expected visualizer service to be initialized")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	originalConfigDir := *configDir
	*configDir = "/non/existent/path"
	defer func() { *configDir = originalConfigDir }()

	_, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_UnknownDefault(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	originalConfigDir, originalDefault := *configDir, *defaultConfig
	*configDir = "configs"
	*defaultConfig = "does-not-exist"
	defer func() {
		*configDir = originalConfigDir
		*defaultConfig = originalDefault
	}()

	if _, err := initializeServices(); err == nil {
		t.Error("Expected error for unknown default layout")
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}

	if *stepDelay < 0 {
		t.Errorf("Step delay should not be negative: %s", *stepDelay)
	}

	if *sessionTTL <= 0 {
		t.Errorf("Session TTL should be positive: %s", *sessionTTL)
	}
}

// Note: main(), runHTTPServer() and runStdioMCPWithInternalServer() block;
// the helpers they are built from are tested below.

func TestResolveTunnel(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		auth    string
		domain  string
		env     map[string]string
		want    tunnelSettings
	}{
		{"disabled", false, "tok", "", nil, tunnelSettings{}},
		{"flag without token", true, "", "", nil, tunnelSettings{}},
		{"flag with token", true, "tok", "", nil, tunnelSettings{Enabled: true, AuthToken: "tok"}},
		{
			"env enables", false, "", "",
			map[string]string{"NGROK_ENABLED": "1", "NGROK_AUTHTOKEN": "env-tok", "NGROK_DOMAIN": "x.ngrok.app"},
			tunnelSettings{Enabled: true, AuthToken: "env-tok", Domain: "x.ngrok.app"},
		},
		{
			"underscore token", false, "", "",
			map[string]string{"NGROK_ENABLED": "true", "NGROK_AUTH_TOKEN": "alt"},
			tunnelSettings{Enabled: true, AuthToken: "alt"},
		},
		{
			"flags win", true, "flag-tok", "flag.ngrok.app",
			map[string]string{"NGROK_AUTHTOKEN": "env-tok", "NGROK_DOMAIN": "env.ngrok.app"},
			tunnelSettings{Enabled: true, AuthToken: "flag-tok", Domain: "flag.ngrok.app"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string { return tt.env[key] }
			if got := resolveTunnel(tt.enabled, tt.auth, tt.domain, getenv); got != tt.want {
				t.Errorf("resolveTunnel() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMCPHTTPHandler(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := newRootHandler(api, mcp.NewClient("http://127.0.0.1:1").GetMCPServer())

	t.Run("rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", w.Code)
		}
	})

	t.Run("answers ping", func(t *testing.T) {
		w := httptest.NewRecorder()
		body := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}`)
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/mcp", body))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"id":7`) {
			t.Errorf("Expected response to echo the request id, got %s", w.Body.String())
		}
	})

	t.Run("other paths reach the API", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusTeapot {
			t.Errorf("Expected API handler, got status %d", w.Code)
		}
	})
}

func TestStartInternalAPI(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	baseURL, httpServer, err := startInternalAPI(svc)
	if err != nil {
		t.Fatalf("startInternalAPI failed: %v", err)
	}
	defer httpServer.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	if !apiAvailable(baseURL, client) {
		t.Fatalf("Expected internal API to answer at %s", baseURL)
	}

	resp, err := client.Get(baseURL + "/api/configs")
	if err != nil {
		t.Fatalf("List configs failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "maze") {
		t.Errorf("Expected shipped layouts listed, got %s", data)
	}
}

func TestAPIAvailable(t *testing.T) {
	client := &http.Client{Timeout: time.Second}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()
	if apiAvailable(broken.URL, client) {
		t.Error("A failing /health must not count as available")
	}

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	if apiAvailable(closed.URL, client) {
		t.Error("A closed server must not count as available")
	}
}

func TestShippedLayoutsRun(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	originalConfigDir, originalDelay := *configDir, *stepDelay
	*configDir = "configs"
	*stepDelay = 0
	defer func() {
		*configDir = originalConfigDir
		*stepDelay = originalDelay
	}()

	svc, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	tests := []struct {
		config string
		found  bool
		cost   int
	}{
		{"maze", true, 43},
		{"corridor", true, 38},
		{"sealed", false, 0},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			info, err := svc.CreateSession(ctx, tt.config)
			if err != nil {
				t.Fatalf("CreateSession(%s) failed: %v", tt.config, err)
			}
			defer svc.DeleteSession(ctx, info.ID)

			var frames int
			result, err := svc.Run(ctx, info.ID, func(string, *engine.Frame) { frames++ })
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if result.Found != tt.found || result.Cost != tt.cost {
				t.Errorf("Expected found=%v cost=%d, got found=%v cost=%d",
					tt.found, tt.cost, result.Found, result.Cost)
			}
			if frames != result.Steps {
				t.Errorf("Expected %d frames, got %d", result.Steps, frames)
			}
		})
	}
}
