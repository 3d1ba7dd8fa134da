package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGridConfig validates a grid layout for shape and glyphs
func ValidateGridConfig(config *GridConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.Rows < MinRows || config.Rows > MaxRows {
		return fmt.Errorf("config validation: rows must be between %d and %d, got %d", MinRows, MaxRows, config.Rows)
	}
	width := config.Width
	if width == 0 {
		width = DefaultWidth
	}
	if width < config.Rows {
		return fmt.Errorf("config validation: width must be at least rows (%d) pixels, got %d", config.Rows, width)
	}

	// An empty layout means an all-free grid
	if len(config.Layout) == 0 {
		return nil
	}
	if len(config.Layout) != config.Rows {
		return fmt.Errorf("config validation: layout must have %d rows to match rows, got %d",
			config.Rows, len(config.Layout))
	}

	starts, ends := 0, 0
	for i, row := range config.Layout {
		if len(row) != config.Rows {
			return fmt.Errorf("config validation: row %d must have %d characters to match rows, got %d",
				i+1, config.Rows, len(row))
		}
		for j := 0; j < len(row); j++ {
			switch row[j] {
			case '.', '#':
			case 'S':
				starts++
			case 'E':
				ends++
			default:
				return fmt.Errorf("config validation: invalid character '%c' at row %d, col %d", row[j], i+1, j+1)
			}
		}
	}

	if starts > 1 {
		return fmt.Errorf("config validation: layout may contain at most one start (S), got %d", starts)
	}
	if ends > 1 {
		return fmt.Errorf("config validation: layout may contain at most one end (E), got %d", ends)
	}

	return nil
}

// LoadGridConfig loads a grid configuration from a JSON file
func LoadGridConfig(filename string) (*GridConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GridConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGridConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a grid configuration by name from the configs directory
func LoadConfigByName(configName string) (*GridConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	config, err := LoadGridConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// DefaultGridConfig returns an empty DefaultRows×DefaultRows grid on the default surface
func DefaultGridConfig() *GridConfig {
	return &GridConfig{
		Name:        "blank",
		Description: "Empty 50x50 grid",
		Rows:        DefaultRows,
		Width:       DefaultWidth,
	}
}

// InitGridFromConfig builds a grid from a validated config and returns the
// start and end cells it names, which may be nil.
func InitGridFromConfig(config *GridConfig) (*Grid, *Cell, *Cell) {
	if config == nil {
		config = DefaultGridConfig()
	}

	width := config.Width
	if width == 0 {
		width = DefaultWidth
	}
	grid := NewGridWithWidth(config.Rows, width)

	var start, end *Cell
	for i := 0; i < config.Rows && i < len(config.Layout); i++ {
		row := config.Layout[i]
		for j := 0; j < config.Rows && j < len(row); j++ {
			cell := grid.Cell(i, j)
			switch row[j] {
			case '#':
				cell.SetState(Barrier)
			case 'S':
				cell.SetState(Start)
				start = cell
			case 'E':
				cell.SetState(End)
				end = cell
			}
		}
	}

	return grid, start, end
}

// GridFromLayout builds a grid straight from layout rows, mostly for tests and tools
func GridFromLayout(layout []string) (*Grid, *Cell, *Cell, error) {
	config := &GridConfig{
		Name:        "layout",
		Description: "inline layout",
		Rows:        len(layout),
		Layout:      layout,
	}
	if err := ValidateGridConfig(config); err != nil {
		return nil, nil, nil, err
	}
	grid, start, end := InitGridFromConfig(config)
	return grid, start, end, nil
}
