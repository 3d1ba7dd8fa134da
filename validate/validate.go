// Command validate provides a small CLI that validates grid layout JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Square shape and allowed characters (., #, S, E)
//   - At most one start (S) and one end (E)
//   - Reachability: when both endpoints are present, A* is run to find a route
//
// Unreachable ends are reported as warnings; pass -strict to treat them as errors.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single layout JSON file.
// It performs structural checks and, when the layout names both endpoints,
// a reachability check with the search engine.
func validateConfig(filePath string, strict bool) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GridConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGridConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	barriers, starts, ends := countGlyphs(config.Layout)

	// Reachability validation - only meaningful with both endpoints
	if starts == 1 && ends == 1 {
		reachabilityResult := validateReachability(&config, strict)
		if !reachabilityResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, reachabilityResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		width := config.Width
		if width == 0 {
			width = engine.DefaultWidth
		}
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d on %dpx", config.Rows, config.Rows, width))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Barriers: %d", barriers))
		if starts == 0 {
			result.Errors = append(result.Errors, "✓ Start: placed interactively")
		}
		if ends == 0 {
			result.Errors = append(result.Errors, "✓ End: placed interactively")
		}
	}

	return result
}

func countGlyphs(layout []string) (barriers, starts, ends int) {
	for _, row := range layout {
		for i := 0; i < len(row); i++ {
			switch row[i] {
			case '#':
				barriers++
			case 'S':
				starts++
			case 'E':
				ends++
			}
		}
	}
	return barriers, starts, ends
}

// validateReachability runs a search from S to E over a validated layout.
// An unreachable end is a warning unless strict is set.
func validateReachability(config *engine.GridConfig, strict bool) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot build grid: %v", err))
		return result
	}

	run, err := eng.Run(nil)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot run search: %v", err))
		return result
	}

	start, end := eng.StartCell().Position(), eng.EndCell().Position()
	if !run.Found {
		msg := fmt.Sprintf("End %s unreachable from start %s (%d cells expanded)", end, start, run.Expanded)
		if strict {
			result.Valid = false
			result.Errors = append(result.Errors, "Reachability failure: "+msg)
		} else {
			result.Errors = append(result.Errors, "⚠ "+msg)
		}
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Route: cost %d from %s to %s, %d cells expanded",
		run.Cost, start, end, run.Expanded))
	return result
}

// main scans the layout directory for *.json files and validates each one,
// printing a concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing grid layouts")
	strict := flag.Bool("strict", false, "Treat an unreachable end as an error")
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, *strict)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
