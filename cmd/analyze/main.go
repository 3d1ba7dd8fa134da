// Command analyze prints quick, human-readable search statistics for the
// layouts in the project's configs directory. For every layout that names
// both a start and an end it runs A* and reports the route cost, how many
// cells were expanded, and how that compares with the Manhattan lower bound.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/pathviz/game/config"
	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

// Analysis is the summary of one layout
type Analysis struct {
	Name       string           `json:"name"`
	Rows       int              `json:"rows"`
	Barriers   int              `json:"barriers"`
	Density    float64          `json:"density"`
	Start      *engine.Position `json:"start,omitempty"`
	End        *engine.Position `json:"end,omitempty"`
	Searched   bool             `json:"searched"`
	Found      bool             `json:"found"`
	Cost       int              `json:"cost"`
	LowerBound int              `json:"lower_bound"`
	Expanded   int              `json:"expanded"`
	Steps      int              `json:"steps"`
	Duration   time.Duration    `json:"duration_ns"`
}

// Detour is how much longer the route is than the straight Manhattan distance
func (a *Analysis) Detour() int {
	return a.Cost - a.LowerBound
}

// ExpandedShare is the fraction of passable cells the search expanded
func (a *Analysis) ExpandedShare() float64 {
	passable := a.Rows*a.Rows - a.Barriers
	if passable == 0 {
		return 0
	}
	return float64(a.Expanded) / float64(passable)
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Report A* search statistics for grid layouts",
		ArgsUsage: "[layout ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Value:   "configs",
				Usage:   "directory containing grid layouts",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print one JSON object per layout",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := config.NewManager(cmd.String("dir"))
			if err != nil {
				return err
			}

			names := cmd.Args().Slice()
			if len(names) == 0 {
				infos, err := manager.ListConfigs()
				if err != nil {
					return err
				}
				for _, info := range infos {
					names = append(names, info.ConfigID)
				}
			}

			out := cmd.Root().Writer
			for _, name := range names {
				cfg, err := manager.LoadConfig(name)
				if err != nil {
					return fmt.Errorf("layout %s: %w", name, err)
				}

				analysis, err := analyzeLayout(cfg)
				if err != nil {
					return fmt.Errorf("layout %s: %w", name, err)
				}

				if cmd.Bool("json") {
					if err := json.NewEncoder(out).Encode(analysis); err != nil {
						return err
					}
					continue
				}
				printAnalysis(out, analysis)
			}
			return nil
		},
	}
}

// analyzeLayout builds the grid and, when both endpoints are present, runs a search on it
func analyzeLayout(cfg *engine.GridConfig) (*Analysis, error) {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	state := eng.GetState()
	a := &Analysis{
		Name:  cfg.Name,
		Rows:  state.Rows,
		Start: state.Start,
		End:   state.End,
	}
	for _, row := range state.Layout {
		a.Barriers += strings.Count(row, string(engine.Barrier.Glyph()))
	}
	a.Density = float64(a.Barriers) / float64(a.Rows*a.Rows)

	if a.Start == nil || a.End == nil {
		return a, nil
	}

	started := time.Now()
	result, err := eng.Run(nil)
	if err != nil {
		return nil, err
	}

	a.Searched = true
	a.Found = result.Found
	a.Cost = result.Cost
	a.Expanded = result.Expanded
	a.Steps = result.Steps
	a.Duration = time.Since(started)
	a.LowerBound = engine.ManhattanDistance(*a.Start, *a.End)
	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Rows, a.Rows)
	fmt.Fprintf(w, "Barriers: %d (%.1f%%)\n", a.Barriers, a.Density*100)

	if !a.Searched {
		fmt.Fprintf(w, "ℹ️  No search: start or end is placed interactively\n")
		return
	}

	fmt.Fprintf(w, "Start: %s  End: %s\n", a.Start, a.End)
	if !a.Found {
		fmt.Fprintf(w, "⚠️  WARNING: end is unreachable from start\n")
		fmt.Fprintf(w, "   Expanded %d cells before the frontier ran dry\n", a.Expanded)
		return
	}

	fmt.Fprintf(w, "✅ Route cost: %d (Manhattan lower bound %d, detour %d)\n", a.Cost, a.LowerBound, a.Detour())
	fmt.Fprintf(w, "Expanded: %d cells (%.1f%% of passable)\n", a.Expanded, a.ExpandedShare()*100)
	fmt.Fprintf(w, "Steps: %d, Search time: %s\n", a.Steps, a.Duration.Round(time.Microsecond))
}
