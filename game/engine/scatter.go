package engine

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
)

// ScatterOptions tunes clustered barrier generation
type ScatterOptions struct {
	Clusters int     `json:"clusters"`
	Steps    int     `json:"steps"`
	Density  float64 `json:"density"`
	Seed     uint64  `json:"seed,omitempty"` // 0 picks a time-based seed
}

// DefaultScatterOptions returns settings that leave most grids solvable
func DefaultScatterOptions() ScatterOptions {
	return ScatterOptions{Clusters: 8, Steps: 200, Density: 0.25}
}

func (o ScatterOptions) validate() error {
	if o.Clusters < 0 || o.Steps < 0 {
		return fmt.Errorf("scatter: clusters and steps must be non-negative")
	}
	if o.Density < 0 || o.Density > 1 {
		return fmt.Errorf("scatter: density must be between 0 and 1, got %v", o.Density)
	}
	return nil
}

// Scatter drops barriers along random walks. Start and end are never covered.
// It returns the number of cells that became barriers.
func (e *PathEngine) Scatter(opts ScatterOptions) (int, error) {
	if e.running {
		return 0, ErrSearchInProgress
	}
	if err := opts.validate(); err != nil {
		return 0, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewSource(seed))

	rows := e.grid.Rows()
	dirs := [4]Position{{1, 0}, {-1, 0}, {0, -1}, {0, 1}}
	placed := 0
	for c := 0; c < opts.Clusters; c++ {
		p := Position{Row: r.Intn(rows), Col: r.Intn(rows)}
		for s := 0; s < opts.Steps; s++ {
			cell := e.grid.CellAt(p)
			if r.Float64() < opts.Density && cell != e.start && cell != e.end && cell.State() != Barrier {
				cell.SetState(Barrier)
				placed++
			}
			d := dirs[r.Intn(len(dirs))]
			next := Position{Row: p.Row + d.Row, Col: p.Col + d.Col}
			if e.grid.InBounds(next) {
				p = next
			}
		}
	}
	return placed, nil
}
