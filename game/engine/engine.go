package engine

import (
	"errors"
	"fmt"
)

var (
	ErrStartNotSet      = errors.New("start cell not set")
	ErrEndNotSet        = errors.New("end cell not set")
	ErrSearchInProgress = errors.New("search in progress")
	ErrOutOfBounds      = errors.New("position out of bounds")
)

// StepObserver is told the phase of every step of a run
type StepObserver func(phase Phase)

// Engine provides the main interface for grid editing and search runs
type Engine interface {
	// Grid access
	Grid() *Grid
	GetState() *GridState
	StartCell() *Cell
	EndCell() *Cell

	// Editing
	Paint(pos Position) (CellState, error)
	PaintPixel(p Pixel) (CellState, error)
	Erase(pos Position) error
	ErasePixel(p Pixel) error
	Clear() error
	ResetSearch() error
	Scatter(opts ScatterOptions) (int, error)

	// Search
	Run(observer StepObserver) (Result, error)
	IsRunning() bool
	LastResult() *Result

	// Configuration
	GetConfig() *GridConfig
	SetConfig(config *GridConfig) error
}

// PathEngine owns one grid plus the start/end selection and enforces the
// editing rules: start and end are unique and never painted over.
type PathEngine struct {
	config  *GridConfig
	grid    *Grid
	start   *Cell
	end     *Cell
	running bool
	runs    int
	last    *Result
}

// NewEngine creates a new engine with the provided configuration
func NewEngine(config *GridConfig) (*PathEngine, error) {
	if err := ValidateGridConfig(config); err != nil {
		return nil, err
	}

	e := &PathEngine{config: config}
	e.grid, e.start, e.end = InitGridFromConfig(config)
	return e, nil
}

// NewEngineWithDefaults creates an engine over an empty DefaultRows grid
func NewEngineWithDefaults() *PathEngine {
	e, err := NewEngine(DefaultGridConfig())
	if err != nil {
		// DefaultGridConfig always validates
		panic(err)
	}
	return e
}

// Grid returns the underlying grid
func (e *PathEngine) Grid() *Grid { return e.grid }

// StartCell returns the start cell or nil
func (e *PathEngine) StartCell() *Cell { return e.start }

// EndCell returns the end cell or nil
func (e *PathEngine) EndCell() *Cell { return e.end }

// IsRunning reports whether a search is executing
func (e *PathEngine) IsRunning() bool { return e.running }

// LastResult returns the result of the most recent run, or nil
func (e *PathEngine) LastResult() *Result { return e.last }

// GetConfig returns the configuration the grid was built from
func (e *PathEngine) GetConfig() *GridConfig { return e.config }

// SetConfig validates config and rebuilds the grid from it
func (e *PathEngine) SetConfig(config *GridConfig) error {
	if e.running {
		return ErrSearchInProgress
	}
	if err := ValidateGridConfig(config); err != nil {
		return err
	}
	e.config = config
	e.grid, e.start, e.end = InitGridFromConfig(config)
	e.runs = 0
	e.last = nil
	return nil
}

// GetState returns a serialisable view of the grid
func (e *PathEngine) GetState() *GridState {
	state := &GridState{
		Rows:       e.grid.Rows(),
		Width:      e.grid.Width(),
		TileSize:   e.grid.TileSize(),
		Layout:     e.grid.Layout(),
		Running:    e.running,
		Runs:       e.runs,
		LastResult: e.last,
	}
	if e.config != nil {
		state.Name = e.config.Name
	}
	if e.start != nil {
		pos := e.start.Position()
		state.Start = &pos
	}
	if e.end != nil {
		pos := e.end.Position()
		state.End = &pos
	}
	return state
}

// Paint applies the primary-button rule to the cell at pos: the first free
// pick becomes start, the next becomes end, anything after is a barrier.
// It returns the resulting state of the cell.
func (e *PathEngine) Paint(pos Position) (CellState, error) {
	if e.running {
		return Free, ErrSearchInProgress
	}
	if !e.grid.InBounds(pos) {
		return Free, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}

	cell := e.grid.CellAt(pos)
	switch {
	case e.start == nil && cell != e.end:
		e.start = cell
		cell.SetState(Start)
	case e.end == nil && cell != e.start:
		e.end = cell
		cell.SetState(End)
	case cell != e.start && cell != e.end:
		cell.SetState(Barrier)
	}
	return cell.State(), nil
}

// PaintPixel is Paint addressed by display coordinates
func (e *PathEngine) PaintPixel(p Pixel) (CellState, error) {
	if err := e.checkPixel(p); err != nil {
		return Free, err
	}
	return e.Paint(e.grid.CoordinateOf(p))
}

// Erase applies the secondary-button rule: the cell becomes Free and, if it
// was the start or end, that selection is dropped.
func (e *PathEngine) Erase(pos Position) error {
	if e.running {
		return ErrSearchInProgress
	}
	if !e.grid.InBounds(pos) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}

	cell := e.grid.CellAt(pos)
	if cell == e.start {
		e.start = nil
	} else if cell == e.end {
		e.end = nil
	}
	cell.Reset()
	return nil
}

// ErasePixel is Erase addressed by display coordinates
func (e *PathEngine) ErasePixel(p Pixel) error {
	if err := e.checkPixel(p); err != nil {
		return err
	}
	return e.Erase(e.grid.CoordinateOf(p))
}

func (e *PathEngine) checkPixel(p Pixel) error {
	if p.X < 0 || p.Y < 0 || p.X >= e.grid.Width() || p.Y >= e.grid.Width() {
		return fmt.Errorf("%w: pixel (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	if !e.grid.InBounds(e.grid.CoordinateOf(p)) {
		return fmt.Errorf("%w: pixel (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	return nil
}

// Clear makes every cell Free and drops the start/end selection
func (e *PathEngine) Clear() error {
	if e.running {
		return ErrSearchInProgress
	}
	e.grid.Reset()
	e.start = nil
	e.end = nil
	e.last = nil
	return nil
}

// ResetSearch removes the marks of previous runs, keeping barriers and endpoints
func (e *PathEngine) ResetSearch() error {
	if e.running {
		return ErrSearchInProgress
	}
	e.grid.ClearSearch()
	if e.start != nil {
		e.start.SetState(Start)
	}
	if e.end != nil {
		e.end.SetState(End)
	}
	e.last = nil
	return nil
}

// Run recomputes adjacency for every cell and then searches from start to end.
// observer is called after each expansion and each path mark; edits and nested
// runs attempted from inside it are refused with ErrSearchInProgress.
func (e *PathEngine) Run(observer StepObserver) (Result, error) {
	if e.running {
		return Result{}, ErrSearchInProgress
	}
	if e.start == nil {
		return Result{}, ErrStartNotSet
	}
	if e.end == nil {
		return Result{}, ErrEndNotSet
	}

	e.running = true
	defer func() { e.running = false }()

	if observer == nil {
		observer = func(Phase) {}
	}

	e.grid.UpdateNeighbors()
	result := search(e.grid, e.start, e.end,
		func() { observer(PhaseSearch) },
		func() { observer(PhasePath) },
	)

	e.runs++
	e.last = &result
	return result, nil
}
