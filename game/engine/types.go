package engine

import "fmt"

// CellState is the mutually exclusive tag carried by every cell
type CellState int

const (
	Free CellState = iota
	Open
	Closed
	Barrier
	Start
	End
	Path
)

const (
	// Validation constants
	DefaultRows  = 50
	DefaultWidth = 800
	MinRows      = 1
	MaxRows      = 200

	FrameBufferSize = 256
)

var stateNames = [...]string{
	Free:    "free",
	Open:    "open",
	Closed:  "closed",
	Barrier: "barrier",
	Start:   "start",
	End:     "end",
	Path:    "path",
}

// Layout glyphs. Configs only use Free, Barrier, Start and End.
var stateGlyphs = [...]byte{
	Free:    '.',
	Open:    'o',
	Closed:  'x',
	Barrier: '#',
	Start:   'S',
	End:     'E',
	Path:    '*',
}

// String returns the lower-case name of the state
func (s CellState) String() string {
	if s < Free || s > Path {
		return fmt.Sprintf("CellState(%d)", int(s))
	}
	return stateNames[s]
}

// Glyph returns the single character used in layout rows
func (s CellState) Glyph() byte {
	if s < Free || s > Path {
		return '?'
	}
	return stateGlyphs[s]
}

// MarshalText encodes the state by name
func (s CellState) MarshalText() ([]byte, error) {
	if s < Free || s > Path {
		return nil, fmt.Errorf("unknown cell state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText decodes a state name
func (s *CellState) UnmarshalText(text []byte) error {
	state, err := ParseCellState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseCellState maps a state name back to its tag
func ParseCellState(name string) (CellState, error) {
	for i, n := range stateNames {
		if n == name {
			return CellState(i), nil
		}
	}
	return Free, fmt.Errorf("unknown cell state %q", name)
}

// StateFromGlyph maps a layout character to its state
func StateFromGlyph(glyph byte) (CellState, bool) {
	for i, g := range stateGlyphs {
		if g == glyph {
			return CellState(i), true
		}
	}
	return Free, false
}

// Position is a 0-based row/column grid coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the position as (row,col)
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Pixel is a point on the display surface
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridConfig describes a grid layout loaded from JSON
type GridConfig struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Rows        int      `json:"rows"`
	Width       int      `json:"width,omitempty"` // display surface in pixels, defaults to DefaultWidth
	Layout      []string `json:"layout,omitempty"`
}

// Result summarises one search run
type Result struct {
	Found    bool       `json:"found"`
	Cost     int        `json:"cost"`
	Path     []Position `json:"path,omitempty"` // start..end inclusive
	Expanded int        `json:"expanded"`
	Steps    int        `json:"steps"` // onStep invocations, expansions plus path marks
}

// GridState is the serialisable view of an engine
type GridState struct {
	Name       string    `json:"name"`
	Rows       int       `json:"rows"`
	Width      int       `json:"width"`
	TileSize   int       `json:"tile_size"`
	Layout     []string  `json:"layout"`
	Start      *Position `json:"start,omitempty"`
	End        *Position `json:"end,omitempty"`
	Running    bool      `json:"running"`
	Runs       int       `json:"runs"`
	LastResult *Result   `json:"last_result,omitempty"`
}

// Phase tells which part of a run produced a step
type Phase string

const (
	PhaseSearch Phase = "search"
	PhasePath   Phase = "path"
)

// Frame is one rendered step of a run
type Frame struct {
	Step   int      `json:"step"`
	Phase  Phase    `json:"phase"`
	Layout []string `json:"layout"`
}
