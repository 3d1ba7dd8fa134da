package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

// SessionInfo provides information about a visualizer session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GridState      *engine.GridState  `json:"grid_state"`
	GridConfig     *engine.GridConfig `json:"grid_config"`
}

// EditRequest addresses one cell either by grid position or by pixel.
// Exactly one of the two must be set.
type EditRequest struct {
	Position *engine.Position `json:"position,omitempty"`
	Pixel    *engine.Pixel    `json:"pixel,omitempty"`
}

// EditResult contains the outcome of a paint or erase
type EditResult struct {
	Position  engine.Position   `json:"position"`
	State     engine.CellState  `json:"state"`
	GridState *engine.GridState `json:"grid_state"`
}

// RunResult is the search result plus the grid after the run
type RunResult struct {
	engine.Result
	Frames     int               `json:"frames"`
	DurationMs int64             `json:"duration_ms"`
	GridState  *engine.GridState `json:"grid_state"`
}

// ScatterResult reports how many barriers a scatter placed
type ScatterResult struct {
	Placed    int               `json:"placed"`
	GridState *engine.GridState `json:"grid_state"`
}

// FrameObserver receives every frame of a run in order
type FrameObserver func(sessionID string, frame *engine.Frame)

// RunCallback receives the outcome of a background run
type RunCallback func(result *RunResult, err error)

// ConfigInfo provides information about a grid layout
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	HasStart    bool   `json:"has_start"`
	HasEnd      bool   `json:"has_end"`
}

// Session represents an active visualizer session.
// The engine is only touched while holding the session lock.
type Session struct {
	ID        string
	Engine    *engine.PathEngine
	Config    *engine.GridConfig
	CreatedAt time.Time

	mu       sync.Mutex
	running  atomic.Bool
	accessed atomic.Int64 // unix nanoseconds
	snapshot atomic.Pointer[engine.GridState]
}

// Touch records t as the last access time
func (s *Session) Touch(t time.Time) { s.accessed.Store(t.UnixNano()) }

// LastAccessedAt returns the last access time, or CreatedAt if never touched
func (s *Session) LastAccessedAt() time.Time {
	if ns := s.accessed.Load(); ns != 0 {
		return time.Unix(0, ns)
	}
	return s.CreatedAt
}

// Running reports whether a run is in flight on this session
func (s *Session) Running() bool { return s.running.Load() }
