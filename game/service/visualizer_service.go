package service

import (
	"context"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
)

// VisualizerService defines all grid and search operations
type VisualizerService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Editing
	Paint(ctx context.Context, sessionID string, req EditRequest) (*EditResult, error)
	Erase(ctx context.Context, sessionID string, req EditRequest) (*EditResult, error)
	Clear(ctx context.Context, sessionID string) (*engine.GridState, error)
	Scatter(ctx context.Context, sessionID string, opts engine.ScatterOptions) (*ScatterResult, error)

	// Search
	Run(ctx context.Context, sessionID string, observer FrameObserver) (*RunResult, error)
	StartRun(ctx context.Context, sessionID string, observer FrameObserver, done RunCallback) error
	ResetSearch(ctx context.Context, sessionID string) (*engine.GridState, error)

	// Grid State
	GetGridState(ctx context.Context, sessionID string) (*engine.GridState, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GridConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GridConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Count() int
}

// ConfigManager handles grid layout loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GridConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GridConfig
	SaveConfig(name string, config *engine.GridConfig) error
}
