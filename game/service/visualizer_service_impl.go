package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
	"github.com/wricardo/mcp-training/pathviz/game/metrics"
)

// ErrInvalidEdit is returned when an edit names neither or both of position and pixel
var ErrInvalidEdit = errors.New("edit must set exactly one of position or pixel")

// visualizerServiceImpl implements the VisualizerService interface
type visualizerServiceImpl struct {
	sessions  SessionManager
	configs   ConfigManager
	stepDelay time.Duration
	mu        sync.RWMutex
}

// NewVisualizerService creates a new service instance. stepDelay paces the
// frames of every run; zero runs at full speed.
func NewVisualizerService(sessions SessionManager, configs ConfigManager, stepDelay time.Duration) VisualizerService {
	return &visualizerServiceImpl{
		sessions:  sessions,
		configs:   configs,
		stepDelay: stepDelay,
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *visualizerServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "blank"
	}
	return configName
}

// getSession looks the session up and touches its access time
func (s *visualizerServiceImpl) getSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// lockIdle takes the session lock unless a run is in flight
func lockIdle(sess *Session) error {
	if sess.running.Load() {
		return engine.ErrSearchInProgress
	}
	sess.mu.Lock()
	if sess.running.Load() {
		sess.mu.Unlock()
		return engine.ErrSearchInProgress
	}
	return nil
}

func (s *visualizerServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt(),
		GridState:      gridState(sess),
		GridConfig:     sess.Config,
	}
}

// gridState returns the live snapshot while a run is in flight, otherwise the engine state
func gridState(sess *Session) *engine.GridState {
	if sess.running.Load() {
		if snap := sess.snapshot.Load(); snap != nil {
			return snap
		}
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Engine.GetState()
}

// CreateSession creates a new session over the named layout, or the default one
func (s *visualizerServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GridConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	metrics.SetActiveSessions(s.sessions.Count())

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}
	return s.sessionInfo(sess, strings.TrimSuffix(configID, ".json")), nil
}

// GetSession retrieves session information
func (s *visualizerServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions
func (s *visualizerServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	sessions := s.sessions.List()
	s.mu.RUnlock()

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	return result, nil
}

// DeleteSession removes a session. A run already in flight finishes on the detached engine.
func (s *visualizerServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session not found: %w", err)
	}
	metrics.SetActiveSessions(s.sessions.Count())
	return nil
}

// Paint applies the primary-button rule to one cell
func (s *visualizerServiceImpl) Paint(ctx context.Context, sessionID string, req EditRequest) (*EditResult, error) {
	return s.edit(sessionID, req, func(eng *engine.PathEngine, pos engine.Position) error {
		_, err := eng.Paint(pos)
		return err
	})
}

// Erase applies the secondary-button rule to one cell
func (s *visualizerServiceImpl) Erase(ctx context.Context, sessionID string, req EditRequest) (*EditResult, error) {
	return s.edit(sessionID, req, func(eng *engine.PathEngine, pos engine.Position) error {
		return eng.Erase(pos)
	})
}

func (s *visualizerServiceImpl) edit(sessionID string, req EditRequest, apply func(*engine.PathEngine, engine.Position) error) (*EditResult, error) {
	if (req.Position == nil) == (req.Pixel == nil) {
		return nil, ErrInvalidEdit
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := lockIdle(sess); err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	eng := sess.Engine
	var pos engine.Position
	if req.Pixel != nil {
		px := *req.Pixel
		if px.X < 0 || px.Y < 0 || px.X >= eng.Grid().Width() || px.Y >= eng.Grid().Width() {
			return nil, fmt.Errorf("%w: pixel (%d,%d)", engine.ErrOutOfBounds, px.X, px.Y)
		}
		pos = eng.Grid().CoordinateOf(px)
	} else {
		pos = *req.Position
	}

	if err := apply(eng, pos); err != nil {
		return nil, err
	}

	return &EditResult{
		Position:  pos,
		State:     eng.Grid().CellAt(pos).State(),
		GridState: eng.GetState(),
	}, nil
}

// Clear empties the grid and drops start and end
func (s *visualizerServiceImpl) Clear(ctx context.Context, sessionID string) (*engine.GridState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := lockIdle(sess); err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.Engine.Clear(); err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// Scatter drops random barrier clusters on the grid
func (s *visualizerServiceImpl) Scatter(ctx context.Context, sessionID string, opts engine.ScatterOptions) (*ScatterResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := lockIdle(sess); err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	placed, err := sess.Engine.Scatter(opts)
	if err != nil {
		return nil, err
	}
	return &ScatterResult{Placed: placed, GridState: sess.Engine.GetState()}, nil
}

// ResetSearch removes the marks of previous runs
func (s *visualizerServiceImpl) ResetSearch(ctx context.Context, sessionID string) (*engine.GridState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := lockIdle(sess); err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if err := sess.Engine.ResetSearch(); err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// Run clears old search marks, then searches from start to end. Every
// expansion and path mark becomes a Frame handed to observer, followed by the
// configured step delay. Cancelling ctx stops frame delivery and pacing; the
// search itself always completes so the grid is never left half-marked.
func (s *visualizerServiceImpl) Run(ctx context.Context, sessionID string, observer FrameObserver) (*RunResult, error) {
	sess, err := s.claimRun(sessionID)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, sess, observer)
}

// StartRun claims the session and runs the search in the background. Refusals
// are returned before anything starts; done receives the outcome of a started run.
func (s *visualizerServiceImpl) StartRun(ctx context.Context, sessionID string, observer FrameObserver, done RunCallback) error {
	sess, err := s.claimRun(sessionID)
	if err != nil {
		return err
	}

	go func() {
		result, err := s.execute(ctx, sess, observer)
		if done != nil {
			done(result, err)
		}
	}()
	return nil
}

// claimRun marks the session running and takes its lock. On success the
// caller must hand the session to execute, which releases both.
func (s *visualizerServiceImpl) claimRun(sessionID string) (*Session, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if !sess.running.CompareAndSwap(false, true) {
		metrics.ObserveRejected("in_progress")
		return nil, engine.ErrSearchInProgress
	}
	sess.mu.Lock()

	eng := sess.Engine
	switch {
	case eng.StartCell() == nil:
		err = engine.ErrStartNotSet
		metrics.ObserveRejected("start_not_set")
	case eng.EndCell() == nil:
		err = engine.ErrEndNotSet
		metrics.ObserveRejected("end_not_set")
	}
	if err != nil {
		sess.mu.Unlock()
		sess.running.Store(false)
		return nil, err
	}
	return sess, nil
}

func (s *visualizerServiceImpl) execute(ctx context.Context, sess *Session, observer FrameObserver) (*RunResult, error) {
	defer sess.running.Store(false)
	defer sess.mu.Unlock()
	defer sess.snapshot.Store(nil)

	eng := sess.Engine
	if err := eng.ResetSearch(); err != nil {
		return nil, err
	}

	framing := observer != nil || s.stepDelay > 0
	frames := 0
	started := time.Now()

	result, err := eng.Run(func(phase engine.Phase) {
		frames++
		if !framing || ctx.Err() != nil {
			return
		}

		state := eng.GetState()
		sess.snapshot.Store(state)
		if observer != nil {
			observer(sess.ID, &engine.Frame{Step: frames, Phase: phase, Layout: state.Layout})
		}

		if s.stepDelay > 0 {
			timer := time.NewTimer(s.stepDelay)
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
			timer.Stop()
		}
	})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(started)
	metrics.ObserveSearch(result, elapsed)

	return &RunResult{
		Result:     result,
		Frames:     frames,
		DurationMs: elapsed.Milliseconds(),
		GridState:  eng.GetState(),
	}, nil
}

// GetGridState retrieves the current grid; during a run it is the latest frame
func (s *visualizerServiceImpl) GetGridState(ctx context.Context, sessionID string) (*engine.GridState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return gridState(sess), nil
}

// ListConfigs returns available grid layouts
func (s *visualizerServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific grid layout
func (s *visualizerServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GridConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a grid layout to disk
func (s *visualizerServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GridConfig) error {
	return s.configs.SaveConfig(configName, config)
}
