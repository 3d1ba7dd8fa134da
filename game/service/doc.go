// Package service provides the orchestration layer for the path visualizer.
//
// The service package implements:
//   - Multi-session grid management
//   - Layout loading through a ConfigManager
//   - Cell editing by grid position or by pixel
//   - Paced search runs that stream frames to an observer
//
// Core Interfaces:
//
// VisualizerService is the main service interface used by every transport.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages grid layout loading and validation.
//
// Architecture:
//
// The service sits between the transports (HTTP, WebSocket, MCP) and the
// engine. Each session owns one PathEngine, and the engine is only touched
// under that session's lock. While a run is in flight, edits and second runs
// on the same session fail fast with engine.ErrSearchInProgress and state
// reads return the most recent frame.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewVisualizerService(sessionMgr, configMgr, 10*time.Millisecond)
//
//	info, err := svc.CreateSession(ctx, "maze")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.Run(ctx, info.ID, func(id string, frame *engine.Frame) {
//		hub.BroadcastFrame(id, frame)
//	})
package service
