// Package session provides session management for the path visualizer.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session registry. Each service.Session owns its own
// PathEngine, so edits and runs on one grid never touch another.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive and generated IDs are retried until unused.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions are never written to disk. CleanupExpiredSessions drops idle
// sessions, skipping any with a search in flight.
package session
