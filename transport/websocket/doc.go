// Package websocket provides WebSocket transport for the path visualizer.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Frame-by-frame streaming of search runs
//   - Grid snapshots after edits
//   - Connection lifecycle management
//
// Architecture:
//
// A central Hub manages all connections. Each client connection has a
// reader and a writer goroutine; the writer batches queued messages into a
// single text frame separated by newlines.
//
// Message Protocol:
//
// Every outgoing message is JSON:
//   - {"session_id":"ab12","event":"frame","frame":{"step":3,"phase":"search","layout":[...]}}
//   - {"session_id":"ab12","event":"grid_update","grid_state":{...}}
//   - {"session_id":"ab12","event":"run_complete","data":{...}}
//   - {"session_id":"ab12","event":"run_failed","data":{"error":"..."}}
//
// Clients pick their session with ?session=ab12 when connecting.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
//	svc.Run(ctx, id, hub.BroadcastFrame)
//
// Frames are sent in step order. A client that falls FrameBufferSize
// messages behind is disconnected rather than allowed to stall the run.
package websocket
