// Package api provides the HTTP REST API for the path visualizer.
//
// The api package implements:
//   - Session management endpoints
//   - Grid editing by cell position or by pixel
//   - Synchronous and background search runs
//   - PNG snapshots of a session's grid
//   - Layout listing, loading and saving
//   - WebSocket upgrade handling for live frames
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session, optionally from {"config_id": "maze"}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Grid:
//   - GET /api/sessions/{id}/grid - Current grid state
//   - GET /api/sessions/{id}/image.png - Rendered grid (?route=true overlays the last path)
//   - POST /api/sessions/{id}/paint - {"position": {"row": 1, "col": 2}} or {"pixel": {"x": 40, "y": 90}}
//   - POST /api/sessions/{id}/erase - Same body as paint
//   - POST /api/sessions/{id}/clear - Free every cell
//   - POST /api/sessions/{id}/scatter - Random barrier clusters
//
// Search:
//   - POST /api/sessions/{id}/run - Run A*; {"async": true} returns 202 and streams only
//   - POST /api/sessions/{id}/reset - Drop open/closed/path marks
//
// Configuration:
//   - GET /api/configs - List layouts
//   - GET /api/configs/{name} - Get a layout
//   - POST /api/configs - Save a layout
//
// Operations:
//   - GET /health
//   - GET /metrics - Prometheus exposition
//   - GET /ws?session={id} - WebSocket stream of frame, grid_update, run_complete and run_failed events
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	server := api.NewServer(visualizerService, hub)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message",
//	  "code": 409
//	}
//
// Unknown sessions and layouts map to 404, edits during a run to 409, a run
// without start or end to 422, and bad coordinates or layouts to 400.
package api
