// Package mcp exposes the path visualizer to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, and the JSON reply is rendered as text. Grids are shown with the
// same glyphs the layouts use.
//
// MCP Tools:
//   - create_session, get_session, list_sessions
//   - grid_state, describe_cell
//   - paint_cell, erase_cell, clear_grid, scatter_barriers
//   - run_search, reset_search
//   - list_configs, visualizer_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
