package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
	"github.com/wricardo/mcp-training/pathviz/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Paced runs can take a while to stream
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"A* Path Visualizer",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`A* Path Visualizer - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Edit a square grid, place a start (S) and an end (E), then run A* and inspect
the shortest 4-directional route it finds around barriers (#).

AVAILABLE TOOLS:
- create_session: Create a new grid session, optionally from a saved layout
- get_session / list_sessions: Inspect sessions
- grid_state: Show the grid as text
- paint_cell: First pick places start, second places end, later picks place barriers
- erase_cell: Free a cell (erasing start or end unsets it)
- clear_grid: Free every cell
- scatter_barriers: Drop random barrier clusters
- run_search: Run A* and report the route
- reset_search: Remove open/closed/path marks from the last run
- describe_cell: Explain one cell
- list_configs: List saved layouts
- visualizer_instructions: Full rules and legend`),
	)

	// Register all tools
	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func cellProperties() map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionProperty(),
		"row": map[string]interface{}{
			"type":        "integer",
			"description": "Row of the cell (0-based, top to bottom)",
		},
		"col": map[string]interface{}{
			"type":        "integer",
			"description": "Column of the cell (0-based, left to right)",
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new visualizer session with optional layout selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the layout to use (optional, defaults to blank)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Grid
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "grid_state",
		Description: "Get the current grid as text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGridState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "paint_cell",
		Description: "Paint a cell: places start if unset, else end if unset, else a barrier",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handlePaint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "erase_cell",
		Description: "Erase a cell back to free; erasing start or end unsets it",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleErase)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "clear_grid",
		Description: "Free every cell and unset start and end",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleClear)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "scatter_barriers",
		Description: "Drop random barrier clusters; start and end are never covered",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"clusters": map[string]interface{}{
					"type":        "integer",
					"description": "Number of random walks (optional)",
				},
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": "Length of each walk (optional)",
				},
				"density": map[string]interface{}{
					"type":        "number",
					"description": "Chance of placing a barrier per step, 0 to 1 (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Seed for a reproducible scatter (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleScatter)

	// Search
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_search",
		Description: "Run A* from start to end and report the route",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRun)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_search",
		Description: "Remove the marks of previous runs, keeping barriers, start and end",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed info about a specific grid cell",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: cellProperties(),
			Required:   []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available grid layouts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "visualizer_instructions",
		Description: "Get the editing rules, legend and search semantics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		args = map[string]interface{}{}
	}
	return args
}

// intArg reads a JSON number argument. ok is false when it is missing or not a number.
func intArg(args map[string]interface{}, name string) (int, bool) {
	v, ok := args[name].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func cellArgs(args map[string]interface{}) (string, engine.Position, error) {
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return sessionID, engine.Position{}, fmt.Errorf("row and col are required integers")
	}
	return sessionID, engine.Position{Row: row, Col: col}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_id"] = configName
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, "POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.GridState != nil {
		result += "\n" + formatGridState(session.GridState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGridState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GridState
	err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handlePaint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.edit(ctx, request, "paint")
}

func (c *Client) handleErase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.edit(ctx, request, "erase")
}

func (c *Client) edit(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	sessionID, pos, err := cellArgs(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.EditResult
	body := service.EditRequest{Position: &pos}
	if err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/%s", sessionID, action), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatEditResult(action, &result)), nil
}

func (c *Client) handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message   string            `json:"message"`
		GridState *engine.GridState `json:"grid_state"`
	}
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/clear", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.GridState))), nil
}

func (c *Client) handleScatter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]interface{}{}
	for _, name := range []string{"clusters", "steps", "seed"} {
		if v, ok := intArg(args, name); ok {
			body[name] = v
		}
	}
	if density, ok := args["density"].(float64); ok {
		body["density"] = density
	}

	var result service.ScatterResult
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/scatter", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Placed %d barriers\n\n%s", result.Placed, formatGridState(result.GridState))), nil
}

func (c *Client) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.RunResult
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/run", sessionID), nil, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message   string            `json:"message"`
		GridState *engine.GridState `json:"grid_state"`
	}
	err := c.apiCall(ctx, "POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.GridState))), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, pos, err := cellArgs(arguments(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var state engine.GridState
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/sessions/%s/grid", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if pos.Row < 0 || pos.Row >= state.Rows || pos.Col < 0 || pos.Col >= state.Rows {
		return mcp.NewToolResultError(fmt.Sprintf("Cell %s is out of bounds. Grid is %dx%d (0-%d for both row and col)",
			pos, state.Rows, state.Rows, state.Rows-1)), nil
	}

	glyph := state.Layout[pos.Row][pos.Col]
	cellState, _ := engine.StateFromGlyph(glyph)

	result := fmt.Sprintf(`Cell %s:
━━━━━━━━━━━━━━━━━━━━━━━━
Character: %c
State: %s
Passable: %v
Description: %s`,
		pos, glyph, cellState, cellState != engine.Barrier, describeState(cellState))

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Layouts:\n\n"
	for _, cfg := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Grid: %dx%d, Start: %v, End: %v\n\n",
			cfg.ConfigID, cfg.Description, cfg.Rows, cfg.Rows, cfg.HasStart, cfg.HasEnd)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `A* Path Visualizer - Instructions

EDITING:
• paint_cell on a free grid places the start first, then the end
• Once both exist, paint_cell places barriers
• Start and end are never painted over; erase them to move them
• erase_cell frees any cell; erasing start or end unsets it

SEARCH:
• Moves are 4-directional (up, down, left, right), each costing 1
• The heuristic is Manhattan distance, so the route found is a shortest one
• Ties in f-score go to the cell discovered first, so runs are repeatable
• Barrier edits only take effect on the next run
• Running again first clears the marks of the previous run

LEGEND:
  .  free       #  barrier
  S  start      E  end
  o  open       x  closed
  *  path

Rows are numbered top to bottom and columns left to right, both from 0.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func describeState(s engine.CellState) string {
	switch s {
	case engine.Free:
		return "Free cell - never touched by the last run"
	case engine.Open:
		return "Discovered by the last run but never expanded"
	case engine.Closed:
		return "Expanded by the last run"
	case engine.Barrier:
		return "Barrier - IMPASSABLE"
	case engine.Start:
		return "Search origin"
	case engine.End:
		return "Search target"
	case engine.Path:
		return "On the shortest route found by the last run"
	default:
		return "Unknown cell state"
	}
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGridState(session.GridState))
}

func formatGridState(state *engine.GridState) string {
	if state == nil {
		return "No grid state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grid: %dx%d", state.Rows, state.Rows)
	if state.Name != "" {
		fmt.Fprintf(&b, " (%s)", state.Name)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Start: %s\n", formatPosition(state.Start))
	fmt.Fprintf(&b, "End: %s\n", formatPosition(state.End))
	fmt.Fprintf(&b, "Runs: %d", state.Runs)
	if state.Running {
		b.WriteString(" (search in progress)")
	}
	b.WriteString("\n")
	if r := state.LastResult; r != nil {
		fmt.Fprintf(&b, "Last run: found=%v cost=%d expanded=%d\n", r.Found, r.Cost, r.Expanded)
	}

	b.WriteString("\n")
	for _, row := range state.Layout {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func formatPosition(p *engine.Position) string {
	if p == nil {
		return "not set"
	}
	return p.String()
}

func formatEditResult(action string, result *service.EditResult) string {
	return fmt.Sprintf("%s %s -> %s\n\n%s", strings.ToUpper(action[:1])+action[1:],
		result.Position, result.State, formatGridState(result.GridState))
}

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder
	if result.Found {
		fmt.Fprintf(&b, "✅ Path found: cost %d\n", result.Cost)
		route := make([]string, len(result.Path))
		for i, p := range result.Path {
			route[i] = p.String()
		}
		fmt.Fprintf(&b, "Route: %s\n", strings.Join(route, " → "))
	} else {
		b.WriteString("❌ No path: the end is unreachable from the start\n")
	}
	fmt.Fprintf(&b, "Expanded: %d, Steps: %d, Duration: %dms\n\n", result.Expanded, result.Steps, result.DurationMs)
	b.WriteString(formatGridState(result.GridState))
	return b.String()
}
