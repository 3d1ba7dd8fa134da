package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wricardo/mcp-training/pathviz/game/engine"
	"github.com/wricardo/mcp-training/pathviz/game/service"
)

func testGrid() *engine.GridState {
	return &engine.GridState{
		Name:   "walled",
		Rows:   3,
		Layout: []string{"S#.", ".#.", ".#E"},
		Start:  &engine.Position{Row: 0, Col: 0},
		End:    &engine.Position{Row: 2, Col: 2},
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(testGrid())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var state engine.GridState
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12/grid", nil, &state); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if state.Rows != 3 || state.Layout[0] != "S#." {
		t.Errorf("Unexpected grid %+v", state)
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
		if err == nil || !strings.Contains(err.Error(), "API error") {
			t.Errorf("Expected 'API error' in error message, got: %v", err)
		}
	})

	t.Run("json error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{"error": "search in progress", "code": 409})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "POST", "/api/sessions/ab12/paint", nil, nil)
		if err == nil || err.Error() != "search in progress" {
			t.Errorf("Expected server message, got: %v", err)
		}
	})
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "maze" {
			t.Errorf("Expected config_id maze, got %q", body["config_id"])
		}

		resp := service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "maze",
			GridState:  testGrid(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_name": "maze"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "S#.") {
		t.Errorf("Expected grid rows in result, got: %s", text)
	}
}

func TestClient_paintCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/paint" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req service.EditRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Position == nil || req.Position.Row != 1 || req.Position.Col != 2 {
			t.Errorf("Unexpected edit request %+v", req.Position)
		}

		json.NewEncoder(w).Encode(service.EditResult{
			Position:  *req.Position,
			State:     engine.Barrier,
			GridState: testGrid(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handlePaint(context.Background(),
		callRequest("paint_cell", map[string]interface{}{"session_id": "ab12", "row": 1.0, "col": 2.0}))
	if err != nil {
		t.Fatalf("handlePaint failed: %v", err)
	}

	if text := textOf(t, result); !strings.Contains(text, "Paint (1,2) -> barrier") {
		t.Errorf("Unexpected paint output: %s", text)
	}
}

func TestClient_paintCell_MissingCoordinates(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handlePaint(context.Background(),
		callRequest("paint_cell", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatalf("handlePaint failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected a tool error for missing row/col")
	}
}

func TestClient_runSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/ab12/run" {
			t.Errorf("Expected POST run, got %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(service.RunResult{
			Result: engine.Result{
				Found:    true,
				Cost:     2,
				Path:     []engine.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}},
				Expanded: 2,
				Steps:    3,
			},
			GridState: testGrid(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleRun(context.Background(),
		callRequest("run_search", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatalf("handleRun failed: %v", err)
	}

	text := textOf(t, result)
	for _, want := range []string{"Path found: cost 2", "(0,0) → (0,1) → (0,2)", "Expanded: 2"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_describeCell(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(testGrid())
	}))
	defer server.Close()

	client := NewClient(server.URL)

	tests := []struct {
		name     string
		row, col float64
		want     string
		isError  bool
	}{
		{"barrier", 0, 1, "Passable: false", false},
		{"end", 2, 2, "State: end", false},
		{"out of bounds", 3, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.handleDescribeCell(context.Background(),
				callRequest("describe_cell", map[string]interface{}{"session_id": "ab12", "row": tt.row, "col": tt.col}))
			if err != nil {
				t.Fatalf("handleDescribeCell failed: %v", err)
			}
			if result.IsError != tt.isError {
				t.Fatalf("Expected IsError=%v", tt.isError)
			}
			if tt.want != "" {
				if text := textOf(t, result); !strings.Contains(text, tt.want) {
					t.Errorf("Expected %q, got: %s", tt.want, text)
				}
			}
		})
	}
}

func TestFormatGridState(t *testing.T) {
	state := testGrid()
	state.Runs = 2
	state.LastResult = &engine.Result{Found: false, Expanded: 3}

	result := formatGridState(state)

	expectedFields := []string{
		"Grid: 3x3 (walled)",
		"Start: (0,0)",
		"End: (2,2)",
		"Runs: 2",
		"found=false",
		"S#.\n.#.\n.#E",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	if got := formatGridState(nil); got != "No grid state available" {
		t.Errorf("Unexpected nil output %q", got)
	}
}

func TestFormatRunResult_NotFound(t *testing.T) {
	result := formatRunResult(&service.RunResult{
		Result:    engine.Result{Expanded: 3, Steps: 3},
		GridState: testGrid(),
	})

	if !strings.Contains(result, "No path") {
		t.Errorf("Expected 'No path' in result, got: %s", result)
	}
}

func TestClient_handleInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleInstructions(context.Background(),
		callRequest("visualizer_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleInstructions failed: %v", err)
	}

	text := textOf(t, result)
	expectedContent := []string{
		"EDITING:",
		"SEARCH:",
		"LEGEND:",
		"Manhattan distance",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}
