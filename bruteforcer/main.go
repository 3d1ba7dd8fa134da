// Command bruteforcer hammers a running visualizer with random grids and
// checks every A* answer it gets back against a breadth-first search.
//
// Each trial clears the session, scatters barriers with a fresh seed, picks
// a random start and end, runs the search over REST and verifies that
// reachability and cost agree with BFS and that the returned route is a
// connected walk from start to end that never crosses a barrier.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type GridState struct {
	Name   string    `json:"name"`
	Rows   int       `json:"rows"`
	Layout []string  `json:"layout"`
	Start  *Position `json:"start,omitempty"`
	End    *Position `json:"end,omitempty"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GridState  *GridState `json:"grid_state"`
}

type EditRequest struct {
	Position *Position `json:"position,omitempty"`
}

type EditResponse struct {
	Position  Position   `json:"position"`
	State     string     `json:"state"`
	GridState *GridState `json:"grid_state"`
}

type ScatterRequest struct {
	Clusters int     `json:"clusters"`
	Steps    int     `json:"steps"`
	Density  float64 `json:"density"`
	Seed     uint64  `json:"seed"`
}

type ScatterResponse struct {
	Placed    int        `json:"placed"`
	GridState *GridState `json:"grid_state"`
}

type RunResponse struct {
	Found     bool       `json:"found"`
	Cost      int        `json:"cost"`
	Path      []Position `json:"path"`
	Expanded  int        `json:"expanded"`
	Steps     int        `json:"steps"`
	GridState *GridState `json:"grid_state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) post(path string, body interface{}, out interface{}) error {
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("post %s failed: %s - %s", path, resp.Status, string(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) CreateSession(configName string) (*GridState, error) {
	var body interface{}
	if configName != "" {
		body = map[string]string{"config_id": configName}
	}

	var session SessionResponse
	if err := c.post("/api/sessions", body, &session); err != nil {
		return nil, err
	}

	c.sessionID = session.ID
	return session.GridState, nil
}

func (c *Client) DeleteSession() error {
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/sessions/%s", c.baseURL, c.sessionID), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) Clear() error {
	return c.post(fmt.Sprintf("/api/sessions/%s/clear", c.sessionID), nil, nil)
}

func (c *Client) Scatter(req ScatterRequest) (*GridState, error) {
	var resp ScatterResponse
	if err := c.post(fmt.Sprintf("/api/sessions/%s/scatter", c.sessionID), req, &resp); err != nil {
		return nil, err
	}
	return resp.GridState, nil
}

func (c *Client) Paint(pos Position) (*EditResponse, error) {
	var resp EditResponse
	if err := c.post(fmt.Sprintf("/api/sessions/%s/paint", c.sessionID), EditRequest{Position: &pos}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Run() (*RunResponse, error) {
	var resp RunResponse
	if err := c.post(fmt.Sprintf("/api/sessions/%s/run", c.sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// trial runs one random grid through the server and returns a mismatch description, or ""
func trial(client *Client, rng *rand.Rand, scatter ScatterRequest, verbose bool) (string, error) {
	if err := client.Clear(); err != nil {
		return "", err
	}

	grid, err := client.Scatter(scatter)
	if err != nil {
		return "", err
	}

	free := freeCells(grid.Layout)
	if len(free) < 2 {
		return "", nil
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	start, end := free[0], free[1]

	// First paint on a cleared grid is the start, the second is the end
	if _, err := client.Paint(start); err != nil {
		return "", err
	}
	edit, err := client.Paint(end)
	if err != nil {
		return "", err
	}
	if edit.State != "end" {
		return fmt.Sprintf("second paint at (%d,%d) became %q, want end", end.Row, end.Col, edit.State), nil
	}

	result, err := client.Run()
	if err != nil {
		return "", err
	}

	want := BFS(grid.Layout, start, end)
	if verbose {
		log.Printf("seed=%d start=(%d,%d) end=(%d,%d) bfs=%d astar found=%v cost=%d expanded=%d",
			scatter.Seed, start.Row, start.Col, end.Row, end.Col, want, result.Found, result.Cost, result.Expanded)
	}

	return Verify(grid.Layout, start, end, want, result), nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Visualizer server URL")
	configName := flag.String("config", "", "Layout to create the session from (default: server default)")
	trials := flag.Int("trials", 100, "Number of random grids to check")
	seed := flag.Int64("seed", 0, "Base seed (0 = time based)")
	clusters := flag.Int("clusters", 8, "Barrier clusters per grid")
	steps := flag.Int("steps", 200, "Random walk length per cluster")
	density := flag.Float64("density", 0.35, "Chance of a barrier per walk step")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	log.Printf("Connecting to visualizer at %s (seed %d)", *serverURL, *seed)
	client := NewClient(*serverURL)

	grid, err := client.CreateSession(*configName)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	defer client.DeleteSession()
	log.Printf("✨ Session created: %s (%dx%d)", client.sessionID, grid.Rows, grid.Rows)

	found, mismatches := 0, 0
	for i := 0; i < *trials; i++ {
		scatter := ScatterRequest{
			Clusters: *clusters,
			Steps:    *steps,
			Density:  *density,
			Seed:     uint64(rng.Int63()) | 1, // 0 would ask the server for a time seed
		}

		mismatch, err := trial(client, rng, scatter, *verbose)
		if err != nil {
			log.Printf("Trial %d aborted: %v", i+1, err)
			client.DeleteSession()
			os.Exit(2)
		}
		if mismatch != "" {
			mismatches++
			log.Printf("❌ Trial %d (scatter seed %d): %s", i+1, scatter.Seed, mismatch)
			continue
		}
		found++
	}

	log.Printf("\n%d/%d trials agree with BFS", found, *trials)
	if mismatches > 0 {
		client.DeleteSession()
		os.Exit(1)
	}
	log.Printf("✅ No mismatches")
}
