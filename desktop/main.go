package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	gridSize     = 800 // square drawing surface for the grid
	headerHeight = 40
	footerHeight = 20
	screenWidth  = gridSize
	screenHeight = gridSize + headerHeight + footerHeight
	baseURL      = "http://localhost:8080"
	wsHost       = "localhost:8080"
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGrid
)

// Glyph colours, matching the server's PNG renderer
var glyphColors = map[byte]color.RGBA{
	'.': {255, 255, 255, 255}, // free
	'o': {0, 255, 0, 255},     // open
	'x': {255, 0, 0, 255},     // closed
	'#': {0, 0, 0, 255},       // barrier
	'S': {255, 165, 0, 255},   // start
	'E': {64, 224, 208, 255},  // end
	'*': {128, 0, 128, 255},   // path
}

var gridLineColor = color.RGBA{128, 128, 128, 255}

// Position is a row/column grid coordinate
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pixel is a point on the server's display surface
type Pixel struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RunResult is the outcome of a search as reported by the server
type RunResult struct {
	Found      bool       `json:"found"`
	Cost       int        `json:"cost"`
	Path       []Position `json:"path,omitempty"`
	Expanded   int        `json:"expanded"`
	Steps      int        `json:"steps"`
	Frames     int        `json:"frames"`
	DurationMs int64      `json:"duration_ms"`
}

// GridState represents the grid as served by the visualizer
type GridState struct {
	Name       string     `json:"name"`
	Rows       int        `json:"rows"`
	Width      int        `json:"width"`
	TileSize   int        `json:"tile_size"`
	Layout     []string   `json:"layout"`
	Start      *Position  `json:"start,omitempty"`
	End        *Position  `json:"end,omitempty"`
	Running    bool       `json:"running"`
	Runs       int        `json:"runs"`
	LastResult *RunResult `json:"last_result,omitempty"`
}

// Frame is one step of a streamed run
type Frame struct {
	Step   int      `json:"step"`
	Phase  string   `json:"phase"`
	Layout []string `json:"layout"`
}

// WSMessage represents WebSocket message wrapper
type WSMessage struct {
	SessionID string          `json:"session_id"`
	Event     string          `json:"event,omitempty"`
	Frame     *Frame          `json:"frame,omitempty"`
	GridState *GridState      `json:"grid_state,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	state      *GridState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	frame      int
	phase      string
	lastRun    *RunResult
	lastEdit   Position // last cell touched while dragging, to avoid resending it
	dragging   bool
}

// SessionListItem represents a session from the server
type SessionListItem struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	CreatedAt  string     `json:"created_at"`
	GridState  *GridState `json:"grid_state"`
}

// ConfigListItem represents a grid layout
type ConfigListItem struct {
	ConfigID    string `json:"config_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
}

// Visualizer represents the desktop client
type Visualizer struct {
	sessions         []*SessionData
	activeSession    int // index of currently active session
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool // session IDs selected to open
	statusMsg        string
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionListItem
	availableConfigs  []ConfigListItem
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string // selected layout for new session
}

// NewVisualizer creates a client, opening sessionIDs straight away if any are given
func NewVisualizer(sessionIDs []string) *Visualizer {
	v := &Visualizer{
		sessions:         make([]*SessionData, 0),
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen: &WelcomeScreen{
			availableSessions: make([]SessionListItem, 0),
			availableConfigs:  make([]ConfigListItem, 0),
		},
	}

	// If session IDs provided, skip welcome screen and go straight to the grid
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			v.addSession(sid)
		}
		v.currentScreen = ScreenGrid
	} else {
		v.loadWelcomeData()
	}

	return v
}

// addSession opens a session, creating one with the active layout when sessionID is empty
func (v *Visualizer) addSession(sessionID string) {
	session := &SessionData{
		sessionID:  sessionID,
		lastUpdate: time.Now(),
		lastEdit:   Position{Row: -1, Col: -1},
	}

	if sessionID == "" {
		configName := ""
		if len(v.sessions) > 0 && v.sessions[v.activeSession].state != nil {
			configName = v.sessions[v.activeSession].state.Name
		}
		id, err := createSession(configName)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		session.sessionID = id
	}

	v.sessions = append(v.sessions, session)

	if err := v.connectWebSocket(session); err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", session.sessionID, err)
	} else {
		go v.listenWebSocket(session)
	}

	// Initial state fetch
	if err := v.fetchGridState(session); err != nil {
		log.Printf("Failed to fetch grid for %s: %v", session.sessionID, err)
	}
}

// createSession creates a new session on the server with an optional layout
func createSession(configName string) (string, error) {
	payload := map[string]string{}
	if configName != "" {
		payload["config_id"] = configName
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := postJSON(fmt.Sprintf("%s/api/sessions", baseURL), payload, &result); err != nil {
		return "", err
	}

	log.Printf("Created new session: %s (config: %s)", result.ID, configName)
	return result.ID, nil
}

// postJSON posts body and decodes a JSON reply into result when it is non-nil
func postJSON(endpoint string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := http.Post(endpoint, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(reply, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(reply, result); err != nil {
		return fmt.Errorf("failed to parse response: %v (body: %s)", err, string(reply))
	}
	return nil
}

// connectWebSocket establishes WebSocket connection
func (v *Visualizer) connectWebSocket(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	wsURL := url.URL{Scheme: "ws", Host: wsHost, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", session.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	session.wsConn = conn
	log.Printf("WebSocket connected for session %s", session.sessionID)
	return nil
}

// listenWebSocket applies frames and grid updates as they arrive
func (v *Visualizer) listenWebSocket(session *SessionData) {
	defer func() {
		v.stateMutex.Lock()
		if session.wsConn != nil {
			session.wsConn.Close()
			session.wsConn = nil
		}
		v.stateMutex.Unlock()
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			return
		}

		// Queued messages arrive batched, one JSON object per line
		for _, line := range bytes.Split(message, []byte{'\n'}) {
			var wsMsg WSMessage
			if err := json.Unmarshal(line, &wsMsg); err != nil {
				log.Printf("WebSocket JSON parse error: %v", err)
				continue
			}
			v.applyMessage(session, &wsMsg)
		}
	}
}

func (v *Visualizer) applyMessage(session *SessionData, msg *WSMessage) {
	v.stateMutex.Lock()
	defer v.stateMutex.Unlock()

	switch msg.Event {
	case "frame":
		if msg.Frame == nil || session.state == nil {
			return
		}
		session.state.Layout = msg.Frame.Layout
		session.state.Running = true
		session.frame = msg.Frame.Step
		session.phase = msg.Frame.Phase
	case "grid_update":
		if msg.GridState == nil {
			return
		}
		session.state = msg.GridState
	case "run_complete":
		var result RunResult
		if err := json.Unmarshal(msg.Data, &result); err != nil {
			log.Printf("Bad run_complete payload: %v", err)
			return
		}
		session.lastRun = &result
		if session.state != nil {
			session.state.Running = false
		}
	case "run_failed":
		log.Printf("Run failed for %s: %s", session.sessionID, string(msg.Data))
		if session.state != nil {
			session.state.Running = false
		}
	}
	session.lastUpdate = time.Now()
}

// fetchGridState gets the current grid from the server
func (v *Visualizer) fetchGridState(session *SessionData) error {
	if session.sessionID == "" {
		return fmt.Errorf("no session ID set")
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/grid", baseURL, session.sessionID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var state GridState
	if err := json.Unmarshal(body, &state); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(body))
	}

	v.stateMutex.Lock()
	session.state = &state
	session.lastUpdate = time.Now()
	v.stateMutex.Unlock()

	return nil
}

// loadWelcomeData fetches available sessions and layouts from server
func (v *Visualizer) loadWelcomeData() {
	ws := v.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	resp, err := http.Get(fmt.Sprintf("%s/api/sessions", baseURL))
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var sessionsResp struct {
		Sessions []SessionListItem `json:"sessions"`
	}
	if err := json.Unmarshal(body, &sessionsResp); err == nil {
		ws.availableSessions = sessionsResp.Sessions
	}

	resp, err = http.Get(fmt.Sprintf("%s/api/configs", baseURL))
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading layouts: %v", err)
		return
	}
	defer resp.Body.Close()

	body, _ = io.ReadAll(resp.Body)
	var configs []ConfigListItem
	if err := json.Unmarshal(body, &configs); err == nil {
		ws.availableConfigs = configs
	}
}

// createNewSessionFromWelcome creates a new session with the selected layout
func (v *Visualizer) createNewSessionFromWelcome() error {
	id, err := createSession(v.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}

	v.selectedSessions[id] = true
	v.loadWelcomeData()
	return nil
}

// openSelectedSessions transitions to the grid screen with selected sessions
func (v *Visualizer) openSelectedSessions() {
	if len(v.selectedSessions) == 0 {
		v.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range v.selectedSessions {
		v.addSession(sessionID)
	}
	v.selectedSessions = make(map[string]bool)

	v.currentScreen = ScreenGrid
}

func (v *Visualizer) active() *SessionData {
	if len(v.sessions) == 0 {
		return nil
	}
	return v.sessions[v.activeSession]
}

// sendEdit paints or erases the cell under the cursor, addressed by pixel
func (v *Visualizer) sendEdit(session *SessionData, action string, cursorX, cursorY int) {
	v.stateMutex.RLock()
	state := session.state
	v.stateMutex.RUnlock()
	if state == nil || state.Rows == 0 {
		return
	}

	gy := cursorY - headerHeight
	if cursorX < 0 || gy < 0 || cursorX >= gridSize || gy >= gridSize {
		return
	}

	// Local cell guess only de-duplicates drags; the server does the mapping
	tile := gridSize / state.Rows
	if tile == 0 {
		return
	}
	cell := Position{Row: gy / tile, Col: cursorX / tile}
	if session.dragging && cell == session.lastEdit {
		return
	}
	session.lastEdit = cell
	session.dragging = true

	width := state.Width
	if width == 0 {
		width = gridSize
	}
	pixel := Pixel{X: cursorX * width / gridSize, Y: gy * width / gridSize}

	var result struct {
		GridState *GridState `json:"grid_state"`
	}
	endpoint := fmt.Sprintf("%s/api/sessions/%s/%s", baseURL, session.sessionID, action)
	if err := postJSON(endpoint, map[string]Pixel{"pixel": pixel}, &result); err != nil {
		v.statusMsg = fmt.Sprintf("%s failed: %v", action, err)
		return
	}

	v.stateMutex.Lock()
	if result.GridState != nil {
		session.state = result.GridState
	}
	v.stateMutex.Unlock()
	v.statusMsg = ""
}

// sendCommand posts a body-less or small command to the active session
func (v *Visualizer) sendCommand(session *SessionData, action string, body interface{}) {
	endpoint := fmt.Sprintf("%s/api/sessions/%s/%s", baseURL, session.sessionID, action)
	if err := postJSON(endpoint, body, nil); err != nil {
		v.statusMsg = fmt.Sprintf("%s failed: %v", action, err)
		return
	}
	v.statusMsg = ""

	// Without a WebSocket there is nothing to push the new grid to us
	if session.wsConn == nil {
		v.fetchGridState(session)
	}
}

// Update updates client logic
func (v *Visualizer) Update() error {
	switch v.currentScreen {
	case ScreenWelcome:
		return v.updateWelcomeScreen()
	case ScreenGrid:
		return v.updateGridScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (v *Visualizer) updateWelcomeScreen() error {
	ws := v.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		v.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		ws.cursorPos++
		if ws.cursorPos >= totalItems {
			ws.cursorPos = totalItems - 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		ws.cursorPos--
		if ws.cursorPos < 0 {
			ws.cursorPos = 0
		}
	}

	// Toggle selection with Space
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		if ws.cursorPos >= 0 && ws.cursorPos < len(ws.availableSessions) {
			sessionID := ws.availableSessions[ws.cursorPos].ID
			if v.selectedSessions[sessionID] {
				delete(v.selectedSessions, sessionID)
			} else {
				v.selectedSessions[sessionID] = true
			}
		}
	}

	// Cycle through layouts with Tab
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		currentIdx := -1
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				currentIdx = i
				break
			}
		}
		currentIdx++
		if currentIdx >= len(ws.availableConfigs) {
			ws.newSessionConfig = "" // default layout
		} else {
			ws.newSessionConfig = ws.availableConfigs[currentIdx].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := v.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		v.openSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(v.sessions) > 0 {
		v.currentScreen = ScreenGrid
	}

	return nil
}

// updateGridScreen handles mouse painting and key commands
func (v *Visualizer) updateGridScreen() error {
	session := v.active()
	if session == nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			v.currentScreen = ScreenWelcome
			v.loadWelcomeData()
		}
		return nil
	}

	// Poll when the WebSocket is not connected
	if session.wsConn == nil && time.Since(session.lastUpdate) > 500*time.Millisecond {
		if err := v.fetchGridState(session); err != nil {
			log.Printf("Error fetching grid for %s: %v", session.sessionID, err)
		}
	}

	v.stateMutex.RLock()
	running := session.state != nil && session.state.Running
	v.stateMutex.RUnlock()

	// Edits are refused by the server mid-run; skip the round trips
	if !running {
		x, y := ebiten.CursorPosition()
		switch {
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
			v.sendEdit(session, "paint", x, y)
		case ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight):
			v.sendEdit(session, "erase", x, y)
		default:
			session.dragging = false
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && !running {
		v.sendCommand(session, "run", map[string]bool{"async": true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && !running {
		session.lastRun = nil
		v.sendCommand(session, "clear", nil)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) && !running {
		session.lastRun = nil
		v.sendCommand(session, "reset", nil)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) && !running {
		v.sendCommand(session, "scatter", nil)
	}

	// Session switching with number keys (1-9)
	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			idx := int(i - ebiten.Key1)
			if idx < len(v.sessions) {
				v.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, v.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(v.sessions) < 9 {
		v.addSession("")
		v.activeSession = len(v.sessions) - 1
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		v.currentScreen = ScreenWelcome
		v.loadWelcomeData()
	}

	return nil
}

// Draw renders the current screen
func (v *Visualizer) Draw(screen *ebiten.Image) {
	switch v.currentScreen {
	case ScreenWelcome:
		v.drawWelcomeScreen(screen)
	case ScreenGrid:
		v.drawGridScreen(screen)
	}
}

// drawWelcomeScreen renders the session selection screen
func (v *Visualizer) drawWelcomeScreen(screen *ebiten.Image) {
	ws := v.welcomeScreen

	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== A* PATH VISUALIZER - SESSION SELECT ===", 200, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}

	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20

	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	} else {
		for i, session := range ws.availableSessions {
			cursor := "  "
			if i == ws.cursorPos {
				cursor = "> "
			}

			checkbox := "[ ]"
			if v.selectedSessions[session.ID] {
				checkbox = "[X]"
			}

			detail := ""
			if gs := session.GridState; gs != nil {
				detail = fmt.Sprintf("%dx%d runs:%d", gs.Rows, gs.Rows, gs.Runs)
			}

			line := fmt.Sprintf("%s%s %s | %s | %s", cursor, checkbox, session.ID, session.ConfigName, detail)
			ebitenutil.DebugPrintAt(screen, line, 20, y)
			y += 15
		}
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "─────────────────────────────────────────", 20, y)
	y += 20

	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20

	configDisplay := "default"
	if ws.newSessionConfig != "" {
		configDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Layout: %s", configDisplay), 20, y)
	y += 15

	ebitenutil.DebugPrintAt(screen, "  Available Layouts:", 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s (%dx%d) - %s", marker, cfg.ConfigID, cfg.Rows, cfg.Rows, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(v.selectedSessions)), 20, y)
	y += 30

	controls := []string{
		"CONTROLS:",
		"  ↑/↓      - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle layout for new session",
		"  N        - Create new session with selected layout",
		"  ENTER    - Open selected sessions",
		"  F5       - Refresh session list",
	}
	if len(v.sessions) > 0 {
		controls = append(controls, "  ESC      - Back to grid")
	}
	for _, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGridScreen renders the active session's grid
func (v *Visualizer) drawGridScreen(screen *ebiten.Image) {
	v.stateMutex.RLock()
	defer v.stateMutex.RUnlock()

	screen.Fill(color.RGBA{20, 20, 30, 255})

	session := v.active()
	if session == nil {
		ebitenutil.DebugPrint(screen, "No sessions open. Press ESC to go to session select.")
		return
	}
	if session.state == nil || session.state.Rows == 0 {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	v.drawHeader(screen, session)

	state := session.state
	tile := float64(gridSize) / float64(state.Rows)
	for r, row := range state.Layout {
		for c := 0; c < len(row); c++ {
			fill, ok := glyphColors[row[c]]
			if !ok {
				fill = color.RGBA{50, 50, 50, 255}
			}
			ebitenutil.DrawRect(screen, float64(c)*tile, float64(headerHeight)+float64(r)*tile, tile, tile, fill)
		}
	}

	// Grid lines, skipped when the cells are too small to see between them
	if tile >= 4 {
		for i := 0; i <= state.Rows; i++ {
			offset := float64(i) * tile
			ebitenutil.DrawLine(screen, 0, float64(headerHeight)+offset, gridSize, float64(headerHeight)+offset, gridLineColor)
			ebitenutil.DrawLine(screen, offset, headerHeight, offset, headerHeight+gridSize, gridLineColor)
		}
	}

	footer := "LMB: Paint | RMB: Erase | SPACE: Run | ENTER: Clear | R: Reset | B: Barriers | 1-9/N: Sessions | ESC: Menu"
	if v.statusMsg != "" {
		footer = v.statusMsg
	}
	ebitenutil.DebugPrintAt(screen, footer, 5, headerHeight+gridSize+3)
}

func (v *Visualizer) drawHeader(screen *ebiten.Image, session *SessionData) {
	state := session.state

	connStatus := "POLL"
	if session.wsConn != nil {
		connStatus = "WS"
	}

	line := fmt.Sprintf("[%d/%d] %s [%s] %s %dx%d  start:%s end:%s",
		v.activeSession+1, len(v.sessions), session.sessionID, connStatus,
		state.Name, state.Rows, state.Rows, formatPosition(state.Start), formatPosition(state.End))
	ebitenutil.DebugPrintAt(screen, line, 5, 3)

	var status string
	switch {
	case state.Running:
		status = fmt.Sprintf("Searching... step %d (%s)", session.frame, session.phase)
	case session.lastRun != nil && session.lastRun.Found:
		r := session.lastRun
		status = fmt.Sprintf("Path found: cost %d, expanded %d, %d steps in %dms", r.Cost, r.Expanded, r.Steps, r.DurationMs)
	case session.lastRun != nil:
		status = fmt.Sprintf("No path: expanded %d cells", session.lastRun.Expanded)
	default:
		status = "Place start and end, then press SPACE"
	}
	ebitenutil.DebugPrintAt(screen, status, 5, 20)
}

func formatPosition(p *Position) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Layout returns the screen size
func (v *Visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	// Accept multiple session IDs as arguments
	sessionIDs := []string{}
	for _, arg := range os.Args[1:] {
		if s := strings.TrimSpace(arg); s != "" {
			sessionIDs = append(sessionIDs, s)
		}
	}

	visualizer := NewVisualizer(sessionIDs)

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("A* Pathfinding Visualiser")

	if err := ebiten.RunGame(visualizer); err != nil {
		log.Fatal(err)
	}
}
