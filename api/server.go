package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wricardo/mcp-training/pathviz/game/config"
	"github.com/wricardo/mcp-training/pathviz/game/engine"
	"github.com/wricardo/mcp-training/pathviz/game/render"
	"github.com/wricardo/mcp-training/pathviz/game/service"
	"github.com/wricardo/mcp-training/pathviz/game/session"
	"github.com/wricardo/mcp-training/pathviz/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.VisualizerService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil, in which case nothing is streamed.
func NewServer(svc service.VisualizerService, hub *websocket.Hub) *Server {
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Grid
	api.HandleFunc("/sessions/{id}/grid", s.handleGetGrid).Methods("GET")
	api.HandleFunc("/sessions/{id}/image.png", s.handleGridImage).Methods("GET")
	api.HandleFunc("/sessions/{id}/paint", s.handlePaint).Methods("POST")
	api.HandleFunc("/sessions/{id}/erase", s.handleErase).Methods("POST")
	api.HandleFunc("/sessions/{id}/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/sessions/{id}/scatter", s.handleScatter).Methods("POST")

	// Search
	api.HandleFunc("/sessions/{id}/run", s.handleRun).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// Operations
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"error": message, "code": status})
}

// respondServiceError maps service and engine errors to status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSearchInProgress):
		return http.StatusConflict
	case errors.Is(err, engine.ErrStartNotSet), errors.Is(err, engine.ErrEndNotSet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrOutOfBounds), errors.Is(err, service.ErrInvalidEdit),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeOptional decodes a JSON body, treating an empty body as no input
func decodeOptional(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	info, err := s.service.CreateSession(r.Context(), req.ConfigID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Grid Handlers

func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGridState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleGridImage(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGridState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	withRoute, _ := strconv.ParseBool(r.URL.Query().Get("route"))
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.WritePNG(w, state, withRoute); err != nil {
		log.Printf("[IMAGE] session=%s render failed: %v", sessionID, err)
	}
}

func (s *Server) handlePaint(w http.ResponseWriter, r *http.Request) {
	s.handleEdit(w, r, "paint", s.service.Paint)
}

func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	s.handleEdit(w, r, "erase", s.service.Erase)
}

type editFunc func(ctx context.Context, sessionID string, req service.EditRequest) (*service.EditResult, error)

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request, action string, edit editFunc) {
	sessionID := mux.Vars(r)["id"]

	var req service.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := edit(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, result.GridState)
	}

	log.Printf("[EDIT] session=%s %s %s -> %s", sessionID, action, result.Position, result.State)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Clear(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Grid cleared",
		"grid_state": state,
	})
}

func (s *Server) handleScatter(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := engine.DefaultScatterOptions()
	if err := decodeOptional(r, &opts); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Scatter(r.Context(), sessionID, opts)
	if err != nil {
		if errors.Is(err, engine.ErrSearchInProgress) || errors.Is(err, session.ErrSessionNotFound) {
			respondServiceError(w, err)
		} else {
			respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, result.GridState)
	}

	log.Printf("[EDIT] session=%s scatter placed=%d", sessionID, result.Placed)

	respondJSON(w, http.StatusOK, result)
}

// Search Handlers

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Async bool `json:"async,omitempty"`
	}
	if err := decodeOptional(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Async {
		// The session is claimed before replying; refusals never reach the hub
		err := s.service.StartRun(context.Background(), sessionID, s.frameObserver(), func(result *service.RunResult, err error) {
			if err != nil {
				log.Printf("[RUN] session=%s async run failed: %v", sessionID, err)
				if s.hub != nil {
					s.hub.BroadcastRunFailed(sessionID, err)
				}
				return
			}
			s.finishRun(sessionID, result)
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}

		respondJSON(w, http.StatusAccepted, map[string]string{
			"message":    "Search started",
			"session_id": sessionID,
		})
		return
	}

	result, err := s.run(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// run executes a search, streaming frames and the final grid to the hub
func (s *Server) run(ctx context.Context, sessionID string) (*service.RunResult, error) {
	result, err := s.service.Run(ctx, sessionID, s.frameObserver())
	if err != nil {
		return nil, err
	}

	s.finishRun(sessionID, result)
	return result, nil
}

func (s *Server) frameObserver() service.FrameObserver {
	if s.hub == nil {
		return nil
	}
	return s.hub.BroadcastFrame
}

// finishRun publishes the final grid and result of a run
func (s *Server) finishRun(sessionID string, result *service.RunResult) {
	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, result.GridState)
		s.hub.BroadcastRunComplete(sessionID, result)
	}

	log.Printf("[RUN] session=%s found=%v cost=%d expanded=%d steps=%d dur=%dms",
		sessionID, result.Found, result.Cost, result.Expanded, result.Steps, result.DurationMs)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.ResetSearch(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastGrid(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Search marks cleared",
		"grid_state": state,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var gridConfig engine.GridConfig

	if err := json.NewDecoder(r.Body).Decode(&gridConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if gridConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), gridConfig.Name, &gridConfig); err != nil {
		respondError(w, errorStatus(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": gridConfig.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
