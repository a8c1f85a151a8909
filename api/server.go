package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/quackers-game/game/config"
	"github.com/wricardo/quackers-game/game/engine"
	"github.com/wricardo/quackers-game/transport/websocket"
)

// ConfigSource lists and loads game configurations
type ConfigSource interface {
	ListConfigs() ([]*config.ConfigInfo, error)
	LoadConfig(name string) (*engine.GameConfig, error)
}

// PlayerList is the response of GET /api/players
type PlayerList struct {
	Count   int                     `json:"count"`
	Players []engine.ClientGameData `json:"players"`
}

// Stats is the response of GET /api/stats
type Stats struct {
	ConnectedClients int   `json:"connected_clients"`
	Players          int   `json:"players"`
	TotalConnections int64 `json:"total_connections"`
}

// Server represents the REST API server
type Server struct {
	hub     *websocket.Hub
	configs ConfigSource
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(hub *websocket.Hub, configs ConfigSource) *Server {
	s := &Server{
		hub:     hub,
		configs: configs,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/stats", s.handleStats).Methods("GET")

	// Game state
	api.HandleFunc("/players", s.handleListPlayers).Methods("GET")
	api.HandleFunc("/players/{id}", s.handleGetPlayer).Methods("GET")
	api.HandleFunc("/cracker", s.handleGetCracker).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.hub.ServeWS)
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
	respondJSON(w, status, map[string]string{"error": message})
}

// Game State Handlers

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	players := s.hub.Players().Snapshot()
	sort.Slice(players, func(i, j int) bool { return players[i].ClientID < players[j].ClientID })

	respondJSON(w, http.StatusOK, PlayerList{
		Count:   len(players),
		Players: players,
	})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	player, ok := s.hub.Players().Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "client not found")
		return
	}

	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleGetCracker(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.hub.World().Cracker())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, Stats{
		ConnectedClients: s.hub.Clients().Count(),
		Players:          s.hub.Players().Count(),
		TotalConnections: s.hub.TotalAdmitted(),
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.configs.ListConfigs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.configs.LoadConfig(configName)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, config.ErrInvalidConfig):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
