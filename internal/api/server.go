// Package api provides the HTTP API for observing a running game.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/frontier/internal/engine"
	"github.com/talgya/frontier/internal/model"
	"github.com/talgya/frontier/internal/persistence"
	"github.com/talgya/frontier/internal/world"
)

// streamBacklog is how many recent events a new stream subscriber gets.
const streamBacklog = 50

// Server serves the game state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; snapshot and saves need it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	hub   *Hub
	admin *RateLimiter
}

// NewServer creates a server and subscribes its event stream to the
// simulation.
func NewServer(sim *engine.Simulation, eng *engine.Engine, db *persistence.DB, port int, adminKey string) *Server {
	s := &Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		Port:     port,
		AdminKey: adminKey,
		hub:      NewHub(),
		admin:    NewRateLimiter(30, time.Minute),
	}
	sim.Update(func() { sim.OnEvent = s.hub.Publish })
	return s
}

// Handler returns the routed API with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/settlements", s.handleSettlements)
	mux.HandleFunc("/api/v1/colonies", s.handleColonies)
	mux.HandleFunc("/api/v1/players", s.handlePlayers)
	mux.HandleFunc("/api/v1/units", s.handleUnits)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/saves", s.handleSaves)

	// Websocket stream of events as they are recorded.
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/turn", s.adminOnly(s.handleTurn))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))
	mux.HandleFunc("/api/v1/intervention", s.adminOnly(s.handleIntervention))

	return corsMiddleware(mux)
}

// Start runs the event hub and serves the API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)

	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdown)
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth and the admin
// rate limit on POST requests. GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	limited := RateLimitMiddleware(s.admin, next)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next(w, r)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no FRONTIER_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limited(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"name": "frontier"}
	s.Sim.View(func() {
		turn := s.Sim.Game.Turn
		status["turn"] = turn
		status["date"] = engine.TurnDate(turn)
		status["stats"] = s.Sim.Stats
		status["seed"] = s.Sim.Rand.Seed()
		status["draws"] = s.Sim.Rand.Draws()
		status["ai_players"] = len(s.Sim.AI.Players())
	})
	if s.Eng != nil {
		status["speed"] = s.Eng.Speed()
		status["running"] = s.Eng.Running()
	}
	status["stream_clients"] = s.hub.Clients()
	writeJSON(w, status)
}

type alarmView struct {
	Player string `json:"player"`
	Value  int    `json:"value"`
	Level  string `json:"level"`
}

type settlementView struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Owner       string         `json:"owner"`
	Type        string         `json:"type"`
	Capital     bool           `json:"capital"`
	Coord       world.HexCoord `json:"coord"`
	Units       int            `json:"units"`
	OwnedUnits  int            `json:"owned_units"`
	Goods       map[string]int `json:"goods"`
	WantedGoods []string       `json:"wanted_goods,omitempty"`
	Missionary  string         `json:"missionary,omitempty"`
	MostHated   string         `json:"most_hated,omitempty"`
	LastTribute int            `json:"last_tribute"`
	Alarm       []alarmView    `json:"alarm"`
}

// handleSettlements lists native settlements, optionally filtered by
// ?owner= (player id or name).
func (s *Server) handleSettlements(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	var out []settlementView
	s.Sim.View(func() {
		g := s.Sim.Game
		scale := g.Scale()
		for _, is := range g.AllSettlements() {
			if owner != "" && !matchPlayer(g, is.Owner, owner) {
				continue
			}
			v := settlementView{
				ID:          is.ID,
				Name:        is.Name,
				Owner:       is.Owner,
				Type:        is.Type,
				Capital:     is.Capital,
				Coord:       is.Coord,
				Units:       len(is.Units),
				OwnedUnits:  len(is.OwnedUnits),
				Goods:       goodsMap(is.Goods.Stock),
				WantedGoods: is.WantedGoods,
				Missionary:  is.Missionary,
				MostHated:   is.MostHated,
				LastTribute: is.LastTribute,
				Alarm:       []alarmView{},
			}
			for _, p := range sortedIDs(is.Alarm) {
				t := is.Alarm[p]
				v.Alarm = append(v.Alarm, alarmView{Player: p, Value: t.Value, Level: t.Level(scale).String()})
			}
			out = append(out, v)
		}
	})
	writeJSON(w, emptyIfNil(out))
}

type colonyView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Owner     string         `json:"owner"`
	Coord     world.HexCoord `json:"coord"`
	Workers   int            `json:"workers"`
	Defenders int            `json:"defenders"`
	Goods     map[string]int `json:"goods"`
	Wishes    int            `json:"wishes"`
}

func (s *Server) handleColonies(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	var out []colonyView
	s.Sim.View(func() {
		g := s.Sim.Game
		for _, c := range g.AllColonies() {
			if owner != "" && !matchPlayer(g, c.Owner, owner) {
				continue
			}
			v := colonyView{
				ID:        c.ID,
				Name:      c.Name,
				Owner:     c.Owner,
				Coord:     c.Coord,
				Workers:   len(c.Units),
				Defenders: len(g.Defenders(c)),
				Goods:     goodsMap(c.Goods.Stock),
			}
			if ac := s.Sim.AI.AIColony(c.ID); ac != nil {
				v.Wishes = len(ac.Wishes())
			}
			out = append(out, v)
		}
	})
	writeJSON(w, emptyIfNil(out))
}

type relationView struct {
	Player  string `json:"player"`
	Stance  string `json:"stance"`
	Tension int    `json:"tension"`
}

type playerView struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	European  bool           `json:"european"`
	Gold      int            `json:"gold"`
	Dead      bool           `json:"dead"`
	Relations []relationView `json:"relations"`
	Missions  map[string]int `json:"missions,omitempty"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	var out []playerView
	s.Sim.View(func() {
		g := s.Sim.Game
		for _, p := range g.Players {
			v := playerView{ID: p.ID, Name: p.Name, European: p.European, Gold: p.Gold, Dead: p.Dead, Relations: []relationView{}}
			for _, other := range g.Players {
				if other.ID == p.ID {
					continue
				}
				v.Relations = append(v.Relations, relationView{
					Player:  other.ID,
					Stance:  p.StanceTo(other.ID).String(),
					Tension: p.TensionValue(other.ID),
				})
			}
			if ap := s.Sim.AI.AIPlayer(p.ID); ap != nil {
				v.Missions = ap.MissionCounts()
			}
			out = append(out, v)
		}
	})
	writeJSON(w, emptyIfNil(out))
}

type unitView struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Owner     string         `json:"owner"`
	Role      string         `json:"role"`
	Coord     world.HexCoord `json:"coord"`
	Location  string         `json:"location,omitempty"`
	Home      string         `json:"home,omitempty"`
	MovesLeft int            `json:"moves_left"`
	Cargo     map[string]int `json:"cargo,omitempty"`
	Mission   string         `json:"mission,omitempty"`
}

// handleUnits lists units, filtered by ?owner= and ?mission= (mission tag).
// At most ?limit= units (default 200, max 2000) are returned.
func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	owner, mission := q.Get("owner"), q.Get("mission")
	limit := 200
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 2000 {
			limit = n
		}
	}

	var out []unitView
	s.Sim.View(func() {
		g := s.Sim.Game
		units := make([]*model.Unit, 0, len(g.Units))
		for _, u := range g.Units {
			units = append(units, u)
		}
		sort.Slice(units, func(i, j int) bool { return units[i].Seq < units[j].Seq })
		for _, u := range units {
			if len(out) >= limit {
				break
			}
			if owner != "" && !matchPlayer(g, u.Owner, owner) {
				continue
			}
			v := unitView{
				ID:        u.ID,
				Type:      u.Type,
				Owner:     u.Owner,
				Role:      u.Role,
				Coord:     u.Coord,
				Location:  u.Location,
				Home:      u.Home,
				MovesLeft: u.MovesLeft,
			}
			if u.Cargo.HasGoods() {
				v.Cargo = goodsMap(u.Cargo.Stock)
			}
			if au := s.Sim.AI.AIUnit(u.ID); au != nil && au.HasMission() {
				v.Mission = au.Mission().String()
			}
			if mission != "" && !strings.HasPrefix(v.Mission, mission) {
				continue
			}
			out = append(out, v)
		}
	})
	writeJSON(w, emptyIfNil(out))
}

// handleEvents returns recent events, oldest first. ?limit= (default 50,
// max 500) and ?category= filter them.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Sim.RecentEvents(0)
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, emptyIfNil(events[start:]))
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	saves, err := s.DB.ListSaves(20)
	if err != nil {
		slog.Error("list saves failed", "error", err)
		http.Error(w, "list saves failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, emptyIfNil(saves))
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.hub.serve(w, r, s.Sim.RecentEvents(streamBacklog))
}

// handleTurn plays one turn. Refused while the engine is running
// unpaused.
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var turn int
	if s.Eng != nil {
		if s.Eng.Running() && s.Eng.Speed() > 0 {
			http.Error(w, "engine running; set speed 0 first", http.StatusConflict)
			return
		}
		turn = s.Eng.Step()
	} else {
		turn = s.Sim.Turn()
		s.Sim.NewTurn()
	}
	writeJSON(w, map[string]any{
		"played": turn,
		"turn":   s.Sim.Turn(),
		"date":   engine.TurnDate(s.Sim.Turn()),
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Eng == nil {
		http.Error(w, "no engine", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		if err := s.Eng.SetSpeed(req.Speed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	id, err := s.DB.SaveGame(s.Sim)
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"save":    id,
		"turn":    s.Sim.Turn(),
		"message": "snapshot saved",
	})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type       string `json:"type"`
		Settlement string `json:"settlement"`
		Goods      string `json:"goods,omitempty"`
		Quantity   int    `json:"quantity,omitempty"`
		Player     string `json:"player,omitempty"`
		Amount     int    `json:"amount,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Settlement == "" {
		http.Error(w, "settlement required", http.StatusBadRequest)
		return
	}

	var (
		details string
		err     error
	)
	switch req.Type {
	case "provision":
		details, err = s.Sim.ProvisionSettlement(req.Settlement, req.Goods, req.Quantity)
	case "alarm":
		details, err = s.Sim.AlarmSettlement(req.Settlement, req.Player, req.Amount)
	default:
		http.Error(w, "unknown intervention type (use: provision, alarm)", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"success": true, "details": details})
}

// matchPlayer reports whether the player id matches a query by id or
// case-insensitive name.
func matchPlayer(g *model.Game, id, query string) bool {
	if id == query {
		return true
	}
	p := g.Player(id)
	return p != nil && strings.EqualFold(p.Name, query)
}

func goodsMap(stock map[string]int) map[string]int {
	out := make(map[string]int, len(stock))
	for k, v := range stock {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func sortedIDs[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
