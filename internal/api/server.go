// Package api provides the HTTP API for observing the weather simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/tempest/internal/engine"
	"github.com/talgya/tempest/internal/geom"
	"github.com/talgya/tempest/internal/history"
	"github.com/talgya/tempest/internal/observability"
	"github.com/talgya/tempest/internal/weather"
)

// Server serves the weather state over HTTP.
type Server struct {
	Sys      *weather.System
	Runner   *engine.Runner
	DB       *history.DB
	Metrics  *observability.Metrics
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check on the weather).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/wind", s.handleWind)
	mux.HandleFunc("/api/v1/weather", s.handleWeather)
	mux.HandleFunc("/api/v1/storms", s.handleStorms)
	mux.HandleFunc("/api/v1/storms.geojson", s.handleStormsGeoJSON)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/patterns", s.handlePatterns)

	// Prometheus scrape endpoint.
	mux.Handle("/metrics", promhttp.Handler())

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/spawn", s.adminOnly(s.handleSpawn))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(s.Addr, s.Handler()); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
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

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no TEMPEST_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sys.Stats()

	status := map[string]any{
		"name":            "tempest",
		"tick":            s.Runner.Tick,
		"sim_time":        engine.SimTime(s.Runner.Tick),
		"speed":           s.Runner.Speed,
		"running":         s.Runner.Running,
		"global_time":     stats.GlobalTime,
		"seasonal_factor": stats.SeasonalFactor,
		"wind_direction":  s.Sys.GlobalWindDirection(),
		"wind_strength":   s.Sys.GlobalWindStrength(),
		"wave_height":     s.Sys.WaveHeight(),
		"active_storms":   stats.ActiveStorms,
		"active_cells":    stats.ActiveCells,
		"storms_spawned":  stats.StormsSpawned,
	}
	writeJSON(w, status)
}

// parsePoint reads the x and z query parameters.
func parsePoint(r *http.Request) (float64, float64, error) {
	x, err := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid x: %w", err)
	}
	z, err := strconv.ParseFloat(r.URL.Query().Get("z"), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid z: %w", err)
	}
	return x, z, nil
}

func (s *Server) handleWind(w http.ResponseWriter, r *http.Request) {
	x, z, err := parsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	wind := s.Sys.WindAt(x, z)
	s.observeQuery("wind", start)

	writeJSON(w, map[string]any{
		"x":         wind.X,
		"y":         wind.Y,
		"speed":     wind.Length(),
		"direction": wind.Heading(),
	})
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	x, z, err := parsePoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	cond := s.Sys.WeatherAt(x, z)
	s.observeQuery("weather", start)

	writeJSON(w, map[string]any{
		"condition":            cond,
		"description":          cond.Description(),
		"precip_kind":          cond.Precip.String(),
		"suitable_for_sailing": cond.SuitableForSailing(),
		"sailing_difficulty":   cond.SailingDifficulty(),
		"crew_comfort":         cond.CrewComfort(),
	})
}

func (s *Server) handleStorms(w http.ResponseWriter, r *http.Request) {
	now := s.Sys.GlobalTime()

	type stormEntry struct {
		Kind          string    `json:"kind"`
		Position      geom.Vec2 `json:"position"`
		Radius        float64   `json:"radius"`
		Intensity     float64   `json:"intensity"`
		AgeRatio      float64   `json:"age_ratio"`
		MaxWindSpeed  float64   `json:"max_wind_speed"`
		CentralThreat float64   `json:"central_threat"`
	}

	storms := s.Sys.ActiveStorms()
	out := make([]stormEntry, 0, len(storms))
	for i := range storms {
		st := &storms[i]
		out = append(out, stormEntry{
			Kind:          st.Kind.String(),
			Position:      st.Position,
			Radius:        st.Radius,
			Intensity:     st.Intensity,
			AgeRatio:      st.AgeRatio(now),
			MaxWindSpeed:  st.MaxWindSpeed(now),
			CentralThreat: st.ThreatLevel(st.Position, now),
		})
	}

	writeJSON(w, map[string]any{"storms": out})
}

// handleStormsGeoJSON exports active storm footprints as a GeoJSON
// FeatureCollection of circle polygons in world coordinates, for map
// tooling that speaks GeoJSON.
func (s *Server) handleStormsGeoJSON(w http.ResponseWriter, r *http.Request) {
	now := s.Sys.GlobalTime()
	fc := geojson.NewFeatureCollection()

	for _, st := range s.Sys.ActiveStorms() {
		feature := geojson.NewPolygonFeature(circleCoordinates(st.Position, st.Radius, 36))
		feature.SetProperty("kind", st.Kind.String())
		feature.SetProperty("intensity", st.Intensity)
		feature.SetProperty("age_ratio", st.AgeRatio(now))
		feature.SetProperty("max_wind_speed", st.MaxWindSpeed(now))
		fc.AddFeature(feature)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

// circleCoordinates builds a closed polygon ring approximating a circle.
func circleCoordinates(center geom.Vec2, radius float64, segments int) [][][]float64 {
	ring := make([][]float64, 0, segments+1)
	for i := 0; i <= segments; i++ {
		p := center.Add(geom.FromHeading(float64(i) / float64(segments) * 360).Scale(radius))
		ring = append(ring, []float64{p.X, p.Y})
	}
	return [][][]float64{ring}
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	now := s.Sys.GlobalTime()

	type cellEntry struct {
		Kind      string    `json:"kind"`
		Position  geom.Vec2 `json:"position"`
		Radius    float64   `json:"radius"`
		Intensity float64   `json:"intensity"`
		Rotation  float64   `json:"rotation"`
		AgeRatio  float64   `json:"age_ratio"`
	}

	cells := s.Sys.ActiveCells()
	out := make([]cellEntry, 0, len(cells))
	for i := range cells {
		c := &cells[i]
		out = append(out, cellEntry{
			Kind:      c.Kind.String(),
			Position:  c.Position,
			Radius:    c.Radius,
			Intensity: c.Intensity,
			Rotation:  c.Rotation,
			AgeRatio:  c.AgeRatio(now),
		})
	}

	writeJSON(w, map[string]any{"cells": out})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sys.Events()
	limit := parseLimit(r, 50)
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, map[string]any{"events": events})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history recording disabled", http.StatusNotFound)
		return
	}
	samples, err := s.DB.RecentSamples(parseLimit(r, 100))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"samples": samples})
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	type patternEntry struct {
		Name      string  `json:"name"`
		Strength  float64 `json:"strength"`
		Direction float64 `json:"direction"`
		Influence float64 `json:"influence"`
	}

	out := []patternEntry{}
	for _, p := range s.Sys.Patterns() {
		out = append(out, patternEntry{
			Name:      p.Name,
			Strength:  p.Strength,
			Direction: p.Direction.Heading(),
			Influence: p.Influence(s.Sys.GlobalTime(), s.Sys.SeasonalFactor()),
		})
	}
	writeJSON(w, map[string]any{"patterns": out})
}

// handleSpeed adjusts the tick speed multiplier. POST {"speed": 2.0}.
func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"speed": s.Runner.Speed})
		return
	}

	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed must be in [0, 100]", http.StatusBadRequest)
		return
	}

	s.Runner.Speed = req.Speed
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": s.Runner.Speed})
}

// handleSpawn forces a storm into existence. POST {"kind": "hurricane", "x": 0, "z": 0, "intensity": 0.9}.
func (s *Server) handleSpawn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Kind      string  `json:"kind"`
		X         float64 `json:"x"`
		Z         float64 `json:"z"`
		Intensity float64 `json:"intensity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	var kind weather.StormKind
	switch req.Kind {
	case "rain-squall":
		kind = weather.StormRainSquall
	case "thunderstorm":
		kind = weather.StormThunderstorm
	case "hurricane":
		kind = weather.StormHurricane
	default:
		http.Error(w, "unknown storm kind", http.StatusBadRequest)
		return
	}

	if req.Intensity == 0 {
		req.Intensity = 0.8
	}

	storm := s.Sys.SpawnStorm(kind, geom.Vec2{X: req.X, Y: req.Z}, req.Intensity)
	slog.Info("storm spawned by admin", "kind", req.Kind, "x", req.X, "z", req.Z)
	writeJSON(w, map[string]any{
		"kind":      storm.Kind.String(),
		"position":  storm.Position,
		"intensity": storm.Intensity,
	})
}

func (s *Server) observeQuery(name string, start time.Time) {
	if s.Metrics != nil {
		s.Metrics.QueryDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}
}

func parseLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}
