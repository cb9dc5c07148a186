package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskwatch/riskwatch/internal/engine"
	"github.com/riskwatch/riskwatch/internal/models"
)

// Server exposes the engine's snapshot over JSON. It is purely a consumer
// of the engine; no sync logic lives here.
type Server struct {
	engine *engine.Engine
	port   string
}

func NewServer(eng *engine.Engine, port string) *Server {
	return &Server{
		engine: eng,
		port:   port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/alerts", s.handleAlerts)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

type dashboardResponse struct {
	Cities         []models.WeatherRecord `json:"cities"`
	Alerts         []models.AlertRecord   `json:"alerts"`
	HighRiskAlerts []models.AlertRecord   `json:"high_risk_alerts,omitempty"`
	Stats          engine.Stats           `json:"stats"`
	Loading        bool                   `json:"loading"`
	SearchLoading  bool                   `json:"search_loading"`
	Error          string                 `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.dashboard())
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.engine.State().Alerts)
}

// handleSearch runs a single-city search synchronously and returns the
// refreshed dashboard. The blank-input guard lives here, before the engine
// is ever invoked.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" {
		http.Error(w, "city is required", http.StatusBadRequest)
		return
	}

	s.engine.SearchCity(r.Context(), city)
	writeJSON(w, s.dashboard())
}

func (s *Server) dashboard() dashboardResponse {
	st := s.engine.State()
	return dashboardResponse{
		Cities:         st.Cities,
		Alerts:         st.Alerts,
		HighRiskAlerts: engine.HighRiskAlerts(st.Alerts),
		Stats:          engine.ComputeStats(st.Cities, st.Alerts),
		Loading:        st.Loading,
		SearchLoading:  st.SearchLoading,
		Error:          st.Error,
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
