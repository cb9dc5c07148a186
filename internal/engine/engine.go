package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/riskwatch/riskwatch/internal/metrics"
	"github.com/riskwatch/riskwatch/internal/models"
	"github.com/riskwatch/riskwatch/internal/weatherapi"
)

// DefaultRefreshInterval is how often the snapshot is refreshed when the
// caller does not configure a period.
const DefaultRefreshInterval = 5 * time.Minute

const (
	msgLoadFailed   = "Failed to load weather data. Please try again later."
	msgSearchFailed = "Unable to fetch weather data. Please try again."
)

func notFoundMessage(city string) string {
	return fmt.Sprintf("City %q not found. Please check the spelling and try again.", city)
}

// Source is the remote weather service as the engine sees it.
type Source interface {
	ListAll(ctx context.Context) ([]models.WeatherRecord, error)
	FetchOne(ctx context.Context, city string) (models.WeatherRecord, error)
	ListAlerts(ctx context.Context) ([]models.AlertRecord, error)
}

// State is a point-in-time copy of the engine's sync state, safe for a
// consumer to hold after the engine has moved on. Cities are ordered
// most-recently-searched-or-loaded first.
type State struct {
	Cities        []models.WeatherRecord `json:"cities"`
	Alerts        []models.AlertRecord   `json:"alerts"`
	Loading       bool                   `json:"loading"`
	SearchLoading bool                   `json:"search_loading"`
	Error         string                 `json:"error,omitempty"`
}

// Engine owns the authoritative in-memory city snapshot and alert list.
// Completions of outstanding requests serialize on one mutex; network calls
// happen outside it, so requests may still overlap in flight. A stale
// response that arrives after a newer one can overwrite it — last arrival
// wins, same as the dashboard this models.
type Engine struct {
	source   Source
	interval time.Duration

	mu            sync.Mutex
	records       []models.WeatherRecord
	alerts        []models.AlertRecord
	loading       bool
	searchLoading bool
	errMsg        string
}

// New creates an engine in the Booting state: loading, empty snapshot,
// no error.
func New(source Source, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Engine{
		source:   source,
		interval: interval,
		loading:  true,
	}
}

// Run performs the initial load, then refreshes on the fixed period until
// ctx is cancelled. Cancelling ctx is the stop handle; the first tick only
// ever fires a full interval after the initial load.
func (e *Engine) Run(ctx context.Context) {
	e.InitialLoad(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("engine: shutting down")
			return
		case <-ticker.C:
			e.refreshTick(ctx)
		}
	}
}

// InitialLoad populates the snapshot and alert list for the first time.
// Whatever happens, the engine leaves the loading state when it returns.
func (e *Engine) InitialLoad(ctx context.Context) {
	e.refresh(ctx, true)
}

func (e *Engine) refreshTick(ctx context.Context) {
	e.refresh(ctx, false)
}

func (e *Engine) refresh(ctx context.Context, initial bool) {
	records, err := e.source.ListAll(ctx)
	// A failed city list must not stop the alert attempt.
	alerts, alertErr := e.source.ListAlerts(ctx)

	if err != nil {
		log.Printf("engine: list weather: %v", err)
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
	} else {
		metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	}
	if alertErr != nil {
		// Best-effort: alert failures never surface to the user.
		log.Printf("engine: list alerts: %v", alertErr)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.errMsg = msgLoadFailed
	} else {
		e.records = records
		e.errMsg = ""
	}
	if alertErr == nil {
		e.alerts = alerts
	}
	if initial {
		e.loading = false
	}
}

// SearchCity fetches one city by name and merges the result into the
// snapshot: any existing record for the same city (case-insensitive) is
// replaced, and the new record moves to the front. Blank input is a no-op
// and never reaches the network.
func (e *Engine) SearchCity(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	e.mu.Lock()
	e.searchLoading = true
	e.errMsg = ""
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.searchLoading = false
		e.mu.Unlock()
	}()

	rec, err := e.source.FetchOne(ctx, name)
	if err != nil {
		notFound := errors.Is(err, weatherapi.ErrCityNotFound)
		log.Printf("engine: search %q: %v", name, err)

		e.mu.Lock()
		if notFound {
			e.errMsg = notFoundMessage(name)
		} else {
			e.errMsg = msgSearchFailed
		}
		e.mu.Unlock()

		if notFound {
			metrics.SearchesTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.SearchesTotal.WithLabelValues("error").Inc()
		}
		return
	}

	e.mu.Lock()
	e.records = upsert(e.records, rec)
	e.errMsg = ""
	e.mu.Unlock()
	metrics.SearchesTotal.WithLabelValues("found").Inc()

	// A successful search refreshes the alert list; failures stay silent.
	alerts, err := e.source.ListAlerts(ctx)
	if err != nil {
		log.Printf("engine: list alerts after search: %v", err)
		return
	}
	e.mu.Lock()
	e.alerts = alerts
	e.mu.Unlock()
}

// State returns a copy of the current sync state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		Cities:        make([]models.WeatherRecord, len(e.records)),
		Alerts:        make([]models.AlertRecord, len(e.alerts)),
		Loading:       e.loading,
		SearchLoading: e.searchLoading,
		Error:         e.errMsg,
	}
	copy(st.Cities, e.records)
	copy(st.Alerts, e.alerts)
	return st
}

// upsert puts rec at the front of the snapshot, dropping any prior record
// for the same city under case-insensitive comparison. Untouched records
// keep their relative order.
func upsert(records []models.WeatherRecord, rec models.WeatherRecord) []models.WeatherRecord {
	merged := make([]models.WeatherRecord, 0, len(records)+1)
	merged = append(merged, rec)
	for _, r := range records {
		if strings.EqualFold(r.City, rec.City) {
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
