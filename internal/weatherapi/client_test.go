package weatherapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskwatch/riskwatch/internal/models"
)

func TestListAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/weather/multiple" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"city":"Mumbai","country":"IN","temperature":42,"humidity":85,"pressure":995,"wind_speed":22,"description":"heavy rain","risk_level":"HIGH","disaster_type":"Severe Storm/Cyclone"},
			{"city":"London","country":"GB","temperature":22,"humidity":65,"pressure":1015,"wind_speed":5,"description":"partly cloudy","risk_level":"LOW","disaster_type":"Normal Conditions"}
		]`))
	}))
	defer srv.Close()

	records, err := NewClient(srv.URL).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].City != "Mumbai" || records[1].City != "London" {
		t.Errorf("order not preserved: %q, %q", records[0].City, records[1].City)
	}
	if records[0].RiskLevel != models.RiskHigh {
		t.Errorf("risk_level = %q, want HIGH", records[0].RiskLevel)
	}
	if records[0].WindSpeed != 22 {
		t.Errorf("wind_speed = %v, want 22", records[0].WindSpeed)
	}
}

func TestListAllServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).ListAll(context.Background()); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestFetchOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/weather/Paris" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"city":"Paris","country":"FR","temperature":18,"humidity":60,"pressure":1012,"wind_speed":4,"description":"light rain","risk_level":"LOW","disaster_type":"Normal Conditions"}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).FetchOne(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if rec.City != "Paris" || rec.Country != "FR" {
		t.Errorf("got %+v, want Paris/FR", rec)
	}
}

func TestFetchOnePathEscaping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.EscapedPath(); got != "/api/weather/New%20York" {
			t.Errorf("escaped path = %q, want /api/weather/New%%20York", got)
		}
		w.Write([]byte(`{"city":"New York","country":"US","risk_level":"LOW","disaster_type":"Normal Conditions"}`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).FetchOne(context.Background(), "New York"); err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
}

func TestFetchOneNotFoundStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchOne(context.Background(), "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("err = %v, want ErrCityNotFound", err)
	}
}

func TestFetchOneNotFoundDetail(t *testing.T) {
	// The backend proxies its upstream's miss through a 400 whose detail
	// text carries the "city not found" marker.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"Weather API error: 404 Client Error: city not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchOne(context.Background(), "Atlantis")
	if !errors.Is(err, ErrCityNotFound) {
		t.Fatalf("err = %v, want ErrCityNotFound", err)
	}
}

func TestFetchOneServerErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchOne(context.Background(), "Atlantis")
	if err == nil {
		t.Fatal("expected error on 500")
	}
	if errors.Is(err, ErrCityNotFound) {
		t.Fatalf("500 must not classify as not-found: %v", err)
	}
}

func TestListAlerts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/alerts" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"city":"Mumbai","disaster_type":"Flood Risk","message":"HIGH risk of Flood Risk in Mumbai","risk_level":"HIGH"}]`))
	}))
	defer srv.Close()

	alerts, err := NewClient(srv.URL).ListAlerts(context.Background())
	if err != nil {
		t.Fatalf("ListAlerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].DisasterType != "Flood Risk" {
		t.Errorf("alerts = %+v", alerts)
	}
}

func TestListAlertsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).ListAlerts(context.Background()); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestUnknownRiskLevelDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"city":"Oz","country":"OZ","risk_level":"SEVERE","disaster_type":"Tornado"}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL).FetchOne(context.Background(), "Oz")
	if err != nil {
		t.Fatalf("FetchOne: %v", err)
	}
	if rec.RiskLevel != "SEVERE" {
		t.Errorf("risk_level = %q, want SEVERE carried through", rec.RiskLevel)
	}
	if rec.RiskLevel.Known() {
		t.Error("SEVERE should not be a known level")
	}
}

func TestHasNotFoundDetail(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{`{"detail":"City Not Found"}`, true},
		{`{"detail":"Weather API error: city not found"}`, true},
		{`{"detail":"rate limit exceeded"}`, false},
		{`{"message":"city not found"}`, false},
		{`not json`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := hasNotFoundDetail([]byte(tt.body)); got != tt.want {
			t.Errorf("hasNotFoundDetail(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
