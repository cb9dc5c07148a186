package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/riskwatch/riskwatch/internal/httputil"
	"github.com/riskwatch/riskwatch/internal/metrics"
	"github.com/riskwatch/riskwatch/internal/models"
)

// ErrCityNotFound is the distinguished not-found failure for single-city
// fetches. It covers both an HTTP 404 and an error body whose detail text
// says the city is unknown.
var ErrCityNotFound = errors.New("city not found")

// Client talks to the weather/disaster-risk API. The base URL is resolved
// once at process start and injected here; it never changes afterwards.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the risk API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httputil.NewClient(),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "weather-api",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// ListAll fetches current weather for the API's full city set. Records come
// back in the API's order; callers must not re-sort them.
func (c *Client) ListAll(ctx context.Context) ([]models.WeatherRecord, error) {
	res, err := c.get(ctx, "weather/multiple", "/api/weather/multiple")
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, fmt.Errorf("list weather: status %d", res.status)
	}

	var records []models.WeatherRecord
	if err := json.Unmarshal(res.body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal weather list: %w", err)
	}
	return records, nil
}

// FetchOne fetches current weather for a single city by name. A missing city
// is reported as ErrCityNotFound; every other failure is generic.
func (c *Client) FetchOne(ctx context.Context, city string) (models.WeatherRecord, error) {
	res, err := c.get(ctx, "weather/city", "/api/weather/"+url.PathEscape(city))
	if err != nil {
		return models.WeatherRecord{}, err
	}

	if res.status == http.StatusOK {
		var rec models.WeatherRecord
		if err := json.Unmarshal(res.body, &rec); err != nil {
			return models.WeatherRecord{}, fmt.Errorf("unmarshal weather: %w", err)
		}
		return rec, nil
	}

	// The backend proxies its upstream's "city not found" through an error
	// detail with a non-404 status, so the body text counts too.
	if res.status == http.StatusNotFound || hasNotFoundDetail(res.body) {
		return models.WeatherRecord{}, fmt.Errorf("%s: %w", city, ErrCityNotFound)
	}
	return models.WeatherRecord{}, fmt.Errorf("fetch city: status %d", res.status)
}

// ListAlerts fetches the current disaster alert list.
func (c *Client) ListAlerts(ctx context.Context) ([]models.AlertRecord, error) {
	res, err := c.get(ctx, "alerts", "/api/alerts")
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, fmt.Errorf("list alerts: status %d", res.status)
	}

	var alerts []models.AlertRecord
	if err := json.Unmarshal(res.body, &alerts); err != nil {
		return nil, fmt.Errorf("unmarshal alerts: %w", err)
	}
	return alerts, nil
}

type fetchResult struct {
	status int
	body   []byte
}

// get performs one GET against the API with the shared circuit breaker and
// rate-limit retry. Responses below 500 come back as results so each caller
// can classify its own status codes; transport errors, 5xx and an open
// breaker fail the call outright.
func (c *Client) get(ctx context.Context, endpoint, path string) (*fetchResult, error) {
	reqURL := c.baseURL + path

	var result *fetchResult
	operation := func() error {
		res, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return nil, fmt.Errorf("create request: %w", err)
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			if resp.StatusCode >= http.StatusInternalServerError {
				return nil, fmt.Errorf("fetch %s: status %d", endpoint, resp.StatusCode)
			}
			return &fetchResult{status: resp.StatusCode, body: body}, nil
		})
		if err != nil {
			// Transport errors, 5xx and an open breaker are not retried
			// here; the next scheduled tick retries implicitly.
			return backoff.Permanent(err)
		}

		fr := res.(*fetchResult)
		if fr.status == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited: status %d", fr.status)
		}
		result = fr
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	start := time.Now()
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.APICallsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, err
	}
	metrics.APICallsTotal.WithLabelValues(endpoint, strconv.Itoa(result.status)).Inc()
	return result, nil
}

// hasNotFoundDetail reports whether an error body's detail text marks the
// distinguished "city not found" failure.
func hasNotFoundDetail(body []byte) bool {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(e.Detail), "city not found")
}
