package healthprobe

import (
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// HealthChecker provides liveness, and readiness tied to the last feed fetch.
type HealthChecker struct {
	startTime time.Time

	mu        sync.RWMutex
	fetched   bool
	lastErr   error
	lastFetch time.Time
}

// New creates a new HealthChecker. It is not ready until a fetch succeeds.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now(),
	}
}

// RecordFeedResult stores the outcome of the latest feed fetch.
// A nil err marks the service ready.
func (h *HealthChecker) RecordFeedResult(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.fetched = true
	h.lastErr = err
	h.lastFetch = time.Now()
}

// IsReady reports whether the latest feed fetch succeeded.
func (h *HealthChecker) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.fetched && h.lastErr == nil
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime,omitempty"`
	Message   string `json:"message,omitempty"`
	LastFetch string `json:"last_fetch,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the application is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status: "healthy",
			Uptime: time.Since(h.startTime).String(),
		})
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK after a successful fetch, 503 Service Unavailable otherwise.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		fetched, lastErr, lastFetch := h.fetched, h.lastErr, h.lastFetch
		h.mu.RUnlock()

		switch {
		case !fetched:
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  "not_ready",
				Message: "awaiting first feed fetch",
			})
		case lastErr != nil:
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "not_ready",
				Message:   types.FeedErrorKind(lastErr),
				LastFetch: lastFetch.UTC().Format(time.RFC3339),
			})
		default:
			writeJSON(w, http.StatusOK, HealthResponse{
				Status:    "ready",
				Uptime:    time.Since(h.startTime).String(),
				LastFetch: lastFetch.UTC().Format(time.RFC3339),
			})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
