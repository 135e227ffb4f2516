package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-seeder/pkg/types"
)

// MockGammaAPI is a mock HTTP server that simulates the Gamma /markets endpoint.
type MockGammaAPI struct {
	*httptest.Server
	Markets []types.RawMarket

	mu       sync.RWMutex
	status   int
	body     []byte
	requests int
}

// NewMockGammaAPI creates a new mock Gamma API server.
// Markets are served as a bare array, one page only.
func NewMockGammaAPI(markets []types.RawMarket) *MockGammaAPI {
	mock := &MockGammaAPI{
		Markets: markets,
		status:  http.StatusOK,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests++
		mock.mu.Unlock()

		mock.mu.RLock()
		defer mock.mu.RUnlock()

		if r.URL.Path != "/markets" {
			http.NotFound(w, r)
			return
		}

		if mock.status != http.StatusOK {
			w.WriteHeader(mock.status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if mock.body != nil {
			w.Write(mock.body)
			return
		}

		// Only the first page carries data so paginated clients stop.
		if r.URL.Query().Get("offset") != "" && r.URL.Query().Get("offset") != "0" {
			w.Write([]byte("[]"))
			return
		}
		json.NewEncoder(w).Encode(mock.Markets)
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// SetStatus makes every subsequent request fail with status.
func (m *MockGammaAPI) SetStatus(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
}

// SetBody makes every subsequent request return body verbatim.
func (m *MockGammaAPI) SetBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = []byte(body)
}

// Requests returns the number of requests served.
func (m *MockGammaAPI) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// MockRunStore is an in-memory run store for testing.
type MockRunStore struct {
	Runs []*types.SelectionRun
	Err  error
	mu   sync.Mutex
}

// NewMockRunStore creates a new mock run store.
func NewMockRunStore() *MockRunStore {
	return &MockRunStore{
		Runs: make([]*types.SelectionRun, 0),
	}
}

// SaveRun stores a copy of run in memory, or returns Err when set.
func (m *MockRunStore) SaveRun(ctx context.Context, run *types.SelectionRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	runCopy := *run
	m.Runs = append(m.Runs, &runCopy)
	return nil
}

// Close is a no-op for mock storage.
func (m *MockRunStore) Close() error {
	return nil
}

// GetRuns returns all stored runs.
func (m *MockRunStore) GetRuns() []*types.SelectionRun {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*types.SelectionRun, len(m.Runs))
	copy(result, m.Runs)
	return result
}
