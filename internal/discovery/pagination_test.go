package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

func pageOf(n int, offset int) []map[string]any {
	markets := make([]map[string]any, n)
	for i := range n {
		markets[i] = map[string]any{
			"id":       fmt.Sprintf("market%d", offset+i+1),
			"question": fmt.Sprintf("Question %d", offset+i+1),
			"outcomes": `["Yes", "No"]`,
			"endDate":  "2030-01-01T00:00:00Z",
		}
	}
	return markets
}

// TestClient_Pagination_SmallLimit tests that small limits (<= MaxBatchSize) use a single request.
func TestClient_Pagination_SmallLimit(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		if limit := r.URL.Query().Get("limit"); limit != "50" {
			t.Errorf("expected limit=50, got %s", limit)
		}
		if offset := r.URL.Query().Get("offset"); offset != "0" {
			t.Errorf("expected offset=0, got %s", offset)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pageOf(50, 0))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	markets, err := client.FetchTrendingMarkets(context.Background(), 50, "volume24hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(markets) != 50 {
		t.Errorf("expected 50 markets, got %d", len(markets))
	}

	if requestCount != 1 {
		t.Errorf("expected 1 request, got %d", requestCount)
	}
}

// TestClient_Pagination_LargeLimit tests that large limits (> MaxBatchSize) use pagination.
func TestClient_Pagination_LargeLimit(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		// Expected requests:
		// Request 1: limit=100, offset=0
		// Request 2: limit=100, offset=100
		// Request 3: limit=50, offset=200
		var expectedLimit, expectedOffset int
		switch requestCount {
		case 1:
			expectedLimit, expectedOffset = 100, 0
		case 2:
			expectedLimit, expectedOffset = 100, 100
		case 3:
			expectedLimit, expectedOffset = 50, 200
		default:
			t.Errorf("unexpected request %d", requestCount)
		}

		if limit != expectedLimit {
			t.Errorf("request %d: expected limit=%d, got %d", requestCount, expectedLimit, limit)
		}
		if offset != expectedOffset {
			t.Errorf("request %d: expected offset=%d, got %d", requestCount, expectedOffset, offset)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pageOf(limit, offset))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	markets, err := client.FetchTrendingMarkets(context.Background(), 250, "volume24hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(markets) != 250 {
		t.Errorf("expected 250 markets, got %d", len(markets))
	}
	if requestCount != 3 {
		t.Errorf("expected 3 requests, got %d", requestCount)
	}

	// Feed order is preserved across pages.
	if markets[0].ID != "market1" || markets[249].ID != "market250" {
		t.Errorf("unexpected ordering: first=%s last=%s", markets[0].ID, markets[249].ID)
	}
}

// TestClient_Pagination_StopsWhenFeedRunsDry tests early stop on a short page.
func TestClient_Pagination_StopsWhenFeedRunsDry(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		n := 100
		if requestCount == 2 {
			n = 30
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pageOf(n, offset))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	markets, err := client.FetchTrendingMarkets(context.Background(), 500, "volume24hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(markets) != 130 {
		t.Errorf("expected 130 markets, got %d", len(markets))
	}
	if requestCount != 2 {
		t.Errorf("expected 2 requests, got %d", requestCount)
	}
}

// TestClient_Pagination_ErrorOnLaterPage tests that a failing page fails the fetch.
func TestClient_Pagination_ErrorOnLaterPage(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	requestCount := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if requestCount == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pageOf(100, 0))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	_, err := client.FetchTrendingMarkets(context.Background(), 200, "volume24hr")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
