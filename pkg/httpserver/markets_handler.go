package httpserver

import (
	"bytes"
	"context"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/polymarket-seeder/internal/render"
	"github.com/mselser95/polymarket-seeder/internal/selection"
	"github.com/mselser95/polymarket-seeder/internal/storage"
	"github.com/mselser95/polymarket-seeder/pkg/healthprobe"
	"github.com/mselser95/polymarket-seeder/pkg/types"
	"go.uber.org/zap"
)

// Runner runs one fetch-and-select pass.
type Runner interface {
	Run(ctx context.Context) (*selection.Result, error)
}

// MarketsHandler serves selection previews and rendered artifacts.
// Every request is an independent pipeline run.
type MarketsHandler struct {
	pipeline      Runner
	deploy        *render.DeployConfig
	defaultFormat string
	health        *healthprobe.HealthChecker
	store         storage.RunStore
	logger        *zap.Logger
}

// MarketsHandlerConfig holds handler dependencies.
type MarketsHandlerConfig struct {
	Pipeline      Runner
	Deploy        *render.DeployConfig
	DefaultFormat string
	HealthChecker *healthprobe.HealthChecker
	Store         storage.RunStore
	Logger        *zap.Logger
}

// NewMarketsHandler creates a new markets handler.
func NewMarketsHandler(cfg *MarketsHandlerConfig) *MarketsHandler {
	h := &MarketsHandler{
		pipeline:      cfg.Pipeline,
		deploy:        cfg.Deploy,
		defaultFormat: cfg.DefaultFormat,
		health:        cfg.HealthChecker,
		store:         cfg.Store,
		logger:        cfg.Logger,
	}

	if h.defaultFormat == "" {
		h.defaultFormat = render.FormatBash
	}
	if h.store == nil {
		h.store = storage.NopStore{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	return h
}

// MarketResponse is one selected market.
type MarketResponse struct {
	Title    string    `json:"title"`
	Duration int64     `json:"duration"`
	SourceID string    `json:"source_id,omitempty"`
	EndsAt   time.Time `json:"ends_at"`
}

// MarketsResponse is the selection preview returned by /api/markets.
type MarketsResponse struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Fetched     int                        `json:"fetched"`
	Examined    int                        `json:"examined"`
	Rejections  map[types.RejectReason]int `json:"rejections"`
	Markets     []MarketResponse           `json:"markets"`
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// HandleMarkets handles GET /api/markets.
func (h *MarketsHandler) HandleMarkets(w http.ResponseWriter, r *http.Request) {
	result, err := h.run(r.Context())
	if r.Context().Err() != nil {
		h.logger.Debug("client-disconnected", zap.String("path", r.URL.Path))
		return
	}
	if err != nil {
		h.writeError(w, err.Error(), types.FeedErrorKind(err), http.StatusBadGateway)
		return
	}

	markets := make([]MarketResponse, 0, len(result.Markets))
	for _, m := range result.Markets {
		markets = append(markets, MarketResponse{
			Title:    m.Title,
			Duration: m.Duration,
			SourceID: m.SourceID,
			EndsAt:   m.EndsAt,
		})
	}

	h.writeJSON(w, http.StatusOK, MarketsResponse{
		GeneratedAt: result.SelectedAt,
		Fetched:     result.Fetched,
		Examined:    result.Examined,
		Rejections:  result.Rejections,
		Markets:     markets,
	})
}

// HandleArtifact handles GET /api/artifact?format=<bash|solidity|calldata>.
// A feed failure yields 502 with the format's marked error artifact.
func (h *MarketsHandler) HandleArtifact(w http.ResponseWriter, r *http.Request) {
	if h.deploy == nil {
		h.writeError(w, "factory address not configured", "", http.StatusServiceUnavailable)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaultFormat
	}

	renderer, err := render.New(format, h.deploy)
	if err != nil {
		h.writeError(w, err.Error(), "", http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	status := http.StatusOK

	result, err := h.run(r.Context())
	if r.Context().Err() != nil {
		h.logger.Debug("client-disconnected", zap.String("path", r.URL.Path))
		return
	}
	if err != nil {
		status = http.StatusBadGateway
		err = renderer.RenderFailure(&buf, err)
	} else {
		err = renderer.Render(&buf, result.Markets)
	}
	if err != nil {
		h.logger.Error("artifact-render-failed", zap.String("format", format), zap.Error(err))
		h.writeError(w, "render artifact: "+err.Error(), "", http.StatusInternalServerError)
		return
	}

	if status == http.StatusOK {
		saveErr := h.store.SaveRun(r.Context(), result.ToRun(format))
		if saveErr != nil {
			h.logger.Error("run-store-failed", zap.Error(saveErr))
		}
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, err = w.Write(buf.Bytes())
	if err != nil {
		h.logger.Error("failed-to-write-artifact", zap.Error(err))
	}
}

// run executes the pipeline and records the feed outcome. A run cut short by
// the client says nothing about the feed and is not recorded.
func (h *MarketsHandler) run(ctx context.Context) (*selection.Result, error) {
	result, err := h.pipeline.Run(ctx)
	if h.health != nil && ctx.Err() == nil {
		h.health.RecordFeedResult(err)
	}
	return result, err
}

func (h *MarketsHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *MarketsHandler) writeError(w http.ResponseWriter, message string, kind string, statusCode int) {
	h.writeJSON(w, statusCode, ErrorResponse{Error: message, Kind: kind})
}
