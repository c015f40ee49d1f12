// Package handler exposes the search engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/karthikrangan/irengine/internal/analytics"
	"github.com/karthikrangan/irengine/internal/docstore"
	"github.com/karthikrangan/irengine/internal/indexer/index"
	"github.com/karthikrangan/irengine/internal/searcher/cache"
	"github.com/karthikrangan/irengine/internal/searcher/evaluator"
	"github.com/karthikrangan/irengine/internal/searcher/parser"
	apperrors "github.com/karthikrangan/irengine/pkg/errors"
	"github.com/karthikrangan/irengine/pkg/logger"
	"github.com/karthikrangan/irengine/pkg/metrics"
	"github.com/karthikrangan/irengine/pkg/middleware"
)

// IndexProvider hands out the current index, or ErrIndexUnavailable before
// construction finishes.
type IndexProvider interface {
	Index() (*index.Index, error)
}

// Handler serves search, cache, and document metadata endpoints.
type Handler struct {
	engine       IndexProvider
	parser       *parser.Parser
	cache        *cache.QueryCache
	collector    *analytics.Collector
	store        *docstore.Store
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. cache, collector, store, and m may be nil, which
// disables the corresponding feature.
func New(
	engine IndexProvider,
	qp *parser.Parser,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	store *docstore.Store,
	m *metrics.Metrics,
	defaultLimit, maxResults int,
) *Handler {
	return &Handler{
		engine:       engine,
		parser:       qp,
		cache:        queryCache,
		collector:    collector,
		store:        store,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search answers GET /api/v1/search?q=<query>&limit=<n>.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	expr, err := h.parser.Parse(query)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			h.countQuery("parse_error")
			h.trackEvent(ctx, analytics.QueryEvent{
				Type:      analytics.EventParseError,
				Query:     query,
				LatencyMs: time.Since(start).Milliseconds(),
			})
			h.writeError(w, http.StatusBadRequest, parseErr.Error())
			return
		}
		h.countQuery("error")
		h.writeError(w, apperrors.HTTPStatusCode(err), "query rejected")
		return
	}

	ix, err := h.engine.Index()
	if err != nil {
		log.Error("index unavailable", "error", err)
		h.countQuery("error")
		h.writeError(w, apperrors.HTTPStatusCode(err), "index unavailable")
		return
	}

	compute := func() (*evaluator.SearchResult, error) {
		return evaluator.New(ix).Execute(expr, query, limit)
	}
	var result *evaluator.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.countQuery("error")
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	latency := time.Since(start)
	h.observeSearch(result, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.DocIDs),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)

	eventType := analytics.EventCacheMiss
	if cacheHit {
		eventType = analytics.EventCacheHit
	}
	h.trackEvent(ctx, analytics.QueryEvent{
		Type:      eventType,
		Query:     query,
		TotalHits: result.TotalHits,
		Returned:  len(result.DocIDs),
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
	})

	h.writeJSON(w, http.StatusOK, result)
}

// Document answers GET /api/v1/documents/{id} from the metadata store.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "document store is disabled")
		return
	}
	id := r.PathValue("id")
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), "document not found")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// CacheStats answers GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": strconv.FormatFloat(hitRate, 'f', 1, 64) + "%",
	})
}

// CacheInvalidate answers POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) trackEvent(ctx context.Context, event analytics.QueryEvent) {
	if h.collector == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = middleware.GetRequestID(ctx)
	h.collector.Track(event)
}

func (h *Handler) countQuery(outcome string) {
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) observeSearch(result *evaluator.SearchResult, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	outcome := "hit"
	if result.TotalHits == 0 {
		outcome = "zero_result"
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
	}
	h.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.Observe(float64(result.TotalHits))
	if cacheHit {
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
