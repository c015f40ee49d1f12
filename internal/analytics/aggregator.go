package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/karthikrangan/irengine/pkg/kafka"
)

// Stats is the aggregated view served by the analytics endpoint.
type Stats struct {
	TotalQueries    int64        `json:"total_queries"`
	ZeroResultCount int64        `json:"zero_result_count"`
	ParseErrorCount int64        `json:"parse_error_count"`
	CacheHits       int64        `json:"cache_hits"`
	CacheMisses     int64        `json:"cache_misses"`
	AvgLatencyMs    float64      `json:"avg_latency_ms"`
	TopQueries      []QueryCount `json:"top_queries"`
	UptimeSeconds   int64        `json:"uptime_seconds"`
}

// QueryCount pairs a query string with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes query events from Kafka and maintains running
// statistics in memory. It is fed by the message handler returned from
// HandleEvent.
type Aggregator struct {
	mu             sync.RWMutex
	totalQueries   int64
	zeroResults    int64
	parseErrors    int64
	cacheHits      int64
	cacheMisses    int64
	totalLatencyMs int64
	queryCounts    map[string]int64
	startTime      time.Time

	logger *slog.Logger
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		queryCounts: make(map[string]int64),
		startTime:   time.Now(),
		logger:      slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns the Kafka message handler that feeds agg. Undecodable
// events are logged and skipped, never retried.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "error", err)
			return nil
		}
		agg.record(event)
		return nil
	}
}

func (a *Aggregator) record(event QueryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalQueries++
	a.totalLatencyMs += event.LatencyMs
	a.queryCounts[event.Query]++
	switch {
	case event.Type == EventParseError:
		a.parseErrors++
	case event.CacheHit:
		a.cacheHits++
	default:
		a.cacheMisses++
	}
	if event.Type != EventParseError && event.TotalHits == 0 {
		a.zeroResults++
	}
}

// Stats snapshots the current aggregates, including the ten most frequent
// queries.
func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := Stats{
		TotalQueries:    a.totalQueries,
		ZeroResultCount: a.zeroResults,
		ParseErrorCount: a.parseErrors,
		CacheHits:       a.cacheHits,
		CacheMisses:     a.cacheMisses,
		UptimeSeconds:   int64(time.Since(a.startTime).Seconds()),
	}
	if a.totalQueries > 0 {
		stats.AvgLatencyMs = float64(a.totalLatencyMs) / float64(a.totalQueries)
	}

	top := make([]QueryCount, 0, len(a.queryCounts))
	for query, count := range a.queryCounts {
		top = append(top, QueryCount{Query: query, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Query < top[j].Query
	})
	if len(top) > 10 {
		top = top[:10]
	}
	stats.TopQueries = top
	return stats
}
