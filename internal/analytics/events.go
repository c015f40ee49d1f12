// Package analytics streams query events to Kafka and aggregates them into
// usage statistics. It observes the search path without participating in it:
// a lost event never fails a query.
package analytics

import "time"

// EventType classifies a query event.
type EventType string

const (
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventParseError EventType = "parse_error"
)

// QueryEvent records one search request.
type QueryEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	TotalHits int       `json:"total_hits"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
