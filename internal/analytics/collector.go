package analytics

import (
	"context"
	"log/slog"
	"time"

	"github.com/karthikrangan/irengine/pkg/kafka"
)

// Collector buffers query events and flushes them to Kafka in batches,
// either when the buffer fills or on a timer. Track never blocks the search
// path: events are dropped when the buffer is full.
type Collector struct {
	producer      *kafka.Producer
	events        chan QueryEvent
	batchSize     int
	flushInterval time.Duration
	logger        *slog.Logger
	done          chan struct{}
}

// NewCollector creates a Collector with the given buffer capacity.
func NewCollector(producer *kafka.Producer, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &Collector{
		producer:      producer,
		events:        make(chan QueryEvent, bufferSize),
		batchSize:     100,
		flushInterval: 5 * time.Second,
		logger:        slog.Default().With("component", "analytics-collector"),
		done:          make(chan struct{}),
	}
}

// Track enqueues an event, dropping it if the buffer is full.
func (c *Collector) Track(event QueryEvent) {
	select {
	case c.events <- event:
	default:
		c.logger.Warn("analytics buffer full, dropping event", "query", event.Query)
	}
}

// Start launches the background flush loop until ctx is cancelled.
func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.flushInterval)
		defer ticker.Stop()

		batch := make([]kafka.Event, 0, c.batchSize)
		flush := func(flushCtx context.Context) {
			if len(batch) == 0 {
				return
			}
			if err := c.producer.PublishBatch(flushCtx, batch); err != nil {
				c.logger.Error("failed to flush analytics batch",
					"count", len(batch),
					"error", err,
				)
			}
			batch = batch[:0]
		}

		for {
			select {
			case event := <-c.events:
				batch = append(batch, kafka.Event{
					Key:   event.Query,
					Value: event,
				})
				if len(batch) >= c.batchSize {
					flush(ctx)
				}
			case <-ticker.C:
				flush(ctx)
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				flush(flushCtx)
				cancel()
				return
			}
		}
	}()
}

// Close waits for the flush loop to finish and closes the producer.
func (c *Collector) Close() error {
	<-c.done
	return c.producer.Close()
}
