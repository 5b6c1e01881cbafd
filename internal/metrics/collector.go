package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived     EventType = "request_received"
	EventAttemptFailed       EventType = "attempt_failed"
	EventRaceWon             EventType = "race_won"
	EventFallbackServed      EventType = "fallback_served"
	EventReachabilityChanged EventType = "reachability_changed"
)

type Event struct {
	Type        EventType
	Timestamp   time.Time
	Destination string
	Duration    time.Duration
	StatusCode  int
	TimedOut    bool
	Reachable   bool
}

// Collector receives events from the request path over a buffered
// channel so that recording never blocks a race in progress.
type Collector struct {
	eventCh chan Event
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

// Emit sends an event without blocking. Events are dropped when the
// buffer is full; a nil receiver is a no-op so callers need no guard.
func (c *Collector) Emit(event Event) {
	if c == nil {
		return
	}

	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.IncrementRequests()

	case EventAttemptFailed:
		c.metrics.RecordFailure(event.Destination, event.TimedOut)

	case EventRaceWon:
		c.metrics.RecordWin(event.Destination, event.Duration, event.StatusCode)

	case EventFallbackServed:
		c.metrics.IncrementFallbacks()

	case EventReachabilityChanged:
		c.metrics.UpdateReachability(event.Destination, event.Reachable)
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
