package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/omerlavanet/dev-server/internal/destination"
	"github.com/omerlavanet/dev-server/internal/metrics"
	"github.com/omerlavanet/dev-server/internal/request"
)

// Result is a fully buffered winning upstream response. Any HTTP status
// counts as a win; only transport failures and timeouts lose the race.
type Result struct {
	Destination string
	StatusCode  int
	Header      http.Header
	Body        []byte
	Elapsed     time.Duration
}

type attemptResult struct {
	destination string
	result      *Result
	err         error
}

// Controller fans an inbound snapshot out to every configured
// destination and resolves the race between the resulting attempts. The
// HTTP client is shared across all attempts and all inbound requests;
// connection reuse is entirely the transport's business.
type Controller struct {
	client       *http.Client
	destinations []*destination.Destination
	timeout      time.Duration
	collector    *metrics.Collector
}

// NewController creates a race controller over a fixed destination list.
// The timeout applies to each attempt independently, never cumulatively,
// so total race latency is bounded by one timeout regardless of how many
// destinations are configured. collector may be nil.
func NewController(client *http.Client, destinations []*destination.Destination, timeout time.Duration, collector *metrics.Collector) *Controller {
	return &Controller{
		client:       client,
		destinations: destinations,
		timeout:      timeout,
		collector:    collector,
	}
}

// Destinations returns the controller's fixed destination list.
func (c *Controller) Destinations() []*destination.Destination {
	return c.destinations
}

// Race mirrors snap to every destination concurrently and returns the
// first attempt that completes with a response, with its body already
// buffered. It returns nil when no attempt succeeds: all failed, all
// timed out, or no destinations are configured.
//
// When several attempts complete close together, whichever lands on the
// results channel first wins; declaration order carries no priority.
// Selecting a winner cancels the context of every still-pending attempt,
// so abandoned network work is torn down rather than left running.
func (c *Controller) Race(ctx context.Context, log *slog.Logger, snap *request.Snapshot) *Result {
	if len(c.destinations) == 0 {
		return nil
	}

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered to the fan-out width so losers never block on send.
	results := make(chan attemptResult, len(c.destinations))

	for _, d := range c.destinations {
		go c.attempt(raceCtx, d, snap, results)
	}

	for pending := len(c.destinations); pending > 0; pending-- {
		res := <-results
		if res.err == nil {
			return res.result
		}

		timedOut := errors.Is(res.err, context.DeadlineExceeded)
		if timedOut {
			log.Warn("Attempt timed out",
				slog.String("destination", res.destination),
				slog.Duration("timeout", c.timeout))
		} else {
			log.Warn("Attempt failed",
				slog.String("destination", res.destination),
				slog.String("error", res.err.Error()))
		}

		c.collector.Emit(metrics.Event{
			Type:        metrics.EventAttemptFailed,
			Timestamp:   time.Now(),
			Destination: res.destination,
			TimedOut:    timedOut,
		})
	}

	return nil
}

// attempt issues one outbound request under its own deadline and buffers
// the response body before reporting success, so a winner is complete by
// the time the race is resolved and cancelling the losers cannot touch
// it.
func (c *Controller) attempt(ctx context.Context, d *destination.Destination, snap *request.Snapshot, results chan<- attemptResult) {
	dest := d.URL().String()
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := d.NewRequest(attemptCtx, snap)
	if err != nil {
		results <- attemptResult{destination: dest, err: err}
		return
	}

	resp, err := c.client.Do(req)
	if err != nil {
		results <- attemptResult{destination: dest, err: err}
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		results <- attemptResult{destination: dest, err: err}
		return
	}

	results <- attemptResult{
		destination: dest,
		result: &Result{
			Destination: dest,
			StatusCode:  resp.StatusCode,
			Header:      resp.Header.Clone(),
			Body:        body,
			Elapsed:     time.Since(start),
		},
	}
}
