// Package metrics provides real-time metrics collection for the mirror
// pipeline.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Total request and fallback counts
//   - Per-destination race wins, transport failures, and timeouts
//   - Win latencies with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution of winning responses
//   - Destination reachability as reported by the probe package
//
// The collector runs in a dedicated goroutine and processes events
// without blocking the request path. Events are sent via a buffered
// channel with non-blocking semantics, so a full buffer drops events
// rather than delaying a race in progress.
//
// Example usage:
//
//	collector := metrics.NewCollector(1024, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.Event{
//		Type:        metrics.EventRaceWon,
//		Destination: "http://localhost:9001",
//		Duration:    150 * time.Millisecond,
//		StatusCode:  200,
//	})
//
//	snapshot := collector.Snapshot()
//
// The snapshot is served as JSON on the /metrics endpoint. Shutdown
// drains pending events to prevent data loss.
package metrics
