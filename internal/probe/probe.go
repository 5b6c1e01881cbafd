package probe

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/omerlavanet/dev-server/internal/destination"
	"github.com/omerlavanet/dev-server/internal/metrics"
)

// Watch periodically probes a destination's base URL and records whether
// it is reachable. Any completed response counts, whatever its status
// code; only transport-level failure marks the destination unreachable.
// Unreachable destinations still take part in every race, the flag is
// purely for operator visibility. collector may be nil.
func Watch(
	ctx context.Context,
	dest *destination.Destination,
	interval time.Duration,
	logger *slog.Logger,
	collector *metrics.Collector,
) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Destination probe stopped",
				slog.String("destination", dest.URL().String()))
			return

		case <-ticker.C:
			req, err := http.NewRequestWithContext(
				ctx, http.MethodGet, dest.URL().String(), nil)
			if err != nil {
				continue
			}

			reachable := true
			res, err := client.Do(req)
			if err != nil {
				reachable = false
			} else {
				res.Body.Close()
			}

			if changed := dest.SetReachable(reachable); changed {
				if reachable {
					logger.Info("Destination is reachable again",
						slog.String("destination", dest.URL().String()))
				} else {
					logger.Warn("Destination is unreachable",
						slog.String("destination", dest.URL().String()))
				}

				collector.Emit(metrics.Event{
					Type:        metrics.EventReachabilityChanged,
					Timestamp:   time.Now(),
					Destination: dest.URL().String(),
					Reachable:   reachable,
				})
			}
		}
	}
}
