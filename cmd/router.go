package main

import (
	"net/http"

	"github.com/omerlavanet/dev-server/internal/handler"
	"github.com/omerlavanet/dev-server/internal/metrics"
)

// setupRouter mounts the mirror handler on everything except /metrics,
// which serves the collector snapshot. A request to /metrics is
// therefore never mirrored.
func setupRouter(mirrorHandler *handler.MirrorHandler, collector *metrics.Collector) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", mirrorHandler.ServeHTTP)
	mux.HandleFunc("/metrics", collector.Handler())

	return mux
}
