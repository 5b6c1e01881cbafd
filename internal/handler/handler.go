package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/omerlavanet/dev-server/internal/metrics"
	"github.com/omerlavanet/dev-server/internal/mirror"
	"github.com/omerlavanet/dev-server/internal/request"
)

// MirrorHandler drives the request pipeline: snapshot the inbound
// request, race it across the configured destinations, and synthesize
// exactly one response for the caller whatever the race yields.
type MirrorHandler struct {
	logger           *slog.Logger
	controller       *mirror.Controller
	defaultStatus    int
	defaultBody      string
	metricsCollector *metrics.Collector
}

func NewMirrorHandler(logger *slog.Logger, controller *mirror.Controller, defaultStatus int, defaultBody string, collector *metrics.Collector) *MirrorHandler {
	return &MirrorHandler{
		logger:           logger,
		controller:       controller,
		defaultStatus:    defaultStatus,
		defaultBody:      defaultBody,
		metricsCollector: collector,
	}
}

func (h *MirrorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	log := h.logger.With(slog.String("request_id", requestID))

	h.metricsCollector.Emit(metrics.Event{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
	})

	snap, err := request.Capture(r)
	if err != nil {
		log.Warn("Rejected request body",
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.String("error", err.Error()))

		// Diagnostic response: the request never reaches a destination.
		w.Header().Set("X-Request-Id", requestID)
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "failed to read the request body as text\n")
		return
	}

	log.Info("Received request",
		slog.String("method", snap.Method),
		slog.String("uri", snap.RequestURI()),
		slog.String("proto", snap.Proto),
		slog.String("host", snap.Host),
		slog.Any("headers", snap.Header),
		slog.String("body", snap.BodyString()))

	start := time.Now()
	result := h.controller.Race(r.Context(), log, snap)

	if result == nil {
		log.Info("No destination answered, serving default response",
			slog.Int("status", h.defaultStatus),
			slog.Duration("elapsed", time.Since(start)))

		h.metricsCollector.Emit(metrics.Event{
			Type:      metrics.EventFallbackServed,
			Timestamp: time.Now(),
		})

		w.Header().Set("X-Request-Id", requestID)
		w.WriteHeader(h.defaultStatus)
		io.WriteString(w, h.defaultBody)
		return
	}

	if !utf8.Valid(result.Body) {
		log.Error("Winning response body is not valid text",
			slog.String("destination", result.Destination),
			slog.Int("status", result.StatusCode))

		w.Header().Set("X-Request-Id", requestID)
		http.Error(w, "upstream response body could not be decoded as text", http.StatusBadGateway)
		return
	}

	log.Info("Race resolved",
		slog.String("destination", result.Destination),
		slog.Int("status", result.StatusCode),
		slog.Duration("elapsed", result.Elapsed))

	h.metricsCollector.Emit(metrics.Event{
		Type:        metrics.EventRaceWon,
		Timestamp:   time.Now(),
		Destination: result.Destination,
		Duration:    result.Elapsed,
		StatusCode:  result.StatusCode,
	})

	for key, values := range result.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("X-Request-Id", requestID)
	w.Header().Set("X-Mirror-Destination", result.Destination)
	w.WriteHeader(result.StatusCode)
	w.Write(result.Body)
}
