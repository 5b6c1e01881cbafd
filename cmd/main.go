package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/omerlavanet/dev-server/config"
	"github.com/omerlavanet/dev-server/internal/destination"
	"github.com/omerlavanet/dev-server/internal/handler"
	"github.com/omerlavanet/dev-server/internal/httpserver"
	"github.com/omerlavanet/dev-server/internal/metrics"
	"github.com/omerlavanet/dev-server/internal/mirror"
	"github.com/omerlavanet/dev-server/internal/probe"
	"github.com/omerlavanet/dev-server/pkg/logger"
)

func main() {
	var (
		listenAddr string
		configPath string
	)
	pflag.StringVarP(&listenAddr, "listen-address", "l", "", "address to listen on (overrides the configuration file)")
	pflag.StringVarP(&configPath, "config", "c", "server.yml", "path to the configuration file")
	pflag.Parse()

	cfg, err := config.Load(configPath, listenAddr)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	timeout, err := time.ParseDuration(cfg.Mirror.Timeout)
	if err != nil {
		log.Error("Invalid mirror timeout", slog.Any("err", err))
		os.Exit(1)
	}

	destinations := buildDestinations(cfg, log)

	collector := metrics.NewCollector(1024, log)
	collector.Start(ctx)

	startProbes(ctx, cfg, destinations, log, collector)

	controller := mirror.NewController(&http.Client{}, destinations, timeout, collector)
	mirrorHandler := handler.NewMirrorHandler(log, controller, cfg.Response.DefaultStatus, cfg.Response.DefaultBody, collector)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(mirrorHandler, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Listening on",
		slog.String("address", cfg.Server.Address),
		slog.Int("destinations", len(destinations)),
		slog.Duration("timeout", timeout))

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildDestinations parses the configured base addresses. A malformed
// entry only excludes itself; an empty result means every request is
// answered with the default response.
func buildDestinations(cfg *config.Config, log *slog.Logger) []*destination.Destination {
	var destinations []*destination.Destination

	for _, raw := range cfg.Destinations {
		d, err := destination.Parse(raw)
		if err != nil {
			log.Warn("Skipping malformed destination",
				slog.String("destination", raw),
				slog.String("error", err.Error()))
			continue
		}
		destinations = append(destinations, d)
	}

	return destinations
}

func startProbes(ctx context.Context, cfg *config.Config, destinations []*destination.Destination, log *slog.Logger, collector *metrics.Collector) {
	if cfg.Probe.Interval == "" {
		return
	}

	interval, err := time.ParseDuration(cfg.Probe.Interval)
	if err != nil || interval <= 0 {
		log.Info("Destination probing disabled")
		return
	}

	for _, d := range destinations {
		go probe.Watch(ctx, d, interval, log, collector)
	}
}
