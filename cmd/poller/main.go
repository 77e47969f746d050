// Package main provides the entrypoint for the SkyGate live-position poller.
// It keeps a fresh snapshot of live flights warm by polling the provider on a
// fixed interval and exposes the snapshot over a small HTTP surface.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skygate/skygate/internal/api/models"
	"github.com/skygate/skygate/internal/flightdata"
	"github.com/skygate/skygate/internal/poller"
	"github.com/skygate/skygate/internal/provider"
	"github.com/skygate/skygate/internal/provider/localexec"
	"github.com/skygate/skygate/internal/provider/remote"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "skygate-poller"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting SkyGate poller")

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8081"
	}

	providerCfg := provider.ConfigFromEnv()
	transport := newTransport(providerCfg, log)
	log.Info().
		Str("transport", transport.Name()).
		Msg("provider transport selected")

	flightService := flightdata.NewService(flightdata.ServiceConfig{
		Transport: transport,
		Logger:    log,
	})

	interval := poller.DefaultInterval
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	limit := 0
	if v := os.Getenv("POLL_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	bounds, err := parseBounds(os.Getenv("POLL_BOUNDS"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid POLL_BOUNDS")
	}

	p := poller.New(poller.Config{
		Source:   flightService,
		Interval: interval,
		Limit:    limit,
		Bounds:   bounds,
		Logger:   log,
		OnUpdate: func(snap poller.Snapshot) {
			evt := log.Info()
			if snap.Err != nil {
				evt = log.Warn().Err(snap.Err)
			}
			evt.Uint64("seq", snap.Seq).
				Int("flights", len(snap.Flights)).
				Msg("snapshot updated")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	log.Info().Dur("interval", interval).Msg("poller started")

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		snap := p.Snapshot()
		status := models.HealthStatusOK
		if p.Loading() || snap.Err != nil {
			status = models.HealthStatusDegraded
		}

		details := map[string]any{
			"version": Version,
			"loading": p.Loading(),
			"seq":     snap.Seq,
			"flights": len(snap.Flights),
		}
		if !snap.UpdatedAt.IsZero() {
			details["snapshotAge"] = time.Since(snap.UpdatedAt).String()
		}

		models.OK(models.Health{
			Status:  status,
			Time:    time.Now(),
			Details: details,
		}).Write(w, http.StatusOK)
	})

	mux.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		snap := p.Snapshot()
		models.OK(map[string]any{
			"flights":   snap.Flights,
			"updatedAt": snap.UpdatedAt,
			"seq":       snap.Seq,
			"loading":   p.Loading(),
		}).Write(w, http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down poller")

	p.Stop()
	cancel()

	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		log.Warn().Msg("poll loop did not exit in time")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("poller stopped")
}

// newTransport builds the transport variant selected by the configuration.
func newTransport(cfg provider.Config, log zerolog.Logger) provider.Transport {
	if cfg.Mode == "remote" {
		if cfg.BaseURL == "" {
			log.Fatal().Msg("PROVIDER_BASE_URL is required in remote mode")
		}
		return remote.NewTransport(remote.TransportConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
			Logger:  log,
		})
	}

	return localexec.NewTransport(localexec.TransportConfig{
		Interpreter: cfg.Interpreter,
		ScriptDir:   cfg.ScriptDir,
		Timeout:     cfg.Timeout,
		Logger:      log,
	})
}

// parseBounds parses "minLat,maxLat,minLon,maxLon". An empty string means
// worldwide.
func parseBounds(s string) (*flightdata.BoundingBox, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, &boundsError{s}
	}

	vals := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, &boundsError{s}
		}
		vals[i] = v
	}

	box := &flightdata.BoundingBox{
		MinLat: vals[0],
		MaxLat: vals[1],
		MinLon: vals[2],
		MaxLon: vals[3],
	}
	if !box.Valid() {
		return nil, &boundsError{s}
	}
	return box, nil
}

type boundsError struct {
	value string
}

func (e *boundsError) Error() string {
	return "bounds must be \"minLat,maxLat,minLon,maxLon\" with ordered, in-range values: " + e.value
}
