// SPDX-License-Identifier: Unlicense OR MIT

// Command gestured serves gesture recognition over websockets.
//
// Usage:
//
//	gestured [-config touchflow.yaml] [-listen addr] [-log-level debug]
//
// Clients connect to /ws and stream touch messages; see package
// touchflow.org/internal/service for the protocol.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"touchflow.org/config"
	"touchflow.org/internal/logging"
	"touchflow.org/internal/service"
)

var (
	configPath = flag.String("config", "", "configuration file (.yaml, .yml or .toml)")
	listen     = flag.String("listen", "", "listen address, overriding the configuration")
	logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat  = flag.String("log-format", "text", "log format (text, json)")
)

func main() {
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "gestured: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	log, err := logging.New(logging.Options{Level: *logLevel, Format: *logFormat})
	if err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", service.New(cfg, log))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Listen, "px_per_dp", cfg.Metric.PxPerDp)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}
