// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Narrow, off-by-default scrape endpoint: counters and a duration
// histogram only, never a control surface, per SPEC_FULL's --metrics-addr
// supplement.
var (
	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sigil",
		Name:      "scan_duration_seconds",
		Help:      "Duration of a single scan operation.",
		Buckets:   prometheus.DefBuckets,
	})
	filesScannedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sigil",
		Name:      "files_scanned_total",
		Help:      "Total number of files scanned across all invocations.",
	})
	findingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sigil",
		Name:      "findings_total",
		Help:      "Total number of findings emitted, by phase.",
	}, []string{"phase"})
)

// maybeServeMetrics starts a background HTTP server exposing /metrics when
// addr is non-empty, returning a stop function that is always safe to call.
func maybeServeMetrics(addr string, globals GlobalFlags) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	logger := newLogger(globals)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics.serve_failed", "addr", addr, "err", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
