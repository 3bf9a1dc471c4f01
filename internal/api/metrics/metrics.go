// Package metrics defines and registers all custom Prometheus metrics for the
// palette API. It is the single source of truth for metric names, labels, and
// help strings. promauto registers everything with the default registry at
// package load time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "palette_api"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", or "locked"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// RefreshRotationsTotal counts successful refresh-token exchanges.
var RefreshRotationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_rotations_total",
		Help:      "Total number of successful refresh token rotations.",
	},
)

// RefreshReuseDetectedTotal counts reuse events. Every one of these revoked
// a user's entire session set.
var RefreshReuseDetectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_reuse_detected_total",
		Help:      "Total number of refresh token reuse events detected.",
	},
)

// ── Palette metrics ───────────────────────────────────────────────────────────

// PalettesCreatedTotal counts newly created palettes.
// Label:
//   - source: "create" or "import"
var PalettesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "palettes_created_total",
		Help:      "Total number of palettes created, by source.",
	},
	[]string{"source"},
)

// IdempotentReplaysTotal counts creating requests answered from an
// idempotency record instead of performing a new mutation.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of creating requests replayed from an idempotency record.",
	},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreFlushRetriesTotal counts transient filesystem errors that forced a
// flush retry.
var StoreFlushRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_flush_retries_total",
		Help:      "Total number of document store flush retries after transient errors.",
	},
)

// StoreFlushFailuresTotal counts flushes that exhausted their retries. The
// in-memory and on-disk state stayed at the prior snapshot.
var StoreFlushFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_flush_failures_total",
		Help:      "Total number of document store flushes that failed permanently.",
	},
)

// StoreFlushDuration observes the wall time of successful flushes.
var StoreFlushDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_flush_duration_seconds",
		Help:      "Duration of document store flushes, in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPErrorsTotal counts error responses by stable machine code.
// Label:
//   - code: the machine-readable error code (e.g. "INVALID_CREDENTIALS")
var HTTPErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_errors_total",
		Help:      "Total number of error responses, by machine code.",
	},
	[]string{"code"},
)
