// Package metrics defines and registers the custom Prometheus metrics of the
// Q&A domain service. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default registry on import through
// promauto; the /metrics endpoint serves them next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "qa"

// ── Content metrics ───────────────────────────────────────────────────────────

// QuestionsCreatedTotal counts posted questions.
// Label:
//   - author: "member" or "anonymous"
var QuestionsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_created_total",
		Help:      "Total number of questions created, by author kind.",
	},
	[]string{"author"},
)

// QuestionsDeletedTotal counts deleted questions.
var QuestionsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_deleted_total",
		Help:      "Total number of questions deleted.",
	},
)

// AnswersCreatedTotal counts posted answers.
var AnswersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_created_total",
		Help:      "Total number of answers created.",
	},
)

// ── Vote metrics ──────────────────────────────────────────────────────────────

// VotesTotal counts vote requests.
// Labels:
//   - direction: "up" or "down"
//   - outcome: "applied", "rate_limited", "not_found" or "error"
var VotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Total number of vote requests, by direction and outcome.",
	},
	[]string{"direction", "outcome"},
)

// ── Purge metrics ─────────────────────────────────────────────────────────────

// PurgeQueueDepth tracks the number of purge jobs waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PurgeQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "purge_queue_depth",
		Help:      "Current number of purge jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// PurgeDuration measures how long cleaning up after a deleted question takes.
// Label:
//   - result: "ok" or "error"
var PurgeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "purge_duration_seconds",
		Help:      "Duration of purging answers and votes of a deleted question.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
