// Package metrics defines and registers all custom Prometheus metrics for the
// Organizational Odyssey API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics register with the default Prometheus registry on import via promauto.
// HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "odyssey"

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthEventsTotal counts account lifecycle outcomes.
// Labels:
//   - action: "register", "login", "confirm" or "logout"
//   - result: "ok" or a short failure reason (e.g. "duplicate", "unconfirmed")
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of account lifecycle requests, by action and result.",
	},
	[]string{"action", "result"},
)

// ── Employer metrics ──────────────────────────────────────────────────────────

// EmployerMutationsTotal counts admin mutations.
// Labels:
//   - operation: "create", "edit", "delete", "add_relation" or "add_admin"
//   - result: "ok", "unchanged" or "error"
var EmployerMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "employer_mutations_total",
		Help:      "Total number of admin mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// VisualizationNodes observes how many employers a rendered subgraph holds.
var VisualizationNodes = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "visualization_nodes",
		Help:      "Number of nodes in each rendered employer subgraph.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1 … 512
	},
)

// ── Mail metrics ──────────────────────────────────────────────────────────────

// MailDeliveriesTotal counts messages handed to the mail transport by the
// dispatcher.
// Label:
//   - result: "sent" or "failed"
var MailDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_deliveries_total",
		Help:      "Total number of queued mail deliveries, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of messages waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// Result collapses an error into the "ok"/"error" label used by counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
