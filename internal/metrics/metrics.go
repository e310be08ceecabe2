// Package metrics defines the client-side Prometheus metrics for dicechat.
// It is the single source of truth for metric names, labels, and help
// strings; metrics register with the default registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dicechat"

// PollsTotal counts message-sync poll iterations.
// Label:
//   - result: "success" or "error"
var PollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polls_total",
		Help:      "Total number of message poll iterations, by result.",
	},
	[]string{"result"},
)

// MessagesFetchedTotal counts messages delivered by the polling loop.
var MessagesFetchedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_fetched_total",
		Help:      "Total number of chat messages fetched by polling.",
	},
)

// RollsCompletedTotal counts dice rolls completed through the session.
var RollsCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rolls_completed_total",
		Help:      "Total number of dice rolls completed.",
	},
)

// ForcedLogoutsTotal counts forced logouts triggered by credential rejection.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts after the server rejected the token.",
	},
)
