package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reprocess outcomes used as metric labels.
const (
	outcomeSuccess = "exitoso"
	outcomeFailure = "fallido"
	outcomeTimeout = "timeout"
)

var (
	// reprocessTotal counts finished reprocess invocations.
	reprocessTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "integration_reprocess_total",
			Help: "Number of finished manual reprocess invocations, by system and outcome.",
		},
		[]string{"sistema", "outcome"},
	)
)

// reprocessCounter counts one finished reprocess invocation.
func reprocessCounter(sistema, outcome string) {
	reprocessTotal.WithLabelValues(sistema, outcome).Inc()
}
