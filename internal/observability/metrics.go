package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OperationsTotal counts settlement operations by name and outcome. The
// outcome label distinguishes caller errors (invalid_state,
// insufficient_funds) from storage failures so dashboards can separate user
// mistakes from incidents.
var OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "settlement",
	Name:      "operations_total",
	Help:      "Settlement engine operations by operation and outcome.",
}, []string{"operation", "outcome"})

// EscrowCentsMoved tracks escrow flow volume in minor currency units.
var EscrowCentsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "settlement",
	Name:      "escrow_cents_moved_total",
	Help:      "Minor currency units locked, released, or refunded through escrow.",
}, []string{"direction"})

// CommissionCentsPaid tracks affiliate commission payouts.
var CommissionCentsPaid = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "settlement",
	Name:      "commission_cents_paid_total",
	Help:      "Minor currency units paid as affiliate commissions.",
})
