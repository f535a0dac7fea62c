package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the contract module.
type Metrics struct {
	ContractsCreated   prometheus.Counter
	ContractsCompleted prometheus.Counter
	ContractsCancelled prometheus.Counter
	NumberCollisions   prometheus.Counter
}

// New creates a Metrics instance with all contract module metrics registered.
func New() *Metrics {
	return &Metrics{
		ContractsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_contracts_created_total",
			Help: "Total number of contracts created",
		}),
		ContractsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_contracts_completed_total",
			Help: "Total number of contracts completed",
		}),
		ContractsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_contracts_cancelled_total",
			Help: "Total number of contracts cancelled",
		}),
		NumberCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_contract_number_collisions_total",
			Help: "Total number of contract number collisions that forced a regeneration",
		}),
	}
}
