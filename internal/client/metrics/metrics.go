package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the client module.
type Metrics struct {
	ClientsRegistered prometheus.Counter
	IncomeUpdates     prometheus.Counter
}

// New creates a Metrics instance with all client module metrics registered.
func New() *Metrics {
	return &Metrics{
		ClientsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_clients_registered_total",
			Help: "Total number of clients registered",
		}),
		IncomeUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_client_income_updates_total",
			Help: "Total number of client income updates",
		}),
	}
}
