package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the simulation module.
type Metrics struct {
	SimulationsCreated prometheus.Counter
	OffersGenerated    prometheus.Counter
	SimulateDuration   prometheus.Histogram
}

// New creates a Metrics instance with all simulation module metrics registered.
func New() *Metrics {
	return &Metrics{
		SimulationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_simulations_created_total",
			Help: "Total number of loan simulations created",
		}),
		OffersGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fidlink_offers_generated_total",
			Help: "Total number of loan offers generated",
		}),
		SimulateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fidlink_simulate_duration_seconds",
			Help:    "Duration of simulation creation (per-fund evaluation and offer build)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementSimulationsCreated records a successful simulation creation.
func (m *Metrics) IncrementSimulationsCreated() {
	m.SimulationsCreated.Inc()
}

// AddOffersGenerated records a batch of generated offers.
func (m *Metrics) AddOffersGenerated(n int) {
	m.OffersGenerated.Add(float64(n))
}

// ObserveSimulate records the duration of a simulation creation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveSimulate(start time.Time) {
	m.SimulateDuration.Observe(time.Since(start).Seconds())
}
