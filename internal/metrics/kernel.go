package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/physicslab/internal/dynamo"
)

// Kernel provides observability for kernel calls.
// Every method is safe on a nil receiver so callers never need to check
// whether telemetry is enabled.
type Kernel struct {
	Calls         *prometheus.CounterVec
	LiveWorlds    prometheus.Gauge
	StepsAdvanced prometheus.Counter
	StepDuration  prometheus.Histogram
}

// NewKernel creates the kernel metrics and registers them with reg.
func NewKernel(reg prometheus.Registerer) *Kernel {
	factory := promauto.With(reg)
	return &Kernel{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "physicslab_kernel_calls_total",
			Help: "Total number of kernel calls by operation and status",
		}, []string{"op", "status"}),
		LiveWorlds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "physicslab_live_worlds",
			Help: "Number of worlds currently registered",
		}),
		StepsAdvanced: factory.NewCounter(prometheus.CounterOpts{
			Name: "physicslab_integrator_steps_total",
			Help: "Total number of committed integrator steps",
		}),
		StepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "physicslab_step_duration_seconds",
			Help:    "Duration of world_step calls",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
	}
}

// ObserveCall records one call of op that ended with status.
func (m *Kernel) ObserveCall(op string, status dynamo.Status) {
	if m == nil {
		return
	}
	m.Calls.WithLabelValues(op, status.String()).Inc()
}

func (m *Kernel) WorldCreated() {
	if m == nil {
		return
	}
	m.LiveWorlds.Inc()
}

func (m *Kernel) WorldDestroyed() {
	if m == nil {
		return
	}
	m.LiveWorlds.Dec()
}

// ObserveStep records a committed step of n integrator invocations.
// Call with time.Now() at the start of the operation.
func (m *Kernel) ObserveStep(n uint32, start time.Time) {
	if m == nil {
		return
	}
	m.StepsAdvanced.Add(float64(n))
	m.StepDuration.Observe(time.Since(start).Seconds())
}
