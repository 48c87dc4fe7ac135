package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Datastream operations recorded by the synchronizer.
const (
	OpWrite    = "write"
	OpSkip     = "skip"
	OpDelete   = "delete"
	OpExternal = "external"
)

// Recorder holds the synchronization metrics.
type Recorder struct {
	datastreamOps *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewRecorder creates the collectors and registers them on reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		datastreamOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "domsync_datastream_operations_total",
				Help: "Datastream writes, skipped writes, deletes and external registrations.",
			},
			[]string{"operation", "role"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "domsync_entity_operation_duration_seconds",
				Help:    "Duration of entity reads and writes.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{r.datastreamOps, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Datastream counts one datastream operation. A nil Recorder records nothing.
func (r *Recorder) Datastream(op, role string) {
	if r == nil {
		return
	}
	r.datastreamOps.WithLabelValues(op, role).Inc()
}

// Observe records how long an entity operation took.
func (r *Recorder) Observe(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.duration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
