// Package metrics holds the Prometheus collectors for the tree pipeline and
// store mutations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build results.
const (
	ResultOK      = "ok"
	ResultNoRoot  = "no_root"
	ResultCyclic  = "cyclic"
	ResultFailure = "error"
)

var (
	treeBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinfolk",
		Subsystem: "tree",
		Name:      "builds_total",
		Help:      "Tree pipeline runs by result",
	}, []string{"result"})

	treeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "kinfolk",
		Subsystem: "tree",
		Name:      "build_duration_seconds",
		Help:      "Time spent normalizing, building and flattening the tree",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	droppedRefs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kinfolk",
		Subsystem: "tree",
		Name:      "dropped_references_total",
		Help:      "Spouse or child ids skipped because they did not resolve",
	})

	mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kinfolk",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Person mutations by operation and result",
	}, []string{"op", "result"})
)

// ObserveBuild records one pipeline run.
func ObserveBuild(result string, d time.Duration, dropped int) {
	treeBuilds.WithLabelValues(result).Inc()
	treeBuildDuration.Observe(d.Seconds())
	if dropped > 0 {
		droppedRefs.Add(float64(dropped))
	}
}

// ObserveMutation records one add, edit, delete or import.
func ObserveMutation(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultFailure
	}
	mutations.WithLabelValues(op, result).Inc()
}
