// Package telemetry exposes prometheus collectors for task and grading
// outcomes, plus the /metrics HTTP handler.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	TasksSubmitted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_tasks_submitted_total", Help: "Batch tasks submitted to the engine"})
	TasksCompleted  = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_tasks_completed_total", Help: "Batch tasks that reached completed"})
	TasksFailed     = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_tasks_failed_total", Help: "Batch tasks that reached failed"})
	QueueDepth      = prometheus.NewGauge(prometheus.GaugeOpts{Name: "grading_tasks_queue_depth", Help: "Tasks waiting in the FIFO queue"})
	EssaysGraded    = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_essays_graded_total", Help: "Essays graded successfully"})
	EssaysFailed    = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_essays_failed_total", Help: "Essays that failed a pipeline stage"})
	EssaysPersisted = prometheus.NewCounter(prometheus.CounterOpts{Name: "grading_essays_persisted_total", Help: "Grading records accepted by the store"})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			TasksSubmitted,
			TasksCompleted,
			TasksFailed,
			QueueDepth,
			EssaysGraded,
			EssaysFailed,
			EssaysPersisted,
		)
	})
	return promhttp.Handler()
}
