package tasks

import "github.com/prometheus/client_golang/prometheus"

var (
	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_task_mutations_total",
			Help: "Task list mutations by action",
		},
		[]string{"action"},
	)

	persistFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "todo_persist_failures_total",
			Help: "Failed writes of the task list to storage",
		},
	)

	tasksGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "todo_tasks",
			Help: "Tasks currently held, by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(mutationsTotal, persistFailuresTotal, tasksGauge)
}

func observeStats(s Stats) {
	tasksGauge.WithLabelValues("completed").Set(float64(s.Completed))
	tasksGauge.WithLabelValues("pending").Set(float64(s.Pending))
}
