package metrics

import "time"

// TaskCompleted records a successful periodic task run
func TaskCompleted(taskType string, duration time.Duration) {
	TasksTotal.WithLabelValues(taskType, "completed").Inc()
	TaskDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// TaskFailed records a failed periodic task run
func TaskFailed(taskType string, duration time.Duration) {
	TasksTotal.WithLabelValues(taskType, "failed").Inc()
	TaskDuration.WithLabelValues(taskType).Observe(duration.Seconds())
}

// BackendCall records one REST backend call
func BackendCall(operation string, duration time.Duration, err error) {
	BackendCallsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	BackendCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
