package telemetry

import "time"

// IncPayoutItems increments the per-status item counter.
// Statuses: "paid", "failed", "duplicate".
func IncPayoutItems(status string, n int) {
	if n <= 0 {
		return
	}
	payoutItemsTotal.WithLabelValues(status).Add(float64(n))
}

// IncPayoutBatches increments the completed-batch counter.
func IncPayoutBatches() {
	payoutBatchesTotal.Inc()
}

// Increments the batch failure counter
// Reasons: "validation", "storage".
func IncPayoutBatchesFailed(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	payoutBatchesFailedTotal.WithLabelValues(reason).Inc()
}

// ObserveBatchDuration records one end-to-end batch call.
func ObserveBatchDuration(d time.Duration) {
	payoutBatchDurationSeconds.Observe(d.Seconds())
}

// Sets the current publish queue size gauge.
func SetEventQueueCurrent(n int) {
	eventQueueCurrent.Set(float64(n))
}

// IncEventsDropped counts an event lost to a full queue.
func IncEventsDropped() {
	eventsDroppedTotal.Inc()
}

// IncEventsPublished counts a successful Kafka write.
func IncEventsPublished() {
	eventsPublishedTotal.Inc()
}
