package metricsadapter

import "kanvas/internal/platform/metrics"

// Observer forwards gateway filter outcomes to the Prometheus counters.
type Observer struct{}

func (Observer) RoleLookup(outcome string) {
	metrics.RecordRoleLookup(outcome)
}

func (Observer) AuthRejected(reason string) {
	metrics.RecordAuthRejection(reason)
}
