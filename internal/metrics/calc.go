package metrics

// CalculationPerformed counts one run of a calculator.
func CalculationPerformed(kind string) {
	CalculationsTotal.WithLabelValues(kind).Inc()
}

// LiabilityAnomaly records a share set that was over or under allocated.
func LiabilityAnomaly(status string) {
	LiabilityAnomaliesTotal.WithLabelValues(status).Inc()
}

// NegativeNet records allocations whose net to client went below zero.
func NegativeNet(count int) {
	if count > 0 {
		NegativeNetAllocationsTotal.Add(float64(count))
	}
}

// DeadlineClassified records the tier a statute deadline landed in.
func DeadlineClassified(tier string) {
	DeadlineAlertsTotal.WithLabelValues(tier).Inc()
}
