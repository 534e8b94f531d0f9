package analytics

// PercentChange computes the percentage change from previous to current.
// A zero (or absent) baseline yields 100 when the current value is positive
// and 0 otherwise, so fresh stores see "+100%" rather than a division error.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return ((current - previous) / previous) * 100
}

// compare applies PercentChange to every metric of two snapshots.
func compare(current, previous Snapshot) *Comparison {
	return &Comparison{
		TotalRevenueChange:      PercentChange(current.Revenue, previous.Revenue),
		TotalOrdersChange:       PercentChange(float64(current.Orders), float64(previous.Orders)),
		AverageOrderValueChange: PercentChange(current.AverageOrderValue, previous.AverageOrderValue),
		TotalSessionsChange:     PercentChange(float64(current.Sessions), float64(previous.Sessions)),
		ConversionRateChange:    PercentChange(current.ConversionRate, previous.ConversionRate),
	}
}
