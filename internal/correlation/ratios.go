package correlation

// Max returns the largest value, or 0 for an empty slice.
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Sum adds up values.
func Sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

// ComputeCTR is total clicks over peak concurrent viewers.
func ComputeCTR(clicks, viewers []float64) float64 {
	peak := Max(viewers)
	if peak <= 0 {
		return 0
	}
	return Sum(clicks) / peak
}

// RetentionRatio is the final viewer count over the peak viewer count.
func RetentionRatio(viewers []float64) float64 {
	peak := Max(viewers)
	if peak <= 0 {
		return 0
	}
	return viewers[len(viewers)-1] / peak
}

// EngagementRate is likes plus metric-reported comments over peak viewers.
func EngagementRate(likes, comments, viewers []float64) float64 {
	peak := Max(viewers)
	if peak <= 0 {
		return 0
	}
	return (Sum(likes) + Sum(comments)) / peak
}
