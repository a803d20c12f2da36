package prediction

// Difference applies the first difference series[i]-series[i-1] order times.
// Each pass shortens the sequence by one; an empty slice is returned when
// the series is not longer than order.
func Difference(series []float64, order int) []float64 {
	if order <= 0 {
		out := make([]float64, len(series))
		copy(out, series)
		return out
	}
	if len(series) <= order {
		return []float64{}
	}

	result := series
	for pass := 0; pass < order; pass++ {
		next := make([]float64, len(result)-1)
		for i := 1; i < len(result); i++ {
			next[i-1] = result[i] - result[i-1]
		}
		result = next
	}
	return result
}

// ReverseDifference integrates a differenced forecast back onto the level of the
// original series. Every pass starts from the last original value and cumulatively
// sums the output of the previous pass.
func ReverseDifference(forecast, original []float64, order int) []float64 {
	result := make([]float64, len(forecast))
	copy(result, forecast)
	if len(original) == 0 {
		return result
	}

	for pass := 0; pass < order; pass++ {
		last := original[len(original)-1]
		integrated := make([]float64, len(result))
		for i, value := range result {
			last += value
			integrated[i] = last
		}
		result = integrated
	}
	return result
}
