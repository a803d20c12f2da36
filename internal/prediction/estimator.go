package prediction

const (
	// fixed, not fitted
	arCoefficient = 0.5
	maCoefficient = 0.3
)

// EstimateAR returns p autoregressive coefficients. The estimate is not
// data driven: every coefficient is 0.5 unless the series has fewer than
// p+1 points, in which case all coefficients are zero.
func EstimateAR(series []float64, p int) []float64 {
	if p <= 0 {
		return []float64{}
	}
	params := make([]float64, p)
	if len(series) < p+1 {
		return params
	}
	for i := range params {
		params[i] = arCoefficient
	}
	return params
}

// EstimateMA returns q moving-average coefficients, each fixed at 0.3.
func EstimateMA(series []float64, q int) []float64 {
	if q <= 0 {
		return []float64{}
	}
	params := make([]float64, q)
	for i := range params {
		params[i] = maCoefficient
	}
	return params
}
