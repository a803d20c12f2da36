package prediction

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

// z95 is the two-sided 95% quantile of the standard normal distribution
const z95 = 1.96

// Interval computes a 95% normal-approximation band around the mean of data
// using the population variance.
func Interval(data []float64) domain.ConfidenceInterval {
	if len(data) == 0 {
		return domain.ConfidenceInterval{}
	}

	mean, variance := stat.PopMeanVariance(data, nil)
	stdDev := math.Sqrt(variance)

	return domain.ConfidenceInterval{
		Lower:  mean - z95*stdDev,
		Upper:  mean + z95*stdDev,
		StdDev: stdDev,
	}
}
