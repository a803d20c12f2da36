package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifferenceLength(t *testing.T) {
	series := []float64{1, 4, 9, 16, 25, 36}

	for d := 0; d <= len(series); d++ {
		result := Difference(series, d)
		assert.Len(t, result, len(series)-d, "order %d", d)
	}
}

func TestDifferenceValues(t *testing.T) {
	series := []float64{1, 4, 9, 16, 25}

	assert.Equal(t, []float64{3, 5, 7, 9}, Difference(series, 1))
	assert.Equal(t, []float64{2, 2, 2}, Difference(series, 2))
	assert.Empty(t, Difference([]float64{7}, 1))
	assert.Empty(t, Difference([]float64{}, 2))

	// input must not be modified
	assert.Equal(t, []float64{1, 4, 9, 16, 25}, series)
}

func TestReverseDifference(t *testing.T) {
	assert.Equal(t, []float64{11, 12}, ReverseDifference([]float64{1, 1}, []float64{4, 10}, 1))
	assert.Equal(t, []float64{21, 33}, ReverseDifference([]float64{1, 1}, []float64{4, 10}, 2))
	assert.Equal(t, []float64{1, 1}, ReverseDifference([]float64{1, 1}, []float64{4, 10}, 0))
}

func TestReverseDifferenceReconstructsTail(t *testing.T) {
	series := []float64{3, 5, 8, 12, 17}
	diff := Difference(series, 1)

	reconstructed := ReverseDifference(diff[1:], series[:2], 1)
	assert.Equal(t, series[2:], reconstructed)
}

func TestEstimateAR(t *testing.T) {
	assert.Equal(t, []float64{0.5}, EstimateAR([]float64{2, -1, 2, 1}, 1))
	assert.Equal(t, []float64{0.5, 0.5}, EstimateAR([]float64{2, -1, 2}, 2))
	assert.Equal(t, []float64{0, 0}, EstimateAR([]float64{2, -1}, 2), "too short for p=2")
	assert.Empty(t, EstimateAR([]float64{1, 2, 3}, 0))
}

func TestEstimateMA(t *testing.T) {
	assert.Equal(t, []float64{0.3}, EstimateMA(nil, 1))
	assert.Equal(t, []float64{0.3, 0.3, 0.3}, EstimateMA([]float64{1}, 3))
}

func TestForecastScenario(t *testing.T) {
	// differenced series is [2, -1, 2, 1]; AR(1)=0.5 decays the last
	// difference 1 -> 0.5 -> 0.25 -> 0.125 on top of the last level 14
	result := Forecast([]float64{10, 12, 11, 13, 14}, 3, DefaultOrder)

	require.Len(t, result, 3)
	assert.Equal(t, []float64{14.5, 14.75, 14.88}, result)
}

func TestForecastFlatSeries(t *testing.T) {
	result := Forecast([]float64{5, 5, 5, 5}, 4, DefaultOrder)
	assert.Equal(t, []float64{5, 5, 5, 5}, result)
}

func TestForecastLength(t *testing.T) {
	series := []float64{120, 80, 95, 130, 60, 75, 140}

	for _, horizon := range []int{1, 2, 6, 12, 24} {
		for _, order := range []Order{DefaultOrder, {P: 2, D: 1, Q: 2}, {P: 1, D: 2, Q: 0}, {P: 0, D: 0, Q: 1}} {
			result := Forecast(series, horizon, order)
			assert.Len(t, result, horizon, "horizon %d order %+v", horizon, order)
		}
	}
	assert.Empty(t, Forecast(series, 0, DefaultOrder))
}

func TestForecastNonNegative(t *testing.T) {
	tests := [][]float64{
		{1, 50, 0},
		{100, 60, 20, 5},
		{10, 8, 6, 4, 2},
		{0, 0, 0},
	}

	for _, series := range tests {
		result := Forecast(series, 8, DefaultOrder)
		for i, value := range result {
			assert.GreaterOrEqual(t, value, 0.0, "series %v step %d", series, i)
		}
	}
}

func TestForecastClampsToZero(t *testing.T) {
	// difference -50 drives the projection below zero
	assert.Equal(t, []float64{0, 0}, Forecast([]float64{1, 50, 0}, 2, DefaultOrder))
}

func TestForecastDegenerateInput(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 0}, Forecast([]float64{10, 20}, 3, DefaultOrder))
	assert.Equal(t, []float64{0, 0}, Forecast(nil, 2, DefaultOrder))
}

func TestInterval(t *testing.T) {
	ci := Interval([]float64{10, 12, 11, 13, 14})

	stdDev := math.Sqrt(2)
	assert.InDelta(t, stdDev, ci.StdDev, 1e-9)
	assert.InDelta(t, 12-1.96*stdDev, ci.Lower, 1e-9)
	assert.InDelta(t, 12+1.96*stdDev, ci.Upper, 1e-9)
}

func TestIntervalConstantAndEmpty(t *testing.T) {
	ci := Interval([]float64{4, 4, 4})
	assert.Equal(t, 4.0, ci.Lower)
	assert.Equal(t, 4.0, ci.Upper)
	assert.Equal(t, 0.0, ci.StdDev)

	empty := Interval(nil)
	assert.Zero(t, empty)
}
