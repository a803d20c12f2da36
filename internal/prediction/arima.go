package prediction

import "math"

// MinSeriesLength is the shortest series Forecast will project; shorter
// input produces a zero forecast.
const MinSeriesLength = 3

// Order holds the (p, d, q) orders of an ARIMA model
type Order struct {
	P int `json:"p"`
	D int `json:"d"`
	Q int `json:"q"`
}

// DefaultOrder is ARIMA(1,1,1), used for every product forecast
var DefaultOrder = Order{P: 1, D: 1, Q: 1}

// Forecast projects series horizon steps ahead with a simplified ARIMA(p,d,q).
// The result always has horizon values, each rounded to two decimals and
// clamped at zero.
func Forecast(series []float64, horizon int, order Order) []float64 {
	if horizon <= 0 {
		return []float64{}
	}
	if len(series) < MinSeriesLength {
		return make([]float64, horizon)
	}

	differenced := Difference(series, order.D)
	arParams := EstimateAR(differenced, order.P)
	maParams := EstimateMA(differenced, order.Q)

	// Residual feedback is not computed; the buffer only ever holds zeros.
	errs := make([]float64, len(maParams))

	forecast := make([]float64, 0, horizon)
	for i := 0; i < horizon; i++ {
		arComponent := 0.0
		for j, coef := range arParams {
			arComponent += coef * laggedValue(differenced, forecast, i, j)
		}

		maComponent := 0.0
		for j, coef := range maParams {
			maComponent += coef * errs[len(errs)-1-j]
		}

		forecast = append(forecast, arComponent+maComponent)

		if len(errs) > 0 {
			copy(errs, errs[1:])
			errs[len(errs)-1] = 0
		}
	}

	levels := ReverseDifference(forecast, series, order.D)
	for i, value := range levels {
		levels[i] = math.Max(0, roundTo(value, 2))
	}
	return levels
}

// laggedValue returns the value lag j behind forecast step i: history while
// the index is inside the differenced series, earlier forecasts after that.
func laggedValue(differenced, forecast []float64, i, j int) float64 {
	idx := len(differenced) - 1 - j + i
	if idx >= 0 && idx < len(differenced) {
		return differenced[idx]
	}
	if idx < 0 {
		return 0
	}
	prev := i - j - 1
	if prev < 0 || prev >= len(forecast) {
		return 0
	}
	return forecast[prev]
}

func roundTo(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
