package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPeriodType = errors.New("invalid period type")
	ErrInvalidHorizon    = errors.New("forecast horizon must be at least 1")
)

// InsufficientDataError is returned when no product has enough history to forecast
type InsufficientDataError struct {
	// Empty is set when the historical dataset contained no sales at all
	Empty           bool
	SkippedProducts []string
}

func (e *InsufficientDataError) Error() string {
	if e.Empty {
		return "no historical sales data available for forecasting"
	}
	if len(e.SkippedProducts) == 0 {
		return "insufficient data for forecasting: no products could be forecast"
	}
	return fmt.Sprintf("insufficient data for forecasting (at least %d periods required); skipped products: %s",
		MinForecastPeriods, strings.Join(e.SkippedProducts, ", "))
}

// IsInsufficientData reports whether err is, or wraps, an InsufficientDataError
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// MinForecastPeriods is the shortest history a product needs to be forecast
const MinForecastPeriods = 3
