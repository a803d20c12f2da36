package domain

import "github.com/shopspring/decimal"

// SalesFact is the sales total of one product within one period
type SalesFact struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Period      string          `json:"period"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ProductSeries holds the per-period history of one product in ascending period order.
// Quantities, Revenues and Periods are index-aligned.
type ProductSeries struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantities  []float64 `json:"quantities"`
	Revenues    []float64 `json:"revenues"`
	Periods     []string  `json:"periods"`
}

// Len returns the number of periods in the series
func (s *ProductSeries) Len() int {
	return len(s.Periods)
}

// DisplayName returns the product name, or its ID when no name is known
func (s *ProductSeries) DisplayName() string {
	if s.ProductName != "" {
		return s.ProductName
	}
	return s.ProductID
}

// ContinuityReport describes gaps between the first and last period of a series
type ContinuityReport struct {
	FirstPeriod     string `json:"first_period"`
	LastPeriod      string `json:"last_period"`
	ActualPeriods   int    `json:"actual_periods"`
	ExpectedPeriods int    `json:"expected_periods"`
	MissingPeriods  int    `json:"missing_periods"`
}

// ConfidenceInterval is a 95% normal-approximation band
type ConfidenceInterval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	StdDev float64 `json:"std_dev"`
}

// ForecastResult is the demand and revenue forecast of one product
type ForecastResult struct {
	ProductID            string             `json:"product_id"`
	ProductName          string             `json:"product_name"`
	HistoricalQuantities []float64          `json:"historical_quantities"`
	HistoricalRevenues   []float64          `json:"historical_revenues"`
	HistoricalPeriods    []string           `json:"historical_periods"`
	ForecastedQuantities []float64          `json:"forecasted_quantities"`
	ForecastedRevenues   []float64          `json:"forecasted_revenues"`
	ForecastPeriods      []string           `json:"forecast_periods"`
	ConfidenceInterval   ConfidenceInterval `json:"confidence_interval"`
	Continuity           ContinuityReport   `json:"continuity"`
}

// SalesForecast is the outcome of a forecast run across products
type SalesForecast struct {
	Forecasts       map[string]*ForecastResult `json:"forecasts"`
	SkippedProducts []string                   `json:"skipped_products"`
}

// Urgency classifies how pressing a restock point is
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// Rank orders urgencies from LOW (0) to CRITICAL (3)
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// RestockPoint is a forecast period at which stock reaches the minimum level.
// PeriodIndex is 0-based into the forecast horizon.
type RestockPoint struct {
	PeriodIndex         int     `json:"period_index"`
	Period              string  `json:"period"`
	RecommendedQuantity int64   `json:"recommended_quantity"`
	ProjectedStock      float64 `json:"projected_stock"`
	Urgency             Urgency `json:"urgency"`
}

// RestockRecommendation is the restock plan of one product
type RestockRecommendation struct {
	ProductID            string          `json:"product_id"`
	ProductName          string          `json:"product_name"`
	CurrentStock         decimal.Decimal `json:"current_stock"`
	MinStockLevel        decimal.Decimal `json:"min_stock_level"`
	RestockPoints        []RestockPoint  `json:"restock_points"`
	TotalRestockNeeded   int64           `json:"total_restock_needed"`
	AverageMonthlyDemand float64         `json:"average_monthly_demand"`
}

// MostUrgent returns the highest urgency among the restock points, LOW when there are none
func (r *RestockRecommendation) MostUrgent() Urgency {
	most := UrgencyLow
	for _, point := range r.RestockPoints {
		if point.Urgency.Rank() > most.Rank() {
			most = point.Urgency
		}
	}
	return most
}
