package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
)

// RestockPlanner turns sales forecasts and on-hand stock into restock recommendations
type RestockPlanner struct {
	forecaster SalesForecaster
	stock      repository.StockReader
	logger     logrus.FieldLogger
	options
}

// NewRestockPlanner creates a planner using forecaster for demand and stock for inventory levels
func NewRestockPlanner(forecaster SalesForecaster, stock repository.StockReader, logger logrus.FieldLogger, opts ...Option) *RestockPlanner {
	return &RestockPlanner{
		forecaster: forecaster,
		stock:      stock,
		logger:     logger,
		options:    applyOptions(opts),
	}
}

// GenerateRestockForecast returns a recommendation for every forecastable product.
// Forecast errors are logged and produce an empty map; products whose stock cannot
// be read are logged and left out.
func (p *RestockPlanner) GenerateRestockForecast(ctx context.Context, productID string, periodType domain.PeriodType, horizon int) map[string]*domain.RestockRecommendation {
	defer p.metrics.ObserveDuration(operationRestockForecast, time.Now())

	recommendations := make(map[string]*domain.RestockRecommendation)

	logger := p.logger.WithFields(logrus.Fields{
		"product_id":  productID,
		"period_type": periodType,
		"horizon":     horizon,
	})

	forecast, err := p.forecaster.GenerateSalesForecast(ctx, productID, periodType, horizon)
	if err != nil {
		logger.WithError(err).Warn("Sales forecast unavailable, no restock recommendations produced")
		return recommendations
	}

	ids := make([]string, 0, len(forecast.Forecasts))
	for id := range forecast.Forecasts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		result := forecast.Forecasts[id]
		productLogger := logger.WithField("product_id", id)

		currentStock, err := p.stock.FetchCurrentStock(ctx, id)
		if err != nil {
			productLogger.WithError(err).Warn("Failed to fetch current stock, skipping product")
			continue
		}
		minLevel, err := p.stock.FetchProductMinStockLevel(ctx, id)
		if err != nil {
			productLogger.WithError(err).Warn("Failed to fetch minimum stock level, skipping product")
			continue
		}

		recommendation := PlanRestock(result, currentStock, minLevel)
		recommendations[id] = recommendation

		for _, point := range recommendation.RestockPoints {
			p.metrics.ObserveRestockPoint(string(point.Urgency))
		}

		if len(recommendation.RestockPoints) > 0 {
			productLogger.WithFields(logrus.Fields{
				"current_stock":  currentStock.String(),
				"min_stock":      minLevel.String(),
				"restock_points": len(recommendation.RestockPoints),
				"total_restock":  recommendation.TotalRestockNeeded,
				"urgency":        recommendation.MostUrgent(),
			}).Info("Restock recommended")

			p.publish(ctx, productLogger, events.EventRestockRecommended, events.RestockRecommended{
				ProductID:          id,
				ProductName:        recommendation.ProductName,
				Urgency:            string(recommendation.MostUrgent()),
				TotalRestockNeeded: recommendation.TotalRestockNeeded,
			})
		}
	}

	return recommendations
}

// PlanRestock walks the forecast demand against current stock and emits a restock point
// for every period where projected stock falls to or below the minimum level
func PlanRestock(forecast *domain.ForecastResult, currentStock, minLevel decimal.Decimal) *domain.RestockRecommendation {
	recommendation := &domain.RestockRecommendation{
		ProductID:     forecast.ProductID,
		ProductName:   forecast.ProductName,
		CurrentStock:  currentStock,
		MinStockLevel: minLevel,
		RestockPoints: []domain.RestockPoint{},
	}

	stock := currentStock.InexactFloat64()
	minimum := minLevel.InexactFloat64()
	buffer := decimal.RequireFromString(restockBuffer)

	cumulative := 0.0
	for i, demand := range forecast.ForecastedQuantities {
		cumulative += demand
		remaining := stock - cumulative
		if remaining > minimum {
			continue
		}

		projected := math.Max(0, remaining)
		point := domain.RestockPoint{
			PeriodIndex:         i,
			RecommendedQuantity: decimal.NewFromFloat(demand).Mul(buffer).Ceil().IntPart(),
			ProjectedStock:      projected,
			Urgency:             UrgencyTier(projected, minimum),
		}
		if i < len(forecast.ForecastPeriods) {
			point.Period = forecast.ForecastPeriods[i]
		}

		recommendation.RestockPoints = append(recommendation.RestockPoints, point)
		recommendation.TotalRestockNeeded += point.RecommendedQuantity
	}

	if len(forecast.ForecastedQuantities) > 0 {
		recommendation.AverageMonthlyDemand = math.Round(stat.Mean(forecast.ForecastedQuantities, nil)*100) / 100
	}

	return recommendation
}

// UrgencyTier grades projected stock against the minimum level
func UrgencyTier(stock, minLevel float64) domain.Urgency {
	ratio := stock / math.Max(minLevel, 1)
	switch {
	case ratio <= 0:
		return domain.UrgencyCritical
	case ratio <= 0.5:
		return domain.UrgencyHigh
	case ratio <= 1.0:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}
