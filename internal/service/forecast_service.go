package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DaDevFox/task-systems/forecast-core/internal/aggregate"
	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/prediction"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
)

// SalesForecaster produces sales forecasts; RestockPlanner depends on this rather than on ForecastService
type SalesForecaster interface {
	GenerateSalesForecast(ctx context.Context, productID string, periodType domain.PeriodType, horizon int) (*domain.SalesForecast, error)
}

// ForecastService orchestrates aggregation, ARIMA forecasting and confidence estimation
type ForecastService struct {
	aggregator *aggregate.Aggregator
	logger     logrus.FieldLogger
	options
}

// NewForecastService creates a forecast service reading sales history from history
func NewForecastService(history repository.SalesHistoryReader, logger logrus.FieldLogger, opts ...Option) *ForecastService {
	return &ForecastService{
		aggregator: aggregate.NewAggregator(history, logger),
		logger:     logger,
		options:    applyOptions(opts),
	}
}

// GenerateSalesForecast forecasts demand and revenue for the next horizon periods.
// An empty productID forecasts every product with sales history. Products with fewer
// than domain.MinForecastPeriods periods are listed in SkippedProducts; when no product
// can be forecast an *domain.InsufficientDataError is returned.
func (s *ForecastService) GenerateSalesForecast(ctx context.Context, productID string, periodType domain.PeriodType, horizon int) (*domain.SalesForecast, error) {
	if horizon < 1 {
		s.metrics.ObserveFailure(failureReasonInvalidArgument)
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidHorizon, horizon)
	}
	if !periodType.Valid() {
		s.metrics.ObserveFailure(failureReasonInvalidArgument)
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodType, periodType)
	}

	start := time.Now()
	defer s.metrics.ObserveDuration(operationSalesForecast, start)

	logger := s.logger.WithFields(logrus.Fields{
		"product_id":  productID,
		"period_type": periodType,
		"horizon":     horizon,
	})

	series, err := s.aggregator.Aggregate(ctx, productID, periodType)
	if err != nil {
		s.metrics.ObserveFailure(failureReasonStorage)
		return nil, fmt.Errorf("failed to aggregate sales history: %w", err)
	}
	if len(series) == 0 {
		s.metrics.ObserveFailure(failureReasonInsufficientData)
		return nil, &domain.InsufficientDataError{Empty: true}
	}

	ids := make([]string, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := s.clock()
	labels := make([]string, horizon)
	for i := range labels {
		labels[i] = periodType.ForecastLabel(now, i+1)
	}

	result := &domain.SalesForecast{
		Forecasts:       make(map[string]*domain.ForecastResult),
		SkippedProducts: []string{},
	}

	for _, id := range ids {
		history := series[id]
		productLogger := logger.WithFields(logrus.Fields{
			"product_id":   id,
			"product_name": history.ProductName,
		})

		continuity := s.aggregator.AnalyzeContinuity(history.Periods, periodType)
		if continuity.MissingPeriods > 0 {
			productLogger.WithFields(logrus.Fields{
				"first_period":     continuity.FirstPeriod,
				"last_period":      continuity.LastPeriod,
				"expected_periods": continuity.ExpectedPeriods,
				"missing_periods":  continuity.MissingPeriods,
			}).Warn("Sales history has missing periods")
		}

		if history.Len() < domain.MinForecastPeriods {
			productLogger.WithField("periods", history.Len()).Warn("Skipping product with insufficient history")
			result.SkippedProducts = append(result.SkippedProducts,
				fmt.Sprintf("%s (%d periods)", history.DisplayName(), history.Len()))
			continue
		}

		forecast := s.forecastProduct(history, horizon, labels, continuity)
		result.Forecasts[id] = forecast

		productLogger.WithFields(logrus.Fields{
			"order":    prediction.DefaultOrder,
			"ar":       prediction.EstimateAR(history.Quantities, prediction.DefaultOrder.P),
			"ma":       prediction.EstimateMA(history.Quantities, prediction.DefaultOrder.Q),
			"history":  history.Quantities,
			"forecast": forecast.ForecastedQuantities,
			"std_dev":  forecast.ConfidenceInterval.StdDev,
		}).Debug("Generated product forecast")

		s.publish(ctx, productLogger, events.EventForecastGenerated, events.ForecastGenerated{
			ProductID:   id,
			ProductName: history.ProductName,
			PeriodType:  string(periodType),
			Horizon:     horizon,
			Forecast:    forecast.ForecastedQuantities,
		})
	}

	s.metrics.ObserveForecast(string(periodType), len(result.Forecasts), len(result.SkippedProducts))

	if len(result.Forecasts) == 0 {
		s.metrics.ObserveFailure(failureReasonInsufficientData)
		return nil, &domain.InsufficientDataError{SkippedProducts: result.SkippedProducts}
	}

	logger.WithFields(logrus.Fields{
		"forecasts": len(result.Forecasts),
		"skipped":   len(result.SkippedProducts),
	}).Info("Sales forecast generated")

	return result, nil
}

func (s *ForecastService) forecastProduct(history *domain.ProductSeries, horizon int, labels []string, continuity domain.ContinuityReport) *domain.ForecastResult {
	return &domain.ForecastResult{
		ProductID:            history.ProductID,
		ProductName:          history.ProductName,
		HistoricalQuantities: history.Quantities,
		HistoricalRevenues:   history.Revenues,
		HistoricalPeriods:    history.Periods,
		ForecastedQuantities: prediction.Forecast(history.Quantities, horizon, prediction.DefaultOrder),
		ForecastedRevenues:   prediction.Forecast(history.Revenues, horizon, prediction.DefaultOrder),
		ForecastPeriods:      append([]string(nil), labels...),
		ConfidenceInterval:   prediction.Interval(history.Quantities),
		Continuity:           continuity,
	}
}

func (o *options) publish(ctx context.Context, logger logrus.FieldLogger, eventType events.EventType, payload interface{}) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, eventType, payload); err != nil {
		logger.WithError(err).WithField("event_type", eventType).Warn("Failed to publish event")
	}
}
