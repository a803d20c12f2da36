package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
	"github.com/DaDevFox/task-systems/forecast-core/internal/metrics"
)

func newTestForecastService(history *MockHistory, opts ...Option) *ForecastService {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel) // Reduce noise in tests
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewForecastService(history, logger, opts...)
}

func TestGenerateSalesForecastScenario(t *testing.T) {
	history := new(MockHistory)
	facts := append(monthlyFacts(testProductID, testProductName, 10, 12, 11, 13, 14),
		monthlyFacts("prod-ibu", "Ibuprofen 200mg", 7, 9)...)
	history.On("FetchSalesLineFacts", mock.Anything, "", domain.PeriodMonthly).Return(facts, nil)

	service := newTestForecastService(history)

	forecast, err := service.GenerateSalesForecast(context.Background(), "", domain.PeriodMonthly, 3)
	require.NoError(t, err)

	require.Len(t, forecast.Forecasts, 1)
	result := forecast.Forecasts[testProductID]
	require.NotNil(t, result)

	assert.Equal(t, []float64{14.5, 14.75, 14.88}, result.ForecastedQuantities)
	assert.Equal(t, []float64{29, 29.5, 29.75}, result.ForecastedRevenues)
	assert.Equal(t, []string{"2024-07", "2024-08", "2024-09"}, result.ForecastPeriods)
	assert.Equal(t, []float64{10, 12, 11, 13, 14}, result.HistoricalQuantities)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05"}, result.HistoricalPeriods)
	assert.Equal(t, testProductName, result.ProductName)
	assert.InDelta(t, 12.0, (result.ConfidenceInterval.Lower+result.ConfidenceInterval.Upper)/2, 1e-9)
	assert.Zero(t, result.Continuity.MissingPeriods)

	assert.Equal(t, []string{"Ibuprofen 200mg (2 periods)"}, forecast.SkippedProducts)
	history.AssertExpectations(t)
}

func TestGenerateSalesForecastLengthMatchesHorizon(t *testing.T) {
	for _, horizon := range []int{1, 4, 12} {
		history := new(MockHistory)
		history.On("FetchSalesLineFacts", mock.Anything, testProductID, domain.PeriodMonthly).
			Return(monthlyFacts(testProductID, testProductName, 5, 1, 8, 0, 3, 2), nil)

		forecast, err := newTestForecastService(history).GenerateSalesForecast(context.Background(), testProductID, domain.PeriodMonthly, horizon)
		require.NoError(t, err)

		result := forecast.Forecasts[testProductID]
		assert.Len(t, result.ForecastedQuantities, horizon)
		assert.Len(t, result.ForecastedRevenues, horizon)
		assert.Len(t, result.ForecastPeriods, horizon)
		for _, v := range result.ForecastedQuantities {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestGenerateSalesForecastEmptyHistory(t *testing.T) {
	history := new(MockHistory)
	history.On("FetchSalesLineFacts", mock.Anything, "", domain.PeriodWeekly).Return([]domain.SalesFact{}, nil)

	_, err := newTestForecastService(history).GenerateSalesForecast(context.Background(), "", domain.PeriodWeekly, 3)
	require.Error(t, err)
	assert.True(t, domain.IsInsufficientData(err))

	var insufficient *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Empty)
	assert.Contains(t, err.Error(), "no historical sales data")
}

func TestGenerateSalesForecastAllProductsSkipped(t *testing.T) {
	history := new(MockHistory)
	facts := append(monthlyFacts("b", "", 1, 2), monthlyFacts("a", "Aspirin", 4)...)
	history.On("FetchSalesLineFacts", mock.Anything, "", domain.PeriodMonthly).Return(facts, nil)

	_, err := newTestForecastService(history).GenerateSalesForecast(context.Background(), "", domain.PeriodMonthly, 3)

	var insufficient *domain.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.False(t, insufficient.Empty)
	assert.Equal(t, []string{"Aspirin (1 periods)", "b (2 periods)"}, insufficient.SkippedProducts)
	assert.Contains(t, err.Error(), "Aspirin (1 periods), b (2 periods)")
}

func TestGenerateSalesForecastRejectsInvalidArguments(t *testing.T) {
	history := new(MockHistory)
	service := newTestForecastService(history)

	_, err := service.GenerateSalesForecast(context.Background(), "", domain.PeriodMonthly, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidHorizon)

	_, err = service.GenerateSalesForecast(context.Background(), "", domain.PeriodType("daily"), 3)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodType)

	history.AssertNotCalled(t, "FetchSalesLineFacts", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateSalesForecastStorageError(t *testing.T) {
	storageErr := errors.New("connection refused")
	history := new(MockHistory)
	history.On("FetchSalesLineFacts", mock.Anything, "", domain.PeriodMonthly).Return(nil, storageErr)

	_, err := newTestForecastService(history).GenerateSalesForecast(context.Background(), "", domain.PeriodMonthly, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, storageErr)
	assert.False(t, domain.IsInsufficientData(err))
}

func TestGenerateSalesForecastWarnsOnGaps(t *testing.T) {
	logger, hook := test.NewNullLogger()
	history := new(MockHistory)
	facts := monthlyFacts(testProductID, testProductName, 10, 12, 11, 13)
	facts = append(facts[:1], facts[2:]...) // drop 2024-02
	history.On("FetchSalesLineFacts", mock.Anything, testProductID, domain.PeriodMonthly).Return(facts, nil)

	service := NewForecastService(history, logger, WithClock(func() time.Time { return testNow }))
	forecast, err := service.GenerateSalesForecast(context.Background(), testProductID, domain.PeriodMonthly, 2)
	require.NoError(t, err)

	continuity := forecast.Forecasts[testProductID].Continuity
	assert.Equal(t, 4, continuity.ExpectedPeriods)
	assert.Equal(t, 1, continuity.MissingPeriods)

	var warned bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "Sales history has missing periods" {
			warned = true
			assert.Equal(t, 1, entry.Data["missing_periods"])
		}
	}
	assert.True(t, warned, "expected a missing periods warning")
}

func TestGenerateSalesForecastWeeklyLabels(t *testing.T) {
	history := new(MockHistory)
	facts := []domain.SalesFact{
		{ProductID: testProductID, Period: "2024-W20", Quantity: decimal.NewFromInt(3)},
		{ProductID: testProductID, Period: "2024-W21", Quantity: decimal.NewFromInt(4)},
		{ProductID: testProductID, Period: "2024-W22", Quantity: decimal.NewFromInt(5)},
	}
	history.On("FetchSalesLineFacts", mock.Anything, testProductID, domain.PeriodWeekly).Return(facts, nil)

	forecast, err := newTestForecastService(history).GenerateSalesForecast(context.Background(), testProductID, domain.PeriodWeekly, 2)
	require.NoError(t, err)

	// 2024-06-15 falls in ISO week 24
	assert.Equal(t, []string{"2024-W25", "2024-W26"}, forecast.Forecasts[testProductID].ForecastPeriods)
}

func TestGenerateSalesForecastPublishesAndRecords(t *testing.T) {
	history := new(MockHistory)
	facts := append(monthlyFacts(testProductID, testProductName, 10, 12, 11, 13, 14),
		monthlyFacts("prod-ibu", "Ibuprofen 200mg", 7)...)
	history.On("FetchSalesLineFacts", mock.Anything, "", domain.PeriodMonthly).Return(facts, nil)

	publisher := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	service := newTestForecastService(history, WithEventPublisher(publisher), WithMetrics(m))

	_, err := service.GenerateSalesForecast(context.Background(), "", domain.PeriodMonthly, 3)
	require.NoError(t, err)

	published := publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventForecastGenerated, published[0].Type)
	payload, ok := published[0].Payload.(events.ForecastGenerated)
	require.True(t, ok)
	assert.Equal(t, testProductID, payload.ProductID)
	assert.Equal(t, 3, payload.Horizon)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ForecastsGenerated.WithLabelValues("monthly")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsSkipped.WithLabelValues("monthly")))
}
