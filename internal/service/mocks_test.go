package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/events"
)

const (
	testProductID   = "prod-amox"
	testProductName = "Amoxicillin 500mg"
)

var testNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

// MockHistory is a mock implementation of repository.SalesHistoryReader
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) FetchSalesLineFacts(ctx context.Context, productID string, periodType domain.PeriodType) ([]domain.SalesFact, error) {
	args := m.Called(ctx, productID, periodType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalesFact), args.Error(1)
}

// MockStock is a mock implementation of repository.StockReader
type MockStock struct {
	mock.Mock
}

func (m *MockStock) FetchCurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStock) FetchProductMinStockLevel(ctx context.Context, productID string) (decimal.Decimal, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockForecaster is a mock implementation of SalesForecaster
type MockForecaster struct {
	mock.Mock
}

func (m *MockForecaster) GenerateSalesForecast(ctx context.Context, productID string, periodType domain.PeriodType, horizon int) (*domain.SalesForecast, error) {
	args := m.Called(ctx, productID, periodType, horizon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesForecast), args.Error(1)
}

// recordingPublisher captures published events synchronously
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, eventType events.EventType, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events.Event{Type: eventType, Payload: payload})
	return nil
}

func (r *recordingPublisher) Published() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

// monthlyFacts builds one fact per quantity for consecutive months starting at 2024-01
func monthlyFacts(productID, name string, quantities ...int64) []domain.SalesFact {
	facts := make([]domain.SalesFact, 0, len(quantities))
	for i, q := range quantities {
		month := time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
		facts = append(facts, domain.SalesFact{
			ProductID:   productID,
			ProductName: name,
			Period:      domain.PeriodMonthly.Label(month),
			Quantity:    decimal.NewFromInt(q),
			Revenue:     decimal.NewFromInt(q * 2),
		})
	}
	return facts
}

func flatForecast(productID string, quantities ...float64) *domain.SalesForecast {
	periods := make([]string, len(quantities))
	for i := range periods {
		periods[i] = domain.PeriodMonthly.ForecastLabel(testNow, i+1)
	}
	return &domain.SalesForecast{
		Forecasts: map[string]*domain.ForecastResult{
			productID: {
				ProductID:            productID,
				ProductName:          testProductName,
				ForecastedQuantities: quantities,
				ForecastPeriods:      periods,
			},
		},
		SkippedProducts: []string{},
	}
}
