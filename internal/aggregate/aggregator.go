package aggregate

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
)

// Aggregator buckets raw sales facts into per-product period series
type Aggregator struct {
	source repository.SalesHistoryReader
	logger logrus.FieldLogger
}

// NewAggregator creates an aggregator reading from the given sales history
func NewAggregator(source repository.SalesHistoryReader, logger logrus.FieldLogger) *Aggregator {
	return &Aggregator{source: source, logger: logger}
}

type periodTotals struct {
	quantity decimal.Decimal
	revenue  decimal.Decimal
}

// Aggregate returns one series per product with quantities and revenues summed per period
// and periods in ascending label order. An empty productID aggregates every product.
func (a *Aggregator) Aggregate(ctx context.Context, productID string, periodType domain.PeriodType) (map[string]*domain.ProductSeries, error) {
	facts, err := a.source.FetchSalesLineFacts(ctx, productID, periodType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales history: %w", err)
	}

	names := make(map[string]string)
	buckets := make(map[string]map[string]*periodTotals)
	for _, fact := range facts {
		if fact.ProductID == "" || fact.Period == "" {
			a.logger.WithFields(logrus.Fields{
				"product_id": fact.ProductID,
				"period":     fact.Period,
			}).Debug("Skipping unlabelled sales fact")
			continue
		}

		if fact.ProductName != "" {
			names[fact.ProductID] = fact.ProductName
		}

		periods, ok := buckets[fact.ProductID]
		if !ok {
			periods = make(map[string]*periodTotals)
			buckets[fact.ProductID] = periods
		}
		totals, ok := periods[fact.Period]
		if !ok {
			totals = &periodTotals{}
			periods[fact.Period] = totals
		}
		totals.quantity = totals.quantity.Add(fact.Quantity)
		totals.revenue = totals.revenue.Add(fact.Revenue)
	}

	result := make(map[string]*domain.ProductSeries, len(buckets))
	for id, periods := range buckets {
		labels := make([]string, 0, len(periods))
		for label := range periods {
			labels = append(labels, label)
		}
		sort.Strings(labels)

		series := &domain.ProductSeries{
			ProductID:   id,
			ProductName: names[id],
			Quantities:  make([]float64, len(labels)),
			Revenues:    make([]float64, len(labels)),
			Periods:     labels,
		}
		for i, label := range labels {
			series.Quantities[i] = periods[label].quantity.InexactFloat64()
			series.Revenues[i] = periods[label].revenue.InexactFloat64()
		}
		result[id] = series
	}

	a.logger.WithFields(logrus.Fields{
		"facts":       len(facts),
		"products":    len(result),
		"period_type": periodType,
	}).Debug("Aggregated sales history")

	return result, nil
}
