package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/importer"
)

func TestPrintSalesForecastTable(t *testing.T) {
	forecast := &domain.SalesForecast{
		Forecasts: map[string]*domain.ForecastResult{
			"amox": {
				ProductID:            "amox",
				ProductName:          "Amoxicillin",
				ForecastedQuantities: []float64{14.5, 14.75},
				ForecastedRevenues:   []float64{29, 29.5},
				ForecastPeriods:      []string{"2024-07", "2024-08"},
			},
		},
		SkippedProducts: []string{"Aspirin (2 periods)"},
	}

	var buf bytes.Buffer
	require.NoError(t, printSalesForecast(&buf, forecast, false))

	out := buf.String()
	assert.Contains(t, out, "Amoxicillin  2024-07")
	assert.Contains(t, out, "14.75")
	assert.Contains(t, out, "Skipped: Aspirin (2 periods)")
}

func TestPrintRestockJSON(t *testing.T) {
	recommendations := map[string]*domain.RestockRecommendation{
		"amox": {
			ProductID:          "amox",
			CurrentStock:       decimal.NewFromInt(50),
			RestockPoints:      []domain.RestockPoint{{PeriodIndex: 2, Period: "2024-09", RecommendedQuantity: 12, Urgency: domain.UrgencyMedium}},
			TotalRestockNeeded: 12,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printRestock(&buf, recommendations, true))

	var decoded map[string]*domain.RestockRecommendation
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, int64(12), decoded["amox"].TotalRestockNeeded)
	assert.True(t, decoded["amox"].CurrentStock.Equal(decimal.NewFromInt(50)))
}

func TestPrintRestockEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRestock(&buf, map[string]*domain.RestockRecommendation{}, false))
	assert.Equal(t, "No restock recommendations\n", buf.String())
}

func TestPrintImportSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printImportSummary(&buf, importer.Summary{Products: 2, Batches: 1, Sales: 9}, false))
	assert.Equal(t, "Imported 2 products, 1 batches, 9 sales\n", buf.String())
}
