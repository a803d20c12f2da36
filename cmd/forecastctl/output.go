package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
	"github.com/DaDevFox/task-systems/forecast-core/internal/importer"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printImportSummary(w io.Writer, summary importer.Summary, asJSON bool) error {
	if asJSON {
		return printJSON(w, summary)
	}
	_, err := fmt.Fprintf(w, "Imported %d products, %d batches, %d sales\n", summary.Products, summary.Batches, summary.Sales)
	return err
}

func printSalesForecast(w io.Writer, forecast *domain.SalesForecast, asJSON bool) error {
	if asJSON {
		return printJSON(w, forecast)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tPERIOD\tQUANTITY\tREVENUE")
	for _, id := range sortedKeys(forecast.Forecasts) {
		result := forecast.Forecasts[id]
		name := result.ProductName
		if name == "" {
			name = id
		}
		for i, period := range result.ForecastPeriods {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\n", name, period, result.ForecastedQuantities[i], result.ForecastedRevenues[i])
		}
		ci := result.ConfidenceInterval
		fmt.Fprintf(tw, "%s\t95%% band\t%.2f - %.2f\t\n", name, ci.Lower, ci.Upper)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(forecast.SkippedProducts) > 0 {
		_, err := fmt.Fprintf(w, "\nSkipped: %s\n", strings.Join(forecast.SkippedProducts, ", "))
		return err
	}
	return nil
}

func printRestock(w io.Writer, recommendations map[string]*domain.RestockRecommendation, asJSON bool) error {
	if asJSON {
		return printJSON(w, recommendations)
	}
	if len(recommendations) == 0 {
		_, err := fmt.Fprintln(w, "No restock recommendations")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tSTOCK\tMIN\tPERIOD\tORDER\tPROJECTED\tURGENCY")
	for _, id := range sortedKeys(recommendations) {
		rec := recommendations[id]
		name := rec.ProductName
		if name == "" {
			name = id
		}
		if len(rec.RestockPoints) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t0\t-\t%s\n", name, rec.CurrentStock, rec.MinStockLevel, domain.UrgencyLow)
			continue
		}
		for _, point := range rec.RestockPoints {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%s\n",
				name, rec.CurrentStock, rec.MinStockLevel, point.Period, point.RecommendedQuantity, point.ProjectedStock, point.Urgency)
		}
	}
	return tw.Flush()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
