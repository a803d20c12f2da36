package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestImportThenForecast(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pharmacy.db")

	products := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(products, []byte("id,name,sku,min_stock_level,unit_price,active\namox,Amoxicillin,AMX,20,2,true\n"), 0o600))
	sales := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(sales, []byte(`id,product_id,quantity,unit_price,sold_at
s1,amox,10,2,2024-01-10
s2,amox,12,2,2024-02-10
s3,amox,11,2,2024-03-10
s4,amox,13,2,2024-04-10
s5,amox,14,2,2024-05-10
`), 0o600))

	out, err := runCLI(t, "import", "--db-path", dbPath, "--products", products, "--sales", sales)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 products, 0 batches, 5 sales")

	out, err = runCLI(t, "forecast", "--db-path", dbPath, "--period", "monthly", "--horizon", "3", "--json")
	require.NoError(t, err)

	var forecast domain.SalesForecast
	require.NoError(t, json.Unmarshal([]byte(out), &forecast))
	require.Contains(t, forecast.Forecasts, "amox")
	assert.Equal(t, []float64{14.5, 14.75, 14.88}, forecast.Forecasts["amox"].ForecastedQuantities)

	out, err = runCLI(t, "restock", "--db-path", dbPath, "--horizon", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "CRITICAL")
}

func TestForecastRejectsUnknownPeriod(t *testing.T) {
	_, err := runCLI(t, "forecast", "--db-path", filepath.Join(t.TempDir(), "x.db"), "--period", "daily")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriodType)
}

func TestImportRequiresFiles(t *testing.T) {
	_, err := runCLI(t, "import", "--db-path", filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, err)
}
