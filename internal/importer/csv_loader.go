package importer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

var (
	productsHeader = []string{"id", "name", "sku", "min_stock_level", "unit_price", "active"}
	batchesHeader  = []string{"id", "product_id", "batch_number", "quantity", "expiry_date", "active"}
	salesHeader    = []string{"id", "product_id", "quantity", "unit_price", "sold_at"}
)

// Loader handles loading pharmacy data from CSV files
type Loader struct {
	now func() time.Time
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{now: time.Now}
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*domain.Product, error) {
	records, err := readRecords(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	products := make([]*domain.Product, 0, len(records))
	for i, record := range records {
		product, err := l.parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadBatches loads stock batches from a CSV file
func (l *Loader) LoadBatches(filename string) ([]*domain.Batch, error) {
	records, err := readRecords(filename, "batches", batchesHeader)
	if err != nil {
		return nil, err
	}

	batches := make([]*domain.Batch, 0, len(records))
	for i, record := range records {
		batch, err := l.parseBatch(record)
		if err != nil {
			return nil, fmt.Errorf("batches CSV row %d: %w", i+2, err)
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

// LoadSales loads sale lines from a CSV file
func (l *Loader) LoadSales(filename string) ([]*domain.SaleLine, error) {
	records, err := readRecords(filename, "sales", salesHeader)
	if err != nil {
		return nil, err
	}

	lines := make([]*domain.SaleLine, 0, len(records))
	for i, record := range records {
		line, err := parseSaleLine(record)
		if err != nil {
			return nil, fmt.Errorf("sales CSV row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// readRecords returns the data rows of a CSV file after validating its header
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}

	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range actual {
		if strings.TrimSpace(strings.ToLower(col)) != expected[i] {
			return false
		}
	}
	return true
}

func (l *Loader) parseProduct(record []string) (*domain.Product, error) {
	minStock, err := parseDecimal(record[3], "min_stock_level")
	if err != nil {
		return nil, err
	}
	unitPrice, err := parseDecimal(record[4], "unit_price")
	if err != nil {
		return nil, err
	}
	active, err := parseBool(record[5])
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(record[1]) == "" {
		return nil, fmt.Errorf("name is required")
	}

	now := l.now()
	return &domain.Product{
		ID:            strings.TrimSpace(record[0]),
		Name:          strings.TrimSpace(record[1]),
		SKU:           strings.TrimSpace(record[2]),
		MinStockLevel: minStock,
		UnitPrice:     unitPrice,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (l *Loader) parseBatch(record []string) (*domain.Batch, error) {
	productID := strings.TrimSpace(record[1])
	if productID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	quantity, err := parseDecimal(record[3], "quantity")
	if err != nil {
		return nil, err
	}
	expiry, err := parseTime(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid expiry_date: %w", err)
	}
	active, err := parseBool(record[5])
	if err != nil {
		return nil, err
	}

	return &domain.Batch{
		ID:          strings.TrimSpace(record[0]),
		ProductID:   productID,
		BatchNumber: strings.TrimSpace(record[2]),
		Quantity:    quantity,
		ExpiryDate:  expiry,
		Active:      active,
		ReceivedAt:  l.now(),
	}, nil
}

func parseSaleLine(record []string) (*domain.SaleLine, error) {
	productID := strings.TrimSpace(record[1])
	if productID == "" {
		return nil, fmt.Errorf("product_id is required")
	}
	quantity, err := parseDecimal(record[2], "quantity")
	if err != nil {
		return nil, err
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative: %s", quantity)
	}
	unitPrice, err := parseDecimal(record[3], "unit_price")
	if err != nil {
		return nil, err
	}
	soldAt, err := parseTime(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid sold_at: %w", err)
	}

	return &domain.SaleLine{
		ID:        strings.TrimSpace(record[0]),
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		SoldAt:    soldAt,
	}, nil
}

func parseDecimal(value, field string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	return d, nil
}

func parseBool(value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid active flag %q", value)
	}
	return b, nil
}

// parseTime accepts RFC 3339 timestamps or plain dates
func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
