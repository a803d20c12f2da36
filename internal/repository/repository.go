package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

// SalesHistoryReader supplies per-sale-line facts with the period label already applied.
// An empty productID selects every product.
type SalesHistoryReader interface {
	FetchSalesLineFacts(ctx context.Context, productID string, periodType domain.PeriodType) ([]domain.SalesFact, error)
}

// StockReader supplies on-hand stock and the minimum stock level of a product
type StockReader interface {
	// FetchCurrentStock sums the quantity of active, non-expired batches
	FetchCurrentStock(ctx context.Context, productID string) (decimal.Decimal, error)
	FetchProductMinStockLevel(ctx context.Context, productID string) (decimal.Decimal, error)
}

// ForecastStore is the read side the forecasting engine needs
type ForecastStore interface {
	SalesHistoryReader
	StockReader
	Close() error
}

// PharmacyRepository defines the interface for pharmacy data persistence
type PharmacyRepository interface {
	ForecastStore

	// Product operations
	AddProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) error
	ListProducts(ctx context.Context, filters ListFilters) ([]*domain.Product, int, error)

	// Stock operations
	AddBatch(ctx context.Context, batch *domain.Batch) error
	ListBatches(ctx context.Context, productID string) ([]*domain.Batch, error)

	// Sales operations
	RecordSale(ctx context.Context, line *domain.SaleLine) error
}

// ListFilters provides filtering options for listing products
type ListFilters struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// apply reports whether the product passes the filters
func (f ListFilters) apply(product *domain.Product) bool {
	return !f.ActiveOnly || product.Active
}

// paginate applies offset and limit to an already filtered slice
func paginate(products []*domain.Product, filters ListFilters) []*domain.Product {
	if filters.Offset > 0 {
		if filters.Offset >= len(products) {
			return []*domain.Product{}
		}
		products = products[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(products) {
		products = products[:filters.Limit]
	}
	return products
}

// saleFact converts a stored sale line into a labelled fact
func saleFact(line *domain.SaleLine, productName string, periodType domain.PeriodType) domain.SalesFact {
	return domain.SalesFact{
		ProductID:   line.ProductID,
		ProductName: productName,
		Period:      periodType.Label(line.SoldAt),
		Quantity:    line.Quantity,
		Revenue:     line.LineTotal(),
	}
}
