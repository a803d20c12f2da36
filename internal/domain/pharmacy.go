package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable pharmacy product tracked for demand forecasting
type Product struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SKU           string            `json:"sku,omitempty"`
	Description   string            `json:"description,omitempty"`
	MinStockLevel decimal.Decimal   `json:"min_stock_level"`
	UnitPrice     decimal.Decimal   `json:"unit_price"`
	Active        bool              `json:"active"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Batch is a received lot of a product with its own expiry date
type Batch struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	ExpiryDate  time.Time       `json:"expiry_date"`
	Active      bool            `json:"active"`
	ReceivedAt  time.Time       `json:"received_at"`
}

// SaleLine is a single product line of a completed sale
type SaleLine struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	SoldAt     time.Time       `json:"sold_at"`
}

// IsAvailable reports whether the batch counts towards on-hand stock at now
func (b *Batch) IsAvailable(now time.Time) bool {
	return b.Active && !b.IsExpired(now)
}

// IsExpired checks if the batch expiry date has passed
func (b *Batch) IsExpired(now time.Time) bool {
	return !b.ExpiryDate.After(now)
}

// LineTotal returns the stored total price, falling back to quantity * unit price
func (s *SaleLine) LineTotal() decimal.Decimal {
	if !s.TotalPrice.IsZero() {
		return s.TotalPrice
	}
	return s.Quantity.Mul(s.UnitPrice)
}

// ProductNotFoundError represents an error when a product is not found
type ProductNotFoundError struct {
	ID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID '%s' not found", e.ID)
}
