package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

// PostgresForecastStore reads sales history and stock from the back-office database.
//
// Expected schema:
//
//	products(id TEXT PRIMARY KEY, name TEXT, min_stock_level NUMERIC)
//	batches(id TEXT PRIMARY KEY, product_id TEXT, quantity NUMERIC, expiry_date TIMESTAMPTZ, active BOOLEAN)
//	sale_lines(id TEXT PRIMARY KEY, product_id TEXT, quantity NUMERIC, total_price NUMERIC, sold_at TIMESTAMPTZ)
type PostgresForecastStore struct {
	pool *pgxpool.Pool
}

const (
	salesFactsQuery = `
		SELECT sl.product_id, COALESCE(p.name, ''), to_char(sl.sold_at, $1) AS period,
		       SUM(sl.quantity)::text, SUM(sl.total_price)::text
		FROM sale_lines sl
		LEFT JOIN products p ON p.id = sl.product_id
		WHERE ($2 = '' OR sl.product_id = $2)
		GROUP BY sl.product_id, p.name, period
		ORDER BY sl.product_id, period`

	currentStockQuery = `
		SELECT COALESCE(SUM(quantity), 0)::text
		FROM batches
		WHERE product_id = $1 AND active AND expiry_date > NOW()`

	minStockQuery = `SELECT min_stock_level::text FROM products WHERE id = $1`
)

// NewPostgresForecastStore connects to Postgres and verifies the connection
func NewPostgresForecastStore(ctx context.Context, connStr string) (*PostgresForecastStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "postgres ping failed")
	}

	return &PostgresForecastStore{pool: pool}, nil
}

// Close releases the connection pool
func (s *PostgresForecastStore) Close() error {
	s.pool.Close()
	return nil
}

// FetchSalesLineFacts returns sales grouped by product and period, formatted in SQL
func (s *PostgresForecastStore) FetchSalesLineFacts(ctx context.Context, productID string, periodType domain.PeriodType) ([]domain.SalesFact, error) {
	rows, err := s.pool.Query(ctx, salesFactsQuery, postgresPeriodFormat(periodType), productID)
	if err != nil {
		return nil, errors.Wrap(err, "sales history query failed")
	}
	defer rows.Close()

	var facts []domain.SalesFact
	for rows.Next() {
		var fact domain.SalesFact
		var quantity, revenue string
		if err := rows.Scan(&fact.ProductID, &fact.ProductName, &fact.Period, &quantity, &revenue); err != nil {
			return nil, errors.Wrap(err, "failed to scan sales fact")
		}
		if fact.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, errors.Wrapf(err, "invalid quantity for %s", fact.ProductID)
		}
		if fact.Revenue, err = decimal.NewFromString(revenue); err != nil {
			return nil, errors.Wrapf(err, "invalid revenue for %s", fact.ProductID)
		}
		facts = append(facts, fact)
	}

	return facts, errors.Wrap(rows.Err(), "sales history iteration failed")
}

// FetchCurrentStock sums the quantity of active, non-expired batches
func (s *PostgresForecastStore) FetchCurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total string
	if err := s.pool.QueryRow(ctx, currentStockQuery, productID).Scan(&total); err != nil {
		return decimal.Zero, errors.Wrapf(err, "current stock query failed for %s", productID)
	}
	return decimal.NewFromString(total)
}

// FetchProductMinStockLevel returns the configured minimum stock level
func (s *PostgresForecastStore) FetchProductMinStockLevel(ctx context.Context, productID string) (decimal.Decimal, error) {
	var level string
	err := s.pool.QueryRow(ctx, minStockQuery, productID).Scan(&level)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, &domain.ProductNotFoundError{ID: productID}
		}
		return decimal.Zero, errors.Wrapf(err, "min stock query failed for %s", productID)
	}
	return decimal.NewFromString(level)
}

// postgresPeriodFormat returns the to_char pattern producing the same labels as PeriodType.Label
func postgresPeriodFormat(periodType domain.PeriodType) string {
	switch periodType {
	case domain.PeriodWeekly:
		return `IYYY-"W"IW`
	case domain.PeriodQuarterly:
		return `YYYY-"Q"Q`
	default:
		return "YYYY-MM"
	}
}
