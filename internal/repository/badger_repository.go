package repository

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

const (
	productPrefix = "product:"
	batchPrefix   = "batch:" // batch:product_id:batch_id
	salePrefix    = "sale:"  // sale:product_id:timestamp:line_id
)

// BadgerPharmacyRepository implements PharmacyRepository using BadgerDB
type BadgerPharmacyRepository struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerPharmacyRepository creates a new BadgerDB-backed repository
func NewBadgerPharmacyRepository(dbPath string) (*BadgerPharmacyRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger db")
	}

	return &BadgerPharmacyRepository{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (r *BadgerPharmacyRepository) Close() error {
	return r.db.Close()
}

// AddProduct adds a new product
func (r *BadgerPharmacyRepository) AddProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, productPrefix+product.ID, product)
	})
}

// GetProduct retrieves a product by ID
func (r *BadgerPharmacyRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product *domain.Product

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := badgerProduct(txn, id)
		if err != nil {
			return err
		}
		product = found
		return nil
	})

	return product, err
}

// UpdateProduct updates an existing product
func (r *BadgerPharmacyRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := badgerProduct(txn, product.ID); err != nil {
			return err
		}
		return setJSON(txn, productPrefix+product.ID, product)
	})
}

// ListProducts retrieves products ordered by name with filtering and pagination
func (r *BadgerPharmacyRepository) ListProducts(ctx context.Context, filters ListFilters) ([]*domain.Product, int, error) {
	var products []*domain.Product

	err := r.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(productPrefix), func(val []byte) error {
			var product domain.Product
			if err := json.Unmarshal(val, &product); err != nil {
				return err
			}
			if filters.apply(&product) {
				products = append(products, &product)
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].Name < products[j].Name
	})

	return paginate(products, filters), len(products), nil
}

// AddBatch stores a received batch for an existing product
func (r *BadgerPharmacyRepository) AddBatch(ctx context.Context, batch *domain.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := badgerProduct(txn, batch.ProductID); err != nil {
			return err
		}
		return setJSON(txn, batchPrefix+batch.ProductID+":"+batch.ID, batch)
	})
}

// ListBatches returns all batches of a product
func (r *BadgerPharmacyRepository) ListBatches(ctx context.Context, productID string) ([]*domain.Batch, error) {
	var batches []*domain.Batch

	err := r.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, []byte(batchPrefix+productID+":"), func(val []byte) error {
			var batch domain.Batch
			if err := json.Unmarshal(val, &batch); err != nil {
				return err
			}
			batches = append(batches, &batch)
			return nil
		})
	})

	return batches, err
}

// RecordSale stores a sale line for an existing product
func (r *BadgerPharmacyRepository) RecordSale(ctx context.Context, line *domain.SaleLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if line.TotalPrice.IsZero() {
		line.TotalPrice = line.Quantity.Mul(line.UnitPrice)
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := badgerProduct(txn, line.ProductID); err != nil {
			return err
		}
		return setJSON(txn, salePrefix+saleKey(line), line)
	})
}

// FetchSalesLineFacts returns one labelled fact per stored sale line
func (r *BadgerPharmacyRepository) FetchSalesLineFacts(ctx context.Context, productID string, periodType domain.PeriodType) ([]domain.SalesFact, error) {
	var facts []domain.SalesFact

	prefix := salePrefix
	if productID != "" {
		prefix = salePrefix + productID + ":"
	}

	err := r.db.View(func(txn *badger.Txn) error {
		names := make(map[string]string)

		return iteratePrefix(txn, []byte(prefix), func(val []byte) error {
			var line domain.SaleLine
			if err := json.Unmarshal(val, &line); err != nil {
				return err
			}

			name, ok := names[line.ProductID]
			if !ok {
				if product, err := badgerProduct(txn, line.ProductID); err == nil {
					name = product.Name
				}
				names[line.ProductID] = name
			}

			facts = append(facts, saleFact(&line, name, periodType))
			return nil
		})
	})

	return facts, err
}

// FetchCurrentStock sums the quantity of active, non-expired batches
func (r *BadgerPharmacyRepository) FetchCurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return decimal.Zero, err
	}

	batches, err := r.ListBatches(ctx, productID)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to list batches for %s", productID)
	}

	now := r.now()
	total := decimal.Zero
	for _, batch := range batches {
		if batch.IsAvailable(now) {
			total = total.Add(batch.Quantity)
		}
	}
	return total, nil
}

// FetchProductMinStockLevel returns the configured minimum stock level
func (r *BadgerPharmacyRepository) FetchProductMinStockLevel(ctx context.Context, productID string) (decimal.Decimal, error) {
	product, err := r.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return product.MinStockLevel, nil
}

func badgerProduct(txn *badger.Txn, id string) (*domain.Product, error) {
	item, err := txn.Get([]byte(productPrefix + id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, &domain.ProductNotFoundError{ID: id}
		}
		return nil, err
	}

	product := &domain.Product{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, product)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal product")
	}
	return product, nil
}

func setJSON(txn *badger.Txn, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	return txn.Set([]byte(key), data)
}

func iteratePrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchSize = 10
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
