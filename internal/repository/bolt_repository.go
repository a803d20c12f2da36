package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/DaDevFox/task-systems/forecast-core/internal/domain"
)

const (
	productsBucket = "products"
	batchesBucket  = "batches"
	salesBucket    = "sales"

	// sortable, fixed width timestamp for sale keys
	saleKeyTimeFormat = "20060102T150405.000000000Z"
)

// BoltPharmacyRepository implements PharmacyRepository using BoltDB (bbolt)
type BoltPharmacyRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltPharmacyRepository creates a new BoltDB-backed repository
func NewBoltPharmacyRepository(dbPath string) (*BoltPharmacyRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create parent directory for bolt db")
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{
		Timeout:      1 * time.Second,
		FreelistType: bbolt.FreelistMapType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bolt db")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{productsBucket, batchesBucket, salesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return errors.Wrapf(err, "failed to create bucket %s", bucket)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltPharmacyRepository{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (r *BoltPharmacyRepository) Close() error {
	return r.db.Close()
}

// AddProduct adds a new product
func (r *BoltPharmacyRepository) AddProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		return putJSON(tx.Bucket([]byte(productsBucket)), product.ID, product)
	})
}

// GetProduct retrieves a product by ID
func (r *BoltPharmacyRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product *domain.Product

	err := r.db.View(func(tx *bbolt.Tx) error {
		found, err := boltProduct(tx, id)
		if err != nil {
			return err
		}
		if found == nil {
			return &domain.ProductNotFoundError{ID: id}
		}
		product = found
		return nil
	})

	return product, err
}

// UpdateProduct updates an existing product
func (r *BoltPharmacyRepository) UpdateProduct(ctx context.Context, product *domain.Product) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(productsBucket))
		if bucket.Get([]byte(product.ID)) == nil {
			return &domain.ProductNotFoundError{ID: product.ID}
		}
		return putJSON(bucket, product.ID, product)
	})
}

// ListProducts returns products ordered by name with filtering and pagination
func (r *BoltPharmacyRepository) ListProducts(ctx context.Context, filters ListFilters) ([]*domain.Product, int, error) {
	var products []*domain.Product

	err := r.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(productsBucket)).ForEach(func(key, value []byte) error {
			var product domain.Product
			if err := json.Unmarshal(value, &product); err != nil {
				return nil // Skip malformed products
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
func (r *BoltPharmacyRepository) AddBatch(ctx context.Context, batch *domain.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(productsBucket)).Get([]byte(batch.ProductID)) == nil {
			return &domain.ProductNotFoundError{ID: batch.ProductID}
		}
		return putJSON(tx.Bucket([]byte(batchesBucket)), batch.ProductID+":"+batch.ID, batch)
	})
}

// ListBatches returns all batches of a product
func (r *BoltPharmacyRepository) ListBatches(ctx context.Context, productID string) ([]*domain.Batch, error) {
	var batches []*domain.Batch

	err := r.db.View(func(tx *bbolt.Tx) error {
		prefix := []byte(productID + ":")
		cursor := tx.Bucket([]byte(batchesBucket)).Cursor()

		for key, value := cursor.Seek(prefix); key != nil && bytes.HasPrefix(key, prefix); key, value = cursor.Next() {
			var batch domain.Batch
			if err := json.Unmarshal(value, &batch); err != nil {
				continue
			}
			batches = append(batches, &batch)
		}
		return nil
	})

	return batches, err
}

// RecordSale stores a sale line for an existing product
func (r *BoltPharmacyRepository) RecordSale(ctx context.Context, line *domain.SaleLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if line.TotalPrice.IsZero() {
		line.TotalPrice = line.Quantity.Mul(line.UnitPrice)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(productsBucket)).Get([]byte(line.ProductID)) == nil {
			return &domain.ProductNotFoundError{ID: line.ProductID}
		}
		return putJSON(tx.Bucket([]byte(salesBucket)), saleKey(line), line)
	})
}

// FetchSalesLineFacts returns one labelled fact per stored sale line
func (r *BoltPharmacyRepository) FetchSalesLineFacts(ctx context.Context, productID string, periodType domain.PeriodType) ([]domain.SalesFact, error) {
	var facts []domain.SalesFact

	err := r.db.View(func(tx *bbolt.Tx) error {
		names := make(map[string]string)
		cursor := tx.Bucket([]byte(salesBucket)).Cursor()

		var prefix []byte
		key, value := cursor.First()
		if productID != "" {
			prefix = []byte(productID + ":")
			key, value = cursor.Seek(prefix)
		}

		for ; key != nil && bytes.HasPrefix(key, prefix); key, value = cursor.Next() {
			var line domain.SaleLine
			if err := json.Unmarshal(value, &line); err != nil {
				continue
			}

			name, ok := names[line.ProductID]
			if !ok {
				if product, err := boltProduct(tx, line.ProductID); err == nil && product != nil {
					name = product.Name
				}
				names[line.ProductID] = name
			}

			facts = append(facts, saleFact(&line, name, periodType))
		}
		return nil
	})

	return facts, err
}

// FetchCurrentStock sums the quantity of active, non-expired batches
func (r *BoltPharmacyRepository) FetchCurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
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
func (r *BoltPharmacyRepository) FetchProductMinStockLevel(ctx context.Context, productID string) (decimal.Decimal, error) {
	product, err := r.GetProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	return product.MinStockLevel, nil
}

func boltProduct(tx *bbolt.Tx, id string) (*domain.Product, error) {
	data := tx.Bucket([]byte(productsBucket)).Get([]byte(id))
	if data == nil {
		return nil, nil
	}

	var product domain.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal product")
	}
	return &product, nil
}

func putJSON(bucket *bbolt.Bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	return bucket.Put([]byte(key), data)
}

// saleKey orders sale lines by product, then time: productID:timestamp:id
func saleKey(line *domain.SaleLine) string {
	return line.ProductID + ":" + line.SoldAt.UTC().Format(saleKeyTimeFormat) + ":" + line.ID
}
