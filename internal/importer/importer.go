package importer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/DaDevFox/task-systems/forecast-core/internal/repository"
)

// Files names the CSV files to import; empty paths are skipped
type Files struct {
	Products string
	Batches  string
	Sales    string
}

// Summary counts the records written by an import
type Summary struct {
	Products int `json:"products"`
	Batches  int `json:"batches"`
	Sales    int `json:"sales"`
}

// Import loads the given files and writes them into repo. Products are written first
// so batches and sales can reference them. The first failing record aborts the import.
func Import(ctx context.Context, repo repository.PharmacyRepository, files Files, logger logrus.FieldLogger) (Summary, error) {
	loader := NewLoader()
	var summary Summary

	if files.Products != "" {
		products, err := loader.LoadProducts(files.Products)
		if err != nil {
			return summary, err
		}
		for _, product := range products {
			if err := repo.AddProduct(ctx, product); err != nil {
				return summary, errors.Wrapf(err, "failed to import product %s", product.Name)
			}
			summary.Products++
		}
	}

	if files.Batches != "" {
		batches, err := loader.LoadBatches(files.Batches)
		if err != nil {
			return summary, err
		}
		for _, batch := range batches {
			if err := repo.AddBatch(ctx, batch); err != nil {
				return summary, errors.Wrapf(err, "failed to import batch %s", batch.BatchNumber)
			}
			summary.Batches++
		}
	}

	if files.Sales != "" {
		lines, err := loader.LoadSales(files.Sales)
		if err != nil {
			return summary, err
		}
		for _, line := range lines {
			if err := repo.RecordSale(ctx, line); err != nil {
				return summary, errors.Wrapf(err, "failed to import sale for product %s", line.ProductID)
			}
			summary.Sales++
		}
	}

	logger.WithFields(logrus.Fields{
		"products": summary.Products,
		"batches":  summary.Batches,
		"sales":    summary.Sales,
	}).Info("Import completed")

	return summary, nil
}
