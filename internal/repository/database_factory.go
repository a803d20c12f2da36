package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// DatabaseType represents different database backend options
type DatabaseType string

const (
	DatabaseTypeBadger   DatabaseType = "badger"
	DatabaseTypeBolt     DatabaseType = "bolt"
	DatabaseTypePostgres DatabaseType = "postgres"
)

// NewPharmacyRepository creates a read-write repository with the specified embedded database type
//
// Database Types:
// - badger: LSM-tree database, directory based, fast for write-heavy sales ingestion
// - bolt: compact single-file B+ tree database, the default for local installs
func NewPharmacyRepository(dbPath string, dbType DatabaseType) (PharmacyRepository, error) {
	switch dbType {
	case DatabaseTypeBolt:
		if !strings.HasSuffix(dbPath, ".bolt") {
			dbPath = dbPath + ".bolt"
		}
		return NewBoltPharmacyRepository(dbPath)

	case DatabaseTypeBadger:
		return NewBadgerPharmacyRepository(dbPath)

	default:
		return nil, errors.Errorf("unsupported database type: %s", dbType)
	}
}

// NewForecastStore opens the read side used by the forecasting engine.
// Postgres is read-only here; the embedded databases open a full repository.
func NewForecastStore(ctx context.Context, dbType DatabaseType, dbPath, dbURL string) (ForecastStore, error) {
	if dbType == DatabaseTypePostgres {
		return NewPostgresForecastStore(ctx, dbURL)
	}
	return NewPharmacyRepository(dbPath, dbType)
}
