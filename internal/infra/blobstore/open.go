package blobstore

import (
	"context"
	"database/sql"
	"fmt"

	"availability_watcher/internal/infra/config"
)

// Open builds the blob configured in cfg. The returned close func releases any
// database handle and is safe to call when nothing was opened.
func Open(ctx context.Context, cfg config.StorageConfig) (Blob, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendAzure:
		b, err := NewAzureBlob(cfg.ConnectionString, cfg.Container, cfg.BlobName)
		if err != nil {
			return nil, noop, openErr(cfg, err)
		}
		return b, noop, nil

	case config.BackendFile:
		b, err := NewFileBlob(cfg.ConnectionString, cfg.Container, cfg.BlobName)
		if err != nil {
			return nil, noop, openErr(cfg, err)
		}
		return b, noop, nil

	case config.BackendPostgres, config.BackendSQLite:
		var (
			db      *sql.DB
			dialect Dialect
			err     error
		)
		if cfg.Backend == config.BackendPostgres {
			db, err = NewPostgresConnection(cfg.ConnectionString)
			dialect = DialectPostgres
		} else {
			db, err = NewSQLiteConnection(cfg.ConnectionString)
			dialect = DialectSQLite
		}
		if err != nil {
			return nil, noop, openErr(cfg, err)
		}
		b, err := NewSQLBlob(ctx, db, dialect, cfg.Container, cfg.BlobName)
		if err != nil {
			db.Close()
			return nil, noop, openErr(cfg, err)
		}
		return b, db.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func openErr(cfg config.StorageConfig, err error) error {
	return &StorageError{Op: "open", Location: cfg.Backend + "://" + cfg.Container + "/" + cfg.BlobName, Err: err}
}
