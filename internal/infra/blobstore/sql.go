package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect selects the DDL and placeholder style of a SQL backend.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// SQLBlob keeps objects in a "blobs" table keyed by (container, name).
type SQLBlob struct {
	db        *sql.DB
	dialect   Dialect
	container string
	name      string
}

// NewSQLBlob creates the blobs table if needed.
func NewSQLBlob(ctx context.Context, db *sql.DB, dialect Dialect, container, name string) (*SQLBlob, error) {
	b := &SQLBlob{db: db, dialect: dialect, container: container, name: name}
	if err := b.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *SQLBlob) Location() string {
	return b.dialect.String() + "://" + b.container + "/" + b.name
}

func (b *SQLBlob) ensureSchema(ctx context.Context) error {
	payloadType := "BYTEA"
	if b.dialect == DialectSQLite {
		payloadType = "BLOB"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blobs (
		container TEXT NOT NULL,
		name TEXT NOT NULL,
		payload %s NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (container, name)
	)`, payloadType)
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return storageErr("create table", b, err)
	}
	return nil
}

func (b *SQLBlob) Exists(ctx context.Context) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx, b.rebind(`SELECT 1 FROM blobs WHERE container = ? AND name = ?`), b.container, b.name).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storageErr("exists", b, err)
	}
	return true, nil
}

func (b *SQLBlob) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, b.rebind(`SELECT payload FROM blobs WHERE container = ? AND name = ?`), b.container, b.name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("read", b, err)
	}
	return payload, nil
}

func (b *SQLBlob) Write(ctx context.Context, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	query := b.rebind(`INSERT INTO blobs (container, name, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (container, name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`)
	if _, err := b.db.ExecContext(ctx, query, b.container, b.name, data, time.Now().UTC()); err != nil {
		return storageErr("write", b, err)
	}
	return nil
}

// rebind turns "?" placeholders into "$n" for postgres.
func (b *SQLBlob) rebind(query string) string {
	if b.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
