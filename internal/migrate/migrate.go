// Package migrate applies embedded SQL migrations on startup.
package migrate

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Samantha1101854/pilltime-pro2/migrations"
)

// Dialects understood by UpDB.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// Up runs all pending migrations against a PostgreSQL DSN.
func Up(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	return UpDB(ctx, db, DialectPostgres)
}

// goose keeps the base FS and dialect in package state.
var mu sync.Mutex

// UpDB runs all pending migrations on an open database handle.
func UpDB(ctx context.Context, db *sql.DB, dialect string) error {
	mu.Lock()
	defer mu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
