package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nikolayk812/storefront/internal/db/migrations"
	"github.com/nikolayk812/storefront/internal/port"
)

const sqliteScheme = "sqlite://"

// Store bundles an order repository with the resources behind it.
type Store struct {
	Orders port.OrderRepository
	Close  func()
}

// Open connects to the store named by databaseURL and applies migrations.
// sqlite://<path> selects the embedded store, anything else is handed to pgx.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	if path, ok := strings.CutPrefix(databaseURL, sqliteScheme); ok {
		return openSQLiteStore(ctx, path)
	}

	return openPostgresStore(ctx, databaseURL)
}

func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}

	if err := migrations.ApplyPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations.ApplyPostgres: %w", err)
	}

	return pool, nil
}

// OpenSQLite opens the embedded store. Foreign keys are enforced for the item cascade,
// and transactions start with BEGIN IMMEDIATE on a single connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.PingContext: %w", err)
	}

	if err := migrations.ApplySQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations.ApplySQLite: %w", err)
	}

	return db, nil
}

func openPostgresStore(ctx context.Context, databaseURL string) (Store, error) {
	pool, err := OpenPostgres(ctx, databaseURL)
	if err != nil {
		return Store{}, err
	}

	orders, err := NewOrder(pool)
	if err != nil {
		pool.Close()
		return Store{}, fmt.Errorf("NewOrder: %w", err)
	}

	return Store{
		Orders: orders,
		Close:  pool.Close,
	}, nil
}

func openSQLiteStore(ctx context.Context, path string) (Store, error) {
	db, err := OpenSQLite(ctx, path)
	if err != nil {
		return Store{}, err
	}

	orders, err := NewSQLiteOrder(db)
	if err != nil {
		_ = db.Close()
		return Store{}, fmt.Errorf("NewSQLiteOrder: %w", err)
	}

	return Store{
		Orders: orders,
		Close:  func() { _ = db.Close() },
	}, nil
}
