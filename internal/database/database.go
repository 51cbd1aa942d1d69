// FilePath: internal/database/database.go
package database

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/secador-solar/sensorhub/internal/config"
	"github.com/secador-solar/sensorhub/internal/logging"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know a bindvar for.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB is the handle every repository shares.
type DB interface {
	Close() error
	Ping(ctx context.Context) error
	GetDB() *sqlx.DB
	Driver() string
}

// Transaction represents a database transaction. Repositories run statements
// against it through the embedded sqlx.ExtContext.
type Transaction interface {
	sqlx.ExtContext
	Commit() error
	Rollback() error
}

// Repository represents common repository operations
type Repository interface {
	BeginTx(ctx context.Context) (Transaction, error)
}

// SQLDB wraps a sqlx connection pool for either supported driver.
type SQLDB struct {
	db     *sqlx.DB
	driver string
}

// Open connects to the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresDB(ctx, cfg.Postgres)
	case config.DriverSQLite:
		return NewSQLiteDB(ctx, cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(ctx context.Context, cfg config.PostgresConfig) (DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to PostgreSQL: %w", err)
	}

	logging.L.Infof("[PostgresDB] Connected to %s:%d/%s", cfg.Host, cfg.Port, cfg.DBName)
	return &SQLDB{db: db, driver: config.DriverPostgres}, nil
}

// NewSQLiteDB opens (creating if needed) the SQLite file at cfg.Path with
// foreign keys enforced.
func NewSQLiteDB(ctx context.Context, cfg config.SQLiteConfig) (DB, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", SQLiteDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("error opening SQLite database: %w", err)
	}
	// A single connection serialises writers; every statement of a
	// transaction must therefore run on the transaction itself.
	db.SetMaxOpenConns(1)

	logging.L.Infof("[SQLiteDB] Opened %s", cfg.Path)
	return &SQLDB{db: db, driver: config.DriverSQLite}, nil
}

// SQLiteDSN builds the modernc DSN for path.
func SQLiteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Set("_time_format", "sqlite")
	return path + "?" + q.Encode()
}

func (d *SQLDB) Close() error {
	return d.db.Close()
}

func (d *SQLDB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *SQLDB) GetDB() *sqlx.DB {
	return d.db
}

func (d *SQLDB) Driver() string {
	return d.driver
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db DB, fn func(tx Transaction) error) error {
	tx, err := db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if transaction is committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
