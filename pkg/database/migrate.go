package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// migration is one additive schema step. Steps never drop tables or columns so that
// databases created by older releases (without schema_migrations) upgrade in place.
type migration struct {
	version int
	name    string
	apply   func(ctx context.Context, tx *sql.Tx, dialect Dialect) error
}

var migrations = []migration{
	{1, "create users", createTable(
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT ''
		)`,
	)},
	{2, "create invoices", createTable(
		`CREATE TABLE IF NOT EXISTS invoices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vendor TEXT NOT NULL,
			date TEXT NOT NULL,
			amount REAL NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS invoices (
			id BIGSERIAL PRIMARY KEY,
			vendor TEXT NOT NULL,
			date TEXT NOT NULL,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			user_id BIGINT NOT NULL REFERENCES users(id)
		)`,
	)},
	{3, "add invoices.invoice_number", addColumn("invoices", "invoice_number", "TEXT")},
	{4, "add invoices.category", addColumn("invoices", "category", "TEXT")},
	{5, "index invoices.user_id", exec("CREATE INDEX IF NOT EXISTS idx_invoices_user_id ON invoices (user_id)")},
}

func createTable(sqliteDDL, postgresDDL string) func(context.Context, *sql.Tx, Dialect) error {
	return func(ctx context.Context, tx *sql.Tx, dialect Dialect) error {
		ddl := sqliteDDL
		if dialect == DialectPostgres {
			ddl = postgresDDL
		}
		_, err := tx.ExecContext(ctx, ddl)
		return err
	}
}

func addColumn(table, column, columnType string) func(context.Context, *sql.Tx, Dialect) error {
	return func(ctx context.Context, tx *sql.Tx, dialect Dialect) error {
		existing, err := columns(ctx, tx, dialect, table)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if c.Name == column {
				return nil
			}
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnType))
		return err
	}
}

func exec(stmt string) func(context.Context, *sql.Tx, Dialect) error {
	return func(ctx context.Context, tx *sql.Tx, _ Dialect) error {
		_, err := tx.ExecContext(ctx, stmt)
		return err
	}
}

// Migrate applies every pending migration, each in its own transaction.
func Migrate(ctx context.Context, db *DB, logger *zap.Logger) error {
	if _, err := db.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		logger.Info("Applied migration", zap.Int("version", m.version), zap.String("name", m.name))
	}

	return nil
}

func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.apply(ctx, tx, db.Dialect); err != nil {
		return err
	}

	query, args, err := db.Builder().
		Insert("schema_migrations").
		Columns("version", "name", "applied_at").
		Values(m.version, m.name, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return tx.Commit()
}

func appliedVersions(ctx context.Context, db *DB) (map[int]bool, error) {
	query, args, err := db.Builder().Select("version").From("schema_migrations").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}

	return applied, rows.Err()
}

// SchemaVersion reports the highest applied migration, 0 for an unmigrated database.
func SchemaVersion(ctx context.Context, db *DB) (int, error) {
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, err
	}
	version := 0
	for v := range applied {
		if v > version {
			version = v
		}
	}
	return version, nil
}
