package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewDB opens (and if needed creates) the bookings database and seeds the
// tables list. tables is the number of restaurant tables to seed; zero keeps
// whatever is already there.
func NewDB(path string, tables int, logger *zerolog.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db, tables); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("db_path", path).Msg("database initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB, tables int) error {
	queries := []string{
		// Столики ресторана
		`CREATE TABLE IF NOT EXISTS tables (
            id INTEGER PRIMARY KEY
        )`,
		// Бронирования: записи создаются один раз и не изменяются
		`CREATE TABLE IF NOT EXISTS bookings (
            booking_id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT,
            user_name TEXT,
            table_id INTEGER NOT NULL,
            time_slot TEXT NOT NULL,
            booking_date TEXT,
            booked_at TEXT NOT NULL,
            booking_for TEXT,
            guests INTEGER NOT NULL,
            phone TEXT
        )`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_table_date ON bookings(table_id, booking_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_booked_at ON bookings(booked_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	for i := 1; i <= tables; i++ {
		if _, err := db.Exec(`INSERT OR IGNORE INTO tables (id) VALUES (?)`, i); err != nil {
			return fmt.Errorf("seed table %d: %w", i, err)
		}
	}
	return nil
}

// GetTableIDs returns all seeded table identifiers in order.
func (db *DB) GetTableIDs(ctx context.Context) ([]int64, error) {
	rows, err := db.db.QueryContext(ctx, `SELECT id FROM tables ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan table id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

func (db *DB) Close() error {
	return db.db.Close()
}
