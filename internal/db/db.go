package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Database инкапсулирует пул соединений к PostgreSQL.
type Database struct {
	Pool *pgxpool.Pool
}

// NewDB создаёт новый пул соединений по connString и возвращает Database.
func NewDB(ctx context.Context, connString string) (*Database, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	return &Database{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (db *Database) Close() {
	db.Pool.Close()
}

// Migrate создаёт таблицу диагностики, если её ещё нет.
func (db *Database) Migrate(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS diagnostics (
            id SERIAL PRIMARY KEY,
            source VARCHAR(64) NOT NULL,
            message TEXT NOT NULL,
            payload TEXT,
            recorded_at TIMESTAMP WITH TIME ZONE NOT NULL
        )
    `)
	return err
}

// SaveDiagnostic добавляет запись о сбое внешнего источника. Записи только добавляются.
func (db *Database) SaveDiagnostic(ctx context.Context, source, message, payload string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `
        INSERT INTO diagnostics (source, message, payload, recorded_at)
        VALUES ($1, $2, $3, $4)
    `, source, message, payload, at)
	return err
}

// CountDiagnostics возвращает число записей для источника source.
func (db *Database) CountDiagnostics(ctx context.Context, source string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM diagnostics WHERE source = $1
    `, source).Scan(&count)
	return count, err
}
