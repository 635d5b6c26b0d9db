// Package postgres реализует storage.Store поверх PostgreSQL.
// Ограничения уникальности обеспечивает схема базы данных, проверки
// состояния выполняются внутри транзакций.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// uniqueViolation — код ошибки PostgreSQL для нарушения уникальности
const uniqueViolation = "23505"

// Store реализует storage.Store поверх пула соединений pgx
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// New создает новое хранилище
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// mapError переводит ошибки pgx в ошибки хранилища
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	return err
}
