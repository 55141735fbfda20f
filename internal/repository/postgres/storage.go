package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardrip/cardrip/internal/repository"
)

// DBTX is the subset of pgx methods the repositories need.
// Satisfied by *pgxpool.Pool and pgx.Tx, so the same repo code runs
// pooled or inside a transaction.
type DBTX interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) Operator() repository.OperatorRepo {
	return &OperatorRepo{DB: s.db}
}

func (s *Storage) Batch() repository.BatchRepo {
	return &BatchRepo{DB: s.db}
}

func (s *Storage) Pack() repository.PackRepo {
	return &PackRepo{DB: s.db}
}

func (s *Storage) Location() repository.LocationRepo {
	return &LocationRepo{DB: s.db}
}

func (s *Storage) Wallet() repository.WalletRepo {
	return &WalletRepo{DB: s.db}
}

func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
