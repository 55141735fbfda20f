package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
)

type WalletRepo struct {
	DB DBTX
}

const createWallet = `-- name: CreateWallet
INSERT INTO wallets (id, user_id, balance)
VALUES ($1, $2, 0)
RETURNING id, user_id, balance, created_at, updated_at
`

func (r *WalletRepo) CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, createWallet, uuid.New(), userID)
	w, err := pgx.CollectOneRow(rows, rowToWallet)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return w, apperrors.ErrWalletAlreadyExists
		}

		return w, fmt.Errorf("db error: %w", err)
	}

	return w, nil
}

const getWalletByUserID = `-- name: GetWalletByUserID
SELECT id, user_id, balance, created_at, updated_at FROM wallets
WHERE user_id = $1
`

func (r *WalletRepo) GetWalletByUserID(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, getWalletByUserID, userID)
	w, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, pgx.ErrNoRows):
		return w, apperrors.ErrWalletNotFound
	default:
		return w, fmt.Errorf("db error: %w", err)
	}
}

const addBalance = `-- name: AddBalance
UPDATE wallets
SET balance = balance + $2, updated_at = now()
WHERE user_id = $1
RETURNING id, user_id, balance, created_at, updated_at
`

func (r *WalletRepo) AddBalance(ctx context.Context, userID uuid.UUID, amount int64) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, addBalance, userID, amount)
	w, err := pgx.CollectOneRow(rows, rowToWallet)

	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, pgx.ErrNoRows):
		return w, apperrors.ErrWalletNotFound
	default:
		return w, fmt.Errorf("db error: %w", err)
	}
}

const subtractBalance = `-- name: SubtractBalance
UPDATE wallets
SET balance = balance - $2, updated_at = now()
WHERE user_id = $1 AND balance >= $2
RETURNING id, user_id, balance, created_at, updated_at
`

// SubtractBalance debits with a conditional update: the balance check and the
// write are the same statement, so a concurrent debit can't sneak past the
// check against a stale read.
func (r *WalletRepo) SubtractBalance(ctx context.Context, userID uuid.UUID, amount int64) (models.Wallet, error) {
	rows, _ := r.DB.Query(ctx, subtractBalance, userID, amount)
	w, err := pgx.CollectOneRow(rows, rowToWallet)

	if err == nil {
		return w, nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		// No row updated: the wallet is missing or the balance is short
		if _, getErr := r.GetWalletByUserID(ctx, userID); getErr != nil {
			return w, getErr
		}
		return w, apperrors.ErrBalanceInsufficient
	}

	return w, fmt.Errorf("db error: %w", err)
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO wallet_transactions (id, wallet_id, amount, type, source, reference_id, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, wallet_id, amount, type, source, reference_id, note, created_at
`

func (r *WalletRepo) CreateTransaction(ctx context.Context, tx models.WalletTransaction) (models.WalletTransaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createTransaction, tx.ID, tx.WalletID, tx.Amount, tx.Type, tx.Source, tx.ReferenceID, tx.Note, tx.CreatedAt)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return created, apperrors.ErrWalletNotFound
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const listTransactionsDesc = `-- name: ListTransactionsDesc
SELECT id, wallet_id, amount, type, source, reference_id, note, created_at FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC
LIMIT $2
`

const listTransactionsAsc = `-- name: ListTransactionsAsc
SELECT id, wallet_id, amount, type, source, reference_id, note, created_at FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at ASC
LIMIT $2
`

func (r *WalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, opts repository.ListTransactionsOpts) ([]models.WalletTransaction, error) {
	query := listTransactionsDesc
	if opts.Order == repository.TxOrderAsc {
		query = listTransactionsAsc
	}

	// nil limit means LIMIT ALL
	var take *int
	if opts.Take > 0 {
		take = &opts.Take
	}

	rows, _ := r.DB.Query(ctx, query, walletID, take)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

func rowToWallet(row pgx.CollectableRow) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func rowToTransaction(row pgx.CollectableRow) (models.WalletTransaction, error) {
	var t models.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.Amount, &t.Type, &t.Source, &t.ReferenceID, &t.Note, &t.CreatedAt)
	return t, err
}
