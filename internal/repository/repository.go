package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/models"
)

// Storage aggregates all repositories over one database handle.
// InTx runs fn with a Storage bound to a single transaction: everything fn does
// commits or rolls back as one unit. Nested calls reuse savepoints.
type Storage interface {
	Operator() OperatorRepo
	Batch() BatchRepo
	Pack() PackRepo
	Location() LocationRepo
	Wallet() WalletRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

type OperatorRepo interface {
	// Create operator
	// If operator with the username exists must return apperrors.ErrOperatorAlreadyExists
	CreateOperator(ctx context.Context, username string, hashedPassword string) (models.Operator, error)

	// Get operator by id or username
	// If not found must return apperrors.ErrOperatorNotFound
	GetOperatorByID(ctx context.Context, id uuid.UUID) (models.Operator, error)
	GetOperatorByUsername(ctx context.Context, username string) (models.Operator, error)
}

type BatchRepo interface {
	CreateBatch(ctx context.Context, label string, notes string, tags []string) (models.Batch, error)

	// If batch not found must return apperrors.ErrBatchNotFound
	GetBatch(ctx context.Context, id uuid.UUID) (models.Batch, error)

	// List batches, optionally filtered by stage (nil for all), newest first
	ListBatches(ctx context.Context, stage *models.BatchStage) ([]models.Batch, error)

	// Write stage and stage_changed_at together
	// If batch not found must return apperrors.ErrBatchNotFound
	UpdateStage(ctx context.Context, id uuid.UUID, stage models.BatchStage, changedAt time.Time) (models.Batch, error)

	// Append one immutable stage event row
	CreateStageEvent(ctx context.Context, event models.BatchStageEvent) (models.BatchStageEvent, error)

	// Stage events for the batch, newest first
	ListStageEvents(ctx context.Context, batchID uuid.UUID) ([]models.BatchStageEvent, error)
}

type PackRepo interface {
	// Create count packs for the batch with the given status
	CreatePacks(ctx context.Context, batchID uuid.UUID, count int, status models.PackFulfillmentStatus, locationID *uuid.UUID) ([]models.Pack, error)

	// If pack not found must return apperrors.ErrPackNotFound
	GetPack(ctx context.Context, id uuid.UUID) (models.Pack, error)

	// Set fulfillment status on one pack
	// If pack not found must return apperrors.ErrPackNotFound
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PackFulfillmentStatus) (models.Pack, error)

	// Move every pack of the batch currently in 'from' status to 'to' status.
	// Returns the number of packs moved.
	UpdateStatusBulk(ctx context.Context, batchID uuid.UUID, from models.PackFulfillmentStatus, to models.PackFulfillmentStatus) (int64, error)

	// Bind a label code to the pack
	// If the code is taken must return apperrors.ErrLabelAlreadyBound
	// If the pack already has a code must return apperrors.ErrPackAlreadyLabeled
	BindLabel(ctx context.Context, id uuid.UUID, code string) (models.Pack, error)

	// If pack or location not found must return the matching not found error
	AssignLocation(ctx context.Context, id uuid.UUID, locationID uuid.UUID) (models.Pack, error)

	// Aggregate counts of the batch packs grouped by fulfillment status.
	// Statuses with no packs are absent from the map.
	CountByStatus(ctx context.Context, batchID uuid.UUID) (map[models.PackFulfillmentStatus]int64, error)
}

type LocationRepo interface {
	CreateLocation(ctx context.Context, name string, kind string) (models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
}

// Order of transactions in list results
type TxOrder string

const (
	TxOrderAsc  TxOrder = "asc"
	TxOrderDesc TxOrder = "desc"
)

type ListTransactionsOpts struct {
	Order TxOrder // defaults to desc (most recent first)
	Take  int     // 0 means no cap
}

type WalletRepo interface {
	// Create wallet with zero balance
	// If the user already has a wallet must return apperrors.ErrWalletAlreadyExists
	CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// If wallet not found must return apperrors.ErrWalletNotFound
	GetWalletByUserID(ctx context.Context, userID uuid.UUID) (models.Wallet, error)

	// Add amount to the wallet balance. Amount must be positive.
	// If wallet not found must return apperrors.ErrWalletNotFound
	AddBalance(ctx context.Context, userID uuid.UUID, amount int64) (models.Wallet, error)

	// Subtract amount from the wallet balance as one conditional update:
	// the write happens only when balance >= amount, so two concurrent debits
	// can never both pass the check against a stale read.
	// If wallet not found must return apperrors.ErrWalletNotFound
	// If balance < amount must return apperrors.ErrBalanceInsufficient
	SubtractBalance(ctx context.Context, userID uuid.UUID, amount int64) (models.Wallet, error)

	// Append one immutable ledger row
	CreateTransaction(ctx context.Context, tx models.WalletTransaction) (models.WalletTransaction, error)

	ListTransactions(ctx context.Context, walletID uuid.UUID, opts ListTransactionsOpts) ([]models.WalletTransaction, error)
}
