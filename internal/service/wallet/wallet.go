// Package wallet implements the marketplace ledger: atomic, source-gated
// balance mutations paired one to one with immutable transaction rows.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Operation is the result of one ledger-affecting call: the wallet with its
// new balance and the transaction row created alongside it.
type Operation struct {
	Wallet      models.Wallet
	Transaction models.WalletTransaction
}

// TransferResult carries both sides of a transfer, attributed from/to.
type TransferResult struct {
	From Operation
	To   Operation
}

// Opts are the optional attributes of a ledger entry.
// ReferenceID correlates the entry to the business event that caused it.
type Opts struct {
	Note        string
	ReferenceID string
}

func (s *Service) CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().CreateWallet(ctx, userID)
}

func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error) {
	return s.storage.Wallet().GetWalletByUserID(ctx, userID)
}

// Credit adds amount to the user's wallet.
// The source must be credit-legal or the call fails with ErrSourceNotAllowed.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int64, source models.TransactionSource, opts Opts) (Operation, error) {
	var op Operation

	if amount <= 0 {
		return op, apperrors.ErrAmountNotPositive
	}
	if !source.CreditAllowed() {
		return op, fmt.Errorf("%w: can't credit from source %q", apperrors.ErrSourceNotAllowed, source)
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		op, err = creditIn(ctx, storage, userID, amount, source, opts)
		return err
	})

	return op, err
}

// Debit subtracts amount from the user's wallet.
// Fails with ErrBalanceInsufficient when the balance is short; no partial
// debit and no negative balance is ever persisted.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int64, source models.TransactionSource, opts Opts) (Operation, error) {
	var op Operation

	if amount <= 0 {
		return op, apperrors.ErrAmountNotPositive
	}
	if !source.DebitAllowed() {
		return op, fmt.Errorf("%w: can't debit from source %q", apperrors.ErrSourceNotAllowed, source)
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		op, err = debitIn(ctx, storage, userID, amount, source, opts)
		return err
	})

	return op, err
}

// Transfer moves amount between two users as one atomic unit: a debit on the
// sender and a credit on the receiver, two ledger rows sharing source and
// reference id. The total of all balances is unchanged.
func (s *Service) Transfer(ctx context.Context, fromUserID uuid.UUID, toUserID uuid.UUID, amount int64, source models.TransactionSource, referenceID string) (TransferResult, error) {
	var result TransferResult

	if fromUserID == toUserID {
		return result, apperrors.ErrSameWalletTransfer
	}
	if amount <= 0 {
		return result, apperrors.ErrAmountNotPositive
	}
	if !source.Valid() {
		return result, fmt.Errorf("%w: unknown source %q", apperrors.ErrSourceNotAllowed, source)
	}

	opts := Opts{ReferenceID: referenceID}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error

		result.From, err = debitIn(ctx, storage, fromUserID, amount, source, opts)
		if err != nil {
			return err
		}

		result.To, err = creditIn(ctx, storage, toUserID, amount, source, opts)
		return err
	})

	return result, err
}

// ListTransactions returns ledger rows for a wallet, most recent first unless
// asked otherwise.
func (s *Service) ListTransactions(ctx context.Context, walletID uuid.UUID, opts repository.ListTransactionsOpts) ([]models.WalletTransaction, error) {
	return s.storage.Wallet().ListTransactions(ctx, walletID, opts)
}

func creditIn(ctx context.Context, storage repository.Storage, userID uuid.UUID, amount int64, source models.TransactionSource, opts Opts) (Operation, error) {
	var op Operation

	w, err := storage.Wallet().AddBalance(ctx, userID, amount)
	if err != nil {
		return op, err
	}

	tx, err := storage.Wallet().CreateTransaction(ctx, newTransaction(w.ID, amount, models.TransactionTypeCredit, source, opts))
	if err != nil {
		return op, err
	}

	return Operation{Wallet: w, Transaction: tx}, nil
}

func debitIn(ctx context.Context, storage repository.Storage, userID uuid.UUID, amount int64, source models.TransactionSource, opts Opts) (Operation, error) {
	var op Operation

	w, err := storage.Wallet().SubtractBalance(ctx, userID, amount)
	if err != nil {
		return op, err
	}

	tx, err := storage.Wallet().CreateTransaction(ctx, newTransaction(w.ID, amount, models.TransactionTypeDebit, source, opts))
	if err != nil {
		return op, err
	}

	return Operation{Wallet: w, Transaction: tx}, nil
}

func newTransaction(walletID uuid.UUID, amount int64, txType string, source models.TransactionSource, opts Opts) models.WalletTransaction {
	tx := models.WalletTransaction{
		WalletID: walletID,
		Amount:   amount,
		Type:     txType,
		Source:   source,
	}

	if note := strings.TrimSpace(opts.Note); note != "" {
		tx.Note = &note
	}
	if opts.ReferenceID != "" {
		ref := opts.ReferenceID
		tx.ReferenceID = &ref
	}

	return tx
}
