package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionTypeCredit = "CREDIT"
	TransactionTypeDebit  = "DEBIT"
)

// TransactionSource is the business reason for a ledger entry.
// It gates which direction (credit or debit) the entry may take.
type TransactionSource string

const (
	SourceBuyback      TransactionSource = "BUYBACK"
	SourceSale         TransactionSource = "SALE"
	SourceRefund       TransactionSource = "REFUND"
	SourcePackPurchase TransactionSource = "PACK_PURCHASE"
	SourceAdjustment   TransactionSource = "ADJUSTMENT"
)

var creditSources = map[TransactionSource]struct{}{
	SourceBuyback:    {},
	SourceSale:       {},
	SourceRefund:     {},
	SourceAdjustment: {},
}

var debitSources = map[TransactionSource]struct{}{
	SourcePackPurchase: {},
	SourceAdjustment:   {},
}

// CreditAllowed reports whether the source represents money flowing to the user.
func (s TransactionSource) CreditAllowed() bool {
	_, ok := creditSources[s]
	return ok
}

// DebitAllowed reports whether the source represents money flowing from the user.
func (s TransactionSource) DebitAllowed() bool {
	_, ok := debitSources[s]
	return ok
}

func (s TransactionSource) Valid() bool {
	return s.CreditAllowed() || s.DebitAllowed()
}

// Wallet holds the spendable balance in minor currency units.
// Balance never goes below zero; the only legal mutators are the ledger operations.
type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletTransaction is an immutable ledger entry.
// Amount is always positive; direction is carried by Type, never by sign.
type WalletTransaction struct {
	ID          uuid.UUID
	WalletID    uuid.UUID
	Amount      int64
	Type        string
	Source      TransactionSource
	ReferenceID *string
	Note        *string
	CreatedAt   time.Time
}
