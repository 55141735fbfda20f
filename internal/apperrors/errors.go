package apperrors

import (
	"errors"
)

var (
	ErrOperatorAlreadyExists = errors.New("operator already exists")
	ErrOperatorNotFound      = errors.New("operator not found")

	ErrBatchNotFound    = errors.New("batch not found")
	ErrPackNotFound     = errors.New("pack not found")
	ErrLocationNotFound = errors.New("location not found")

	ErrLabelAlreadyBound  = errors.New("label code already bound to another pack")
	ErrPackAlreadyLabeled = errors.New("pack already has a label bound")

	ErrWalletAlreadyExists = errors.New("user wallet already exists")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrBalanceInsufficient = errors.New("insufficient balance")

	// Validation errors: malformed input, surfaced to the caller, never retried
	ErrAmountNotPositive  = errors.New("amount must be positive")
	ErrSourceNotAllowed   = errors.New("source not permitted for this operation")
	ErrSameWalletTransfer = errors.New("transfer to the same wallet")
	ErrStageInvalid       = errors.New("unknown batch stage")
	ErrStatusInvalid      = errors.New("unknown pack fulfillment status")
	ErrLabelCodeEmpty     = errors.New("label code must not be empty")
	ErrLocationKindBad    = errors.New("unknown location kind")
)
