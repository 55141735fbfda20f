package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/handlers/render"
	"github.com/cardrip/cardrip/internal/logger"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
	"github.com/cardrip/cardrip/internal/service/wallet"
)

type walletResponse struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Balance int64     `json:"balance"`
	// Balance in major currency units, for display
	BalanceMajor float64 `json:"balance_major"`
}

type transactionResponse struct {
	ID          uuid.UUID `json:"id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	ReferenceID *string   `json:"reference_id"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

type operationResponse struct {
	Wallet      walletResponse      `json:"wallet"`
	Transaction transactionResponse `json:"transaction"`
}

func toWalletResponse(w models.Wallet) walletResponse {
	major, _ := decimal.NewFromInt(w.Balance).Shift(-2).Float64()
	return walletResponse{
		ID:           w.ID,
		UserID:       w.UserID,
		Balance:      w.Balance,
		BalanceMajor: major,
	}
}

func toTransactionResponse(t models.WalletTransaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Type:        t.Type,
		Source:      string(t.Source),
		ReferenceID: t.ReferenceID,
		Note:        t.Note,
		CreatedAt:   t.CreatedAt,
	}
}

func toOperationResponse(op wallet.Operation) operationResponse {
	return operationResponse{
		Wallet:      toWalletResponse(op.Wallet),
		Transaction: toTransactionResponse(op.Transaction),
	}
}

func handleCreateWallet(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		UserID uuid.UUID `json:"user_id" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		created, err := walletService.CreateWallet(r.Context(), data.UserID)

		switch {
		case err == nil:
			render.JSONWithStatus(w, toWalletResponse(created), http.StatusCreated)
		case errors.Is(err, apperrors.ErrWalletAlreadyExists):
			render.ServiceError(w, "Wallet already exists", http.StatusConflict)
		default:
			l.Error("Failed to create wallet", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleGetWallet(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userID")
		if !ok {
			return
		}

		found, err := walletService.GetWallet(r.Context(), userID)

		switch {
		case err == nil:
			render.JSON(w, toWalletResponse(found))
		case errors.Is(err, apperrors.ErrWalletNotFound):
			render.ServiceError(w, "Wallet not found", http.StatusNotFound)
		default:
			l.Error("Failed to get wallet", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

type ledgerRequest struct {
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Source      string `json:"source" validate:"required"`
	Note        string `json:"note"`
	ReferenceID string `json:"reference_id"`
}

func handleCredit(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userID")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[ledgerRequest](w, r)
		if err != nil {
			return
		}

		op, err := walletService.Credit(r.Context(), userID, data.Amount, models.TransactionSource(data.Source), wallet.Opts{
			Note:        data.Note,
			ReferenceID: data.ReferenceID,
		})

		renderLedgerResult(w, l, op, err)
	})
}

func handleDebit(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userID")
		if !ok {
			return
		}

		data, err := render.BindAndValidate[ledgerRequest](w, r)
		if err != nil {
			return
		}

		op, err := walletService.Debit(r.Context(), userID, data.Amount, models.TransactionSource(data.Source), wallet.Opts{
			Note:        data.Note,
			ReferenceID: data.ReferenceID,
		})

		renderLedgerResult(w, l, op, err)
	})
}

func renderLedgerResult(w http.ResponseWriter, l logger.Logger, op wallet.Operation, err error) {
	switch {
	case err == nil:
		render.JSON(w, toOperationResponse(op))
	case errors.Is(err, apperrors.ErrAmountNotPositive):
		render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrSourceNotAllowed):
		render.ServiceError(w, "Source not permitted for this operation", http.StatusUnprocessableEntity)
	case errors.Is(err, apperrors.ErrBalanceInsufficient):
		render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
	case errors.Is(err, apperrors.ErrWalletNotFound):
		render.ServiceError(w, "Wallet not found", http.StatusNotFound)
	default:
		l.Error("Ledger operation failed", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func handleTransfer(walletService walletService, l logger.Logger) http.Handler {
	type request struct {
		FromUserID  uuid.UUID `json:"from_user_id" validate:"required"`
		ToUserID    uuid.UUID `json:"to_user_id" validate:"required"`
		Amount      int64     `json:"amount" validate:"required,gt=0"`
		Source      string    `json:"source" validate:"required"`
		ReferenceID string    `json:"reference_id"`
	}
	type response struct {
		From operationResponse `json:"from"`
		To   operationResponse `json:"to"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := walletService.Transfer(r.Context(), data.FromUserID, data.ToUserID, data.Amount, models.TransactionSource(data.Source), data.ReferenceID)

		switch {
		case err == nil:
			render.JSON(w, response{
				From: toOperationResponse(result.From),
				To:   toOperationResponse(result.To),
			})
		case errors.Is(err, apperrors.ErrSameWalletTransfer):
			render.ServiceError(w, "Transfer to the same wallet", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrAmountNotPositive):
			render.ServiceError(w, "Amount must be positive", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrSourceNotAllowed):
			render.ServiceError(w, "Source not permitted for this operation", http.StatusUnprocessableEntity)
		case errors.Is(err, apperrors.ErrBalanceInsufficient):
			render.ServiceError(w, "Insufficient balance", http.StatusPaymentRequired)
		case errors.Is(err, apperrors.ErrWalletNotFound):
			render.ServiceError(w, "Wallet not found", http.StatusNotFound)
		default:
			l.Error("Failed to transfer", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleListTransactions(walletService walletService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(w, r, "userID")
		if !ok {
			return
		}

		opts := repository.ListTransactionsOpts{Order: repository.TxOrderDesc}
		if r.URL.Query().Get("order") == "asc" {
			opts.Order = repository.TxOrderAsc
		}
		if take := r.URL.Query().Get("take"); take != "" {
			n, err := strconv.Atoi(take)
			if err != nil || n < 0 {
				render.ServiceError(w, "Invalid take parameter", http.StatusBadRequest)
				return
			}
			opts.Take = n
		}

		found, err := walletService.GetWallet(r.Context(), userID)
		if errors.Is(err, apperrors.ErrWalletNotFound) {
			render.ServiceError(w, "Wallet not found", http.StatusNotFound)
			return
		}
		if err != nil {
			l.Error("Failed to get wallet", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		transactions, err := walletService.ListTransactions(r.Context(), found.ID, opts)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		out := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			out = append(out, toTransactionResponse(t))
		}
		render.JSON(w, out)
	})
}
