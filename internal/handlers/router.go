package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/handlers/middleware"
	"github.com/cardrip/cardrip/internal/logger"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
	"github.com/cardrip/cardrip/internal/service/batchstage"
	"github.com/cardrip/cardrip/internal/service/wallet"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	operatorService operatorService,
	batchService batchService,
	fulfillmentService fulfillmentService,
	walletService walletService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(operatorService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(operatorService, logger))
	api.Handle("POST /auth/login", handleLogin(operatorService, logger))

	api.Handle("POST /batches", withAuth(handleCreateBatch(batchService, logger)))
	api.Handle("GET /batches", withAuth(handleListBatches(batchService, logger)))
	api.Handle("GET /batches/{id}", withAuth(handleGetBatch(batchService, logger)))
	api.Handle("POST /batches/{id}/stage", withAuth(handleSetStage(batchService, logger)))
	api.Handle("GET /batches/{id}/events", withAuth(handleListStageEvents(batchService, logger)))
	api.Handle("POST /batches/{id}/packs", withAuth(handleMintPacks(fulfillmentService, logger)))
	api.Handle("POST /batches/{id}/packs/move", withAuth(handleMoveBatchPacks(fulfillmentService, logger)))

	api.Handle("GET /packs/{id}", withAuth(handleGetPack(fulfillmentService, logger)))
	api.Handle("POST /packs/{id}/status", withAuth(handleMovePack(fulfillmentService, logger)))
	api.Handle("POST /packs/{id}/label", withAuth(handleBindLabel(fulfillmentService, logger)))
	api.Handle("POST /packs/{id}/location", withAuth(handleAssignLocation(fulfillmentService, logger)))

	api.Handle("POST /locations", withAuth(handleCreateLocation(fulfillmentService, logger)))
	api.Handle("GET /locations", withAuth(handleListLocations(fulfillmentService, logger)))

	api.Handle("POST /wallets", withAuth(handleCreateWallet(walletService, logger)))
	api.Handle("GET /wallets/{userID}", withAuth(handleGetWallet(walletService, logger)))
	api.Handle("POST /wallets/{userID}/credit", withAuth(handleCredit(walletService, logger)))
	api.Handle("POST /wallets/{userID}/debit", withAuth(handleDebit(walletService, logger)))
	api.Handle("POST /wallets/transfer", withAuth(handleTransfer(walletService, logger)))
	api.Handle("GET /wallets/{userID}/transactions", withAuth(handleListTransactions(walletService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.AccessLog(logger),
	)

	return handler
}

type operatorService interface {
	// Register operator with username and password
	// Has to return apperrors.ErrOperatorAlreadyExists if operator already exists
	Register(ctx context.Context, username string, password string) (models.Operator, error)

	// Login operator and return a signed access token
	// Has to return apperrors.ErrOperatorNotFound on bad credentials
	Login(ctx context.Context, username string, password string) (string, error)

	// Resolve the operator from the request
	Auth(ctx context.Context, r *http.Request) (models.Operator, error)
}

type batchService interface {
	CreateBatch(ctx context.Context, label string, notes string, tags []string, actorID *uuid.UUID) (models.Batch, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (models.Batch, error)
	ListBatches(ctx context.Context, stage *models.BatchStage) ([]models.Batch, error)
	ListStageEvents(ctx context.Context, batchID uuid.UUID) ([]models.BatchStageEvent, error)
	SetStage(ctx context.Context, batchID uuid.UUID, stage models.BatchStage, opts batchstage.Options) error
}

type fulfillmentService interface {
	MintPacks(ctx context.Context, batchID uuid.UUID, count int, locationID *uuid.UUID, actorID *uuid.UUID) ([]models.Pack, error)
	GetPack(ctx context.Context, packID uuid.UUID) (models.Pack, error)
	MovePack(ctx context.Context, packID uuid.UUID, status models.PackFulfillmentStatus, actorID *uuid.UUID, note string) (models.Pack, error)
	MoveBatchPacks(ctx context.Context, batchID uuid.UUID, from models.PackFulfillmentStatus, to models.PackFulfillmentStatus, actorID *uuid.UUID, note string) (int64, error)
	BindLabel(ctx context.Context, packID uuid.UUID, code string) (models.Pack, error)
	AssignLocation(ctx context.Context, packID uuid.UUID, locationID uuid.UUID) (models.Pack, error)
	CreateLocation(ctx context.Context, name string, kind string) (models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
}

type walletService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID) (models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64, source models.TransactionSource, opts wallet.Opts) (wallet.Operation, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64, source models.TransactionSource, opts wallet.Opts) (wallet.Operation, error)
	Transfer(ctx context.Context, fromUserID uuid.UUID, toUserID uuid.UUID, amount int64, source models.TransactionSource, referenceID string) (wallet.TransferResult, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, opts repository.ListTransactionsOpts) ([]models.WalletTransaction, error)
}
