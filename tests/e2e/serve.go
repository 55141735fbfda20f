package e2e

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stretchr/testify/require"

	"github.com/cardrip/cardrip/internal/handlers"
	"github.com/cardrip/cardrip/internal/logger"
	"github.com/cardrip/cardrip/internal/repository"
	"github.com/cardrip/cardrip/internal/repository/postgres"
	"github.com/cardrip/cardrip/internal/service/batchstage"
	"github.com/cardrip/cardrip/internal/service/fulfillment"
	"github.com/cardrip/cardrip/internal/service/operator"
	"github.com/cardrip/cardrip/internal/service/wallet"
	"github.com/cardrip/cardrip/internal/testutil"
)

type Services struct {
	Storage            repository.Storage
	OperatorService    *operator.Service
	BatchService       *batchstage.Service
	FulfillmentService *fulfillment.Service
	WalletService      *wallet.Service
}

// ServeInTx runs the full http server over a single db transaction.
// The transaction is passed to fn, so testutil.InTx nests safely inside.
func ServeInTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		operatorService, err := operator.NewService(operator.Config{SecretKey: "test-secret"}, nil, storage)
		require.NoError(t, err, "operator service should be created without errors")

		batchService := batchstage.NewService(storage)
		fulfillmentService := fulfillment.NewService(storage)
		walletService := wallet.NewService(storage)

		router := handlers.NewRouter(
			operatorService,
			batchService,
			fulfillmentService,
			walletService,
			logger.NewNoOpLogger(),
		)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			Storage:            storage,
			OperatorService:    operatorService,
			BatchService:       batchService,
			FulfillmentService: fulfillmentService,
			WalletService:      walletService,
		})
	})
}

// Login registers an operator if needed and returns an Authorization header value.
func Login(t *testing.T, s Services, username string, password string) string {
	t.Helper()

	token, err := s.OperatorService.Login(t.Context(), username, password)
	if err != nil {
		_, err = s.OperatorService.Register(t.Context(), username, password)
		require.NoError(t, err, "failed to register operator")

		token, err = s.OperatorService.Login(t.Context(), username, password)
		require.NoError(t, err, "failed to login operator")
	}

	return "Bearer " + token
}

// Do sends a request with the given auth header and returns the response.
func Do(t *testing.T, method string, url string, auth string, body io.Reader) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "failed to create request")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "failed to send request")

	return resp
}
