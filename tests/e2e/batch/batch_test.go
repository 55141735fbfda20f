package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/cardrip/cardrip/internal/testutil"
	"github.com/cardrip/cardrip/tests/e2e"
)

func Test_BatchLifecycle(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	type batchResponse struct {
		ID    uuid.UUID `json:"id"`
		Label string    `json:"label"`
		Stage string    `json:"stage"`
	}

	e2e.ServeInTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		auth := e2e.Login(t, s, "ops", "strong-password")

		postJSON := func(t *testing.T, url string, data any) *http.Response {
			d, err := json.Marshal(data)
			require.NoError(t, err, "failed to marshal request")
			return e2e.Do(t, http.MethodPost, url, auth, bytes.NewReader(d))
		}

		createBatch := func(t *testing.T, label string) batchResponse {
			resp := postJSON(t, srvURL+"/api/batches", map[string]any{"label": label, "tags": []string{"e2e"}})
			defer resp.Body.Close() // nolint:errcheck
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "failed to read response body")
			require.Equalf(t, http.StatusCreated, resp.StatusCode, "batch should be created. Body: %s", string(body))

			var created batchResponse
			require.NoError(t, json.Unmarshal(body, &created))
			return created
		}

		getBatch := func(t *testing.T, id uuid.UUID) batchResponse {
			resp := e2e.Do(t, http.MethodGet, fmt.Sprintf("%s/api/batches/%s", srvURL, id), auth, nil)
			defer resp.Body.Close() // nolint:errcheck
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err, "failed to read response body")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "batch should be found. Body: %s", string(body))

			var got batchResponse
			require.NoError(t, json.Unmarshal(body, &got))
			return got
		}

		t.Run("create batch", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				created := createBatch(t, "intake 2026-08")

				require.Equal(t, "intake 2026-08", created.Label)
				require.Equal(t, "INVENTORY_READY", created.Stage, "new batches start in intake")
			})
		})

		t.Run("packing flow drives the stage", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				created := createBatch(t, "intake")

				// Mint packs: everything online, batch stays in intake
				resp := postJSON(t, fmt.Sprintf("%s/api/batches/%s/packs", srvURL, created.ID), map[string]any{"count": 3})
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")
				require.Equalf(t, http.StatusCreated, resp.StatusCode, "packs should be minted. Body: %s", string(body))

				var packs []struct {
					ID uuid.UUID `json:"id"`
				}
				require.NoError(t, json.Unmarshal(body, &packs))
				require.Len(t, packs, 3)
				require.Equal(t, "INVENTORY_READY", getBatch(t, created.ID).Stage)

				// Pack one: batch moves to PACKING
				resp = postJSON(t, fmt.Sprintf("%s/api/packs/%s/status", srvURL, packs[0].ID), map[string]any{"status": "PACKED"})
				resp.Body.Close() // nolint:errcheck
				require.Equal(t, http.StatusOK, resp.StatusCode)
				require.Equal(t, "PACKING", getBatch(t, created.ID).Stage)

				// Pack the rest in bulk: batch moves to PACKED
				resp = postJSON(t, fmt.Sprintf("%s/api/batches/%s/packs/move", srvURL, created.ID), map[string]any{
					"from": "ONLINE",
					"to":   "PACKED",
				})
				defer resp.Body.Close() // nolint:errcheck
				body, err = io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")
				require.Equalf(t, http.StatusOK, resp.StatusCode, "bulk move should pass. Body: %s", string(body))
				require.JSONEq(t, `{"moved": 2}`, string(body))
				require.Equal(t, "PACKED", getBatch(t, created.ID).Stage)

				// Load everything: batch moves to LOADED
				resp = postJSON(t, fmt.Sprintf("%s/api/batches/%s/packs/move", srvURL, created.ID), map[string]any{
					"from": "PACKED",
					"to":   "LOADED",
				})
				resp.Body.Close() // nolint:errcheck
				require.Equal(t, http.StatusOK, resp.StatusCode)
				require.Equal(t, "LOADED", getBatch(t, created.ID).Stage)
			})
		})

		t.Run("manual stage override", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				created := createBatch(t, "shipping batch")

				resp := postJSON(t, fmt.Sprintf("%s/api/batches/%s/stage", srvURL, created.ID), map[string]any{
					"stage": "SHIPPING_SHIPPED",
					"note":  "carrier picked up",
				})
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code, body: %s", string(body))

				require.Equal(t, "SHIPPING_SHIPPED", getBatch(t, created.ID).Stage)

				// The override and its note land on the audit trail
				resp = e2e.Do(t, http.MethodGet, fmt.Sprintf("%s/api/batches/%s/events", srvURL, created.ID), auth, nil)
				defer resp.Body.Close() // nolint:errcheck
				body, err = io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var events []struct {
					Stage   string     `json:"stage"`
					ActorID *uuid.UUID `json:"actor_id"`
					Note    *string    `json:"note"`
				}
				require.NoError(t, json.Unmarshal(body, &events))
				require.Len(t, events, 2, "creation event plus the override")
				require.Equal(t, "SHIPPING_SHIPPED", events[0].Stage)
				require.NotNil(t, events[0].ActorID, "operator identity is recorded")
				require.NotNil(t, events[0].Note)
				require.Equal(t, "carrier picked up", *events[0].Note)
			})
		})

		t.Run("unknown stage fail", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				created := createBatch(t, "bad stage")

				resp := postJSON(t, fmt.Sprintf("%s/api/batches/%s/stage", srvURL, created.ID), map[string]any{"stage": "TELEPORTED"})
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")

				require.Equalf(t, http.StatusUnprocessableEntity, resp.StatusCode, "not expected code, body: %s", string(body))
				require.JSONEq(t, `{
					"error": "service_error",
					"message": "Unknown batch stage"
				}`, string(body), "not expected response body")
			})
		})

		t.Run("list batches filtered by stage", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				created := createBatch(t, "filter me")

				resp := postJSON(t, fmt.Sprintf("%s/api/batches/%s/stage", srvURL, created.ID), map[string]any{"stage": "PACKED", "force": true})
				resp.Body.Close() // nolint:errcheck
				require.Equal(t, http.StatusOK, resp.StatusCode)

				resp = e2e.Do(t, http.MethodGet, srvURL+"/api/batches?stage=PACKED", auth, nil)
				defer resp.Body.Close() // nolint:errcheck
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err, "failed to read response body")
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var batches []batchResponse
				require.NoError(t, json.Unmarshal(body, &batches))
				require.Len(t, batches, 1)
				require.Equal(t, created.ID, batches[0].ID)
			})
		})

		t.Run("unauthorized request", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				resp := e2e.Do(t, http.MethodGet, srvURL+"/api/batches", "", nil)
				defer resp.Body.Close() // nolint:errcheck

				require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})
		})
	})
}
