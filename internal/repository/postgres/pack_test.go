package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
	"github.com/cardrip/cardrip/internal/testutil"
)

func TestPackRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.InTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("CreatePacks", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					packs, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 3, models.PackStatusOnline, nil)

					require.NoError(t, err)
					require.Len(t, packs, 3)
					for _, p := range packs {
						require.Equal(t, models.PackStatusOnline, p.FulfillmentStatus)
						require.NotNil(t, p.SourceBatchID)
						require.Equal(t, batch.ID, *p.SourceBatchID)
						require.Nil(t, p.LocationID)
						require.Nil(t, p.LabelCode)
					}
				})
			})

			t.Run("create for nonexistent batch", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().CreatePacks(t.Context(), uuid.New(), 1, models.PackStatusOnline, nil)

					require.ErrorIs(t, err, apperrors.ErrBatchNotFound, "should return well known error")
				})
			})
		})
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)
			packs, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 1, models.PackStatusOnline, nil)
			require.NoError(t, err)

			t.Run("update ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					p, err := storage.Pack().UpdateStatus(t.Context(), packs[0].ID, models.PackStatusPacked)

					require.NoError(t, err)
					require.Equal(t, models.PackStatusPacked, p.FulfillmentStatus)
				})
			})

			t.Run("update nonexistent pack", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().UpdateStatus(t.Context(), uuid.New(), models.PackStatusPacked)

					require.ErrorIs(t, err, apperrors.ErrPackNotFound)
				})
			})
		})
	})

	t.Run("UpdateStatusBulk", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)
			packs, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 3, models.PackStatusOnline, nil)
			require.NoError(t, err)
			_, err = storage.Pack().UpdateStatus(t.Context(), packs[0].ID, models.PackStatusPacked)
			require.NoError(t, err)

			t.Run("moves only matching packs", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					moved, err := storage.Pack().UpdateStatusBulk(t.Context(), batch.ID, models.PackStatusOnline, models.PackStatusPacked)

					require.NoError(t, err)
					require.Equal(t, int64(2), moved, "the already packed one is not counted")

					counts, err := storage.Pack().CountByStatus(t.Context(), batch.ID)
					require.NoError(t, err)
					require.Equal(t, int64(3), counts[models.PackStatusPacked])
				})
			})

			t.Run("no matching packs", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					moved, err := storage.Pack().UpdateStatusBulk(t.Context(), batch.ID, models.PackStatusLoaded, models.PackStatusPacked)

					require.NoError(t, err)
					require.Zero(t, moved)
				})
			})

			t.Run("other batches untouched", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					other, err := storage.Batch().CreateBatch(t.Context(), "other", "", nil)
					require.NoError(t, err)
					_, err = storage.Pack().CreatePacks(t.Context(), other.ID, 2, models.PackStatusOnline, nil)
					require.NoError(t, err)

					_, err = storage.Pack().UpdateStatusBulk(t.Context(), batch.ID, models.PackStatusOnline, models.PackStatusLoaded)
					require.NoError(t, err)

					counts, err := storage.Pack().CountByStatus(t.Context(), other.ID)
					require.NoError(t, err)
					require.Equal(t, int64(2), counts[models.PackStatusOnline])
				})
			})
		})
	})

	t.Run("BindLabel", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)
			packs, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 2, models.PackStatusOnline, nil)
			require.NoError(t, err)

			t.Run("bind ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					p, err := storage.Pack().BindLabel(t.Context(), packs[0].ID, "QR-0001")

					require.NoError(t, err)
					require.NotNil(t, p.LabelCode)
					require.Equal(t, "QR-0001", *p.LabelCode)
				})
			})

			t.Run("code already taken", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().BindLabel(t.Context(), packs[0].ID, "QR-0001")
					require.NoError(t, err)

					_, err = storage.Pack().BindLabel(t.Context(), packs[1].ID, "QR-0001")

					require.ErrorIs(t, err, apperrors.ErrLabelAlreadyBound)
				})
			})

			t.Run("pack already labeled", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().BindLabel(t.Context(), packs[0].ID, "QR-0001")
					require.NoError(t, err)

					_, err = storage.Pack().BindLabel(t.Context(), packs[0].ID, "QR-0002")

					require.ErrorIs(t, err, apperrors.ErrPackAlreadyLabeled)
				})
			})

			t.Run("nonexistent pack", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().BindLabel(t.Context(), uuid.New(), "QR-0001")

					require.ErrorIs(t, err, apperrors.ErrPackNotFound)
				})
			})
		})
	})

	t.Run("AssignLocation", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)
			packs, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 1, models.PackStatusOnline, nil)
			require.NoError(t, err)
			location, err := storage.Location().CreateLocation(t.Context(), "main warehouse", models.LocationKindWarehouse)
			require.NoError(t, err)

			t.Run("assign ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					p, err := storage.Pack().AssignLocation(t.Context(), packs[0].ID, location.ID)

					require.NoError(t, err)
					require.NotNil(t, p.LocationID)
					require.Equal(t, location.ID, *p.LocationID)
				})
			})

			t.Run("nonexistent location", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().AssignLocation(t.Context(), packs[0].ID, uuid.New())

					require.ErrorIs(t, err, apperrors.ErrLocationNotFound)
				})
			})

			t.Run("nonexistent pack", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().AssignLocation(t.Context(), uuid.New(), location.ID)

					require.ErrorIs(t, err, apperrors.ErrPackNotFound)
				})
			})
		})
	})

	t.Run("CountByStatus", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			batch, err := storage.Batch().CreateBatch(t.Context(), "intake", "", nil)
			require.NoError(t, err)

			t.Run("empty batch", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					counts, err := storage.Pack().CountByStatus(t.Context(), batch.ID)

					require.NoError(t, err)
					require.Empty(t, counts, "statuses with no packs are absent, not zero")
				})
			})

			t.Run("mixed statuses", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Pack().CreatePacks(t.Context(), batch.ID, 3, models.PackStatusOnline, nil)
					require.NoError(t, err)
					_, err = storage.Pack().CreatePacks(t.Context(), batch.ID, 2, models.PackStatusPacked, nil)
					require.NoError(t, err)

					counts, err := storage.Pack().CountByStatus(t.Context(), batch.ID)

					require.NoError(t, err)
					require.Len(t, counts, 2)
					require.Equal(t, int64(3), counts[models.PackStatusOnline])
					require.Equal(t, int64(2), counts[models.PackStatusPacked])
				})
			})
		})
	})
}
