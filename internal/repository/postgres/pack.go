package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
)

type PackRepo struct {
	DB DBTX
}

const createPack = `-- name: CreatePack
INSERT INTO packs (id, source_batch_id, location_id, fulfillment_status)
VALUES ($1, $2, $3, $4)
RETURNING id, source_batch_id, location_id, fulfillment_status, label_code, created_at, updated_at
`

func (r *PackRepo) CreatePacks(ctx context.Context, batchID uuid.UUID, count int, status models.PackFulfillmentStatus, locationID *uuid.UUID) ([]models.Pack, error) {
	packs := make([]models.Pack, 0, count)

	for range count {
		rows, _ := r.DB.Query(ctx, createPack, uuid.New(), batchID, locationID, status)
		p, err := pgx.CollectOneRow(rows, rowToPack)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
				return nil, apperrors.ErrBatchNotFound
			}

			return nil, fmt.Errorf("db error: %w", err)
		}

		packs = append(packs, p)
	}

	return packs, nil
}

const getPack = `-- name: GetPack
SELECT id, source_batch_id, location_id, fulfillment_status, label_code, created_at, updated_at FROM packs
WHERE id = $1
`

func (r *PackRepo) GetPack(ctx context.Context, id uuid.UUID) (models.Pack, error) {
	rows, _ := r.DB.Query(ctx, getPack, id)
	return collectOnePack(rows)
}

const updatePackStatus = `-- name: UpdatePackStatus
UPDATE packs
SET fulfillment_status = $2, updated_at = now()
WHERE id = $1
RETURNING id, source_batch_id, location_id, fulfillment_status, label_code, created_at, updated_at
`

func (r *PackRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PackFulfillmentStatus) (models.Pack, error) {
	rows, _ := r.DB.Query(ctx, updatePackStatus, id, status)
	return collectOnePack(rows)
}

const updatePackStatusBulk = `-- name: UpdatePackStatusBulk
UPDATE packs
SET fulfillment_status = $3, updated_at = now()
WHERE source_batch_id = $1 AND fulfillment_status = $2
`

func (r *PackRepo) UpdateStatusBulk(ctx context.Context, batchID uuid.UUID, from models.PackFulfillmentStatus, to models.PackFulfillmentStatus) (int64, error) {
	tag, err := r.DB.Exec(ctx, updatePackStatusBulk, batchID, from, to)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

const bindLabel = `-- name: BindLabel
UPDATE packs
SET label_code = $2, updated_at = now()
WHERE id = $1 AND label_code IS NULL
RETURNING id, source_batch_id, location_id, fulfillment_status, label_code, created_at, updated_at
`

// BindLabel writes the label code only when the pack has none yet.
// The write condition is part of the statement, so two concurrent bindings
// can't both claim the same pack.
func (r *PackRepo) BindLabel(ctx context.Context, id uuid.UUID, code string) (models.Pack, error) {
	rows, _ := r.DB.Query(ctx, bindLabel, id, code)
	p, err := pgx.CollectOneRow(rows, rowToPack)

	if err == nil {
		return p, nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation:
		return p, apperrors.ErrLabelAlreadyBound
	case errors.Is(err, pgx.ErrNoRows):
		// Either the pack is missing or it is already labeled
		existing, getErr := r.GetPack(ctx, id)
		if getErr != nil {
			return p, getErr
		}
		if existing.LabelCode != nil {
			return existing, apperrors.ErrPackAlreadyLabeled
		}
		return p, fmt.Errorf("db error: label bind skipped unexpectedly")
	default:
		return p, fmt.Errorf("db error: %w", err)
	}
}

const assignLocation = `-- name: AssignLocation
UPDATE packs
SET location_id = $2, updated_at = now()
WHERE id = $1
RETURNING id, source_batch_id, location_id, fulfillment_status, label_code, created_at, updated_at
`

func (r *PackRepo) AssignLocation(ctx context.Context, id uuid.UUID, locationID uuid.UUID) (models.Pack, error) {
	rows, _ := r.DB.Query(ctx, assignLocation, id, locationID)
	p, err := pgx.CollectOneRow(rows, rowToPack)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return p, apperrors.ErrLocationNotFound
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return p, apperrors.ErrPackNotFound
		}

		return p, fmt.Errorf("db error: %w", err)
	}

	return p, nil
}

const countByStatus = `-- name: CountByStatus
SELECT fulfillment_status, count(*) FROM packs
WHERE source_batch_id = $1
GROUP BY fulfillment_status
`

func (r *PackRepo) CountByStatus(ctx context.Context, batchID uuid.UUID) (map[models.PackFulfillmentStatus]int64, error) {
	rows, _ := r.DB.Query(ctx, countByStatus, batchID)

	counts := map[models.PackFulfillmentStatus]int64{}
	_, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (struct{}, error) {
		var status models.PackFulfillmentStatus
		var count int64
		err := row.Scan(&status, &count)
		if err == nil {
			counts[status] = count
		}
		return struct{}{}, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return counts, nil
}

func collectOnePack(rows pgx.Rows) (models.Pack, error) {
	p, err := pgx.CollectOneRow(rows, rowToPack)

	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, pgx.ErrNoRows):
		return p, apperrors.ErrPackNotFound
	default:
		return p, fmt.Errorf("db error: %w", err)
	}
}

func rowToPack(row pgx.CollectableRow) (models.Pack, error) {
	var p models.Pack
	err := row.Scan(&p.ID, &p.SourceBatchID, &p.LocationID, &p.FulfillmentStatus, &p.LabelCode, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
