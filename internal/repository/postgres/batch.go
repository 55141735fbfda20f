package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
)

type BatchRepo struct {
	DB DBTX
}

const createBatch = `-- name: CreateBatch
INSERT INTO batches (id, label, notes, tags, stage)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, label, notes, tags, stage, stage_changed_at, created_at, updated_at
`

func (r *BatchRepo) CreateBatch(ctx context.Context, label string, notes string, tags []string) (models.Batch, error) {
	if tags == nil {
		tags = []string{}
	}

	rows, _ := r.DB.Query(ctx, createBatch, uuid.New(), label, notes, tags, models.BatchStageInventoryReady)
	b, err := pgx.CollectOneRow(rows, rowToBatch)
	if err != nil {
		return b, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

const getBatch = `-- name: GetBatch
SELECT id, label, notes, tags, stage, stage_changed_at, created_at, updated_at FROM batches
WHERE id = $1
`

func (r *BatchRepo) GetBatch(ctx context.Context, id uuid.UUID) (models.Batch, error) {
	rows, _ := r.DB.Query(ctx, getBatch, id)
	b, err := pgx.CollectOneRow(rows, rowToBatch)

	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return b, apperrors.ErrBatchNotFound
	default:
		return b, fmt.Errorf("db error: %w", err)
	}
}

const listBatches = `-- name: ListBatches
SELECT id, label, notes, tags, stage, stage_changed_at, created_at, updated_at FROM batches
WHERE $1::text IS NULL OR stage = $1
ORDER BY created_at DESC
`

func (r *BatchRepo) ListBatches(ctx context.Context, stage *models.BatchStage) ([]models.Batch, error) {
	rows, _ := r.DB.Query(ctx, listBatches, stage)
	batches, err := pgx.CollectRows(rows, rowToBatch)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return batches, nil
}

const updateStage = `-- name: UpdateStage
UPDATE batches
SET stage = $2, stage_changed_at = $3, updated_at = now()
WHERE id = $1
RETURNING id, label, notes, tags, stage, stage_changed_at, created_at, updated_at
`

func (r *BatchRepo) UpdateStage(ctx context.Context, id uuid.UUID, stage models.BatchStage, changedAt time.Time) (models.Batch, error) {
	rows, _ := r.DB.Query(ctx, updateStage, id, stage, changedAt)
	b, err := pgx.CollectOneRow(rows, rowToBatch)

	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, pgx.ErrNoRows):
		return b, apperrors.ErrBatchNotFound
	default:
		return b, fmt.Errorf("db error: %w", err)
	}
}

const createStageEvent = `-- name: CreateStageEvent
INSERT INTO batch_stage_events (id, batch_id, stage, actor_id, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, batch_id, stage, actor_id, note, created_at
`

func (r *BatchRepo) CreateStageEvent(ctx context.Context, event models.BatchStageEvent) (models.BatchStageEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	rows, _ := r.DB.Query(ctx, createStageEvent, event.ID, event.BatchID, event.Stage, event.ActorID, event.Note, event.CreatedAt)
	e, err := pgx.CollectOneRow(rows, rowToStageEvent)
	if err != nil {
		return e, fmt.Errorf("db error: %w", err)
	}

	return e, nil
}

const listStageEvents = `-- name: ListStageEvents
SELECT id, batch_id, stage, actor_id, note, created_at FROM batch_stage_events
WHERE batch_id = $1
ORDER BY created_at DESC
`

func (r *BatchRepo) ListStageEvents(ctx context.Context, batchID uuid.UUID) ([]models.BatchStageEvent, error) {
	rows, _ := r.DB.Query(ctx, listStageEvents, batchID)
	events, err := pgx.CollectRows(rows, rowToStageEvent)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return events, nil
}

func rowToBatch(row pgx.CollectableRow) (models.Batch, error) {
	var b models.Batch
	err := row.Scan(&b.ID, &b.Label, &b.Notes, &b.Tags, &b.Stage, &b.StageChangedAt, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func rowToStageEvent(row pgx.CollectableRow) (models.BatchStageEvent, error) {
	var e models.BatchStageEvent
	err := row.Scan(&e.ID, &e.BatchID, &e.Stage, &e.ActorID, &e.Note, &e.CreatedAt)
	return e, err
}
