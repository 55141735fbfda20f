// Package batchstage keeps Batch.stage consistent with the physical state of
// the batch packs and records an audit trail of every stage write.
package batchstage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

// Options for a stage write.
// ActorID is nil for system-derived writes. Force writes even when the stage
// did not move (used by explicit admin overrides).
type Options struct {
	ActorID *uuid.UUID
	Note    string
	Force   bool
}

// CreateBatch creates a batch in INVENTORY_READY with one synthetic stage
// event attributed to the creating operator.
func (s *Service) CreateBatch(ctx context.Context, label string, notes string, tags []string, actorID *uuid.UUID) (models.Batch, error) {
	var batch models.Batch

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		batch, err = storage.Batch().CreateBatch(ctx, label, notes, tags)
		if err != nil {
			return fmt.Errorf("can't create batch. Err: %w", err)
		}

		_, err = storage.Batch().CreateStageEvent(ctx, models.BatchStageEvent{
			BatchID: batch.ID,
			Stage:   batch.Stage,
			ActorID: actorID,
		})
		if err != nil {
			return fmt.Errorf("can't create stage event. Err: %w", err)
		}

		return nil
	})

	return batch, err
}

func (s *Service) GetBatch(ctx context.Context, batchID uuid.UUID) (models.Batch, error) {
	return s.storage.Batch().GetBatch(ctx, batchID)
}

func (s *Service) ListBatches(ctx context.Context, stage *models.BatchStage) ([]models.Batch, error) {
	if stage != nil && !stage.Valid() {
		return nil, apperrors.ErrStageInvalid
	}

	return s.storage.Batch().ListBatches(ctx, stage)
}

// ListStageEvents returns the stage audit trail, newest first.
func (s *Service) ListStageEvents(ctx context.Context, batchID uuid.UUID) ([]models.BatchStageEvent, error) {
	return s.storage.Batch().ListStageEvents(ctx, batchID)
}

// SetStage writes the stage in its own transaction.
func (s *Service) SetStage(ctx context.Context, batchID uuid.UUID, stage models.BatchStage, opts Options) error {
	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		return SetStageIn(ctx, storage, batchID, stage, opts)
	})
}

// DeriveStage recomputes the stage from pack counts in its own transaction.
func (s *Service) DeriveStage(ctx context.Context, batchID uuid.UUID, opts Options) error {
	return s.storage.InTx(ctx, func(storage repository.Storage) error {
		return DeriveStageIn(ctx, storage, batchID, opts)
	})
}

// SetStageIn writes the stage using the caller's transaction-scoped storage.
//
// The write happens only when forced, when the stage actually changes, or when
// a non-empty note was supplied; redundant calls are silently skipped so polling
// re-confirmations don't spam the event log. A missing batch is also a silent
// no-op: stage writes race with batch deletion and losing that race is fine.
func SetStageIn(ctx context.Context, storage repository.Storage, batchID uuid.UUID, stage models.BatchStage, opts Options) error {
	if !stage.Valid() {
		return apperrors.ErrStageInvalid
	}

	batch, err := storage.Batch().GetBatch(ctx, batchID)
	if errors.Is(err, apperrors.ErrBatchNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("can't load batch. Err: %w", err)
	}

	note := strings.TrimSpace(opts.Note)
	if !opts.Force && batch.Stage == stage && note == "" {
		return nil
	}

	now := time.Now()
	if _, err := storage.Batch().UpdateStage(ctx, batchID, stage, now); err != nil {
		return fmt.Errorf("can't update batch stage. Err: %w", err)
	}

	event := models.BatchStageEvent{
		BatchID: batchID,
		Stage:   stage,
		ActorID: opts.ActorID,
	}
	if note != "" {
		event.Note = &note
	}

	if _, err := storage.Batch().CreateStageEvent(ctx, event); err != nil {
		return fmt.Errorf("can't create stage event. Err: %w", err)
	}

	return nil
}

// DeriveStageIn recomputes the batch stage from the aggregate pack counts and
// writes it through SetStageIn with force disabled, so an unchanged derivation
// leaves no trace. Callers mutating pack statuses must invoke this inside the
// same transaction as the status write.
func DeriveStageIn(ctx context.Context, storage repository.Storage, batchID uuid.UUID, opts Options) error {
	counts, err := storage.Pack().CountByStatus(ctx, batchID)
	if err != nil {
		return fmt.Errorf("can't count batch packs. Err: %w", err)
	}

	opts.Force = false
	return SetStageIn(ctx, storage, batchID, Derive(counts), opts)
}

// Derive maps aggregate pack counts to a batch stage.
//
// A batch reports a downstream stage only when every pack reached it; any
// mix of statuses reports the in-progress PACKING stage instead, so shipping
// and ops staff never see a premature advancement signal. First match wins.
func Derive(counts map[models.PackFulfillmentStatus]int64) models.BatchStage {
	var total int64
	for status, count := range counts {
		switch status {
		case models.PackStatusOnline,
			models.PackStatusReadyForPacking,
			models.PackStatusPacked,
			models.PackStatusLoaded:
			total += count
		}
	}

	if total == 0 {
		return models.BatchStageInventoryReady
	}

	packed := counts[models.PackStatusPacked]
	loaded := counts[models.PackStatusLoaded]

	switch {
	case loaded == total:
		return models.BatchStageLoaded
	case packed == total && loaded == 0:
		return models.BatchStagePacked
	case packed > 0 || loaded > 0:
		return models.BatchStagePacking
	default:
		// Everything still ONLINE or READY_FOR_PACKING
		return models.BatchStageInventoryReady
	}
}
