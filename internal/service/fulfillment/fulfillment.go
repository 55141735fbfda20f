// Package fulfillment mutates pack fulfillment state: minting, status moves,
// QR label binding and location assignment. Every status write re-derives the
// owning batch stage inside the same transaction, so a reader never observes
// a pack move without the matching stage update.
package fulfillment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cardrip/cardrip/internal/apperrors"
	"github.com/cardrip/cardrip/internal/models"
	"github.com/cardrip/cardrip/internal/repository"
	"github.com/cardrip/cardrip/internal/service/batchstage"
)

type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// MintPacks creates count packs for the batch. New packs start ONLINE.
func (s *Service) MintPacks(ctx context.Context, batchID uuid.UUID, count int, locationID *uuid.UUID, actorID *uuid.UUID) ([]models.Pack, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: pack count must be positive", apperrors.ErrAmountNotPositive)
	}

	var packs []models.Pack
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		packs, err = storage.Pack().CreatePacks(ctx, batchID, count, models.PackStatusOnline, locationID)
		if err != nil {
			return err
		}

		return batchstage.DeriveStageIn(ctx, storage, batchID, batchstage.Options{ActorID: actorID})
	})
	if err != nil {
		return nil, err
	}

	return packs, nil
}

// MovePack sets the fulfillment status of one pack and re-derives the owning
// batch stage in the same transaction.
func (s *Service) MovePack(ctx context.Context, packID uuid.UUID, status models.PackFulfillmentStatus, actorID *uuid.UUID, note string) (models.Pack, error) {
	var pack models.Pack

	if !status.Valid() {
		return pack, apperrors.ErrStatusInvalid
	}

	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		pack, err = storage.Pack().UpdateStatus(ctx, packID, status)
		if err != nil {
			return err
		}

		if pack.SourceBatchID == nil {
			return nil
		}

		return batchstage.DeriveStageIn(ctx, storage, *pack.SourceBatchID, batchstage.Options{
			ActorID: actorID,
			Note:    note,
		})
	})

	return pack, err
}

// MoveBatchPacks moves every pack of the batch currently in 'from' to 'to'.
// This is the bulk stage-move used by packing and kiosk loading.
func (s *Service) MoveBatchPacks(ctx context.Context, batchID uuid.UUID, from models.PackFulfillmentStatus, to models.PackFulfillmentStatus, actorID *uuid.UUID, note string) (int64, error) {
	if !from.Valid() || !to.Valid() {
		return 0, apperrors.ErrStatusInvalid
	}

	var moved int64
	err := s.storage.InTx(ctx, func(storage repository.Storage) error {
		var err error
		moved, err = storage.Pack().UpdateStatusBulk(ctx, batchID, from, to)
		if err != nil {
			return err
		}

		return batchstage.DeriveStageIn(ctx, storage, batchID, batchstage.Options{
			ActorID: actorID,
			Note:    note,
		})
	})

	return moved, err
}

// BindLabel binds a QR label code to a pack. Codes are globally unique and a
// pack binds at most once.
func (s *Service) BindLabel(ctx context.Context, packID uuid.UUID, code string) (models.Pack, error) {
	if code == "" {
		return models.Pack{}, apperrors.ErrLabelCodeEmpty
	}

	return s.storage.Pack().BindLabel(ctx, packID, code)
}

func (s *Service) AssignLocation(ctx context.Context, packID uuid.UUID, locationID uuid.UUID) (models.Pack, error) {
	return s.storage.Pack().AssignLocation(ctx, packID, locationID)
}

func (s *Service) GetPack(ctx context.Context, packID uuid.UUID) (models.Pack, error) {
	return s.storage.Pack().GetPack(ctx, packID)
}

func (s *Service) CreateLocation(ctx context.Context, name string, kind string) (models.Location, error) {
	if kind != models.LocationKindWarehouse && kind != models.LocationKindKiosk {
		return models.Location{}, fmt.Errorf("%w: %q", apperrors.ErrLocationKindBad, kind)
	}

	return s.storage.Location().CreateLocation(ctx, name, kind)
}

func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.storage.Location().ListLocations(ctx)
}
