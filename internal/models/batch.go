package models

import (
	"time"

	"github.com/google/uuid"
)

// Batch lifecycle stages ordered by fulfillment progress.
// The order is advisory only: overrides may force any stage at any time.
type BatchStage string

const (
	BatchStageInventoryReady   BatchStage = "INVENTORY_READY"
	BatchStagePacking          BatchStage = "PACKING"
	BatchStagePacked           BatchStage = "PACKED"
	BatchStageShippingReady    BatchStage = "SHIPPING_READY"
	BatchStageShippingShipped  BatchStage = "SHIPPING_SHIPPED"
	BatchStageShippingReceived BatchStage = "SHIPPING_RECEIVED"
	BatchStageLoaded           BatchStage = "LOADED"
)

func (s BatchStage) Valid() bool {
	switch s {
	case BatchStageInventoryReady,
		BatchStagePacking,
		BatchStagePacked,
		BatchStageShippingReady,
		BatchStageShippingShipped,
		BatchStageShippingReceived,
		BatchStageLoaded:
		return true
	}
	return false
}

type Batch struct {
	ID             uuid.UUID
	Label          string
	Notes          string
	Tags           []string
	Stage          BatchStage
	StageChangedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BatchStageEvent is an append-only audit record of a stage write.
// ActorID is nil when the stage was derived by the system rather than forced by an operator.
type BatchStageEvent struct {
	ID        uuid.UUID
	BatchID   uuid.UUID
	Stage     BatchStage
	ActorID   *uuid.UUID
	Note      *string
	CreatedAt time.Time
}
