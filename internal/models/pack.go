package models

import (
	"time"

	"github.com/google/uuid"
)

type PackFulfillmentStatus string

const (
	PackStatusOnline          PackFulfillmentStatus = "ONLINE"
	PackStatusReadyForPacking PackFulfillmentStatus = "READY_FOR_PACKING"
	PackStatusPacked          PackFulfillmentStatus = "PACKED"
	PackStatusLoaded          PackFulfillmentStatus = "LOADED"
)

func (s PackFulfillmentStatus) Valid() bool {
	switch s {
	case PackStatusOnline, PackStatusReadyForPacking, PackStatusPacked, PackStatusLoaded:
		return true
	}
	return false
}

// Pack is a single physical pack instance.
// LabelCode is the QR label bound to the pack, nil until binding happens.
type Pack struct {
	ID                uuid.UUID
	SourceBatchID     *uuid.UUID
	LocationID        *uuid.UUID
	FulfillmentStatus PackFulfillmentStatus
	LabelCode         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	LocationKindWarehouse = "WAREHOUSE"
	LocationKindKiosk     = "KIOSK"
)

type Location struct {
	ID        uuid.UUID
	Name      string
	Kind      string
	CreatedAt time.Time
}
