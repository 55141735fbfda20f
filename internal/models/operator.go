package models

import (
	"time"

	"github.com/google/uuid"
)

// Operator is an internal marketplace staff account.
// Operators authenticate the ops endpoints and show up as actors on stage events.
type Operator struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Username       string
	HashedPassword string
}
