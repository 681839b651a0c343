package domain

import (
	"time"

	"github.com/google/uuid"
)

// Shape identifies a remote chat persona registered by a user. Immutable
// once created.
type Shape struct {
	ID           uuid.UUID
	OwnerID      int64
	Name         string
	ReferenceURL string
	CreatedAt    time.Time
}
