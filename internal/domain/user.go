package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the persisted per-user configuration: the Shapes API key and
// the currently selected shape. Conversation logs are never persisted.
type User struct {
	ID              int64
	FirstName       string
	Username        string
	APIKey          string
	SelectedShapeID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u *User) HasAPIKey() bool {
	return u.APIKey != ""
}
