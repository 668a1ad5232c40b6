package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is a car registered by a user. Plate is stored normalized
// (trimmed, upper-case) and is unique per owner.
type Vehicle struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Plate     string
	CreatedAt time.Time
}
