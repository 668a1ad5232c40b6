package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a ParkingSession.
// The only transition is Active -> Settled; Settled is terminal.
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionSettled SessionStatus = "settled"
)

// ParkingSession is one start-to-stop parking event for a vehicle in a zone.
//
// StoppedAt and Price are nil while the session is active. Both are set
// together, exactly once, when the session is stopped.
type ParkingSession struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	VehicleID uuid.UUID
	ZoneID    uuid.UUID
	StartedAt time.Time
	StoppedAt *time.Time
	Price     *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status derives the lifecycle state from StoppedAt.
func (s ParkingSession) Status() SessionStatus {
	if s.StoppedAt == nil {
		return SessionActive
	}
	return SessionSettled
}

// IsActive reports whether the session has not been stopped yet.
func (s ParkingSession) IsActive() bool {
	return s.StoppedAt == nil
}

// SessionFilter narrows a session listing. A nil Status lists every session.
type SessionFilter struct {
	Status *SessionStatus
}

// SessionView is the user-facing projection of a session: the session itself
// with its zone and vehicle resolved, and the price to display.
//
// For an active session Price is a live estimate computed against the read
// time and PriceIsLive is true; it is never persisted. For a settled session
// Price is the stored settled value.
type SessionView struct {
	Session     ParkingSession
	Zone        Zone
	Vehicle     Vehicle
	Price       int64
	PriceIsLive bool
}

// ExportRow is a single row in the settled-sessions export.
// It is a flat, denormalized view of one settled session. HourlyRate is the
// zone's rate at export time; Price is the value stored at settlement.
type ExportRow struct {
	SessionID     uuid.UUID
	Plate         string
	ZoneName      string
	HourlyRate    int64
	StartedAt     time.Time
	StoppedAt     time.Time
	BilledMinutes int64
	Price         int64
}
