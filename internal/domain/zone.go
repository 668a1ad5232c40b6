// Package domain contains the core data types for the parking meter service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxHourlyRate is the largest hourly rate a zone may carry, in the smallest
// currency unit (one million units per hour at two decimal places).
const MaxHourlyRate int64 = 100_000_000

// Zone is a named parking area with a fixed hourly price.
// HourlyRate is expressed in the smallest currency unit per hour.
type Zone struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	HourlyRate int64     `json:"hourly_rate" yaml:"hourly_rate"`
	CreatedAt  time.Time `json:"created_at" yaml:"-"`
}
