package ports

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies timestamps so services stay deterministic under test.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies collision-free identifiers for new aggregates.
type IDGenerator interface {
	NewID() string
}

// SystemClock is the wall-clock Clock used by cmd/server wiring.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator issues random UUIDv4 identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
