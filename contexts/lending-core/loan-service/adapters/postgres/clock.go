package postgresadapter

import (
	"time"

	"github.com/google/uuid"
)

// SystemClock is the production Clock port.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator is the production IDGenerator port.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }
