package registry

import (
	"time"

	"github.com/google/uuid"

	"github.com/electra-vote/electra/internal/election"
)

// Metadata is the registry's record of one election. Active is a
// registry-level visibility flag, independent of the instance's own status.
type Metadata struct {
	ID          int64
	Creator     uuid.UUID
	Name        string
	Description string
	Schedule    election.Schedule
	Ref         uuid.UUID
	Active      bool
	CreatedAt   time.Time
}

// CreateElectionInput carries the fields for a new election. The schedule
// must satisfy registrationDeadline < startTime < endTime with startTime
// strictly in the future.
type CreateElectionInput struct {
	Name                 string `validate:"required"`
	Description          string
	RegistrationDeadline time.Time `validate:"required"`
	StartTime            time.Time `validate:"required"`
	EndTime              time.Time `validate:"required"`
}
