package election

import (
	"time"

	"github.com/google/uuid"
)

// Status is the election's stage in its forward-only lifecycle.
type Status int

const (
	// StatusCreated is the initial stage, before registration opens.
	StatusCreated Status = iota
	// StatusRegistration accepts candidate registrations.
	StatusRegistration
	// StatusVoting accepts vote casts.
	StatusVoting
	// StatusEnded closes voting; results become readable.
	StatusEnded
	// StatusResultDeclared is the terminal stage.
	StatusResultDeclared
)

// String returns the stage name used in events and errors.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusRegistration:
		return "Registration"
	case StatusVoting:
		return "Voting"
	case StatusEnded:
		return "Ended"
	case StatusResultDeclared:
		return "ResultDeclared"
	default:
		return "Unknown"
	}
}

// CandidateStatus is the one-shot validation decision state.
type CandidateStatus int

const (
	// CandidatePending awaits a validation decision.
	CandidatePending CandidateStatus = iota
	// CandidateApproved is eligible to receive votes.
	CandidateApproved
	// CandidateRejected may never receive votes.
	CandidateRejected
)

// String returns the decision name used in events and errors.
func (s CandidateStatus) String() string {
	switch s {
	case CandidatePending:
		return "Pending"
	case CandidateApproved:
		return "Approved"
	case CandidateRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Candidate is one candidacy within an election. IDs are sequential and
// 1-based; an account holds at most one candidacy per election.
type Candidate struct {
	ID        int64
	Account   uuid.UUID
	Name      string
	Party     string
	Manifesto string
	ImageHash string
	Status    CandidateStatus
	VoteCount int64
}

// VoterInfo tracks one account's enrollment and vote within an election.
type VoterInfo struct {
	Registered       bool
	HasVoted         bool
	VotedCandidateID int64
	RegisteredAt     time.Time
}

// Schedule holds the three timestamps governing the lifecycle. The registry
// guarantees RegistrationDeadline < StartTime < EndTime at creation.
type Schedule struct {
	RegistrationDeadline time.Time
	StartTime            time.Time
	EndTime              time.Time
}

// Info is a point-in-time snapshot of an election. Open is true until the
// election has ended; it is independent of the registry's isActive flag.
type Info struct {
	ID                 int64
	Ref                uuid.UUID
	Name               string
	Description        string
	Schedule           Schedule
	Status             Status
	TotalVotes         int64
	ApprovedCandidates int
	Creator            uuid.UUID
	Open               bool
}

// Result is one approved candidate's final tally line.
type Result struct {
	CandidateID int64
	Name        string
	Party       string
	VoteCount   int64
}
