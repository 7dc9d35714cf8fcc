// Package events defines the notification records every state-changing
// operation emits for external synchronization. Backend mirrors and UIs
// consume these; they are never authoritative for authorization or tallies.
package events

import "github.com/google/uuid"

// Kind names an event type on the wire.
type Kind string

const (
	KindElectionCreated       Kind = "ElectionCreated"
	KindElectionDeactivated   Kind = "ElectionDeactivated"
	KindElectionReactivated   Kind = "ElectionReactivated"
	KindElectionStatusChanged Kind = "ElectionStatusChanged"
	KindCandidateRegistered   Kind = "CandidateRegistered"
	KindCandidateValidated    Kind = "CandidateValidated"
	KindVoterRegistered       Kind = "VoterRegistered"
	KindVoteCasted            Kind = "VoteCasted"
	KindResultDeclared        Kind = "ResultDeclared"
)

// Event is implemented by every notification record.
type Event interface {
	Kind() Kind
}

// ElectionCreated announces a newly created election instance.
type ElectionCreated struct {
	ElectionID  int64
	Creator     uuid.UUID
	InstanceRef uuid.UUID
}

// Kind implements Event.
func (ElectionCreated) Kind() Kind { return KindElectionCreated }

// ElectionDeactivated announces the registry-level visibility flag going off.
type ElectionDeactivated struct {
	ElectionID int64
	Actor      uuid.UUID
}

// Kind implements Event.
func (ElectionDeactivated) Kind() Kind { return KindElectionDeactivated }

// ElectionReactivated announces the registry-level visibility flag going
// back on.
type ElectionReactivated struct {
	ElectionID int64
	Actor      uuid.UUID
}

// Kind implements Event.
func (ElectionReactivated) Kind() Kind { return KindElectionReactivated }

// ElectionStatusChanged announces a lifecycle transition.
type ElectionStatusChanged struct {
	ElectionID int64
	Old        string
	New        string
}

// Kind implements Event.
func (ElectionStatusChanged) Kind() Kind { return KindElectionStatusChanged }

// CandidateRegistered announces a new pending candidate.
type CandidateRegistered struct {
	ElectionID  int64
	CandidateID int64
	Account     uuid.UUID
	Name        string
}

// Kind implements Event.
func (CandidateRegistered) Kind() Kind { return KindCandidateRegistered }

// CandidateValidated announces the one-shot approve/reject decision.
type CandidateValidated struct {
	ElectionID  int64
	CandidateID int64
	Status      string
}

// Kind implements Event.
func (CandidateValidated) Kind() Kind { return KindCandidateValidated }

// VoterRegistered announces an account enrolled into an election.
type VoterRegistered struct {
	ElectionID int64
	Voter      uuid.UUID
}

// Kind implements Event.
func (VoterRegistered) Kind() Kind { return KindVoterRegistered }

// VoteCasted announces a successful vote.
type VoteCasted struct {
	ElectionID  int64
	Voter       uuid.UUID
	CandidateID int64
}

// Kind implements Event.
func (VoteCasted) Kind() Kind { return KindVoteCasted }

// ResultDeclared announces the final transition with the computed winner.
// WinnerID is zero when no votes were cast.
type ResultDeclared struct {
	ElectionID int64
	WinnerID   int64
}

// Kind implements Event.
func (ResultDeclared) Kind() Kind { return KindResultDeclared }
