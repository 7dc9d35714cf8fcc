// Package election implements the per-election state machine: phases,
// candidates, voters, and tallies. Every public operation is an atomic unit
// under the instance lock; the current time is observed exactly once per
// call and every timing guard in that call uses the same observed value.
package election

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/electra-vote/electra/internal/access"
	"github.com/electra-vote/electra/internal/clock"
	"github.com/electra-vote/electra/internal/events"
	"github.com/electra-vote/electra/internal/shared"
)

// MaxVoterBatch is the per-call limit for batch voter registration.
const MaxVoterBatch = 100

var validate = validator.New()

// Params carries everything an instance needs at construction.
type Params struct {
	ID          int64
	Ref         uuid.UUID
	Name        string
	Description string
	Schedule    Schedule
	Manager     uuid.UUID
	Access      *access.Registry
	Clock       clock.Clock
	Sink        events.Sink
	Logger      *slog.Logger
}

// Election is one election instance. Construct via New; the registry is the
// only expected caller.
type Election struct {
	mu sync.Mutex

	id          int64
	ref         uuid.UUID
	name        string
	description string
	schedule    Schedule
	manager     uuid.UUID

	status        Status
	totalVotes    int64
	approvedCount int

	nextCandidateID    int64
	candidates         map[int64]*Candidate
	candidateByAccount map[uuid.UUID]int64
	voters             map[uuid.UUID]*VoterInfo

	access *access.Registry
	clock  clock.Clock
	sink   events.Sink
	logger *slog.Logger
}

// New builds an instance in status Created.
func New(p Params) (*Election, error) {
	if p.Access == nil {
		return nil, fmt.Errorf("%w: access registry required", shared.ErrValidation)
	}
	if p.Clock == nil {
		return nil, fmt.Errorf("%w: clock required", shared.ErrValidation)
	}
	if p.Manager == uuid.Nil {
		return nil, fmt.Errorf("%w: manager account required", shared.ErrValidation)
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Election{
		id:                 p.ID,
		ref:                p.Ref,
		name:               p.Name,
		description:        p.Description,
		schedule:           p.Schedule,
		manager:            p.Manager,
		status:             StatusCreated,
		candidates:         make(map[int64]*Candidate),
		candidateByAccount: make(map[uuid.UUID]int64),
		voters:             make(map[uuid.UUID]*VoterInfo),
		access:             p.Access,
		clock:              p.Clock,
		sink:               p.Sink,
		logger:             logger,
	}, nil
}

// ID returns the registry-assigned election id.
func (e *Election) ID() int64 { return e.id }

// Ref returns the instance reference assigned at creation.
func (e *Election) Ref() uuid.UUID { return e.ref }

// Manager returns the account driving this election's lifecycle.
func (e *Election) Manager() uuid.UUID { return e.manager }

// Status returns the current lifecycle stage.
func (e *Election) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// StartRegistration moves Created to Registration. Only the manager may
// call it, and only while the registration deadline has not passed.
func (e *Election) StartRegistration(ctx context.Context, caller uuid.UUID) error {
	return e.advance(ctx, caller, StatusCreated, StatusRegistration, func(now time.Time) error {
		if now.After(e.schedule.RegistrationDeadline) {
			return fmt.Errorf("%w: registration deadline has passed", shared.ErrTiming)
		}
		return nil
	})
}

// StartVoting moves Registration to Voting once the start time is reached
// and at least one candidate has been approved.
func (e *Election) StartVoting(ctx context.Context, caller uuid.UUID) error {
	return e.advance(ctx, caller, StatusRegistration, StatusVoting, func(now time.Time) error {
		if now.Before(e.schedule.StartTime) {
			return fmt.Errorf("%w: voting window has not opened yet", shared.ErrTiming)
		}
		if e.approvedCount == 0 {
			return fmt.Errorf("%w: no approved candidates", shared.ErrValidation)
		}
		return nil
	})
}

// EndElection moves Voting to Ended once the end time is reached.
func (e *Election) EndElection(ctx context.Context, caller uuid.UUID) error {
	return e.advance(ctx, caller, StatusVoting, StatusEnded, func(now time.Time) error {
		if now.Before(e.schedule.EndTime) {
			return fmt.Errorf("%w: voting window is still open", shared.ErrTiming)
		}
		return nil
	})
}

// advance performs one forward transition. The guard runs under the
// instance lock against the single observed time for this call.
func (e *Election) advance(ctx context.Context, caller uuid.UUID, from, to Status, guard func(time.Time) error) error {
	now := e.clock.Now()
	e.mu.Lock()
	if caller != e.manager {
		e.mu.Unlock()
		return fmt.Errorf("%w: only the election manager may change status", shared.ErrAuthorization)
	}
	if e.status != from {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot move to %s from %s", shared.ErrPhase, to, e.status)
	}
	if guard != nil {
		if err := guard(now); err != nil {
			e.mu.Unlock()
			return err
		}
	}
	e.status = to
	e.mu.Unlock()
	e.publish(ctx, events.ElectionStatusChanged{ElectionID: e.id, Old: from.String(), New: to.String()})
	return nil
}

// DeclareResult is the explicit Ended to ResultDeclared transition. It
// exposes nothing beyond what Winner and Results already compute.
func (e *Election) DeclareResult(ctx context.Context, caller uuid.UUID) error {
	e.mu.Lock()
	if caller != e.manager {
		e.mu.Unlock()
		return fmt.Errorf("%w: only the election manager may declare the result", shared.ErrAuthorization)
	}
	if e.status != StatusEnded {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot declare result from %s", shared.ErrPhase, e.status)
	}
	winner := e.winnerLocked()
	e.status = StatusResultDeclared
	e.mu.Unlock()
	e.publish(ctx, events.ElectionStatusChanged{ElectionID: e.id, Old: StatusEnded.String(), New: StatusResultDeclared.String()})
	e.publish(ctx, events.ResultDeclared{ElectionID: e.id, WinnerID: winner})
	return nil
}

// CandidateInput carries a candidacy submission. Name and party are
// required; manifesto and image hash may be empty.
type CandidateInput struct {
	Name      string `validate:"required"`
	Party     string `validate:"required"`
	Manifesto string
	ImageHash string
}

// RegisterCandidate records a pending candidacy for the calling account.
// Allowed only during Registration and before the registration deadline;
// one candidacy per account.
func (e *Election) RegisterCandidate(ctx context.Context, caller uuid.UUID, input CandidateInput) (Candidate, error) {
	if caller == uuid.Nil {
		return Candidate{}, fmt.Errorf("%w: candidate account required", shared.ErrValidation)
	}
	input.Name = strings.TrimSpace(input.Name)
	input.Party = strings.TrimSpace(input.Party)
	if err := validate.Struct(input); err != nil {
		return Candidate{}, fmt.Errorf("%w: candidate name and party are required", shared.ErrValidation)
	}
	now := e.clock.Now()
	e.mu.Lock()
	if e.status != StatusRegistration {
		e.mu.Unlock()
		return Candidate{}, fmt.Errorf("%w: candidate registration is closed in %s", shared.ErrPhase, e.status)
	}
	if !now.Before(e.schedule.RegistrationDeadline) {
		e.mu.Unlock()
		return Candidate{}, fmt.Errorf("%w: registration deadline has passed", shared.ErrTiming)
	}
	if _, ok := e.candidateByAccount[caller]; ok {
		e.mu.Unlock()
		return Candidate{}, fmt.Errorf("%w: account already registered a candidate in this election", shared.ErrValidation)
	}
	e.nextCandidateID++
	cand := &Candidate{
		ID:        e.nextCandidateID,
		Account:   caller,
		Name:      input.Name,
		Party:     input.Party,
		Manifesto: input.Manifesto,
		ImageHash: input.ImageHash,
		Status:    CandidatePending,
	}
	e.candidates[cand.ID] = cand
	e.candidateByAccount[caller] = cand.ID
	snapshot := *cand
	e.mu.Unlock()
	e.publish(ctx, events.CandidateRegistered{
		ElectionID:  e.id,
		CandidateID: snapshot.ID,
		Account:     snapshot.Account,
		Name:        snapshot.Name,
	})
	return snapshot, nil
}

// ValidateCandidate applies the one-shot approve/reject decision to a
// pending candidate. Callable by the manager or an election authority; a
// decided candidate can never be decided again.
func (e *Election) ValidateCandidate(ctx context.Context, caller uuid.UUID, candidateID int64, approve bool) (Candidate, error) {
	if err := e.requireManagerOrAuthority(caller, "validate candidates"); err != nil {
		return Candidate{}, err
	}
	e.mu.Lock()
	cand, ok := e.candidates[candidateID]
	if !ok {
		e.mu.Unlock()
		return Candidate{}, fmt.Errorf("%w: candidate %d not found", shared.ErrValidation, candidateID)
	}
	if cand.Status != CandidatePending {
		e.mu.Unlock()
		return Candidate{}, fmt.Errorf("%w: candidate %d already validated", shared.ErrValidation, candidateID)
	}
	if approve {
		cand.Status = CandidateApproved
		e.approvedCount++
	} else {
		cand.Status = CandidateRejected
	}
	snapshot := *cand
	e.mu.Unlock()
	e.publish(ctx, events.CandidateValidated{
		ElectionID:  e.id,
		CandidateID: snapshot.ID,
		Status:      snapshot.Status.String(),
	})
	return snapshot, nil
}

// RegisterVoter enrolls one qualified account into this election. The
// account must already hold the VOTER role; enrollment here never grants it.
func (e *Election) RegisterVoter(ctx context.Context, caller, account uuid.UUID) error {
	if err := e.requireManagerOrAuthority(caller, "register voters"); err != nil {
		return err
	}
	if account == uuid.Nil {
		return fmt.Errorf("%w: voter account required", shared.ErrValidation)
	}
	if !e.access.IsVoter(account) {
		return fmt.Errorf("%w: account does not hold the VOTER role", shared.ErrValidation)
	}
	now := e.clock.Now()
	e.mu.Lock()
	if _, ok := e.voters[account]; ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: account already registered in this election", shared.ErrValidation)
	}
	e.voters[account] = &VoterInfo{Registered: true, RegisteredAt: now}
	e.mu.Unlock()
	e.publish(ctx, events.VoterRegistered{ElectionID: e.id, Voter: account})
	return nil
}

// RegisterVoterBatch enrolls up to MaxVoterBatch accounts in one call.
// Entries that are the zero account, lack the VOTER role, or are already
// registered are skipped, not failed, so one bad entry cannot block the
// batch. Exceeding the batch limit fails the whole call before any
// registration. Returns the accounts actually registered.
func (e *Election) RegisterVoterBatch(ctx context.Context, caller uuid.UUID, accounts []uuid.UUID) ([]uuid.UUID, error) {
	if err := e.requireManagerOrAuthority(caller, "register voters"); err != nil {
		return nil, err
	}
	if len(accounts) > MaxVoterBatch {
		return nil, fmt.Errorf("%w: batch of %d exceeds limit of %d", shared.ErrCapacity, len(accounts), MaxVoterBatch)
	}
	now := e.clock.Now()
	registered := make([]uuid.UUID, 0, len(accounts))
	e.mu.Lock()
	for _, account := range accounts {
		if account == uuid.Nil {
			continue
		}
		if !e.access.IsVoter(account) {
			continue
		}
		if _, ok := e.voters[account]; ok {
			continue
		}
		e.voters[account] = &VoterInfo{Registered: true, RegisteredAt: now}
		registered = append(registered, account)
	}
	e.mu.Unlock()
	for _, account := range registered {
		e.publish(ctx, events.VoterRegistered{ElectionID: e.id, Voter: account})
	}
	return registered, nil
}

// CastVote records the caller's vote for an approved candidate. The voter
// record, candidate tally, and election total move together under the
// instance lock; a failed cast changes nothing. A voter's second attempt
// always fails.
func (e *Election) CastVote(ctx context.Context, caller uuid.UUID, candidateID int64) error {
	now := e.clock.Now()
	e.mu.Lock()
	if e.status != StatusVoting {
		e.mu.Unlock()
		return fmt.Errorf("%w: voting is not open in %s", shared.ErrPhase, e.status)
	}
	if !now.Before(e.schedule.EndTime) {
		e.mu.Unlock()
		return fmt.Errorf("%w: voting window has closed", shared.ErrTiming)
	}
	voter, ok := e.voters[caller]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: caller is not registered to vote in this election", shared.ErrValidation)
	}
	if voter.HasVoted {
		e.mu.Unlock()
		return fmt.Errorf("%w: caller has already voted", shared.ErrValidation)
	}
	cand, ok := e.candidates[candidateID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: candidate %d not found", shared.ErrValidation, candidateID)
	}
	if cand.Status != CandidateApproved {
		e.mu.Unlock()
		return fmt.Errorf("%w: candidate %d is not approved", shared.ErrValidation, candidateID)
	}
	voter.HasVoted = true
	voter.VotedCandidateID = candidateID
	cand.VoteCount++
	e.totalVotes++
	e.mu.Unlock()
	e.publish(ctx, events.VoteCasted{ElectionID: e.id, Voter: caller, CandidateID: candidateID})
	return nil
}

// Winner returns the id of the approved candidate with the most votes, ties
// broken by the earlier id, or zero when no votes were cast. Readable only
// once the election has ended.
func (e *Election) Winner() (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status < StatusEnded {
		return 0, fmt.Errorf("%w: results are not available until the election has ended", shared.ErrPhase)
	}
	return e.winnerLocked(), nil
}

// Results returns the tally line of every approved candidate in id order.
// Readable only once the election has ended.
func (e *Election) Results() ([]Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status < StatusEnded {
		return nil, fmt.Errorf("%w: results are not available until the election has ended", shared.ErrPhase)
	}
	results := make([]Result, 0, e.approvedCount)
	for id := int64(1); id <= e.nextCandidateID; id++ {
		cand := e.candidates[id]
		if cand == nil || cand.Status != CandidateApproved {
			continue
		}
		results = append(results, Result{
			CandidateID: cand.ID,
			Name:        cand.Name,
			Party:       cand.Party,
			VoteCount:   cand.VoteCount,
		})
	}
	return results, nil
}

// winnerLocked scans approved candidates in ascending id order; a later
// candidate replaces the tracked winner only with a strictly greater count.
func (e *Election) winnerLocked() int64 {
	if e.totalVotes == 0 {
		return 0
	}
	var winner, best int64
	for id := int64(1); id <= e.nextCandidateID; id++ {
		cand := e.candidates[id]
		if cand == nil || cand.Status != CandidateApproved {
			continue
		}
		if cand.VoteCount > best {
			best = cand.VoteCount
			winner = id
		}
	}
	return winner
}

// Candidate returns the candidate with the given id.
func (e *Election) Candidate(id int64) (Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cand, ok := e.candidates[id]
	if !ok {
		return Candidate{}, fmt.Errorf("%w: candidate %d not found", shared.ErrValidation, id)
	}
	return *cand, nil
}

// ApprovedCandidates returns every approved candidate in id order.
func (e *Election) ApprovedCandidates() []Candidate {
	return e.candidatesWithStatus(CandidateApproved)
}

// PendingCandidates returns every undecided candidate in id order.
func (e *Election) PendingCandidates() []Candidate {
	return e.candidatesWithStatus(CandidatePending)
}

func (e *Election) candidatesWithStatus(status CandidateStatus) []Candidate {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Candidate, 0, len(e.candidates))
	for id := int64(1); id <= e.nextCandidateID; id++ {
		cand := e.candidates[id]
		if cand == nil || cand.Status != status {
			continue
		}
		out = append(out, *cand)
	}
	return out
}

// Voter returns the enrollment record for account.
func (e *Election) Voter(account uuid.UUID) (VoterInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	voter, ok := e.voters[account]
	if !ok {
		return VoterInfo{}, fmt.Errorf("%w: account is not registered in this election", shared.ErrValidation)
	}
	return *voter, nil
}

// RegisteredVoterCount returns how many accounts are enrolled.
func (e *Election) RegisteredVoterCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.voters)
}

// CandidateCount returns how many candidacies were registered, any status.
func (e *Election) CandidateCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.candidates)
}

// TotalVotes returns the number of votes cast so far.
func (e *Election) TotalVotes() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalVotes
}

// Info returns a consistent snapshot of the election.
func (e *Election) Info() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{
		ID:                 e.id,
		Ref:                e.ref,
		Name:               e.name,
		Description:        e.description,
		Schedule:           e.schedule,
		Status:             e.status,
		TotalVotes:         e.totalVotes,
		ApprovedCandidates: e.approvedCount,
		Creator:            e.manager,
		Open:               e.status < StatusEnded,
	}
}

func (e *Election) requireManagerOrAuthority(caller uuid.UUID, action string) error {
	if caller == e.manager || e.access.IsElectionAuthority(caller) {
		return nil
	}
	return fmt.Errorf("%w: only the election manager or an election authority may %s", shared.ErrAuthorization, action)
}

func (e *Election) publish(ctx context.Context, evt events.Event) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Publish(ctx, evt); err != nil {
		e.logger.Error("publish event",
			slog.String("kind", string(evt.Kind())),
			slog.Any("error", err))
	}
}
