// Package registry creates election instances and indexes them by id,
// creator, instance reference, and time window. It owns the isActive
// visibility flag, which never touches an instance's own lifecycle.
package registry

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
	"github.com/electra-vote/electra/internal/election"
	"github.com/electra-vote/electra/internal/events"
	"github.com/electra-vote/electra/internal/shared"
)

var validate = validator.New()

// Registry is the election factory and index. Every method is a single
// atomic unit under the registry lock.
type Registry struct {
	mu sync.Mutex

	nextID    int64
	elections map[int64]*election.Election
	metadata  map[int64]*Metadata
	byRef     map[uuid.UUID]int64

	access *access.Registry
	clock  clock.Clock
	sink   events.Sink
	logger *slog.Logger
}

// New builds an empty registry.
func New(accessReg *access.Registry, clk clock.Clock, sink events.Sink, logger *slog.Logger) (*Registry, error) {
	if accessReg == nil {
		return nil, fmt.Errorf("%w: access registry required", shared.ErrValidation)
	}
	if clk == nil {
		return nil, fmt.Errorf("%w: clock required", shared.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		elections: make(map[int64]*election.Election),
		metadata:  make(map[int64]*Metadata),
		byRef:     make(map[uuid.UUID]int64),
		access:    accessReg,
		clock:     clk,
		sink:      sink,
		logger:    logger,
	}, nil
}

// CreateElection instantiates a new election in status Created and records
// its metadata with Active set. The caller must hold ELECTION_MANAGER. A
// failed call consumes no id and records nothing.
func (r *Registry) CreateElection(ctx context.Context, caller uuid.UUID, input CreateElectionInput) (Metadata, error) {
	if !r.access.IsElectionManager(caller) {
		return Metadata{}, fmt.Errorf("%w: only an election manager may create elections", shared.ErrAuthorization)
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validate.Struct(input); err != nil {
		return Metadata{}, fmt.Errorf("%w: name and all three schedule times are required", shared.ErrValidation)
	}
	now := r.clock.Now()
	if !input.StartTime.After(now) {
		return Metadata{}, fmt.Errorf("%w: start time must be in the future", shared.ErrValidation)
	}
	if !input.EndTime.After(input.StartTime) {
		return Metadata{}, fmt.Errorf("%w: end time must be after start time", shared.ErrValidation)
	}
	if !input.RegistrationDeadline.Before(input.StartTime) {
		return Metadata{}, fmt.Errorf("%w: registration deadline must be before start time", shared.ErrValidation)
	}
	schedule := election.Schedule{
		RegistrationDeadline: input.RegistrationDeadline,
		StartTime:            input.StartTime,
		EndTime:              input.EndTime,
	}
	ref := uuid.New()
	r.mu.Lock()
	id := r.nextID + 1
	inst, err := election.New(election.Params{
		ID:          id,
		Ref:         ref,
		Name:        input.Name,
		Description: input.Description,
		Schedule:    schedule,
		Manager:     caller,
		Access:      r.access,
		Clock:       r.clock,
		Sink:        r.sink,
		Logger:      r.logger,
	})
	if err != nil {
		r.mu.Unlock()
		return Metadata{}, err
	}
	r.nextID = id
	meta := &Metadata{
		ID:          id,
		Creator:     caller,
		Name:        input.Name,
		Description: input.Description,
		Schedule:    schedule,
		Ref:         ref,
		Active:      true,
		CreatedAt:   now,
	}
	r.elections[id] = inst
	r.metadata[id] = meta
	r.byRef[ref] = id
	snapshot := *meta
	r.mu.Unlock()
	r.logger.Info("election created",
		slog.Int64("id", snapshot.ID),
		slog.String("creator", caller.String()))
	r.publish(ctx, events.ElectionCreated{ElectionID: snapshot.ID, Creator: caller, InstanceRef: ref})
	return snapshot, nil
}

// DeactivateElection turns the visibility flag off. Only the election's
// creator or a SUPER_ADMIN may call it.
func (r *Registry) DeactivateElection(ctx context.Context, caller uuid.UUID, id int64) error {
	r.mu.Lock()
	meta, ok := r.metadata[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: election %d not found", shared.ErrValidation, id)
	}
	if caller != meta.Creator && !r.access.IsSuperAdmin(caller) {
		r.mu.Unlock()
		return fmt.Errorf("%w: only the election creator or a super admin may deactivate", shared.ErrAuthorization)
	}
	if !meta.Active {
		r.mu.Unlock()
		return fmt.Errorf("%w: election %d is already inactive", shared.ErrValidation, id)
	}
	meta.Active = false
	r.mu.Unlock()
	r.publish(ctx, events.ElectionDeactivated{ElectionID: id, Actor: caller})
	return nil
}

// ReactivateElection turns the visibility flag back on. SUPER_ADMIN only.
func (r *Registry) ReactivateElection(ctx context.Context, caller uuid.UUID, id int64) error {
	if !r.access.IsSuperAdmin(caller) {
		return fmt.Errorf("%w: only a super admin may reactivate", shared.ErrAuthorization)
	}
	r.mu.Lock()
	meta, ok := r.metadata[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: election %d not found", shared.ErrValidation, id)
	}
	if meta.Active {
		r.mu.Unlock()
		return fmt.Errorf("%w: election %d is already active", shared.ErrValidation, id)
	}
	meta.Active = true
	r.mu.Unlock()
	r.publish(ctx, events.ElectionReactivated{ElectionID: id, Actor: caller})
	return nil
}

// Get returns the election instance for lifecycle calls.
func (r *Registry) Get(id int64) (*election.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.elections[id]
	if !ok {
		return nil, fmt.Errorf("%w: election %d not found", shared.ErrValidation, id)
	}
	return inst, nil
}

// GetByRef resolves an instance reference to its election.
func (r *Registry) GetByRef(ref uuid.UUID) (*election.Election, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byRef[ref]
	if !ok {
		return nil, fmt.Errorf("%w: no election for reference %s", shared.ErrValidation, ref)
	}
	return r.elections[id], nil
}

// Meta returns the metadata record for id.
func (r *Registry) Meta(id int64) (Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	meta, ok := r.metadata[id]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: election %d not found", shared.ErrValidation, id)
	}
	return *meta, nil
}

// MetaBatch returns metadata for every id, atomically: one unknown id fails
// the whole lookup.
func (r *Registry) MetaBatch(ids []int64) ([]Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Metadata, 0, len(ids))
	for _, id := range ids {
		meta, ok := r.metadata[id]
		if !ok {
			return nil, fmt.Errorf("%w: election %d not found", shared.ErrValidation, id)
		}
		out = append(out, *meta)
	}
	return out, nil
}

// All returns every election's metadata in id order.
func (r *Registry) All() []Metadata {
	return r.filter(func(Metadata, time.Time) bool { return true })
}

// Active returns elections whose visibility flag is on.
func (r *Registry) Active() []Metadata {
	return r.filter(func(m Metadata, _ time.Time) bool { return m.Active })
}

// Ongoing returns elections currently within their voting window.
func (r *Registry) Ongoing() []Metadata {
	return r.filter(func(m Metadata, now time.Time) bool {
		return !now.Before(m.Schedule.StartTime) && !now.After(m.Schedule.EndTime)
	})
}

// Upcoming returns elections whose start time is still ahead.
func (r *Registry) Upcoming() []Metadata {
	return r.filter(func(m Metadata, now time.Time) bool {
		return m.Schedule.StartTime.After(now)
	})
}

// Completed returns elections whose end time has passed.
func (r *Registry) Completed() []Metadata {
	return r.filter(func(m Metadata, now time.Time) bool {
		return now.After(m.Schedule.EndTime)
	})
}

// ByCreator returns elections created by the given manager.
func (r *Registry) ByCreator(creator uuid.UUID) []Metadata {
	return r.filter(func(m Metadata, _ time.Time) bool { return m.Creator == creator })
}

// InRange returns elections whose [start, end] window overlaps [from, to].
func (r *Registry) InRange(from, to time.Time) ([]Metadata, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: inverted time range", shared.ErrValidation)
	}
	return r.filter(func(m Metadata, _ time.Time) bool {
		return !m.Schedule.StartTime.After(to) && !m.Schedule.EndTime.Before(from)
	}), nil
}

// filter scans metadata in id order under one lock with one observed time.
func (r *Registry) filter(keep func(Metadata, time.Time) bool) []Metadata {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Metadata, 0, len(r.metadata))
	for id := int64(1); id <= r.nextID; id++ {
		meta := r.metadata[id]
		if meta == nil || !keep(*meta, now) {
			continue
		}
		out = append(out, *meta)
	}
	return out
}

func (r *Registry) publish(ctx context.Context, evt events.Event) {
	if r.sink == nil {
		return
	}
	if err := r.sink.Publish(ctx, evt); err != nil {
		r.logger.Error("publish event",
			slog.String("kind", string(evt.Kind())),
			slog.Any("error", err))
	}
}
