package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Publish(_ context.Context, evt Event) error {
	s.events = append(s.events, evt)
	return s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBusFansOutInSubscriptionOrder(t *testing.T) {
	bus := NewBus(testLogger())
	first := &recordingSink{}
	second := &recordingSink{}
	bus.Subscribe(first)
	bus.Subscribe(second)
	bus.Subscribe(nil)

	evt := VoteCasted{ElectionID: 1, Voter: uuid.New(), CandidateID: 2}
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Equal(t, []Event{evt}, first.events)
	require.Equal(t, []Event{evt}, second.events)
}

func TestBusSinkErrorDoesNotStopDelivery(t *testing.T) {
	bus := NewBus(testLogger())
	failing := &recordingSink{err: errors.New("sink down")}
	healthy := &recordingSink{}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	evt := ElectionStatusChanged{ElectionID: 3, Old: "Created", New: "Registration"}
	require.NoError(t, bus.Publish(context.Background(), evt))
	require.Len(t, failing.events, 1)
	require.Len(t, healthy.events, 1)
}
