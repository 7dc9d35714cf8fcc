package events

import (
	"context"
	"log/slog"
	"sync"
)

// Sink receives published events. Implementations must not call back into
// the component that published.
type Sink interface {
	Publish(ctx context.Context, evt Event) error
}

// Bus fans events out synchronously to every subscribed sink, in
// subscription order. A sink error is logged and does not stop delivery or
// fail the publishing operation; emitted events describe state that has
// already committed.
type Bus struct {
	mu     sync.RWMutex
	sinks  []Sink
	logger *slog.Logger
}

// NewBus builds an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a sink. Nil sinks are ignored.
func (b *Bus) Subscribe(s Sink) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, s)
}

// Publish implements Sink by delivering evt to every subscriber.
func (b *Bus) Publish(ctx context.Context, evt Event) error {
	b.mu.RLock()
	sinks := make([]Sink, len(b.sinks))
	copy(sinks, b.sinks)
	b.mu.RUnlock()
	for _, s := range sinks {
		if err := s.Publish(ctx, evt); err != nil {
			b.logger.Error("event delivery",
				slog.String("kind", string(evt.Kind())),
				slog.Any("error", err))
		}
	}
	return nil
}
