// Package journal keeps a tamper-evident, append-only log of applied state
// transitions. It subscribes to the event stream, so it never sits on an
// operation's mutation path. Each entry chains a BLAKE2b hash over the
// previous entry's hash, making any rewrite of history detectable.
package journal

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/electra-vote/electra/internal/clock"
	"github.com/electra-vote/electra/internal/events"
)

// Entry is one applied transition. Hash covers PrevHash, so entries form a
// chain anchored at the first entry.
type Entry struct {
	Seq      int64
	At       time.Time
	Kind     string
	Detail   string
	PrevHash string
	Hash     string
}

// Recorder persists entries beyond process memory. Optional.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Journal is the in-memory chain. It implements events.Sink.
type Journal struct {
	mu       sync.Mutex
	entries  []Entry
	clock    clock.Clock
	recorder Recorder
	logger   *slog.Logger
}

// New builds a journal. recorder may be nil.
func New(clk clock.Clock, recorder Recorder, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Journal{clock: clk, recorder: recorder, logger: logger}
}

// Publish appends one entry for the event and forwards it to the recorder.
func (j *Journal) Publish(ctx context.Context, evt events.Event) error {
	now := j.clock.Now()
	j.mu.Lock()
	var prev string
	if n := len(j.entries); n > 0 {
		prev = j.entries[n-1].Hash
	}
	entry := Entry{
		Seq:      int64(len(j.entries)) + 1,
		At:       now,
		Kind:     string(evt.Kind()),
		Detail:   describe(evt),
		PrevHash: prev,
	}
	entry.Hash = chainHash(entry)
	j.entries = append(j.entries, entry)
	recorder := j.recorder
	j.mu.Unlock()
	j.logger.Debug("transition appended",
		slog.Int64("seq", entry.Seq),
		slog.String("kind", entry.Kind))
	if recorder != nil {
		if err := recorder.Record(ctx, entry); err != nil {
			return fmt.Errorf("journal: record entry %d: %w", entry.Seq, err)
		}
	}
	return nil
}

// Entries returns a copy of the chain.
func (j *Journal) Entries() []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of entries.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Verify recomputes the whole chain and reports the first broken link.
func (j *Journal) Verify() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var prev string
	for i, entry := range j.entries {
		if entry.Seq != int64(i)+1 {
			return fmt.Errorf("journal: entry %d has sequence %d", i+1, entry.Seq)
		}
		if entry.PrevHash != prev {
			return fmt.Errorf("journal: entry %d does not chain to its predecessor", entry.Seq)
		}
		if chainHash(entry) != entry.Hash {
			return fmt.Errorf("journal: entry %d hash mismatch", entry.Seq)
		}
		prev = entry.Hash
	}
	return nil
}

func chainHash(entry Entry) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s|%d|%s|%s|%d", entry.PrevHash, entry.Seq, entry.Kind, entry.Detail, entry.At.UnixNano())
	return hex.EncodeToString(h.Sum(nil))
}

// describe renders an event payload into the stable detail string the hash
// covers.
func describe(evt events.Event) string {
	switch e := evt.(type) {
	case events.ElectionCreated:
		return fmt.Sprintf("election=%d creator=%s ref=%s", e.ElectionID, e.Creator, e.InstanceRef)
	case events.ElectionDeactivated:
		return fmt.Sprintf("election=%d actor=%s", e.ElectionID, e.Actor)
	case events.ElectionReactivated:
		return fmt.Sprintf("election=%d actor=%s", e.ElectionID, e.Actor)
	case events.ElectionStatusChanged:
		return fmt.Sprintf("election=%d old=%s new=%s", e.ElectionID, e.Old, e.New)
	case events.CandidateRegistered:
		return fmt.Sprintf("election=%d candidate=%d account=%s name=%s", e.ElectionID, e.CandidateID, e.Account, e.Name)
	case events.CandidateValidated:
		return fmt.Sprintf("election=%d candidate=%d status=%s", e.ElectionID, e.CandidateID, e.Status)
	case events.VoterRegistered:
		return fmt.Sprintf("election=%d voter=%s", e.ElectionID, e.Voter)
	case events.VoteCasted:
		return fmt.Sprintf("election=%d voter=%s candidate=%d", e.ElectionID, e.Voter, e.CandidateID)
	case events.ResultDeclared:
		return fmt.Sprintf("election=%d winner=%d", e.ElectionID, e.WinnerID)
	default:
		return fmt.Sprintf("kind=%s", evt.Kind())
	}
}
