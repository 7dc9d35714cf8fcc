package journal

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder appends journal entries to the transition_log table:
//
//	CREATE TABLE transition_log (
//	    seq       BIGINT PRIMARY KEY,
//	    at        TIMESTAMPTZ NOT NULL,
//	    kind      TEXT NOT NULL,
//	    detail    TEXT NOT NULL,
//	    prev_hash TEXT NOT NULL,
//	    hash      TEXT NOT NULL
//	);
//
// Rows are only ever inserted; the seq primary key rejects rewrites.
type PostgresRecorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresRecorder constructs a recorder backed by the provided pool.
func NewPostgresRecorder(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRecorder{pool: pool, logger: logger}
}

// Record inserts one entry.
func (r *PostgresRecorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("journal: recorder not initialised")
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO transition_log (seq, at, kind, detail, prev_hash, hash)
VALUES ($1, $2, $3, $4, $5, $6)`, entry.Seq, entry.At, entry.Kind, entry.Detail, entry.PrevHash, entry.Hash)
	if err != nil {
		r.logger.Error("record transition", slog.Int64("seq", entry.Seq), slog.Any("error", err))
		return err
	}
	return nil
}
