package store

import (
	"context"
	"fmt"
	"time"
)

// CreateStream registers a stream before its lines are appended.
// Uses ON CONFLICT(id) DO NOTHING, so re-registering an id is a no-op.
func (s *Store) CreateStream(ctx context.Context, id, label string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO streams (id, label, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		label,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	return nil
}

// AppendLine stores one emitted line under streamID.
//
// The line must be a root envelope. A second line with the same sequence
// number is ignored. The stream must exist (foreign key constraint).
func (s *Store) AppendLine(ctx context.Context, streamID, line string) error {
	art, err := parseEnvelope(line)
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO artifacts (stream_id, seq, kind, step_id, line)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(stream_id, seq) DO NOTHING
	`,
		streamID,
		art.Seq,
		art.Kind,
		art.StepID,
		art.Line,
	)
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}
	return nil
}

// Writer appends every line it receives to one stream. It satisfies the
// ocptv Writer interface.
type Writer struct {
	store    *Store
	ctx      context.Context
	streamID string
}

// Writer returns a Writer for streamID. ctx bounds every insert.
func (s *Store) Writer(ctx context.Context, streamID string) *Writer {
	return &Writer{store: s, ctx: ctx, streamID: streamID}
}

// StreamID returns the stream the Writer appends to.
func (w *Writer) StreamID() string {
	return w.streamID
}

func (w *Writer) Write(line string) error {
	return w.store.AppendLine(w.ctx, w.streamID, line)
}
