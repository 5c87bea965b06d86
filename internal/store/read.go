package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrStreamNotFound is returned when a stream id is not in the store.
var ErrStreamNotFound = errors.New("stream not found")

// Stream describes one archived stream.
type Stream struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	Lines     int       `json:"lines"`
}

// Artifact is one archived line with its envelope fields.
type Artifact struct {
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	StepID string `json:"step_id,omitempty"`
	Line   string `json:"-"`
}

// ListStreams returns all streams ordered by creation time, then id.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) ListStreams(ctx context.Context) ([]Stream, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.created_at, COUNT(a.seq)
		FROM streams s
		LEFT JOIN artifacts a ON a.stream_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	streams := []Stream{}
	for rows.Next() {
		st, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streams: %w", err)
	}
	return streams, nil
}

// GetStream returns one stream, or ErrStreamNotFound.
func (s *Store) GetStream(ctx context.Context, id string) (Stream, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT s.id, s.label, s.created_at, COUNT(a.seq)
		FROM streams s
		LEFT JOIN artifacts a ON a.stream_id = s.id
		WHERE s.id = ?
		GROUP BY s.id
	`, id)

	st, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Stream{}, fmt.Errorf("%w: %s", ErrStreamNotFound, id)
	}
	return st, err
}

// ReadStream returns the artifacts of a stream in sequence order.
func (s *Store) ReadStream(ctx context.Context, id string) ([]Artifact, error) {
	if _, err := s.GetStream(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, kind, step_id, line
		FROM artifacts
		WHERE stream_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query artifacts: %w", err)
	}
	defer rows.Close()

	arts := []Artifact{}
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Seq, &a.Kind, &a.StepID, &a.Line); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		arts = append(arts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artifacts: %w", err)
	}
	return arts, nil
}

// KindCounts returns how many artifacts of each kind a stream holds.
func (s *Store) KindCounts(ctx context.Context, id string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM artifacts
		WHERE stream_id = ?
		GROUP BY kind
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query kind counts: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return counts, nil
}

// Contiguous reports whether arts are numbered 0, 1, ... with no gaps.
// arts must be in sequence order, as returned by ReadStream.
func Contiguous(arts []Artifact) bool {
	for i, a := range arts {
		if a.Seq != uint64(i) {
			return false
		}
	}
	return true
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStream(row scanner) (Stream, error) {
	var st Stream
	var created string
	if err := row.Scan(&st.ID, &st.Label, &created, &st.Lines); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stream{}, err
		}
		return Stream{}, fmt.Errorf("scan stream: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Stream{}, fmt.Errorf("parse created_at for stream %s: %w", st.ID, err)
	}
	st.CreatedAt = t
	return st, nil
}
