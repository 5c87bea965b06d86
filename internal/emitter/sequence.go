package emitter

import "sync/atomic"

// Sequence is the per-run sequence number counter.
//
// Safe for concurrent use. The Emitter only calls Next while holding its
// write lock, which keeps numbers and line order aligned.
type Sequence struct {
	n atomic.Uint64
}

// NewSequence creates a counter starting at 0.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next increments the counter and returns the new value: 1, 2, 3, ...
func (s *Sequence) Next() uint64 {
	return s.n.Add(1)
}

// Current returns the last number handed out, or 0 if none.
func (s *Sequence) Current() uint64 {
	return s.n.Load()
}
