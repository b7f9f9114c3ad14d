package pipeline

import (
	"sync"
	"time"
)

// Stamper hands out strictly increasing, millisecond-precision creation
// times so cursor pagination never sees two rows with the same instant
// from one process.
type Stamper struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewStamper returns a Stamper using now as its clock. A nil now uses
// time.Now.
func NewStamper(now func() time.Time) *Stamper {
	if now == nil {
		now = time.Now
	}
	return &Stamper{now: now}
}

// Next returns a time later than every time handed out before.
func (s *Stamper) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advance(s.now().UTC().Truncate(time.Millisecond))
}

// Reserve returns n times spaced step apart, newest first, all later than
// every time handed out before.
func (s *Stamper) Reserve(n int, step time.Duration) []time.Time {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	oldest := s.advance(s.now().UTC().Truncate(time.Millisecond))
	newest := oldest.Add(time.Duration(n-1) * step)
	if newest.After(s.last) {
		s.last = newest
	}

	out := make([]time.Time, n)
	for i := range out {
		out[i] = newest.Add(-time.Duration(i) * step)
	}
	return out
}

func (s *Stamper) advance(t time.Time) time.Time {
	if !t.After(s.last) {
		t = s.last.Add(time.Millisecond)
	}
	s.last = t
	return t
}
