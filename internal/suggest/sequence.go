package suggest

import "sync/atomic"

// Sequencer tags requests with increasing numbers so only the newest
// response is used.
type Sequencer struct {
	latest atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

func (s *Sequencer) IsLatest(seq uint64) bool {
	return s.latest.Load() == seq
}

func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}
