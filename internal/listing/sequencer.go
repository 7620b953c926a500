package listing

import "sync"

// Sequencer tracks monotonically increasing request tokens per view so
// that a response to an older request never overwrites a newer one.
//
// A client calls Next before each fetch and Accept on each response. A
// server calls Observe on each request and rejects the ones that lost the
// race.
type Sequencer struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// NewSequencer returns an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues the next token for key.
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[key]++
	return s.latest[key]
}

// Accept reports whether token is still the latest issued for key.
func (s *Sequencer) Accept(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == token
}

// Observe records token for key. It returns false together with the
// newest token already seen when token is older than that one. Repeating
// the latest token is allowed.
func (s *Sequencer) Observe(key string, token uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := s.latest[key]
	if token < latest {
		return latest, false
	}
	s.latest[key] = token
	return token, true
}

// Forget drops the state kept for key.
func (s *Sequencer) Forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.latest, key)
}
