package core

import "sync"

// InflightSet tracks video ids with an ingestion currently running, so a
// second request for the same video is rejected instead of re-ingested.
type InflightSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewInflightSet() *InflightSet {
	return &InflightSet{ids: map[string]struct{}{}}
}

// Acquire atomically claims id. When the claim succeeds it returns a
// release function that must be deferred immediately, so the id is
// removed on every exit path of the ingestion, including failures.
func (s *InflightSet) Acquire(id string) (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[id]; exists {
		return nil, false
	}
	s.ids[id] = struct{}{}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.ids, id)
	}, true
}

// Contains reports whether an ingestion for id is currently running.
func (s *InflightSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.ids[id]
	return exists
}
