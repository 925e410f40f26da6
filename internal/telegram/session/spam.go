package session

import (
	"sync"
	"time"
)

// spam holds, per flood level, the moment the chat may use that level again.
type spam struct {
	times map[int]time.Time
	mtx   sync.Mutex
}

func (s *spam) Get(l int) time.Time {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.times[l]
}

func (s *spam) Set(l int, t time.Time) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.times[l] = t
}

func (s *spam) Reset(l int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.times, l)
}
