package session

import (
	"sync"
	"time"
)

type Storage struct {
	sessions map[int64]*Session
	mtx      sync.RWMutex
}

func New() *Storage {
	return &Storage{
		sessions: make(map[int64]*Session),
	}
}

func (a *Storage) Session(chat int64) *Session {
	a.mtx.Lock()
	defer a.mtx.Unlock()

	s, ok := a.sessions[chat]
	if !ok {
		s = &Session{
			ChatID: chat,
			Spam:   &spam{times: map[int]time.Time{}},
		}
		a.sessions[chat] = s
	}
	return s
}

// Operators counts chats with a logged in operator.
func (a *Storage) Operators() int {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	n := 0
	for _, s := range a.sessions {
		if s.IsAuthenticated() {
			n++
		}
	}
	return n
}
