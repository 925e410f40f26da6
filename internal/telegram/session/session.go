package session

import "time"

type Session struct {
	User     *User
	ChatID   int64
	Username string
	Spam     *spam
}

// User is the operator logged in through this chat.
type User struct {
	Login string
	Since time.Time
}

func (s *Session) Clear() {
	s.User = nil
}

func (s *Session) IsAuthenticated() bool {
	return s.User != nil
}

func MakeUser(login string, since time.Time) *User {
	return &User{
		Login: login,
		Since: since,
	}
}
