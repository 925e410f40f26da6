package interfaces

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
)

type Command interface {
	Cmd() string
	Description() string
	Usage() string
	FloodControlLevel() int
	IsAuthRequired() bool
	// PreAction validates params and session. Returning true stops the command.
	// It runs before the flood check.
	PreAction(r Replier, params []string, sess *session.Session) bool
	Action(r Replier, params []string, sess *session.Session) CommandActionResult
}

type CommandActionResult interface {
	ResetSpamFilter() bool
}
