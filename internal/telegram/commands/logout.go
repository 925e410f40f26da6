package commands

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
)

type logoutCmd struct {
}

func Logout() *logoutCmd {
	return &logoutCmd{}
}
func (lc *logoutCmd) Cmd() string {
	return "logout"
}
func (lc *logoutCmd) Description() string {
	return "End the operator session"
}
func (lc *logoutCmd) Usage() string {
	return "/logout"
}
func (lc *logoutCmd) FloodControlLevel() int {
	return domain.SpamLevelNone
}
func (lc *logoutCmd) IsAuthRequired() bool {
	return true
}
func (lc *logoutCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	return false
}
func (lc *logoutCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	sess.Clear()
	r.ReplyWithMessage("Logged out")
	return (*actionResult)(nil)
}
