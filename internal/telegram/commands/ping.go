package commands

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
)

type pingCmd struct {
	rehearsal Toggle
}

func Ping(rehearsal Toggle) *pingCmd {
	return &pingCmd{rehearsal: rehearsal}
}
func (pc *pingCmd) Cmd() string {
	return "ping"
}
func (pc *pingCmd) Description() string {
	return "Check the bot is alive"
}
func (pc *pingCmd) Usage() string {
	return "/ping"
}
func (pc *pingCmd) FloodControlLevel() int {
	return domain.SpamLevelLow
}
func (pc *pingCmd) IsAuthRequired() bool {
	return false
}
func (pc *pingCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	return false
}
func (pc *pingCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	r.ReplyWithMessage(md("pong\n" + dryRunState(pc.rehearsal)))
	return (*actionResult)(nil)
}
