package commands

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
)

type startCmd struct {
}

func Start() *startCmd {
	return &startCmd{}
}
func (sc *startCmd) Cmd() string {
	return "start"
}
func (sc *startCmd) Description() string {
	return "Start a new session and show help"
}
func (sc *startCmd) Usage() string {
	return `To start a new session just use
[/start](/start)`
}
func (sc *startCmd) FloodControlLevel() int {
	return domain.SpamLevelNone
}
func (sc *startCmd) IsAuthRequired() bool {
	return false
}
func (sc *startCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	return false
}
func (sc *startCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	msg := `*Usernotes bot operator channel*

Errors from the moderation workers are posted here\.
Available commands:
 \* /login \<code\>
 \* /logout
 \* /ping
 \* /status
 \* /recent \[subreddit\]
 \* /dry\_run 0\|1`
	sess.Clear()
	r.ReplyWithMessage(msg)
	return (*actionResult)(nil)
}
