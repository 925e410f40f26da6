package commands

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
	log "github.com/sirupsen/logrus"
)

// dryRunCmd flips the rehearsal switch. Flipping it takes effect on the
// next executor call.
type dryRunCmd struct {
	rehearsal Toggle
}

func DryRun(rehearsal Toggle) *dryRunCmd {
	return &dryRunCmd{rehearsal: rehearsal}
}
func (dc *dryRunCmd) Cmd() string {
	return "dry_run"
}
func (dc *dryRunCmd) Description() string {
	return "Set whether bot can make reddit actions (0/1)"
}
func (dc *dryRunCmd) Usage() string {
	return `When in dry run the bot logs reddit actions instead of making them\.
/dry\_run 0 \- not in dry run, makes actions
/dry\_run 1 \- dry run, no reddit actions`
}
func (dc *dryRunCmd) FloodControlLevel() int {
	return domain.SpamLevelLow
}
func (dc *dryRunCmd) IsAuthRequired() bool {
	return true
}
func (dc *dryRunCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	if len(params) != 1 || (params[0] != "0" && params[0] != "1") {
		r.Usage()
		return true
	}
	return false
}
func (dc *dryRunCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	enabled := params[0] == "1"
	dc.rehearsal.Set(enabled)
	log.Warnf("[TBot] dry run set to %t by %s", enabled, sess.User.Login)

	if enabled {
		r.ReplyWithMessage("I am now running in dry run mode")
	} else {
		r.ReplyWithMessage("I am now NOT running in dry run mode")
	}
	return (*actionResult)(nil)
}
