package commands

import (
	"fmt"
	"time"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
	"github.com/jltorresm/otpgo"
	log "github.com/sirupsen/logrus"
)

const wrongCreds = "Wrong credentials"

// loginCmd checks a TOTP code against the operator key.
type loginCmd struct {
	key   string
	clock clock.Clock
}

func Login(key string, c clock.Clock) *loginCmd {
	return &loginCmd{key: key, clock: c}
}
func (lc *loginCmd) Cmd() string {
	return "login"
}
func (lc *loginCmd) Description() string {
	return "Operator login"
}
func (lc *loginCmd) Usage() string {
	return `To log in as operator use
/login \<one time code\>`
}
func (lc *loginCmd) FloodControlLevel() int {
	return domain.SpamLevelSensitive
}
func (lc *loginCmd) IsAuthRequired() bool {
	return false
}
func (lc *loginCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	if sess.IsAuthenticated() {
		r.ReplyWithMessage(md(fmt.Sprintf("Already authenticated as %s", sess.User.Login)))
		return true
	}

	if lc.key == "" {
		r.ReplyWithMessage("Operator login is disabled")
		return true
	}

	if len(params) < 1 || params[0] == "" {
		r.Usage()
		return true
	}

	return false
}
func (lc *loginCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	actionRes := &actionResult{resetSpamFilter: false}

	totp := otpgo.TOTP{
		Key: lc.key,
	}
	ok, err := totp.Validate(params[0])
	if err != nil {
		log.Errorf("[TBot Auth Totp] validating error: %s", err)
		r.InternalError()
		return actionRes
	}
	if !ok {
		log.Warnf("[TBot Auth Totp] failed login from chat %d", sess.ChatID)
		r.ReplyWithMessage(wrongCreds)
		return actionRes
	}

	login := sess.Username
	if login == "" {
		login = fmt.Sprintf("chat %d", sess.ChatID)
	}
	sess.User = session.MakeUser(login, lc.clock.Now())
	actionRes.resetSpamFilter = true
	log.Infof("[TBot Auth] operator %s logged in", login)

	r.ReplyWithMessage(md(fmt.Sprintf("Successfully authenticated as %s, session started %s", login, sess.User.Since.Format(time.RFC3339))))
	return actionRes
}
