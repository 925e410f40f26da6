package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
)

type statusCmd struct {
	workers   StatusProvider
	rehearsal Toggle
}

func Status(workers StatusProvider, rehearsal Toggle) *statusCmd {
	return &statusCmd{workers: workers, rehearsal: rehearsal}
}
func (sc *statusCmd) Cmd() string {
	return "status"
}
func (sc *statusCmd) Description() string {
	return "Show subreddit workers"
}
func (sc *statusCmd) Usage() string {
	return "/status"
}
func (sc *statusCmd) FloodControlLevel() int {
	return domain.SpamLevelLow
}
func (sc *statusCmd) IsAuthRequired() bool {
	return false
}
func (sc *statusCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	return false
}
func (sc *statusCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	sb := strings.Builder{}
	sb.WriteString(dryRunState(sc.rehearsal))
	sb.WriteString("\n")

	workers := sc.workers.Status()
	if len(workers) == 0 {
		sb.WriteString("no workers")
	}
	for _, w := range workers {
		state := "down"
		if w.Running {
			state = "up since " + w.Started.UTC().Format(time.RFC3339)
		}
		sb.WriteString(fmt.Sprintf("\nr/%s: %s, restarts %d", w.Name, state, w.Restarts))
		if w.LastErr != "" {
			sb.WriteString(fmt.Sprintf(", last error: %s", w.LastErr))
		}
	}

	r.ReplyWithMessage(md(sb.String()))
	return (*actionResult)(nil)
}
