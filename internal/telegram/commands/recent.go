package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
	log "github.com/sirupsen/logrus"
)

const (
	recentLimit   = 10
	recentTimeout = 5 * time.Second
)

type recentCmd struct {
	journal Journal
}

func Recent(journal Journal) *recentCmd {
	return &recentCmd{journal: journal}
}
func (rc *recentCmd) Cmd() string {
	return "recent"
}
func (rc *recentCmd) Description() string {
	return "Show latest handled commands"
}
func (rc *recentCmd) Usage() string {
	return `/recent \[subreddit\]`
}
func (rc *recentCmd) FloodControlLevel() int {
	return domain.SpamLevelLow
}
func (rc *recentCmd) IsAuthRequired() bool {
	return true
}
func (rc *recentCmd) PreAction(r interfaces.Replier, params []string, sess *session.Session) bool {
	if len(params) > 1 {
		r.Usage()
		return true
	}
	return false
}
func (rc *recentCmd) Action(r interfaces.Replier, params []string, sess *session.Session) interfaces.CommandActionResult {
	community := ""
	if len(params) == 1 {
		community = strings.TrimPrefix(params[0], "r/")
	}

	ctx, cncl := context.WithTimeout(context.Background(), recentTimeout)
	defer cncl()
	actions, err := rc.journal.Recent(ctx, community, recentLimit)
	if err != nil {
		log.Errorf("[TBot] listing journal failed: %s", err)
		r.InternalError()
		return (*actionResult)(nil)
	}
	if len(actions) == 0 {
		r.ReplyWithMessage("Nothing handled yet")
		return (*actionResult)(nil)
	}

	sb := strings.Builder{}
	for i, a := range actions {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%s r/%s %s by %s on u/%s: %s",
			a.CreatedAt.UTC().Format(time.DateTime), a.Community, a.Verb, a.Moderator, a.TargetAuthor, a.Outcome))
		if a.Restriction != "" {
			sb.WriteString(", ban " + a.Restriction)
		}
		if a.Error != "" {
			sb.WriteString(", error: " + a.Error)
		}
	}

	r.ReplyWithMessage(md(sb.String()))
	return (*actionResult)(nil)
}
