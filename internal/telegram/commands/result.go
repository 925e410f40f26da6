package commands

import (
	"context"

	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/Farengier/usernotes-bot/internal/supervisor"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type actionResult struct {
	resetSpamFilter bool
}

func (ar *actionResult) ResetSpamFilter() bool {
	return ar != nil && ar.resetSpamFilter
}

// Toggle is the rehearsal switch shared with every executor.
type Toggle interface {
	Enabled() bool
	Set(enabled bool)
}

type StatusProvider interface {
	Status() []supervisor.Status
}

type Journal interface {
	Recent(ctx context.Context, community string, limit int) ([]orm.Action, error)
}

func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s)
}

func dryRunState(t Toggle) string {
	if t.Enabled() {
		return "I am running in dry run mode, no reddit actions are made"
	}
	return "I am NOT running in dry run mode, reddit actions are made"
}
