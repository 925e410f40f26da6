package telegram

import (
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type replier struct {
	b      *bot
	chatID int64
	cmd    interfaces.Command
}

func (r *replier) InternalError() {
	r.ReplyWithMessage(tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, msgInternalErr))
}

func (r *replier) Usage() {
	if r.cmd == nil {
		return
	}
	r.ReplyWithMessage(r.cmd.Usage())
}

func (r *replier) ReplyWithMessage(msg string) {
	reply := tgbotapi.NewMessage(r.chatID, msg)
	reply.ParseMode = tgbotapi.ModeMarkdownV2
	r.b.send(reply)
}
