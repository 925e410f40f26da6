// Package telegram is the operator channel: error reports go to a chat and
// operators use bot commands to check on workers and toggle dry run.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Farengier/usernotes-bot/internal/clock"
	"github.com/Farengier/usernotes-bot/internal/signal"
	"github.com/Farengier/usernotes-bot/internal/telegram/commands"
	"github.com/Farengier/usernotes-bot/internal/telegram/domain"
	"github.com/Farengier/usernotes-bot/internal/telegram/interfaces"
	"github.com/Farengier/usernotes-bot/internal/telegram/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const (
	msgInternalErr = "Internal error, please contact admin"
	errorPreamble  = "UsernotesBot has had an exception. This can normally be ignored, " +
		"but if it's occurring frequently, may indicate a script error.\n"

	reportQueue = 64
	// telegram rejects longer messages
	maxMessage = 4096
)

type Config interface {
	Token() string
	ErrorChat() int64
	OperatorKey() string
	SpamFilterDurationSensitive() time.Duration
	SpamFilterDurationLow() time.Duration
}

// Deps are the parts of the service the commands look into.
type Deps struct {
	Rehearsal commands.Toggle
	Workers   commands.StatusProvider
	Journal   commands.Journal
}

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type bot struct {
	cfg           Config
	botAPI        botAPI
	clock         clock.Clock
	sessions      *session.Storage
	spamDurations map[int]time.Duration
	commands      map[string]interfaces.Command
	reports       chan string
}

// NewBot connects to telegram. Errors can be reported right away; they
// are delivered once Start runs.
func NewBot(cfg Config) (*bot, error) {
	tgbot, err := tgbotapi.NewBotAPI(cfg.Token())
	if err != nil {
		return nil, fmt.Errorf("telegram bot start failed: %w", err)
	}
	log.Infof("[TBot] authorized as %s", tgbot.Self.UserName)
	return newBot(cfg, tgbot, clock.Real()), nil
}

func newBot(cfg Config, api botAPI, c clock.Clock) *bot {
	return &bot{
		cfg:      cfg,
		botAPI:   api,
		clock:    c,
		sessions: session.New(),
		spamDurations: map[int]time.Duration{
			domain.SpamLevelLow:       cfg.SpamFilterDurationLow(),
			domain.SpamLevelSensitive: cfg.SpamFilterDurationSensitive(),
		},
		reports: make(chan string, reportQueue),
	}
}

func (b *bot) initCommands(deps Deps) {
	cmds := []interfaces.Command{
		commands.Start(),
		commands.Login(b.cfg.OperatorKey(), b.clock),
		commands.Logout(),
		commands.Ping(deps.Rehearsal),
		commands.DryRun(deps.Rehearsal),
		commands.Status(deps.Workers, deps.Rehearsal),
		commands.Recent(deps.Journal),
	}

	b.commands = map[string]interfaces.Command{}
	for _, cmd := range cmds {
		if _, ok := b.commands[cmd.Cmd()]; ok {
			panic("Commands intersection: " + cmd.Cmd())
		}
		b.commands[cmd.Cmd()] = cmd
	}
}

// Start registers the commands, announces the bot in the error chat and
// begins reading updates until shutdown.
func (b *bot) Start(deps Deps) {
	b.setCommands(deps)

	updateConfig := tgbotapi.NewUpdate(0)
	// long polling, telegram holds the request up to 30 seconds
	updateConfig.Timeout = 30
	updates := b.botAPI.GetUpdatesChan(updateConfig)

	tbctx, cncl := context.WithCancel(context.Background())
	signal.OnShutdown(func() error {
		log.Info("[TBot] Shutdown telegram bot")
		b.botAPI.StopReceivingUpdates()
		cncl()
		return nil
	})
	signal.Run(func() { b.deliver(tbctx) })
	signal.Run(func() { b.read(tbctx, updates) })

	b.notify(fmt.Sprintf("I am online, is_dry_run=%t", deps.Rehearsal.Enabled()))
}

func (b *bot) setCommands(deps Deps) {
	b.initCommands(deps)
	botCommands := make([]tgbotapi.BotCommand, 0, len(b.commands))
	for cmd, cmdDesc := range b.commands {
		botCommands = append(botCommands, tgbotapi.BotCommand{
			Command:     "/" + cmd,
			Description: cmdDesc.Description(),
		})
	}
	_, err := b.botAPI.Request(tgbotapi.NewSetMyCommands(botCommands...))
	if err != nil {
		log.Errorf("[TBot] [init] setting commands failed: %s", err)
	} else {
		log.Infof("[TBot] [init] setting commands: ok, %d commands", len(botCommands))
	}
}

// ReportError queues msg for the error chat. It never blocks; when the
// queue is full the report is only logged.
func (b *bot) ReportError(msg string) {
	log.Warnf("[TBot] error report: %s", msg)
	select {
	case b.reports <- msg:
	default:
		log.Errorf("[TBot] report queue full, dropping report")
	}
}

func (b *bot) deliver(ctx context.Context) {
	for {
		select {
		case msg := <-b.reports:
			b.notify(errorPreamble + msg)
		case <-ctx.Done():
			return
		}
	}
}

// notify sends plain text to the error chat.
func (b *bot) notify(text string) {
	if b.cfg.ErrorChat() == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.cfg.ErrorChat(), clip(text, maxMessage)))
}

func (b *bot) send(c tgbotapi.Chattable) {
	if _, err := b.botAPI.Send(c); err != nil {
		log.Errorf("[TBot] failed sending: %s", err)
	}
}

func (b *bot) read(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case upd, ok := <-updates:
			if !ok {
				return
			}
			b.update(upd)
		case <-ctx.Done():
			return
		}
	}
}

func (b *bot) update(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		return
	}
	if upd.Message != nil {
		sess := b.sessions.Session(upd.Message.Chat.ID)
		if upd.Message.From != nil {
			sess.Username = upd.Message.From.UserName
		}
		b.msgUpdate(upd, sess)
		return
	}
}

func (b *bot) msgUpdate(upd tgbotapi.Update, sess *session.Session) {
	r := &replier{chatID: sess.ChatID, b: b}
	if !upd.Message.IsCommand() {
		r.ReplyWithMessage("not a command")
		return
	}

	cmd, ok := b.commands[upd.Message.Command()]
	if !ok {
		r.ReplyWithMessage("unknown command")
		return
	}
	r.cmd = cmd

	params := strings.Fields(upd.Message.CommandArguments())
	if cmd.IsAuthRequired() && !sess.IsAuthenticated() {
		r.ReplyWithMessage(`Login required: /login \<code\>`)
		return
	}

	if cmd.PreAction(r, params, sess) {
		return
	}

	if !b.spamCheck(r, sess, cmd.FloodControlLevel()) {
		return
	}

	ares := cmd.Action(r, params, sess)

	if ares.ResetSpamFilter() {
		sess.Spam.Reset(cmd.FloodControlLevel())
	}
}

// spamCheck reports whether the command may run and starts its cooldown.
func (b *bot) spamCheck(r *replier, sess *session.Session, l int) bool {
	if l == domain.SpamLevelNone {
		return true
	}

	now := b.clock.Now()
	delta := sess.Spam.Get(l).Sub(now)
	if delta > 0 {
		r.ReplyWithMessage(tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2,
			fmt.Sprintf("Try again after %s", delta.Truncate(time.Second)+time.Second)))
		return false
	}

	sess.Spam.Set(l, now.Add(b.spamDurations[l]))
	return true
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
