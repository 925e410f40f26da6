// Package moderation turns moderator command comments into platform
// actions for one community.
package moderation

import (
	"context"
	"fmt"

	"github.com/Farengier/usernotes-bot/internal/authz"
	"github.com/Farengier/usernotes-bot/internal/command"
	"github.com/Farengier/usernotes-bot/internal/dedupe"
	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/metrics"
	"github.com/Farengier/usernotes-bot/internal/orm"
	"github.com/Farengier/usernotes-bot/internal/platform"
	log "github.com/sirupsen/logrus"
)

type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeDuplicate
	OutcomeUnresolved
	OutcomeHandled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeUnresolved:
		return "unresolved"
	case OutcomeHandled:
		return "handled"
	case OutcomeFailed:
		return "failed"
	default:
		return "ignored"
	}
}

// Reporter is the operator error channel. ReportError must not block.
type Reporter interface {
	ReportError(msg string)
}

type Journal interface {
	Record(ctx context.Context, a *orm.Action) error
}

type Options struct {
	Community string
	API       platform.API
	Executor  *executor.Executor
	Tracker   *authz.Tracker
	Guard     *dedupe.Guard
	Reporter  Reporter
	// Journal is optional.
	Journal Journal
}

type Orchestrator struct {
	community string
	api       platform.API
	exec      *executor.Executor
	auth      *authz.Tracker
	guard     *dedupe.Guard
	reporter  Reporter
	journal   Journal
	log       *log.Entry
}

func New(o Options) *Orchestrator {
	return &Orchestrator{
		community: o.Community,
		api:       o.API,
		exec:      o.Executor,
		auth:      o.Tracker,
		guard:     o.Guard,
		reporter:  o.Reporter,
		journal:   o.Journal,
		log:       log.WithField("community", o.Community),
	}
}

// Handle processes one feed comment. Errors never escape: they end up in
// the operator channel and in a message to the command author.
func (o *Orchestrator) Handle(ctx context.Context, c platform.Comment) Outcome {
	tokens := command.Tokenize(c.Body)
	verb := command.ParseVerb(tokens[0])
	if verb == command.VerbNone {
		return OutcomeIgnored
	}
	outcome := o.handle(ctx, c, verb, tokens[1:])
	metrics.Commands.WithLabelValues(o.community, verb.String(), outcome.String()).Inc()
	return outcome
}

func (o *Orchestrator) handle(ctx context.Context, c platform.Comment, verb command.Verb, args []string) Outcome {
	if c.Author == "" || c.Removed {
		return OutcomeIgnored
	}
	if verb.RequiresRemoval() {
		ok, err := o.auth.CanRemove(ctx, c.Author)
		if err != nil {
			o.report(fmt.Sprintf("Refreshing moderators of r/%s failed, using cached list: %s", o.community, err))
		}
		if !ok {
			return OutcomeIgnored
		}
	}

	o.log.Infof("[Worker %s] action request from %s: %s", o.community, c.Author, c.Permalink)
	req := &request{comment: c, verb: verb, intent: command.Parse(args)}

	target, err := o.api.Content(ctx, c.ParentID)
	if err != nil && platform.KindOf(err) != platform.KindResolution {
		return o.fail(ctx, req, "resolve target", err)
	}
	if err != nil || target.Author == "" {
		return o.unresolved(ctx, req)
	}
	req.target = target

	req.restriction = req.intent.Restriction
	if req.restriction.IsSet() {
		ok, err := o.auth.CanRestrict(ctx, c.Author)
		if err != nil {
			o.report(fmt.Sprintf("Refreshing moderators of r/%s failed, using cached list: %s", o.community, err))
		}
		if !ok {
			o.report(fmt.Sprintf("SECURITY: u/%s requested restriction %q of u/%s in r/%s without access permission; "+
				"restriction dropped. %s", c.Author, "b"+req.restriction.String(), target.Author, o.community,
				permalinkURL(c.Permalink)))
			req.restriction = command.Restriction{}
		}
	}

	if o.guard.AlreadyHandled(ctx, o.community, target.Author, target.ID) {
		o.log.Infof("[Worker %s] ignoring as already actioned %s: %s: %s", o.community, target.ID, target.Author, target.Permalink)
		return OutcomeDuplicate
	}

	if req.restriction.Kind == command.RestrictionIncremental {
		req.restriction = o.resolveIncrement(ctx, req)
	}

	plan := o.buildPlan(req)
	o.log.Infof("[Worker %s] %s %s for %s: %v", o.community, verb, target.Author, req.note(), plan.Names())
	if failed, err := plan.Execute(ctx); err != nil {
		return o.fail(ctx, req, failed, err)
	}

	o.record(ctx, req, OutcomeHandled, nil)
	return OutcomeHandled
}

func (o *Orchestrator) resolveIncrement(ctx context.Context, req *request) command.Restriction {
	history, err := o.api.RestrictionHistory(ctx, o.community, req.target.Author)
	if err != nil {
		o.report(fmt.Sprintf("Reading restriction history of u/%s in r/%s failed, using %d days: %s",
			req.target.Author, o.community, command.DefaultIncrementDays, err))
		return command.Restriction{Kind: command.RestrictionTimed, Days: command.DefaultIncrementDays}
	}
	days, err := command.NextIncrement(history)
	if err != nil {
		o.report(fmt.Sprintf("Caught error in finding ban of u/%s in r/%s, using %d days: %s",
			req.target.Author, o.community, days, err))
	}
	return command.Restriction{Kind: command.RestrictionTimed, Days: days}
}

func (o *Orchestrator) unresolved(ctx context.Context, req *request) Outcome {
	c := req.comment
	o.log.Infof("[Worker %s] target of %s is deleted", o.community, c.Permalink)

	err := o.exec.Do(ctx, "remove command", func(ctx context.Context) error {
		return o.api.Remove(ctx, c.Fullname)
	})
	if err != nil {
		return o.fail(ctx, req, StepRemoveCommand, err)
	}
	err = o.exec.Do(ctx, "send unresolved", func(ctx context.Context) error {
		return o.api.SendMessage(ctx, c.Author, subjectUnresolved, unresolvedMessage(c))
	}, executor.Light())
	if err != nil {
		o.log.Errorf("[Worker %s] notifying %s failed: %s", o.community, c.Author, err)
	}

	o.record(ctx, req, OutcomeUnresolved, err)
	return OutcomeUnresolved
}

// fail reports a plan that stopped half way. Nothing is rolled back, so
// the author is asked to check the result by hand.
func (o *Orchestrator) fail(ctx context.Context, req *request, stepName string, err error) Outcome {
	c := req.comment
	msg := fmt.Sprintf("Exception in comment processing in r/%s at step %q (%s error): %s\n%s",
		o.community, stepName, platform.KindOf(err), err, permalinkURL(c.Permalink))
	o.log.Error(msg)
	o.report(msg)

	notifyErr := o.exec.Do(ctx, "send failure", func(ctx context.Context) error {
		return o.api.SendMessage(ctx, c.Author, subjectFailure, failureMessage(c, err))
	}, executor.Light())
	if notifyErr != nil {
		o.log.Errorf("[Worker %s] notifying %s about failure failed: %s", o.community, c.Author, notifyErr)
	}

	o.record(ctx, req, OutcomeFailed, err)
	return OutcomeFailed
}

func (o *Orchestrator) report(msg string) {
	if o.reporter != nil {
		o.reporter.ReportError(msg)
	}
}

func (o *Orchestrator) record(ctx context.Context, req *request, outcome Outcome, err error) {
	if o.journal == nil {
		return
	}
	a := &orm.Action{
		Community:    o.community,
		Moderator:    req.comment.Author,
		Verb:         req.verb.String(),
		TargetAuthor: req.target.Author,
		TargetID:     req.target.ID,
		Permalink:    req.comment.Permalink,
		Annotation:   req.note(),
		Outcome:      outcome.String(),
	}
	if req.restriction.IsSet() {
		a.Restriction = req.restriction.Describe()
	}
	if err != nil {
		a.Error = err.Error()
	}
	if jerr := o.journal.Record(ctx, a); jerr != nil {
		o.log.Errorf("[Worker %s] journal: %s", o.community, jerr)
	}
}
