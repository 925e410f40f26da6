package moderation

import (
	"context"
	"fmt"

	"github.com/Farengier/usernotes-bot/internal/command"
	"github.com/Farengier/usernotes-bot/internal/executor"
	"github.com/Farengier/usernotes-bot/internal/platform"
)

// Step names, in the only order a plan may contain them.
const (
	StepRemoveCommand = "remove command"
	StepReply         = "reply with rules"
	StepRemoveTarget  = "remove target"
	StepAnnotate      = "write note"
	StepRestrict      = "restrict"
	StepConfirm       = "send summary"
)

type step struct {
	name string
	run  func(ctx context.Context) error
}

// Plan is the fixed sequence of actions committed to for one request.
type Plan struct {
	steps []step
}

func (p *Plan) Names() []string {
	out := make([]string, 0, len(p.steps))
	for _, s := range p.steps {
		out = append(out, s.name)
	}
	return out
}

// Execute stops at the first failing step and reports its name.
func (p *Plan) Execute(ctx context.Context) (string, error) {
	for _, s := range p.steps {
		if err := s.run(ctx); err != nil {
			return s.name, err
		}
	}
	return "", nil
}

// request is everything known about one command after the gates passed.
type request struct {
	comment     platform.Comment
	verb        command.Verb
	intent      command.Intent
	target      platform.Content
	restriction command.Restriction
}

func (r *request) note() string {
	return r.intent.Annotation()
}

func (o *Orchestrator) buildPlan(req *request) *Plan {
	p := &Plan{}
	add := func(name string, run func(ctx context.Context) error) {
		p.steps = append(p.steps, step{name: name, run: run})
	}

	add(StepRemoveCommand, func(ctx context.Context) error {
		return o.exec.Do(ctx, "remove command", func(ctx context.Context) error {
			return o.api.Remove(ctx, req.comment.Fullname)
		})
	})

	if req.verb == command.VerbRemove {
		add(StepReply, func(ctx context.Context) error {
			return o.replyWithRules(ctx, req)
		})
		add(StepRemoveTarget, func(ctx context.Context) error {
			return o.exec.Do(ctx, "remove target", func(ctx context.Context) error {
				return o.api.Remove(ctx, req.target.Fullname)
			})
		})
	}

	add(StepAnnotate, func(ctx context.Context) error {
		return o.exec.Do(ctx, "write note", func(ctx context.Context) error {
			return o.api.AddAnnotation(ctx, o.community, platform.NewAnnotation{
				User:      req.target.Author,
				Text:      req.note(),
				Label:     command.LabelFor(req.restriction),
				ContentID: req.target.Fullname,
			})
		})
	})

	if req.restriction.IsSet() {
		add(StepRestrict, func(ctx context.Context) error {
			return o.exec.Do(ctx, "restrict", func(ctx context.Context) error {
				return o.api.Restrict(ctx, o.community, platform.Restriction{
					User:      req.target.Author,
					Days:      req.restriction.Days,
					Permanent: req.restriction.Kind == command.RestrictionPermanent,
					Reason:    req.intent.RulesString(),
					Note:      fmt.Sprintf("Usernotes command by %s for %s", req.comment.Author, req.note()),
				})
			})
		})
	}

	add(StepConfirm, func(ctx context.Context) error {
		return o.exec.Do(ctx, "send summary", func(ctx context.Context) error {
			return o.api.SendMessage(ctx, req.comment.Author, subjectSummary,
				summaryMessage(req.target, req.note(), req.restriction))
		}, executor.Light())
	})
	return p
}

func (o *Orchestrator) replyWithRules(ctx context.Context, req *request) error {
	var rules []platform.Rule
	if len(req.intent.Rules) > 0 {
		var err error
		rules, err = o.api.Rules(ctx, o.community)
		if err != nil {
			o.log.Warnf("[Worker %s] fetching rules failed, citing numbers only: %s", o.community, err)
		}
	}
	text := removalReply(o.community, rules, req.intent.Rules)

	replyID, err := executor.Call(ctx, o.exec, "reply", func(ctx context.Context) (string, error) {
		return o.api.Reply(ctx, req.target.Fullname, text)
	})
	if err != nil {
		return err
	}

	err = o.exec.Do(ctx, "distinguish reply", func(ctx context.Context) error {
		return o.api.Distinguish(ctx, replyID, true)
	}, executor.Light())
	if err != nil {
		return err
	}
	return o.exec.Do(ctx, "lock reply", func(ctx context.Context) error {
		return o.api.Lock(ctx, replyID)
	}, executor.Light())
}
