// Package platformtest provides an in-memory platform.API that records
// every call for assertions.
package platformtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Farengier/usernotes-bot/internal/platform"
)

type Message struct {
	User    string
	Subject string
	Body    string
}

type API struct {
	mtx sync.Mutex

	Contents       map[string]platform.Content
	Notes          map[string][]platform.Annotation
	Mods           []platform.Moderator
	History        map[string][]platform.RestrictionEvent
	CommunityRules []platform.Rule

	// Fail maps an operation name to the error it returns.
	Fail map[string]error
	// FailTimes limits how many times Fail is returned per operation; 0 means always.
	FailTimes map[string]int

	calls        []string
	failed       map[string]int
	Replies      []string
	Added        []platform.NewAnnotation
	Restrictions []platform.Restriction
	Messages     []Message
	replyCount   int
}

func New() *API {
	return &API{
		Contents:  map[string]platform.Content{},
		Notes:     map[string][]platform.Annotation{},
		History:   map[string][]platform.RestrictionEvent{},
		Fail:      map[string]error{},
		FailTimes: map[string]int{},
		failed:    map[string]int{},
	}
}

// Calls returns the recorded calls as "op target" strings.
func (a *API) Calls() []string {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	out := make([]string, len(a.calls))
	copy(out, a.calls)
	return out
}

// Mutations returns recorded calls that change platform state.
func (a *API) Mutations() []string {
	var out []string
	for _, c := range a.Calls() {
		op := strings.SplitN(c, " ", 2)[0]
		switch op {
		case "content", "annotations", "moderators", "history", "rules":
			continue
		}
		out = append(out, c)
	}
	return out
}

func (a *API) record(op, target string) error {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.calls = append(a.calls, op+" "+target)
	err, ok := a.Fail[op]
	if !ok {
		return nil
	}
	if limit := a.FailTimes[op]; limit > 0 && a.failed[op] >= limit {
		return nil
	}
	a.failed[op]++
	return err
}

func (a *API) Content(_ context.Context, fullname string) (platform.Content, error) {
	if err := a.record("content", fullname); err != nil {
		return platform.Content{}, err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	c, ok := a.Contents[fullname]
	if !ok {
		return platform.Content{}, platform.Resolution("content", fmt.Errorf("%s not found", fullname))
	}
	return c, nil
}

func (a *API) Remove(_ context.Context, fullname string) error {
	return a.record("remove", fullname)
}

func (a *API) Reply(_ context.Context, fullname, text string) (string, error) {
	if err := a.record("reply", fullname); err != nil {
		return "", err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.replyCount++
	a.Replies = append(a.Replies, text)
	return fmt.Sprintf("t1_reply%d", a.replyCount), nil
}

func (a *API) Distinguish(_ context.Context, fullname string, _ bool) error {
	return a.record("distinguish", fullname)
}

func (a *API) Lock(_ context.Context, fullname string) error {
	return a.record("lock", fullname)
}

func (a *API) AddAnnotation(_ context.Context, _ string, note platform.NewAnnotation) error {
	if err := a.record("annotate", note.User); err != nil {
		return err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.Added = append(a.Added, note)
	return nil
}

func (a *API) Annotations(_ context.Context, _ string, user string) ([]platform.Annotation, error) {
	if err := a.record("annotations", user); err != nil {
		return nil, err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.Notes[user], nil
}

func (a *API) Restrict(_ context.Context, _ string, r platform.Restriction) error {
	if err := a.record("restrict", r.User); err != nil {
		return err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.Restrictions = append(a.Restrictions, r)
	return nil
}

func (a *API) SendMessage(_ context.Context, user, subject, body string) error {
	if err := a.record("message", user); err != nil {
		return err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	a.Messages = append(a.Messages, Message{User: user, Subject: subject, Body: body})
	return nil
}

func (a *API) Moderators(_ context.Context, community string) ([]platform.Moderator, error) {
	if err := a.record("moderators", community); err != nil {
		return nil, err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.Mods, nil
}

func (a *API) RestrictionHistory(_ context.Context, _ string, user string) ([]platform.RestrictionEvent, error) {
	if err := a.record("history", user); err != nil {
		return nil, err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.History[user], nil
}

func (a *API) Rules(_ context.Context, community string) ([]platform.Rule, error) {
	if err := a.record("rules", community); err != nil {
		return nil, err
	}
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.CommunityRules, nil
}
