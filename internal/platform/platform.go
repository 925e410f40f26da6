package platform

import (
	"context"
	"time"
)

// Comment is one event of a community comment feed.
type Comment struct {
	ID        string
	Fullname  string
	Community string
	// Author is empty when the account was deleted.
	Author    string
	Body      string
	ParentID  string
	Permalink string
	Removed   bool
}

// Content is a post or comment that can be actioned.
type Content struct {
	ID        string
	Fullname  string
	Author    string
	Permalink string
	IsComment bool
}

func (c Content) URL() string {
	return "https://www.reddit.com" + c.Permalink
}

// Annotation is a moderator note attached to a user.
type Annotation struct {
	Text      string
	Label     string
	URL       string
	CreatedAt time.Time
}

type NewAnnotation struct {
	User  string
	Text  string
	Label string
	// ContentID is the fullname of the content the note refers to.
	ContentID string
}

type Moderator struct {
	Name        string
	Permissions []string
}

// RestrictionEvent is one entry of a user's moderation log.
type RestrictionEvent struct {
	Action  string
	Details string
}

type Rule struct {
	Priority    int
	ShortName   string
	Description string
}

type Restriction struct {
	User string
	// Days is ignored when Permanent is set.
	Days      int
	Permanent bool
	Reason    string
	Note      string
}

// API is the set of platform calls the moderation engine relies on.
type API interface {
	Content(ctx context.Context, fullname string) (Content, error)
	Remove(ctx context.Context, fullname string) error
	Reply(ctx context.Context, fullname, text string) (string, error)
	Distinguish(ctx context.Context, fullname string, sticky bool) error
	Lock(ctx context.Context, fullname string) error
	AddAnnotation(ctx context.Context, community string, note NewAnnotation) error
	Annotations(ctx context.Context, community, user string) ([]Annotation, error)
	Restrict(ctx context.Context, community string, r Restriction) error
	SendMessage(ctx context.Context, user, subject, body string) error
	Moderators(ctx context.Context, community string) ([]Moderator, error)
	RestrictionHistory(ctx context.Context, community, user string) ([]RestrictionEvent, error)
	Rules(ctx context.Context, community string) ([]Rule, error)
}

// Feed delivers comments of a community in feed order. Stream blocks
// until ctx is done or the feed fails, calling fn once per comment.
type Feed interface {
	Stream(ctx context.Context, community string, fn func(Comment)) error
}
