package reddit

import (
	"context"
	"net/url"
	"time"

	"github.com/Farengier/usernotes-bot/internal/platform"
	log "github.com/sirupsen/logrus"
)

const (
	feedLimit = "100"
	seenSize  = 1000
)

// seen remembers the last seenSize comment ids.
type seen struct {
	ids  map[string]struct{}
	ring []string
	pos  int
}

func newSeen(size int) *seen {
	return &seen{ids: make(map[string]struct{}, size), ring: make([]string, size)}
}

// add reports whether id is new.
func (s *seen) add(id string) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	if old := s.ring[s.pos]; old != "" {
		delete(s.ids, old)
	}
	s.ring[s.pos] = id
	s.pos = (s.pos + 1) % len(s.ring)
	s.ids[id] = struct{}{}
	return true
}

// Stream polls the newest comments of community and hands unseen ones to
// fn oldest first. Transient failures are logged and retried on the next
// poll; any other failure ends the stream.
func (c *Client) Stream(ctx context.Context, community string, fn func(platform.Comment)) error {
	s := newSeen(seenSize)
	t := time.NewTimer(0)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		comments, err := c.newComments(ctx, community)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case platform.IsTransient(err):
			log.Warnf("[Feed %s] polling failed, retrying: %s", community, err)
		default:
			return err
		}

		for i := len(comments) - 1; i >= 0; i-- {
			cm := comments[i]
			if !s.add(cm.Fullname) {
				continue
			}
			fn(cm)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
		t.Reset(c.poll)
	}
}

// newComments returns the newest comments first, as listed.
func (c *Client) newComments(ctx context.Context, community string) ([]platform.Comment, error) {
	var l listing[thing]
	err := c.get(ctx, "comments", "/r/"+community+"/comments", url.Values{"limit": {feedLimit}}, &l)
	if err != nil {
		return nil, err
	}
	out := make([]platform.Comment, 0, len(l.Data.Children))
	for _, ch := range l.Data.Children {
		out = append(out, platform.Comment{
			ID:        ch.Data.ID,
			Fullname:  ch.Data.Name,
			Community: ch.Data.Subreddit,
			Author:    authorOf(ch.Data.Author),
			Body:      ch.Data.Body,
			ParentID:  ch.Data.ParentID,
			Permalink: ch.Data.Permalink,
			Removed:   ch.Data.Removed,
		})
	}
	return out, nil
}
