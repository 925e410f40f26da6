package reddit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Farengier/usernotes-bot/internal/platform"
)

const (
	deletedAuthor = "[deleted]"
	notesLimit    = "100"
	kindComment   = "t1"
)

func authorOf(name string) string {
	if name == deletedAuthor {
		return ""
	}
	return name
}

// noteURL links the content a note refers to.
func noteURL(fullname string) string {
	if fullname == "" {
		return ""
	}
	return "https://www.reddit.com/by_id/" + fullname
}

func (c *Client) Content(ctx context.Context, fullname string) (platform.Content, error) {
	var l listing[thing]
	if err := c.get(ctx, "info", "/api/info", url.Values{"id": {fullname}}, &l); err != nil {
		return platform.Content{}, err
	}
	if len(l.Data.Children) == 0 {
		return platform.Content{}, platform.Resolution("info", fmt.Errorf("%s not found", fullname))
	}
	ch := l.Data.Children[0]
	return platform.Content{
		ID:        ch.Data.ID,
		Fullname:  ch.Data.Name,
		Author:    authorOf(ch.Data.Author),
		Permalink: ch.Data.Permalink,
		IsComment: ch.Kind == kindComment,
	}, nil
}

func (c *Client) Remove(ctx context.Context, fullname string) error {
	return c.post(ctx, "remove", "/api/remove", url.Values{
		"id":   {fullname},
		"spam": {"false"},
	}, nil)
}

func (c *Client) Reply(ctx context.Context, fullname, text string) (string, error) {
	var resp commentResponse
	err := c.post(ctx, "comment", "/api/comment", url.Values{
		"api_type": {"json"},
		"thing_id": {fullname},
		"text":     {text},
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.JSON.Data.Things) == 0 {
		return "", platform.NewError(platform.KindUnclassified, "comment", fmt.Errorf("no comment returned"))
	}
	return resp.JSON.Data.Things[0].Data.Name, nil
}

func (c *Client) Distinguish(ctx context.Context, fullname string, sticky bool) error {
	return c.post(ctx, "distinguish", "/api/distinguish", url.Values{
		"api_type": {"json"},
		"id":       {fullname},
		"how":      {"yes"},
		"sticky":   {strconv.FormatBool(sticky)},
	}, &struct{}{})
}

func (c *Client) Lock(ctx context.Context, fullname string) error {
	return c.post(ctx, "lock", "/api/lock", url.Values{"id": {fullname}}, nil)
}

func (c *Client) AddAnnotation(ctx context.Context, community string, note platform.NewAnnotation) error {
	form := url.Values{
		"subreddit": {community},
		"user":      {note.User},
		"note":      {note.Text},
	}
	if note.Label != "" {
		form.Set("label", note.Label)
	}
	if note.ContentID != "" {
		form.Set("reddit_id", note.ContentID)
	}
	return c.post(ctx, "add note", "/api/mod/notes", form, &struct{}{})
}

func (c *Client) notes(ctx context.Context, op, community, user, filter string) (notesResponse, error) {
	var resp notesResponse
	err := c.get(ctx, op, "/api/mod/notes", url.Values{
		"subreddit": {community},
		"user":      {user},
		"filter":    {filter},
		"limit":     {notesLimit},
	}, &resp)
	return resp, err
}

// Annotations lists notes newest first.
func (c *Client) Annotations(ctx context.Context, community, user string) ([]platform.Annotation, error) {
	resp, err := c.notes(ctx, "list notes", community, user, "NOTE")
	if err != nil {
		return nil, err
	}
	out := make([]platform.Annotation, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		out = append(out, platform.Annotation{
			Text:      n.UserNoteData.Note,
			Label:     n.UserNoteData.Label,
			URL:       noteURL(n.UserNoteData.RedditID),
			CreatedAt: time.Unix(n.CreatedAt, 0).UTC(),
		})
	}
	return out, nil
}

func (c *Client) RestrictionHistory(ctx context.Context, community, user string) ([]platform.RestrictionEvent, error) {
	resp, err := c.notes(ctx, "list bans", community, user, "BAN")
	if err != nil {
		return nil, err
	}
	out := make([]platform.RestrictionEvent, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		out = append(out, platform.RestrictionEvent{
			Action:  n.ModActionData.Action,
			Details: n.ModActionData.Details,
		})
	}
	return out, nil
}

func (c *Client) Restrict(ctx context.Context, community string, r platform.Restriction) error {
	form := url.Values{
		"api_type":   {"json"},
		"type":       {"banned"},
		"name":       {r.User},
		"ban_reason": {truncate(r.Reason, 100)},
		"note":       {truncate(r.Note, 300)},
	}
	if !r.Permanent {
		form.Set("duration", strconv.Itoa(r.Days))
	}
	return c.post(ctx, "ban", "/r/"+community+"/api/friend", form, &struct{}{})
}

func (c *Client) SendMessage(ctx context.Context, user, subject, body string) error {
	return c.post(ctx, "compose", "/api/compose", url.Values{
		"api_type": {"json"},
		"to":       {user},
		"subject":  {subject},
		"text":     {body},
	}, &struct{}{})
}

func (c *Client) Moderators(ctx context.Context, community string) ([]platform.Moderator, error) {
	var l userList
	if err := c.get(ctx, "moderators", "/r/"+community+"/about/moderators", nil, &l); err != nil {
		return nil, err
	}
	out := make([]platform.Moderator, 0, len(l.Data.Children))
	for _, m := range l.Data.Children {
		out = append(out, platform.Moderator{Name: m.Name, Permissions: m.Permissions})
	}
	return out, nil
}

func (c *Client) Rules(ctx context.Context, community string) ([]platform.Rule, error) {
	var resp rulesResponse
	if err := c.get(ctx, "rules", "/r/"+community+"/about/rules", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]platform.Rule, 0, len(resp.Rules))
	for _, r := range resp.Rules {
		out = append(out, platform.Rule{
			Priority:    r.Priority,
			ShortName:   r.ShortName,
			Description: r.Description,
		})
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	// keep the cut on a rune boundary
	return strings.ToValidUTF8(s, "")
}
