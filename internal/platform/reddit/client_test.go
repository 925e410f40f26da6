package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Farengier/usernotes-bot/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	form   url.Values
}

type server struct {
	t        *testing.T
	mtx      sync.Mutex
	requests []recorded
	routes   map[string]func(w http.ResponseWriter, r *http.Request)
	srv      *httptest.Server
}

func newServer(t *testing.T) *server {
	s := &server{t: t, routes: map[string]func(http.ResponseWriter, *http.Request){}}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		s.mtx.Lock()
		s.requests = append(s.requests, recorded{method: r.Method, path: r.URL.Path, form: r.Form})
		h, ok := s.routes[r.Method+" "+r.URL.Path]
		s.mtx.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *server) json(route, body string) {
	s.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, body)
	}
}

func (s *server) status(route string, code int) {
	s.routes[route] = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}

func (s *server) last() recorded {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.requests[len(s.requests)-1]
}

func (s *server) client() *Client {
	return NewWithHTTP(s.srv.URL, s.srv.Client(), 5*time.Millisecond)
}

func TestContent(t *testing.T) {
	s := newServer(t)
	s.json("GET /api/info", `{"data":{"children":[{"kind":"t1","data":{"id":"abc","name":"t1_abc","author":"[deleted]","permalink":"/r/x/comments/p/t/abc/"}}]}}`)

	c, err := s.client().Content(context.Background(), "t1_abc")
	require.NoError(t, err)
	assert.Equal(t, platform.Content{ID: "abc", Fullname: "t1_abc", Permalink: "/r/x/comments/p/t/abc/", IsComment: true}, c)
	assert.Equal(t, "t1_abc", s.last().form.Get("id"))
	assert.Equal(t, "1", s.last().form.Get("raw_json"))
}

func TestContentNotFound(t *testing.T) {
	s := newServer(t)
	s.json("GET /api/info", `{"data":{"children":[]}}`)

	_, err := s.client().Content(context.Background(), "t3_gone")
	assert.Equal(t, platform.KindResolution, platform.KindOf(err))
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		code int
		kind platform.Kind
	}{
		{http.StatusTooManyRequests, platform.KindTransient},
		{http.StatusBadGateway, platform.KindTransient},
		{http.StatusForbidden, platform.KindAuthorization},
		{http.StatusUnauthorized, platform.KindAuthorization},
		{http.StatusNotFound, platform.KindResolution},
		{http.StatusBadRequest, platform.KindUnclassified},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			s := newServer(t)
			s.status("POST /api/remove", tt.code)

			err := s.client().Remove(context.Background(), "t1_abc")
			require.Error(t, err)
			assert.Equal(t, tt.kind, platform.KindOf(err))
		})
	}
}

func TestRemoveForm(t *testing.T) {
	s := newServer(t)
	s.json("POST /api/remove", `{}`)

	require.NoError(t, s.client().Remove(context.Background(), "t3_p"))
	assert.Equal(t, "t3_p", s.last().form.Get("id"))
	assert.Equal(t, "false", s.last().form.Get("spam"))
}

func TestRateLimitAPIErrorIsTransient(t *testing.T) {
	s := newServer(t)
	s.json("POST /api/compose", `{"json":{"errors":[["RATELIMIT","you are doing that too much","ratelimit"]]}}`)

	err := s.client().SendMessage(context.Background(), "alice", "s", "b")
	require.Error(t, err)
	assert.True(t, platform.IsTransient(err))
	assert.Contains(t, err.Error(), "you are doing that too much")
}

func TestOtherAPIErrorIsUnclassified(t *testing.T) {
	s := newServer(t)
	s.json("POST /api/compose", `{"json":{"errors":[["USER_DOESNT_EXIST","that user doesn't exist","to"]]}}`)

	err := s.client().SendMessage(context.Background(), "ghost", "s", "b")
	assert.Equal(t, platform.KindUnclassified, platform.KindOf(err))
}

func TestReply(t *testing.T) {
	s := newServer(t)
	s.json("POST /api/comment", `{"json":{"errors":[],"data":{"things":[{"kind":"t1","data":{"id":"r1","name":"t1_r1"}}]}}}`)

	id, err := s.client().Reply(context.Background(), "t3_p", "removed")
	require.NoError(t, err)
	assert.Equal(t, "t1_r1", id)
	assert.Equal(t, "t3_p", s.last().form.Get("thing_id"))
	assert.Equal(t, "removed", s.last().form.Get("text"))
}

func TestDistinguishAndLock(t *testing.T) {
	s := newServer(t)
	s.json("POST /api/distinguish", `{"json":{"errors":[]}}`)
	s.json("POST /api/lock", `{}`)
	c := s.client()

	require.NoError(t, c.Distinguish(context.Background(), "t1_r1", true))
	assert.Equal(t, "true", s.last().form.Get("sticky"))
	assert.Equal(t, "yes", s.last().form.Get("how"))
	require.NoError(t, c.Lock(context.Background(), "t1_r1"))
	assert.Equal(t, "/api/lock", s.last().path)
}

func TestRestrict(t *testing.T) {
	s := newServer(t)
	s.json("POST /r/collapse/api/friend", `{"json":{"errors":[]}}`)
	c := s.client()

	require.NoError(t, c.Restrict(context.Background(), "collapse", platform.Restriction{User: "u", Days: 3, Reason: "R1", Note: "n"}))
	form := s.last().form
	assert.Equal(t, "banned", form.Get("type"))
	assert.Equal(t, "u", form.Get("name"))
	assert.Equal(t, "3", form.Get("duration"))
	assert.Equal(t, "R1", form.Get("ban_reason"))

	require.NoError(t, c.Restrict(context.Background(), "collapse", platform.Restriction{User: "u", Permanent: true}))
	_, hasDuration := s.last().form["duration"]
	assert.False(t, hasDuration)
}

func TestNotes(t *testing.T) {
	s := newServer(t)
	s.routes["GET /api/mod/notes"] = func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filter") == "BAN" {
			_, _ = fmt.Fprint(w, `{"mod_notes":[{"mod_action_data":{"action":"banuser","details":"7 days"}}]}`)
			return
		}
		_, _ = fmt.Fprint(w, `{"mod_notes":[
			{"created_at":1700000000,"user_note_data":{"note":"R1","label":"BAN","reddit_id":"t3_post1"}},
			{"created_at":1600000000,"user_note_data":{"note":"old"}}]}`)
	}
	s.json("POST /api/mod/notes", `{"created":{}}`)
	c := s.client()

	notes, err := c.Annotations(context.Background(), "collapse", "spammer")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "https://www.reddit.com/by_id/t3_post1", notes[0].URL)
	assert.Contains(t, notes[0].URL, "post1")
	assert.Equal(t, "", notes[1].URL)
	assert.Equal(t, int64(1700000000), notes[0].CreatedAt.Unix())

	history, err := c.RestrictionHistory(context.Background(), "collapse", "spammer")
	require.NoError(t, err)
	assert.Equal(t, []platform.RestrictionEvent{{Action: "banuser", Details: "7 days"}}, history)

	require.NoError(t, c.AddAnnotation(context.Background(), "collapse", platform.NewAnnotation{User: "spammer", Text: "R1: x", ContentID: "t3_post1"}))
	form := s.last().form
	assert.Equal(t, "R1: x", form.Get("note"))
	assert.Equal(t, "t3_post1", form.Get("reddit_id"))
	_, hasLabel := form["label"]
	assert.False(t, hasLabel)
}

func TestModeratorsAndRules(t *testing.T) {
	s := newServer(t)
	s.json("GET /r/collapse/about/moderators", `{"kind":"UserList","data":{"children":[{"name":"alice","mod_permissions":["all"]},{"name":"bob","mod_permissions":["posts","mail"]}]}}`)
	s.json("GET /r/collapse/about/rules", `{"rules":[{"short_name":"Be civil","description":"d1","priority":0},{"short_name":"No spam","description":"d2","priority":1}]}`)
	c := s.client()

	mods, err := c.Moderators(context.Background(), "collapse")
	require.NoError(t, err)
	assert.Equal(t, []platform.Moderator{
		{Name: "alice", Permissions: []string{"all"}},
		{Name: "bob", Permissions: []string{"posts", "mail"}},
	}, mods)

	rules, err := c.Rules(context.Background(), "collapse")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, platform.Rule{Priority: 1, ShortName: "No spam", Description: "d2"}, rules[1])
}

func TestUserAgentTransport(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	hc := &http.Client{Transport: &uaTransport{ua: "linux:usernotes-bot:v1", base: http.DefaultTransport}}
	resp, err := hc.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "linux:usernotes-bot:v1", got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "a", truncate("aé", 2))
}

func TestStream(t *testing.T) {
	s := newServer(t)
	var mtx sync.Mutex
	poll := 0
	s.routes["GET /r/collapse/comments"] = func(w http.ResponseWriter, _ *http.Request) {
		mtx.Lock()
		poll++
		n := poll
		mtx.Unlock()
		switch n {
		case 1:
			_, _ = fmt.Fprint(w, `{"data":{"children":[
				{"kind":"t1","data":{"id":"c2","name":"t1_c2","author":"bob","body":".n 1","parent_id":"t3_p","subreddit":"collapse"}},
				{"kind":"t1","data":{"id":"c1","name":"t1_c1","author":"alice","body":"hi","parent_id":"t3_p","subreddit":"collapse"}}]}}`)
		case 2:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_, _ = fmt.Fprint(w, `{"data":{"children":[
				{"kind":"t1","data":{"id":"c3","name":"t1_c3","author":"[deleted]","removed":true,"subreddit":"collapse"}},
				{"kind":"t1","data":{"id":"c2","name":"t1_c2","author":"bob","body":".n 1","parent_id":"t3_p","subreddit":"collapse"}}]}}`)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []platform.Comment
	err := s.client().Stream(ctx, "collapse", func(c platform.Comment) {
		got = append(got, c)
		if len(got) == 3 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 3)
	assert.Equal(t, "t1_c1", got[0].Fullname)
	assert.Equal(t, "t1_c2", got[1].Fullname)
	assert.Equal(t, "t1_c3", got[2].Fullname)
	assert.Equal(t, "", got[2].Author)
	assert.True(t, got[2].Removed)
	assert.Equal(t, "collapse", got[1].Community)
}

func TestStreamEndsOnPermanentError(t *testing.T) {
	s := newServer(t)
	s.status("GET /r/private/comments", http.StatusForbidden)

	err := s.client().Stream(context.Background(), "private", func(platform.Comment) {})
	require.Error(t, err)
	assert.Equal(t, platform.KindAuthorization, platform.KindOf(err))
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestSeenRing(t *testing.T) {
	s := newSeen(2)
	assert.True(t, s.add("a"))
	assert.False(t, s.add("a"))
	assert.True(t, s.add("b"))
	assert.True(t, s.add("c"))
	assert.True(t, s.add("a"), "a was evicted")
	assert.False(t, s.add("c"))
}
