// Package reddit implements platform.API and platform.Feed on top of the
// Reddit OAuth API.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Farengier/usernotes-bot/internal/platform"
	"golang.org/x/oauth2"
)

const (
	apiBase  = "https://oauth.reddit.com"
	tokenURL = "https://www.reddit.com/api/v1/access_token"

	requestTimeout = 30 * time.Second
	defaultPoll    = 10 * time.Second
)

type Config interface {
	ClientID() string
	ClientSecret() string
	Username() string
	Password() string
	UserAgent() string
	PollInterval() time.Duration
}

type Client struct {
	http *http.Client
	base string
	poll time.Duration
}

// New logs in with the script-app password grant. Tokens are fetched
// again whenever they expire.
func New(cfg Config) *Client {
	base := &http.Client{
		Timeout:   requestTimeout,
		Transport: &uaTransport{ua: cfg.UserAgent(), base: http.DefaultTransport},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	src := &passwordSource{
		ctx: ctx,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID(),
			ClientSecret: cfg.ClientSecret(),
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		username: cfg.Username(),
		password: cfg.Password(),
	}

	hc := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, src))
	hc.Timeout = requestTimeout
	return NewWithHTTP(apiBase, hc, cfg.PollInterval())
}

// NewWithHTTP uses an already authenticated client against base.
func NewWithHTTP(base string, hc *http.Client, poll time.Duration) *Client {
	if poll <= 0 {
		poll = defaultPoll
	}
	return &Client{
		http: hc,
		base: strings.TrimRight(base, "/"),
		poll: poll,
	}
}

type passwordSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (p *passwordSource) Token() (*oauth2.Token, error) {
	tok, err := p.conf.PasswordCredentialsToken(p.ctx, p.username, p.password)
	if err != nil {
		return nil, fmt.Errorf("reddit login as %s failed: %w", p.username, err)
	}
	return tok, nil
}

type uaTransport struct {
	ua   string
	base http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.base.RoundTrip(r)
}

func (c *Client) get(ctx context.Context, op, path string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("raw_json", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path+"?"+q.Encode(), nil)
	if err != nil {
		return platform.NewError(platform.KindUnclassified, op, err)
	}
	return c.do(op, req, out)
}

func (c *Client) post(ctx context.Context, op, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return platform.NewError(platform.KindUnclassified, op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return platform.Transient(op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if err := classify(op, resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return platform.Transient(op, fmt.Errorf("reading body: %w", err))
	}
	if err := apiErrors(op, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return platform.NewError(platform.KindUnclassified, op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func classify(op string, resp *http.Response) error {
	code := resp.StatusCode
	if code < 400 {
		return nil
	}
	err := fmt.Errorf("http %d", code)
	switch {
	case code == http.StatusTooManyRequests || code >= 500:
		return platform.Transient(op, err)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return platform.NewError(platform.KindAuthorization, op, err)
	case code == http.StatusNotFound:
		return platform.Resolution(op, err)
	default:
		return platform.NewError(platform.KindUnclassified, op, err)
	}
}

// apiErrors reads the errors array of api_type=json responses.
func apiErrors(op string, body []byte) error {
	var env struct {
		JSON struct {
			Errors [][]any `json:"errors"`
		} `json:"json"`
	}
	if json.Unmarshal(body, &env) != nil || len(env.JSON.Errors) == 0 {
		return nil
	}
	first := env.JSON.Errors[0]
	parts := make([]string, 0, len(first))
	for _, p := range first {
		parts = append(parts, fmt.Sprint(p))
	}
	err := fmt.Errorf("api error: %s", strings.Join(parts, ": "))
	if len(parts) > 0 && parts[0] == "RATELIMIT" {
		return platform.Transient(op, err)
	}
	return platform.NewError(platform.KindUnclassified, op, err)
}
