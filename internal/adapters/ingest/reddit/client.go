// Package reddit is an app-only OAuth client for the Reddit listing API.
//
// Every HTTP call is a single attempt. Throttling surfaces as
// perr.ErrorCodeTooManyRequests and the paging helpers in source.go run each
// page fetch through the shared retry loop.
package reddit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/retry"
)

const (
	baseURLDefault  = "https://oauth.reddit.com"
	authURLDefault  = "https://www.reddit.com/api/v1/access_token"
	webURL          = "https://www.reddit.com"
	defaultTimeout  = 15 * time.Second
	defaultUA       = "subshift/0.1 (research scraper)"
	defaultPageSize = 100
	maxBody         = 8 << 20
	tokenSkew       = time.Minute
)

// Options configures the Client
type Options struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
	BaseURL      string
	AuthURL      string
	Timeout      time.Duration
	PageSize     int

	// Retry bounds the throttling loop used by the paging helpers
	Retry retry.Policy
}

// FromConfig reads REDDIT_* settings; credentials come from env or an untracked .env
func FromConfig(cfg config.Conf) Options {
	rc := cfg.Prefix("REDDIT_")
	return Options{
		ClientID:     rc.MayString("CLIENT_ID", ""),
		ClientSecret: rc.MayString("CLIENT_SECRET", ""),
		UserAgent:    rc.MayString("USER_AGENT", defaultUA),
		BaseURL:      rc.MayString("BASE_URL", baseURLDefault),
		AuthURL:      rc.MayString("AUTH_URL", authURLDefault),
		Timeout:      rc.MayDuration("TIMEOUT", defaultTimeout),
		PageSize:     rc.MayInt("PAGE_SIZE", defaultPageSize),
		Retry:        retry.FromConfig(cfg),
	}
}

// Client talks to Reddit with an application-only bearer token
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewClient creates a new Client with defaults filled in
func NewClient(o Options) *Client {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.AuthURL == "" {
		o.AuthURL = authURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PageSize <= 0 || o.PageSize > defaultPageSize {
		o.PageSize = defaultPageSize
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	return &Client{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named("reddit"),
		now:  time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// bearer returns a cached token, fetching a new one when close to expiry
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiry.Add(-tokenSkew)) {
		return c.token, nil
	}
	if c.opts.ClientID == "" || c.opts.ClientSecret == "" {
		return "", perr.New(perr.ErrorCodeUnauthorized, "reddit credentials missing: set REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET")
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "reddit token request")
	}
	req.SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "reddit token fetch failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp, "token")
	}

	var tr tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&tr); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "reddit token decode")
	}
	if tr.AccessToken == "" {
		return "", perr.Newf(perr.ErrorCodeUnauthorized, "reddit token rejected: %s", tr.Error)
	}
	c.token = tr.AccessToken
	c.expiry = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	c.log.Debug().Int("expires_in_s", tr.ExpiresIn).Msg("reddit token refreshed")
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// getJSON issues one GET against the OAuth host and decodes the body into out
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	tok, err := c.bearer(ctx)
	if err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("raw_json", "1")
	u := c.opts.BaseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "reddit new request failed")
	}
	req.Header.Set("Authorization", "bearer "+tok)
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "reddit GET %s failed", path)
	}
	defer func() {
		if cerr := drainAndClose(resp.Body); cerr != nil {
			c.log.Debug().Err(cerr).Str("path", path).Msg("reddit close body failed")
		}
	}()

	rl := parseRateHeaders(resp.Header)
	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Float64("rate_used", rl.used).
		Float64("rate_remaining", rl.remaining).
		Dur("rate_reset", rl.reset).
		Msg("reddit http response")

	if resp.StatusCode == http.StatusUnauthorized {
		c.dropToken()
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp, path)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "reddit decode %s", path)
	}
	return nil
}
