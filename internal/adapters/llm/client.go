// Package llm is a thin chat-completion client over the OpenAI API.
// One call is one attempt; 429s come back as perr.ErrorCodeTooManyRequests
// so callers can run them through the retry loop.
package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = openai.GPT3Dot5Turbo
	defaultMaxTokens = 50
	defaultTimeout   = 60 * time.Second
)

// Options configures the Client
type Options struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// FromConfig reads OPENAI_* settings; the key comes from env or an untracked .env
func FromConfig(cfg config.Conf) Options {
	oc := cfg.Prefix("OPENAI_")
	return Options{
		APIKey:    oc.MayString("API_KEY", ""),
		Model:     oc.MayString("MODEL", defaultModel),
		BaseURL:   oc.MayString("BASE_URL", ""),
		MaxTokens: oc.MayInt("MAX_TOKENS", defaultMaxTokens),
		Timeout:   oc.MayDuration("TIMEOUT", defaultTimeout),
	}
}

// Client sends deterministic (temperature 0) completions
type Client struct {
	api  *openai.Client
	opts Options
	log  logger.Logger
}

// New builds a Client; a missing key is an Unauthorized error
func New(o Options) (*Client, error) {
	if strings.TrimSpace(o.APIKey) == "" {
		return nil, perr.New(perr.ErrorCodeUnauthorized, "llm: OPENAI_API_KEY is not set")
	}
	if o.Model == "" {
		o.Model = defaultModel
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(o.BaseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: o.Timeout}
	return &Client{api: openai.NewClientWithConfig(cfg), opts: o, log: *logger.Named("llm")}, nil
}

// Model returns the configured model name
func (c *Client) Model() string { return c.opts.Model }

// Complete sends one system+user exchange and returns the trimmed reply
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: c.opts.MaxTokens,
		// temperature is omitempty upstream, so zero would mean the server default
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", mapError(err)
	}
	c.log.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("llm completion")
	if len(resp.Choices) == 0 {
		return "", perr.JSONErrf("llm: response had no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return perr.Wrapf(err, perr.CodeFromHTTPStatus(apiErr.HTTPStatusCode), "llm: api status %d", apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return perr.Wrapf(err, perr.CodeFromHTTPStatus(reqErr.HTTPStatusCode), "llm: request status %d", reqErr.HTTPStatusCode)
	}
	return perr.Wrap(err, perr.ErrorCodeUnavailable, "llm: request failed")
}
