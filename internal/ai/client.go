package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

const (
	DefaultModel = "gpt-4o-mini"
	temperature  = 0.3

	keyPrefix    = "sk-"
	minKeyLength = 50
)

// Completer is the single chat-completion call the client needs.
// *openai.Client satisfies it.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained number of upstream calls per second;
	// zero disables local limiting.
	RateLimit float64
	Burst     int
}

// Client performs analyses. It never returns an error: every failure turns
// into the fallback result of the requested kind.
type Client struct {
	enabled   bool
	model     string
	timeout   time.Duration
	completer Completer
	limiter   *rate.Limiter
	metrics   *Metrics
	logger    logging.Logger
}

type Option func(*Client)

// WithCompleter replaces the go-openai backend.
func WithCompleter(c Completer) Option {
	return func(cl *Client) { cl.completer = c }
}

func WithLimiter(l *rate.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

func WithMetrics(m *Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

// ValidKey reports whether key looks like a usable API credential.
func ValidKey(key string) bool {
	return strings.HasPrefix(key, keyPrefix) && len(key) >= minKeyLength
}

// NewClient checks the credential once. A missing or malformed key disables
// live calls for the lifetime of the client.
func NewClient(cfg Config, logger logging.Logger, opts ...Option) *Client {
	logger = logger.With("module", "ai")

	c := &Client{
		enabled: ValidKey(cfg.APIKey),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	for _, o := range opts {
		o(c)
	}

	switch {
	case cfg.APIKey == "":
		logger.Warn(context.Background(), "api key not set, analyses will use fallback data")
	case !c.enabled:
		logger.Warn(context.Background(), "api key looks invalid, analyses will use fallback data",
			"expected", "sk-... (50+ characters)", "length", len(cfg.APIKey))
	}

	if c.enabled && c.completer == nil {
		oc := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			oc.BaseURL = cfg.BaseURL
		}
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
		c.completer = openai.NewClientWithConfig(oc)
	}

	return c
}

// Enabled reports whether live calls are attempted.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Analyze runs one analysis of text. The result is never malformed; on any
// failure it is Fallback(kind).
func (c *Client) Analyze(ctx context.Context, kind Kind, text string) (res Result) {
	log := c.logger.With("kind", string(kind))

	defer func() {
		if p := recover(); p != nil {
			log.Error(ctx, "analysis panicked", "panic", fmt.Sprint(p))
			c.metrics.observe(kind, OutcomeError)
			res = Fallback(kind)
		}
	}()

	if !c.enabled {
		c.metrics.observe(kind, OutcomeDisabled)
		return Fallback(kind)
	}
	if c.limiter != nil && !c.limiter.Allow() {
		log.Warn(ctx, "local rate limit reached, using fallback")
		c.metrics.observe(kind, OutcomeRateLimited)
		return Fallback(kind)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.completer.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(kind, text)},
		},
		MaxTokens:   kind.maxTokens(),
		Temperature: temperature,
	})
	if err != nil {
		outcome := classify(err)
		log.Warn(ctx, "completion failed, using fallback", "outcome", outcome, "error", err)
		c.metrics.observe(kind, outcome)
		return Fallback(kind)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		log.Warn(ctx, "completion returned no content, using fallback")
		c.metrics.observe(kind, OutcomeEmpty)
		return Fallback(kind)
	}

	parsed, err := parseResponse(kind, resp.Choices[0].Message.Content)
	if err != nil {
		log.Warn(ctx, "completion response rejected, using fallback", "error", err)
		c.metrics.observe(kind, OutcomeMalformed)
		return Fallback(kind)
	}

	c.metrics.observe(kind, OutcomeOK)
	return parsed
}

func (c *Client) Summary(ctx context.Context, text string) Summary {
	return *c.Analyze(ctx, KindSummary, text).Summary
}

func (c *Client) Tags(ctx context.Context, text string) Tags {
	return *c.Analyze(ctx, KindTags, text).Tags
}

func (c *Client) Grammar(ctx context.Context, text string) []GrammarError {
	return c.Analyze(ctx, KindGrammar, text).Grammar
}

func (c *Client) Glossary(ctx context.Context, text string) []GlossaryTerm {
	return c.Analyze(ctx, KindGlossary, text).Glossary
}

func classify(err error) string {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusTooManyRequests:
		return OutcomeQuota
	case http.StatusUnauthorized, http.StatusForbidden:
		return OutcomeAuth
	}
	return OutcomeError
}
