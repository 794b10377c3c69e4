// Package gateway asks an LLM provider to expand a goal into reminder
// candidates and classifies every failure into a GatewayError.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/api"
	"github.com/notexe/motivator/internal/bounded"
	"github.com/notexe/motivator/internal/reminder"
	"github.com/notexe/motivator/internal/settings"
)

const (
	DefaultTimeout = 30 * time.Second

	maxGreetingLength = 20
)

// Result is a parsed, not yet validated, AI plan.
type Result struct {
	Strategy             string
	RecommendedTimeframe string
	Candidates           []reminder.Candidate
}

// ProviderFactory returns the provider to use for one call. It is resolved
// per call so an API key saved at runtime takes effect immediately.
type ProviderFactory func(ctx context.Context) (api.Provider, error)

// Static always returns p.
func Static(p api.Provider) ProviderFactory {
	return func(context.Context) (api.Provider, error) { return p, nil }
}

// Keyed builds providers with the key returned by key and reuses the last
// one until the key changes.
func Keyed(key func(ctx context.Context) string, build func(apiKey string) (api.Provider, error)) ProviderFactory {
	var (
		mu      sync.Mutex
		current api.Provider
		lastKey string
	)
	return func(ctx context.Context) (api.Provider, error) {
		k := key(ctx)

		mu.Lock()
		defer mu.Unlock()

		if current != nil && k == lastKey {
			return current, nil
		}
		p, err := build(k)
		if err != nil {
			return nil, err
		}
		if current != nil {
			_ = current.Close()
		}
		current, lastKey = p, k
		return p, nil
	}
}

// SettingsReader supplies the user's language and model preferences.
type SettingsReader interface {
	Load(ctx context.Context) (settings.AppSettings, error)
}

type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Language    string
}

type Gateway struct {
	providers ProviderFactory
	settings  SettingsReader
	opts      Options
	logger    zerolog.Logger
}

// New builds a Gateway. prefs may be nil.
func New(providers ProviderFactory, prefs SettingsReader, opts Options, logger zerolog.Logger) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Language == "" {
		opts.Language = settings.DefaultLanguage
	}
	return &Gateway{
		providers: providers,
		settings:  prefs,
		opts:      opts,
		logger:    logger.With().Str("component", "gateway").Logger(),
	}
}

// RequestCandidates asks the provider for a plan. timeframeHint may be empty,
// in which case the model is asked to suggest one.
func (g *Gateway) RequestCandidates(ctx context.Context, goal, timeframeHint string) (*Result, error) {
	language, model := g.preferences(ctx)

	content, err := g.send(ctx, model, api.MessageRequest{
		System:   planSystemPrompt,
		Messages: []api.Message{{Role: "user", Content: buildPlanPrompt(goal, timeframeHint, language)}},
		Format:   "json",
	})
	if err != nil {
		return nil, err
	}

	result, err := parsePlan(content)
	if err != nil {
		g.logger.Warn().Err(err).Int("length", len(content)).Msg("unparseable plan")
		return nil, err
	}

	g.logger.Info().
		Int("candidates", len(result.Candidates)).
		Str("recommended_timeframe", result.RecommendedTimeframe).
		Msg("plan received")
	return result, nil
}

// TestConnection reports whether the provider answers at all.
func (g *Gateway) TestConnection(ctx context.Context) bool {
	_, model := g.preferences(ctx)

	content, err := g.send(ctx, model, api.MessageRequest{
		Messages: []api.Message{{Role: "user", Content: connectionPrompt}},
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("connection test failed")
		return false
	}
	return strings.TrimSpace(content) != ""
}

// Greeting returns a short greeting for timeOfDay ("morning", "evening", ...).
func (g *Gateway) Greeting(ctx context.Context, timeOfDay string) (string, error) {
	language, model := g.preferences(ctx)

	content, err := g.send(ctx, model, api.MessageRequest{
		Messages: []api.Message{{
			Role:    "user",
			Content: fmt.Sprintf(greetingPrompt, timeOfDay, languageName(language)),
		}},
	})
	if err != nil {
		return "", err
	}

	greeting := cleanGreeting(content)
	if n := utf8.RuneCountInString(greeting); n == 0 || n > maxGreetingLength {
		return "", unparseable("invalid greeting %q", greeting)
	}
	return greeting, nil
}

func (g *Gateway) preferences(ctx context.Context) (language, model string) {
	language, model = g.opts.Language, g.opts.Model
	if g.settings == nil {
		return language, model
	}

	prefs, err := g.settings.Load(ctx)
	if err != nil {
		g.logger.Debug().Err(err).Msg("using configured AI preferences")
		return language, model
	}
	if prefs.AI.Language != "" {
		language = prefs.AI.Language
	}
	if prefs.AI.Model != "" {
		model = prefs.AI.Model
	}
	return language, model
}

// send performs one bounded provider call and classifies any failure.
func (g *Gateway) send(ctx context.Context, model string, req api.MessageRequest) (string, error) {
	provider, err := g.providers(ctx)
	if err != nil {
		return "", &GatewayError{Kind: KindAuthInvalid, Err: err}
	}

	req.Model = model
	req.MaxTokens = g.opts.MaxTokens
	req.Temperature = g.opts.Temperature

	start := time.Now()
	resp, err := bounded.Call(ctx, g.opts.Timeout, func(ctx context.Context) (*api.MessageResponse, error) {
		return provider.SendMessage(ctx, req)
	})
	if err != nil {
		gwErr := classify(err)
		g.logger.Warn().
			Str("provider", provider.Name()).
			Str("kind", string(gwErr.Kind)).
			Err(err).
			Msg("provider call failed")
		return "", gwErr
	}

	g.logger.Debug().
		Str("provider", provider.Name()).
		Dur("elapsed", time.Since(start)).
		Int("input_tokens", resp.Usage.InputTokens).
		Int("output_tokens", resp.Usage.OutputTokens).
		Msg("provider call finished")
	return resp.Content, nil
}
