// Package oracle is the gateway to the generative content provider. Every
// call returns complete content: when no provider is configured, or the
// provider fails, times out, or its breaker is open, the fixed offline payload
// for the kind is returned instead.
package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"aura_oracle/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// DefaultTimeout bounds a provider call when Options.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Options configures a Gateway.
type Options struct {
	Timeout time.Duration       // Bound on one provider call
	Logger  logrus.FieldLogger  // Operator log, defaults to the standard logger
	Breaker *gobreaker.Settings // Breaker override, mainly for tests
}

// Gateway produces structured readings from a Provider.
type Gateway struct {
	provider Provider                  // Nil means offline mode
	timeout  time.Duration             // Per-call bound
	log      logrus.FieldLogger        // Operator log
	cb       *gobreaker.CircuitBreaker // Trips after repeated provider failures
}

// NewGateway wraps p. A nil p puts the gateway in offline mode.
func NewGateway(p Provider, opts Options) *Gateway {
	g := &Gateway{provider: p, timeout: opts.Timeout, log: opts.Logger}
	if g.timeout <= 0 {
		g.timeout = DefaultTimeout // Zero or negative means default
	}
	if g.log == nil {
		g.log = logrus.StandardLogger()
	}
	settings := gobreaker.Settings{
		Name:    "content-provider",
		Timeout: 30 * time.Second, // Open state lasts this long before a trial call
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5 // Trip on the fifth failure in a row
		},
	}
	if opts.Breaker != nil {
		settings = *opts.Breaker // Caller-supplied settings
	}
	log := g.log // Captured by the state-change hook
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		log.WithFields(logrus.Fields{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("content provider breaker state changed")
	}
	g.cb = gobreaker.NewCircuitBreaker(settings)
	return g
}

// Live reports whether a provider is configured.
func (g *Gateway) Live() bool { return g.provider != nil }

// complete runs one bounded provider call through the breaker. Any failure is
// returned as ErrProviderUnavailable and logged.
func (g *Gateway) complete(ctx context.Context, p Prompt) (string, error) {
	if g.provider == nil {
		return "", domain.ErrProviderUnavailable // Offline mode
	}
	out, err := g.cb.Execute(func() (interface{}, error) {
		return g.callWithTimeout(ctx, p)
	})
	if err != nil {
		g.log.WithFields(logrus.Fields{
			"kind":    string(p.Kind),
			"breaker": g.cb.State().String(),
			"error":   err.Error(),
		}).Warn("content provider failed, using offline payload")
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	return out.(string), nil // Breaker passes the text through
}

func (g *Gateway) callWithTimeout(ctx context.Context, p Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1) // Buffered so a late provider never blocks
	go func() {
		text, err := g.provider.Complete(ctx, p)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done(): // Timeout or caller cancel
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", r.err
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return "", fmt.Errorf("empty completion for %s", p.Kind) // Counts as a failure
		}
		return text, nil
	}
}

// Generate dispatches req to the matching typed call.
func (g *Gateway) Generate(ctx context.Context, req Request) (Content, error) {
	if strings.TrimSpace(req.Question) != "" {
		a := g.Answer(ctx, req.Question) // Question wins over Kind
		return Content{Kind: req.Kind, Answer: &a}, nil
	}
	switch req.Kind {
	case domain.KindAura:
		a := g.Aura(ctx)
		return Content{Kind: req.Kind, Aura: &a}, nil
	case domain.KindTarot, domain.KindRune:
		d := g.Draw(ctx, req.Kind, req.Hint)
		return Content{Kind: req.Kind, Draw: &d}, nil
	}
	return Content{}, domain.NewValidationError(domain.CodeUnknownKind, "unknown kind: "+string(req.Kind))
}

var auraFields = []Field{
	{Key: "color", Labels: []string{"aura_color", "aura color", "color", "colour"}},
	{Key: "emotion", Labels: []string{"emotion", "mood"}},
	{Key: "keywords", Labels: []string{"keywords"}},
	{Key: "affirmation", Labels: []string{"affirmation"}},
}

// Aura generates today's aura content.
func (g *Gateway) Aura(ctx context.Context) Aura {
	text, err := g.complete(ctx, Prompt{
		Kind: domain.KindAura,
		System: "You are Miss Amara. Create a daily aura as four labeled lines: " +
			"Aura Color (CSS color words), Emotion (a few words), Keywords (3-5, comma-separated), " +
			"Affirmation (starting with 'I am').",
		User:        "Generate today's aura.",
		Temperature: 0.8,
	})
	if err != nil {
		return offlineAura() // Provider unavailable
	}
	return ParseAura(text)
}

// ParseAura extracts aura fields from provider text, defaulting missing ones.
func ParseAura(text string) Aura {
	off := offlineAura()
	v := WithDefaults(ExtractLabels(text, auraFields), map[string]string{
		"color":       off.Color,
		"emotion":     off.Emotion,
		"keywords":    off.Keywords,
		"affirmation": DefaultAffirmation,
	})
	return Aura{Color: v["color"], Emotion: v["emotion"], Keywords: v["keywords"], Affirmation: v["affirmation"]}
}

var drawFields = []Field{
	{Key: "name", Labels: []string{"name", "card", "rune"}},
	{Key: "keywords", Labels: []string{"keywords"}},
	{Key: "meaning", Labels: []string{"meaning"}},
	{Key: "affirmation", Labels: []string{"affirmation"}},
}

// Draw generates today's draw of kind, optionally around a named card or rune.
func (g *Gateway) Draw(ctx context.Context, kind domain.Kind, hint string) Draw {
	text, err := g.complete(ctx, Prompt{
		Kind: kind,
		System: "You are Miss Amara, a gentle tarot and rune guide. Return exactly four labeled lines:\n" +
			"Name: <card or rune>\nKeywords: <3-6 words>\nMeaning: <2-4 short sentences>\nAffirmation: I am ...",
		User:        fmt.Sprintf("Type: %s\nName (optional): %s\nCreate today's daily draw.", kind, hint),
		Temperature: 0.8,
	})
	if err != nil {
		return offlineDraw(kind, hint) // Provider unavailable
	}
	return ParseDraw(text, kind, hint)
}

// ParseDraw extracts draw fields from provider text. A missing name falls back
// to hint, then to the kind's offline card.
func ParseDraw(text string, kind domain.Kind, hint string) Draw {
	off := offlineDraw(kind, hint)
	v := WithDefaults(ExtractLabels(text, drawFields), map[string]string{
		"name":        off.Name,
		"keywords":    off.Keywords,
		"meaning":     off.Meaning,
		"affirmation": DefaultAffirmation,
	})
	return Draw{Name: v["name"], Keywords: v["keywords"], Meaning: v["meaning"], Affirmation: v["affirmation"]}
}

var answerFields = []Field{
	{Key: "affirmation", Labels: []string{"affirmation"}},
	{Key: "tags", Labels: []string{"tags"}},
	{Key: "card", Labels: []string{"primary card"}},
}

// Answer answers a free-form question.
func (g *Gateway) Answer(ctx context.Context, question string) Answer {
	text, err := g.complete(ctx, Prompt{
		Kind: "answer",
		System: "You are Miss Amara, a compassionate tarot guide. Offer grounded, kind insights in plain language. " +
			"Never give medical, legal or financial advice. Optionally start with a line 'Primary Card: <Name>'. " +
			"End with a line 'Affirmation: I am ...' and a line 'Tags: <3 lowercase tags, comma-separated>'.",
		User:        fmt.Sprintf("Question: %s\nRespond in 3-5 short paragraphs, then provide an affirmation and tags.", question),
		Temperature: 0.8,
	})
	if err != nil {
		return offlineAnswer() // Provider unavailable
	}
	return ParseAnswer(text)
}

// ParseAnswer splits provider text into body, affirmation, tags and an
// optional primary card. Affirmation and tags lines are removed from the body.
func ParseAnswer(text string) Answer {
	off := offlineAnswer()
	labels := ExtractLabels(text, answerFields)

	var body []string
	for _, line := range strings.Split(text, "\n") {
		if label, _, ok := splitLabeled(line); ok && (label == "affirmation" || label == "tags") {
			continue // Strip from body
		}
		body = append(body, line)
	}
	a := Answer{
		Body:        strings.TrimSpace(strings.Join(body, "\n")),
		Affirmation: labels["affirmation"],
		Tags:        NormalizeTags(labels["tags"]),
		PrimaryCard: labels["card"],
	}
	if a.Body == "" {
		a.Body = off.Body // Only labels came back
	}
	if a.Affirmation == "" {
		a.Affirmation = DefaultAffirmation // No affirmation line
	}
	if a.Tags == "" {
		a.Tags = off.Tags // No tags line
	}
	return a
}

// Ritual suggests one short ritual for day.
func (g *Gateway) Ritual(ctx context.Context, day string) string {
	text, err := g.complete(ctx, Prompt{
		Kind:        "ritual",
		System:      "You are Miss Amara. Provide one short ritual suggestion for today (1-2 sentences).",
		User:        fmt.Sprintf("Today's date is %s. Offer something gentle and universal.", day),
		Temperature: 0.7,
	})
	if err != nil {
		return offlineRitual // Provider unavailable
	}
	return text
}
