package advisor

import (
	"context"
	"encoding/json"
	"time"

	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/metrics"
	"university-matcher/internal/common/observability"
)

// Completer is the chat completion call the advisor depends on.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

type Advisor struct {
	completer Completer
}

func New(c Completer) *Advisor {
	return &Advisor{completer: c}
}

// MatchCampusCulture suggests universities for a campus culture profile.
func (a *Advisor) MatchCampusCulture(ctx context.Context, p CampusCulturePreferences) (string, error) {
	return a.complete(ctx, FeatureCampusCulture, campusCulturePrompt(p), campusCultureMaxTokens)
}

// Advise runs one feature prompt over the caller's input.
func (a *Advisor) Advise(ctx context.Context, feature Feature, input json.RawMessage) (string, error) {
	if _, ok := featureTemplates[feature]; !ok {
		return "", apperrors.NewInvalidRequestError("unknown advisor feature: " + string(feature))
	}
	if len(input) == 0 || string(input) == "null" {
		return "", apperrors.NewInvalidRequestError("advisor input is required")
	}
	return a.complete(ctx, feature, featurePrompt(feature, input), featureMaxTokens)
}

func (a *Advisor) complete(ctx context.Context, feature Feature, prompt string, maxTokens int) (content string, err error) {
	ctx, end := observability.StartSpan(ctx, "advisor.complete")
	defer func() { end(err) }()

	start := time.Now()
	content, err = a.completer.Complete(ctx, []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, maxTokens)
	metrics.LLMRequestDuration.WithLabelValues(string(feature)).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequests.WithLabelValues(string(feature), status).Inc()
	return content, err
}
