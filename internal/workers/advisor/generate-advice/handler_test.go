package generateadvice

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"university-matcher/internal/advisor"
	apperrors "university-matcher/internal/common/errors"
	"university-matcher/internal/common/logger"
)

type fakeAdvisor struct {
	prefs   *advisor.CampusCulturePreferences
	feature advisor.Feature
	input   json.RawMessage
	content string
	err     error
}

func (f *fakeAdvisor) MatchCampusCulture(_ context.Context, p advisor.CampusCulturePreferences) (string, error) {
	f.prefs = &p
	return f.content, f.err
}

func (f *fakeAdvisor) Advise(_ context.Context, feature advisor.Feature, input json.RawMessage) (string, error) {
	f.feature, f.input = feature, input
	return f.content, f.err
}

func TestExecute_RelayFeature(t *testing.T) {
	f := &fakeAdvisor{content: "Check the lab requirements."}
	h := NewHandler(LoadConfig(), f, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Feature: " Prerequisites ",
		Input:   json.RawMessage(`"Mechanical Engineering"`),
	})
	require.NoError(t, err)

	assert.Equal(t, advisor.Feature("prerequisites"), f.feature)
	assert.JSONEq(t, `"Mechanical Engineering"`, string(f.input))
	assert.Equal(t, "prerequisites", out.Feature)
	assert.Equal(t, "Check the lab requirements.", out.Content)
}

func TestExecute_CampusCultureMatch(t *testing.T) {
	f := &fakeAdvisor{content: "Try Reed College."}
	h := NewHandler(LoadConfig(), f, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Feature:     CampusCultureMatch,
		Preferences: &advisor.CampusCulturePreferences{CampusEnvironment: "urban"},
	})
	require.NoError(t, err)
	require.NotNil(t, f.prefs)
	assert.Equal(t, "urban", f.prefs.CampusEnvironment)
	assert.Equal(t, "Try Reed College.", out.Content)
}

func TestExecute_Invalid(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeAdvisor{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Feature: "horoscope", Input: json.RawMessage(`"x"`)})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)

	_, err = h.Execute(context.Background(), &Input{Feature: CampusCultureMatch})
	stdErr, ok = apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)
}

func TestExecute_UpstreamFailure(t *testing.T) {
	f := &fakeAdvisor{err: apperrors.NewLLMTimeoutError("deadline exceeded")}
	h := NewHandler(LoadConfig(), f, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Feature: "virtual-tour", Input: json.RawMessage(`"MIT"`)})
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeLLMTimeout, stdErr.Code)
	assert.Equal(t, 1, apperrors.GetRetryCount(stdErr.Code))
}
