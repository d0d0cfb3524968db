package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "university-matcher/internal/common/errors"
)

type recordingCompleter struct {
	messages  []Message
	maxTokens int
	reply     string
	err       error
}

func (r *recordingCompleter) Complete(_ context.Context, messages []Message, maxTokens int) (string, error) {
	r.messages = messages
	r.maxTokens = maxTokens
	return r.reply, r.err
}

func TestAdvisor_MatchCampusCulture(t *testing.T) {
	rc := &recordingCompleter{reply: "1. Analysis..."}
	a := New(rc)

	out, err := a.MatchCampusCulture(context.Background(), CampusCulturePreferences{
		SocialPreferences:   "small groups",
		ActivityInterests:   "robotics, theater",
		CampusEnvironment:   "urban",
		DiversityImportance: "very important",
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Analysis...", out)

	assert.Equal(t, 1000, rc.maxTokens)
	require.Len(t, rc.messages, 2)
	assert.Equal(t, "system", rc.messages[0].Role)
	assert.Equal(t, systemPrompt, rc.messages[0].Content)
	assert.Equal(t, "user", rc.messages[1].Role)
	assert.Contains(t, rc.messages[1].Content, "- Social Life: small groups")
	assert.Contains(t, rc.messages[1].Content, "- Campus Environment: urban")
	assert.Contains(t, rc.messages[1].Content, "3-5 university suggestions")
}

func TestAdvisor_Advise(t *testing.T) {
	tests := []struct {
		name    string
		feature Feature
		input   string
		want    string
	}{
		{"object input is compacted", FeatureCareerUniversities, `{ "major": "Physics",  "career": "Research" }`, `{"major":"Physics","career":"Research"}`},
		{"string input is unquoted", FeatureVirtualTour, `"mit-123"`, "university ID: mit-123."},
		{"array input", FeatureExtracurricular, `["chess", "rowing"]`, `["chess","rowing"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &recordingCompleter{reply: "ok"}
			_, err := New(rc).Advise(context.Background(), tt.feature, json.RawMessage(tt.input))
			require.NoError(t, err)
			assert.Equal(t, 500, rc.maxTokens)
			assert.Contains(t, rc.messages[1].Content, tt.want)
		})
	}
}

func TestAdvisor_AdviseRejectsBadInput(t *testing.T) {
	a := New(&recordingCompleter{})

	_, err := a.Advise(context.Background(), Feature("horoscope"), json.RawMessage(`{}`))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)

	_, err = a.Advise(context.Background(), FeatureAlumniNetwork, nil)
	assert.Error(t, err)
}

func TestAdvisor_PropagatesErrors(t *testing.T) {
	a := New(&recordingCompleter{err: errors.New("upstream down")})
	_, err := a.Advise(context.Background(), FeaturePrerequisites, json.RawMessage(`"CS 101"`))
	assert.EqualError(t, err, "upstream down")
}

func TestParseFeature(t *testing.T) {
	for _, f := range Features() {
		got, ok := ParseFeature(string(f))
		assert.True(t, ok, f)
		assert.Equal(t, f, got)
	}
	got, ok := ParseFeature(" Alumni-Network ")
	assert.True(t, ok)
	assert.Equal(t, FeatureAlumniNetwork, got)

	_, ok = ParseFeature("unknown")
	assert.False(t, ok)
	assert.Len(t, Features(), 9)
}
