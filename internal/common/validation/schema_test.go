package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "university-matcher/internal/common/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		doc    string
		valid  bool
		detail string
	}{
		{"profile ok", ProfileRequest, `{"satVerbal": 650, "satMath": 700, "career": "AI", "careerWeight": 0.2}`, true, ""},
		{"profile sat out of range", ProfileRequest, `{"satVerbal": 900}`, false, "satVerbal"},
		{"profile weight above budget", ProfileRequest, `{"careerWeight": 0.7}`, false, "careerWeight"},
		{"profile nested filter", ProfileRequest, `{"filters": {"minGraduationRate": 1.5}}`, false, "minGraduationRate"},
		{"filters ok", FilterRequest, `{"location": "TX", "isPublic": true, "majorInterests": ["Finance"]}`, true, ""},
		{"filters wrong type", FilterRequest, `{"isPublic": "yes"}`, false, "isPublic"},
		{"compare ok", CompareRequest, `{"ids": ["a", "b"]}`, true, ""},
		{"compare too few", CompareRequest, `{"ids": ["a"]}`, false, "ids"},
		{"compare too many", CompareRequest, `{"ids": ["a","b","c","d","e"]}`, false, "ids"},
		{"text search empty", TextSearch, `{"query": ""}`, false, "query"},
		{"advisor needs input", AdvisorRequest, `{}`, false, "input"},
		{"advisor null input", AdvisorRequest, `{"input": null}`, false, "input"},
		{"job mode enum", RankingJobInput, `{"mode": "knn"}`, false, "mode"},
		{"job ok", RankingJobInput, `{"mode": "similar", "universityId": "mit", "size": 5}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, []byte(tt.doc))
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			stdErr, ok := apperrors.AsStandardError(err)
			require.True(t, ok)
			if tt.schema == FilterRequest {
				assert.Equal(t, apperrors.ErrCodeInvalidFilterFormat, stdErr.Code)
			} else {
				assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)
			}
			assert.Contains(t, stdErr.Details, tt.detail)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate(FilterRequest, []byte(`{"location":`))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("nope", []byte(`{}`))
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, stdErr.Code)
}
