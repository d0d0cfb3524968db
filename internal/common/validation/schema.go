// Package validation checks request bodies against JSON schemas before
// they are decoded.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "university-matcher/internal/common/errors"
)

// Schema names.
const (
	ProfileRequest  = "profile-request"
	MatchRequest    = "match-request"
	FilterRequest   = "filter-request"
	CompareRequest  = "compare-request"
	TextSearch      = "text-search"
	CampusCulture   = "campus-culture"
	AdvisorRequest  = "advisor-request"
	RankingJobInput = "ranking-job-input"
	AdviceJobInput  = "advice-job-input"
)

const filtersSchema = `{
  "type": "object",
  "properties": {
    "location":          {"type": "string"},
    "maxRank":           {"type": "number", "exclusiveMinimum": 0},
    "minGraduationRate": {"type": "number", "minimum": 0, "maximum": 1},
    "maxCost":           {"type": "number", "minimum": 0},
    "isPublic":          {"type": "boolean"},
    "urbanicity":        {"type": "string"},
    "majorInterests":    {"type": "array", "items": {"type": "string"}}
  }
}`

const profileProperties = `
    "satVerbal":    {"type": "integer", "minimum": 0, "maximum": 800},
    "satMath":      {"type": "integer", "minimum": 0, "maximum": 800},
    "maxBudget":    {"type": "number", "minimum": 0},
    "career":       {"type": "string"},
    "sports":       {"type": "string"},
    "careerWeight": {"type": "number", "minimum": 0, "maximum": 0.5},
    "sportsWeight": {"type": "number", "minimum": 0, "maximum": 0.5},
    "filters":      ` + filtersSchema

const profileSchema = `{
  "type": "object",
  "properties": {` + profileProperties + `
  }
}`

// matchSchema adds the flat keys of the web client. Those may be strings
// from form inputs, so their ranges are checked after decoding.
const matchSchema = `{
  "type": "object",
  "properties": {` + profileProperties + `,
    "SATV":              {"type": ["number", "string", "null"]},
    "SATM":              {"type": ["number", "string", "null"]},
    "Career":            {"type": ["string", "null"]},
    "Sports":            {"type": ["string", "null"]},
    "location":          {"type": ["string", "null"]},
    "maxRank":           {"type": ["number", "string", "null"]},
    "minGraduationRate": {"type": ["number", "string", "null"]},
    "maxCost":           {"type": ["number", "string", "null"]},
    "isPublic":          {"type": ["boolean", "string", "null"]},
    "urbanicity":        {"type": ["string", "null"]}
  }
}`

var sources = map[string]string{
	ProfileRequest: profileSchema,
	MatchRequest:   matchSchema,
	FilterRequest:  filtersSchema,
	CompareRequest: `{
  "type": "object",
  "required": ["ids"],
  "properties": {
    "ids": {"type": "array", "minItems": 2, "maxItems": 4, "items": {"type": "string", "minLength": 1}}
  }
}`,
	TextSearch: `{
  "type": "object",
  "required": ["query"],
  "properties": {"query": {"type": "string", "minLength": 1}}
}`,
	CampusCulture: `{
  "type": "object",
  "properties": {
    "socialPreferences":   {"type": "string"},
    "activityInterests":   {"type": "string"},
    "campusEnvironment":   {"type": "string"},
    "diversityImportance": {"type": "string"}
  }
}`,
	AdvisorRequest: `{
  "type": "object",
  "required": ["input"],
  "properties": {"input": {"not": {"type": "null"}}}
}`,
	RankingJobInput: `{
  "type": "object",
  "required": ["mode"],
  "properties": {
    "mode":         {"enum": ["profile", "filters", "similar", "match"]},
    "universityId": {"type": "string"},
    "size":         {"type": "integer", "minimum": 0},
    "profile":      ` + profileSchema + `,
    "filters":      ` + filtersSchema + `
  }
}`,
	AdviceJobInput: `{
  "type": "object",
  "required": ["feature"],
  "properties": {
    "feature": {"type": "string", "minLength": 1}
  }
}`,
}

var compiled = mustCompile(sources)

func mustCompile(src map[string]string) map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(src))
	for name, s := range src {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
		if err != nil {
			panic(fmt.Sprintf("validation: schema %s: %v", name, err))
		}
		out[name] = schema
	}
	return out
}

// Validate checks document against the named schema. Violations come
// back as an INVALID_REQUEST error listing every failing field, or
// INVALID_FILTER_FORMAT for a bare filter overlay.
func Validate(name string, document []byte) error {
	schema, ok := compiled[name]
	if !ok {
		return apperrors.NewInternalError(fmt.Errorf("unknown schema %q", name))
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return apperrors.NewInvalidRequestError("malformed JSON body").WithCause(err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	details := strings.Join(msgs, "; ")
	if name == FilterRequest {
		return apperrors.NewInvalidFilterFormatError(details)
	}
	return apperrors.NewInvalidRequestError(details)
}
