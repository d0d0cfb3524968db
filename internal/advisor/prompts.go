package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const systemPrompt = "You are a helpful university advisor who provides personalized university recommendations based on student preferences."

// Feature names one advisor prompt.
type Feature string

const (
	FeatureCampusCulture       Feature = "campus-culture"
	FeatureExtracurricular     Feature = "extracurricular"
	FeatureDiversityInsights   Feature = "diversity-insights"
	FeatureCareerUniversities  Feature = "career-universities"
	FeaturePrerequisites       Feature = "prerequisites"
	FeatureGraduationRates     Feature = "graduation-rates"
	FeatureApplicationTracking Feature = "application-tracking"
	FeatureVirtualTour         Feature = "virtual-tour"
	FeatureAlumniNetwork       Feature = "alumni-network"
)

const (
	campusCultureMaxTokens = 1000
	featureMaxTokens       = 500
)

var featureTemplates = map[Feature]string{
	FeatureCampusCulture:       "Given these student preferences: %s, analyze and match them with university culture, considering social life, campus atmosphere and student activities.",
	FeatureExtracurricular:     "Match these student interests: %s with university clubs and activities. Consider both academic and non-academic activities.",
	FeatureDiversityInsights:   "Analyze diversity statistics for this university: %s. Provide insights on student demographics, inclusion initiatives and cultural representation.",
	FeatureCareerUniversities:  "Based on this intended major and career goal: %s, suggest suitable universities and explain their strengths in this field.",
	FeaturePrerequisites:       "For this program: %s, list and explain the prerequisite courses and requirements.",
	FeatureGraduationRates:     "Analyze these graduation rate statistics by demographics: %s. Provide insights on trends and success factors.",
	FeatureApplicationTracking: "Track this application: %s. Provide status updates and upcoming deadline reminders.",
	FeatureVirtualTour:         "Provide virtual tour information for university ID: %s. Include key landmarks and facilities.",
	FeatureAlumniNetwork:       "Analyze the alumni network for this university: %s. Focus on career outcomes, industry presence and networking opportunities.",
}

// ParseFeature resolves a feature name from a route or job variable.
func ParseFeature(s string) (Feature, bool) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	_, ok := featureTemplates[f]
	return f, ok
}

// Features lists every supported feature.
func Features() []Feature {
	return []Feature{
		FeatureCampusCulture, FeatureExtracurricular, FeatureDiversityInsights,
		FeatureCareerUniversities, FeaturePrerequisites, FeatureGraduationRates,
		FeatureApplicationTracking, FeatureVirtualTour, FeatureAlumniNetwork,
	}
}

// CampusCulturePreferences is the campus culture questionnaire.
type CampusCulturePreferences struct {
	SocialPreferences   string `json:"socialPreferences"`
	ActivityInterests   string `json:"activityInterests"`
	CampusEnvironment   string `json:"campusEnvironment"`
	DiversityImportance string `json:"diversityImportance"`
}

func campusCulturePrompt(p CampusCulturePreferences) string {
	var b strings.Builder
	b.WriteString("Based on these student preferences, suggest matching universities:\n")
	fmt.Fprintf(&b, "- Social Life: %s\n", p.SocialPreferences)
	fmt.Fprintf(&b, "- Activities: %s\n", p.ActivityInterests)
	fmt.Fprintf(&b, "- Campus Environment: %s\n", p.CampusEnvironment)
	fmt.Fprintf(&b, "- Diversity Importance: %s\n", p.DiversityImportance)
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Brief analysis of student preferences\n")
	b.WriteString("2. 3-5 university suggestions with explanations\n")
	b.WriteString("3. Tips for finding the right campus culture fit\n")
	return b.String()
}

// featurePrompt embeds the caller's input in the feature template. A
// bare JSON string is inserted unquoted.
func featurePrompt(f Feature, input json.RawMessage) string {
	var text string
	if err := json.Unmarshal(input, &text); err != nil {
		var compact bytes.Buffer
		if json.Compact(&compact, input) == nil {
			text = compact.String()
		} else {
			text = string(input)
		}
	}
	return fmt.Sprintf(featureTemplates[f], text)
}
