// internal/models/university.go
package models

import (
	"encoding/json"
	"strings"
)

// Index field names. These are the catalog's wire contract; scoring and
// query construction address documents only through these names.
const (
	FieldName                  = "name"
	FieldLocation              = "location"
	FieldPublic                = "public"
	FieldRank                  = "rank"
	FieldRankNumber            = "rankNumber"
	FieldIsLiberal             = "isLiberal"
	FieldAvgAnnualCost         = "avg_annual_cost"
	FieldDegreeTypes           = "degree_types"
	FieldGraduationRate        = "graduation_rate"
	FieldGraduationRateDisplay = "graduation_rate_display"
	FieldMedianEarnings        = "median_earnings"
	FieldSchoolSize            = "school_size"
	FieldSchoolType            = "school_type"
	FieldUrbanicity            = "urbanicity"
	FieldImages                = "images"

	FieldSATMath25   = "SATMAT25"
	FieldSATMath75   = "SATMAT75"
	FieldSATVerbal25 = "SATVR25"
	FieldSATVerbal75 = "SATVR75"

	FieldComputerScienceRank        = "computerScienceRank"
	FieldEngineeringRank            = "engineeringRank"
	FieldBusinessRank               = "businessRank"
	FieldNursingRank                = "nursingRank"
	FieldPsychologyRank             = "psychologyRank"
	FieldFinanceRank                = "financeRank"
	FieldEconomicsRank              = "economicsRank"
	FieldManagementRank             = "managementRank"
	FieldMarketingRank              = "marketingRank"
	FieldArtificialIntelligenceRank = "artificialIntelligenceRank"
	FieldAerospaceRanking           = "aerospaceRanking"

	FieldBasketballRank = "basketballRank"
	FieldSoccerRank     = "soccerRank"
	FieldTennisRank     = "tennisRank"
)

// University is one catalog document. Optional numeric attributes are
// pointers so an absent value is never confused with zero.
type University struct {
	ID                    string          `json:"id,omitempty"`
	Name                  string          `json:"name"`
	Location              string          `json:"location,omitempty"`
	Public                *bool           `json:"public,omitempty"`
	Rank                  string          `json:"rank,omitempty"`
	RankNumber            *float64        `json:"rankNumber,omitempty"`
	IsLiberal             *bool           `json:"isLiberal,omitempty"`
	AvgAnnualCost         *float64        `json:"avg_annual_cost,omitempty"`
	DegreeTypes           json.RawMessage `json:"degree_types,omitempty"`
	GraduationRate        *float64        `json:"graduation_rate,omitempty"`
	GraduationRateDisplay string          `json:"graduation_rate_display,omitempty"`
	MedianEarnings        *float64        `json:"median_earnings,omitempty"`
	SchoolSize            *float64        `json:"school_size,omitempty"`
	SchoolType            string          `json:"school_type,omitempty"`
	Urbanicity            string          `json:"urbanicity,omitempty"`
	Images                json.RawMessage `json:"images,omitempty"`

	SATMath25   *float64 `json:"SATMAT25,omitempty"`
	SATMath75   *float64 `json:"SATMAT75,omitempty"`
	SATVerbal25 *float64 `json:"SATVR25,omitempty"`
	SATVerbal75 *float64 `json:"SATVR75,omitempty"`

	ComputerScienceRank        *float64 `json:"computerScienceRank,omitempty"`
	EngineeringRank            *float64 `json:"engineeringRank,omitempty"`
	BusinessRank               *float64 `json:"businessRank,omitempty"`
	NursingRank                *float64 `json:"nursingRank,omitempty"`
	PsychologyRank             *float64 `json:"psychologyRank,omitempty"`
	FinanceRank                *float64 `json:"financeRank,omitempty"`
	EconomicsRank              *float64 `json:"economicsRank,omitempty"`
	ManagementRank             *float64 `json:"managementRank,omitempty"`
	MarketingRank              *float64 `json:"marketingRank,omitempty"`
	ArtificialIntelligenceRank *float64 `json:"artificialIntelligenceRank,omitempty"`
	AerospaceRanking           *float64 `json:"aerospaceRanking,omitempty"`

	BasketballRank *float64 `json:"basketballRank,omitempty"`
	SoccerRank     *float64 `json:"soccerRank,omitempty"`
	TennisRank     *float64 `json:"tennisRank,omitempty"`
}

// Number returns the numeric attribute stored under field. Zero and
// negative values are reported as absent: the catalog writes 0 for
// unknown sizes and ranks.
func (u *University) Number(field string) (float64, bool) {
	var p *float64
	switch field {
	case FieldRankNumber:
		p = u.RankNumber
	case FieldAvgAnnualCost:
		p = u.AvgAnnualCost
	case FieldGraduationRate:
		p = u.GraduationRate
	case FieldMedianEarnings:
		p = u.MedianEarnings
	case FieldSchoolSize:
		p = u.SchoolSize
	case FieldSATMath25:
		p = u.SATMath25
	case FieldSATMath75:
		p = u.SATMath75
	case FieldSATVerbal25:
		p = u.SATVerbal25
	case FieldSATVerbal75:
		p = u.SATVerbal75
	case FieldComputerScienceRank:
		p = u.ComputerScienceRank
	case FieldEngineeringRank:
		p = u.EngineeringRank
	case FieldBusinessRank:
		p = u.BusinessRank
	case FieldNursingRank:
		p = u.NursingRank
	case FieldPsychologyRank:
		p = u.PsychologyRank
	case FieldFinanceRank:
		p = u.FinanceRank
	case FieldEconomicsRank:
		p = u.EconomicsRank
	case FieldManagementRank:
		p = u.ManagementRank
	case FieldMarketingRank:
		p = u.MarketingRank
	case FieldArtificialIntelligenceRank:
		p = u.ArtificialIntelligenceRank
	case FieldAerospaceRanking:
		p = u.AerospaceRanking
	case FieldBasketballRank:
		p = u.BasketballRank
	case FieldSoccerRank:
		p = u.SoccerRank
	case FieldTennisRank:
		p = u.TennisRank
	}
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

// Text returns a string attribute, empty when absent.
func (u *University) Text(field string) string {
	switch field {
	case FieldName:
		return u.Name
	case FieldLocation:
		return u.Location
	case FieldRank:
		return u.Rank
	case FieldSchoolType:
		return u.SchoolType
	case FieldUrbanicity:
		return u.Urbanicity
	case FieldGraduationRateDisplay:
		return u.GraduationRateDisplay
	}
	return ""
}

// Bool returns a boolean attribute and whether it is present.
func (u *University) Bool(field string) (bool, bool) {
	var p *bool
	switch field {
	case FieldPublic:
		p = u.Public
	case FieldIsLiberal:
		p = u.IsLiberal
	}
	if p == nil {
		return false, false
	}
	return *p, true
}

// NameKey is the identity used to collapse duplicate catalog entries.
func (u *University) NameKey() string {
	return strings.ToLower(strings.TrimSpace(u.Name))
}

// ProgramRankFields lists the per-program rank attributes in a stable order.
var ProgramRankFields = []string{
	FieldComputerScienceRank,
	FieldEngineeringRank,
	FieldBusinessRank,
	FieldNursingRank,
	FieldPsychologyRank,
	FieldFinanceRank,
	FieldEconomicsRank,
	FieldManagementRank,
	FieldMarketingRank,
	FieldArtificialIntelligenceRank,
	FieldAerospaceRanking,
}

// MatchFactors are the sub-scores behind a composite match score. A nil
// factor was not part of the composite.
type MatchFactors struct {
	SATFit        *float64 `json:"satFit,omitempty"`
	Affordability *float64 `json:"affordability,omitempty"`
	CareerFit     *float64 `json:"careerFit,omitempty"`
	RankFit       float64  `json:"rankFit"`
}

// ScoredCandidate is a university with the score that ordered it.
type ScoredCandidate struct {
	University
	MatchScore   float64       `json:"matchScore"`
	MatchFactors *MatchFactors `json:"matchFactors,omitempty"`
}

// RankedResultSet is an ordered, name-unique, bounded list of candidates.
type RankedResultSet struct {
	Results []ScoredCandidate `json:"recommendations"`
	Total   int64             `json:"totalMatches"`
}
