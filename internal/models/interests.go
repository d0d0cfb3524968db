// internal/models/interests.go
package models

// CareerTag is a career interest with a dedicated program rank attribute.
type CareerTag int

const (
	CareerComputerSci CareerTag = iota + 1
	CareerEngineering
	CareerBusiness
	CareerNursing
	CareerPsychology
	CareerFinance
	CareerEconomics
	CareerManagement
	CareerMarketing
	CareerAI
	CareerAerospace
)

var careerNames = map[CareerTag]string{
	CareerComputerSci: "ComputerSci",
	CareerEngineering: "Engineering",
	CareerBusiness:    "Business",
	CareerNursing:     "Nursing",
	CareerPsychology:  "Psychology",
	CareerFinance:     "Finance",
	CareerEconomics:   "Economics",
	CareerManagement:  "Management",
	CareerMarketing:   "Marketing",
	CareerAI:          "AI",
	CareerAerospace:   "Aerospace",
}

// ParseCareerTag resolves a wire tag. Unknown tags report false and
// callers treat the interest as absent.
func ParseCareerTag(s string) (CareerTag, bool) {
	for tag, name := range careerNames {
		if name == s {
			return tag, true
		}
	}
	return 0, false
}

func (t CareerTag) String() string {
	return careerNames[t]
}

// RankField returns the program rank attribute scored for this career.
func (t CareerTag) RankField() string {
	switch t {
	case CareerComputerSci:
		return FieldComputerScienceRank
	case CareerEngineering:
		return FieldEngineeringRank
	case CareerBusiness:
		return FieldBusinessRank
	case CareerNursing:
		return FieldNursingRank
	case CareerPsychology:
		return FieldPsychologyRank
	case CareerFinance:
		return FieldFinanceRank
	case CareerEconomics:
		return FieldEconomicsRank
	case CareerManagement:
		return FieldManagementRank
	case CareerMarketing:
		return FieldMarketingRank
	case CareerAI:
		return FieldArtificialIntelligenceRank
	case CareerAerospace:
		return FieldAerospaceRanking
	}
	panic("models: unhandled career tag")
}

// AllCareerTags returns every career tag in declaration order.
func AllCareerTags() []CareerTag {
	out := make([]CareerTag, 0, len(careerNames))
	for t := CareerComputerSci; t <= CareerAerospace; t++ {
		out = append(out, t)
	}
	return out
}

// SportsTag is an athletics interest with a dedicated rank attribute.
type SportsTag int

const (
	SportsBasketball SportsTag = iota + 1
	SportsSoccer
	SportsTennis
)

var sportsNames = map[SportsTag]string{
	SportsBasketball: "Basketball",
	SportsSoccer:     "Soccer",
	SportsTennis:     "Tennis",
}

func ParseSportsTag(s string) (SportsTag, bool) {
	for tag, name := range sportsNames {
		if name == s {
			return tag, true
		}
	}
	return 0, false
}

func (t SportsTag) String() string {
	return sportsNames[t]
}

func (t SportsTag) RankField() string {
	switch t {
	case SportsBasketball:
		return FieldBasketballRank
	case SportsSoccer:
		return FieldSoccerRank
	case SportsTennis:
		return FieldTennisRank
	}
	panic("models: unhandled sports tag")
}
