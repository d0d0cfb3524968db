// internal/models/requests.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProfileRequest is the wire form of a UserProfile shared by the HTTP
// API and the workflow workers.
type ProfileRequest struct {
	SATVerbal    *int     `json:"satVerbal,omitempty"`
	SATMath      *int     `json:"satMath,omitempty"`
	MaxBudget    *float64 `json:"maxBudget,omitempty"`
	Career       string   `json:"career,omitempty"`
	Sports       string   `json:"sports,omitempty"`
	CareerWeight *float64 `json:"careerWeight,omitempty"`
	SportsWeight *float64 `json:"sportsWeight,omitempty"`
	Filters      Filters  `json:"filters"`
}

// Profile resolves tags and weights. Unknown career or sports tags are
// dropped rather than rejected.
func (r ProfileRequest) Profile() *UserProfile {
	p := &UserProfile{
		SATVerbal: r.SATVerbal,
		SATMath:   r.SATMath,
		MaxBudget: r.MaxBudget,
		Weights:   NewInterestWeights(r.CareerWeight, r.SportsWeight),
		Filters:   r.Filters,
	}
	if tag, ok := ParseCareerTag(strings.TrimSpace(r.Career)); ok {
		p.Career = &tag
	}
	if tag, ok := ParseSportsTag(strings.TrimSpace(r.Sports)); ok {
		p.Sports = &tag
	}
	return p
}

// FilterRequest is a filter overlay plus the majors to boost.
type FilterRequest struct {
	Filters
	MajorInterests []string `json:"majorInterests,omitempty"`
}

// Majors returns the recognised major interests in request order.
func (r FilterRequest) Majors() []CareerTag {
	var out []CareerTag
	for _, m := range r.MajorInterests {
		if tag, ok := ParseCareerTag(strings.TrimSpace(m)); ok {
			out = append(out, tag)
		}
	}
	return out
}

// MatchRequest is the advanced-match body. Besides the ProfileRequest
// fields it takes the flat form the web client posts, with SATV, SATM,
// Career, Sports and the filter keys at the top level. Flat values may
// arrive as strings and an empty string means unset. Nested fields win
// over flat ones.
type MatchRequest struct {
	ProfileRequest
	SATV              LooseNumber `json:"SATV"`
	SATM              LooseNumber `json:"SATM"`
	CareerTag         string      `json:"Career"`
	SportsTag         string      `json:"Sports"`
	Location          string      `json:"location"`
	MaxRank           LooseNumber `json:"maxRank"`
	MinGraduationRate LooseNumber `json:"minGraduationRate"`
	MaxCost           LooseNumber `json:"maxCost"`
	IsPublic          LooseBool   `json:"isPublic"`
	Urbanicity        string      `json:"urbanicity"`
}

// Profile merges the flat fields into the nested ones. A graduation rate
// above 1 is read as a percentage.
func (r MatchRequest) Profile() (*UserProfile, error) {
	req := r.ProfileRequest
	var err error
	if req.SATVerbal == nil {
		if req.SATVerbal, err = r.SATV.score("SATV"); err != nil {
			return nil, err
		}
	}
	if req.SATMath == nil {
		if req.SATMath, err = r.SATM.score("SATM"); err != nil {
			return nil, err
		}
	}
	if req.Career == "" {
		req.Career = r.CareerTag
	}
	if req.Sports == "" {
		req.Sports = r.SportsTag
	}

	f := &req.Filters
	if f.Location == "" {
		f.Location = strings.TrimSpace(r.Location)
	}
	if f.MaxRank == nil {
		f.MaxRank = r.MaxRank.Value
	}
	if f.MinGraduationRate == nil && r.MinGraduationRate.Value != nil {
		rate := *r.MinGraduationRate.Value
		if rate > 1 {
			rate /= 100
		}
		f.MinGraduationRate = &rate
	}
	if f.MaxCost == nil {
		f.MaxCost = r.MaxCost.Value
	}
	if f.IsPublic == nil {
		f.IsPublic = r.IsPublic.Value
	}
	if f.Urbanicity == "" {
		f.Urbanicity = strings.TrimSpace(r.Urbanicity)
	}
	return req.Profile(), nil
}

// LooseNumber accepts a JSON number or a numeric string. Null and the
// empty string leave it unset.
type LooseNumber struct {
	Value *float64
}

func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	n.Value = nil
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", s)
		}
		n.Value = &v
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%s is not a number", b)
	}
	n.Value = &v
	return nil
}

func (n LooseNumber) score(name string) (*int, error) {
	if n.Value == nil {
		return nil, nil
	}
	v := *n.Value
	if v < 0 || v > 800 || v != math.Trunc(v) {
		return nil, fmt.Errorf("%s must be an integer between 0 and 800", name)
	}
	i := int(v)
	return &i, nil
}

// LooseBool accepts a JSON boolean or "true"/"false". Null and the empty
// string leave it unset.
type LooseBool struct {
	Value *bool
}

func (b *LooseBool) UnmarshalJSON(raw []byte) error {
	b.Value = nil
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		b.Value = &t
		return nil
	case string:
		t = strings.TrimSpace(t)
		if t == "" {
			return nil
		}
		parsed, err := strconv.ParseBool(t)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", t)
		}
		b.Value = &parsed
		return nil
	}
	return fmt.Errorf("%s is not a boolean", raw)
}
