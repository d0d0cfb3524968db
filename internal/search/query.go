// Package search is the store-agnostic query contract. A Request holds a
// bool query and an optional weighted score expression; stores either
// render it to their native query language or evaluate it in-process.
package search

// Clause is one predicate of a bool query.
type Clause interface {
	clause()
}

// Match is a full-text match on an analysed field.
type Match struct {
	Field string
	Text  string
	Boost float64
}

// MultiMatch matches text across several fields, keeping the best field.
type MultiMatch struct {
	Text   string
	Fields []FieldBoost
}

type FieldBoost struct {
	Field string
	Boost float64
}

// Term is exact equality on a keyword, boolean or numeric field.
type Term struct {
	Field string
	Value interface{}
	Boost float64
}

// Range bounds a numeric field. Nil bounds are open.
type Range struct {
	Field string
	GTE   *float64
	LTE   *float64
	Boost float64
}

// IDs matches documents by store identity.
type IDs struct {
	Values []string
}

func (Match) clause()      {}
func (MultiMatch) clause() {}
func (Term) clause()       {}
func (Range) clause()      {}
func (IDs) clause()        {}

// BoolQuery combines clauses. Must and Filter are conjunctive, MustNot
// excludes, Should adds score and, when there is no Must or Filter,
// requires at least one match.
type BoolQuery struct {
	Must    []Clause
	Filter  []Clause
	Should  []Clause
	MustNot []Clause
}

func (b BoolQuery) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Filter) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0
}

// All as a Request size asks the store for every matching document.
const All = -1

// Request is one search against the university catalog.
type Request struct {
	Query       BoolQuery
	Scoring     *ScoreExpression
	Size        int
	SortByScore bool
}

// Float is a helper for optional range bounds.
func Float(v float64) *float64 {
	return &v
}
