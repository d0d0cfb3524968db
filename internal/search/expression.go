package search

// Function is one scoring primitive of a ScoreExpression.
type Function interface {
	function()
}

// SATFit scores how close the user's SAT sections sit to the middle of
// the school's admitted ranges.
type SATFit struct {
	Verbal float64
	Math   float64
}

// FieldReciprocal is 1/value of a numeric field, using Missing when the
// document lacks the field.
type FieldReciprocal struct {
	Field   string
	Missing float64
}

func (SATFit) function()          {}
func (FieldReciprocal) function() {}

type WeightedFunction struct {
	Function Function
	Weight   float64
}

// ScoreMode combines the weighted function values.
type ScoreMode string

const (
	ScoreModeSum      ScoreMode = "sum"
	ScoreModeMultiply ScoreMode = "multiply"
)

// BoostMode combines the function score with the query score.
type BoostMode string

const (
	BoostModeReplace  BoostMode = "replace"
	BoostModeMultiply BoostMode = "multiply"
	BoostModeSum      BoostMode = "sum"
)

// ScoreExpression is a declarative weighted scoring tree.
type ScoreExpression struct {
	Functions []WeightedFunction
	ScoreMode ScoreMode
	BoostMode BoostMode
}

func NewScoreExpression(scoreMode ScoreMode, boostMode BoostMode) *ScoreExpression {
	return &ScoreExpression{ScoreMode: scoreMode, BoostMode: boostMode}
}

// Add appends fn with the given weight and returns the expression.
func (e *ScoreExpression) Add(fn Function, weight float64) *ScoreExpression {
	e.Functions = append(e.Functions, WeightedFunction{Function: fn, Weight: weight})
	return e
}
