package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterestWeights(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		career     *float64
		sports     *float64
		wantCareer float64
	}{
		{"neither set", nil, nil, DefaultCareerWeight},
		{"career only", f(0.2), nil, 0.2},
		{"sports only", nil, f(0.4), 0.1},
		{"career wins over sports", f(0.1), f(0.1), 0.1},
		{"career above budget", f(0.9), nil, InterestBudget},
		{"sports above budget", nil, f(0.8), 0},
		{"negative career", f(-0.3), nil, 0},
		{"negative sports", nil, f(-0.2), InterestBudget},
		{"both at zero", f(0), f(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewInterestWeights(tt.career, tt.sports)
			assert.InDelta(t, tt.wantCareer, w.Career, 1e-9)
			assert.InDelta(t, InterestBudget, w.Career+w.Sports, 1e-9)
			assert.GreaterOrEqual(t, w.Career, 0.0)
			assert.GreaterOrEqual(t, w.Sports, 0.0)
		})
	}
}
