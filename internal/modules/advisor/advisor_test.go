package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpret(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantRisk    float64
		wantHorizon int
	}{
		{"empty", "", 0.6, 10},
		{"aggressive", "I'm AGGRESSIVE and young", 0.85, 10},
		{"conservative short", "conservative, short term", 0.35, 1},
		{"retire medium", "planning to retire, medium horizon", 0.35, 5},
		{"aggressive wins", "aggressive but will retire soon", 0.85, 10},
		{"short wins", "short or medium", 0.6, 1},
		{"retirement matches", "Retirement savings", 0.35, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.text)
			assert.Equal(t, tt.wantRisk, got.RiskPreference)
			assert.Equal(t, tt.wantHorizon, got.HorizonYears)
			assert.Len(t, got.Notes, 3)
		})
	}
}

func TestInterpret_Reply(t *testing.T) {
	got := Interpret("conservative, short")
	assert.Equal(t,
		"Interpreted risk tolerance: 35%\nInvestment horizon: ~1 years\n"+StrategyNote,
		got.Reply)
}
