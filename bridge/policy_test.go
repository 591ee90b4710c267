package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForPressure(t *testing.T) {
	tests := []struct {
		pressure  float64
		want      Level
		emergency bool
	}{
		{95, LevelCritical, true},
		{90, LevelCritical, true},
		{80, LevelHigh, false},
		{75, LevelHigh, false},
		{65, LevelMedium, false},
		{60, LevelMedium, false},
		{45, LevelLow, false},
		{40, LevelLow, false},
		{10, LevelNone, false},
		{0, LevelNone, false},
	}
	for _, tt := range tests {
		level, emergency := LevelForPressure(tt.pressure)
		assert.Equal(t, tt.want, level, "pressure %.0f%%", tt.pressure)
		assert.Equal(t, tt.emergency, emergency, "pressure %.0f%%", tt.pressure)
	}
}

func TestLevelForPressureMonotonic(t *testing.T) {
	// Level never decreases as pressure rises
	prev := LevelNone
	for pct := 0.0; pct <= 100; pct++ {
		level, _ := LevelForPressure(pct)
		assert.GreaterOrEqual(t, level, prev, "pressure %.0f%%", pct)
		prev = level
	}
}

func TestPolicyThresholdsEvaluate(t *testing.T) {
	p := DefaultThresholds()

	level, emergency := p.Evaluate(95)
	assert.Equal(t, LevelCritical, level)
	assert.True(t, emergency)

	level, emergency = p.Evaluate(50)
	assert.Equal(t, LevelLow, level)
	assert.False(t, emergency)

	// Custom thresholds shift the tiers
	custom := PolicyThresholds{Low: 10, Medium: 20, High: 30, Critical: 40}
	level, emergency = custom.Evaluate(45)
	assert.Equal(t, LevelCritical, level)
	assert.True(t, emergency)
}

func TestDefaultThresholdsMatchLevelForPressure(t *testing.T) {
	p := DefaultThresholds()
	for pct := 0.0; pct <= 100; pct += 0.5 {
		wantLevel, wantEmergency := LevelForPressure(pct)
		gotLevel, gotEmergency := p.Evaluate(pct)
		assert.Equal(t, wantLevel, gotLevel, "pressure %.1f%%", pct)
		assert.Equal(t, wantEmergency, gotEmergency, "pressure %.1f%%", pct)
	}
}
