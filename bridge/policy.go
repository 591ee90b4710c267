package bridge

// LevelForPressure maps memory pressure (percent used) to an optimization
// level. Thresholds are monotonic and non-overlapping; the emergency flag is
// set only at the critical tier.
//
//	>= 90%  critical + emergency
//	>= 75%  high
//	>= 60%  medium
//	>= 40%  low
//	else    none
func LevelForPressure(percentUsed float64) (Level, bool) {
	switch {
	case percentUsed >= 90:
		return LevelCritical, true
	case percentUsed >= 75:
		return LevelHigh, false
	case percentUsed >= 60:
		return LevelMedium, false
	case percentUsed >= 40:
		return LevelLow, false
	default:
		return LevelNone, false
	}
}

// PolicyThresholds holds configurable pressure cut-offs for deployments that
// tune the defaults above. Fields are percentages in ascending severity.
type PolicyThresholds struct {
	Low      float64
	Medium   float64
	High     float64
	Critical float64
}

// DefaultThresholds returns the built-in policy cut-offs.
func DefaultThresholds() PolicyThresholds {
	return PolicyThresholds{Low: 40, Medium: 60, High: 75, Critical: 90}
}

// Evaluate applies the thresholds to a pressure reading. Semantics match
// LevelForPressure: emergency only at the critical tier.
func (p PolicyThresholds) Evaluate(percentUsed float64) (Level, bool) {
	switch {
	case percentUsed >= p.Critical:
		return LevelCritical, true
	case percentUsed >= p.High:
		return LevelHigh, false
	case percentUsed >= p.Medium:
		return LevelMedium, false
	case percentUsed >= p.Low:
		return LevelLow, false
	default:
		return LevelNone, false
	}
}
