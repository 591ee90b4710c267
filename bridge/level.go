package bridge

import (
	"github.com/teranos/accelbridge/logger"
)

// Level is the consumer-facing optimization intensity, ordinal 0..4.
type Level int

const (
	LevelNone Level = iota
	LevelLow
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns the consumer-facing name for the level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	return l >= LevelNone && l <= LevelCritical
}

// BackendLevel is the accelerator module's own intensity enumeration.
// It evolves independently of Level; the two are never numerically cast
// into each other outside the explicit tables below.
type BackendLevel int

const (
	BackendIdle       BackendLevel = 0
	BackendGentle     BackendLevel = 10
	BackendStandard   BackendLevel = 20
	BackendAggressive BackendLevel = 30
	BackendFull       BackendLevel = 40
)

var toBackend = map[Level]BackendLevel{
	LevelNone:     BackendIdle,
	LevelLow:      BackendGentle,
	LevelMedium:   BackendStandard,
	LevelHigh:     BackendAggressive,
	LevelCritical: BackendFull,
}

var toConsumer = map[BackendLevel]Level{
	BackendIdle:       LevelNone,
	BackendGentle:     LevelLow,
	BackendStandard:   LevelMedium,
	BackendAggressive: LevelHigh,
	BackendFull:       LevelCritical,
}

// ToBackendLevel maps a consumer level to the backend enumeration.
// Unknown input clamps to the backend's standard tier and is logged.
func ToBackendLevel(l Level) BackendLevel {
	if b, ok := toBackend[l]; ok {
		return b
	}
	logger.Warnw("Unknown optimization level, clamping to medium",
		"level", int(l))
	return BackendStandard
}

// ToConsumerLevel maps a backend level back to the consumer enumeration.
// Unknown input clamps to medium and is logged.
func ToConsumerLevel(b BackendLevel) Level {
	if l, ok := toConsumer[b]; ok {
		return l
	}
	logger.Warnw("Unknown backend optimization level, clamping to medium",
		"backend_level", int(b))
	return LevelMedium
}

// ClampLevel coerces arbitrary numeric input into a known level. Out-of-range
// values become LevelMedium rather than an error.
func ClampLevel(n int) Level {
	l := Level(n)
	if l.Valid() {
		return l
	}
	logger.Warnw("Optimization level out of range, clamping to medium",
		"requested", n)
	return LevelMedium
}
