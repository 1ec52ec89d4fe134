package weather

import (
	"math"

	"github.com/talgya/tempest/internal/geom"
)

// PatternKind selects the temporal influence curve of a global wind pattern.
type PatternKind uint8

const (
	PatternPersistent PatternKind = iota // Constant influence (trade winds)
	PatternSeasonal                      // Follows the seasonal factor (monsoon)
	PatternCyclical                      // Fixed-period oscillation (sea breeze)
	PatternRandom                        // Slow pseudo-random drift (gust fronts)
)

// Pattern is a named, long-lived global wind influence. Patterns are created
// once at system initialization and never mutated afterward.
type Pattern struct {
	Name      string      `json:"name"`
	Direction geom.Vec2   `json:"direction"` // Unit vector
	Strength  float64     `json:"strength"`  // m/s at full influence
	Kind      PatternKind `json:"kind"`
	Phase     float64     `json:"phase"`  // Seconds, shifts cyclical/random curves
	Period    float64     `json:"period"` // Seconds, cyclical kind only
}

// Influence returns the pattern's current weight given global simulation
// time and the seasonal factor, both maintained by the system.
func (p Pattern) Influence(globalTime, seasonalFactor float64) float64 {
	switch p.Kind {
	case PatternSeasonal:
		return 0.5 + 0.5*math.Sin(seasonalFactor*2*math.Pi)
	case PatternCyclical:
		if p.Period <= 0 {
			return 1.0
		}
		return 0.5 + 0.5*math.Sin((globalTime+p.Phase)/p.Period*2*math.Pi)
	case PatternRandom:
		return 0.3 + 0.7*math.Sin(globalTime*0.1+p.Phase)
	default:
		return 1.0
	}
}

// GlobalWind combines all patterns into a single direction and strength.
// Direction is the normalized influence-weighted vector sum; strength is the
// influence-weighted mean of pattern strengths.
func GlobalWind(patterns []Pattern, globalTime, seasonalFactor float64) (geom.Vec2, float64) {
	if len(patterns) == 0 {
		return geom.Vec2{X: 1}, 0
	}

	var sum geom.Vec2
	strength := 0.0
	for _, p := range patterns {
		infl := p.Influence(globalTime, seasonalFactor)
		sum = sum.Add(p.Direction.Scale(p.Strength * infl))
		strength += p.Strength * infl
	}

	dir := sum.Normalize()
	if dir == (geom.Vec2{}) {
		dir = geom.Vec2{X: 1}
	}
	return dir, strength / float64(len(patterns))
}
