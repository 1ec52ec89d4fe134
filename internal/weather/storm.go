package weather

import (
	"math"
	"math/rand"

	"github.com/talgya/tempest/internal/geom"
)

// Storm is a localized severe weather event. Like cells, storms run entirely
// on simulation time; randomness (lightning trials) is threaded in from the
// system's generator rather than ambient rand calls.
type Storm struct {
	Kind      StormKind `json:"kind"`
	Position  geom.Vec2 `json:"position"`
	Velocity  geom.Vec2 `json:"velocity"`
	Intensity float64   `json:"intensity"` // Severity scalar set at spawn, 0–1
	Radius    float64   `json:"radius"`
	CreatedAt float64   `json:"created_at"`
	Duration  float64   `json:"duration"`

	active bool
}

// NewStorm creates a storm of the given kind. Intensity saturates to [0, 1].
func NewStorm(kind StormKind, pos, vel geom.Vec2, intensity, now float64) *Storm {
	params := StormParamsFor(kind)
	return &Storm{
		Kind:      kind,
		Position:  pos,
		Velocity:  vel,
		Intensity: clamp01(intensity),
		Radius:    params.Radius,
		CreatedAt: now,
		Duration:  params.Duration,
		active:    true,
	}
}

// stormLifecycleCurve maps an age ratio onto the storm's triangular curve:
// growth to 0.3, peak to 0.7, decay to zero at end of life.
func stormLifecycleCurve(ageRatio float64) float64 {
	switch {
	case ageRatio < 0:
		return 0
	case ageRatio < 0.3:
		return ageRatio / 0.3
	case ageRatio <= 0.7:
		return 1.0
	case ageRatio <= 1.0:
		return 1.0 - (ageRatio-0.7)/0.3
	default:
		return 0
	}
}

// AgeRatio returns elapsed life as a fraction of duration.
func (s *Storm) AgeRatio(now float64) float64 {
	if s.Duration <= 0 {
		return 1
	}
	return (now - s.CreatedAt) / s.Duration
}

// Update advances the storm by dt seconds to simulation time now.
func (s *Storm) Update(now, dt float64) {
	if !s.active {
		return
	}
	s.Position = s.Position.Add(s.Velocity.Scale(dt))
	if s.AgeRatio(now) > 1 {
		s.active = false
	}
}

// Expired reports whether the storm is done and should be pruned.
func (s *Storm) Expired(now float64) bool {
	return !s.active || s.AgeRatio(now) > 1
}

// Deactivate ends the storm early regardless of age.
func (s *Storm) Deactivate() {
	s.active = false
}

// effectiveIntensity is the spawn severity scaled by the lifecycle curve.
// Every derived quantity and the spatial influence wax and wane with it.
func (s *Storm) effectiveIntensity(now float64) float64 {
	if !s.active {
		return 0
	}
	return s.Intensity * stormLifecycleCurve(s.AgeRatio(now))
}

// MaxWindSpeed returns the storm's current peak wind speed in m/s.
func (s *Storm) MaxWindSpeed(now float64) float64 {
	return StormParamsFor(s.Kind).MaxWindSpeed * s.effectiveIntensity(now)
}

// PrecipIntensity returns the storm's current precipitation intensity.
func (s *Storm) PrecipIntensity(now float64) float64 {
	return StormParamsFor(s.Kind).PrecipIntensity * s.effectiveIntensity(now)
}

// LightningFrequency returns the current strike rate in strikes per minute.
func (s *Storm) LightningFrequency(now float64) float64 {
	return StormParamsFor(s.Kind).LightningFrequency * s.effectiveIntensity(now)
}

// InfluenceAt returns the storm's weight at a point: the same quadratic
// radial falloff cells use, scaled by effective intensity.
func (s *Storm) InfluenceAt(p geom.Vec2, now float64) float64 {
	dist := geom.Dist(s.Position, p)
	if dist >= s.Radius || s.Radius <= 0 {
		return 0
	}
	ratio := dist / s.Radius
	return (1 - ratio*ratio) * s.effectiveIntensity(now)
}

// outwardDirection is the wind heading at a point: radially outward from the
// storm center. Storms are modeled as divergent downdraft systems, the
// opposite convention from the cyclonic low-pressure cell rule.
func (s *Storm) outwardDirection(p geom.Vec2) float64 {
	angle := math.Atan2(p.Y-s.Position.Y, p.X-s.Position.X) * 180 / math.Pi
	return geom.NormalizeDeg(angle)
}

// WindAt returns the storm's wind contribution vector at a point, already
// weighted by influence.
func (s *Storm) WindAt(p geom.Vec2, now float64) geom.Vec2 {
	w := s.InfluenceAt(p, now)
	if w <= 0 {
		return geom.Vec2{}
	}
	return geom.FromHeading(s.outwardDirection(p)).Scale(s.MaxWindSpeed(now) * w)
}

// ConditionAt blends the ambient condition toward the storm's targets,
// weighted by influence: colder, saturated, low pressure, poor visibility,
// full cloud, storm-force wind blowing outward.
func (s *Storm) ConditionAt(p geom.Vec2, ambient Condition, now float64) Condition {
	w := s.InfluenceAt(p, now)
	if w <= 0 {
		return ambient
	}

	params := StormParamsFor(s.Kind)

	out := ambient
	out.Temperature = lerp(ambient.Temperature, ambient.Temperature-5, w)
	out.Humidity = lerp(ambient.Humidity, 0.9, w)
	out.Pressure = lerp(ambient.Pressure, params.MinPressure, w)
	out.Visibility = lerp(ambient.Visibility, params.MinVisibility, w)
	out.CloudCover = lerp(ambient.CloudCover, 1.0, w)
	out.WindSpeed = lerp(ambient.WindSpeed, s.MaxWindSpeed(now), w)
	out.WindDirection = s.outwardDirection(p)
	out.PrecipIntensity = lerp(ambient.PrecipIntensity, s.PrecipIntensity(now), w)
	if params.Precip != PrecipNone && w >= 0.5 {
		out.Precip = params.Precip
	}

	return NewCondition(out)
}

// ShouldStrikeLightning runs one Bernoulli lightning trial for a point over
// a dt-second window. Only thunderstorms strike, and only where the storm's
// influence exceeds 0.5.
func (s *Storm) ShouldStrikeLightning(p geom.Vec2, now, dt float64, rng *rand.Rand) bool {
	if s.Kind != StormThunderstorm {
		return false
	}
	w := s.InfluenceAt(p, now)
	if w <= 0.5 {
		return false
	}
	probability := s.LightningFrequency(now) / 60 * dt * w
	return rng.Float64() < probability
}

// ThreatLevel scores how dangerous the storm is at a point, 0–1: wind,
// precipitation, and (for thunderstorms) lightning terms, each weighted by
// influence.
func (s *Storm) ThreatLevel(p geom.Vec2, now float64) float64 {
	w := s.InfluenceAt(p, now)
	if w <= 0 {
		return 0
	}

	threat := s.MaxWindSpeed(now) / 30 * 0.4 * w
	threat += s.PrecipIntensity(now) * 0.3 * w
	if s.Kind == StormThunderstorm {
		threat += 0.3 * w
	}

	return minf(threat, 1.0)
}
