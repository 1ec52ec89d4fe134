package weather

import (
	"math"

	"github.com/talgya/tempest/internal/geom"
)

// Cell is a localized, evolving pressure or front system. All lifecycle
// timing runs on simulation time passed into Update; a cell never reads the
// wall clock.
type Cell struct {
	Kind      CellKind  `json:"kind"`
	Position  geom.Vec2 `json:"position"`
	Velocity  geom.Vec2 `json:"velocity"`
	Radius    float64   `json:"radius"`
	Intensity float64   `json:"intensity"`
	Rotation  float64   `json:"rotation"` // degrees [0, 360)
	CreatedAt float64   `json:"created_at"`
	Lifespan  float64   `json:"lifespan"`

	expired   bool
	windBoost float64
}

// NewCell creates a cell of the given kind at a position, with drift
// velocity and creation stamped in simulation time.
func NewCell(kind CellKind, pos, vel geom.Vec2, now float64) *Cell {
	params := CellParamsFor(kind)
	return &Cell{
		Kind:      kind,
		Position:  pos,
		Velocity:  vel,
		Radius:    params.BaseRadius,
		Intensity: 0,
		CreatedAt: now,
		Lifespan:  params.Lifespan,
	}
}

// cellLifecycleTarget maps an age ratio onto the triangular intensity curve:
// ramp-up to 0.2, plateau to 0.6, then decay to zero at end of life.
func cellLifecycleTarget(ageRatio float64) float64 {
	switch {
	case ageRatio < 0:
		return 0
	case ageRatio < 0.2:
		return ageRatio / 0.2
	case ageRatio < 0.6:
		return 1.0
	case ageRatio <= 1.0:
		return 1.0 - (ageRatio-0.6)/0.4
	default:
		return 0
	}
}

// AgeRatio returns elapsed life as a fraction of lifespan at the given
// simulation time.
func (c *Cell) AgeRatio(now float64) float64 {
	if c.Lifespan <= 0 {
		return 1
	}
	return (now - c.CreatedAt) / c.Lifespan
}

// Update advances the cell by dt seconds to simulation time now: drift,
// rotation, radius growth, then intensity easing along the lifecycle curve.
func (c *Cell) Update(now, dt float64) {
	if c.expired {
		return
	}

	params := CellParamsFor(c.Kind)

	c.Position = c.Position.Add(c.Velocity.Scale(dt))
	c.Rotation = geom.NormalizeDeg(c.Rotation + params.RotationSpeed*dt)
	c.Radius = clampf(c.Radius+params.GrowthRate*dt, params.MinRadius, params.MaxRadius)

	ageRatio := c.AgeRatio(now)
	if ageRatio > 1 {
		c.expired = true
		return
	}

	target := cellLifecycleTarget(ageRatio)
	step := params.IntensityChangeRate * dt
	delta := target - c.Intensity
	if delta > step {
		delta = step
	} else if delta < -step {
		delta = -step
	}
	c.Intensity = clamp01(c.Intensity + delta)

	// A cell that never reached strength past mid-life is collapsing.
	if c.Intensity < 0.1 && ageRatio > 0.5 {
		c.expired = true
	}
}

// Active reports whether the cell still participates in queries.
func (c *Cell) Active() bool {
	return !c.expired
}

// ShouldRemove reports whether the cell should be dropped from the registry.
func (c *Cell) ShouldRemove() bool {
	return c.expired
}

// InfluenceAt returns the cell's weight at a point: a quadratic radial
// falloff scaled by intensity, zero at and beyond the radius.
func (c *Cell) InfluenceAt(p geom.Vec2) float64 {
	dist := geom.Dist(c.Position, p)
	if dist >= c.Radius || c.Radius <= 0 {
		return 0
	}
	ratio := dist / c.Radius
	return (1 - ratio*ratio) * c.Intensity
}

// windDirectionAt returns the wind direction the cell imposes at a point.
// Low-pressure systems rotate cyclonically around the center; other kinds
// push along the cell's current rotation heading.
func (c *Cell) windDirectionAt(p geom.Vec2) float64 {
	if c.Kind == CellLowPressure {
		angle := math.Atan2(p.Y-c.Position.Y, p.X-c.Position.X) * 180 / math.Pi
		return geom.NormalizeDeg(angle + 90)
	}
	return c.Rotation
}

// ConditionAt blends the ambient condition toward the cell's base condition,
// weighted by the cell's influence at the point.
func (c *Cell) ConditionAt(p geom.Vec2, ambient Condition) Condition {
	w := c.InfluenceAt(p)
	if w <= 0 {
		return ambient
	}

	base := CellParamsFor(c.Kind).Base

	out := ambient
	out.Temperature = lerp(ambient.Temperature, base.Temperature, w)
	out.Humidity = lerp(ambient.Humidity, base.Humidity, w)
	out.Pressure = lerp(ambient.Pressure, base.Pressure, w)
	out.Visibility = lerp(ambient.Visibility, base.Visibility, w)
	out.PrecipIntensity = lerp(ambient.PrecipIntensity, base.PrecipIntensity, w)
	out.CloudCover = lerp(ambient.CloudCover, base.CloudCover, w)
	out.WindSpeed = lerp(ambient.WindSpeed, base.WindSpeed+c.windBoost, w)
	out.WindDirection = c.windDirectionAt(p)

	if base.Precip != PrecipNone && w >= 0.5 {
		out.Precip = base.Precip
	}

	return NewCondition(out)
}

// cellInteractionRange is the pairwise interaction cutoff: cells interact
// when their centers are within 1.2 times their combined radii.
const cellInteractionRange = 1.2

// InteractCells applies the pairwise effects between two active cells.
// Warm and cold fronts feed each other's intensity; high and low pressure
// systems steepen the gradient between them, raising wind speed.
func InteractCells(a, b *Cell) {
	if !a.Active() || !b.Active() {
		return
	}
	if geom.Dist(a.Position, b.Position) > cellInteractionRange*(a.Radius+b.Radius) {
		return
	}

	if frontPair(a.Kind, b.Kind) {
		a.Intensity = clamp01(a.Intensity + 0.2)
		b.Intensity = clamp01(b.Intensity + 0.2)
	}

	if pressurePair(a.Kind, b.Kind) {
		// Gradient wind between the systems. No cap: the table wind speeds
		// stay far below any physical limit.
		boostWind(a, 5)
		boostWind(b, 5)
	}
}

func frontPair(a, b CellKind) bool {
	return (a == CellWarmFront && b == CellColdFront) || (a == CellColdFront && b == CellWarmFront)
}

func pressurePair(a, b CellKind) bool {
	return (a == CellHighPressure && b == CellLowPressure) || (a == CellLowPressure && b == CellHighPressure)
}

// WindBoost is extra wind speed accumulated from pressure-pair interactions,
// added on top of the table base when the cell blends conditions.
func (c *Cell) WindBoost() float64 {
	return c.windBoost
}

func boostWind(c *Cell, amount float64) {
	c.windBoost += amount
}
