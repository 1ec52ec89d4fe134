package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tempest/internal/geom"
)

func TestCellLifecycleTarget(t *testing.T) {
	assert.InDelta(t, 0.0, cellLifecycleTarget(0), 1e-9)
	assert.InDelta(t, 0.5, cellLifecycleTarget(0.1), 1e-9)
	assert.InDelta(t, 1.0, cellLifecycleTarget(0.2), 1e-9)
	assert.InDelta(t, 1.0, cellLifecycleTarget(0.4), 1e-9)
	assert.InDelta(t, 1.0, cellLifecycleTarget(0.59), 1e-9)
	assert.InDelta(t, 0.5, cellLifecycleTarget(0.8), 1e-9)
	assert.InDelta(t, 0.0, cellLifecycleTarget(1.0), 1e-9)
	assert.Equal(t, 0.0, cellLifecycleTarget(1.5))
}

func TestCellInfluence(t *testing.T) {
	c := NewCell(CellLowPressure, geom.Vec2{}, geom.Vec2{}, 0)
	c.Radius = 600
	c.Intensity = 0.8

	t.Run("center equals intensity", func(t *testing.T) {
		assert.Equal(t, 0.8, c.InfluenceAt(geom.Vec2{}))
	})

	t.Run("zero at and beyond radius", func(t *testing.T) {
		assert.Equal(t, 0.0, c.InfluenceAt(geom.Vec2{X: 600}))
		assert.Equal(t, 0.0, c.InfluenceAt(geom.Vec2{X: 10000}))
	})

	t.Run("quadratic falloff at half radius", func(t *testing.T) {
		// (1 - 0.5²) · 0.8 = 0.6
		assert.InDelta(t, 0.6, c.InfluenceAt(geom.Vec2{X: 300}), 1e-9)
	})

	t.Run("never negative", func(t *testing.T) {
		for d := 0.0; d < 1200; d += 37 {
			assert.GreaterOrEqual(t, c.InfluenceAt(geom.Vec2{X: d}), 0.0)
		}
	})
}

func TestLowPressureCellBlend(t *testing.T) {
	// The canonical scenario: a low-pressure cell, intensity 0.8, radius 600,
	// centered at the origin; query point 300m east.
	c := NewCell(CellLowPressure, geom.Vec2{}, geom.Vec2{}, 0)
	c.Radius = 600
	c.Intensity = 0.8

	ambient := NewCondition(Condition{
		Temperature: 25,
		Humidity:    0.5,
		Pressure:    1013,
		Visibility:  10000,
		WindSpeed:   5,
	})

	p := geom.Vec2{X: 300}
	influence := c.InfluenceAt(p)
	require.InDelta(t, 0.6, influence, 1e-9)

	blended := c.ConditionAt(p, ambient)

	base := CellParamsFor(CellLowPressure).Base
	want := ambient.Temperature + (base.Temperature-ambient.Temperature)*0.6
	assert.InDelta(t, want, blended.Temperature, 1e-9)

	// Strictly between ambient and cell base, 60% toward the cell.
	assert.Less(t, blended.Temperature, ambient.Temperature)
	assert.Greater(t, blended.Temperature, base.Temperature)

	t.Run("cyclonic wind direction", func(t *testing.T) {
		// East of center: outward angle 0°, +90 → northward.
		assert.InDelta(t, 90.0, blended.WindDirection, 1e-9)

		north := c.ConditionAt(geom.Vec2{Y: 300}, ambient)
		assert.InDelta(t, 180.0, north.WindDirection, 1e-9)
	})
}

func TestCellWindDirectionNonCyclonic(t *testing.T) {
	c := NewCell(CellWarmFront, geom.Vec2{}, geom.Vec2{}, 0)
	c.Radius = 600
	c.Intensity = 0.5
	c.Rotation = 123

	blended := c.ConditionAt(geom.Vec2{X: 100}, NewCondition(Condition{Visibility: 10000}))
	assert.Equal(t, 123.0, blended.WindDirection)
}

func TestCellConditionOutsideRadius(t *testing.T) {
	c := NewCell(CellColdFront, geom.Vec2{}, geom.Vec2{}, 0)
	c.Intensity = 1

	ambient := NewCondition(Condition{Temperature: 25, Visibility: 10000})
	got := c.ConditionAt(geom.Vec2{X: c.Radius * 2}, ambient)
	assert.Equal(t, ambient, got)
}

func TestCellUpdate(t *testing.T) {
	t.Run("drift and rotation", func(t *testing.T) {
		c := NewCell(CellWarmFront, geom.Vec2{}, geom.Vec2{X: 2, Y: -1}, 0)
		c.Update(60, 60)
		assert.InDelta(t, 120.0, c.Position.X, 1e-9)
		assert.InDelta(t, -60.0, c.Position.Y, 1e-9)
		assert.True(t, c.Active())
	})

	t.Run("radius clamps at max", func(t *testing.T) {
		c := NewCell(CellSquallLine, geom.Vec2{}, geom.Vec2{}, 0)
		params := CellParamsFor(CellSquallLine)
		c.Update(60, 1e9) // Absurd dt saturates growth within one step
		assert.Equal(t, params.MaxRadius, c.Radius)
	})

	t.Run("intensity ramps toward curve", func(t *testing.T) {
		c := NewCell(CellLowPressure, geom.Vec2{}, geom.Vec2{}, 0)
		now := 0.0
		dt := 60.0
		for i := 0; i < 30; i++ {
			now += dt
			c.Update(now, dt)
		}
		assert.Greater(t, c.Intensity, 0.0)
		assert.LessOrEqual(t, c.Intensity, 1.0)
	})

	t.Run("expires past lifespan", func(t *testing.T) {
		c := NewCell(CellColdFront, geom.Vec2{}, geom.Vec2{}, 0)
		c.Update(c.Lifespan*1.01, 60)
		assert.False(t, c.Active())
		assert.True(t, c.ShouldRemove())
	})

	t.Run("weak cell past mid-life collapses", func(t *testing.T) {
		c := NewCell(CellHighPressure, geom.Vec2{}, geom.Vec2{}, 0)
		c.Intensity = 0.05
		// Mid-life, intensity pinned below 0.1 by a tiny easing step.
		c.Update(c.Lifespan*0.6, 0.001)
		assert.False(t, c.Active())
	})

	t.Run("expired cell stops moving", func(t *testing.T) {
		c := NewCell(CellColdFront, geom.Vec2{}, geom.Vec2{X: 5}, 0)
		c.Update(c.Lifespan*2, 60)
		pos := c.Position
		c.Update(c.Lifespan*2+60, 60)
		assert.Equal(t, pos, c.Position)
	})
}

func TestCellInteractions(t *testing.T) {
	t.Run("fronts feed each other", func(t *testing.T) {
		warm := NewCell(CellWarmFront, geom.Vec2{}, geom.Vec2{}, 0)
		cold := NewCell(CellColdFront, geom.Vec2{X: 1000}, geom.Vec2{}, 0)
		warm.Intensity = 0.5
		cold.Intensity = 0.9

		InteractCells(warm, cold)

		assert.InDelta(t, 0.7, warm.Intensity, 1e-9)
		assert.Equal(t, 1.0, cold.Intensity, "intensity caps at 1")
	})

	t.Run("pressure pair raises wind", func(t *testing.T) {
		high := NewCell(CellHighPressure, geom.Vec2{}, geom.Vec2{}, 0)
		low := NewCell(CellLowPressure, geom.Vec2{X: 1000}, geom.Vec2{}, 0)
		high.Intensity = 0.5
		low.Intensity = 0.5

		InteractCells(high, low)

		assert.Equal(t, 5.0, high.WindBoost())
		assert.Equal(t, 5.0, low.WindBoost())
	})

	t.Run("no interaction beyond range", func(t *testing.T) {
		warm := NewCell(CellWarmFront, geom.Vec2{}, geom.Vec2{}, 0)
		cold := NewCell(CellColdFront, geom.Vec2{X: 1e7}, geom.Vec2{}, 0)
		warm.Intensity = 0.5
		cold.Intensity = 0.5

		InteractCells(warm, cold)

		assert.Equal(t, 0.5, warm.Intensity)
		assert.Equal(t, 0.5, cold.Intensity)
	})

	t.Run("unrelated kinds ignore each other", func(t *testing.T) {
		a := NewCell(CellWarmFront, geom.Vec2{}, geom.Vec2{}, 0)
		b := NewCell(CellWarmFront, geom.Vec2{X: 100}, geom.Vec2{}, 0)
		a.Intensity = 0.5
		b.Intensity = 0.5

		InteractCells(a, b)

		assert.Equal(t, 0.5, a.Intensity)
		assert.Equal(t, 0.5, b.Intensity)
	})
}
