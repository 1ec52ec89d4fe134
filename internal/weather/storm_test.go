package weather

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/tempest/internal/geom"
)

func TestStormLifecycleCurve(t *testing.T) {
	assert.InDelta(t, 0.0, stormLifecycleCurve(0), 1e-9)
	assert.InDelta(t, 0.5, stormLifecycleCurve(0.15), 1e-9)
	assert.InDelta(t, 1.0, stormLifecycleCurve(0.3), 1e-9)
	assert.InDelta(t, 1.0, stormLifecycleCurve(0.5), 1e-9)
	assert.InDelta(t, 1.0, stormLifecycleCurve(0.7), 1e-9)
	assert.InDelta(t, 0.5, stormLifecycleCurve(0.85), 1e-9)
	assert.InDelta(t, 0.0, stormLifecycleCurve(1.0), 1e-9)
	assert.Equal(t, 0.0, stormLifecycleCurve(1.2))
}

func TestHurricaneWaxesAndWanes(t *testing.T) {
	s := NewStorm(StormHurricane, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
	params := StormParamsFor(StormHurricane)

	t.Run("peak at mid-life", func(t *testing.T) {
		now := 0.5 * s.Duration
		assert.InDelta(t, params.MaxWindSpeed, s.MaxWindSpeed(now), 1e-9)
		assert.InDelta(t, params.PrecipIntensity, s.PrecipIntensity(now), 1e-9)
	})

	t.Run("decaying at ninety percent", func(t *testing.T) {
		now := 0.9 * s.Duration
		// Curve value 1 - (0.9-0.7)/0.3 = 1/3.
		assert.InDelta(t, params.MaxWindSpeed/3, s.MaxWindSpeed(now), 1e-6)
	})

	t.Run("influence scales with the curve", func(t *testing.T) {
		p := geom.Vec2{X: s.Radius / 2}
		peak := s.InfluenceAt(p, 0.5*s.Duration)
		late := s.InfluenceAt(p, 0.9*s.Duration)
		require.Greater(t, peak, 0.0)
		assert.InDelta(t, peak/3, late, 1e-6)
	})

	t.Run("nothing after expiry", func(t *testing.T) {
		now := 1.5 * s.Duration
		assert.Equal(t, 0.0, s.MaxWindSpeed(now))
		assert.True(t, s.Expired(now))
	})
}

func TestStormSeverityScalesDerivedValues(t *testing.T) {
	full := NewStorm(StormThunderstorm, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
	half := NewStorm(StormThunderstorm, geom.Vec2{}, geom.Vec2{}, 0.5, 0)
	now := 0.5 * full.Duration

	assert.InDelta(t, full.MaxWindSpeed(now)*0.5, half.MaxWindSpeed(now), 1e-9)
	assert.InDelta(t, full.LightningFrequency(now)*0.5, half.LightningFrequency(now), 1e-9)
}

func TestStormWindBlowsOutward(t *testing.T) {
	s := NewStorm(StormHurricane, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
	now := 0.5 * s.Duration

	east := s.WindAt(geom.Vec2{X: s.Radius / 2}, now)
	assert.Greater(t, east.X, 0.0)
	assert.InDelta(t, 0.0, east.Y, 1e-9)

	north := s.WindAt(geom.Vec2{Y: s.Radius / 2}, now)
	assert.Greater(t, north.Y, 0.0)
	assert.InDelta(t, 0.0, north.X, 1e-9)

	t.Run("zero outside radius", func(t *testing.T) {
		assert.Equal(t, geom.Vec2{}, s.WindAt(geom.Vec2{X: s.Radius * 2}, now))
	})
}

func TestStormConditionBlend(t *testing.T) {
	s := NewStorm(StormHurricane, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
	now := 0.5 * s.Duration
	params := StormParamsFor(StormHurricane)

	ambient := NewCondition(Condition{
		Temperature: 26,
		Humidity:    0.5,
		Pressure:    1013,
		Visibility:  10000,
		WindSpeed:   5,
	})

	t.Run("center takes the storm's targets", func(t *testing.T) {
		got := s.ConditionAt(s.Position, ambient, now)
		assert.InDelta(t, 21.0, got.Temperature, 1e-9)
		assert.InDelta(t, 0.9, got.Humidity, 1e-9)
		assert.InDelta(t, params.MinPressure, got.Pressure, 1e-9)
		assert.InDelta(t, params.MaxWindSpeed, got.WindSpeed, 1e-9)
		assert.InDelta(t, 1.0, got.CloudCover, 1e-9)
		assert.Equal(t, params.Precip, got.Precip)
	})

	t.Run("edge leaves ambient untouched", func(t *testing.T) {
		got := s.ConditionAt(geom.Vec2{X: s.Radius}, ambient, now)
		assert.Equal(t, ambient, got)
	})

	t.Run("weak influence keeps ambient precip", func(t *testing.T) {
		// Influence below 0.5 never switches the precip kind.
		p := geom.Vec2{X: s.Radius * 0.9}
		require.Less(t, s.InfluenceAt(p, now), 0.5)
		got := s.ConditionAt(p, ambient, now)
		assert.Equal(t, ambient.Precip, got.Precip)
	})
}

func TestShouldStrikeLightning(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("only thunderstorms strike", func(t *testing.T) {
		s := NewStorm(StormHurricane, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
		now := 0.5 * s.Duration
		for i := 0; i < 200; i++ {
			assert.False(t, s.ShouldStrikeLightning(s.Position, now, 60, rng))
		}
	})

	t.Run("no strikes in the weak fringe", func(t *testing.T) {
		s := NewStorm(StormThunderstorm, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
		now := 0.5 * s.Duration
		p := geom.Vec2{X: s.Radius * 0.95}
		require.Less(t, s.InfluenceAt(p, now), 0.5)
		for i := 0; i < 200; i++ {
			assert.False(t, s.ShouldStrikeLightning(p, now, 60, rng))
		}
	})

	t.Run("peak thunderstorm strikes eventually", func(t *testing.T) {
		s := NewStorm(StormThunderstorm, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
		now := 0.5 * s.Duration
		struck := false
		for i := 0; i < 500; i++ {
			if s.ShouldStrikeLightning(s.Position, now, 60, rng) {
				struck = true
				break
			}
		}
		assert.True(t, struck)
	})
}

func TestThreatLevel(t *testing.T) {
	now := 0.5 * StormParamsFor(StormHurricane).Duration
	hurricane := NewStorm(StormHurricane, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
	squall := NewStorm(StormRainSquall, geom.Vec2{}, geom.Vec2{}, 1.0, 0)

	hc := hurricane.ThreatLevel(hurricane.Position, now)
	sc := squall.ThreatLevel(squall.Position, 0.5*squall.Duration)

	assert.Greater(t, hc, sc)
	assert.LessOrEqual(t, hc, 1.0)
	assert.Equal(t, 0.0, hurricane.ThreatLevel(geom.Vec2{X: hurricane.Radius * 3}, now))

	t.Run("thunderstorm carries a lightning term", func(t *testing.T) {
		ts := NewStorm(StormThunderstorm, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
		tsNow := 0.5 * ts.Duration
		withLightning := ts.ThreatLevel(ts.Position, tsNow)

		params := StormParamsFor(StormThunderstorm)
		bare := params.MaxWindSpeed/30*0.4 + params.PrecipIntensity*0.3
		assert.InDelta(t, minf(bare+0.3, 1.0), withLightning, 1e-9)
	})
}

func TestStormUpdateAndExpiry(t *testing.T) {
	s := NewStorm(StormRainSquall, geom.Vec2{}, geom.Vec2{X: 3}, 1.0, 0)

	s.Update(60, 60)
	assert.InDelta(t, 180.0, s.Position.X, 1e-9)
	assert.False(t, s.Expired(60))

	s.Update(s.Duration*1.1, 60)
	assert.True(t, s.Expired(s.Duration*1.1))

	t.Run("deactivate ends early", func(t *testing.T) {
		fresh := NewStorm(StormRainSquall, geom.Vec2{}, geom.Vec2{}, 1.0, 0)
		fresh.Deactivate()
		assert.True(t, fresh.Expired(0.5*fresh.Duration))
		assert.Equal(t, 0.0, fresh.MaxWindSpeed(0.5*fresh.Duration))
	})
}
