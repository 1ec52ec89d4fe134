package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConditionClamps(t *testing.T) {
	c := NewCondition(Condition{
		Humidity:        1.5,
		PrecipIntensity: -0.2,
		CloudCover:      2.0,
		WindSpeed:       -3,
		Visibility:      -100,
		WindDirection:   -90,
	})

	assert.Equal(t, 1.0, c.Humidity)
	assert.Equal(t, 0.0, c.PrecipIntensity)
	assert.Equal(t, 1.0, c.CloudCover)
	assert.Equal(t, 0.0, c.WindSpeed)
	assert.Equal(t, 0.0, c.Visibility)
	assert.Equal(t, 270.0, c.WindDirection)
}

func TestDescriptionBands(t *testing.T) {
	t.Run("warm clear breeze", func(t *testing.T) {
		c := Condition{Temperature: 25, CloudCover: 0.1, WindSpeed: 5}
		assert.Equal(t, "warm and clear skies, a light breeze", c.Description())
	})

	t.Run("freezing overcast heavy snow gale", func(t *testing.T) {
		c := Condition{
			Temperature:     -5,
			CloudCover:      0.9,
			Precip:          PrecipSnow,
			PrecipIntensity: 0.8,
			WindSpeed:       30,
		}
		assert.Equal(t, "freezing and overcast, heavy snow, gale-force winds", c.Description())
	})

	t.Run("mild partly cloudy light rain", func(t *testing.T) {
		c := Condition{
			Temperature:     15,
			CloudCover:      0.3,
			Precip:          PrecipRain,
			PrecipIntensity: 0.2,
			WindSpeed:       1,
		}
		assert.Equal(t, "mild and partly cloudy, light rain, calm air", c.Description())
	})
}

func TestSuitableForSailing(t *testing.T) {
	good := Condition{Temperature: 22, WindSpeed: 10, Visibility: 5000, PrecipIntensity: 0.2}
	assert.True(t, good.SuitableForSailing())

	heavyRain := good
	heavyRain.PrecipIntensity = 0.9
	assert.False(t, heavyRain.SuitableForSailing())

	stormWind := good
	stormWind.WindSpeed = 26
	assert.False(t, stormWind.SuitableForSailing())

	fog := good
	fog.Visibility = 50
	assert.False(t, fog.SuitableForSailing())
}

func TestSailingDifficulty(t *testing.T) {
	t.Run("becalmed penalty", func(t *testing.T) {
		c := Condition{WindSpeed: 1, Visibility: 5000, Pressure: 1013}
		assert.InDelta(t, 0.3, c.SailingDifficulty(), 1e-9)
	})

	t.Run("moderate wind no penalty", func(t *testing.T) {
		c := Condition{WindSpeed: 10, Visibility: 5000, Pressure: 1013}
		assert.InDelta(t, 0.0, c.SailingDifficulty(), 1e-9)
	})

	t.Run("strong wind scales", func(t *testing.T) {
		c := Condition{WindSpeed: 25, Visibility: 5000, Pressure: 1013}
		assert.InDelta(t, 0.5, c.SailingDifficulty(), 1e-9)
	})

	t.Run("everything bad clamps to one", func(t *testing.T) {
		c := Condition{WindSpeed: 40, Visibility: 0, Pressure: 950, PrecipIntensity: 1}
		assert.Equal(t, 1.0, c.SailingDifficulty())
	})

	t.Run("low pressure adds", func(t *testing.T) {
		calm := Condition{WindSpeed: 10, Visibility: 5000, Pressure: 1013}
		trough := Condition{WindSpeed: 10, Visibility: 5000, Pressure: 980}
		assert.Greater(t, trough.SailingDifficulty(), calm.SailingDifficulty())
	})
}

func TestCrewComfort(t *testing.T) {
	ideal := Condition{Temperature: 22, Humidity: 0.5, WindSpeed: 5, Visibility: 10000, Pressure: 1013}
	assert.InDelta(t, 1.0, ideal.CrewComfort(), 1e-9)

	t.Run("heat reduces comfort", func(t *testing.T) {
		hot := ideal
		hot.Temperature = 40
		assert.Less(t, hot.CrewComfort(), ideal.CrewComfort())
	})

	t.Run("rain reduces comfort", func(t *testing.T) {
		wet := ideal
		wet.Precip = PrecipRain
		wet.PrecipIntensity = 0.8
		assert.Less(t, wet.CrewComfort(), ideal.CrewComfort())
	})

	t.Run("gale reduces comfort", func(t *testing.T) {
		windy := ideal
		windy.WindSpeed = 25
		assert.Less(t, windy.CrewComfort(), ideal.CrewComfort())
	})

	t.Run("always in range", func(t *testing.T) {
		awful := Condition{Temperature: -40, Humidity: 1, PrecipIntensity: 1, WindSpeed: 60}
		comfort := awful.CrewComfort()
		assert.GreaterOrEqual(t, comfort, 0.0)
		assert.LessOrEqual(t, comfort, 1.0)
	})
}
