// Package weather implements the dynamic weather simulation engine: global
// wind patterns, noise-driven ambient fields, and a population of evolving
// weather cells and storms, combined into deterministic point queries.
package weather

import (
	"fmt"
	"strings"

	"github.com/talgya/tempest/internal/geom"
)

// PrecipKind enumerates precipitation types.
type PrecipKind uint8

const (
	PrecipNone PrecipKind = iota
	PrecipRain
	PrecipSnow
	PrecipHail
)

// String returns a human-readable precipitation name.
func (p PrecipKind) String() string {
	switch p {
	case PrecipRain:
		return "rain"
	case PrecipSnow:
		return "snow"
	case PrecipHail:
		return "hail"
	default:
		return "none"
	}
}

// Condition is an immutable snapshot of the weather at one point. Ratio
// fields (humidity, cloud cover, precipitation intensity) are held in [0, 1]
// and wind direction in [0, 360); out-of-range inputs saturate rather than
// error.
type Condition struct {
	Temperature     float64    `json:"temperature"`      // °C
	Humidity        float64    `json:"humidity"`         // 0–1
	Pressure        float64    `json:"pressure"`         // hPa
	Visibility      float64    `json:"visibility"`       // meters
	Precip          PrecipKind `json:"precip"`
	PrecipIntensity float64    `json:"precip_intensity"` // 0–1
	CloudCover      float64    `json:"cloud_cover"`      // 0–1
	WindSpeed       float64    `json:"wind_speed"`       // m/s
	WindDirection   float64    `json:"wind_direction"`   // degrees [0, 360)
}

// NewCondition returns c with every bounded field clamped into range.
func NewCondition(c Condition) Condition {
	c.Humidity = clamp01(c.Humidity)
	c.PrecipIntensity = clamp01(c.PrecipIntensity)
	c.CloudCover = clamp01(c.CloudCover)
	if c.WindSpeed < 0 {
		c.WindSpeed = 0
	}
	if c.Visibility < 0 {
		c.Visibility = 0
	}
	c.WindDirection = geom.NormalizeDeg(c.WindDirection)
	return c
}

// Description composes a qualitative summary from temperature, cloud,
// precipitation, and wind bands.
func (c Condition) Description() string {
	var temp string
	switch {
	case c.Temperature < 0:
		temp = "freezing"
	case c.Temperature < 10:
		temp = "cold"
	case c.Temperature < 20:
		temp = "mild"
	case c.Temperature < 30:
		temp = "warm"
	default:
		temp = "hot"
	}

	var sky string
	switch {
	case c.CloudCover < 0.2:
		sky = "clear skies"
	case c.CloudCover < 0.5:
		sky = "partly cloudy"
	case c.CloudCover < 0.8:
		sky = "mostly cloudy"
	default:
		sky = "overcast"
	}

	parts := []string{fmt.Sprintf("%s and %s", temp, sky)}

	if c.Precip != PrecipNone && c.PrecipIntensity > 0 {
		var band string
		switch {
		case c.PrecipIntensity < 0.3:
			band = "light"
		case c.PrecipIntensity < 0.7:
			band = "moderate"
		default:
			band = "heavy"
		}
		parts = append(parts, fmt.Sprintf("%s %s", band, c.Precip))
	}

	switch {
	case c.WindSpeed < 2:
		parts = append(parts, "calm air")
	case c.WindSpeed < 8:
		parts = append(parts, "a light breeze")
	case c.WindSpeed < 15:
		parts = append(parts, "a fresh wind")
	case c.WindSpeed < 25:
		parts = append(parts, "strong winds")
	default:
		parts = append(parts, "gale-force winds")
	}

	return strings.Join(parts, ", ")
}

// SuitableForSailing reports whether conditions allow safe sailing.
func (c Condition) SuitableForSailing() bool {
	if c.PrecipIntensity > 0.8 {
		return false
	}
	if c.WindSpeed > 25 {
		return false
	}
	if c.Visibility < 100 {
		return false
	}
	return true
}

// SailingDifficulty scores conditions from 0 (trivial) to 1 (extreme).
// Dead calm is penalized as well as heavy wind: a becalmed ship is stuck.
func (c Condition) SailingDifficulty() float64 {
	difficulty := 0.0

	if c.WindSpeed < 2 {
		difficulty += 0.3
	} else if c.WindSpeed > 15 {
		difficulty += (c.WindSpeed - 15) / 20
	}

	difficulty += c.PrecipIntensity * 0.4

	if c.Visibility < 500 {
		difficulty += (500 - c.Visibility) / 500 * 0.3
	}

	if c.Pressure < 1000 {
		difficulty += (1000 - c.Pressure) / 1000 * 0.2
	}

	return clamp01(difficulty)
}

// CrewComfort scores how pleasant conditions are for a crew, 0–1.
// Independent comfort factors multiply so any single miserable dimension
// drags the whole score down.
func (c Condition) CrewComfort() float64 {
	tempFactor := 1.0 - minf(1.0, absf(c.Temperature-22)/30)
	humidityFactor := 1.0 - absf(c.Humidity-0.5)*0.8
	precipFactor := 1.0 - c.PrecipIntensity*0.7

	windFactor := 1.0
	if c.WindSpeed > 12 {
		windFactor = 1.0 - minf(1.0, (c.WindSpeed-12)/20)
	}

	return clamp01(tempFactor * humidityFactor * precipFactor * windFactor)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
