// Package noise provides deterministic continuous noise fields built on
// layered simplex noise. Each field is derived from the world seed plus a
// distinct offset so the wind, temperature, humidity, pressure, and
// storm-intensity layers stay decorrelated.
package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Field is a seeded 2D noise sampler with an optional time axis.
// Samples are in [-1, 1].
type Field struct {
	noise opensimplex.Noise
}

// NewField creates a field from a world seed and a per-field offset.
// Fields built from the same seed+offset produce identical samples.
func NewField(seed, offset int64) *Field {
	return &Field{noise: opensimplex.New(seed + offset)}
}

// Sample returns the static field value at (x, y).
func (f *Field) Sample(x, y float64) float64 {
	return f.noise.Eval2(x, y)
}

// SampleAt returns the field value at (x, y) at time t, using the third
// noise dimension as the time axis.
func (f *Field) SampleAt(x, y, t float64) float64 {
	return f.noise.Eval3(x, y, t)
}

// Octave layers multiple frequencies of the field for fractal detail.
// Persistence controls how quickly higher octaves fade; the result stays
// normalized to [-1, 1].
func (f *Field) Octave(x, y, t float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += f.noise.Eval3(x*frequency, y*frequency, t) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Per-field seed offsets. Distinct primes so layers never alias even for
// adjacent world seeds.
const (
	offsetWind           = 0
	offsetTemperature    = 101
	offsetHumidity       = 211
	offsetPressure       = 307
	offsetStormIntensity = 401
)

// Fields bundles the five independent layers the weather system samples.
type Fields struct {
	Wind           *Field
	Temperature    *Field
	Humidity       *Field
	Pressure       *Field
	StormIntensity *Field
}

// NewFields derives all five layers from one world seed.
func NewFields(seed int64) *Fields {
	return &Fields{
		Wind:           NewField(seed, offsetWind),
		Temperature:    NewField(seed, offsetTemperature),
		Humidity:       NewField(seed, offsetHumidity),
		Pressure:       NewField(seed, offsetPressure),
		StormIntensity: NewField(seed, offsetStormIntensity),
	}
}
