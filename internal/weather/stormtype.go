package weather

// StormKind tags a storm variant. Spawn tiers map onto the storm-intensity
// noise field: rain squalls are the mild tier, thunderstorms moderate,
// hurricanes severe.
type StormKind uint8

const (
	StormRainSquall StormKind = iota
	StormThunderstorm
	StormHurricane
	stormKindCount
)

// String returns a human-readable storm kind name.
func (k StormKind) String() string {
	switch k {
	case StormRainSquall:
		return "rain-squall"
	case StormThunderstorm:
		return "thunderstorm"
	case StormHurricane:
		return "hurricane"
	default:
		return "unknown"
	}
}

// StormParams is the static parameter record for one storm variant.
type StormParams struct {
	Radius             float64 // meters
	Duration           float64 // sim seconds
	MaxWindSpeed       float64 // m/s at peak
	MinPressure        float64 // hPa at peak
	PrecipIntensity    float64 // 0–1 at peak
	Precip             PrecipKind
	LightningFrequency float64 // strikes per minute at peak
	MovementSpeed      float64 // m/s of drift
	MinVisibility      float64 // meters at peak
}

var stormTable = [stormKindCount]StormParams{
	StormRainSquall: {
		Radius:          3000,
		Duration:        3600,
		MaxWindSpeed:    15,
		MinPressure:     1000,
		PrecipIntensity: 0.5,
		Precip:          PrecipRain,
		MovementSpeed:   8,
		MinVisibility:   2000,
	},
	StormThunderstorm: {
		Radius:             5000,
		Duration:           2 * 3600,
		MaxWindSpeed:       22,
		MinPressure:        985,
		PrecipIntensity:    0.8,
		Precip:             PrecipRain,
		LightningFrequency: 30,
		MovementSpeed:      6,
		MinVisibility:      800,
	},
	StormHurricane: {
		Radius:          20000,
		Duration:        12 * 3600,
		MaxWindSpeed:    45,
		MinPressure:     950,
		PrecipIntensity: 1.0,
		Precip:          PrecipRain,
		MovementSpeed:   5,
		MinVisibility:   300,
	},
}

// StormParamsFor returns the parameter record for a storm variant.
func StormParamsFor(kind StormKind) StormParams {
	if kind >= stormKindCount {
		return stormTable[StormRainSquall]
	}
	return stormTable[kind]
}

// StormKinds lists every storm variant.
func StormKinds() []StormKind {
	return []StormKind{StormRainSquall, StormThunderstorm, StormHurricane}
}
