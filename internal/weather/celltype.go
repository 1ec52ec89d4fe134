package weather

// CellKind tags a weather cell variant. Variant behavior lives in free
// functions over (kind, runtime state); the kind itself only indexes the
// parameter table.
type CellKind uint8

const (
	CellHighPressure CellKind = iota
	CellLowPressure
	CellWarmFront
	CellColdFront
	CellSquallLine
	cellKindCount
)

// String returns a human-readable cell kind name.
func (k CellKind) String() string {
	switch k {
	case CellHighPressure:
		return "high-pressure"
	case CellLowPressure:
		return "low-pressure"
	case CellWarmFront:
		return "warm-front"
	case CellColdFront:
		return "cold-front"
	case CellSquallLine:
		return "squall-line"
	default:
		return "unknown"
	}
}

// CellParams is the static parameter record for one cell variant. Records
// are shared by value across every instance of the variant.
type CellParams struct {
	BaseRadius          float64 // meters
	MinRadius           float64
	MaxRadius           float64
	Lifespan            float64 // sim seconds
	GrowthRate          float64 // m/s of radius growth
	RotationSpeed       float64 // deg/s
	IntensityChangeRate float64 // intensity units per second of easing
	MovementSpeed       float64 // m/s of drift
	Base                Condition
}

// cellTable holds one parameter record per variant. Indexed by CellKind.
var cellTable = [cellKindCount]CellParams{
	CellHighPressure: {
		BaseRadius:          6000,
		MinRadius:           3000,
		MaxRadius:           12000,
		Lifespan:            6 * 3600,
		GrowthRate:          0.4,
		RotationSpeed:       -0.3,
		IntensityChangeRate: 0.002,
		MovementSpeed:       2,
		Base: Condition{
			Temperature:   26,
			Humidity:      0.3,
			Pressure:      1028,
			Visibility:    15000,
			Precip:        PrecipNone,
			CloudCover:    0.1,
			WindSpeed:     3,
			WindDirection: 0,
		},
	},
	CellLowPressure: {
		BaseRadius:          5000,
		MinRadius:           2500,
		MaxRadius:           10000,
		Lifespan:            5 * 3600,
		GrowthRate:          0.5,
		RotationSpeed:       0.5,
		IntensityChangeRate: 0.002,
		MovementSpeed:       4,
		Base: Condition{
			Temperature:     18,
			Humidity:        0.85,
			Pressure:        995,
			Visibility:      6000,
			Precip:          PrecipRain,
			PrecipIntensity: 0.5,
			CloudCover:      0.9,
			WindSpeed:       12,
		},
	},
	CellWarmFront: {
		BaseRadius:          4500,
		MinRadius:           2000,
		MaxRadius:           8000,
		Lifespan:            4 * 3600,
		GrowthRate:          0.6,
		RotationSpeed:       0.1,
		IntensityChangeRate: 0.003,
		MovementSpeed:       5,
		Base: Condition{
			Temperature:     28,
			Humidity:        0.7,
			Pressure:        1008,
			Visibility:      8000,
			Precip:          PrecipRain,
			PrecipIntensity: 0.3,
			CloudCover:      0.7,
			WindSpeed:       8,
		},
	},
	CellColdFront: {
		BaseRadius:          4000,
		MinRadius:           2000,
		MaxRadius:           8000,
		Lifespan:            3 * 3600,
		GrowthRate:          0.8,
		RotationSpeed:       0.2,
		IntensityChangeRate: 0.004,
		MovementSpeed:       7,
		Base: Condition{
			Temperature:     8,
			Humidity:        0.6,
			Pressure:        1005,
			Visibility:      7000,
			Precip:          PrecipRain,
			PrecipIntensity: 0.45,
			CloudCover:      0.8,
			WindSpeed:       14,
		},
	},
	CellSquallLine: {
		BaseRadius:          2500,
		MinRadius:           1000,
		MaxRadius:           4000,
		Lifespan:            1800,
		GrowthRate:          1.5,
		RotationSpeed:       0.4,
		IntensityChangeRate: 0.01,
		MovementSpeed:       10,
		Base: Condition{
			Temperature:     20,
			Humidity:        0.8,
			Pressure:        1000,
			Visibility:      3000,
			Precip:          PrecipRain,
			PrecipIntensity: 0.7,
			CloudCover:      0.95,
			WindSpeed:       18,
		},
	},
}

// CellParamsFor returns the parameter record for a cell variant.
func CellParamsFor(kind CellKind) CellParams {
	if kind >= cellKindCount {
		return cellTable[CellHighPressure]
	}
	return cellTable[kind]
}

// CellKinds lists every cell variant.
func CellKinds() []CellKind {
	return []CellKind{CellHighPressure, CellLowPressure, CellWarmFront, CellColdFront, CellSquallLine}
}
