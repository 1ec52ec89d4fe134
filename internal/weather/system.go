package weather

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/talgya/tempest/internal/geom"
	"github.com/talgya/tempest/internal/noise"
)

// Bounds is the axis-aligned world region storms spawn within.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Contains reports whether a point is inside the bounds.
func (b Bounds) Contains(p geom.Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Config holds the baseline constants the system consumes.
type Config struct {
	Seed int64

	Bounds Bounds

	BaseWindStrength float64 // m/s scale for noise turbulence

	BaseTemperature  float64 // °C before seasonal/noise perturbation
	SeasonalTempAmp  float64 // °C of seasonal swing
	BaseHumidity     float64 // 0–1 before perturbation
	SeasonalHumidAmp float64 // seasonal humidity swing
	StormSpawnChance float64 // spawn probability per sim-second
	CellSpawnChance  float64 // spawn probability per sim-second
	MaxStorms        int
	MaxCells         int
}

// DefaultConfig returns a working baseline for a 100 km square archipelago.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed: seed,
		Bounds: Bounds{
			MinX: -50000, MinY: -50000,
			MaxX: 50000, MaxY: 50000,
		},
		BaseWindStrength: 8,
		BaseTemperature:  22,
		SeasonalTempAmp:  8,
		BaseHumidity:     0.55,
		SeasonalHumidAmp: 0.2,
		StormSpawnChance: 1.0 / 7200, // One storm every ~2 sim-hours on average
		CellSpawnChance:  1.0 / 3600,
		MaxStorms:        6,
		MaxCells:         12,
	}
}

// Event is a notable occurrence in the weather system.
type Event struct {
	Time        float64 `json:"time" db:"time"`
	Description string  `json:"description" db:"description"`
	Category    string  `json:"category" db:"category"` // "storm", "cell", "system"
}

// scheduledFn is a state change queued for a future simulation time and
// resolved inside Update. Replaces any temptation to spawn timer goroutines:
// everything happens on the single stepper.
type scheduledFn struct {
	at  float64
	run func(*System)
}

// Tuning constants for the ambient fields.
const (
	// seasonalRate converts sim-seconds to the slow seasonal sine; one full
	// cycle every 90 sim-days.
	seasonalRate = 2 * math.Pi / (90 * 24 * 3600)

	windNoiseScale  = 0.0008
	windTimeScale   = 0.01
	tempNoiseScale  = 0.0004
	tempNoiseAmp    = 3.0
	humidNoiseScale = 0.0004
	humidNoiseAmp   = 0.15
	pressNoiseScale = 0.0003
	pressNoiseAmp   = 25.0
	pressBase       = 1013.0
	stormNoiseScale = 0.0005

	windOctaves     = 4
	windPersistence = 0.5
	// windTurbOffset shifts the second turbulence sample in world meters so
	// the X and Y components come from decorrelated regions of one field.
	windTurbOffset = 997 / windNoiseScale

	baseVisibility = 10000.0

	maxEvents = 1000
)

// System is the weather orchestrator: it owns the pattern list, active storms
// and cells, the noise layers, and the single seeded random source. Exactly
// one goroutine calls Update; queries and snapshots may run concurrently from
// other goroutines and are serialized against Update by an internal lock.
type System struct {
	mu sync.RWMutex

	cfg      Config
	patterns []Pattern
	storms   []*Storm
	cells    []*Cell
	fields   *noise.Fields
	rng      *rand.Rand

	globalTime     float64
	seasonalFactor float64

	globalWindDir      geom.Vec2
	globalWindStrength float64

	events    []Event
	scheduled []scheduledFn

	stormsSpawned uint64
	stormsExpired uint64
	cellsSpawned  uint64
	cellsExpired  uint64
}

// NewSystem creates a weather system from a config. Two systems built from
// the same seed and stepped with the same dt sequence produce identical
// query results.
func NewSystem(cfg Config) *System {
	s := &System{
		cfg:      cfg,
		fields:   noise.NewFields(cfg.Seed),
		rng:      rand.New(rand.NewSource(cfg.Seed + 500)),
		patterns: defaultPatterns(),
	}
	s.seasonalFactor = 0.5
	s.globalWindDir, s.globalWindStrength = GlobalWind(s.patterns, 0, s.seasonalFactor)
	return s
}

// defaultPatterns is the fixed pattern list installed at initialization:
// steady trade winds, a seasonal monsoon, a daily sea-breeze cycle, and a
// weak wandering gust component.
func defaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:      "trade winds",
			Direction: geom.Vec2{X: 1, Y: 0.2}.Normalize(),
			Strength:  8,
			Kind:      PatternPersistent,
		},
		{
			Name:      "monsoon",
			Direction: geom.Vec2{X: -0.4, Y: 1}.Normalize(),
			Strength:  12,
			Kind:      PatternSeasonal,
		},
		{
			Name:      "sea breeze",
			Direction: geom.Vec2{X: 0, Y: -1},
			Strength:  4,
			Kind:      PatternCyclical,
			Period:    24 * 3600,
		},
		{
			Name:      "gust drift",
			Direction: geom.Vec2{X: 0.7, Y: -0.7}.Normalize(),
			Strength:  3,
			Kind:      PatternRandom,
			Phase:     1.3,
		},
	}
}

// GlobalTime returns the current simulation time in seconds.
func (s *System) GlobalTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalTime
}

// SeasonalFactor returns the slow seasonal sine in [0, 1].
func (s *System) SeasonalFactor() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seasonalFactor
}

// GlobalWindDirection returns the current pattern-driven wind heading.
func (s *System) GlobalWindDirection() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalWindDir.Heading()
}

// GlobalWindStrength returns the current pattern-driven wind strength in m/s.
func (s *System) GlobalWindStrength() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalWindStrength
}

// Patterns returns the pattern list. Patterns are installed once at
// initialization and never mutated, so no locking is needed.
func (s *System) Patterns() []Pattern { return s.patterns }

// Update advances the simulation by dt seconds: time, seasonal factor,
// global wind, scheduled events, storm stepping and spawning, then cells.
func (s *System) Update(dt float64) {
	if dt <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.globalTime += dt
	s.seasonalFactor = 0.5 + 0.5*math.Sin(s.globalTime*seasonalRate)
	s.globalWindDir, s.globalWindStrength = GlobalWind(s.patterns, s.globalTime, s.seasonalFactor)

	s.runScheduled()
	s.updateStorms(dt)
	s.trySpawnStorm(dt)
	s.updateCells(dt)
	s.trySpawnCell(dt)
}

// ScheduleAt queues a state change for the first Update at or after
// simulation time t.
func (s *System) ScheduleAt(t float64, fn func(*System)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledFn{at: t, run: fn})
}

// runScheduled resolves due entries. Runs under the update lock; scheduled
// functions must use the unexported spawn paths.
func (s *System) runScheduled() {
	if len(s.scheduled) == 0 {
		return
	}
	remaining := s.scheduled[:0]
	due := []scheduledFn{}
	for _, ev := range s.scheduled {
		if ev.at <= s.globalTime {
			due = append(due, ev)
		} else {
			remaining = append(remaining, ev)
		}
	}
	s.scheduled = remaining
	for _, ev := range due {
		ev.run(s)
	}
}

func (s *System) updateStorms(dt float64) {
	kept := s.storms[:0]
	for _, st := range s.storms {
		st.Update(s.globalTime, dt)
		if st.Expired(s.globalTime) {
			s.stormsExpired++
			s.emitEvent("storm", fmt.Sprintf("%s dissipated at (%.0f, %.0f)", st.Kind, st.Position.X, st.Position.Y))
			s.stormAftermath(st)
			continue
		}
		kept = append(kept, st)
	}
	s.storms = kept
}

// stormAftermath schedules the outflow boundary a dissipating convective
// storm leaves behind: a cold front forming a few minutes later at the
// storm's last position.
func (s *System) stormAftermath(st *Storm) {
	if st.Kind == StormRainSquall {
		return
	}
	pos := st.Position
	s.scheduled = append(s.scheduled, scheduledFn{at: s.globalTime + 300, run: func(sys *System) {
		if len(sys.cells) >= sys.cfg.MaxCells {
			return
		}
		sys.spawnCell(CellColdFront, pos)
	}})
}

func (s *System) updateCells(dt float64) {
	kept := s.cells[:0]
	for _, c := range s.cells {
		c.Update(s.globalTime, dt)
		if c.ShouldRemove() {
			s.cellsExpired++
			s.emitEvent("cell", fmt.Sprintf("%s cell faded at (%.0f, %.0f)", c.Kind, c.Position.X, c.Position.Y))
			continue
		}
		kept = append(kept, c)
	}
	s.cells = kept

	for i := 0; i < len(s.cells); i++ {
		for j := i + 1; j < len(s.cells); j++ {
			InteractCells(s.cells[i], s.cells[j])
		}
	}
}

// trySpawnStorm runs the per-tick stochastic storm spawn. The candidate
// position is uniform within bounds; the kind comes from the storm-intensity
// noise field at that position.
func (s *System) trySpawnStorm(dt float64) {
	if len(s.storms) >= s.cfg.MaxStorms {
		return
	}
	if s.rng.Float64() >= s.cfg.StormSpawnChance*dt {
		return
	}

	pos := s.randomPosition()
	sample := s.fields.StormIntensity.SampleAt(pos.X*stormNoiseScale, pos.Y*stormNoiseScale, s.globalTime*windTimeScale)
	severity := 0.5 + 0.5*sample // [-1,1] → [0,1]

	kind := StormRainSquall
	switch {
	case severity > 0.7:
		kind = StormHurricane
	case severity > 0.3:
		kind = StormThunderstorm
	}

	intensity := 0.6 + s.rng.Float64()*0.4
	s.spawnStorm(kind, pos, intensity)
}

// SpawnStorm creates and registers a storm at a position with the given
// severity. External callers (scenario scripting, tests) use this directly;
// the stochastic spawner goes through the same path.
func (s *System) SpawnStorm(kind StormKind, pos geom.Vec2, intensity float64) *Storm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnStorm(kind, pos, intensity)
}

func (s *System) spawnStorm(kind StormKind, pos geom.Vec2, intensity float64) *Storm {
	params := StormParamsFor(kind)

	// Storms drift with the steering flow, jittered so parallel storms
	// don't track identically.
	jitter := (s.rng.Float64() - 0.5) * 40 // ±20 degrees
	heading := geom.NormalizeDeg(s.globalWindDir.Heading() + jitter)
	vel := geom.FromHeading(heading).Scale(params.MovementSpeed)

	storm := NewStorm(kind, pos, vel, intensity, s.globalTime)
	s.storms = append(s.storms, storm)
	s.stormsSpawned++
	s.emitEvent("storm", fmt.Sprintf("%s spawned at (%.0f, %.0f) intensity %.2f", kind, pos.X, pos.Y, storm.Intensity))
	return storm
}

// trySpawnCell stochastically seeds pressure and front systems so the map
// stays weather-active even between storms.
func (s *System) trySpawnCell(dt float64) {
	if len(s.cells) >= s.cfg.MaxCells {
		return
	}
	if s.rng.Float64() >= s.cfg.CellSpawnChance*dt {
		return
	}

	kinds := CellKinds()
	kind := kinds[s.rng.Intn(len(kinds))]
	s.spawnCell(kind, s.randomPosition())
}

// SpawnCell creates and registers a weather cell at a position, drifting
// with the current global wind.
func (s *System) SpawnCell(kind CellKind, pos geom.Vec2) *Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnCell(kind, pos)
}

func (s *System) spawnCell(kind CellKind, pos geom.Vec2) *Cell {
	params := CellParamsFor(kind)
	vel := s.globalWindDir.Scale(params.MovementSpeed)
	cell := NewCell(kind, pos, vel, s.globalTime)
	s.cells = append(s.cells, cell)
	s.cellsSpawned++
	s.emitEvent("cell", fmt.Sprintf("%s cell formed at (%.0f, %.0f)", kind, pos.X, pos.Y))
	return cell
}

func (s *System) randomPosition() geom.Vec2 {
	b := s.cfg.Bounds
	return geom.Vec2{
		X: b.MinX + s.rng.Float64()*(b.MaxX-b.MinX),
		Y: b.MinY + s.rng.Float64()*(b.MaxY-b.MinY),
	}
}

// WindAt answers "what is the wind at (x, z)?": the global pattern wind,
// plus fractal noise turbulence, plus every active storm's weighted
// contribution. Cells do not contribute wind here; their wind signature
// reaches callers through WeatherAt's blended conditions.
func (s *System) WindAt(x, z float64) geom.Vec2 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.windAt(x, z)
}

func (s *System) windAt(x, z float64) geom.Vec2 {
	p := geom.Vec2{X: x, Y: z}

	wind := s.globalWindDir.Scale(s.globalWindStrength)

	t := s.globalTime * windTimeScale
	tx := s.fields.Wind.Octave(x, z, t, windOctaves, windNoiseScale, windPersistence)
	ty := s.fields.Wind.Octave(x+windTurbOffset, z+windTurbOffset, t, windOctaves, windNoiseScale, windPersistence)
	wind = wind.Add(geom.Vec2{X: tx, Y: ty}.Scale(s.cfg.BaseWindStrength * 0.3))

	for _, st := range s.storms {
		wind = wind.Add(st.WindAt(p, s.globalTime))
	}

	return wind
}

// WeatherAt answers "what is the weather at (x, z)?": the seasonal/noise
// ambient baseline, blended through every active cell and then every active
// storm, with visibility finally reduced by the resulting precipitation.
func (s *System) WeatherAt(x, z float64) Condition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := geom.Vec2{X: x, Y: z}
	t := s.globalTime

	temp := s.cfg.BaseTemperature +
		(s.seasonalFactor-0.5)*2*s.cfg.SeasonalTempAmp +
		s.fields.Temperature.SampleAt(x*tempNoiseScale, z*tempNoiseScale, t*windTimeScale)*tempNoiseAmp

	humidity := clamp01(s.cfg.BaseHumidity +
		(s.seasonalFactor-0.5)*s.cfg.SeasonalHumidAmp +
		s.fields.Humidity.SampleAt(x*humidNoiseScale, z*humidNoiseScale, t*windTimeScale)*humidNoiseAmp)

	pressure := pressBase + s.fields.Pressure.SampleAt(x*pressNoiseScale, z*pressNoiseScale, t*windTimeScale)*pressNoiseAmp

	// Threshold rule: ambient precipitation needs both moist air and a
	// pressure trough. Cells and storms layer their own precipitation on top.
	precipIntensity := 0.0
	precip := PrecipNone
	if humidity > 0.65 && pressure < 1008 {
		precipIntensity = clamp01((humidity - 0.65) / 0.35 * clamp01((1008-pressure)/20))
		precip = PrecipRain
		if temp < 0 {
			precip = PrecipSnow
		}
	}

	wind := s.windAt(x, z)

	cond := NewCondition(Condition{
		Temperature:     temp,
		Humidity:        humidity,
		Pressure:        pressure,
		Visibility:      baseVisibility,
		Precip:          precip,
		PrecipIntensity: precipIntensity,
		CloudCover:      clamp01((humidity - 0.2) * 1.25),
		WindSpeed:       wind.Length(),
		WindDirection:   wind.Heading(),
	})

	for _, c := range s.cells {
		cond = c.ConditionAt(p, cond)
	}
	for _, st := range s.storms {
		cond = st.ConditionAt(p, cond, t)
	}

	// Precipitation closes down visibility last, whatever produced it.
	cond.Visibility *= 1 - 0.85*cond.PrecipIntensity

	return NewCondition(cond)
}

// LightningAt runs lightning trials for every active storm at a point over a
// dt window and reports whether any strike lands. Uses the system's owned
// generator, so trial outcomes are reproducible for a fixed call sequence.
func (s *System) LightningAt(x, z, dt float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := geom.Vec2{X: x, Y: z}
	for _, st := range s.storms {
		if st.ShouldStrikeLightning(p, s.globalTime, dt, s.rng) {
			s.emitEvent("storm", fmt.Sprintf("lightning strike at (%.0f, %.0f)", x, z))
			return true
		}
	}
	return false
}

// WaveHeight estimates open-water wave height in meters from global wind
// strength plus the strongest active storm.
func (s *System) WaveHeight() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxStorm := 0.0
	for _, st := range s.storms {
		if e := st.effectiveIntensity(s.globalTime); e > maxStorm {
			maxStorm = e
		}
	}
	return 0.3 + s.globalWindStrength*0.08 + maxStorm*2.5
}

// ActiveStorms returns value snapshots of the active storms.
func (s *System) ActiveStorms() []Storm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Storm, 0, len(s.storms))
	for _, st := range s.storms {
		out = append(out, *st)
	}
	return out
}

// ActiveCells returns value snapshots of the active cells.
func (s *System) ActiveCells() []Cell {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Cell, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, *c)
	}
	return out
}

// Events returns the recent event log, oldest first.
func (s *System) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *System) emitEvent(category, description string) {
	s.events = append(s.events, Event{
		Time:        s.globalTime,
		Description: description,
		Category:    category,
	})
	if len(s.events) > maxEvents {
		s.events = s.events[len(s.events)-maxEvents:]
	}
}

// Stats is an aggregate snapshot for observability.
type Stats struct {
	GlobalTime     float64 `json:"global_time"`
	SeasonalFactor float64 `json:"seasonal_factor"`
	ActiveStorms   int     `json:"active_storms"`
	ActiveCells    int     `json:"active_cells"`
	StormsSpawned  uint64  `json:"storms_spawned"`
	StormsExpired  uint64  `json:"storms_expired"`
	CellsSpawned   uint64  `json:"cells_spawned"`
	CellsExpired   uint64  `json:"cells_expired"`
}

// Stats returns the current aggregate counters.
func (s *System) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		GlobalTime:     s.globalTime,
		SeasonalFactor: s.seasonalFactor,
		ActiveStorms:   len(s.storms),
		ActiveCells:    len(s.cells),
		StormsSpawned:  s.stormsSpawned,
		StormsExpired:  s.stormsExpired,
		CellsSpawned:   s.cellsSpawned,
		CellsExpired:   s.cellsExpired,
	}
}
