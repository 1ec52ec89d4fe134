// Package engine provides the real-time loop that drives the weather system
// forward at a fixed simulation timestep.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/talgya/tempest/internal/weather"
)

// TickSchedule defines when each callback layer runs relative to the tick
// counter. One tick advances the simulation by Runner.Dt seconds.
const (
	TicksPerSimHour = 60   // With the default Dt of 60s, 60 ticks = 1 sim-hour
	TicksPerSimDay  = 1440 // 24 hours × 60
)

// Runner steps a weather system on a wall-clock cadence. The system itself
// only ever sees simulation time; the runner is the single place the real
// clock appears, and it is injected so tests can fake it.
type Runner struct {
	System   *weather.System
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval (default 1 second)
	Dt       float64       // Sim-seconds advanced per tick
	Running  bool

	clock clockwork.Clock

	// Callbacks for each tick layer — populated during setup.
	OnTick func(tick uint64)
	OnHour func(tick uint64)
	OnDay  func(tick uint64)

	// ObserveUpdate, when set, receives the duration of each update pass.
	ObserveUpdate func(d time.Duration)
}

// NewRunner creates a runner with default cadence: one tick per real second,
// each advancing the simulation by one sim-minute.
func NewRunner(sys *weather.System, clock clockwork.Clock) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		System:   sys,
		Speed:    1.0,
		Interval: time.Second,
		Dt:       60,
		clock:    clock,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (r *Runner) Run() {
	r.Running = true
	slog.Info("weather engine started", "tick", r.Tick, "speed", r.Speed, "dt_seconds", r.Dt)

	for r.Running {
		if r.Speed <= 0 {
			// Paused — sleep briefly and check again.
			r.clock.Sleep(100 * time.Millisecond)
			continue
		}

		start := r.clock.Now()

		r.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := r.clock.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			r.clock.Sleep(target - elapsed)
		}
	}

	slog.Info("weather engine stopped", "tick", r.Tick)
}

// Stop halts the loop after the current tick completes.
func (r *Runner) Stop() {
	r.Running = false
}

// Step advances the simulation by one tick and fires the layer callbacks.
func (r *Runner) Step() {
	r.Tick++

	start := r.clock.Now()
	r.System.Update(r.Dt)
	if r.ObserveUpdate != nil {
		r.ObserveUpdate(r.clock.Since(start))
	}

	if r.OnTick != nil {
		r.OnTick(r.Tick)
	}
	if r.Tick%TicksPerSimHour == 0 && r.OnHour != nil {
		r.OnHour(r.Tick)
	}
	if r.Tick%TicksPerSimDay == 0 && r.OnDay != nil {
		r.OnDay(r.Tick)
	}
}

// SimTime returns a human-readable simulation time string from a tick number.
func SimTime(tick uint64) string {
	totalMinutes := tick
	minutes := totalMinutes % 60
	totalHours := totalMinutes / 60
	hours := totalHours % 24
	days := totalHours/24 + 1

	return fmt.Sprintf("Day %d, %d:%02d", days, hours, minutes)
}
