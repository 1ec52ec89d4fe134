// Command weathersim runs the tempest dynamic weather simulation daemon.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/talgya/tempest/internal/api"
	"github.com/talgya/tempest/internal/config"
	"github.com/talgya/tempest/internal/engine"
	"github.com/talgya/tempest/internal/history"
	"github.com/talgya/tempest/internal/observability"
	"github.com/talgya/tempest/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("tempest — dynamic weather simulation",
		"seed", cfg.Seed,
		"world_size_m", cfg.WorldSize,
		"tick_interval", cfg.TickInterval,
		"sim_seconds_per_tick", cfg.TickSeconds,
	)

	// ── History database ─────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := history.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("history database opened", "path", cfg.DBPath)

	// ── Weather system (deterministic from seed) ─────────────────────
	sysCfg := weather.DefaultConfig(cfg.Seed)
	half := cfg.WorldSize / 2
	sysCfg.Bounds = weather.Bounds{MinX: -half, MinY: -half, MaxX: half, MaxY: half}
	sysCfg.BaseWindStrength = cfg.BaseWindStrength
	sysCfg.BaseTemperature = cfg.BaseTemperature
	sysCfg.SeasonalTempAmp = cfg.SeasonalTempAmp
	sysCfg.BaseHumidity = cfg.BaseHumidity
	sysCfg.SeasonalHumidAmp = cfg.SeasonalHumidAmp
	sysCfg.StormSpawnChance = cfg.StormSpawnChance
	sysCfg.CellSpawnChance = cfg.CellSpawnChance

	sys := weather.NewSystem(sysCfg)
	metrics := observability.NewMetrics(sys)

	// ── Runner ───────────────────────────────────────────────────────
	runner := engine.NewRunner(sys, clockwork.NewRealClock())
	runner.Interval = cfg.TickInterval
	runner.Dt = cfg.TickSeconds

	// Record one observation at the world origin every sim-hour, plus any
	// new engine events.
	var eventMark float64
	runner.OnHour = func(tick uint64) {
		cond := sys.WeatherAt(0, 0)
		stats := sys.Stats()
		sample := history.Sample{
			Tick:            tick,
			SimTime:         stats.GlobalTime,
			Temperature:     cond.Temperature,
			Humidity:        cond.Humidity,
			Pressure:        cond.Pressure,
			PrecipIntensity: cond.PrecipIntensity,
			WindSpeed:       cond.WindSpeed,
			WindDirection:   cond.WindDirection,
			WaveHeight:      sys.WaveHeight(),
			ActiveStorms:    stats.ActiveStorms,
			ActiveCells:     stats.ActiveCells,
		}
		if err := db.RecordSample(sample); err != nil {
			slog.Error("record sample failed", "error", err)
		}
		if eventMark, err = db.RecordEvents(tick, sys.Events(), eventMark); err != nil {
			slog.Error("record events failed", "error", err)
		}
	}

	runner.OnDay = func(tick uint64) {
		stats := sys.Stats()
		cond := sys.WeatherAt(0, 0)
		slog.Info("daily report",
			"tick", tick,
			"sim_time", engine.SimTime(tick),
			"weather", cond.Description(),
			"wind_strength", fmt.Sprintf("%.1f", sys.GlobalWindStrength()),
			"wave_height", fmt.Sprintf("%.2f", sys.WaveHeight()),
			"active_storms", stats.ActiveStorms,
			"active_cells", stats.ActiveCells,
			"storms_spawned", stats.StormsSpawned,
		)
	}

	runner.OnTick = func(tick uint64) {
		metrics.TicksTotal.Inc()
	}
	runner.ObserveUpdate = func(d time.Duration) {
		metrics.UpdateDuration.Observe(d.Seconds())
	}

	// ── HTTP API ─────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("TEMPEST_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sys:      sys,
		Runner:   runner,
		DB:       db,
		Metrics:  metrics,
		Addr:     cfg.HTTPAddr,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Start ────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("tempest is blowing: API at http://localhost%s/api/v1/status\n", cfg.HTTPAddr)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	fmt.Println("Simulation stopped.")
}
