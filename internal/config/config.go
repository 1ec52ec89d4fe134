// Package config loads service settings from environment variables,
// applying defaults where unset.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all daemon settings.
type Config struct {
	Seed      int64
	WorldSize float64 // World is a square of this many meters per side

	BaseWindStrength float64
	BaseTemperature  float64
	SeasonalTempAmp  float64
	BaseHumidity     float64
	SeasonalHumidAmp float64
	StormSpawnChance float64 // Per sim-second
	CellSpawnChance  float64

	TickInterval time.Duration // Real time per tick
	TickSeconds  float64       // Sim-seconds per tick

	HTTPAddr string
	DBPath   string
	AdminKey string
	LogLevel string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	seed, err := envInt64("TEMPEST_SEED", 42)
	if err != nil {
		return nil, err
	}

	worldSize, err := envFloat("TEMPEST_WORLD_SIZE", 100000)
	if err != nil {
		return nil, err
	}
	if worldSize <= 0 {
		return nil, errors.New("TEMPEST_WORLD_SIZE must be positive")
	}

	baseWind, err := envFloat("TEMPEST_BASE_WIND", 8)
	if err != nil {
		return nil, err
	}

	baseTemp, err := envFloat("TEMPEST_BASE_TEMP", 22)
	if err != nil {
		return nil, err
	}

	tempAmp, err := envFloat("TEMPEST_SEASONAL_TEMP_AMP", 8)
	if err != nil {
		return nil, err
	}

	baseHumidity, err := envFloat("TEMPEST_BASE_HUMIDITY", 0.55)
	if err != nil {
		return nil, err
	}
	if baseHumidity < 0 || baseHumidity > 1 {
		return nil, errors.New("TEMPEST_BASE_HUMIDITY must be in [0, 1]")
	}

	humidAmp, err := envFloat("TEMPEST_SEASONAL_HUMIDITY_AMP", 0.2)
	if err != nil {
		return nil, err
	}

	stormChance, err := envFloat("TEMPEST_STORM_SPAWN_CHANCE", 1.0/7200)
	if err != nil {
		return nil, err
	}
	if stormChance < 0 || stormChance > 1 {
		return nil, errors.New("TEMPEST_STORM_SPAWN_CHANCE must be in [0, 1]")
	}

	cellChance, err := envFloat("TEMPEST_CELL_SPAWN_CHANCE", 1.0/3600)
	if err != nil {
		return nil, err
	}
	if cellChance < 0 || cellChance > 1 {
		return nil, errors.New("TEMPEST_CELL_SPAWN_CHANCE must be in [0, 1]")
	}

	tickIntervalStr := envOrDefault("TEMPEST_TICK_INTERVAL", "1s")
	tickInterval, err := time.ParseDuration(tickIntervalStr)
	if err != nil || tickInterval <= 0 {
		return nil, errors.New("invalid TEMPEST_TICK_INTERVAL")
	}

	tickSeconds, err := envFloat("TEMPEST_TICK_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	if tickSeconds <= 0 {
		return nil, errors.New("TEMPEST_TICK_SECONDS must be positive")
	}

	cfg := &Config{
		Seed:             seed,
		WorldSize:        worldSize,
		BaseWindStrength: baseWind,
		BaseTemperature:  baseTemp,
		SeasonalTempAmp:  tempAmp,
		BaseHumidity:     baseHumidity,
		SeasonalHumidAmp: humidAmp,
		StormSpawnChance: stormChance,
		CellSpawnChance:  cellChance,
		TickInterval:     tickInterval,
		TickSeconds:      tickSeconds,
		HTTPAddr:         envOrDefault("TEMPEST_HTTP_ADDR", ":8080"),
		DBPath:           envOrDefault("TEMPEST_DB_PATH", "data/tempest.db"),
		AdminKey:         os.Getenv("TEMPEST_ADMIN_KEY"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
