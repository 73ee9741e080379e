// Package config reads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/oscars-th/internal/th"
)

// #region defaults
const (
	DefaultAddr     = "localhost:50061"
	DefaultLogLevel = "info"
)

// #endregion defaults

// #region config

// Config holds the settings shared by the th commands.
type Config struct {
	DBPath   string // TH_DB; empty disables persistence
	Addr     string // TH_ADDR
	LogLevel slog.Level
	Spectrum th.SpectrumOptions
}

// Load reads TH_DB, TH_ADDR, TH_LOG_LEVEL, TH_NPOINTS and TH_CURRENT_A.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	envOr := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		DBPath:   getenv("TH_DB"),
		Addr:     envOr("TH_ADDR", DefaultAddr),
		Spectrum: th.DefaultSpectrumOptions(),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(envOr("TH_LOG_LEVEL", DefaultLogLevel)))); err != nil {
		return Config{}, fmt.Errorf("TH_LOG_LEVEL: %w", err)
	}

	if v := getenv("TH_NPOINTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 2 || n > th.MaxNPoints {
			return Config{}, fmt.Errorf("TH_NPOINTS: want integer in [2, %d], got %q: %w", th.MaxNPoints, v, th.ErrInvalidArgument)
		}
		cfg.Spectrum.NPoints = n
	}
	if v := getenv("TH_CURRENT_A"); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil || !(a > 0) {
			return Config{}, fmt.Errorf("TH_CURRENT_A: want number > 0, got %q", v)
		}
		cfg.Spectrum.Current = a
	}
	return cfg, nil
}

// Logger builds a text slog.Logger at the configured level.
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

// #endregion config
