package config

import (
	"log/slog"
	"strconv"
	"testing"

	"github.com/danielpatrickdp/oscars-th/internal/th"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, th.DefaultSpectrumOptions(), cfg.Spectrum)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"TH_DB":        "/tmp/th.db",
		"TH_ADDR":      "0.0.0.0:9000",
		"TH_LOG_LEVEL": "debug",
		"TH_NPOINTS":   "64",
		"TH_CURRENT_A": "0.5",
	}))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/th.db", cfg.DBPath)
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, th.SpectrumOptions{NPoints: 64, Current: 0.5}, cfg.Spectrum)
}

func TestLoad_Invalid(t *testing.T) {
	bad := []map[string]string{
		{"TH_LOG_LEVEL": "loud"},
		{"TH_NPOINTS": "1"},
		{"TH_NPOINTS": "many"},
		{"TH_NPOINTS": "100001"},
		{"TH_CURRENT_A": "0"},
		{"TH_CURRENT_A": "-1"},
	}
	for _, env := range bad {
		_, err := load(envMap(env))
		assert.Error(t, err, "env %v", env)
	}
}

func TestLoad_NPointsBound(t *testing.T) {
	cfg, err := load(envMap(map[string]string{"TH_NPOINTS": strconv.Itoa(th.MaxNPoints)}))
	require.NoError(t, err)
	assert.Equal(t, th.MaxNPoints, cfg.Spectrum.NPoints)

	_, err = load(envMap(map[string]string{"TH_NPOINTS": strconv.Itoa(th.MaxNPoints + 1)}))
	assert.ErrorIs(t, err, th.ErrInvalidArgument)
}

func TestLogger(t *testing.T) {
	cfg, err := load(envMap(map[string]string{"TH_LOG_LEVEL": "warn"}))
	require.NoError(t, err)
	l := cfg.Logger()
	assert.False(t, l.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, l.Enabled(t.Context(), slog.LevelWarn))
}
