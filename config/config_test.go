package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{EnvDataDir, EnvFunctionsFile, EnvReservationsFile, EnvMoviesFile, EnvMaxSeats, EnvLogLevel, EnvLogFormat} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(".", "funciones.csv"), cfg.FunctionsPath())
	assert.Equal(t, filepath.Join(".", "reservas.json"), cfg.ReservationsPath())
	assert.Equal(t, filepath.Join(".", "peliculas.csv"), cfg.MoviesPath())
	assert.Equal(t, DefaultMaxSeats, cfg.MaxSeats)
}

func TestLoad_Env(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvFunctionsFile, "shows.csv")
	t.Setenv(EnvMaxSeats, "120")
	t.Setenv(EnvLogFormat, "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "shows.csv"), cfg.FunctionsPath())
	assert.Equal(t, 120, cfg.MaxSeats)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv(EnvReservationsFile, "")
	require.NoError(t, os.Unsetenv(EnvReservationsFile))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CINE_RESERVATIONS_FILE=ledger.json\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ledger.json", cfg.ReservationsFile)
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := &Config{
		DataDir:          "",
		FunctionsFile:    "same.json",
		ReservationsFile: "same.json",
		MoviesFile:       "peliculas.csv",
		MaxSeats:         0,
		LogFormat:        "xml",
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1. DataDir cannot be empty")
	assert.Contains(t, err.Error(), "must differ")
	assert.Contains(t, err.Error(), "MaxSeats must be positive")
	assert.Contains(t, err.Error(), "LogFormat")
}
