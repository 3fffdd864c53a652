package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cine-reservas-cli/logger"
)

type Config struct {
	DataDir          string
	FunctionsFile    string
	ReservationsFile string
	MoviesFile       string

	MaxSeats int

	LogLevel  string
	LogFormat string
}

// Load reads an optional .env from the working directory and then the
// process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:          getEnvStr(EnvDataDir, DefaultDataDir),
		FunctionsFile:    getEnvStr(EnvFunctionsFile, DefaultFunctionsFile),
		ReservationsFile: getEnvStr(EnvReservationsFile, DefaultReservationsFile),
		MoviesFile:       getEnvStr(EnvMoviesFile, DefaultMoviesFile),
		MaxSeats:         getEnvNum(EnvMaxSeats, DefaultMaxSeats),
		LogLevel:         getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat:        getEnvStr(EnvLogFormat, DefaultLogFormat),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(cfg.DataDir) == "" {
		problems = append(problems, "DataDir cannot be empty")
	}
	files := []struct{ name, value string }{
		{"FunctionsFile", cfg.FunctionsFile},
		{"ReservationsFile", cfg.ReservationsFile},
		{"MoviesFile", cfg.MoviesFile},
	}
	for _, file := range files {
		if strings.TrimSpace(file.value) == "" {
			problems = append(problems, fmt.Sprintf("%s cannot be empty", file.name))
		}
	}
	if cfg.FunctionsFile != "" && cfg.FunctionsFile == cfg.ReservationsFile {
		problems = append(problems, fmt.Sprintf("FunctionsFile and ReservationsFile must differ, both are %q", cfg.FunctionsFile))
	}
	if cfg.MaxSeats <= 0 {
		problems = append(problems, fmt.Sprintf("MaxSeats must be positive, got: %d", cfg.MaxSeats))
	}
	switch cfg.LogFormat {
	case logger.TEXT, logger.JSON:
	default:
		problems = append(problems, fmt.Sprintf("LogFormat must be %q or %q, got: %q", logger.TEXT, logger.JSON, cfg.LogFormat))
	}

	if len(problems) > 0 {
		msg := "configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) FunctionsPath() string {
	return cfg.resolve(cfg.FunctionsFile)
}

func (cfg *Config) ReservationsPath() string {
	return cfg.resolve(cfg.ReservationsFile)
}

func (cfg *Config) MoviesPath() string {
	return cfg.resolve(cfg.MoviesFile)
}

func (cfg *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.DataDir, name)
}

// NewLogger builds the process logger writing to out (stderr when nil).
func (cfg *Config) NewLogger(out io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  out,
		Service: "cine-reservas",
	})
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
