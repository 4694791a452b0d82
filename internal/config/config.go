// Package config loads runtime settings from the environment (and an optional
// .env file) and builds the process logger.
package config

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/iris-locator/internal/iris"
)

// Environment variable names.
const (
	EnvLogLevel      = "IRIS_MCP_LOG_LEVEL"
	EnvLogFormat     = "IRIS_MCP_LOG_FORMAT"
	EnvWorkers       = "IRIS_WORKERS"
	EnvSampler       = "IRIS_SAMPLER"
	EnvPointsStep    = "IRIS_POINTS_STEP"
	EnvStartR        = "IRIS_START_R"
	EnvEndR          = "IRIS_END_R"
	EnvRadiusStep    = "IRIS_RADIUS_STEP"
	EnvSearchTimeout = "IRIS_SEARCH_TIMEOUT"
	EnvAllowPartial  = "IRIS_ALLOW_PARTIAL"
)

// Sampler names accepted by IRIS_SAMPLER.
const (
	SamplerMidpoint = "midpoint"
	SamplerMask     = "mask"
)

// Config holds everything the commands need to build a searcher and a logger.
type Config struct {
	LogLevel  logrus.Level
	LogFormat string

	Workers      int
	Sampler      string
	Defaults     iris.Params
	Timeout      time.Duration
	AllowPartial bool
}

// Default returns the built-in settings. The search defaults follow the
// original notebook: radii 10..30 step 1, grid step 3.
func Default() *Config {
	return &Config{
		LogLevel: logrus.InfoLevel,
		Workers:  runtime.NumCPU(),
		Sampler:  SamplerMidpoint,
		Defaults: iris.Params{
			PointsStep: 3,
			Radius:     iris.RadiusRange{Start: 10, End: 30, Step: 1},
		},
	}
}

// Load reads a .env file from the working directory when one exists, then
// overlays the environment on Default. Malformed values are errors.
func Load() (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = lvl
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return nil, fmt.Errorf("%s: unknown format %q", EnvLogFormat, v)
		}
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvSampler); ok && v != "" {
		v = strings.ToLower(v)
		if v != SamplerMidpoint && v != SamplerMask {
			return nil, fmt.Errorf("%s: unknown sampler %q", EnvSampler, v)
		}
		if v == SamplerMask && !iris.MaskSamplerAvailable() {
			return nil, fmt.Errorf("%s: %w", EnvSampler, iris.ErrMaskSamplerUnavailable)
		}
		cfg.Sampler = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvWorkers, &cfg.Workers},
		{EnvPointsStep, &cfg.Defaults.PointsStep},
		{EnvStartR, &cfg.Defaults.Radius.Start},
		{EnvEndR, &cfg.Defaults.Radius.End},
		{EnvRadiusStep, &cfg.Defaults.Radius.Step},
	}
	for _, f := range ints {
		v, ok := lookup(f.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}

	if v, ok := lookup(EnvSearchTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvSearchTimeout, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup(EnvAllowPartial); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvAllowPartial, err)
		}
		cfg.AllowPartial = b
	}

	if err := cfg.Defaults.Validate(); err != nil {
		return nil, fmt.Errorf("default search parameters: %w", err)
	}
	return cfg, nil
}

// SamplerFactory returns the iris.SamplerFactory named by Sampler.
func (c *Config) SamplerFactory() iris.SamplerFactory {
	if c.Sampler == SamplerMask {
		return iris.NewMaskSampler
	}
	return iris.NewMidpointSampler
}

// Searcher builds an iris.Searcher from the config.
func (c *Config) Searcher(logger logrus.FieldLogger) *iris.Searcher {
	return &iris.Searcher{
		Workers:      c.Workers,
		Sampler:      c.SamplerFactory(),
		AllowPartial: c.AllowPartial,
		Logger:       logger,
	}
}

// NewLogger builds the process logger. Debug level defaults to colored text
// with full timestamps, anything else to JSON.
func (c *Config) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(c.LogLevel)

	format := c.LogFormat
	if format == "" {
		format = "json"
		if c.LogLevel >= logrus.DebugLevel {
			format = "text"
		}
	}
	if format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
