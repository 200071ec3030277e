// Package config loads docaudit settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/docaudit/internal/batcher"
	"github.com/dshills/docaudit/internal/evaluator"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid configuration")

// Environment variables applied by ApplyEnv
const (
	EnvAPIKey       = "ANTHROPIC_API_KEY"
	EnvProvider     = "DOCAUDIT_PROVIDER"
	EnvModel        = "DOCAUDIT_MODEL"
	EnvDBPath       = "DOCAUDIT_DB_PATH"
	EnvMetricsPath  = "DOCAUDIT_METRICS_PATH"
	EnvOutputPath   = "DOCAUDIT_OUTPUT_PATH"
	EnvBatchSize    = "DOCAUDIT_BATCH_SIZE"
	EnvMaxTokens    = "DOCAUDIT_MAX_TOKENS_PER_REQUEST"
	EnvWorkers      = "DOCAUDIT_WORKERS"
	EnvRequestsRate = "DOCAUDIT_REQUESTS_PER_SECOND"
)

// Config captures every knob of an analysis run
type Config struct {
	Provider            string        `yaml:"provider"`
	APIKey              string        `yaml:"api_key"`
	Model               string        `yaml:"model"`
	MaxTokens           int           `yaml:"max_tokens"`
	MaxTokensPerRequest int           `yaml:"max_tokens_per_request"`
	BatchSize           int           `yaml:"batch_size"`
	Temperature         float64       `yaml:"temperature"`
	MetricsPath         string        `yaml:"metrics_path"`
	OutputPath          string        `yaml:"output_path"`
	DBPath              string        `yaml:"db_path"`
	Workers             int           `yaml:"workers"`
	RequestsPerSecond   float64       `yaml:"requests_per_second"`
	MaxRetries          int           `yaml:"max_retries"`
	CacheSize           int           `yaml:"cache_size"`
	Timeout             time.Duration `yaml:"timeout"`
	IncludeUndocumented bool          `yaml:"include_undocumented"`
	IncludeTests        bool          `yaml:"include_tests"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Provider:            "anthropic",
		Model:               "claude-3-opus-20240229",
		MaxTokens:           4096,
		MaxTokensPerRequest: 100000,
		BatchSize:           5,
		Temperature:         0.0,
		MetricsPath:         "metrics-definitions.yaml",
		OutputPath:          "output",
		DBPath:              defaultDBPath(),
		Workers:             runtime.NumCPU(),
		MaxRetries:          3,
		CacheSize:           1000,
		Timeout:             120 * time.Second,
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".docaudit", "docaudit.db")
	}
	return filepath.Join(home, ".docaudit", "docaudit.db")
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DOCAUDIT_* variables and ANTHROPIC_API_KEY.
// The API key from the environment only fills an empty value.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	for env, dst := range map[string]*string{
		EnvProvider:    &c.Provider,
		EnvModel:       &c.Model,
		EnvDBPath:      &c.DBPath,
		EnvMetricsPath: &c.MetricsPath,
		EnvOutputPath:  &c.OutputPath,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	for env, dst := range map[string]*int{
		EnvBatchSize: &c.BatchSize,
		EnvMaxTokens: &c.MaxTokensPerRequest,
		EnvWorkers:   &c.Workers,
	} {
		if v := os.Getenv(env); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, env, v)
			}
			*dst = n
		}
	}
	if v := os.Getenv(EnvRequestsRate); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvRequestsRate, v)
		}
		c.RequestsPerSecond = f
	}
	return nil
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var problems []string
	if c.BatchSize <= 0 {
		problems = append(problems, "batch_size must be positive")
	}
	if c.MaxTokensPerRequest <= 0 {
		problems = append(problems, "max_tokens_per_request must be positive")
	}
	if c.MaxTokens <= 0 {
		problems = append(problems, "max_tokens must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		problems = append(problems, "temperature must be within [0, 1]")
	}
	if c.Workers < 0 {
		problems = append(problems, "workers cannot be negative")
	}
	if c.RequestsPerSecond < 0 {
		problems = append(problems, "requests_per_second cannot be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Save writes c as YAML, omitting the API key
func (c Config) Save(path string) error {
	c.APIKey = ""
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o600)
}

// EvaluatorConfig returns the evaluator settings of c
func (c Config) EvaluatorConfig(logger *slog.Logger) evaluator.Config {
	return evaluator.Config{
		Provider:          c.Provider,
		APIKey:            c.APIKey,
		Model:             c.Model,
		MaxTokens:         c.MaxTokens,
		Temperature:       c.Temperature,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		MaxRetries:        c.MaxRetries,
		CacheSize:         c.CacheSize,
		Logger:            logger,
	}
}

// BatchConfig returns the batch ceilings of c
func (c Config) BatchConfig() batcher.Config {
	return batcher.Config{
		MaxItems:     c.BatchSize,
		MaxTokens:    c.MaxTokensPerRequest,
		SafetyMargin: batcher.DefaultSafetyMargin,
	}
}
