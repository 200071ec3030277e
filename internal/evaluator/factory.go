package evaluator

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Environment variables read by NewFromEnv
const (
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvProvider        = "DOCAUDIT_PROVIDER"
	EnvModel           = "DOCAUDIT_MODEL"
)

// Config selects and configures an evaluator
type Config struct {
	Provider          string // "anthropic" or "static"; empty auto-detects
	APIKey            string
	Model             string
	MaxTokens         int
	Temperature       float64
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	CacheSize         int
	Logger            *slog.Logger
}

// New creates an evaluator for cfg
func New(cfg Config) (Evaluator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DetectProvider()
	}

	switch provider {
	case ProviderAnthropic:
		retry := DefaultRetryConfig()
		if cfg.MaxRetries > 0 {
			retry.MaxRetries = cfg.MaxRetries
		}
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:            cfg.APIKey,
			Model:             cfg.Model,
			MaxTokens:         cfg.MaxTokens,
			Temperature:       cfg.Temperature,
			BaseURL:           cfg.BaseURL,
			Timeout:           cfg.Timeout,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Retry:             retry,
		}, NewCache(cfg.CacheSize), cfg.Logger)
	case ProviderStatic, ProviderLocal:
		return NewStaticProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, cfg.Provider)
	}
}

// NewFromEnv creates an evaluator from environment variables
func NewFromEnv() (Evaluator, error) {
	return New(Config{
		Provider: os.Getenv(EnvProvider),
		APIKey:   os.Getenv(EnvAnthropicAPIKey),
		Model:    os.Getenv(EnvModel),
	})
}

// DetectProvider picks anthropic when an API key is present, otherwise the
// offline static provider.
func DetectProvider() string {
	if p := os.Getenv(EnvProvider); p != "" {
		return strings.ToLower(p)
	}
	if os.Getenv(EnvAnthropicAPIKey) != "" {
		return ProviderAnthropic
	}
	return ProviderStatic
}
