package evaluator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Provider configuration
const (
	ProviderAnthropic = "anthropic"
	ProviderLocal     = "local" // alias for static

	DefaultAnthropicModel = "claude-3-opus-20240229"
	DefaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	AnthropicVersion      = "2023-06-01"
	DefaultMaxTokens      = 4096
	DefaultTimeout        = 120 * time.Second

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 500
	MaxBackoffMs      = 10000
	BackoffMultiplier = 2.0
)

// AnthropicConfig holds settings for the Messages API provider
type AnthropicConfig struct {
	APIKey            string
	Model             string
	MaxTokens         int // Response token limit
	Temperature       float64
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables client-side rate limiting
	Retry             RetryConfig
}

// AnthropicProvider implements Evaluator using the Anthropic Messages API
type AnthropicProvider struct {
	cfg        AnthropicConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *Cache
	logger     *slog.Logger
}

// NewAnthropicProvider creates a Messages API evaluator. The API key falls
// back to ANTHROPIC_API_KEY.
func NewAnthropicProvider(cfg AnthropicConfig, cache *Cache, logger *slog.Logger) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(EnvAnthropicAPIKey)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvAnthropicAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultAnthropicModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAnthropicURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &AnthropicProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		cache:      cache,
		logger:     logger.With("component", "evaluator", "provider", ProviderAnthropic),
	}, nil
}

// Evaluate sends one prompt, consulting the cache first
func (a *AnthropicProvider) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	key := CacheKey(a.cfg.Model, req.Prompt)
	if a.cache != nil {
		if resp, ok := a.cache.Get(key); ok {
			a.logger.Debug("evaluation cache hit")
			return resp, nil
		}
	}

	start := time.Now()
	resp, err := retryWithBackoff(ctx, a.cfg.Retry, func() (*Response, error) {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return a.callAPI(ctx, req.Prompt)
	})
	if err != nil {
		var perm *PermanentError
		if errors.As(err, &perm) {
			return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
		}
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrProviderFailed, a.cfg.Retry.MaxRetries, err)
	}

	a.logger.Debug("evaluation completed",
		"duration", time.Since(start),
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens)

	if a.cache != nil {
		a.cache.Set(key, resp)
	}
	return resp, nil
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *AnthropicProvider) callAPI(ctx context.Context, prompt string) (*Response, error) {
	body, err := json.Marshal(messagesRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, &PermanentError{Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", AnthropicVersion)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
		if retryableStatus(resp.StatusCode) {
			a.logger.Warn("retryable api error", "status", resp.StatusCode)
			return nil, apiErr
		}
		return nil, &PermanentError{StatusCode: resp.StatusCode, Err: apiErr}
	}

	var apiResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var text strings.Builder
	for _, c := range apiResp.Content {
		if c.Type == "" || c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("unexpected API response format: no text content")
	}

	model := apiResp.Model
	if model == "" {
		model = a.cfg.Model
	}
	return &Response{
		Text:         text.String(),
		Provider:     ProviderAnthropic,
		Model:        model,
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func (a *AnthropicProvider) Provider() string {
	return ProviderAnthropic
}

func (a *AnthropicProvider) Model() string {
	return a.cfg.Model
}

func (a *AnthropicProvider) Close() error {
	a.httpClient.CloseIdleConnections()
	return nil
}
