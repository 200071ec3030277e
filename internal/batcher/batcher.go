package batcher

import (
	"log/slog"
	"strings"

	"github.com/dshills/docaudit/internal/tokens"
	"github.com/dshills/docaudit/pkg/types"
)

const (
	// DefaultMaxItems is the default number of methods per batch
	DefaultMaxItems = 5

	// DefaultMaxTokens is the default estimated token ceiling per request
	DefaultMaxTokens = 100000

	// DefaultSafetyMargin is reserved for prompt scaffolding around methods
	DefaultSafetyMargin = 500
)

// Config holds the batch ceilings
type Config struct {
	MaxItems     int // Values below 1 are treated as 1
	MaxTokens    int // Values <= 0 disable the token ceiling
	SafetyMargin int
}

// DefaultConfig returns the default ceilings
func DefaultConfig() Config {
	return Config{
		MaxItems:     DefaultMaxItems,
		MaxTokens:    DefaultMaxTokens,
		SafetyMargin: DefaultSafetyMargin,
	}
}

// Assembler partitions methods into batches
type Assembler struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Assembler. A nil logger uses slog.Default().
func New(cfg Config, logger *slog.Logger) *Assembler {
	if cfg.MaxItems < 1 {
		cfg.MaxItems = 1
	}
	if cfg.SafetyMargin < 0 {
		cfg.SafetyMargin = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{cfg: cfg, logger: logger.With("component", "batcher")}
}

// Config returns the effective configuration
func (a *Assembler) Config() Config {
	return a.cfg
}

// Assemble partitions methods into ordered, non-empty batches. Every
// method appears in exactly one batch and input order is preserved.
func (a *Assembler) Assemble(methods []*types.Method, guidelines string) []*types.Batch {
	guideCost := tokens.Estimate(guidelines)
	limited := a.cfg.MaxTokens > 0
	oversizeLimit := a.cfg.MaxTokens - guideCost - a.cfg.SafetyMargin

	var batches []*types.Batch
	var current []*types.Method
	currentTokens := guideCost

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, &types.Batch{
			Index:           len(batches),
			Methods:         current,
			EstimatedTokens: currentTokens,
		})
		current = nil
		currentTokens = guideCost
	}

	for _, m := range methods {
		cost := MethodCost(m)

		if limited && cost > oversizeLimit {
			flush()
			a.logger.Warn("oversize method isolated",
				"method", m.QualifiedName(),
				"tokens", cost,
				"limit", oversizeLimit)
			batches = append(batches, &types.Batch{
				Index:           len(batches),
				Methods:         []*types.Method{m},
				EstimatedTokens: guideCost + cost,
				Oversize:        true,
			})
			continue
		}

		if len(current) > 0 &&
			((limited && currentTokens+cost > a.cfg.MaxTokens) || len(current) >= a.cfg.MaxItems) {
			flush()
		}

		current = append(current, m)
		currentTokens += cost
	}
	flush()

	a.logger.Debug("assembled batches",
		"methods", len(methods),
		"batches", len(batches),
		"guideline_tokens", guideCost)
	return batches
}

// MethodCost estimates the tokens a method adds to a request
func MethodCost(m *types.Method) int {
	return tokens.Estimate(costText(m))
}

func costText(m *types.Method) string {
	var b strings.Builder
	b.WriteString("METHOD: ")
	b.WriteString(m.Name)
	b.WriteString("\nSIGNATURE: ")
	b.WriteString(m.Signature)
	b.WriteString("\nCODE: ")
	b.WriteString(m.Body)
	b.WriteString("\nJAVADOC: ")
	b.WriteString(m.RawDoc)
	b.WriteString("\n")
	return b.String()
}
