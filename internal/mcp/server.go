package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/docaudit/internal/config"
	"github.com/dshills/docaudit/internal/evaluator"
	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/pipeline"
	"github.com/dshills/docaudit/internal/searcher"
	"github.com/dshills/docaudit/internal/source"
	"github.com/dshills/docaudit/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "docaudit"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	searcher *searcher.Searcher
	source   *source.Provider
	logger   *slog.Logger

	// live is nil when no evaluation provider is configured; dryRun uses
	// the offline static evaluator.
	live   *pipeline.Pipeline
	dryRun *pipeline.Pipeline
}

// NewServer creates a new MCP server instance from cfg. A nil logger uses
// slog.Default(); it must not write to stdout.
func NewServer(cfg config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp")

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	s, err := newServer(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

func newServer(cfg config.Config, store storage.Storage, logger *slog.Logger) (*Server, error) {
	catalog, err := metrics.LoadOrDefault(cfg.MetricsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}

	base := pipeline.Config{
		Catalog:             catalog,
		Storage:             store,
		Logger:              logger,
		Batch:               cfg.BatchConfig(),
		Workers:             cfg.Workers,
		IncludeUndocumented: cfg.IncludeUndocumented,
	}

	dryCfg := base
	dryCfg.Evaluator = evaluator.NewStaticProvider()
	dryRun, err := pipeline.New(dryCfg)
	if err != nil {
		return nil, err
	}

	var live *pipeline.Pipeline
	eval, err := evaluator.New(cfg.EvaluatorConfig(logger))
	switch {
	case errors.Is(err, evaluator.ErrNoProviderEnabled):
		logger.Warn("no evaluation provider configured, only dry runs are available", "error", err)
	case err != nil:
		return nil, fmt.Errorf("failed to initialize evaluator: %w", err)
	default:
		liveCfg := base
		liveCfg.Evaluator = eval
		if live, err = pipeline.New(liveCfg); err != nil {
			return nil, err
		}
	}

	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		storage:  store,
		searcher: searcher.NewSearcher(store),
		source:   source.New(source.Config{IncludeTests: cfg.IncludeTests}, logger),
		logger:   logger,
		live:     live,
		dryRun:   dryRun,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()
	s.logger.Info("serving MCP on stdio", "name", ServerName, "version", ServerVersion)
	return server.ServeStdio(s.mcp)
}

// Close releases the storage
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(analyzeDocumentationTool(), s.handleAnalyzeDocumentation)
	s.mcp.AddTool(getRunTool(), s.handleGetRun)
	s.mcp.AddTool(searchMethodsTool(), s.handleSearchMethods)
	return nil
}
