package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/config"
	"github.com/dshills/docaudit/internal/evaluator"
	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/pipeline"
	"github.com/dshills/docaudit/internal/report"
	"github.com/dshills/docaudit/internal/source"
	"github.com/dshills/docaudit/internal/storage"
	"github.com/dshills/docaudit/internal/telemetry"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		outputPath          string
		metricsPath         string
		dbPath              string
		textfile            string
		dryRun              bool
		noStore             bool
		includeUndocumented bool
		includeTests        bool
		batchSize           int
	)
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Evaluate Javadoc under the given files or directories and write an XML report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.OutputPath = outputPath
			}
			if flags.Changed("metrics") {
				cfg.MetricsPath = metricsPath
			}
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("include-undocumented") {
				cfg.IncludeUndocumented = includeUndocumented
			}
			if flags.Changed("include-tests") {
				cfg.IncludeTests = includeTests
			}
			if flags.Changed("batch-size") {
				cfg.BatchSize = batchSize
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runAnalyze(ctx, cmd, cfg, logger, analyzeOptions{
				paths:    paths,
				dryRun:   dryRun,
				store:    !noStore,
				textfile: textfile,
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report directory (default from config)")
	cmd.Flags().StringVarP(&metricsPath, "metrics", "m", "", "Metrics definitions file (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for run history (default from config)")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score offline from tag coverage instead of calling the evaluation service")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the run in the database")
	cmd.Flags().BoolVar(&includeUndocumented, "include-undocumented", false, "Also evaluate methods without Javadoc")
	cmd.Flags().BoolVar(&includeTests, "include-tests", false, "Also scan test sources")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Methods per request (default from config)")
	return cmd
}

type analyzeOptions struct {
	paths    []string
	dryRun   bool
	store    bool
	textfile string
}

func runAnalyze(ctx context.Context, cmd *cobra.Command, cfg config.Config, logger *slog.Logger, opts analyzeOptions) error {
	catalog, err := metrics.LoadOrDefault(cfg.MetricsPath)
	if err != nil {
		return err
	}

	var eval evaluator.Evaluator
	if opts.dryRun {
		eval = evaluator.NewStaticProvider()
	} else {
		eval, err = evaluator.New(cfg.EvaluatorConfig(logger))
		if err != nil {
			return fmt.Errorf("%w (use --dry-run to score offline)", err)
		}
	}
	defer func() { _ = eval.Close() }()

	var store storage.Storage
	if opts.store {
		s, err := openStore(cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()
		store = s
	}

	units, err := source.New(source.Config{IncludeTests: cfg.IncludeTests}, logger).Load(opts.paths...)
	if err != nil {
		return err
	}

	tel := telemetry.New()
	p, err := pipeline.New(pipeline.Config{
		Evaluator:           eval,
		Catalog:             catalog,
		Storage:             store,
		Telemetry:           tel,
		Logger:              logger,
		Batch:               cfg.BatchConfig(),
		Workers:             cfg.Workers,
		IncludeUndocumented: cfg.IncludeUndocumented,
	})
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, units, opts.paths...)
	if err != nil {
		return err
	}

	if opts.textfile != "" {
		if err := tel.WriteTextfile(opts.textfile); err != nil {
			logger.Warn("failed to write metrics textfile", "path", opts.textfile, "error", err)
		}
	}

	stats := result.Statistics
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s: %d methods, %d evaluated, %d missing, average score %.2f\n",
		result.RunID, len(result.Methods), stats.MethodsEvaluated, stats.MissingResults, stats.AverageScore)
	if len(stats.Errors) > 0 {
		fmt.Fprintf(out, "Errors:\n  %s\n", strings.Join(stats.Errors, "\n  "))
	}

	path, err := report.NewGenerator(cfg.OutputPath, logger).Generate(result.Methods, result.RunID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Report: %s\n", path)
	return nil
}
