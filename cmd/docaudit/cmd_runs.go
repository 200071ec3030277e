package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/report"
	"github.com/dshills/docaudit/internal/storage"
	"github.com/dshills/docaudit/pkg/types"
)

func openStore(dbPath string) (*storage.SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return storage.NewSQLiteStorage(dbPath)
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded analysis runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTARTED\tSTATUS\tMETHODS\tEVALUATED\tAVERAGE\tROOTS")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.2f\t%s\n",
					r.ID, r.StartedAt.Format(time.DateTime), r.Status,
					r.MethodsTotal, r.MethodsEvaluated, r.AverageScore, r.Roots)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")
	return cmd
}

func newReportCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "report <run-id>",
		Short: "Write the XML report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.OutputPath = outputPath
			}

			store, err := openStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ctx := cmd.Context()
			if _, err := store.GetRun(ctx, args[0]); err != nil {
				return fmt.Errorf("run %s: %w", args[0], err)
			}
			records, err := store.ListMethodResults(ctx, args[0])
			if err != nil {
				return err
			}

			methods := make([]*types.Method, 0, len(records))
			for _, rec := range records {
				methods = append(methods, rec.Method())
			}

			path, err := report.NewGenerator(cfg.OutputPath, logger).Generate(methods, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Report directory (default from config)")
	return cmd
}
