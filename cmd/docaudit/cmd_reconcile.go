package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/reconciler"
)

func newReconcileCmd() *cobra.Command {
	var (
		expected    int
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "reconcile <response-file>",
		Short: "Parse a saved evaluation response and print the results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("metrics") {
				cfg.MetricsPath = metricsPath
			}
			catalog, err := metrics.LoadOrDefault(cfg.MetricsPath)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			n := expected
			if n <= 0 {
				n = len(reconciler.SplitSections(string(data)))
			}
			results := reconciler.New(catalog, logger).Reconcile(string(data), n)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(results); err != nil {
				return fmt.Errorf("encode results: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&expected, "expected", "n", 0, "Expected number of sections (default: as found)")
	cmd.Flags().StringVarP(&metricsPath, "metrics", "m", "", "Metrics definitions file (default from config)")
	return cmd
}
