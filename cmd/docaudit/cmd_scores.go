package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/metrics"
	"github.com/dshills/docaudit/internal/report"
)

func newScoresCmd() *cobra.Command {
	var metricsPath string
	cmd := &cobra.Command{
		Use:   "scores <report.xml>",
		Short: "Print Q{method}_{metric}-{score} codes from an XML report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(cmd)
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

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := report.Read(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, code := range doc.ScoreCodes(report.MappingFromNames(catalog.Names())) {
				fmt.Fprintln(out, code)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&metricsPath, "metrics", "m", "", "Metrics definitions file numbering the metrics (default from config)")
	return cmd
}
