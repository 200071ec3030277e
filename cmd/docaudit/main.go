package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/docaudit/internal/config"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docaudit",
		Short:         "Score the Javadoc of Java methods with a language model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "docaudit.yaml", "Configuration file")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newAnalyzeCmd(),
		newReportCmd(),
		newScoresCmd(),
		newRunsCmd(),
		newMetricsCmd(),
		newReconcileCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// newLogger builds the process logger. Output always goes to w, never to
// stdout, so serve keeps the protocol channel clean.
func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(flagLogLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", flagLogLevel)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(flagLogFormat) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", flagLogFormat)
	}
}

// setup loads the configuration and the logger shared by every command
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
