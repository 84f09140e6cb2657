// Package main provides the CLI entry point for speclimits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/speclimits-go/internal/config"
	"github.com/ukaji3/speclimits-go/internal/logging"
	"github.com/ukaji3/speclimits-go/pkg/speclimits"
	"github.com/ukaji3/speclimits-go/pkg/speclimits/models"
	"go.uber.org/zap"
)

var (
	configPath   string
	cdPath       string
	cwPath       string
	limitsPath   string
	limitsSheet  string
	limitsLayout string
	limitsRange  string
	duplicates   string
	logLevel     string

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "speclimits",
		Short: "Check CD/CW test data against specification limits",
		Long: `speclimits reads CD and CW test exports (CSV or Excel), detects machine,
timestamp and variable columns, reshapes them into long format and matches
every reading against a limits workbook.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "speclimits.yaml", "Config file (missing file means defaults)")
	pf.StringVar(&cdPath, "cd", "", "CD measurements file (.csv or .xlsx)")
	pf.StringVar(&cwPath, "cw", "", "CW measurements file (.csv or .xlsx)")
	pf.StringVar(&limitsPath, "limits", "", "Limits workbook")
	pf.StringVar(&limitsSheet, "limits-sheet", "", "Limits worksheet to parse")
	pf.StringVar(&limitsLayout, "limits-layout", "", "Limits layout: auto, flat, dual_block, multi_header, per_sheet")
	pf.StringVar(&limitsRange, "limits-range", "", "Defined name or cell range holding the limits table")
	pf.StringVar(&duplicates, "duplicates", "", "Duplicate limit policy: first or unique")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newColumnsCmd(),
		newLimitsCmd(),
		newExportCmd(),
		newCheckCmd(),
		newServeCmd(),
	)
	return rootCmd
}

// setup loads the config, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}

	if cdPath != "" {
		cfg.SetSource(models.ProcessCD, cdPath)
	}
	if cwPath != "" {
		cfg.SetSource(models.ProcessCW, cwPath)
	}
	if limitsPath != "" {
		cfg.Limits.Path = limitsPath
	}
	if limitsSheet != "" {
		cfg.Limits.Sheet = limitsSheet
	}
	if limitsLayout != "" {
		cfg.Limits.Layout = limitsLayout
	}
	if limitsRange != "" {
		cfg.Limits.Range = limitsRange
	}
	if duplicates != "" {
		cfg.Match.Duplicates = duplicates
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func loadDataset(cmd *cobra.Command) (*speclimits.Dataset, error) {
	opts := cfg.Options()
	opts.Logger = logger
	ds, err := speclimits.Load(cmd.Context(), opts)
	if err != nil {
		logger.Error("load failed", zap.Error(err))
		return nil, fmt.Errorf("load failed: %w", err)
	}
	return ds, nil
}
