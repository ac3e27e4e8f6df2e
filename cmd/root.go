package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/ingest"
	"github.com/KaramelBytes/diamondlens-cli/internal/logging"
)

var (
	// Global flags
	cfgFile      string
	debug        bool
	flagLogLevel string

	// Input flags shared by analyze, clean and value
	inDelimiter  string
	inSheetName  string
	inSheetIndex int

	// Loaded configuration, and the error if loading failed
	cfg    *cfgpkg.Global
	cfgErr error
)

var rootCmd = &cobra.Command{
	Use:   "diamondlens",
	Short: "DiamondLens CLI: clean a diamond dataset and find good-value stones",
	Long: `DiamondLens reads a diamond dataset (CSV, TSV or XLSX), removes incomplete and
physically implausible rows, summarizes what is left and isolates small, well
graded diamonds priced below their segment median.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.diamondlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	cfgErr = err
	if err != nil {
		// Non-fatal here: data commands reject invalid rules via dataConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// dataConfig returns the config for commands that process a dataset. Invalid
// rules are terminal so a run never silently uses thresholds the user did not
// choose; other load failures fall back to defaults.
func dataConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	if errors.Is(cfgErr, cfgpkg.ErrInvalidRules) {
		return nil, fmt.Errorf("config: %w", cfgErr)
	}
	return cfgpkg.Default(), nil
}

func newLogger(c *cfgpkg.Global) (*zap.Logger, error) {
	level := c.LogLevel
	if debug {
		level = "debug"
	}
	logger, err := logging.New(level, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}

func addInputFlags(c *cobra.Command) {
	c.Flags().StringVar(&inDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from extension)")
	c.Flags().StringVar(&inSheetName, "sheet-name", "", "XLSX: sheet name to read")
	c.Flags().IntVar(&inSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func inputOptions() (ingest.Options, error) {
	opt := ingest.Options{SheetName: inSheetName, SheetIndex: inSheetIndex}
	switch strings.ToLower(inDelimiter) {
	case "":
	case ",", "comma":
		opt.Delimiter = ','
	case ";", "semicolon":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", inDelimiter)
	}
	return opt, nil
}
