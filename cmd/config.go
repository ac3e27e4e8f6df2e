package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/diamondlens-cli/internal/config"
	"github.com/KaramelBytes/diamondlens-cli/internal/logging"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DiamondLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(w, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(w, "sample_rows: %d\n", cfg.SampleRows)
		fmt.Fprintf(w, "histogram_bins: %d\n", cfg.HistogramBins)
		r := cfg.Rules
		fmt.Fprintf(w, "rules.max_dimension_mm: %g\n", r.MaxDimensionMM)
		fmt.Fprintf(w, "rules.max_depth_deviation: %g\n", r.MaxDepthDeviation)
		fmt.Fprintf(w, "rules.value_max_carat: %g\n", r.ValueMaxCarat)
		fmt.Fprintf(w, "rules.value_cuts: %s\n", strings.Join(r.ValueCuts, ","))
		fmt.Fprintf(w, "rules.value_colors: %s\n", strings.Join(r.ValueColors, ","))
		fmt.Fprintf(w, "rules.value_clarities: %s\n", strings.Join(r.ValueClarities, ","))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk. List keys (rules.value_*) take comma-separated values.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		if err := applySetting(&next, key, val); err != nil {
			return err
		}
		if err := next.Rules.Validate(); err != nil {
			return fmt.Errorf("invalid rules: %w", err)
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*cfg = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with the defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			p, err := cfgpkg.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !configInitForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := cfgpkg.Save(cfgpkg.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote default config to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
}

func applySetting(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "log_level":
		if _, err := logging.ParseLevel(val); err != nil {
			return err
		}
		c.LogLevel = strings.ToLower(val)
	case "log_format":
		switch strings.ToLower(val) {
		case "console", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "output_format":
		switch strings.ToLower(val) {
		case "markdown", "md":
			c.OutputFormat = "markdown"
		case "json":
			c.OutputFormat = "json"
		case "yaml", "yml":
			c.OutputFormat = "yaml"
		default:
			return fmt.Errorf("invalid output_format: %s (use markdown, json or yaml)", val)
		}
	case "sample_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for sample_rows: %v", val)
		}
		c.SampleRows = i
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for histogram_bins: %v", val)
		}
		c.HistogramBins = i
	case "rules.max_dimension_mm":
		return setFloat(&c.Rules.MaxDimensionMM, key, val)
	case "rules.max_depth_deviation":
		return setFloat(&c.Rules.MaxDepthDeviation, key, val)
	case "rules.value_max_carat":
		return setFloat(&c.Rules.ValueMaxCarat, key, val)
	case "rules.value_cuts":
		c.Rules.ValueCuts = splitList(val)
	case "rules.value_colors":
		c.Rules.ValueColors = splitList(val)
	case "rules.value_clarities":
		c.Rules.ValueClarities = splitList(val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setFloat(dst *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("invalid float for %s: %w", key, err)
	}
	*dst = f
	return nil
}

func splitList(val string) []string {
	var out []string
	for _, p := range strings.Split(val, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
