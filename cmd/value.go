package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/diamondlens-cli/internal/clean"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
	"github.com/KaramelBytes/diamondlens-cli/internal/ingest"
	"github.com/KaramelBytes/diamondlens-cli/internal/render"
	"github.com/KaramelBytes/diamondlens-cli/internal/utils"
	"github.com/KaramelBytes/diamondlens-cli/internal/value"
)

var (
	valOutputPath  string
	valBelowMedian bool
)

var valueCmd = &cobra.Command{
	Use:   "value <file>",
	Short: "Write the cleaned value segment (or its below-median part) as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dataConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(c)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		in, err := inputOptions()
		if err != nil {
			return err
		}
		raw, err := ingest.ReadFile(args[0], in)
		if err != nil {
			return err
		}
		if err := c.Rules.Validate(); err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		tbl, _, err := clean.New(c.Rules, logger).Clean(raw)
		if err != nil {
			return err
		}

		out := value.NewFilter(c.Rules).Select(tbl)
		median, err := value.MedianPrice(out)
		if err != nil {
			return err
		}
		if valBelowMedian {
			out, _, err = value.BelowMedian(out)
			if err != nil {
				return err
			}
		}

		var buf bytes.Buffer
		if err := render.WriteCSV(&buf, out); err != nil {
			return err
		}
		if valOutputPath == "" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := utils.SafeWriteFile(valOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s (segment median price $%.0f)\n",
			pluralDiamonds(out), valOutputPath, median)
		return nil
	},
}

func pluralDiamonds(t *diamond.DiamondTable) string {
	if t.Len() == 1 {
		return "1 diamond"
	}
	return fmt.Sprintf("%d diamonds", t.Len())
}

func init() {
	rootCmd.AddCommand(valueCmd)
	valueCmd.Flags().StringVarP(&valOutputPath, "output", "o", "", "path to write the CSV (default stdout)")
	valueCmd.Flags().BoolVar(&valBelowMedian, "below-median", false, "keep only rows priced strictly below the segment median")
	addInputFlags(valueCmd)
}
