package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/diamondlens-cli/internal/ingest"
	"github.com/KaramelBytes/diamondlens-cli/internal/pipeline"
	"github.com/KaramelBytes/diamondlens-cli/internal/render"
	"github.com/KaramelBytes/diamondlens-cli/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaSampleRows int
	anaBins       int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean a diamond dataset and report the value segment",
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

		opt := pipeline.Options{
			Rules:         c.Rules,
			SampleRows:    c.SampleRows,
			HistogramBins: c.HistogramBins,
			Logger:        logger,
		}
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = anaSampleRows
		}
		if cmd.Flags().Changed("bins") {
			opt.HistogramBins = anaBins
		}
		format := c.OutputFormat
		if anaFormat != "" {
			format = anaFormat
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()
		res, err := pipeline.Run(ctx, raw, opt)
		if err != nil {
			return err
		}
		out, err := render.Format(res, format)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "report format: markdown|json|yaml (default from config)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 10, "number of below-median example rows to include")
	analyzeCmd.Flags().IntVar(&anaBins, "bins", 60, "histogram bins for price and carat (0 = skip)")
	addInputFlags(analyzeCmd)
}
