package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/diamondlens-cli/internal/clean"
	"github.com/KaramelBytes/diamondlens-cli/internal/ingest"
	"github.com/KaramelBytes/diamondlens-cli/internal/render"
	"github.com/KaramelBytes/diamondlens-cli/internal/utils"
)

var cleanOutputPath string

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Remove invalid rows and write the cleaned table as CSV",
	Long: `Runs the cleaning stages only. With --output the cleaned CSV is written to the
given path and the cleaning report is printed; without it the CSV goes to
stdout and the report to stderr.`,
	Args: cobra.ExactArgs(1),
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
		tbl, rep, err := clean.New(c.Rules, logger).Clean(raw)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := render.WriteCSV(&buf, tbl); err != nil {
			return err
		}
		if cleanOutputPath == "" {
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprint(cmd.ErrOrStderr(), render.CleaningReport(rep))
			return nil
		}
		if err := utils.SafeWriteFile(cleanOutputPath, buf.Bytes()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), render.CleaningReport(rep))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d cleaned rows to %s\n", tbl.Len(), cleanOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "path to write the cleaned CSV (default stdout)")
	addInputFlags(cleanCmd)
}
