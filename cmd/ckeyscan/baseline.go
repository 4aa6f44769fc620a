package ckeyscan

import (
	"fmt"

	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update [path]",
		Short: "Update baseline from current scan",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := targetPath(args)
			if err != nil {
				return err
			}
			ls, err := prepare(cmd, abs)
			if err != nil {
				return err
			}
			cfg, err := engineConfig(cmd, abs, ls)
			if err != nil {
				return err
			}
			records, err := engine.Scan(cfg)
			if err != nil {
				return err
			}
			if err := report.SaveBaseline(flagBaselineFile, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d records in %s\n", len(records), flagBaselineFile)
			return nil
		},
	}
	addScanFlags(update.Flags())
	update.Flags().StringVar(&flagBaselineFile, "baseline", report.DefaultBaselineFile, "baseline file to write")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
