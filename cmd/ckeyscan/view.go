package ckeyscan

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ckeyscan/ckeyscan/internal/cache"
	"github.com/ckeyscan/ckeyscan/internal/config"
	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/scanner/factory"
	"github.com/ckeyscan/ckeyscan/internal/tui"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "view [path]",
		Short: "Browse the last scan results without rescanning",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}
	cmd.Flags().StringVar(&flagBaselineFile, "baseline", report.DefaultBaselineFile, "baseline file toggled with 'b'")
	rootCmd.AddCommand(cmd)
}

func runView(cmd *cobra.Command, args []string) error {
	abs, err := targetPath(args)
	if err != nil {
		return err
	}
	ls, err := prepare(cmd, abs)
	if err != nil {
		return err
	}
	res, err := cache.LoadResults(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no saved results for %s; run 'ckeyscan scan' first", abs)
	}
	if err != nil {
		return fmt.Errorf("loading results: %w", err)
	}
	base, _ := report.LoadBaseline(flagBaselineFile)

	out := cmd.OutOrStdout()
	if flagJSON {
		return report.WriteJSON(out, res.Records)
	}
	if !isTerminal(out) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Results from %s (%s mode)\n", res.Timestamp.Format("Jan 2, 15:04"), res.Mode)
		report.PrintText(out, res.Records, report.PrintOptions{NoColor: noColor(cmd, ls)})
		return nil
	}
	rescan := func() ([]types.Record, error) {
		mode, err := factory.ParseMode(string(res.Mode))
		if err != nil {
			return nil, err
		}
		skip := pick(cmd, "skip-degenerate", true, ls, func(c config.FileConfig) *bool { return c.SkipDegenerate })
		return engine.Scan(engine.Config{Root: abs, Mode: mode, SkipDegenerate: skip, Threads: flagThreads})
	}
	return tui.Run(res.Records, tui.Options{
		Baseline:     base,
		BaselinePath: flagBaselineFile,
		Rescan:       rescan,
		CachedAt:     res.Timestamp,
	})
}
