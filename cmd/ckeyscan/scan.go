package ckeyscan

import (
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/audit"
	"github.com/ckeyscan/ckeyscan/internal/cache"
	"github.com/ckeyscan/ckeyscan/internal/config"
	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/scanner/factory"
	"github.com/ckeyscan/ckeyscan/internal/tui"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/ckeyscan/ckeyscan/internal/update"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	flagMode           string
	flagSkipDegenerate bool
	flagInclude        string
	flagExclude        string
	flagMaxBytes       int64
	flagBaselineFile   string
	flagNoAudit        bool
	flagTable          bool
	flagText           bool
	flagTUI            bool
	flagFailOn         string
	// backup archive scanning toggles and limits
	flagArchives        bool
	flagMaxArchiveBytes int64
	flagMaxEntries      int
	flagMaxDepth        int
	flagScanTimeBudget  time.Duration
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a wallet file or directory for ckey records",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	addScanFlags(cmd.Flags())
	cmd.Flags().StringVar(&flagBaselineFile, "baseline", report.DefaultBaselineFile, "baseline file of records to suppress")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not append this scan to the audit log")
	cmd.Flags().BoolVar(&flagTable, "table", false, "output in table format with borders")
	cmd.Flags().BoolVar(&flagText, "text", false, "output one ckey!<hex> line per record (default)")
	cmd.Flags().BoolVar(&flagTUI, "tui", false, "browse results in the interactive viewer")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "none", "exit 1 when records remain: any|none")
}

// addScanFlags registers the flags that shape an engine.Config. scan and
// baseline update share them.
func addScanFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagMode, "mode", string(types.ModeLegacy), "scan mode: legacy|structural")
	fs.BoolVar(&flagSkipDegenerate, "skip-degenerate", true, "reject records with a run of 5 identical hex characters")
	fs.StringVar(&flagInclude, "include", "", "comma-separated include globs")
	fs.StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	fs.Int64Var(&flagMaxBytes, "max-bytes", 1<<30, "skip files larger than this")
	fs.BoolVar(&flagArchives, "archives", false, "also scan wallets inside zip/tar/gz backups")
	fs.Int64Var(&flagMaxArchiveBytes, "max-archive-bytes", 32<<20, "max decompressed bytes per archive before aborting")
	fs.IntVar(&flagMaxEntries, "max-entries", 1000, "max wallet entries per archive before aborting")
	fs.IntVar(&flagMaxDepth, "max-depth", 2, "max recursion depth for nested archives")
	fs.DurationVar(&flagScanTimeBudget, "scan-time-budget", 10*time.Second, "time budget per archive (e.g., 10s)")
}

// engineConfig resolves the scan flags against ls for root.
func engineConfig(cmd *cobra.Command, root string, ls layers) (engine.Config, error) {
	mode, err := factory.ParseMode(pick(cmd, "mode", flagMode, ls, func(c config.FileConfig) *string { return c.Mode }))
	if err != nil {
		return engine.Config{}, err
	}
	return engine.Config{
		Root:            root,
		Mode:            mode,
		SkipDegenerate:  pick(cmd, "skip-degenerate", flagSkipDegenerate, ls, func(c config.FileConfig) *bool { return c.SkipDegenerate }),
		IncludeGlobs:    pick(cmd, "include", flagInclude, ls, func(c config.FileConfig) *string { return c.Include }),
		ExcludeGlobs:    pick(cmd, "exclude", flagExclude, ls, func(c config.FileConfig) *string { return c.Exclude }),
		MaxBytes:        pick(cmd, "max-bytes", flagMaxBytes, ls, func(c config.FileConfig) *int64 { return c.MaxBytes }),
		Threads:         pick(cmd, "threads", flagThreads, ls, func(c config.FileConfig) *int { return c.Threads }),
		NoCache:         flagNoCache,
		ScanArchives:    pick(cmd, "archives", flagArchives, ls, func(c config.FileConfig) *bool { return c.Archives }),
		MaxArchiveBytes: pick(cmd, "max-archive-bytes", flagMaxArchiveBytes, ls, func(c config.FileConfig) *int64 { return c.MaxArchiveBytes }),
		MaxEntries:      pick(cmd, "max-entries", flagMaxEntries, ls, func(c config.FileConfig) *int { return c.MaxEntries }),
		MaxDepth:        pick(cmd, "max-depth", flagMaxDepth, ls, func(c config.FileConfig) *int { return c.MaxDepth }),
		ScanTimeBudget:  pickDuration(cmd, "scan-time-budget", flagScanTimeBudget, ls, func(c config.FileConfig) *string { return c.ScanTimeBudget }),
	}, nil
}

func targetPath(args []string) (string, error) {
	p := "."
	if len(args) > 0 {
		p = args[0]
	}
	return filepath.Abs(p)
}

func runScan(cmd *cobra.Command, args []string) error {
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
	failOn := pick(cmd, "fail-on", flagFailOn, ls, func(c config.FileConfig) *string { return c.FailOn })
	if err := report.ValidateFailOn(failOn); err != nil {
		return fmt.Errorf("--fail-on: %w", err)
	}
	plain := noColor(cmd, ls)
	machine := flagJSON || flagSARIF
	stderr := cmd.ErrOrStderr()

	if !machine {
		if !flagNoUpdateCheck {
			if latest, newer, _ := update.Check(version, false); newer && latest != "" {
				fmt.Fprintf(stderr, "(new version available: v%s)  run 'ckeyscan update' to upgrade\n", latest)
			}
		}
		fmt.Fprintf(stderr, "Scanning %s in %s mode...\n", abs, cfg.Mode)
	}

	// Progress on an interactive stderr only.
	progressed := 0
	if !machine && isTerminal(stderr) {
		if total, _ := engine.CountTargets(cfg); total > 0 {
			cfg.Progress = func() {
				progressed++
				if progressed%10 == 0 || progressed == total {
					fmt.Fprintf(stderr, "\r[%d/%d] %.0f%%", progressed, total, float64(progressed)/float64(total)*100)
				}
			}
		}
	}
	res, err := engine.ScanWithStatsContext(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if progressed > 0 {
		fmt.Fprintln(stderr)
	}
	for _, ferr := range res.FileErrors {
		log.Warnf("Skipped: %v", ferr)
	}
	if !machine {
		for _, p := range sqliteWallets(res.Formats) {
			fmt.Fprintf(stderr, "warning: %s is a SQLite (descriptor) wallet; ckey records are unlikely to be found\n", p)
		}
	}

	base, berr := report.LoadBaseline(flagBaselineFile)
	if berr != nil {
		log.Debugf("Baseline %s not used: %v", flagBaselineFile, berr)
	}
	newRecords := report.FilterNew(res.Records, base)
	if newRecords == nil {
		newRecords = []types.Record{}
	}

	if !flagNoAudit {
		recordAudit(cfg, res, newRecords, berr == nil)
	}
	if !cfg.NoCache {
		if err := cache.SaveResults(abs, cfg.Mode, res.Records); err != nil {
			log.Debugf("Saving results: %v", err)
		}
	}

	out := cmd.OutOrStdout()
	opts := report.PrintOptions{
		NoColor:      plain,
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		Rejected:     res.Rejected,
		FileErrors:   len(res.FileErrors),
	}
	switch {
	case flagSARIF:
		stats := map[string]int{
			"filesScanned": res.FilesScanned,
			"rejected":     res.Rejected,
			"fileErrors":   len(res.FileErrors),
			"baselined":    len(res.Records) - len(newRecords),
		}
		if err := report.WriteSARIFWithStats(out, newRecords, stats); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(out, newRecords); err != nil {
			return err
		}
	case flagTUI && isTerminal(out):
		rescan := func() ([]types.Record, error) {
			recs, err := engine.Scan(cfg)
			if err != nil {
				return nil, err
			}
			return report.FilterNew(recs, base), nil
		}
		if err := tui.Run(newRecords, tui.Options{Baseline: base, BaselinePath: flagBaselineFile, Rescan: rescan}); err != nil {
			return err
		}
	case flagTable:
		if err := report.PrintTable(out, newRecords, opts); err != nil {
			return err
		}
		report.PrintSummary(stderr, opts)
	default:
		if flagTUI {
			fmt.Fprintln(stderr, "stdout is not a terminal; printing text instead of the viewer")
		}
		report.PrintText(out, newRecords, opts)
		report.PrintSummary(stderr, opts)
	}

	if report.ShouldFail(newRecords, failOn) {
		return &exitError{code: 1}
	}
	return nil
}

func recordAudit(cfg engine.Config, res engine.Result, newRecords []types.Record, baselined bool) {
	a, err := audit.NewAuditLog()
	if err != nil {
		log.Debugf("Audit log unavailable: %v", err)
		return
	}
	s := audit.Summary{
		Root:           cfg.Root,
		Mode:           cfg.Mode,
		SkipDegenerate: cfg.SkipDegenerate,
		All:            res.Records,
		New:            newRecords,
		Rejected:       res.Rejected,
		FilesScanned:   res.FilesScanned,
		FileErrors:     len(res.FileErrors),
		Duration:       res.Duration,
	}
	if baselined {
		s.BaselineFile = flagBaselineFile
	}
	if err := a.LogScan(audit.CreateScanRecord(s)); err != nil {
		log.Warnf("Writing audit log: %v", err)
	}
}

// sqliteWallets returns the SQLite-format paths in formats, sorted.
func sqliteWallets(formats map[string]wallet.Format) []string {
	var out []string
	for p, f := range formats {
		if f == wallet.FormatSQLite {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
