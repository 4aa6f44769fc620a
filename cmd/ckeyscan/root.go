package ckeyscan

import (
	"errors"
	"fmt"
	"os"

	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagJSON          bool
	flagSARIF         bool
	flagThreads       int
	flagNoColor       bool
	flagNoCache       bool
	flagLogLevel      string
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the ckeyscan CLI.
var rootCmd = &cobra.Command{
	Use:   "ckeyscan",
	Short: "Find encrypted key records in Bitcoin Core wallet files",
	Long: "ckeyscan treats wallet.dat files as opaque bytes and reports the ckey records " +
		"it can locate, without parsing the Berkeley DB container.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a non-error exit status such as a triggered fail-on
// policy.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute runs the ckeyscan CLI. It should be called by the main package.
func Execute() {
	os.Exit(run(os.Args[1:]))
}

// run executes the command line args and returns the process exit code.
func run(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintln(rootCmd.ErrOrStderr(), "error:", err)
		return 2
	}
}

func init() {
	report.ToolVersion = version

	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: trace|debug|info|warn|error|critical|off")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}
