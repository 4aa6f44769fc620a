package ckeyscan

import (
	"fmt"
	"io"
	"strings"

	"github.com/ckeyscan/ckeyscan/internal/engine"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/scanner/factory"
	"github.com/ckeyscan/ckeyscan/internal/validate"
	"github.com/spf13/cobra"
)

var modeHelp = map[string]string{
	"legacy":     "SOH EOT, optional whitespace, \"ckey!\", payload up to the next EOT",
	"structural": "literal \"ckey\" tag, 48-byte payload 52 bytes before it",
}

var flagTestSkipDegenerate bool

func init() {
	modes := &cobra.Command{
		Use:   "modes",
		Short: "List available scan modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, m := range factory.Modes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-11s %s\n", m, modeHelp[m])
			}
		},
	}
	rootCmd.AddCommand(modes)

	test := &cobra.Command{
		Use:   "test-mode <mode>",
		Short: "Run a scan mode against bytes read from stdin",
		Long:  "Available modes: " + strings.Join(factory.Modes(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := factory.ParseMode(args[0])
			if err != nil {
				return err
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			fr, err := engine.ScanBuffer("stdin", data, validate.DefaultPolicy(mode, flagTestSkipDegenerate))
			if err != nil {
				return err
			}
			report.PrintText(cmd.OutOrStdout(), fr.Records, report.PrintOptions{NoColor: true})
			return nil
		},
	}
	test.Flags().BoolVar(&flagTestSkipDegenerate, "skip-degenerate", true, "reject records with a run of 5 identical hex characters")
	rootCmd.AddCommand(test)
}
