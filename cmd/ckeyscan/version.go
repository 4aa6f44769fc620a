package ckeyscan

import (
	"fmt"

	"github.com/ckeyscan/ckeyscan/internal/update"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version and whether a newer release exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ckeyscan v%s\n", version)
			if flagNoUpdateCheck {
				return nil
			}
			if latest, newer, _ := update.Check(version, false); newer {
				fmt.Fprintf(cmd.OutOrStdout(), "v%s is available; run 'ckeyscan update'\n", latest)
			}
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
