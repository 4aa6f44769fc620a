package ckeyscan

import (
	"fmt"

	"github.com/ckeyscan/ckeyscan/internal/update"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update ckeyscan to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := prepare(cmd, "."); err != nil {
				return err
			}
			latest, err := update.SelfUpdate(version)
			if err != nil {
				return fmt.Errorf("self-update: %w", err)
			}
			if latest == version {
				fmt.Fprintf(cmd.OutOrStdout(), "Already up to date (v%s)\n", version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated to v%s; re-run your command\n", latest)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
