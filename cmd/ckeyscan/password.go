package ckeyscan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ckeyscan/ckeyscan/internal/scanner/minversion"
	"github.com/ckeyscan/ckeyscan/internal/wallet"
	"github.com/spf13/cobra"
)

var errNoPassword = errors.New("no minversion marker found")

func init() {
	cmd := &cobra.Command{
		Use:   "password <file>",
		Short: "Print the encrypted password words that follow the minversion marker",
		Args:  cobra.ExactArgs(1),
		RunE:  runPassword,
	}
	rootCmd.AddCommand(cmd)
}

func runPassword(cmd *cobra.Command, args []string) error {
	if _, err := prepare(cmd, args[0]); err != nil {
		return err
	}
	buf, err := wallet.Load(args[0])
	if err != nil {
		return err
	}
	pw, ok := minversion.Extract(buf)
	if !ok {
		return fmt.Errorf("%s: %w", args[0], errNoPassword)
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(pw)
	}
	fmt.Fprintf(out, "offset: %d\n", pw.MarkerOffset)
	fmt.Fprintf(out, "text:   %s\n", pw.Text)
	fmt.Fprintf(out, "hex:    %s\n", pw.Hex)
	return nil
}
