package ckeyscan

import (
	"fmt"
	"os"

	"github.com/ckeyscan/ckeyscan/internal/wallet"
	"github.com/spf13/cobra"
)

var flagBitsOutput string

func init() {
	cmd := &cobra.Command{
		Use:   "bits <file>",
		Short: "Dump a file as an ASCII bit string",
		Args:  cobra.ExactArgs(1),
		RunE:  runBits,
	}
	cmd.Flags().StringVarP(&flagBitsOutput, "output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func runBits(cmd *cobra.Command, args []string) error {
	if _, err := prepare(cmd, args[0]); err != nil {
		return err
	}
	buf, err := wallet.Load(args[0])
	if err != nil {
		return err
	}
	if flagBitsOutput == "" {
		if _, err := buf.WriteBits(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("writing bits: %w", err)
		}
		return nil
	}
	f, err := os.OpenFile(flagBitsOutput, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	n, err := buf.WriteBits(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing bits: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d bits to %s\n", n, flagBitsOutput)
	return nil
}
