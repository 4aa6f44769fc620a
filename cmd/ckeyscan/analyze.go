package ckeyscan

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ckeyscan/ckeyscan/internal/analyze"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "analyze <hex>",
		Short: "Inspect a hex record: length class, encodings and digest",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	rootCmd.AddCommand(cmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if _, err := prepare(cmd, "."); err != nil {
		return err
	}
	rep, err := analyze.Inspect(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	table := tablewriter.NewWriter(out)
	table.Header("Field", "Value")
	rows := [][]string{
		{"Bytes", strconv.Itoa(rep.Length)},
		{"Class", string(rep.Class)},
		{"Valid", strconv.FormatBool(rep.Valid)},
		{"Degenerate", strconv.FormatBool(rep.Degenerate)},
		{"Entropy", strconv.FormatFloat(rep.Entropy, 'f', 3, 64)},
		{"ASCII", rep.ASCII},
		{"Base32", rep.Base32},
		{"Base58", rep.Base58},
		{"Base64", rep.Base64},
		{"SHA-256", rep.SHA256},
	}
	for _, r := range rows {
		if err := table.Append(r[0], r[1]); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
