package ckeyscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/ckeyscan/ckeyscan/internal/audit"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past scans from the audit log, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "show at most this many scans (0 = all)")
	rootCmd.AddCommand(cmd)

	del := &cobra.Command{
		Use:   "delete <index>",
		Short: "Remove one scan from the audit log (0 = newest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := prepare(cmd, "."); err != nil {
				return err
			}
			i, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			a, err := audit.NewAuditLog()
			if err != nil {
				return err
			}
			if err := a.DeleteRecord(i); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %d from %s\n", i, a.Path())
			return nil
		},
	}
	cmd.AddCommand(del)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if _, err := prepare(cmd, "."); err != nil {
		return err
	}
	a, err := audit.NewAuditLog()
	if err != nil {
		return err
	}
	recs, err := a.LoadHistory()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if flagHistoryLimit > 0 && len(recs) > flagHistoryLimit {
		recs = recs[:flagHistoryLimit]
	}
	out := cmd.OutOrStdout()
	if flagJSON {
		if recs == nil {
			recs = []audit.ScanRecord{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(out, "No scans recorded.")
		return nil
	}
	table := tablewriter.NewWriter(out)
	table.Header("Time", "Root", "Mode", "Records", "New", "Files", "Duration")
	for _, r := range recs {
		if err := table.Append(
			r.Timestamp.Format("2006-01-02 15:04:05"),
			r.Root,
			string(r.Mode),
			strconv.Itoa(r.TotalRecords),
			strconv.Itoa(r.NewRecords),
			strconv.Itoa(r.FilesScanned),
			r.Duration,
		); err != nil {
			return err
		}
	}
	return table.Render()
}
