package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/olekukonko/tablewriter"
)

var labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	Rejected     int
	FileErrors   int
}

// PrintText writes one "ckey!<hex>" line per record followed by the count.
func PrintText(w io.Writer, records []types.Record, opts PrintOptions) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No matches found.")
	}
	for _, r := range records {
		label := r.Label
		if label == "" {
			label = types.Label
		}
		if !opts.NoColor {
			label = labelStyle.Render(label)
		}
		fmt.Fprintf(w, "%s%s\n", label, r.Hex)
	}
	fmt.Fprintf(w, "%d ckey matches found.\n", len(records))
}

// PrintTable renders records as a bordered table.
func PrintTable(w io.Writer, records []types.Record, opts PrintOptions) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No matches found.")
		return nil
	}
	table := tablewriter.NewWriter(w)
	table.Header("Path", "Offset", "Mode", "Hex", "Entropy")
	for _, r := range records {
		if err := table.Append(
			r.Path,
			strconv.Itoa(r.MarkerOffset),
			string(r.Mode),
			r.Hex,
			strconv.FormatFloat(r.Entropy, 'f', 2, 64),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d ckey matches found.\n", len(records))
	return nil
}

// PrintSummary writes scan statistics. The CLI sends it to stderr so that
// stdout carries only records.
func PrintSummary(w io.Writer, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	}
	if opts.Rejected > 0 {
		fmt.Fprintf(w, "Candidates rejected: %d\n", opts.Rejected)
	}
	if opts.FileErrors > 0 {
		fmt.Fprintf(w, "Unreadable files: %d\n", opts.FileErrors)
	}
}
