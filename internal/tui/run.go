package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/types"
)

// Options configures Run.
type Options struct {
	Baseline     report.Baseline
	BaselinePath string
	Rescan       func() ([]types.Record, error)
	// CachedAt marks the records as loaded from the results cache.
	CachedAt time.Time
}

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(records []types.Record, opts Options) error {
	m := NewModel(records, opts.Rescan).WithBaseline(opts.Baseline, opts.BaselinePath)
	if !opts.CachedAt.IsZero() {
		m.viewingCached = true
		m.lastScanTime = opts.CachedAt
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
