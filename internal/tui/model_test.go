package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
}

func sampleRecords() []types.Record {
	return []types.Record{
		{Path: "a/wallet.dat", MarkerOffset: 60, Hex: strings.Repeat("1f", 48), Mode: types.ModeStructural, Fingerprint: "00000000000000aa"},
		{Path: "b/wallet.dat", MarkerOffset: 7, Hex: strings.Repeat("2e", 40), Mode: types.ModeLegacy, Fingerprint: "00000000000000bb"},
	}
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func key(m Model, k string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch k {
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNewModel_RowsHideHexByDefault(t *testing.T) {
	isolate(t)
	m := NewModel(sampleRecords(), nil)
	rows := m.table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a/wallet.dat", rows[0][0])
	assert.Equal(t, "60", rows[0][1])
	assert.Equal(t, "structural", rows[0][2])
	assert.Equal(t, shortHex(strings.Repeat("1f", 48)), rows[0][3])
}

func TestToggleHideHex(t *testing.T) {
	isolate(t)
	m := sized(NewModel(sampleRecords(), nil))
	m, _ = key(m, "h")
	assert.False(t, m.prefs.HideHex)
	assert.Equal(t, strings.Repeat("1f", 48), m.table.Rows()[0][3])
	assert.False(t, LoadPrefs().HideHex)
}

func TestNavigationUpdatesDetail(t *testing.T) {
	isolate(t)
	m := sized(NewModel(sampleRecords(), nil))
	assert.Contains(t, m.viewport.View(), "a/wallet.dat")
	m, _ = key(m, "down")
	assert.Equal(t, 1, m.table.Cursor())
	assert.Contains(t, m.viewport.View(), "b/wallet.dat")
}

func TestDetailShowsArchive(t *testing.T) {
	isolate(t)
	recs := sampleRecords()
	recs[0].Path = "backup.tgz::home/wallet.dat"
	m := sized(NewModel(recs, nil))
	assert.Contains(t, m.viewport.View(), "backup.tgz (depth 2)")
}

func TestToggleBaselineWritesFile(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), report.DefaultBaselineFile)
	m := sized(NewModel(sampleRecords(), nil).WithBaseline(report.Baseline{}, p))

	m, cmd := key(m, "b")
	require.NotNil(t, cmd)
	assert.Equal(t, "(b) a/wallet.dat", m.table.Rows()[0][0])

	base, err := report.LoadBaseline(p)
	require.NoError(t, err)
	assert.True(t, base.Items[report.Key(sampleRecords()[0])])

	m, _ = key(m, "b")
	assert.Equal(t, "a/wallet.dat", m.table.Rows()[0][0])
	base, err = report.LoadBaseline(p)
	require.NoError(t, err)
	assert.Empty(t, base.Items)
}

func TestRescan(t *testing.T) {
	isolate(t)
	calls := 0
	fn := func() ([]types.Record, error) {
		calls++
		return sampleRecords()[:1], nil
	}
	m := sized(NewModel(sampleRecords(), fn))
	m, cmd := key(m, "r")
	assert.True(t, m.scanning)
	require.NotNil(t, cmd)

	next, _ := m.Update(m.rescan()())
	m = next.(Model)
	assert.Equal(t, 1, calls)
	assert.False(t, m.scanning)
	assert.Len(t, m.table.Rows(), 1)
	assert.Contains(t, m.statusMessage, "1 records")
}

func TestRescanUnavailable(t *testing.T) {
	isolate(t)
	m := NewModel(nil, nil)
	msg := m.rescan()()
	assert.Equal(t, statusMsg("Rescan not available"), msg)
}

func TestView(t *testing.T) {
	isolate(t)
	m := NewModel(sampleRecords(), nil)
	assert.Equal(t, "Initializing...", m.View())

	m = sized(m)
	out := m.View()
	assert.Contains(t, out, "2 records")

	m, _ = key(m, "?")
	assert.Contains(t, m.View(), "copy hex")
	m, _ = key(m, "x")
	assert.False(t, m.showHelp)

	empty := sized(NewModel(nil, nil))
	assert.Contains(t, empty.View(), "No ckey records found")
}

func TestQuit(t *testing.T) {
	isolate(t)
	m := sized(NewModel(sampleRecords(), nil))
	m, cmd := key(m, "q")
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.View())
}
