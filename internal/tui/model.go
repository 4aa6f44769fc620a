package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ckeyscan/ckeyscan/internal/analyze"
	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/ckeyscan/ckeyscan/internal/scanner"
	"github.com/ckeyscan/ckeyscan/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	detailPaneBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	hexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)

	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type (
	statusMsg  string
	recordsMsg []types.Record
)

// Model is the state of the record viewer.
type Model struct {
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	records  []types.Record
	prefs    Prefs

	baseline     report.Baseline
	baselinePath string

	rescanFunc    func() ([]types.Record, error)
	lastScanTime  time.Time
	viewingCached bool

	width, height int
	ready         bool
	scanning      bool
	showHelp      bool
	quitting      bool
	statusMessage string
}

// NewModel initializes a viewer over records. rescanFunc may be nil.
func NewModel(records []types.Record, rescanFunc func() ([]types.Record, error)) Model {
	columns := []table.Column{
		{Title: "Path", Width: 40},
		{Title: "Offset", Width: 10},
		{Title: "Mode", Width: 10},
		{Title: "Hex", Width: 24},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := Model{
		table:        t,
		spinner:      sp,
		records:      records,
		prefs:        LoadPrefs(),
		baseline:     report.Baseline{Items: map[string]bool{}},
		rescanFunc:   rescanFunc,
		lastScanTime: time.Now(),
	}
	m.rebuildRows()
	m.statusMessage = "q: quit | ?: help | c: copy hex | b: baseline | r: rescan"
	return m
}

// WithBaseline marks baselined records and lets 'b' toggle them in the
// baseline file at path.
func (m Model) WithBaseline(b report.Baseline, path string) Model {
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	m.baseline = b
	m.baselinePath = path
	m.rebuildRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		h := r.Hex
		if m.prefs.HideHex {
			h = shortHex(h)
		}
		p := r.Path
		if m.baseline.Items[report.Key(r)] {
			p = "(b) " + p
		}
		rows[i] = table.Row{p, strconv.Itoa(r.MarkerOffset), string(r.Mode), h}
	}
	m.table.SetRows(rows)
	m.updateViewportContent()
}

func (m Model) selected() *types.Record {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return nil
	}
	return &m.records[i]
}

func (m *Model) updateViewportContent() {
	r := m.selected()
	if r == nil {
		m.viewport.SetContent("No record selected")
		return
	}
	var sb strings.Builder
	line := func(k, v string) {
		sb.WriteString(keyStyle.Render(k+":") + " " + v + "\n")
	}
	line("Path", r.Path)
	if scanner.IsVirtualPath(r.Path) {
		line("Archive", fmt.Sprintf("%s (depth %d)", scanner.GetArtifactRoot(r.Path), scanner.GetDepth(r.Path)))
	}
	line("Offset", strconv.Itoa(r.MarkerOffset))
	line("Mode", string(r.Mode))
	line("Fingerprint", r.Fingerprint)
	line("Entropy", strconv.FormatFloat(r.Entropy, 'f', 3, 64))
	h := r.Hex
	if m.prefs.HideHex {
		h = shortHex(h)
	}
	line("Hex", hexStyle.Render(h))
	if rep, err := analyze.Inspect(r.Hex); err == nil {
		line("Bytes", strconv.Itoa(rep.Length))
		line("Class", string(rep.Class))
		if !m.prefs.HideHex {
			line("ASCII", rep.ASCII)
			line("Base58", rep.Base58)
		}
		line("SHA-256", rep.SHA256)
	}
	if m.baseline.Items[report.Key(*r)] {
		sb.WriteString(okStyle.Render("baselined") + "\n")
	}
	m.viewport.SetContent(sb.String())
}

func (m Model) rescan() tea.Cmd {
	fn := m.rescanFunc
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("Rescan not available")
		}
		recs, err := fn()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return recordsMsg(recs)
	}
}

func (m Model) copyHex() tea.Cmd {
	r := m.selected()
	if r == nil {
		return func() tea.Msg { return statusMsg("No record selected") }
	}
	if err := clipboard.WriteAll(r.Hex); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg("Copied hex to clipboard") }
}

func (m Model) copyPath() tea.Cmd {
	r := m.selected()
	if r == nil {
		return func() tea.Msg { return statusMsg("No record selected") }
	}
	if err := clipboard.WriteAll(r.Path); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Clipboard error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("Copied: %s", r.Path)) }
}

// toggleBaseline adds or removes the selected record and rewrites the
// baseline file when one is configured.
func (m *Model) toggleBaseline() tea.Cmd {
	r := m.selected()
	if r == nil {
		return func() tea.Msg { return statusMsg("No record selected") }
	}
	k := report.Key(*r)
	verb := "Baselined"
	if m.baseline.Items[k] {
		delete(m.baseline.Items, k)
		verb = "Removed from baseline"
	} else {
		m.baseline.Items[k] = true
	}
	m.rebuildRows()
	if m.baselinePath == "" {
		return func() tea.Msg { return statusMsg(verb + " (not saved)") }
	}
	if err := report.WriteBaseline(m.baselinePath, m.baseline); err != nil {
		return func() tea.Msg { return statusMsg(fmt.Sprintf("Baseline error: %v", err)) }
	}
	return func() tea.Msg { return statusMsg(fmt.Sprintf("%s: %s", verb, r.Path)) }
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	tableHeight := h/2 - 4
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)
	m.table.SetWidth(w - 2)
	m.viewport.Width = w - 4
	m.viewport.Height = h - tableHeight - 8
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.ready = true
	m.updateViewportContent()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, 10)
		}
		m.resize(msg.Width, msg.Height)
		return m, nil

	case statusMsg:
		m.statusMessage = string(msg)
		m.scanning = false
		return m, nil

	case recordsMsg:
		m.scanning = false
		m.records = []types.Record(msg)
		m.viewingCached = false
		m.lastScanTime = time.Now()
		m.table.SetCursor(0)
		m.rebuildRows()
		m.statusMessage = fmt.Sprintf("Rescan complete: %d records", len(m.records))
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.scanning {
			if msg.String() == "ctrl+c" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "c":
			return m, m.copyHex()
		case "p":
			return m, m.copyPath()
		case "b":
			return m, m.toggleBaseline()
		case "h":
			m.prefs.HideHex = !m.prefs.HideHex
			_ = SavePrefs(m.prefs)
			m.rebuildRows()
			return m, nil
		case "r":
			m.scanning = true
			return m, tea.Batch(m.spinner.Tick, m.rescan())
		}
	}

	before := m.table.Cursor()
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.updateViewportContent()
	}
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(40).Align(lipgloss.Center).
			Render(fmt.Sprintf("%s  Rescanning...", m.spinner.View()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popupStyle.Render(helpText))
	}

	title := fmt.Sprintf("ckeyscan  |  %d records", len(m.records))
	if m.viewingCached {
		title += "  |  cached " + m.lastScanTime.Format("Jan 2, 15:04")
	}
	header := titleStyle.Render(title)

	var body string
	if len(m.records) == 0 {
		body = okStyle.Render("No ckey records found")
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left,
			tableBorderStyle.Render(m.table.View()),
			detailPaneBorderStyle.Render(m.viewport.View()),
		)
	}
	status := statusStyle.Width(m.width).Render(m.statusMessage)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

const helpText = `Keys
  up/down, j/k  move
  c             copy hex
  p             copy path
  b             toggle baseline
  h             hide/show hex
  r             rescan
  q             quit`
