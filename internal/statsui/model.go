// Package statsui provides the Bubble Tea run dashboard.
package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/runlog/internal/model"
	"github.com/verte-zerg/runlog/internal/stats"
)

const (
	tabOverall = iota
	tabPerson
	tabRecords
	tabErrors
)

const (
	defaultPlotHeight = 10
	defaultWidth      = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4FB06D"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5534B"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4FB06D")).
			Padding(1, 2)
)

// Model implements the Bubble Tea dashboard for one parsed upload.
type Model struct {
	source string
	cfg    model.ReportConfig
	report stats.Report
	people []string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	records   table.Model

	width  int
	height int

	personInputMode bool
	personInput     textinput.Model
	personError     string
}

// NewModel constructs a dashboard over a parse result.
func NewModel(source string, result model.ParseResult, cfg model.ReportConfig) *Model {
	if cfg.PlotHeight <= 0 {
		cfg.PlotHeight = defaultPlotHeight
	}
	m := &Model{
		source: source,
		cfg:    cfg,
		tabs:   []string{"Overall", "Per Person", "Records", "Errors"},
	}
	m.report = stats.BuildReport(result, "")
	m.people = m.report.Groups.Sorted()
	m.selectPerson(cfg.Person)
	m.initPersonInput()
	m.initViewports()
	m.records = buildRecordTable(result.Records, 0, 1)
	m.renderTabContents()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.personInputMode {
			return m.updatePersonInput(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.activeTab == tabRecords {
			m.records.Focus()
		} else {
			m.records.Blur()
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.Window = nextWindow(m.cfg.Window)
			m.renderTabContents()
			return m, nil
		case "-":
			m.cfg.Window = prevWindow(m.cfg.Window)
			m.renderTabContents()
			return m, nil
		case "[":
			m.cyclePerson(-1)
			return m, nil
		case "]":
			m.cyclePerson(1)
			return m, nil
		case "enter":
			if m.activeTab == tabPerson {
				return m.startPersonInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabRecords {
				m.records.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabRecords {
				m.records.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabRecords {
				m.records, cmd = m.records.Update(msg)
				return m, cmd
			}
			m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.personInputMode {
		return fitLines(m.renderPersonModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderHelp(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// Person returns the currently selected person, or "" when none is selected.
func (m *Model) Person() string {
	return m.report.Person
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initPersonInput() {
	input := textinput.New()
	input.Prompt = "Person: "
	input.Placeholder = "name"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	m.personInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.records.SetWidth(m.width)
	m.records.SetHeight(max(bodyHeight-1, 1))
	m.personInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.personInput.Prompt))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabRecords {
		m.records.Focus()
	} else {
		m.records.Blur()
	}
}

func (m *Model) selectPerson(person string) {
	m.report.SelectPerson(person)
}

func (m *Model) cyclePerson(delta int) {
	if m.activeTab != tabPerson || len(m.people) == 0 {
		return
	}
	idx := -1
	for i, p := range m.people {
		if p == m.report.Person {
			idx = i
			break
		}
	}
	switch {
	case idx == -1 && delta < 0:
		idx = len(m.people) - 1
	case idx == -1:
		idx = 0
	default:
		idx = (idx + delta + len(m.people)) % len(m.people)
	}
	m.selectPerson(m.people[idx])
	m.renderTabContents()
}

func (m *Model) startPersonInput() (tea.Model, tea.Cmd) {
	m.personInputMode = true
	m.personError = ""
	m.personInput.SetValue(m.report.Person)
	return m, m.personInput.Focus()
}

func (m *Model) updatePersonInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.personInputMode = false
		m.personError = ""
		return m, nil
	case tea.KeyEnter:
		name := strings.TrimSpace(m.personInput.Value())
		if name != "" {
			if _, ok := m.report.Groups.Runs[name]; !ok {
				m.personError = fmt.Sprintf("unknown person %q", name)
				return m, nil
			}
		}
		m.selectPerson(name)
		m.personInputMode = false
		m.personError = ""
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.personInput, cmd = m.personInput.Update(msg)
	return m, cmd
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	summary := fmt.Sprintf("File: %s  records=%d  problems=%d  window=%d",
		m.source, len(m.report.Result.Records), len(m.report.Result.Errors), m.cfg.Window)
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Quit: q"
	if m.activeTab == tabPerson {
		help = "Nav: left/right  Person: [/] or enter  Window: -/=  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabRecords {
		if len(m.report.Result.Records) == 0 {
			return fitLines("No records. Fix the problems listed under Errors.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.records.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	m.viewports[tabOverall].SetContent(m.renderOverall(width))
	m.viewports[tabPerson].SetContent(m.renderPerson(width))
	m.viewports[tabErrors].SetContent(renderErrors(m.report.Result.Errors))
}

func (m *Model) renderOverall(width int) string {
	if len(m.report.Result.Records) == 0 {
		return "No data yet. Load a CSV with date, person and miles columns."
	}
	var b strings.Builder
	b.WriteString(renderMetricCards("Overall", m.report.Overall, width))
	b.WriteString("\n\n")
	b.WriteString(m.renderChart("Miles over time (total)", m.report.Series, width))
	var board bytes.Buffer
	if err := stats.RenderLeaderboard(&board, m.report.People, m.cfg.Top); err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
	} else if board.Len() > 0 {
		b.WriteString("\n" + strings.TrimRight(board.String(), "\n"))
	}
	return b.String()
}

func (m *Model) renderPerson(width int) string {
	if len(m.people) == 0 {
		return "No runners found."
	}
	if m.report.Person == "" {
		var table bytes.Buffer
		if err := stats.RenderPeopleTable(&table, m.report.People, m.report.Groups); err != nil {
			return errorStyle.Render(err.Error())
		}
		return "Select a person with [ / ] or enter.\n\n" + strings.TrimRight(table.String(), "\n")
	}
	var b strings.Builder
	b.WriteString(renderMetricCards(m.report.Person, m.report.PersonMetrics, width))
	b.WriteString("\n\n")
	b.WriteString(m.renderChart("Miles over time ("+m.report.Person+")", m.report.PersonSeries, width))
	var records bytes.Buffer
	if err := stats.RenderPersonRecords(&records, m.report.Person, m.report.Groups.Get(m.report.Person)); err != nil {
		b.WriteString("\n" + errorStyle.Render(err.Error()))
	} else {
		b.WriteString("\n" + strings.TrimRight(records.String(), "\n"))
	}
	return b.String()
}

func (m *Model) renderChart(title string, points []model.SeriesPoint, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderSeries(&buf, title, points, m.cfg.Window, width, m.cfg.PlotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render chart: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderPersonModal() string {
	body := []string{
		cardValueStyle.Render("Select Person"),
		m.personInput.View(),
		headerStyle.Render("Exact name; empty clears the selection."),
		headerStyle.Render("Enter to apply / Esc to cancel"),
	}
	if m.personError != "" {
		body = append(body, errorStyle.Render(m.personError))
	}
	box := modalStyle.Width(modalWidth(m.width)).Render(strings.Join(body, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func renderMetricCards(title string, metrics model.Metrics, width int) string {
	cards := []string{
		metricCard(title+" Average", stats.FormatMiles(metrics.Average)+" mi"),
		metricCard(title+" Min", stats.FormatMiles(metrics.Min)+" mi"),
		metricCard(title+" Max", stats.FormatMiles(metrics.Max)+" mi"),
		metricCard("Runs", strconv.Itoa(metrics.Count)),
	}
	if width < defaultWidth {
		return strings.Join(cards, "\n")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderErrors(errs []string) string {
	if len(errs) == 0 {
		return "No problems found."
	}
	lines := make([]string, 0, len(errs)+1)
	lines = append(lines, errorStyle.Render(fmt.Sprintf("%d problem(s):", len(errs))))
	for _, e := range errs {
		lines = append(lines, "- "+e)
	}
	return strings.Join(lines, "\n")
}

func buildRecordTable(records []model.RunRecord, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Person", Width: 20},
		{Title: "Miles", Width: 8},
	}
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, table.Row{
			r.DateKey(),
			r.Person,
			strconv.FormatFloat(r.Miles, 'f', -1, 64),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(max(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(recordTableStyles())
	return t
}

func recordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func nextWindow(n int) int {
	if n < 7 {
		return 7
	}
	return ((n / 7) + 1) * 7
}

func prevWindow(n int) int {
	if n <= 7 {
		return 1
	}
	if n%7 == 0 {
		return n - 7
	}
	return (n / 7) * 7
}

func modalWidth(width int) int {
	return max(40, min(width-4, 80))
}

func modalInnerWidth(width int) int {
	w := modalWidth(width) - 6 // 2 border + 4 padding
	return max(w, 10)
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
