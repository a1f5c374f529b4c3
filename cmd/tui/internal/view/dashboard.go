package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/report"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

const barWidth = 30

type dashboardState int

const (
	dashboardStateView dashboardState = iota
	dashboardStatePick
)

type DashboardModel struct {
	CommonModel
	session *session.Session

	state  dashboardState
	picker TimeframePicker
	filter datefilter.Filter
	label  string

	report report.Report
	err    error
}

func NewDashboardModel(s *session.Session) DashboardModel {
	m := DashboardModel{
		session: s,
		picker:  NewTimeframePicker(TimeframeThisMonth),
		filter:  TimeframeThisMonth.Filter(),
		label:   TimeframeThisMonth.String(),
	}
	m.refresh()

	return m
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	if m.state == dashboardStatePick {
		return "Enter: select | Esc: cancel"
	}

	return "Esc: back | t: timeframe | r: refresh"
}

func (m DashboardModel) Init() tea.Cmd {
	return nil
}

func (m *DashboardModel) refresh() {
	m.report, m.err = m.session.Report(m.filter, "")
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tf, ok := msg.(TimeframeSelectedMsg); ok {
		m.filter = tf.Filter
		m.label = tf.Label
		m.state = dashboardStateView
		m.refresh()

		return m, nil
	}

	if m.state == dashboardStatePick {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
			m.state = dashboardStateView
			return m, nil
		}

		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		return m, cmd
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "t":
			m.state = dashboardStatePick
			m.picker.Reset()

			return m, nil
		case "r":
			m.refresh()
			return m, nil
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.state == dashboardStatePick {
		return lipgloss.NewStyle().Padding(1).Render(m.picker.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	p := m.session.ActiveProject()
	if p == nil {
		return lipgloss.NewStyle().Padding(2).Render("No active project.")
	}

	header := fmt.Sprintf("%s | [t] %s", lipgloss.NewStyle().Bold(true).Render(p.Name), activeStyle(m.label))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		lipgloss.JoinHorizontal(lipgloss.Top,
			panelStyle.Render(renderSummary(m.report.Summary, p)),
			panelStyle.Render(renderCategories(m.report.Categories, p.Currency)),
		),
		panelStyle.Render(renderTrend(m.report.Trend, m.report.Granularity, p.Currency)),
	))
}

func renderSummary(s report.Summary, p *project.Project) string {
	incomeLabel, expenseLabel := "Income", "Expenses"
	if p.Type == project.TypePersonal {
		incomeLabel, expenseLabel = "Money In", "Spending"
	}

	rows := [][2]string{
		{incomeLabel, FormatAmount(s.Income, p.Currency)},
		{expenseLabel, FormatAmount(s.Expenses, p.Currency)},
		{"Cash Out", FormatAmount(s.CashOut, p.Currency)},
		{"Assets", FormatAmount(s.Assets, p.Currency)},
	}

	var b strings.Builder

	b.WriteString("Summary\n\n")

	for _, r := range rows {
		fmt.Fprintf(&b, "%-10s %14s\n", r[0], r[1])
	}

	net := FormatAmount(s.Net, p.Currency)
	if s.Net.IsNegative() {
		net = errorStyle.Render(net)
	} else {
		net = successStyle.Render(net)
	}

	fmt.Fprintf(&b, "\n%-10s %14s\n", "Net", net)
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d transactions", s.Count)))

	return b.String()
}

func renderCategories(cats []report.Category, currency string) string {
	var b strings.Builder

	b.WriteString("Expense Categories\n\n")

	if len(cats) == 0 {
		b.WriteString(faintStyle.Render("No expenses"))
		return b.String()
	}

	for _, c := range cats {
		fmt.Fprintf(&b, "%-16s %14s\n", c.Name, FormatAmount(c.Total, currency))
	}

	return b.String()
}

func renderTrend(buckets []report.Bucket, g report.Granularity, currency string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Trend (%s)\n\n", g)

	peak := decimal.Zero
	for _, bk := range buckets {
		peak = decimal.Max(peak, bk.CashIn, bk.Expenses)
	}

	if peak.IsZero() {
		b.WriteString(faintStyle.Render("Nothing to chart"))
		return b.String()
	}

	for _, bk := range buckets {
		fmt.Fprintf(&b, "%-8s %s %s\n", bk.Label,
			successStyle.Render(bar(bk.CashIn, peak)),
			faintStyle.Render(FormatAmount(bk.CashIn, currency)))
		fmt.Fprintf(&b, "%-8s %s %s\n", "",
			errorStyle.Render(bar(bk.Expenses, peak)),
			faintStyle.Render(FormatAmount(bk.Expenses, currency)))
	}

	return b.String()
}

func bar(v, peak decimal.Decimal) string {
	n := int(v.Div(peak).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	return strings.Repeat("█", n) + strings.Repeat(" ", barWidth-n)
}
