package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type historyState int

const (
	historyStateBrowse historyState = iota
	historyStateEdit
	historyStateDelete
)

var historyTimeframes = []Timeframe{TimeframeAll, TimeframeToday, TimeframeThisWeek, TimeframeThisMonth}

// txFields backs the edit form. It lives on the heap so the form keeps
// writing into the same values as the model is copied.
type txFields struct {
	kind     transaction.Kind
	name     string
	amount   string
	date     string
	note     string
	category string
	confirm  bool
}

type HistoryModel struct {
	CommonModel
	session *session.Session

	state historyState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	edit  *txFields

	kindIdx int
	dateIdx int

	status string
	err    error
}

func NewHistoryModel(s *session.Session) HistoryModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 10},
		{Title: "Amount", Width: 14},
		{Title: "Name", Width: 30},
		{Title: "Category", Width: 14},
		{Title: "Note", Width: 30},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(st)

	m := HistoryModel{session: s, table: t}
	m.reload()

	return m
}

func (m HistoryModel) Title() string { return "Transaction History" }

func (m HistoryModel) ShortHelp() string {
	if m.state != historyStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | k: kind filter | d: date filter | r: refresh"
}

func (m HistoryModel) Init() tea.Cmd {
	return nil
}

func (m HistoryModel) kind() transaction.Kind {
	if m.kindIdx == 0 {
		return ""
	}

	return transaction.Kinds[m.kindIdx-1]
}

func (m HistoryModel) filter() datefilter.Filter {
	return historyTimeframes[m.dateIdx].Filter()
}

func (m *HistoryModel) reload() {
	rep, err := m.session.Report(m.filter(), m.kind())
	if err != nil {
		m.err = err
		m.txs = nil
		m.table.SetRows(nil)

		return
	}

	m.err = nil
	m.txs = rep.History
	m.refreshTable()
}

func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historySaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()
		m.reload()

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 5))
		return m, nil
	}

	switch m.state {
	case historyStateBrowse:
		return m.updateBrowse(msg)
	case historyStateEdit, historyStateDelete:
		return m.updateForm(msg)
	}

	return m, nil
}

func (m HistoryModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.reload()
			return m, nil
		case "k":
			m.kindIdx = (m.kindIdx + 1) % (len(transaction.Kinds) + 1)
			m.reload()

			return m, nil
		case "d":
			m.dateIdx = (m.dateIdx + 1) % len(historyTimeframes)
			m.reload()

			return m, nil
		case "e":
			return m.enterEdit()
		case "x":
			return m.enterDelete()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m HistoryModel) current() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m HistoryModel) enterEdit() (tea.Model, tea.Cmd) {
	tx := m.current()
	if tx == nil {
		return m, nil
	}

	m.edit = &txFields{
		kind:     tx.Kind,
		name:     tx.Name,
		amount:   tx.Amount.StringFixed(2),
		date:     FormatDate(tx.Date),
		note:     tx.Note,
		category: tx.Category,
	}

	fields := []huh.Field{
		huh.NewInput().Title("Name").Value(&m.edit.name).Validate(notBlank("name")),
		huh.NewInput().Title("Amount").Value(&m.edit.amount).Validate(validAmount),
		huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&m.edit.date).Validate(validDate),
		huh.NewInput().Title("Note").Value(&m.edit.note),
	}

	if tx.Kind == transaction.KindExpense {
		fields = append(fields, huh.NewInput().Title("Category").Value(&m.edit.category))
	}

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)
	m.state = historyStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m HistoryModel) enterDelete() (tea.Model, tea.Cmd) {
	tx := m.current()
	if tx == nil {
		return m, nil
	}

	m.edit = &txFields{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", tx.Name)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&m.edit.confirm),
	)).WithWidth(45).WithShowHelp(false)
	m.state = historyStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m HistoryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = historyStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	tx := m.current()
	if tx == nil {
		return m, func() tea.Msg { return historySaveMsg{} }
	}

	if m.state == historyStateDelete {
		return m, m.deleteCmd(tx.ID, m.edit.confirm)
	}

	return m, m.saveCmd(tx.ID, *m.edit)
}

func (m HistoryModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	kindLabel := "All"
	if k := m.kind(); k != "" {
		kindLabel = k.String()
	}

	header := fmt.Sprintf(
		"Filter: [k] Type: %s | [d] Date: %s",
		activeStyle(kindLabel),
		activeStyle(historyTimeframes[m.dateIdx].String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != historyStateBrowse && m.form != nil {
		title := "Edit Transaction"
		if m.state == historyStateDelete {
			title = "Delete Transaction"
		}

		panel := panelStyle.Width(48).Render(title + "\n\n" + m.form.View())
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *HistoryModel) refreshTable() {
	currency := ""
	if p := m.session.ActiveProject(); p != nil {
		currency = p.Currency
	}

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			FormatDate(tx.Date),
			tx.Kind.String(),
			FormatAmount(tx.Amount, currency),
			tx.Name,
			tx.Category,
			tx.Note,
		})
	}

	m.table.SetRows(rows)
}

type historySaveMsg struct {
	status string
	err    error
}

func (m HistoryModel) saveCmd(id uuid.UUID, f txFields) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
		if err != nil {
			return historySaveMsg{err: err}
		}

		date, err := datefilter.ParseDay(f.date)
		if err != nil {
			return historySaveMsg{err: err}
		}

		patch := transaction.Patch{
			Name:   &f.name,
			Amount: &amount,
			Date:   &date,
			Note:   &f.note,
		}

		if f.kind == transaction.KindExpense {
			patch.Category = &f.category
		}

		ctx, cancel := OpCtx()
		defer cancel()

		if _, err := s.EditTransaction(ctx, id, patch); err != nil {
			return historySaveMsg{err: err}
		}

		return historySaveMsg{status: "Transaction updated."}
	}
}

func (m HistoryModel) deleteCmd(id uuid.UUID, confirmed bool) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		if !confirmed {
			return historySaveMsg{}
		}

		ctx, cancel := OpCtx()
		defer cancel()

		if err := s.DeleteTransaction(ctx, id); err != nil {
			return historySaveMsg{err: err}
		}

		return historySaveMsg{status: "Transaction deleted."}
	}
}

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func validAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return errors.New("enter a non-negative amount")
	}

	return nil
}

func validDate(s string) error {
	if _, err := datefilter.ParseDay(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}

	return nil
}
