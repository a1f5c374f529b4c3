package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	"github.com/MrJamesThe3rd/biztrack/internal/transaction"
)

type addFields struct {
	txFields
	purchaseDate string
}

type AddModel struct {
	CommonModel
	session *session.Session

	form   *huh.Form
	fields *addFields
	done   bool
	status string
	err    error
}

func NewAddModel(s *session.Session) AddModel {
	m := AddModel{
		session: s,
		fields: &addFields{txFields: txFields{
			kind: transaction.KindExpense,
			date: FormatDate(time.Now()),
		}},
	}
	m.form = m.buildForm()

	return m
}

func (m AddModel) Title() string { return "Add Transaction" }

func (m AddModel) ShortHelp() string {
	if m.done {
		return "Esc: back | n: add another"
	}

	return "Tab: next field | Enter: submit | Esc: back"
}

func (m AddModel) buildForm() *huh.Form {
	f := m.fields

	kinds := make([]huh.Option[transaction.Kind], 0, len(transaction.Kinds))
	for _, k := range transaction.Kinds {
		kinds = append(kinds, huh.NewOption(k.String(), k))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Kind]().Title("Type").Options(kinds...).Value(&f.kind),
			huh.NewInput().Title("Name").Value(&f.name).Validate(notBlank("name")),
			huh.NewInput().Title("Amount").Placeholder("0.00").Value(&f.amount).Validate(validAmount),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(&f.date).Validate(validDate),
			huh.NewInput().Title("Note").Value(&f.note),
		),
		huh.NewGroup(
			huh.NewInput().Title("Category").Placeholder("e.g. Supplies").Value(&f.category),
		).WithHideFunc(func() bool { return f.kind != transaction.KindExpense }),
		huh.NewGroup(
			huh.NewInput().Title("Purchase date").Placeholder("YYYY-MM-DD, optional").Value(&f.purchaseDate).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					return validDate(s)
				}),
		).WithHideFunc(func() bool { return f.kind != transaction.KindAsset }),
	).WithWidth(50).WithShowHelp(false)
}

func (m AddModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AddModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(addResultMsg); ok {
		m.done = true
		m.err = res.err
		m.status = res.status

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case keyMsg.Type == tea.KeyEsc:
			return m, Back
		case m.done && keyMsg.String() == "n":
			next := NewAddModel(m.session)
			return next, next.Init()
		}
	}

	if m.done {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.createCmd(*m.fields)
}

type addResultMsg struct {
	status string
	err    error
}

// Params converts the form input to create params.
func (f addFields) Params() (transaction.CreateParams, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return transaction.CreateParams{}, transaction.ErrInvalidAmount
	}

	date, err := datefilter.ParseDay(f.date)
	if err != nil {
		return transaction.CreateParams{}, transaction.ErrMissingDate
	}

	p := transaction.CreateParams{
		Kind:   f.kind,
		Name:   strings.TrimSpace(f.name),
		Amount: amount,
		Date:   date,
		Note:   strings.TrimSpace(f.note),
	}

	if f.kind == transaction.KindExpense {
		p.Category = strings.TrimSpace(f.category)
	}

	if f.kind == transaction.KindAsset && strings.TrimSpace(f.purchaseDate) != "" {
		pd, err := datefilter.ParseDay(f.purchaseDate)
		if err != nil {
			return transaction.CreateParams{}, err
		}

		p.PurchaseDate = &pd
	}

	return p, nil
}

func (m AddModel) createCmd(f addFields) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		params, err := f.Params()
		if err != nil {
			return addResultMsg{err: err}
		}

		ctx, cancel := OpCtx()
		defer cancel()

		tx, err := s.CreateTransaction(ctx, params)
		if err != nil {
			return addResultMsg{err: err}
		}

		return addResultMsg{status: fmt.Sprintf("Added %s %q.", strings.ToLower(tx.Kind.String()), tx.Name)}
	}
}

func (m AddModel) View() string {
	if !m.done {
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) +
			"\n\n(n to try again, Esc to go back)")
	}

	return lipgloss.NewStyle().Padding(2).Render(successStyle.Render(m.status) +
		"\n\n(n to add another, Esc to go back)")
}
