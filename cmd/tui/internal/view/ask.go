package view

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

const askTimeout = time.Minute

type AskModel struct {
	CommonModel
	assistant *assistant.Service
	session   *session.Session

	form     *huh.Form
	question *string
	asking   bool
	spinner  spinner.Model

	answer string
	err    error
}

func NewAskModel(svc *assistant.Service, s *session.Session) AskModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := AskModel{assistant: svc, session: s, question: new(""), spinner: sp}
	m.form = m.buildForm()

	return m
}

func (m AskModel) Title() string { return "Ask the Assistant" }

func (m AskModel) ShortHelp() string {
	return "Enter: ask | Esc: back"
}

func (m AskModel) buildForm() *huh.Form {
	return huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Ask about this project's transactions").
			Placeholder("What was my biggest expense this month?").
			Lines(3).
			Value(m.question).
			Validate(notBlank("question")),
	)).WithWidth(60).WithShowHelp(false)
}

func (m AskModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m AskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case askResultMsg:
		m.asking = false
		m.answer = msg.answer
		m.err = msg.err
		*m.question = ""
		m.form = m.buildForm()

		return m, m.form.Init()

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	if m.asking {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.asking = true

	return m, tea.Batch(m.spinner.Tick, m.askCmd(*m.question))
}

type askResultMsg struct {
	answer string
	err    error
}

func (m AskModel) askCmd(question string) tea.Cmd {
	svc := m.assistant
	s := m.session

	return func() tea.Msg {
		p := s.ActiveProject()
		if p == nil {
			return askResultMsg{err: session.ErrNoActiveProject}
		}

		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		answer, err := svc.Ask(ctx, question, s.Transactions(), p.Currency)

		return askResultMsg{answer: answer, err: err}
	}
}

func (m AskModel) View() string {
	if m.asking {
		return lipgloss.NewStyle().Padding(1).Render(fmt.Sprintf("%s Thinking...", m.spinner.View()))
	}

	content := m.form.View()

	switch {
	case m.err != nil:
		content += "\n\n" + errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case m.answer != "":
		content += "\n\n" + panelStyle.Width(60).Render(m.answer)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
