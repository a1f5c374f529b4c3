package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/biztrack/internal/money"
	"github.com/MrJamesThe3rd/biztrack/internal/project"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
)

type projectsState int

const (
	projectsStateBrowse projectsState = iota
	projectsStateCreate
	projectsStateDelete
)

type projectFields struct {
	name     string
	kind     project.Type
	currency string
	tracking project.Tracking
	activate bool
	confirm  bool
}

type ProjectsModel struct {
	CommonModel
	session *session.Session

	state  projectsState
	cursor int
	form   *huh.Form
	fields *projectFields

	status string
	err    error
}

func NewProjectsModel(s *session.Session) ProjectsModel {
	m := ProjectsModel{session: s}

	if active := s.ActiveProject(); active != nil {
		for i, p := range s.Projects() {
			if p.ID == active.ID {
				m.cursor = i
			}
		}
	}

	return m
}

func (m ProjectsModel) Title() string { return "Projects" }

func (m ProjectsModel) ShortHelp() string {
	if m.state != projectsStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | Enter: switch | n: new | x: delete"
}

func (m ProjectsModel) Init() tea.Cmd {
	return nil
}

func (m ProjectsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(projectResultMsg); ok {
		m.state = projectsStateBrowse
		m.form = nil
		m.err = res.err
		m.status = res.status

		if n := len(m.session.Projects()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}

		return m, nil
	}

	if m.state != projectsStateBrowse {
		return m.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	projects := m.session.Projects()

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(projects)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(projects) {
			return m, m.switchCmd(projects[m.cursor].ID)
		}
	case "n":
		return m.enterCreate()
	case "x":
		if m.cursor < len(projects) {
			return m.enterDelete(projects[m.cursor])
		}
	}

	return m, nil
}

func (m ProjectsModel) enterCreate() (tea.Model, tea.Cmd) {
	m.fields = &projectFields{
		kind:     project.TypeBusiness,
		currency: money.DefaultCurrency,
		tracking: project.TrackingAll,
		activate: true,
	}
	f := m.fields

	m.form = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&f.name).Validate(notBlank("name")),
		huh.NewSelect[project.Type]().Title("Type").Options(
			huh.NewOption("Business", project.TypeBusiness),
			huh.NewOption("Personal", project.TypePersonal),
		).Value(&f.kind),
		huh.NewInput().Title("Currency").Placeholder("USD").Value(&f.currency).Validate(func(s string) error {
			if !money.ValidCode(money.Normalize(s)) {
				return fmt.Errorf("unknown currency %q", s)
			}

			return nil
		}),
		huh.NewSelect[project.Tracking]().Title("Track").Options(
			huh.NewOption("Everything", project.TrackingAll),
			huh.NewOption("Expenses only", project.TrackingExpenses),
			huh.NewOption("Cash flow only", project.TrackingCashflow),
		).Value(&f.tracking),
		huh.NewConfirm().Title("Switch to it now?").Value(&f.activate),
	)).WithWidth(45).WithShowHelp(false)
	m.state = projectsStateCreate

	return m, m.form.Init()
}

func (m ProjectsModel) enterDelete(p *project.Project) (tea.Model, tea.Cmd) {
	m.fields = &projectFields{}
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its transactions?", p.Name)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&m.fields.confirm),
	)).WithWidth(45).WithShowHelp(false)
	m.state = projectsStateDelete

	return m, m.form.Init()
}

func (m ProjectsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = projectsStateBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == projectsStateCreate {
		return m, m.createCmd(*m.fields)
	}

	projects := m.session.Projects()
	if !m.fields.confirm || m.cursor >= len(projects) {
		return m, func() tea.Msg { return projectResultMsg{} }
	}

	return m, m.deleteCmd(projects[m.cursor].ID)
}

type projectResultMsg struct {
	status string
	err    error
}

func (m ProjectsModel) switchCmd(id uuid.UUID) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := s.SetActiveProject(ctx, id); err != nil {
			return projectResultMsg{err: err}
		}

		return projectResultMsg{status: fmt.Sprintf("Switched to %s.", s.ActiveProject().Name)}
	}
}

func (m ProjectsModel) createCmd(f projectFields) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		p, err := s.CreateProject(ctx, project.CreateParams{
			Name:     strings.TrimSpace(f.name),
			Type:     f.kind,
			Currency: f.currency,
			Tracking: f.tracking,
		}, f.activate)
		if err != nil {
			return projectResultMsg{err: err}
		}

		return projectResultMsg{status: fmt.Sprintf("Created %s.", p.Name)}
	}
}

func (m ProjectsModel) deleteCmd(id uuid.UUID) tea.Cmd {
	s := m.session

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := s.DeleteProject(ctx, id); err != nil {
			return projectResultMsg{err: err}
		}

		return projectResultMsg{status: "Project deleted."}
	}
}

func (m ProjectsModel) View() string {
	var b strings.Builder

	b.WriteString("Projects:\n\n")

	projects := m.session.Projects()
	if len(projects) == 0 {
		b.WriteString(faintStyle.Render("No projects yet. Press n to create one.") + "\n")
	}

	active := m.session.ActiveProject()

	for i, p := range projects {
		cursor := " "
		if i == m.cursor {
			cursor = ">"
		}

		name := p.Name
		if active != nil && active.ID == p.ID {
			name = activeStyle(name + " (active)")
		}

		fmt.Fprintf(&b, "%s %s  %s\n", cursor, name,
			faintStyle.Render(fmt.Sprintf("%s · %s · %s", p.Type, p.Currency, p.Tracking)))
	}

	content := b.String()

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	switch {
	case m.err != nil:
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	case m.status != "":
		content = successStyle.Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
