package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/biztrack/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/biztrack/internal/assistant"
	"github.com/MrJamesThe3rd/biztrack/internal/auth"
	"github.com/MrJamesThe3rd/biztrack/internal/config"
	"github.com/MrJamesThe3rd/biztrack/internal/database"
	"github.com/MrJamesThe3rd/biztrack/internal/docstore"
	docmemory "github.com/MrJamesThe3rd/biztrack/internal/docstore/memory"
	docpostgres "github.com/MrJamesThe3rd/biztrack/internal/docstore/postgres"
	"github.com/MrJamesThe3rd/biztrack/internal/export"
	"github.com/MrJamesThe3rd/biztrack/internal/importer"
	"github.com/MrJamesThe3rd/biztrack/internal/logging"
	"github.com/MrJamesThe3rd/biztrack/internal/prefs"
	prefsmemory "github.com/MrJamesThe3rd/biztrack/internal/prefs/memory"
	prefssqlite "github.com/MrJamesThe3rd/biztrack/internal/prefs/sqlite"
	projectStore "github.com/MrJamesThe3rd/biztrack/internal/project/store"
	"github.com/MrJamesThe3rd/biztrack/internal/session"
	txStore "github.com/MrJamesThe3rd/biztrack/internal/transaction/store"
)

type View int

const (
	ViewSignIn View = iota
	ViewLoading
	ViewMenu
	ViewDashboard
	ViewHistory
	ViewAdd
	ViewProjects
	ViewImport
	ViewExport
	ViewAsk
)

type services struct {
	auth      *auth.Service
	session   *session.Session
	importer  *importer.Service
	exporter  *export.Service
	assistant *assistant.Service
}

type model struct {
	svc services

	currentView View
	err         error

	signInView    view.SignInModel
	dashboardView view.DashboardModel
	historyView   view.HistoryModel
	addView       view.AddModel
	projectsView  view.ProjectsModel
	importView    view.ImportModel
	exportView    view.ExportModel
	askView       view.AskModel
}

func initialModel(svc services) model {
	return model{
		svc:         svc,
		currentView: ViewSignIn,
		signInView:  view.NewSignInModel(svc.auth),
	}
}

func (m model) Init() tea.Cmd {
	return m.signInView.Init()
}

type sessionReadyMsg struct {
	err error
}

func (m model) openSessionCmd(u *auth.User) tea.Cmd {
	s := m.svc.session

	return func() tea.Msg {
		ctx, cancel := view.OpCtx()
		defer cancel()

		return sessionReadyMsg{err: s.SignIn(ctx, u)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}

	case view.SignedInMsg:
		m.currentView = ViewLoading
		return m, m.openSessionCmd(msg.User)

	case sessionReadyMsg:
		m.err = msg.err
		m.currentView = ViewMenu

		return m, nil

	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	var cmd tea.Cmd

	switch m.currentView {
	case ViewSignIn:
		var newModel tea.Model
		newModel, cmd = m.signInView.Update(msg)
		m.signInView = newModel.(view.SignInModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewHistory:
		var newModel tea.Model
		newModel, cmd = m.historyView.Update(msg)
		m.historyView = newModel.(view.HistoryModel)
	case ViewAdd:
		var newModel tea.Model
		newModel, cmd = m.addView.Update(msg)
		m.addView = newModel.(view.AddModel)
	case ViewProjects:
		var newModel tea.Model
		newModel, cmd = m.projectsView.Update(msg)
		m.projectsView = newModel.(view.ProjectsModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewAsk:
		var newModel tea.Model
		newModel, cmd = m.askView.Update(msg)
		m.askView = newModel.(view.AskModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.svc.session
	hasProject := s.ActiveProject() != nil

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		if hasProject {
			m.currentView = ViewDashboard
			m.dashboardView = view.NewDashboardModel(s)

			return m, m.dashboardView.Init()
		}
	case "2":
		if hasProject {
			m.currentView = ViewHistory
			m.historyView = view.NewHistoryModel(s)

			return m, m.historyView.Init()
		}
	case "3":
		if hasProject {
			m.currentView = ViewAdd
			m.addView = view.NewAddModel(s)

			return m, m.addView.Init()
		}
	case "4":
		m.currentView = ViewProjects
		m.projectsView = view.NewProjectsModel(s)

		return m, m.projectsView.Init()
	case "5":
		if hasProject {
			m.currentView = ViewImport
			m.importView = view.NewImportModel(s, m.svc.importer)

			return m, m.importView.Init()
		}
	case "6":
		if hasProject {
			m.currentView = ViewExport
			m.exportView = view.NewExportModel(m.svc.exporter, s)

			return m, m.exportView.Init()
		}
	case "7":
		if hasProject {
			m.currentView = ViewAsk
			m.askView = view.NewAskModel(m.svc.assistant, s)

			return m, m.askView.Init()
		}
	case "s":
		if u := s.User(); u != nil {
			m.svc.auth.SignOut(context.Background(), u.ID)
		}

		m.currentView = ViewSignIn
		m.signInView = view.NewSignInModel(m.svc.auth)

		return m, m.signInView.Init()
	}

	return m, nil
}

func (m model) View() string {
	var body string

	switch m.currentView {
	case ViewSignIn:
		body = m.signInView.View()
	case ViewLoading:
		body = lipgloss.NewStyle().Padding(2).Render("Loading projects...")
	case ViewMenu:
		body = m.viewMenu()
	case ViewDashboard:
		body = m.dashboardView.View()
	case ViewHistory:
		body = m.historyView.View()
	case ViewAdd:
		body = m.addView.View()
	case ViewProjects:
		body = m.projectsView.View()
	case ViewImport:
		body = m.importView.View()
	case ViewExport:
		body = m.exportView.View()
	case ViewAsk:
		body = m.askView.View()
	default:
		body = "Unknown View"
	}

	if m.currentView == ViewSignIn || m.currentView == ViewLoading {
		return body
	}

	return body + "\n" + m.footer()
}

func (m model) viewMenu() string {
	s := m.svc.session

	var b strings.Builder

	b.WriteString("BizTrack\n\n")

	if u := s.User(); u != nil {
		fmt.Fprintf(&b, "Signed in as %s\n", u.DisplayName)
	}

	if p := s.ActiveProject(); p != nil {
		fmt.Fprintf(&b, "Project: %s (%s)\n\n", p.Name, p.Currency)
	} else {
		b.WriteString("No project yet. Create one under Projects.\n\n")
	}

	b.WriteString("1. Dashboard\n" +
		"2. Transaction History\n" +
		"3. Add Transaction\n" +
		"4. Projects\n" +
		"5. Import Transactions\n" +
		"6. Export Transactions\n" +
		"7. Ask the Assistant\n\n" +
		"s. Sign Out\n" +
		"q. Quit")

	if m.err != nil {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.err.Error()))
	}

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

// footer shows the most recent notification.
func (m model) footer() string {
	notes := m.svc.session.Notifications()
	if len(notes) == 0 {
		return ""
	}

	last := notes[len(notes)-1]

	return lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(fmt.Sprintf("[%s] %s", last.Level, last.Message))
}

func main() {
	demo := flag.Bool("demo", false, "start with an in-memory store and a seeded demo account")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logFile, err := tea.LogToFile("biztrack-tui.log", "")
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	level, _ := cfg.LogLevel()
	slog.SetDefault(logging.New(logFile, cfg.App.Name, cfg.App.LogFormat, level))

	ctx := context.Background()

	svc, closers, err := buildServices(ctx, cfg, *demo)
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	if err != nil {
		slog.Error("failed to start", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *demo {
		if err := seedDemo(ctx, svc.auth, svc.session); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	p := tea.NewProgram(initialModel(svc), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}

func buildServices(ctx context.Context, cfg *config.Config, demo bool) (services, []io.Closer, error) {
	var closers []io.Closer

	var docs docstore.Store = docmemory.New()

	if !demo && cfg.Store.Backend == config.BackendPostgres {
		if err := docpostgres.Migrate(cfg.ConnectionString()); err != nil {
			return services{}, closers, fmt.Errorf("migrating database: %w", err)
		}

		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return services{}, closers, fmt.Errorf("connecting to database: %w", err)
		}

		closers = append(closers, db)
		docs = docpostgres.New(db)
	}

	var prefStore prefs.Store = prefsmemory.New()

	if !demo && cfg.Prefs.Backend == config.BackendSQLite {
		store, err := prefssqlite.Open(cfg.Prefs.SQLitePath)
		if err != nil {
			return services{}, closers, fmt.Errorf("opening preferences: %w", err)
		}

		closers = append(closers, store)
		prefStore = store
	}

	var answerer assistant.Answerer = assistant.Unavailable{}

	if cfg.Gemini.APIKey != "" {
		gemini, err := assistant.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return services{}, closers, fmt.Errorf("creating assistant: %w", err)
		}

		answerer = gemini
	}

	authService := auth.NewService(docs)
	s := session.New(session.Deps{
		Projects:     projectStore.New(docs),
		Transactions: txStore.New(docs),
		Prefs:        prefStore,
	})

	// Sign-in itself is driven by the sign-in screen; the stream only
	// carries sign-outs and profile edits into the open session.
	authService.Subscribe(func(_ uuid.UUID, u *auth.User) {
		if u == nil {
			s.SignOut()
			return
		}

		if cur := s.User(); cur != nil && cur.ID == u.ID {
			_ = s.OnUserChanged(context.Background(), u)
		}
	})

	return services{
		auth:      authService,
		session:   s,
		importer:  importer.NewService(),
		exporter:  export.NewService(nil),
		assistant: assistant.NewService(answerer),
	}, closers, nil
}
