package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
	"github.com/easyloft/easyloft-client/internal/prefs"
	"github.com/easyloft/easyloft-client/internal/state"
)

// screen is the top-level page shown under the header.
type screen int

const (
	screenSignIn screen = iota
	screenLofts
	screenPigeons
)

// formKind tells submitForm what the open form edits.
type formKind int

const (
	formNone formKind = iota
	formAuth
	formProfile
	formLoft
	formPigeon
	formFilter
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Auth      *state.AuthStore
	Lofts     *state.LoftStore
	Pigeons   *state.PigeonStore
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
	Tick      time.Duration
	Logger    *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	auth      *state.AuthStore
	lofts     *state.LoftStore
	pigeons   *state.PigeonStore
	prefsPath string
	logPath   string
	tick      time.Duration
	logger    *zap.Logger

	theme       Theme
	keys        keyMap
	width       int
	height      int
	ready       bool
	screen      screen
	focusedPane int // 0 = list, 1 = detail

	// Store snapshots, re-read on every tick and after each action.
	authSnap    state.AuthSnapshot
	loftSnap    state.LoftSnapshot
	pigeonSnap  state.PigeonSnapshot
	pigeonScope string

	loftRow   int
	pigeonRow int
	filter    listing.Filter
	visible   []domain.Pigeon
	detail    viewport.Model
	detailID  string

	authMode  authMode
	form      *form
	formKind  formKind
	editingID string
	modal     Modal
	showHelp  bool
	logView   *logView

	notice    string
	noticeErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := Model{
		ctx:       ctx,
		auth:      opts.Auth,
		lofts:     opts.Lofts,
		pigeons:   opts.Pigeons,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		tick:      tick,
		logger:    logger,
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      DefaultKeyMap(),
		filter:    opts.Prefs.PigeonFilters.Normalize(),
		detail:    viewport.New(0, 0),
	}
	m.sync()
	if m.authSnap.IsAuthenticated {
		m.screen = screenLofts
	} else {
		m.openAuthForm(authLogin)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.screen != screenSignIn {
		cmds = append(cmds, m.loadDashboardCmd())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeDetail()
		m.updateDetail()
		return m, nil

	case tickMsg:
		return m, tea.Batch(snapshotCmd, tickCmd(m.tick))

	case snapshotMsg:
		m.sync()
		return m, nil

	case actionMsg:
		return m.handleAction(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.logView != nil {
		return m.renderLogView()
	}
	if m.modal != nil {
		return m.renderModal(m.modal.View(m.theme, 40), 44, m.theme.Danger)
	}
	if m.form != nil && m.screen != screenSignIn {
		return m.renderModal(m.form.view(m.theme), 60, m.theme.Accent)
	}
	return m.renderMain()
}

// sync re-reads the stores and re-applies the pigeon filter.
func (m *Model) sync() {
	m.authSnap = m.auth.Snapshot()
	m.loftSnap = m.lofts.Snapshot()
	m.pigeonSnap = m.pigeons.Snapshot()
	m.pigeonScope = m.pigeons.Scope()
	m.visible = listing.Apply(m.pigeonSnap.Items, m.filter)
	m.loftRow = clampRow(m.loftRow, len(m.loftSnap.Items))
	m.pigeonRow = clampRow(m.pigeonRow, len(m.visible))
	m.updateDetail()
}

func clampRow(row, count int) int {
	if row >= count {
		row = count - 1
	}
	if row < 0 {
		row = 0
	}
	return row
}

// handleKey processes keyboard input. Overlays take keys before the screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.logView != nil {
		return m.handleLogKey(msg)
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if m.form != nil {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		m.logout()
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("Reloading...", false)
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Profile):
		m.openProfileForm()
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.openLogView()
		return m, nil
	}

	switch m.screen {
	case screenLofts:
		return m.handleLoftsKey(msg)
	case screenPigeons:
		return m.handlePigeonsKey(msg)
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.formKind == formAuth && !m.form.pending {
		if mode, ok := m.authModeFor(msg); ok {
			m.openAuthForm(mode)
			return m, nil
		}
	}

	result, cmd := m.form.update(msg, m.keys)
	switch result {
	case formCancelled:
		if m.formKind == formAuth {
			// The sign-in screen has nothing behind it.
			m.form.SetError(nil, "")
			return m, nil
		}
		m.closeForm()
		return m, nil
	case formSubmitted:
		return m.submitForm()
	}
	return m, cmd
}

// submitForm validates the open form and starts its action.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var err error
	switch m.formKind {
	case formAuth:
		cmd, err = m.submitAuth()
	case formProfile:
		cmd, err = m.submitProfile()
	case formLoft:
		cmd, err = m.submitLoft()
	case formPigeon:
		cmd, err = m.submitPigeon()
	case formFilter:
		err = m.submitFilter()
		if err == nil {
			m.closeForm()
			return m, nil
		}
	}
	if err != nil {
		m.form.SetError(err, "")
		return m, nil
	}
	m.form.SetError(nil, "")
	m.form.pending = cmd != nil
	return m, cmd
}

// handleAction applies a finished action to the UI.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	m.sync()

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return m, nil
		}
		text := msg.message
		if text == "" {
			text = msg.err.Error()
		}
		if m.form != nil && m.form.pending {
			m.form.pending = false
			m.form.SetError(msg.err, text)
		} else if msg.action != actFetch {
			m.setNotice(text, true)
		}
		return m, nil
	}

	switch msg.action {
	case actLogin, actRegister:
		m.closeForm()
		m.screen = screenLofts
		m.setNotice("Welcome, "+displayName(m.authSnap.User), false)
		return m, m.loadDashboardCmd()
	case actForgot:
		email := m.form.Value("email")
		m.openAuthForm(authReset)
		m.setNotice("If "+email+" has an account, a reset token is on its way", false)
	case actReset:
		m.openAuthForm(authLogin)
		m.setNotice("Password updated, sign in with the new one", false)
	case actProfile:
		m.closeForm()
		m.setNotice("Profile saved", false)
	case actLoftCreate:
		m.closeForm()
		m.loftRow = len(m.loftSnap.Items) - 1
		m.setNotice("Loft created", false)
	case actLoftUpdate:
		m.closeForm()
		m.setNotice("Loft saved", false)
	case actLoftDelete:
		m.setNotice("Loft deleted", false)
	case actPigeonCreate:
		m.closeForm()
		m.setNotice("Pigeon added", false)
	case actPigeonUpdate:
		m.closeForm()
		m.setNotice("Pigeon saved", false)
	case actPigeonDelete:
		m.setNotice("Pigeon deleted", false)
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form = nil
	m.formKind = formNone
	m.editingID = ""
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

// logout ends the session and drops every cached record.
func (m *Model) logout() {
	m.auth.Logout()
	m.lofts.Reset()
	m.pigeons.Reset()
	m.screen = screenSignIn
	m.focusedPane = 0
	m.loftRow, m.pigeonRow = 0, 0
	m.openAuthForm(authLogin)
	m.setNotice("Signed out", false)
	m.sync()
}

// savePrefs persists the theme and the pigeon filter.
func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, PigeonFilters: m.filter}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// renderMain renders header, command bar and the active screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.screen {
	case screenLofts:
		return m.renderLofts()
	case screenPigeons:
		return m.renderPigeons()
	default:
		return m.renderSignIn()
	}
}

// contentHeight is the space left under the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

func displayName(u *domain.User) string {
	if u == nil {
		return "breeder"
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Auth == nil || opts.Lofts == nil || opts.Pigeons == nil {
		return errors.New("ui requires auth, loft and pigeon stores")
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
