package ui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyloft/easyloft-client/internal/api"
	"github.com/easyloft/easyloft-client/internal/backendtest"
	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
	"github.com/easyloft/easyloft-client/internal/prefs"
	"github.com/easyloft/easyloft-client/internal/service"
	"github.com/easyloft/easyloft-client/internal/state"
	"github.com/easyloft/easyloft-client/internal/tokenstore"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "secret1"
)

type harness struct {
	backend   *backendtest.Server
	auth      *state.AuthStore
	lofts     *state.LoftStore
	pigeons   *state.PigeonStore
	prefsPath string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	backend := backendtest.New(t)
	backend.AddUser(testEmail, testPassword, "Ana")
	tokens := tokenstore.NewMemory("")
	client, err := api.NewClient(backend.URL, tokens)
	require.NoError(t, err)
	return harness{
		backend:   backend,
		auth:      state.NewAuthStore(service.NewAuthService(client), tokens, nil),
		lofts:     state.NewLoftStore(service.NewLoftService(client), nil),
		pigeons:   state.NewPigeonStore(service.NewPigeonService(client), nil),
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
}

func (h harness) model(t *testing.T) Model {
	t.Helper()
	m := New(Options{
		Auth:      h.auth,
		Lofts:     h.lofts,
		Pigeons:   h.pigeons,
		Prefs:     prefs.Defaults(),
		PrefsPath: h.prefsPath,
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return next.(Model)
}

// signedIn logs in through the store and returns a model on the lofts screen.
func (h harness) signedIn(t *testing.T) Model {
	t.Helper()
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	m := h.model(t)
	require.Equal(t, screenLofts, m.screen)
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+f":
		return tea.KeyMsg{Type: tea.KeyCtrlF}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends keys one by one and runs every command they produce.
func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyMsg(k))
		m = drain(t, next.(Model), cmd)
	}
	return m
}

// typeText types s into the focused input.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return drain(t, next.(Model), cmd)
}

// drain executes cmd and feeds its messages back until nothing is left.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil, tea.QuitMsg:
		return m
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
		return m
	default:
		next, follow := m.Update(msg)
		return drain(t, next.(Model), follow)
	}
}

func TestSignIn_LoginLoadsDashboard(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)
	require.Equal(t, screenSignIn, m.screen)

	m = typeText(t, m, testEmail)
	m = press(t, m, "tab")
	m = typeText(t, m, testPassword)
	m = press(t, m, "enter")

	assert.Equal(t, screenLofts, m.screen)
	assert.Nil(t, m.form)
	require.NotNil(t, m.authSnap.User)
	assert.Equal(t, "Ana", m.authSnap.User.Name)
	assert.Contains(t, m.notice, "Welcome, Ana")
	assert.Contains(t, m.View(), "Lofts (0)")
}

func TestSignIn_ValidationStaysLocal(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m = typeText(t, m, "not-an-email")
	m = press(t, m, "enter")

	require.NotNil(t, m.form)
	assert.Equal(t, "must be a valid email", m.form.errs.For("email"))
	assert.Equal(t, "is required", m.form.errs.For("password"))
	for _, req := range h.backend.Requests() {
		assert.NotEqual(t, "/auth/login", req.Path, "invalid input must not reach the server")
	}
}

func TestSignIn_WrongPasswordShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m = typeText(t, m, testEmail)
	m = press(t, m, "tab")
	m = typeText(t, m, "wrong-password")
	m = press(t, m, "enter")

	assert.Equal(t, screenSignIn, m.screen)
	require.NotNil(t, m.form)
	assert.False(t, m.form.pending)
	assert.Equal(t, "Invalid credentials", m.form.err)
}

func TestSignIn_RegisterCreatesAccount(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m = press(t, m, "ctrl+r")
	require.Equal(t, authRegister, m.authMode)
	m.form.SetValue("name", "Bruno")
	m.form.SetValue("email", "bruno@example.com")
	m.form.SetValue("password", "hunter22")
	m = press(t, m, "enter")

	assert.Equal(t, screenLofts, m.screen)
	require.NotNil(t, m.authSnap.User)
	assert.Equal(t, "bruno@example.com", m.authSnap.User.Email)
}

func TestSignIn_ForgotThenResetPassword(t *testing.T) {
	h := newHarness(t)
	m := h.model(t)

	m = press(t, m, "ctrl+f")
	m = typeText(t, m, testEmail)
	m = press(t, m, "enter")
	require.Equal(t, authReset, m.authMode, "a sent reset link moves to the token form")

	m.form.SetValue("token", h.backend.ResetToken(testEmail))
	m.form.SetValue("password", "newpass1")
	m.form.SetValue("confirmPassword", "newpass2")
	m = press(t, m, "enter")
	assert.Equal(t, "does not match", m.form.errs.For("confirmPassword"))

	m.form.SetValue("confirmPassword", "newpass1")
	m = press(t, m, "enter")
	assert.Equal(t, authLogin, m.authMode)
	assert.Contains(t, m.notice, "Password updated")

	require.NoError(t, h.auth.Login(context.Background(), testEmail, "newpass1"))
}

func TestLofts_CreateEditDelete(t *testing.T) {
	h := newHarness(t)
	m := h.signedIn(t)

	m = press(t, m, "n")
	require.Equal(t, formLoft, m.formKind)
	m = typeText(t, m, "North")
	m = press(t, m, "enter")
	require.Nil(t, m.form)
	require.Len(t, m.loftSnap.Items, 1)
	assert.Equal(t, "North", m.loftSnap.Items[0].Name)
	assert.Equal(t, "Loft created", m.notice)

	m = press(t, m, "e")
	require.Equal(t, "North", m.form.Value("name"))
	m.form.SetValue("name", "North Wing")
	m = press(t, m, "enter")
	require.Len(t, m.loftSnap.Items, 1)
	assert.Equal(t, "North Wing", m.loftSnap.Items[0].Name)

	m = press(t, m, "d")
	require.NotNil(t, m.modal)
	m = press(t, m, "n")
	assert.Nil(t, m.modal)
	assert.Len(t, m.loftSnap.Items, 1, "declining keeps the loft")

	m = press(t, m, "d", "y")
	assert.Empty(t, m.loftSnap.Items)
	assert.Equal(t, "Loft deleted", m.notice)
}

func TestLofts_EmptyNameIsRejected(t *testing.T) {
	h := newHarness(t)
	m := h.signedIn(t)

	m = press(t, m, "n", "enter")
	require.NotNil(t, m.form)
	assert.Equal(t, "is required", m.form.errs.For("name"))

	m = press(t, m, "esc")
	assert.Nil(t, m.form)
}

func seedLoft(t *testing.T, h harness, name string) domain.Loft {
	t.Helper()
	loft, err := h.lofts.Create(context.Background(), domain.LoftInput{Name: name})
	require.NoError(t, err)
	return loft
}

func seedPigeon(t *testing.T, h harness, in domain.PigeonInput) domain.Pigeon {
	t.Helper()
	if in.BirthDate == "" {
		in.BirthDate = "2024-03-01"
	}
	if in.OriginalBreeder == "" {
		in.OriginalBreeder = "Ana"
	}
	p, err := h.pigeons.Create(context.Background(), in)
	require.NoError(t, err)
	return p
}

func TestPigeons_OpenLoftScopesList(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	north := seedLoft(t, h, "North")
	south := seedLoft(t, h, "South")
	seedPigeon(t, h, domain.PigeonInput{LoftID: north.ID, Name: "Ace", Sex: domain.SexMale})
	seedPigeon(t, h, domain.PigeonInput{LoftID: south.ID, Name: "Belle", Sex: domain.SexFemale})

	m := h.model(t)
	m = press(t, m, "j", "enter")

	assert.Equal(t, screenPigeons, m.screen)
	assert.Equal(t, south.ID, m.pigeonScope)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "Belle", m.visible[0].Name)
	assert.Contains(t, m.View(), "South (1/1)")

	m = press(t, m, "esc")
	assert.Equal(t, screenLofts, m.screen)
	assert.Empty(t, m.pigeonScope, "leaving a loft reloads every pigeon")
	assert.Len(t, m.pigeonSnap.Items, 2)
}

func TestPigeons_CreateResolvesParentsByRing(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	loft := seedLoft(t, h, "North")
	sire := seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Sire", RingNumber: "BE-21-1", Sex: domain.SexMale})
	dam := seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Dam", RingNumber: "BE-21-2", Sex: domain.SexFemale})

	m := press(t, h.model(t), "enter", "n")
	require.Equal(t, formPigeon, m.formKind)
	m.form.SetValue("name", "Chick")
	m.form.SetValue("birthDate", "2025-04-10")
	m.form.SetValue("sex", "f")
	m.form.SetValue("originalBreeder", "Ana")
	m.form.SetValue("fatherId", "be-21-1")
	m.form.SetValue("motherId", "Dam")
	m = press(t, m, "enter")

	require.Nil(t, m.form)
	assert.Equal(t, "Pigeon added", m.notice)
	var chick domain.Pigeon
	for _, p := range m.pigeonSnap.Items {
		if p.Name == "Chick" {
			chick = p
		}
	}
	assert.Equal(t, domain.SexFemale, chick.Sex)
	assert.Equal(t, loft.ID, chick.LoftID)
	assert.Equal(t, sire.ID, chick.FatherID)
	assert.Equal(t, dam.ID, chick.MotherID)
}

func TestPigeons_ParentRulesBlockSubmit(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	loft := seedLoft(t, h, "North")
	seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Dam", RingNumber: "BE-21-2", Sex: domain.SexFemale})

	m := press(t, h.model(t), "enter", "n")
	m.form.SetValue("name", "Chick")
	m.form.SetValue("birthDate", "10/04/2025")
	m.form.SetValue("originalBreeder", "Ana")
	m.form.SetValue("fatherId", "BE-21-2")
	m.form.SetValue("motherId", "nobody")
	before := len(h.backend.Requests())
	m = press(t, m, "enter")

	require.NotNil(t, m.form)
	assert.Equal(t, "must be male", m.form.errs.For("fatherId"))
	assert.Equal(t, "not found", m.form.errs.For("motherId"))
	assert.Equal(t, "must be a date (YYYY-MM-DD)", m.form.errs.For("birthDate"))
	assert.Len(t, h.backend.Requests(), before)
}

func TestPigeons_CreateUploadsPhoto(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	seedLoft(t, h, "North")

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	path := filepath.Join(t.TempDir(), "chick.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))

	m := press(t, h.model(t), "enter", "n")
	m.form.SetValue("name", "Chick")
	m.form.SetValue("birthDate", "2025-04-10")
	m.form.SetValue("originalBreeder", "Ana")
	m.form.SetValue("image", filepath.Join(filepath.Dir(path), "missing.png"))
	m = press(t, m, "enter")
	require.NotNil(t, m.form)
	assert.Equal(t, "file not found", m.form.errs.For("image"))

	m.form.SetValue("image", path)
	m = press(t, m, "enter")
	require.Nil(t, m.form)
	require.Len(t, m.pigeonSnap.Items, 1)
	url := m.pigeonSnap.Items[0].Images.Body
	require.NotEmpty(t, url)
	stored, ok := h.backend.Upload(url)
	require.True(t, ok)
	assert.Equal(t, png, stored)
}

func TestPigeons_EditAndDelete(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	loft := seedLoft(t, h, "North")
	seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Ace", Sex: domain.SexMale, Plumage: "Blue"})

	m := press(t, h.model(t), "enter", "e")
	require.Equal(t, formPigeon, m.formKind)
	assert.Equal(t, "Ace", m.form.Value("name"))
	assert.Equal(t, "2024-03-01", m.form.Value("birthDate"))
	m.form.SetValue("plumage", "Red Chequer")
	m = press(t, m, "enter")
	require.Nil(t, m.form)
	require.Len(t, m.pigeonSnap.Items, 1)
	assert.Equal(t, "Red Chequer", m.pigeonSnap.Items[0].Plumage)

	m = press(t, m, "d", "y")
	assert.Empty(t, m.pigeonSnap.Items)
	assert.Equal(t, "Pigeon deleted", m.notice)
}

func TestPigeons_FilterSortAndViewPersist(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	loft := seedLoft(t, h, "North")
	seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Blue Boy", BirthDate: "2023-01-01", Sex: domain.SexMale})
	seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Ace", BirthDate: "2024-01-01", Sex: domain.SexMale})
	seedPigeon(t, h, domain.PigeonInput{LoftID: loft.ID, Name: "Bluebell", BirthDate: "2022-01-01", Sex: domain.SexFemale})

	m := press(t, h.model(t), "p")
	require.Len(t, m.visible, 3)
	assert.Equal(t, "Ace", m.visible[0].Name, "sorted by name by default")

	m = press(t, m, "v", "s", "S")
	assert.Equal(t, listing.ViewGrid, m.filter.View)
	assert.Equal(t, listing.SortBirthDate, m.filter.Sort)
	assert.True(t, m.filter.Desc)
	assert.Equal(t, "Ace", m.visible[0].Name, "newest first")

	m = press(t, m, "f")
	require.Equal(t, formFilter, m.formKind)
	m.form.SetValue("search", "blue")
	m.form.SetValue("sex", "male")
	m.form.SetValue("lofts", "north")
	m = press(t, m, "enter")
	require.Nil(t, m.form)
	require.Len(t, m.visible, 1)
	assert.Equal(t, "Blue Boy", m.visible[0].Name)

	saved, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, listing.ViewGrid, saved.PigeonFilters.View)
	assert.Equal(t, listing.SortBirthDate, saved.PigeonFilters.Sort)
	assert.Equal(t, "blue", saved.PigeonFilters.Search)
	assert.Equal(t, domain.SexMale, saved.PigeonFilters.Sex)
	assert.Equal(t, []string{loft.ID}, saved.PigeonFilters.LoftIDs)

	m = press(t, m, "x")
	assert.Len(t, m.visible, 3)
	assert.Equal(t, listing.ViewGrid, m.filter.View, "clearing keeps the view")
}

func TestPigeons_FilterFormRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.signedIn(t), "p", "f")

	m.form.SetValue("sex", "hen")
	m.form.SetValue("parents", "some")
	m.form.SetValue("lofts", "Nowhere")
	m.form.SetValue("bornFrom", "yesterday")
	m = press(t, m, "enter")

	require.NotNil(t, m.form)
	assert.NotEmpty(t, m.form.errs.For("sex"))
	assert.NotEmpty(t, m.form.errs.For("parents"))
	assert.Equal(t, "unknown loft Nowhere", m.form.errs.For("lofts"))
	assert.NotEmpty(t, m.form.errs.For("bornFrom"))
	assert.False(t, m.filter.Active(), "a rejected form leaves the filter untouched")
}

func TestProfile_Update(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.signedIn(t), "P")
	require.Equal(t, formProfile, m.formKind)
	assert.Equal(t, "Ana", m.form.Value("name"))

	m.form.SetValue("name", "Ana Silva")
	m.form.SetValue("phone", "555-0101")
	m = press(t, m, "enter")

	require.Nil(t, m.form)
	require.NotNil(t, m.authSnap.User)
	assert.Equal(t, "Ana Silva", m.authSnap.User.Name)
	assert.Equal(t, "555-0101", m.authSnap.User.Phone)
}

func TestLogout_ResetsStores(t *testing.T) {
	h := newHarness(t)
	m := h.signedIn(t)
	seedLoft(t, h, "North")
	m = drain(t, m, m.loadDashboardCmd())
	require.Len(t, m.loftSnap.Items, 1)

	m = press(t, m, "L")
	assert.Equal(t, screenSignIn, m.screen)
	assert.False(t, m.authSnap.IsAuthenticated)
	assert.Empty(t, m.loftSnap.Items)
	assert.Empty(t, m.pigeonSnap.Items)
	assert.Equal(t, authLogin, m.authMode)
}

func TestThemeCyclePersists(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.signedIn(t), "T")
	assert.Equal(t, "Kanagawa", m.theme.Name)

	saved, err := prefs.Load(h.prefsPath)
	require.NoError(t, err)
	assert.Equal(t, "Kanagawa", saved.Theme)
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t)
	m := press(t, h.signedIn(t), "?")
	require.True(t, m.showHelp)
	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.Contains(t, view, "Cycle theme")

	m = press(t, m, "j")
	assert.False(t, m.showHelp)
}

func TestHeaderShowsStoreError(t *testing.T) {
	h := newHarness(t)
	m := h.signedIn(t)
	h.auth.Logout() // the token is gone, so the next fetch fails

	m = drain(t, m, m.loadDashboardCmd())
	assert.Equal(t, "Unauthorized", m.loftSnap.Error)
	header := m.renderHeader()
	assert.True(t, strings.Contains(header, "Unauthorized"), "header = %q", header)
}

func TestLogOverlayShowsClientLog(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(t.TempDir(), "easyloft.log")
	require.NoError(t, os.WriteFile(logPath, []byte(
		`{"level":"info","ts":"2026-03-01T10:00:00.000Z","msg":"starting"}`+"\n"+
			`{"level":"warn","ts":"2026-03-01T10:00:01.000Z","logger":"lofts","msg":"store action failed","error":"Unauthorized"}`+"\n",
	), 0o600))

	require.NoError(t, h.auth.Login(context.Background(), testEmail, testPassword))
	m := New(Options{Auth: h.auth, Lofts: h.lofts, Pigeons: h.pigeons, Prefs: prefs.Defaults(), LogPath: logPath})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)

	m = press(t, m, "O")
	require.NotNil(t, m.logView)
	require.Len(t, m.logView.entries, 2)
	view := m.View()
	assert.Contains(t, view, "Client log")
	assert.Contains(t, view, "lofts: store action failed (Unauthorized)")

	m = press(t, m, "esc")
	assert.Nil(t, m.logView)
	assert.Equal(t, screenLofts, m.screen, "closing the log keeps the screen")
}

// actionFrom runs cmd and returns the first actionMsg it yields.
func actionFrom(t *testing.T, cmd tea.Cmd) actionMsg {
	t.Helper()
	require.NotNil(t, cmd)
	switch msg := cmd().(type) {
	case actionMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if act, ok := c().(actionMsg); ok {
				return act
			}
		}
	}
	t.Fatal("command produced no action result")
	return actionMsg{}
}

func TestSignIn_FailureTextSurvivesClearedStoreError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	tokens := tokenstore.NewMemory("")
	client, err := api.NewClient(srv.URL, tokens)
	require.NoError(t, err)
	h := harness{
		auth:      state.NewAuthStore(service.NewAuthService(client), tokens, nil),
		lofts:     state.NewLoftStore(service.NewLoftService(client), nil),
		pigeons:   state.NewPigeonStore(service.NewPigeonService(client), nil),
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	}
	m := h.model(t)

	m = typeText(t, m, testEmail)
	m = press(t, m, "tab")
	m = typeText(t, m, testPassword)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	require.True(t, m.form.pending)

	result := actionFrom(t, cmd)
	require.Error(t, result.err)
	assert.Equal(t, "request failed with status 500", errors.Unwrap(result.err).Error())

	// Another action resets the store before the result reaches the model.
	h.auth.ClearError()
	require.Empty(t, h.auth.Snapshot().Error)

	next, _ = m.Update(result)
	m = next.(Model)
	require.NotNil(t, m.form)
	assert.False(t, m.form.pending)
	assert.Equal(t, "invalid credentials", m.form.err)
}
