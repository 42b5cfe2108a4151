package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/easyloft/easyloft-client/internal/logtail"
)

// logViewLimit caps how many log entries the overlay loads.
const logViewLimit = 300

// logView is the client log overlay. It is a snapshot taken when opened;
// r reloads it.
type logView struct {
	entries []logtail.Entry
	err     string
	vp      viewport.Model
}

func (m *Model) openLogView() {
	v := &logView{vp: viewport.New(max(m.width-8, 10), max(m.height-8, 3))}
	m.logView = v
	m.reloadLogView()
}

func (m *Model) reloadLogView() {
	v := m.logView
	v.entries, v.err = nil, ""
	if m.logPath == "" {
		v.err = "Logging to a file is disabled"
	} else if entries, err := logtail.Tail(m.logPath, logViewLimit); err != nil {
		m.logger.Warn("read client log failed", zap.String("path", m.logPath), zap.Error(err))
		v.err = err.Error()
	} else {
		v.entries = entries
	}
	v.vp.SetContent(m.renderLogEntries(v.vp.Width))
	v.vp.GotoBottom()
}

func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.logView = nil
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.reloadLogView()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.logView.vp.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.logView.vp.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.logView.vp, cmd = m.logView.vp.Update(msg)
	return m, cmd
}

func (m Model) renderLogEntries(width int) string {
	styles := m.theme.Styles()
	v := m.logView
	if v.err != "" {
		return styles.DangerText.Render(v.err)
	}
	if len(v.entries) == 0 {
		return styles.MutedText.Render("Nothing logged yet.")
	}

	lines := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		stamp := "        "
		if !e.Time.IsZero() {
			stamp = e.Time.Local().Format("15:04:05")
		}
		level := m.levelStyle(e.Level).Render(cell(strings.ToUpper(orDash(e.Level)), 5))
		text := truncate(e.Text(), max(width-16, 10))
		lines = append(lines, styles.FaintText.Render(stamp)+" "+level+" "+styles.Text.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string) lipgloss.Style {
	styles := m.theme.Styles()
	switch level {
	case "error", "dpanic", "panic", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}

func (m Model) renderLogView() string {
	styles := m.theme.Styles()
	v := m.logView

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Client log"))
	b.WriteString("  ")
	b.WriteString(styles.FaintText.Render(truncate(m.logPath, 60)))
	b.WriteString("\n\n")
	b.WriteString(v.vp.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("j/k scroll · g/G top/bottom · r reload · esc close"))

	return m.renderModal(b.String(), max(m.width-4, 20), m.theme.Info)
}
