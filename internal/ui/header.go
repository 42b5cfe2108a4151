package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
)

// renderHeader renders the status bar: logo, user, counters, sync state and
// the latest notice or store error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("easyloft", styles.Logo)}

	if m.authSnap.IsAuthenticated && m.authSnap.User != nil {
		parts = append(parts, bg.Render(displayName(m.authSnap.User), styles.Text))
		if !compact {
			stats := listing.Stats(m.loftSnap.Items, m.pigeonSnap.Items, 0)
			parts = append(parts,
				bg.Render("Lofts:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprint(stats.TotalLofts), styles.Text),
				bg.Render("Pigeons:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprint(stats.TotalPigeons), styles.Text),
				m.sexCount(bg, domain.SexMale, stats.MaleCount)+bg.Space()+
					m.sexCount(bg, domain.SexFemale, stats.FemaleCount)+bg.Space()+
					m.sexCount(bg, domain.SexUnknown, stats.UnknownCount),
			)
		}
	}

	if m.busy() {
		parts = append(parts, bg.Render("● syncing", styles.WarningText))
	}

	if text, isErr := m.statusText(); text != "" {
		style := styles.SuccessText
		if isErr {
			style = styles.DangerText
		}
		parts = append(parts, bg.Render(truncate(text, max(m.width/2, 20)), style))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Space() + bg.Join(parts, "  "))
}

func (m Model) sexCount(bg BgStyle, sex domain.Sex, n int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SexColor(sex)))
	return bg.Render(fmt.Sprintf("%s%d", sexLabel(sex), n), style)
}

func (m Model) busy() bool {
	return m.authSnap.IsLoading || m.loftSnap.IsLoading || m.pigeonSnap.IsLoading
}

// statusText picks what the header reports: a store error on the current
// screen wins over the last notice.
func (m Model) statusText() (string, bool) {
	switch m.screen {
	case screenLofts:
		if m.loftSnap.Error != "" {
			return m.loftSnap.Error, true
		}
	case screenPigeons:
		if m.pigeonSnap.Error != "" {
			return m.pigeonSnap.Error, true
		}
	}
	return m.notice, m.noticeErr
}

// renderCommandBar lists the keys of the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.screen {
	case screenSignIn:
		commands = []cmd{
			{"enter", "Submit"},
			{"tab", "Next field"},
			{"ctrl+c", "Quit"},
		}
	case screenPigeons:
		view := "Grid"
		if m.filter.View == listing.ViewGrid {
			view = "Table"
		}
		commands = []cmd{
			{"n", "New"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"f", "Filter"},
			{"s", "Sort"},
			{"v", view},
			{"tab", "Details"},
			{"esc", "Lofts"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"enter", "Pigeons"},
			{"p", "All pigeons"},
			{"n", "New"},
			{"e", "Edit"},
			{"d", "Delete"},
			{"r", "Reload"},
			{"L", "Sign out"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		Render(bg.Space() + bg.Join(segments, "  "))
}
