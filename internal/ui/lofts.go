package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/listing"
	"github.com/easyloft/easyloft-client/internal/validate"
)

func (m Model) handleLoftsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.loftSnap.Items)
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.loftRow < count-1 {
			m.loftRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.loftRow > 0 {
			m.loftRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.loftRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.loftRow = max(count-1, 0)
	case key.Matches(msg, m.keys.New):
		m.openLoftForm(nil)
	case key.Matches(msg, m.keys.Edit):
		if loft := m.selectedLoft(); loft != nil {
			m.openLoftForm(loft)
		}
	case key.Matches(msg, m.keys.Delete):
		if loft := m.selectedLoft(); loft != nil {
			id := loft.ID
			m.modal = confirmModal{
				title:     "Delete loft",
				body:      fmt.Sprintf("Delete %q? This cannot be undone.", loft.Name),
				onConfirm: func() tea.Cmd { return m.deleteLoftCmd(id) },
			}
		}
	case key.Matches(msg, m.keys.Open):
		if loft := m.selectedLoft(); loft != nil {
			return m.openPigeons(loft.ID)
		}
	case key.Matches(msg, m.keys.AllPigeons):
		return m.openPigeons("")
	}
	return m, nil
}

// openPigeons switches to the pigeon screen for one loft, or every loft
// when loftID is empty.
func (m Model) openPigeons(loftID string) (tea.Model, tea.Cmd) {
	m.screen = screenPigeons
	m.pigeonRow = 0
	m.focusedPane = 0
	m.notice = ""
	if loftID == "" {
		return m, m.allPigeonsCmd()
	}
	return m, m.loftPigeonsCmd(loftID)
}

func (m Model) selectedLoft() *domain.Loft {
	if m.loftRow < 0 || m.loftRow >= len(m.loftSnap.Items) {
		return nil
	}
	loft := m.loftSnap.Items[m.loftRow]
	return &loft
}

func (m *Model) openLoftForm(loft *domain.Loft) {
	title, id := "New loft", ""
	var values domain.Loft
	if loft != nil {
		title, id, values = "Edit loft", loft.ID, *loft
	}
	m.form = newForm(title,
		fieldSpec{key: "name", label: "Name", value: values.Name},
		fieldSpec{key: "location", label: "Location", value: values.Location, placeholder: "optional"},
		fieldSpec{key: "description", label: "Description", value: values.Description, placeholder: "optional"},
	)
	m.formKind = formLoft
	m.editingID = id
}

func (m Model) submitLoft() (tea.Cmd, error) {
	in := domain.LoftInput{
		Name:        m.form.Value("name"),
		Location:    m.form.Value("location"),
		Description: m.form.Value("description"),
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if m.editingID == "" {
		return m.createLoftCmd(in), nil
	}
	return m.updateLoftCmd(m.editingID, domain.LoftUpdate{
		Name:        &in.Name,
		Location:    &in.Location,
		Description: &in.Description,
	}), nil
}

func (m Model) renderLofts() string {
	height := m.contentHeight()
	listWidth := m.width * 40 / 100
	if m.width >= LayoutExtraWideWidth {
		listWidth = m.width * 30 / 100
	}
	if m.width < LayoutCompactWidth {
		listWidth = m.width
	}

	title := fmt.Sprintf("Lofts (%d)", len(m.loftSnap.Items))
	list := m.renderTitledBox(title, m.renderLoftRows(listWidth-2, height-2), listWidth, height, true)
	if listWidth == m.width {
		return list
	}
	dashWidth := m.width - listWidth
	dash := m.renderTitledBox("Overview", m.renderDashboard(dashWidth-4), dashWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, dash)
}

func (m Model) renderLoftRows(width, rows int) string {
	styles := m.theme.Styles()
	if len(m.loftSnap.Items) == 0 {
		if m.loftSnap.IsLoading {
			return styles.MutedText.Render("Loading lofts...")
		}
		return styles.MutedText.Render("No lofts yet. Press n to create one.")
	}

	counts := make(map[string]int)
	if m.pigeonScope == "" {
		for _, p := range m.pigeonSnap.Items {
			counts[p.LoftID]++
		}
	}

	start := scrollStart(m.loftRow, rows)
	var lines []string
	for i := start; i < len(m.loftSnap.Items) && i < start+rows; i++ {
		loft := m.loftSnap.Items[i]
		selected := i == m.loftRow
		bgColor := m.theme.FocusBg
		if selected {
			bgColor = m.theme.SelectionBg
		}
		bg := NewBgStyle(bgColor)

		nameStyle, metaStyle := styles.Text, styles.MutedText
		if selected {
			sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
			nameStyle, metaStyle = sel.Bold(true), sel
		}
		meta := orDash(loft.Location)
		if m.pigeonScope == "" {
			meta = fmt.Sprintf("%s · %d birds", meta, counts[loft.ID])
		}
		nameWidth := max(width-len([]rune(meta))-2, 8)
		content := bg.Render(cell(loft.Name, nameWidth), nameStyle) + bg.Space() + bg.Render(meta, metaStyle)
		lines = append(lines, bg.FillLine(content, width))
	}
	return strings.Join(lines, "\n")
}

// renderDashboard shows totals, the selected loft and the newest pigeons.
func (m Model) renderDashboard(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	var b strings.Builder

	section := func(title string) {
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
	}
	row := func(label, value string) {
		b.WriteString(styles.MutedText.Render(padRight(label, 14)))
		b.WriteString(styles.Text.Render(truncate(value, max(width-14, 4))))
		b.WriteString("\n")
	}

	if m.pigeonScope == "" {
		stats := listing.Stats(m.loftSnap.Items, m.pigeonSnap.Items, RecentPigeonLimit)
		section("Totals")
		row("Lofts", fmt.Sprint(stats.TotalLofts))
		row("Pigeons", fmt.Sprint(stats.TotalPigeons))
		row("Cocks", fmt.Sprint(stats.MaleCount))
		row("Hens", fmt.Sprint(stats.FemaleCount))
		row("Unsexed", fmt.Sprint(stats.UnknownCount))
		b.WriteString("\n")

		if len(stats.RecentPigeons) > 0 {
			section("Recently added")
			for _, p := range stats.RecentPigeons {
				row(orDash(p.RingNumber), p.Name+" · "+listing.LoftName(m.loftSnap.Items, p.LoftID))
			}
			b.WriteString("\n")
		}
	}

	if loft := m.selectedLoft(); loft != nil {
		section(loft.Name)
		row("Location", orDash(loft.Location))
		row("Description", orDash(loft.Description))
		if created := loft.ParsedCreatedAt(); !created.IsZero() {
			row("Created", created.Format("2006-01-02"))
		}
	}
	return b.String()
}

// scrollStart returns the first visible row so that selected stays in view.
func scrollStart(selected, rows int) int {
	if rows <= 0 || selected < rows {
		return 0
	}
	return selected - rows + 1
}

// renderTitledBox renders content in a box with the title embedded in the top border:
// ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 1)
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := len([]rune(title))
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	var paddedLines []string
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}
