package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
)

// Theme is a named color palette. Colors are hex strings.
type Theme struct {
	Name string

	Background string // behind modals and the pigeon detail pane
	Surface    string // header and command bar
	SurfaceAlt string // unfocused panes
	FocusBg    string // focused pane and table body

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	SexColors map[domain.Sex]string
}

// Styles holds the text styles views render with.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style
	Logo        lipgloss.Style

	badgeText string
	sexColors map[domain.Sex]string
	sexAbsent string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the text styles for t.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),
		Logo:        fg(t.Warning).Bold(true),
		badgeText:   t.Background,
		sexColors:   t.SexColors,
		sexAbsent:   t.Muted,
	}
}

// WithBackground returns s with every text style drawn on bgColor.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Logo,
	} {
		*st = st.Background(bg)
	}
	return out
}

// SexStyle returns the badge style for sex. Unknown values get the muted color.
func (s Styles) SexStyle(sex domain.Sex) lipgloss.Style {
	color, ok := s.sexColors[sex]
	if !ok {
		color = s.sexAbsent
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.badgeText)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// SexColor returns the label color for sex, or the text color when the theme
// has none.
func (t Theme) SexColor(sex domain.Sex) string {
	if color, ok := t.SexColors[sex]; ok {
		return color
	}
	return t.Text
}

// themeList is the ctrl+t cycle order; the first entry is the default.
var themeList = []Theme{
	{
		Name: "Nightfox",
		Background: "#131a24", Surface: "#192330", SurfaceAlt: "#212e3f", FocusBg: "#29394f",
		SelectionBg: "#2b3b51", SelectionText: "#cdcecf",
		Border: "#39506d", BorderFocus: "#719cd6",
		Text: "#cdcecf", Muted: "#738091", Faint: "#71839b", Accent: "#719cd6",
		Success: "#81b29a", Warning: "#dbc074", Danger: "#c94f6d", Info: "#63cdcf",
		SexColors: map[domain.Sex]string{
			domain.SexMale:    "#719cd6",
			domain.SexFemale:  "#d67ad2",
			domain.SexUnknown: "#738091",
		},
	},
	{
		Name: "Kanagawa",
		Background: "#16161D", Surface: "#1F1F28", SurfaceAlt: "#2A2A37", FocusBg: "#2A2A37",
		SelectionBg: "#2D4F67", SelectionText: "#DCD7BA",
		Border: "#54546D", BorderFocus: "#7E9CD8",
		Text: "#DCD7BA", Muted: "#C8C093", Faint: "#727169", Accent: "#7E9CD8",
		Success: "#98BB6C", Warning: "#E6C384", Danger: "#E46876", Info: "#7FB4CA",
		SexColors: map[domain.Sex]string{
			domain.SexMale:    "#7E9CD8",
			domain.SexFemale:  "#D27E99",
			domain.SexUnknown: "#727169",
		},
	},
	{
		Name: "Slate",
		Background: "#020617", Surface: "#0f172a", SurfaceAlt: "#1e293b", FocusBg: "#283548",
		SelectionBg: "#0284c7", SelectionText: "#f8fafc",
		Border: "#334155", BorderFocus: "#38bdf8",
		Text: "#f1f5f9", Muted: "#94a3b8", Faint: "#64748b", Accent: "#38bdf8",
		Success: "#22c55e", Warning: "#f59e0b", Danger: "#ef4444", Info: "#06b6d4",
		SexColors: map[domain.Sex]string{
			domain.SexMale:    "#38bdf8",
			domain.SexFemale:  "#f472b6",
			domain.SexUnknown: "#64748b",
		},
	},
}

// GetTheme returns the theme called name, or the default theme.
func GetTheme(name string) Theme {
	for _, t := range themeList {
		if t.Name == name {
			return t
		}
	}
	return themeList[0]
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current string) string {
	for i, t := range themeList {
		if t.Name == current {
			return themeList[(i+1)%len(themeList)].Name
		}
	}
	return themeList[0].Name
}

// ThemeNames lists the themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeList))
	for i, t := range themeList {
		names[i] = t.Name
	}
	return names
}
