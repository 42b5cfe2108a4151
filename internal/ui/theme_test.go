package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
)

func TestThemeLookups(t *testing.T) {
	th := GetTheme("Nightfox")

	if got := th.SexColor(domain.SexFemale); got != th.SexColors[domain.SexFemale] {
		t.Fatalf("SexColor(female) = %q, want %q", got, th.SexColors[domain.SexFemale])
	}
	if got := th.SexColor(domain.Sex("hen")); got != th.Text {
		t.Fatalf("SexColor(hen) = %q, want text color %q", got, th.Text)
	}
}

func TestEveryThemeColorsEverySex(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, sex := range []domain.Sex{domain.SexMale, domain.SexFemale, domain.SexUnknown} {
			if th.SexColors[sex] == "" {
				t.Errorf("theme %s has no color for %s", name, sex)
			}
		}
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Nightfox"); got != "Kanagawa" {
		t.Fatalf("NextTheme(Nightfox) = %q, want Kanagawa", got)
	}
	if got := NextTheme("Slate"); got != "Nightfox" {
		t.Fatalf("NextTheme(Slate) = %q, want Nightfox", got)
	}
	if got := NextTheme("Unknown"); got != "Nightfox" {
		t.Fatalf("NextTheme(Unknown) = %q, want Nightfox", got)
	}
}

func TestGetTheme(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q, want Slate", got)
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox (fallback)", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"Blue Bar", 20, "Blue Bar"},
		{"Blue Bar Chequer", 10, "Blue Ba..."},
		{"abc", 2, "ab"},
		{"  padded  ", 0, "padded"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestCellPadsToWidth(t *testing.T) {
	if got := cell("ab", 5); got != "ab   " {
		t.Fatalf("cell = %q", got)
	}
	if got := cell("abcdefgh", 5); got != "ab..." {
		t.Fatalf("cell = %q", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" North, ,South ,")
	if len(got) != 2 || got[0] != "North" || got[1] != "South" {
		t.Fatalf("splitList = %#v", got)
	}
}

func TestStylesWithBackgroundKeepsForeground(t *testing.T) {
	th := GetTheme("Kanagawa")
	st := th.Styles().WithBackground(th.Surface)

	if got := st.DangerText.GetForeground(); got != lipgloss.Color(th.Danger) {
		t.Fatalf("DangerText foreground = %v, want %s", got, th.Danger)
	}
	if got := st.Logo.GetBackground(); got != lipgloss.Color(th.Surface) {
		t.Fatalf("Logo background = %v, want %s", got, th.Surface)
	}
	if got := st.SexStyle(domain.Sex("hen")).GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("SexStyle(hen) background = %v, want muted %s", got, th.Muted)
	}
}
