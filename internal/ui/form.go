package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/validate"
)

const formInputWidth = 36

// fieldSpec describes one input of a form. key matches the wire name used by
// validate.Errors so field errors land under the right input.
type fieldSpec struct {
	key         string
	label       string
	placeholder string
	value       string
	secret      bool
}

type formField struct {
	spec  fieldSpec
	input textinput.Model
}

type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

// form is a stack of labelled text inputs with per-field error lines.
type form struct {
	title   string
	hint    string
	fields  []formField
	focus   int
	errs    validate.Errors
	err     string
	pending bool
}

func newForm(title string, specs ...fieldSpec) *form {
	f := &form{title: title}
	for _, spec := range specs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = spec.placeholder
		in.CharLimit = 256
		in.Width = formInputWidth
		in.SetValue(spec.value)
		in.Cursor.SetMode(cursor.CursorStatic)
		if spec.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.fields = append(f.fields, formField{spec: spec, input: in})
	}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	if len(f.fields) == 0 {
		return
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == i {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
	f.focus = i
}

// Value returns the field's text. Secret fields are returned as typed;
// everything else is trimmed.
func (f *form) Value(key string) string {
	for _, field := range f.fields {
		if field.spec.key != key {
			continue
		}
		if field.spec.secret {
			return field.input.Value()
		}
		return strings.TrimSpace(field.input.Value())
	}
	return ""
}

// SetValue replaces a field's text.
func (f *form) SetValue(key, value string) {
	for i := range f.fields {
		if f.fields[i].spec.key == key {
			f.fields[i].input.SetValue(value)
		}
	}
}

// SetError shows err on the form. Field errors go under their inputs; any
// other error becomes the form-level message.
func (f *form) SetError(err error, message string) {
	f.errs, f.err = nil, ""
	if err == nil {
		return
	}
	var fieldErrs validate.Errors
	if errors.As(err, &fieldErrs) {
		f.errs = fieldErrs
		return
	}
	if message == "" {
		message = err.Error()
	}
	f.err = message
}

func (f *form) update(msg tea.KeyMsg, keys keyMap) (formResult, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Cancel):
		return formCancelled, nil
	case f.pending:
		return formEditing, nil
	case key.Matches(msg, keys.Submit):
		return formSubmitted, nil
	case key.Matches(msg, keys.NextField):
		f.setFocus(f.focus + 1)
		return formEditing, nil
	case key.Matches(msg, keys.PrevField):
		f.setFocus(f.focus - 1)
		return formEditing, nil
	}
	if len(f.fields) == 0 {
		return formEditing, nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return formEditing, cmd
}

func (f *form) view(theme Theme) string {
	styles := theme.Styles()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted)).Width(18)
	focused := label.Foreground(lipgloss.Color(theme.Accent)).Bold(true)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		style := label
		if i == f.focus {
			style = focused
		}
		b.WriteString(style.Render(field.spec.label))
		b.WriteString(field.input.View())
		b.WriteString("\n")
		if msg := f.errs.For(field.spec.key); msg != "" {
			b.WriteString(label.Render(""))
			b.WriteString(styles.DangerText.Render(msg))
			b.WriteString("\n")
		}
	}
	// Errors on fields the form does not show, such as nested records.
	for _, fe := range f.errs {
		if !f.hasField(fe.Field) {
			b.WriteString(styles.DangerText.Render(fe.Field + ": " + fe.Message))
			b.WriteString("\n")
		}
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if f.pending {
		b.WriteString(styles.WarningText.Render("Working..."))
	} else {
		hint := "enter submit · tab next · esc cancel"
		if f.hint != "" {
			hint = f.hint + "\n" + hint
		}
		b.WriteString(styles.FaintText.Render(hint))
	}
	return b.String()
}

func (f *form) hasField(key string) bool {
	for _, field := range f.fields {
		if field.spec.key == key {
			return true
		}
	}
	return false
}

// renderModal centers content in a bordered box over the whole screen.
func (m Model) renderModal(content string, width int, border string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(1, 2).
		Width(width)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
