package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is a labelled text input.
type field struct {
	label string
	input textinput.Model
}

// form is the set of inputs of one section. One field has focus at a time.
type form struct {
	fields []field
	focus  int
}

func newField(label, placeholder string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	return field{label: label, input: ti}
}

func newForm(fields ...field) form {
	f := form{fields: fields}
	f.setFocus(0)
	return f
}

func (f *form) setFocus(i int) {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f *form) blur() {
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
}

func (f *form) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// valueOrPlaceholder returns the typed value, or the placeholder shown in
// its place when the field is empty.
func (f *form) valueOrPlaceholder(i int) string {
	if v := f.value(i); v != "" {
		return v
	}
	return f.fields[i].input.Placeholder
}

func (f *form) setPlaceholder(i int, p string) {
	f.fields[i].input.Placeholder = p
}

func (f *form) setValue(i int, v string) {
	f.fields[i].input.SetValue(v)
}

func (f *form) setWidth(w int) {
	for j := range f.fields {
		f.fields[j].input.Width = w
	}
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder
	for _, fl := range f.fields {
		b.WriteString(labelStyle(fl.label))
		b.WriteString(fl.input.View())
		b.WriteRune('\n')
	}
	return b.String()
}
