package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	NextSection  key.Binding
	PrevSection  key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	Submit       key.Binding
	Listen       key.Binding
	ToggleSpeak  key.Binding
	Copy         key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextSection: key.NewBinding(
			key.WithKeys("ctrl+n", "ctrl+right"),
			key.WithHelp("ctrl+n", "next tab"),
		),
		PrevSection: key.NewBinding(
			key.WithKeys("ctrl+p", "ctrl+left"),
			key.WithHelp("ctrl+p", "prev tab"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "prev category"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "convert"),
		),
		Listen: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "voice command"),
		),
		ToggleSpeak: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "toggle speech"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy result"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "more"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextSection, k.Listen, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.NextField, k.PrevField},
		{k.NextSection, k.PrevSection},
		{k.NextCategory, k.PrevCategory},
		{k.Listen, k.ToggleSpeak, k.Copy},
		{k.Help, k.Quit},
	}
}
