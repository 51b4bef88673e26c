package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Detail    key.Binding
	Focus     key.Binding
	Send      key.Binding
	STEMI     key.Binding
	Stroke    key.Binding
	Trauma    key.Binding
	Minimize  key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.STEMI, k.Stroke, k.Trauma, k.Focus, k.Up, k.Down, k.Detail, k.Minimize, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Detail:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "case detail")),
	Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "cases/chat")),
	Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "send")),
	STEMI:     key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "STEMI")),
	Stroke:    key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "Stroke")),
	Trauma:    key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "Trauma")),
	Minimize:  key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "minimize chat")),
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}
