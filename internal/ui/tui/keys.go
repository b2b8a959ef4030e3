package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Reset      key.Binding
	Skip       key.Binding
	Focus      key.Binding
	ShortBreak key.Binding
	LongBreak  key.Binding
	Task       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "start/pause")),
		Reset:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Skip:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Focus:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "focus")),
		ShortBreak: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "short break")),
		LongBreak:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "long break")),
		Task:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set task")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Toggle, keys.Skip, keys.Reset, keys.Help, keys.Quit}
}

func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Toggle, keys.Skip, keys.Reset},
		{keys.Focus, keys.ShortBreak, keys.LongBreak},
		{keys.Task, keys.Help, keys.Quit},
	}
}
