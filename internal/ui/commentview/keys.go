package commentview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Refresh  key.Binding
	Filter   key.Binding
	Back     key.Binding
	List     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "scroll up")),
	Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "scroll down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdown", "page down")),
	Home:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "oldest")),
	End:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "follow newest")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
	List:     key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "threads")),
}
