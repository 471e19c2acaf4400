package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Enter     key.Binding
	Back      key.Binding
	Filter    key.Binding
	SplitH    key.Binding
	SplitV    key.Binding
	Switch    key.Binding
}

var Keys = KeyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Filter:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	SplitH:    key.NewBinding(key.WithKeys("h", "H"), key.WithHelp("h", "split")),
	SplitV:    key.NewBinding(key.WithKeys("v", "V"), key.WithHelp("v", "split side by side")),
	Switch:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
}

// menuHelp lists the bindings shown in the footer under the menu.
func menuHelp(split bool) []key.Binding {
	if split {
		closeKey := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close pane"))
		return []key.Binding{Keys.Enter, Keys.Switch, closeKey, Keys.Quit}
	}
	return []key.Binding{Keys.Enter, Keys.Filter, Keys.Back, Keys.Quit}
}
