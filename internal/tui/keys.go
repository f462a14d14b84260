package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up       key.Binding
	down     key.Binding
	forward  key.Binding
	enter    key.Binding
	esc      key.Binding
	tab      key.Binding
	backtab  key.Binding
	retry    key.Binding
	reselect key.Binding
	copy     key.Binding
	quit     key.Binding
}

// list navigation stays on the arrows so letters reach the filter
var keys = keyMap{
	up:       key.NewBinding(key.WithKeys("up")),
	down:     key.NewBinding(key.WithKeys("down")),
	forward:  key.NewBinding(key.WithKeys("right")),
	enter:    key.NewBinding(key.WithKeys("enter")),
	esc:      key.NewBinding(key.WithKeys("esc")),
	tab:      key.NewBinding(key.WithKeys("tab")),
	backtab:  key.NewBinding(key.WithKeys("shift+tab")),
	retry:    key.NewBinding(key.WithKeys("ctrl+r")),
	reselect: key.NewBinding(key.WithKeys("ctrl+e")),
	copy:     key.NewBinding(key.WithKeys("c")),
	quit:     key.NewBinding(key.WithKeys("q")),
}
