package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Open        key.Binding
	Back        key.Binding
	NextFeeling key.Binding
	PrevFeeling key.Binding
	NextX       key.Binding
	PrevX       key.Binding
	NextY       key.Binding
	PrevY       key.Binding
	Quit        key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open group")),
		Back:        key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		NextFeeling: key.NewBinding(key.WithKeys("f"), key.WithHelp("f/F", "feeling")),
		PrevFeeling: key.NewBinding(key.WithKeys("F")),
		NextX:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x/X", "x metric")),
		PrevX:       key.NewBinding(key.WithKeys("X")),
		NextY:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y/Y", "y metric")),
		PrevY:       key.NewBinding(key.WithKeys("Y")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) short() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.NextFeeling, k.NextX, k.NextY, k.Quit}
}
