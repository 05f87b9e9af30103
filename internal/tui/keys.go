package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Add      key.Binding
	Delete   key.Binding
	Generate key.Binding
	Reflect  key.Binding
	Refresh  key.Binding
	Reset    key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Next:     key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "next view")),
		Prev:     key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab", "prev view")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "done/paid/taken")),
		Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate plan")),
		Reflect:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "weekly reflection")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reset:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "reset data")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp returns the bindings shown for a view.
func (k keyMap) ShortHelp(v view) []key.Binding {
	out := []key.Binding{k.Next, k.Up, k.Down}
	switch v {
	case viewPlan:
		out = append(out, k.Generate, k.Reflect)
	case viewTasks:
		out = append(out, k.Toggle, k.Add, k.Delete)
	case viewBills, viewMeds:
		out = append(out, k.Toggle)
	}
	return append(out, k.Refresh, k.Reset, k.Quit)
}

func renderHelp(bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, helpKeyStyle.Render(help.Key)+" "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
