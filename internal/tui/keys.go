package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	Menu          key.Binding
	Retry         key.Binding
	New           key.Binding
	Backspace     key.Binding
	WordBackspace key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
		Menu: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "options"),
		),
		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "delete"),
			key.WithHelp("bksp", "delete char"),
		),
		WordBackspace: key.NewBinding(
			key.WithKeys("ctrl+w", "alt+backspace", "ctrl+h"),
			key.WithHelp("ctrl+w", "delete word"),
		),
	}
}

// typingKeys is shown while a test is idle or running.
type typingKeys keyMap

func (k typingKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.WordBackspace, k.Menu, k.Quit}
}

func (k typingKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// optionKeys is shown in the options menu and on the result card.
type optionKeys keyMap

func (k optionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Retry, k.New, k.Quit}
}

func (k optionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
