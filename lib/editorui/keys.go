// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the editor's key bindings. Text entry widgets consume
// most keystrokes while focused; these bindings apply when a list pane
// has focus or carry a modifier.
type KeyMap struct {
	// Pane cycling.
	NextPane     key.Binding
	PreviousPane key.Binding

	// List movement within the focused pane.
	Up   key.Binding
	Down key.Binding

	// Entry actions.
	Save          key.Binding
	TogglePreview key.Binding
	ToggleFormat  key.Binding
	ToggleGenre   key.Binding

	// Attachment actions (attachments pane).
	AddFiles key.Binding
	Remove   key.Binding
	Rename   key.Binding

	// Keyword actions (keywords pane).
	AddKeyword key.Binding
	Edit       key.Binding

	// Field actions (fields pane).
	ImportFields key.Binding
	AddField     key.Binding

	// Date/time actions (date pane).
	Now key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	NextPane: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next pane"),
	),
	PreviousPane: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous pane"),
	),
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save"),
	),
	TogglePreview: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("C-p", "preview"),
	),
	ToggleFormat: key.NewBinding(
		key.WithKeys("ctrl+f"),
		key.WithHelp("C-f", "body format"),
	),
	ToggleGenre: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("C-g", "genre"),
	),
	AddFiles: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "attach"),
	),
	Remove: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "remove"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	AddKeyword: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	ImportFields: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "import"),
	),
	AddField: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add field"),
	),
	Now: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "now"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("C-c", "quit"),
	),
}
