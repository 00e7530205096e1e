// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/elnforge/elnforge/lib/markdown"
)

// Theme defines the color palette for the editor. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Focused pane border versus idle pane border.
	FocusBorder lipgloss.Color
	IdleBorder  lipgloss.Color

	// Selected list row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Section and field labels.
	LabelForeground lipgloss.Color

	// Status bar.
	StatusForeground lipgloss.Color
	ErrorForeground  lipgloss.Color

	// Validation problems inline next to a field value.
	ProblemForeground lipgloss.Color

	// Keyword chips.
	KeywordForeground lipgloss.Color

	// Help line at the bottom.
	HelpText lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	FocusBorder: lipgloss.Color("75"),
	IdleBorder:  lipgloss.Color("240"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	LabelForeground: lipgloss.Color("255"),

	StatusForeground: lipgloss.Color("114"),
	ErrorForeground:  lipgloss.Color("196"),

	ProblemForeground: lipgloss.Color("208"),

	KeywordForeground: lipgloss.Color("141"),

	HelpText: lipgloss.Color("241"),
}

// PreviewTheme maps the editor palette onto the markdown preview
// renderer's palette.
func (theme Theme) PreviewTheme() markdown.PreviewTheme {
	return markdown.PreviewTheme{
		Text:    theme.NormalText,
		Faint:   theme.FaintText,
		Heading: theme.LabelForeground,
		Rule:    theme.IdleBorder,
	}
}
