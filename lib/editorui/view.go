// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/markdown"
)

func (model *Model) refreshPreview() {
	if !model.showPreview || model.preview.Width == 0 {
		return
	}
	rendered := markdown.RenderPreview(model.state.Body, model.theme.PreviewTheme(), model.preview.Width)
	model.preview.SetContent(rendered)
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	if model.modal == modalFilePicker || model.modal == modalImportPicker {
		return model.renderPickerScreen()
	}

	header := model.renderHeader()
	leftPane := model.renderEntryPane()
	rightPane := model.renderMetadataPane()
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	statusBar := model.renderStatusBar()
	helpLine := model.renderHelpLine()

	screen := lipgloss.JoinVertical(lipgloss.Left, header, panes, statusBar, helpLine)

	if model.state.Err != "" {
		return model.renderCenteredModal(model.renderErrorBox())
	}
	if model.modal != modalNone {
		return model.renderCenteredModal(model.renderInputBox())
	}
	return screen
}

func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.LabelForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var pending string
	if model.state.PendingCommands() > 0 {
		pending = faint.Render(fmt.Sprintf("  working (%d)...", model.state.PendingCommands()))
	}

	left := titleStyle.Render("elnforge") +
		faint.Render(fmt.Sprintf("  genre: %s  body: %s", model.state.Genre, model.state.BodyFormat)) +
		pending
	return lipgloss.NewStyle().Width(model.width).Render(left)
}

func (model Model) paneStyle(focused bool, width int) lipgloss.Style {
	border := model.theme.IdleBorder
	if focused {
		border = model.theme.FocusBorder
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 1)
}

func (model Model) renderEntryPane() string {
	paneWidth := model.width/2 - 2
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)

	titleBox := model.paneStyle(model.focus == FocusTitle, paneWidth-2).
		Render(label.Render("Title") + "\n" + model.title.View())

	var bodyContent string
	if model.showPreview {
		bodyContent = label.Render("Preview") + "\n" + model.preview.View()
	} else {
		bodyContent = label.Render("Body (markdown)") + "\n" + model.body.View()
	}
	bodyBox := model.paneStyle(model.focus == FocusBody, paneWidth-2).Render(bodyContent)

	return lipgloss.JoinVertical(lipgloss.Left, titleBox, bodyBox)
}

func (model Model) renderMetadataPane() string {
	paneWidth := model.width - model.width/2 - 2

	dateBox := model.paneStyle(model.focus == FocusDateTime, paneWidth-2).
		Render(model.renderDateTime())
	keywordBox := model.paneStyle(model.focus == FocusKeywords, paneWidth-2).
		Render(model.renderKeywords(paneWidth - 4))
	fieldBox := model.paneStyle(model.focus == FocusFields, paneWidth-2).
		Render(model.renderFields(paneWidth - 4))
	attachmentBox := model.paneStyle(model.focus == FocusAttachments, paneWidth-2).
		Render(model.renderAttachments(paneWidth - 4))

	return lipgloss.JoinVertical(lipgloss.Left, dateBox, keywordBox, fieldBox, attachmentBox)
}

func (model Model) renderDateTime() string {
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	selected := lipgloss.NewStyle().
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)
	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)

	picker := model.state.DateTime
	segments := []struct {
		segment dateSegment
		text    string
	}{
		{segmentYear, fmt.Sprintf("%04d", picker.Year)},
		{segmentMonth, fmt.Sprintf("%02d", int(picker.Month))},
		{segmentDay, fmt.Sprintf("%02d", picker.Day)},
		{segmentHour, fmt.Sprintf("%02d", picker.Hour)},
		{segmentMinute, fmt.Sprintf("%02d", picker.Minute)},
	}

	var parts []string
	for _, entry := range segments {
		style := normal
		if model.focus == FocusDateTime && entry.segment == model.dateCursor {
			style = selected
		}
		parts = append(parts, style.Render(entry.text))
	}

	line := parts[0] + "-" + parts[1] + "-" + parts[2] + "  " + parts[3] + ":" + parts[4]
	return label.Render("Performed at") + "\n" + line
}

func (model Model) renderKeywords(width int) string {
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	chip := lipgloss.NewStyle().Foreground(model.theme.KeywordForeground)
	selectedChip := chip.
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	keywords := model.state.Keywords.List()
	if len(keywords) == 0 {
		return label.Render("Keywords") + "\n" + faint.Render("none (a to add)")
	}

	var chips []string
	for index, keyword := range keywords {
		style := chip
		if model.focus == FocusKeywords && index == model.keywordCursor {
			style = selectedChip
		}
		chips = append(chips, style.Render("["+keyword+"]"))
	}
	return label.Render("Keywords") + "\n" + ansi.Wrap(strings.Join(chips, " "), width, "")
}

func (model Model) renderFields(width int) string {
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	selected := normal.
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)
	problem := lipgloss.NewStyle().Foreground(model.theme.ProblemForeground)

	fields := model.state.Fields.List()
	if len(fields) == 0 {
		return label.Render("Fields") + "\n" + faint.Render("none (i to import, a to add)")
	}

	var lines []string
	for index, field := range fields {
		value := field.Value
		if value == "" {
			value = "-"
		}
		line := fmt.Sprintf("%s: %s", field.Label, value)
		if field.Unit != "" {
			line += " " + field.Unit
		}
		line = ansi.Truncate(line, width-12, "…")
		if note := fieldProblemText(field); note != "" {
			line += " " + problem.Render("("+note+")")
		}
		style := normal
		if model.focus == FocusFields && index == model.fieldCursor {
			style = selected
		}
		lines = append(lines, style.Render(line))
	}
	return label.Render("Fields") + "\n" + strings.Join(lines, "\n")
}

func (model Model) renderAttachments(width int) string {
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	selected := normal.
		Background(model.theme.SelectedBackground).
		Foreground(model.theme.SelectedForeground)

	items := model.state.Attachments.Items()
	if len(items) == 0 {
		return label.Render("Attachments") + "\n" + faint.Render("none (a to add)")
	}

	var lines []string
	for index, item := range items {
		line := fmt.Sprintf("%s  %s  %s",
			item.SanitizedName, attachment.FormatBytes(item.SizeBytes), item.MIME)
		line = ansi.Truncate(line, width, "…")
		style := normal
		if model.focus == FocusAttachments && index == model.attachmentCursor {
			style = selected
		}
		lines = append(lines, style.Render(line))

		// Show cell art under the selected row only; the full list
		// with art would not fit.
		if index == model.attachmentCursor {
			if art, ok := model.state.Attachments.ThumbnailArt(item.SourcePath); ok {
				lines = append(lines, art)
			}
		}
	}
	return label.Render("Attachments") + "\n" + strings.Join(lines, "\n")
}

func (model Model) renderStatusBar() string {
	style := lipgloss.NewStyle().Foreground(model.theme.StatusForeground)
	if model.state.Err != "" {
		style = lipgloss.NewStyle().Foreground(model.theme.ErrorForeground)
	}
	status := model.state.Status
	if status == "" {
		status = " "
	}
	return style.Width(model.width).Render(ansi.Truncate(status, model.width, "…"))
}

func (model Model) renderHelpLine() string {
	help := "Tab panes · C-s save · C-p preview · C-f format · C-g genre · C-c quit"
	return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help)
}

func (model Model) renderErrorBox() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.ErrorForeground).
		Padding(1, 2).
		Width(min(model.width-8, 70))
	dismiss := lipgloss.NewStyle().Foreground(model.theme.FaintText).Render("\n\nEnter/Esc to dismiss")
	return box.Render(model.state.Err + dismiss)
}

func (model Model) renderInputBox() string {
	titles := map[modalKind]string{
		modalSavePrompt:  "Save archive as",
		modalKeywordAdd:  "Add keywords (comma-separated)",
		modalKeywordEdit: "Edit keyword",
		modalRename:      "Rename attachment",
		modalFieldDraft:  "New field label",
		modalFieldValue:  "Field value",
	}
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.FocusBorder).
		Padding(1, 2).
		Width(min(model.width-8, 70))
	return box.Render(label.Render(titles[model.modal]) + "\n" + model.modalInput.View())
}

func (model Model) renderCenteredModal(box string) string {
	return lipgloss.Place(model.width, model.height, lipgloss.Center, lipgloss.Center, box)
}

func (model Model) renderPickerScreen() string {
	label := lipgloss.NewStyle().Foreground(model.theme.LabelForeground).Bold(true)
	title := "Attach file"
	if model.modal == modalImportPicker {
		title = "Import metadata (JSON or YAML)"
	}
	hint := lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("Enter to select · Esc to cancel")
	return lipgloss.JoinVertical(lipgloss.Left, label.Render(title), model.picker.View(), hint)
}
