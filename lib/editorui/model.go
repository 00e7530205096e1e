// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package editorui

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/elnforge/elnforge/lib/archive"
	"github.com/elnforge/elnforge/lib/executor"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/kernel"
	"github.com/elnforge/elnforge/lib/rocrate"
	"github.com/elnforge/elnforge/lib/thumbnail"
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusTitle means keystrokes go to the title input.
	FocusTitle FocusRegion = iota
	// FocusBody means keystrokes go to the body textarea.
	FocusBody
	// FocusAttachments means navigation keys move the attachment
	// cursor.
	FocusAttachments
	// FocusKeywords means navigation keys move the keyword cursor.
	FocusKeywords
	// FocusFields means navigation keys move the field cursor.
	FocusFields
	// FocusDateTime means left/right selects a date segment and
	// up/down adjusts it.
	FocusDateTime
)

// focusOrder is the Tab cycling sequence.
var focusOrder = []FocusRegion{
	FocusTitle, FocusBody, FocusAttachments, FocusKeywords, FocusFields, FocusDateTime,
}

// modalKind identifies the active modal overlay, if any. While a modal
// is up, all keyboard input routes to it.
type modalKind int

const (
	modalNone modalKind = iota
	modalSavePrompt
	modalKeywordAdd
	modalKeywordEdit
	modalRename
	modalFieldDraft
	modalFieldValue
	modalFilePicker
	modalImportPicker
)

// dateSegment identifies the selected part of the date/time pane.
type dateSegment int

const (
	segmentYear dateSegment = iota
	segmentMonth
	segmentDay
	segmentHour
	segmentMinute
)

// kernelMessageMsg wraps a worker result for delivery through the
// bubbletea message loop.
type kernelMessageMsg struct {
	message kernel.Message
}

// importResultMsg carries a metadata import outcome produced by the
// shell's own file picker rather than a dispatched command, so it must
// not settle the pending-command counter.
type importResultMsg struct {
	message kernel.Message
}

// Options configures a Model.
type Options struct {
	// State is the kernel state, owned by the model once handed over.
	State *kernel.State

	// Dispatch hands commands to the executor. Required.
	Dispatch func(...kernel.Command)

	// Messages carries worker results back from the executor's Deliver
	// callback. Required.
	Messages <-chan kernel.Message

	// DefaultOutputDir seeds the save prompt. Empty means the current
	// working directory.
	DefaultOutputDir string

	// Theme and Keys default to DefaultTheme / DefaultKeyMap when zero.
	Theme *Theme
	Keys  *KeyMap
}

// Model is the top-level bubbletea model for the entry editor.
type Model struct {
	state    *kernel.State
	dispatch func(...kernel.Command)
	messages <-chan kernel.Message

	theme Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	focus FocusRegion
	modal modalKind

	title      textinput.Model
	body       textarea.Model
	modalInput textinput.Model
	picker     filepicker.Model
	preview    viewport.Model

	showPreview bool

	attachmentCursor int
	keywordCursor    int
	fieldCursor      int
	dateCursor       dateSegment

	// fieldValueIndex is the field being value-edited in
	// modalFieldValue.
	fieldValueIndex int

	// requestedThumbnails tracks in-flight decode commands so a path
	// is never dispatched twice before its result lands.
	requestedThumbnails map[string]bool

	defaultOutputDir string
	colorProfile     termenv.Profile
}

// NewModel creates the editor model.
func NewModel(options Options) Model {
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}

	title := textinput.New()
	title.Placeholder = "Entry title"
	title.CharLimit = 0
	title.Focus()

	body := textarea.New()
	body.Placeholder = "Write the entry body in markdown..."
	body.CharLimit = 0

	modalInput := textinput.New()
	modalInput.CharLimit = 0

	return Model{
		state:               options.State,
		dispatch:            options.Dispatch,
		messages:            options.Messages,
		theme:               theme,
		keys:                keys,
		title:               title,
		body:                body,
		modalInput:          modalInput,
		requestedThumbnails: make(map[string]bool),
		defaultOutputDir:    options.DefaultOutputDir,
		colorProfile:        termenv.ColorProfile(),
	}
}

// Init implements tea.Model.
func (model Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForKernelMessage(model.messages))
}

// listenForKernelMessage blocks until a worker result arrives, then
// delivers it into the bubbletea loop.
func listenForKernelMessage(messages <-chan kernel.Message) tea.Cmd {
	return func() tea.Msg {
		message, ok := <-messages
		if !ok {
			return nil
		}
		return kernelMessageMsg{message: message}
	}
}

// apply runs one message through the kernel and dispatches whatever
// commands it produces.
func (model *Model) apply(message kernel.Message) {
	commands := kernel.Update(model.state, message)
	if len(commands) > 0 {
		model.state.CommandsDispatched(len(commands))
		model.dispatch(commands...)
	}
	model.requestMissingThumbnails()
	model.clampCursors()
}

// applyWorker is apply for messages that settle a dispatched command.
func (model *Model) applyWorker(message kernel.Message) {
	model.state.MessageReceived()
	model.apply(message)
}

// requestMissingThumbnails asks for a decode of every image attachment
// that has no cached art, no recorded failure, and no request in
// flight.
func (model *Model) requestMissingThumbnails() {
	for _, item := range model.state.Attachments.Items() {
		path := item.SourcePath
		if !thumbnail.Supported(path) || model.requestedThumbnails[path] {
			continue
		}
		if _, cached := model.state.Attachments.ThumbnailArt(path); cached {
			continue
		}
		if model.state.Attachments.ThumbnailFailed(path) {
			continue
		}
		model.requestedThumbnails[path] = true
		commands := kernel.Update(model.state, kernel.RequestThumbnail{Path: path})
		if len(commands) > 0 {
			model.state.CommandsDispatched(len(commands))
			model.dispatch(commands...)
		}
	}
}

func (model *Model) clampCursors() {
	model.attachmentCursor = clampCursor(model.attachmentCursor, model.state.Attachments.Len())
	model.keywordCursor = clampCursor(model.keywordCursor, len(model.state.Keywords.List()))
	model.fieldCursor = clampCursor(model.fieldCursor, len(model.state.Fields.List()))
}

func clampCursor(cursor, length int) int {
	if cursor >= length {
		cursor = length - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.resizeWidgets()
		return model, nil

	case kernelMessageMsg:
		return model.handleWorkerMessage(message.message)

	case importResultMsg:
		model.apply(message.message)
		return model, nil

	case tea.KeyMsg:
		return model.handleKey(message)
	}

	// Everything else (blink ticks, filepicker internals) goes to the
	// active widget.
	return model.updateActiveWidget(message)
}

// handleWorkerMessage routes one executor result. ThumbnailDecoded is
// intercepted here because converting pixels to cell art needs the
// terminal's color profile, which the kernel must not know about.
func (model Model) handleWorkerMessage(message kernel.Message) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case kernel.ThumbnailDecoded:
		model.state.MessageReceived()
		delete(model.requestedThumbnails, message.Path)
		model.apply(kernel.ThumbnailReady{
			Path: message.Path,
			Art:  CellArt(message.Image, model.colorProfile),
		})
	case kernel.ThumbnailFailed:
		delete(model.requestedThumbnails, message.Path)
		model.applyWorker(message)
	default:
		model.applyWorker(message)
	}
	return model, listenForKernelMessage(model.messages)
}

func (model *Model) resizeWidgets() {
	paneWidth := model.width/2 - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	bodyHeight := model.height - 12
	if bodyHeight < 5 {
		bodyHeight = 5
	}
	model.title.Width = paneWidth
	model.body.SetWidth(paneWidth)
	model.body.SetHeight(bodyHeight)
	model.preview = viewport.New(paneWidth, bodyHeight)
	model.picker.Height = model.height - 8
}

// handleKey routes keyboard input by modal, then widget focus, then
// pane bindings.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(message, model.keys.Quit) {
		return model, tea.Quit
	}

	// The error modal eats everything until dismissed.
	if model.state.Err != "" {
		if message.Type == tea.KeyEnter || message.Type == tea.KeyEsc {
			model.apply(kernel.DismissError{})
		}
		return model, nil
	}

	if model.modal != modalNone {
		return model.handleModalKey(message)
	}

	switch {
	case key.Matches(message, model.keys.Save):
		return model.openSavePrompt()
	case key.Matches(message, model.keys.TogglePreview):
		model.showPreview = !model.showPreview
		model.refreshPreview()
		return model, nil
	case key.Matches(message, model.keys.ToggleFormat):
		model.apply(kernel.BodyFormatChanged{Format: nextFormat(model.state.BodyFormat)})
		return model, nil
	case key.Matches(message, model.keys.ToggleGenre):
		model.apply(kernel.GenreChanged{Genre: nextGenre(model.state.Genre)})
		return model, nil
	case key.Matches(message, model.keys.NextPane):
		model.cycleFocus(1)
		return model, nil
	case key.Matches(message, model.keys.PreviousPane):
		model.cycleFocus(-1)
		return model, nil
	}

	switch model.focus {
	case FocusTitle:
		var command tea.Cmd
		model.title, command = model.title.Update(message)
		model.apply(kernel.TitleChanged{Title: model.title.Value()})
		return model, command
	case FocusBody:
		var command tea.Cmd
		model.body, command = model.body.Update(message)
		model.apply(kernel.BodyChanged{Body: model.body.Value()})
		model.refreshPreview()
		return model, command
	case FocusAttachments:
		return model.handleAttachmentKeys(message)
	case FocusKeywords:
		return model.handleKeywordKeys(message)
	case FocusFields:
		return model.handleFieldKeys(message)
	case FocusDateTime:
		return model.handleDateTimeKeys(message)
	}
	return model, nil
}

func (model *Model) cycleFocus(direction int) {
	current := 0
	for index, region := range focusOrder {
		if region == model.focus {
			current = index
			break
		}
	}
	next := (current + direction + len(focusOrder)) % len(focusOrder)
	model.focus = focusOrder[next]

	if model.focus == FocusTitle {
		model.title.Focus()
	} else {
		model.title.Blur()
	}
	if model.focus == FocusBody {
		model.body.Focus()
	} else {
		model.body.Blur()
	}
}

func (model Model) handleAttachmentKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.attachmentCursor = clampCursor(model.attachmentCursor-1, model.state.Attachments.Len())
	case key.Matches(message, model.keys.Down):
		model.attachmentCursor = clampCursor(model.attachmentCursor+1, model.state.Attachments.Len())
	case key.Matches(message, model.keys.AddFiles):
		return model.openFilePicker(modalFilePicker)
	case key.Matches(message, model.keys.Remove):
		model.apply(kernel.RemoveAttachment{Index: model.attachmentCursor})
	case key.Matches(message, model.keys.Rename):
		if model.state.Attachments.Len() > 0 {
			model.apply(kernel.StartAttachmentRename{Index: model.attachmentCursor})
			if _, buffer := model.state.Attachments.Editing(); buffer != "" {
				model.openModalInput(modalRename, buffer, "New filename")
			}
		}
	}
	return model, nil
}

func (model Model) handleKeywordKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	keywords := model.state.Keywords.List()
	switch {
	case key.Matches(message, model.keys.Up):
		model.keywordCursor = clampCursor(model.keywordCursor-1, len(keywords))
	case key.Matches(message, model.keys.Down):
		model.keywordCursor = clampCursor(model.keywordCursor+1, len(keywords))
	case key.Matches(message, model.keys.AddKeyword):
		model.apply(kernel.OpenKeywordModal{})
		model.openModalInput(modalKeywordAdd, "", "keyword, another keyword")
	case key.Matches(message, model.keys.Edit):
		if len(keywords) > 0 {
			model.apply(kernel.StartKeywordEdit{Index: model.keywordCursor})
			model.openModalInput(modalKeywordEdit, keywords[model.keywordCursor], "Keyword")
		}
	case key.Matches(message, model.keys.Remove):
		model.apply(kernel.RemoveKeyword{Index: model.keywordCursor})
	}
	return model, nil
}

func (model Model) handleFieldKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := model.state.Fields.List()
	switch {
	case key.Matches(message, model.keys.Up):
		model.fieldCursor = clampCursor(model.fieldCursor-1, len(fields))
	case key.Matches(message, model.keys.Down):
		model.fieldCursor = clampCursor(model.fieldCursor+1, len(fields))
	case key.Matches(message, model.keys.ImportFields):
		return model.openFilePicker(modalImportPicker)
	case key.Matches(message, model.keys.AddField):
		model.apply(kernel.StartAddField{})
		model.openModalInput(modalFieldDraft, "", "Field label")
	case key.Matches(message, model.keys.Remove):
		model.apply(kernel.RemoveField{Index: model.fieldCursor})
	default:
		if message.Type == tea.KeyEnter && len(fields) > 0 {
			model.fieldValueIndex = model.fieldCursor
			model.openModalInput(modalFieldValue, fields[model.fieldCursor].Value, "Value")
		}
	}
	return model, nil
}

func (model Model) handleDateTimeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyLeft:
		if model.dateCursor > segmentYear {
			model.dateCursor--
		}
	case message.Type == tea.KeyRight:
		if model.dateCursor < segmentMinute {
			model.dateCursor++
		}
	case key.Matches(message, model.keys.Up):
		model.adjustDateSegment(1)
	case key.Matches(message, model.keys.Down):
		model.adjustDateSegment(-1)
	case key.Matches(message, model.keys.Now):
		model.apply(kernel.SetDateTimeNow{})
	}
	return model, nil
}

func (model *Model) adjustDateSegment(delta int) {
	picker := model.state.DateTime
	switch model.dateCursor {
	case segmentYear:
		model.apply(kernel.SetDate{Year: picker.Year + delta, Month: picker.Month, Day: picker.Day})
	case segmentMonth:
		month := int(picker.Month) + delta
		if month < 1 {
			month = 12
		}
		if month > 12 {
			month = 1
		}
		model.apply(kernel.SetDate{Year: picker.Year, Month: time.Month(month), Day: picker.Day})
	case segmentDay:
		day := picker.Day + delta
		if day < 1 {
			day = 31
		}
		if day > 31 {
			day = 1
		}
		model.apply(kernel.SetDate{Year: picker.Year, Month: picker.Month, Day: day})
	case segmentHour:
		model.apply(kernel.SetHour{Hour: (picker.Hour + delta + 24) % 24})
	case segmentMinute:
		model.apply(kernel.SetMinute{Minute: (picker.Minute + delta + 60) % 60})
	}
}

// --- Modals ---

func (model *Model) openModalInput(kind modalKind, value, placeholder string) {
	model.modal = kind
	model.modalInput.SetValue(value)
	model.modalInput.Placeholder = placeholder
	model.modalInput.CursorEnd()
	model.modalInput.Focus()
}

func (model *Model) closeModal() {
	model.modal = modalNone
	model.modalInput.Blur()
	model.modalInput.SetValue("")
}

func (model Model) openSavePrompt() (tea.Model, tea.Cmd) {
	suggested := archive.SuggestedName(model.state.Title)
	if model.defaultOutputDir != "" {
		suggested = filepath.Join(model.defaultOutputDir, suggested)
	}
	model.openModalInput(modalSavePrompt, suggested, "output path")
	return model, nil
}

func (model Model) openFilePicker(kind modalKind) (tea.Model, tea.Cmd) {
	picker := filepicker.New()
	picker.CurrentDirectory, _ = os.Getwd()
	picker.Height = model.height - 8
	if kind == modalImportPicker {
		picker.AllowedTypes = []string{".json", ".yaml", ".yml"}
	}
	model.picker = picker
	model.modal = kind
	return model, model.picker.Init()
}

func (model Model) handleModalKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if model.modal == modalFilePicker || model.modal == modalImportPicker {
		return model.handlePickerKey(message)
	}

	if message.Type == tea.KeyEsc {
		switch model.modal {
		case modalSavePrompt:
			model.apply(kernel.SaveCancelled{})
		case modalKeywordAdd:
			model.apply(kernel.CloseKeywordModal{})
		case modalKeywordEdit:
			model.apply(kernel.CancelKeywordEdit{})
		case modalRename:
			model.apply(kernel.CancelAttachmentRename{})
		case modalFieldDraft:
			model.apply(kernel.CancelFieldModal{})
		}
		model.closeModal()
		return model, nil
	}

	if message.Type == tea.KeyEnter {
		return model.commitModal()
	}

	var command tea.Cmd
	model.modalInput, command = model.modalInput.Update(message)
	switch model.modal {
	case modalKeywordAdd:
		model.apply(kernel.KeywordInputChanged{Text: model.modalInput.Value()})
	case modalKeywordEdit:
		model.apply(kernel.KeywordEditChanged{Text: model.modalInput.Value()})
	case modalRename:
		model.apply(kernel.AttachmentRenameChanged{Text: model.modalInput.Value()})
	case modalFieldDraft:
		model.apply(kernel.DraftLabelChanged{Label: model.modalInput.Value()})
	}
	return model, command
}

func (model Model) commitModal() (tea.Model, tea.Cmd) {
	switch model.modal {
	case modalSavePrompt:
		path := archive.EnsureExtension(model.modalInput.Value(), archive.Extension)
		model.apply(kernel.SaveRequested{OutputPath: path})
		if model.state.Err == "" {
			model.closeModal()
		} else {
			// Validation failed; keep the prompt so the path survives
			// the error modal.
			model.modal = modalSavePrompt
		}
	case modalKeywordAdd:
		model.apply(kernel.AddKeywords{})
		if !model.state.Keywords.ModalOpen() {
			model.closeModal()
		}
	case modalKeywordEdit:
		model.apply(kernel.CommitKeywordEdit{})
		if index, _ := model.state.Keywords.Editing(); index < 0 {
			model.closeModal()
		}
	case modalRename:
		model.apply(kernel.CommitAttachmentRename{})
		if index, _ := model.state.Attachments.Editing(); index < 0 {
			model.closeModal()
		}
	case modalFieldDraft:
		model.apply(kernel.CommitFieldModal{})
		if !model.state.Fields.DraftOpen() {
			model.closeModal()
		}
	case modalFieldValue:
		model.apply(kernel.FieldValueChanged{Index: model.fieldValueIndex, Value: model.modalInput.Value()})
		model.closeModal()
	}
	return model, nil
}

func (model Model) handlePickerKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyEsc {
		kind := model.modal
		model.closeModal()
		if kind == modalImportPicker {
			model.apply(kernel.FieldsImportCancelled{})
		}
		return model, nil
	}

	var command tea.Cmd
	model.picker, command = model.picker.Update(message)
	if selected, path := model.picker.DidSelectFile(message); selected {
		kind := model.modal
		model.closeModal()
		if kind == modalImportPicker {
			return model, tea.Batch(command, func() tea.Msg {
				return importResultMsg{message: executor.ImportMetadataFile(path)}
			})
		}
		model.apply(kernel.FilesPicked{Paths: []string{path}})
	}
	return model, command
}

// updateActiveWidget forwards non-key messages (cursor blinks,
// filepicker filesystem reads) to whichever widget needs them.
func (model Model) updateActiveWidget(message tea.Msg) (tea.Model, tea.Cmd) {
	var commands []tea.Cmd
	var command tea.Cmd

	if model.modal == modalFilePicker || model.modal == modalImportPicker {
		model.picker, command = model.picker.Update(message)
		commands = append(commands, command)
	}

	model.title, command = model.title.Update(message)
	commands = append(commands, command)
	model.body, command = model.body.Update(message)
	commands = append(commands, command)
	model.modalInput, command = model.modalInput.Update(message)
	commands = append(commands, command)

	return model, tea.Batch(commands...)
}

func nextFormat(format archive.BodyFormat) archive.BodyFormat {
	if format == archive.BodyHTML {
		return archive.BodyMarkdown
	}
	return archive.BodyHTML
}

func nextGenre(genre rocrate.Genre) rocrate.Genre {
	if genre == rocrate.GenreExperiment {
		return rocrate.GenreResource
	}
	return rocrate.GenreExperiment
}

// fieldProblemText maps a validation reason to the short inline note
// shown next to a field value.
func fieldProblemText(field extrafields.Field) string {
	switch extrafields.Validate(field) {
	case "":
		return ""
	case extrafields.ReasonRequired:
		return "required"
	case extrafields.ReasonInvalidURL:
		return "invalid URL"
	case extrafields.ReasonInvalidNumber:
		return "invalid number"
	case extrafields.ReasonInvalidInteger:
		return "invalid ID"
	default:
		return "invalid"
	}
}
