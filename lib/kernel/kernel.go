// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"fmt"
	"strings"

	"github.com/elnforge/elnforge/lib/archive"
	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/clock"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/rocrate"
)

// State is the complete editor state. It is mutated only by Update on
// the interactive goroutine; workers communicate exclusively through
// Messages, so no field needs a lock.
type State struct {
	Title      string
	Body       string
	Genre      rocrate.Genre
	BodyFormat archive.BodyFormat

	Attachments Attachments
	Keywords    Keywords
	DateTime    DateTime
	Fields      Fields

	// Status is the last transient status line; Err is non-empty while
	// the error modal should show. Both empty means nothing to report.
	Status string
	Err    string

	// pendingCommands counts dispatched commands whose result message
	// has not come back yet. The shell uses it to keep its spinner up.
	pendingCommands int

	clock clock.Clock
}

// NewState returns a fresh entry timestamped from the given clock.
func NewState(timeSource clock.Clock) *State {
	return &State{
		Genre:       rocrate.GenreExperiment,
		BodyFormat:  archive.BodyHTML,
		Attachments: newAttachments(),
		Keywords:    newKeywords(),
		DateTime:    newDateTime(timeSource.Now()),
		Fields:      newFields(),
		clock:       timeSource,
	}
}

// PendingCommands returns the number of in-flight commands.
func (state *State) PendingCommands() int { return state.pendingCommands }

// CommandsDispatched records n commands handed to the executor.
func (state *State) CommandsDispatched(n int) {
	state.pendingCommands += n
}

// MessageReceived records one worker result, saturating at zero so a
// stray message cannot drive the counter negative.
func (state *State) MessageReceived() {
	if state.pendingCommands > 0 {
		state.pendingCommands--
	}
}

// surface records a status line, flagging it as a modal error when
// isError is set.
func (state *State) surface(message string, isError bool) {
	state.Status = message
	if isError {
		state.Err = message
	} else {
		state.Err = ""
	}
}

// Update applies one message and returns the commands it wants
// executed. It never blocks and never touches the filesystem.
func Update(state *State, message Message) []Command {
	switch message := message.(type) {

	// Entry-level edits.
	case TitleChanged:
		state.Title = message.Title
	case BodyChanged:
		state.Body = message.Body
	case GenreChanged:
		state.Genre = message.Genre
	case BodyFormatChanged:
		state.BodyFormat = message.Format
	case DismissError:
		state.Err = ""

	// Save flow.
	case SaveRequested:
		payload, problem := state.validateForSave(message.OutputPath)
		if problem != "" {
			state.surface(problem, true)
			return nil
		}
		state.surface("Saving archive...", false)
		return []Command{SaveArchive{Payload: payload}}
	case SaveCancelled:
		state.surface("Save cancelled.", false)
	case SaveCompleted:
		if message.Err != "" {
			state.surface(fmt.Sprintf("Failed to save archive:\n\n%s", message.Err), true)
		} else {
			state.surface(fmt.Sprintf("Archive saved: %s", message.Path), false)
		}

	// Attachment flow.
	case PickFilesRequested:
		return []Command{PickFiles{}}
	case FilesPicked:
		if len(message.Paths) == 0 {
			return nil
		}
		state.surface("Processing attachments...", false)
		commands := make([]Command, 0, len(message.Paths))
		for _, path := range message.Paths {
			commands = append(commands, HashFile{Path: path})
		}
		return commands
	case FileHashed:
		if state.Attachments.register(message.Path, message.SHA256, message.MIME, message.Size) {
			state.surface("Attachment added", false)
		} else {
			state.surface("Attachment skipped (duplicate or invalid)", false)
		}
	case RemoveAttachment:
		if state.Attachments.remove(message.Index) {
			state.surface("Attachment removed", false)
		}
	case StartAttachmentRename:
		state.Attachments.startRename(message.Index)
	case AttachmentRenameChanged:
		if state.Attachments.editingIndex >= 0 {
			state.Attachments.editingBuffer = message.Text
		}
	case CommitAttachmentRename:
		if problem, isError := state.Attachments.commitRename(); problem != "" {
			state.surface(problem, isError)
		}
	case CancelAttachmentRename:
		state.Attachments.cancelRename()

	// Thumbnail flow.
	case RequestThumbnail:
		if _, cached := state.Attachments.ThumbnailArt(message.Path); cached {
			return nil
		}
		if state.Attachments.ThumbnailFailed(message.Path) {
			return nil
		}
		return []Command{LoadThumbnail{Path: message.Path}}
	case ThumbnailDecoded:
		// Handled by the shell, which owns the terminal color profile.
	case ThumbnailReady:
		state.Attachments.thumbnailArt[message.Path] = message.Art
	case ThumbnailFailed:
		state.Attachments.thumbnailFailures[message.Path] = true

	// Keyword flow.
	case OpenKeywordModal:
		state.Keywords.modalOpen = true
		state.Keywords.modalInput = ""
	case CloseKeywordModal:
		state.Keywords.modalOpen = false
		state.Keywords.modalInput = ""
	case KeywordInputChanged:
		state.Keywords.modalInput = message.Text
	case AddKeywords:
		result, _ := state.Keywords.addFromModal()
		state.surface(result, false)
	case StartKeywordEdit:
		if message.Index >= 0 && message.Index < len(state.Keywords.keywords) {
			state.Keywords.editingIndex = message.Index
			state.Keywords.editingBuffer = state.Keywords.keywords[message.Index]
		}
	case KeywordEditChanged:
		if state.Keywords.editingIndex >= 0 {
			state.Keywords.editingBuffer = message.Text
		}
	case CommitKeywordEdit:
		if problem, isError := state.Keywords.commitEdit(); problem != "" {
			state.surface(problem, isError)
		}
	case CancelKeywordEdit:
		state.Keywords.editingIndex = -1
		state.Keywords.editingBuffer = ""
	case RemoveKeyword:
		if state.Keywords.remove(message.Index) {
			state.surface("Keyword removed", false)
		}

	// Date/time flow.
	case SetDate:
		state.DateTime.setDate(message.Year, message.Month, message.Day)
	case SetHour:
		state.DateTime.setHour(message.Hour)
	case SetMinute:
		state.DateTime.setMinute(message.Minute)
	case SetDateTimeNow:
		state.DateTime = newDateTime(state.clock.Now())

	// Structured field flow.
	case ImportFieldsRequested:
		return []Command{PickMetadataFile{}}
	case FieldsImported:
		state.Fields.replace(message.Fields, message.Groups, message.Source)
		state.surface(fmt.Sprintf("Imported %d field(s).", len(message.Fields)), false)
	case FieldsImportFailed:
		state.surface(fmt.Sprintf("Failed to read metadata file:\n\n%s", message.Reason), true)
	case FieldsImportCancelled:
		state.surface("Import cancelled.", false)
	case FieldValueChanged:
		state.Fields.setValue(message.Index, message.Value)
	case RemoveField:
		if state.Fields.remove(message.Index) {
			state.surface("Field removed", false)
		}
	case StartAddField:
		state.Fields.startDraft(message.GroupID)
	case DraftLabelChanged:
		state.Fields.draftLabel = message.Label
	case DraftKindChanged:
		state.Fields.draftKind = message.Kind
	case CommitFieldModal:
		if problem, isError := state.Fields.commitDraft(); problem != "" {
			state.surface(problem, isError)
		}
	case CancelFieldModal:
		state.Fields.cancelDraft()
	}
	return nil
}

// validateForSave checks the entry end to end and, when everything
// passes, snapshots it into a detached payload. The returned problem
// string is empty on success and names the first failure otherwise.
func (state *State) validateForSave(outputPath string) (SavePayload, string) {
	title := strings.TrimSpace(state.Title)
	if title == "" {
		return SavePayload{}, "Please enter a title."
	}

	performedAt, err := state.DateTime.Resolve()
	if err != nil {
		return SavePayload{}, fmt.Sprintf("Invalid date/time: %s", err)
	}

	fields := state.Fields.List()
	for _, field := range fields {
		switch extrafields.Validate(field) {
		case "":
		case extrafields.ReasonRequired:
			return SavePayload{}, fmt.Sprintf("Field '%s' is required.", field.Label)
		case extrafields.ReasonInvalidURL:
			return SavePayload{}, fmt.Sprintf("Field '%s' must be a valid http/https URL.", field.Label)
		case extrafields.ReasonInvalidNumber:
			return SavePayload{}, fmt.Sprintf("Field '%s' must be a valid number.", field.Label)
		case extrafields.ReasonInvalidInteger:
			return SavePayload{}, fmt.Sprintf("Field '%s' must be a valid integer ID.", field.Label)
		default:
			return SavePayload{}, fmt.Sprintf("Field '%s' is invalid.", field.Label)
		}
	}

	items := state.Attachments.Items()
	if problem := duplicateNameProblem(items); problem != "" {
		return SavePayload{}, problem
	}

	return SavePayload{
		OutputPath:  outputPath,
		Title:       title,
		Body:        state.Body,
		BodyFormat:  state.BodyFormat,
		Attachments: items,
		Fields:      fields,
		Groups:      state.Fields.Groups(),
		PerformedAt: performedAt,
		Genre:       state.Genre,
		Keywords:    NormalizeKeywords(state.Keywords.List()),
	}, ""
}

// duplicateNameProblem re-checks the attachment name invariant on the
// save snapshot. The registry enforces it on every mutation, so this
// is a final assertion before the payload detaches from live state.
func duplicateNameProblem(items []attachment.Attachment) string {
	if err := attachment.AssertUniqueNames(items); err != nil {
		return err.Error()
	}
	return ""
}
