// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"image"
	"time"

	"github.com/elnforge/elnforge/lib/archive"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/rocrate"
)

// Message is a fact delivered to Update: user input translated by the
// shell, or a worker result. The set is sealed so Update can switch
// exhaustively.
type Message interface {
	isMessage()
}

// --- Entry-level messages ---

// TitleChanged carries the edited entry title.
type TitleChanged struct{ Title string }

// BodyChanged carries the edited markdown body.
type BodyChanged struct{ Body string }

// GenreChanged selects the metadata genre.
type GenreChanged struct{ Genre rocrate.Genre }

// BodyFormatChanged selects how the body is stored in the archive.
type BodyFormatChanged struct{ Format archive.BodyFormat }

// DismissError clears the error modal.
type DismissError struct{}

// --- Save flow ---

// SaveRequested asks for a save to the chosen output path. Update
// validates the whole entry and either enqueues a SaveArchive command
// or surfaces the first problem.
type SaveRequested struct{ OutputPath string }

// SaveCancelled reports that the user backed out of the path prompt.
type SaveCancelled struct{}

// SaveCompleted is the worker's terminal report for one save. Err is
// empty on success.
type SaveCompleted struct {
	Path string
	Err  string
}

// --- Attachment flow ---

// PickFilesRequested asks for the file picker.
type PickFilesRequested struct{}

// FilesPicked delivers the chosen paths; Update fans out one HashFile
// command per path.
type FilesPicked struct{ Paths []string }

// FileHashed is a worker result carrying everything needed to register
// an attachment. SHA256 is the sentinel when hashing failed.
type FileHashed struct {
	Path   string
	SHA256 string
	MIME   string
	Size   int64
}

// RemoveAttachment deletes the attachment at Index.
type RemoveAttachment struct{ Index int }

// StartAttachmentRename begins inline editing of a filename.
type StartAttachmentRename struct{ Index int }

// AttachmentRenameChanged carries the edit buffer.
type AttachmentRenameChanged struct{ Text string }

// CommitAttachmentRename applies the pending rename.
type CommitAttachmentRename struct{}

// CancelAttachmentRename abandons the pending rename.
type CancelAttachmentRename struct{}

// --- Thumbnail flow ---

// RequestThumbnail asks for a preview of an attachment image.
type RequestThumbnail struct{ Path string }

// ThumbnailDecoded is the worker's half of the thumbnail handoff:
// decoded pixels that still need conversion to terminal cell art. The
// shell intercepts this, renders with the terminal's color profile,
// and feeds ThumbnailReady back in. Update treats it as a no-op so a
// stray delivery cannot corrupt state.
type ThumbnailDecoded struct {
	Path  string
	Image *image.NRGBA
}

// ThumbnailReady caches finished cell art for an attachment.
type ThumbnailReady struct {
	Path string
	Art  string
}

// ThumbnailFailed marks a path as undecodable so it is not retried
// every frame.
type ThumbnailFailed struct{ Path string }

// --- Keyword flow ---

// OpenKeywordModal opens the add-keywords prompt with a cleared input.
type OpenKeywordModal struct{}

// CloseKeywordModal closes the prompt without adding.
type CloseKeywordModal struct{}

// KeywordInputChanged carries the modal input buffer.
type KeywordInputChanged struct{ Text string }

// AddKeywords splits the modal input on commas and adds unique
// entries.
type AddKeywords struct{}

// StartKeywordEdit begins inline editing of an existing keyword.
type StartKeywordEdit struct{ Index int }

// KeywordEditChanged carries the keyword edit buffer.
type KeywordEditChanged struct{ Text string }

// CommitKeywordEdit applies the pending keyword edit.
type CommitKeywordEdit struct{}

// CancelKeywordEdit abandons the pending keyword edit.
type CancelKeywordEdit struct{}

// RemoveKeyword deletes the keyword at Index.
type RemoveKeyword struct{ Index int }

// --- Date/time flow ---

// SetDate sets the performed-at calendar date.
type SetDate struct {
	Year  int
	Month time.Month
	Day   int
}

// SetHour sets the performed-at hour, clamped to 0-23.
type SetHour struct{ Hour int }

// SetMinute sets the performed-at minute, clamped to 0-59.
type SetMinute struct{ Minute int }

// SetDateTimeNow resets the picker to the current local time.
type SetDateTimeNow struct{}

// --- Structured field flow ---

// ImportFieldsRequested asks for the metadata file picker.
type ImportFieldsRequested struct{}

// FieldsImported replaces the field set with a parsed import.
type FieldsImported struct {
	Fields []extrafields.Field
	Groups []extrafields.Group
	Source string
}

// FieldsImportFailed surfaces a parse or read failure.
type FieldsImportFailed struct{ Reason string }

// FieldsImportCancelled reports a dismissed picker.
type FieldsImportCancelled struct{}

// FieldValueChanged edits the value of the field at Index.
type FieldValueChanged struct {
	Index int
	Value string
}

// RemoveField deletes the field at Index.
type RemoveField struct{ Index int }

// StartAddField opens the new-field modal, optionally pre-assigned to
// a group.
type StartAddField struct{ GroupID *int }

// DraftLabelChanged edits the new-field label.
type DraftLabelChanged struct{ Label string }

// DraftKindChanged edits the new-field kind.
type DraftKindChanged struct{ Kind extrafields.Kind }

// CommitFieldModal appends the drafted field.
type CommitFieldModal struct{}

// CancelFieldModal abandons the draft.
type CancelFieldModal struct{}

func (TitleChanged) isMessage()            {}
func (BodyChanged) isMessage()             {}
func (GenreChanged) isMessage()            {}
func (BodyFormatChanged) isMessage()       {}
func (DismissError) isMessage()            {}
func (SaveRequested) isMessage()           {}
func (SaveCancelled) isMessage()           {}
func (SaveCompleted) isMessage()           {}
func (PickFilesRequested) isMessage()      {}
func (FilesPicked) isMessage()             {}
func (FileHashed) isMessage()              {}
func (RemoveAttachment) isMessage()        {}
func (StartAttachmentRename) isMessage()   {}
func (AttachmentRenameChanged) isMessage() {}
func (CommitAttachmentRename) isMessage()  {}
func (CancelAttachmentRename) isMessage()  {}
func (RequestThumbnail) isMessage()        {}
func (ThumbnailDecoded) isMessage()        {}
func (ThumbnailReady) isMessage()          {}
func (ThumbnailFailed) isMessage()         {}
func (OpenKeywordModal) isMessage()        {}
func (CloseKeywordModal) isMessage()       {}
func (KeywordInputChanged) isMessage()     {}
func (AddKeywords) isMessage()             {}
func (StartKeywordEdit) isMessage()        {}
func (KeywordEditChanged) isMessage()      {}
func (CommitKeywordEdit) isMessage()       {}
func (CancelKeywordEdit) isMessage()       {}
func (RemoveKeyword) isMessage()           {}
func (SetDate) isMessage()                 {}
func (SetHour) isMessage()                 {}
func (SetMinute) isMessage()               {}
func (SetDateTimeNow) isMessage()          {}
func (ImportFieldsRequested) isMessage()   {}
func (FieldsImported) isMessage()          {}
func (FieldsImportFailed) isMessage()      {}
func (FieldsImportCancelled) isMessage()   {}
func (FieldValueChanged) isMessage()       {}
func (RemoveField) isMessage()             {}
func (StartAddField) isMessage()           {}
func (DraftLabelChanged) isMessage()       {}
func (DraftKindChanged) isMessage()        {}
func (CommitFieldModal) isMessage()        {}
func (CancelFieldModal) isMessage()        {}
