// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"strings"
	"testing"
	"time"

	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/clock"
	"github.com/elnforge/elnforge/lib/extrafields"
)

var testInstant = time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

func newTestState() *State {
	return NewState(clock.Fixed(testInstant))
}

func TestSaveRequestEnqueuesArchiveCommand(t *testing.T) {
	state := newTestState()
	Update(state, TitleChanged{Title: "Buffer exchange"})
	Update(state, BodyChanged{Body: "Exchanged into PBS."})
	Update(state, SetDate{Year: 2026, Month: time.January, Day: 5})
	Update(state, SetHour{Hour: 14})
	Update(state, SetMinute{Minute: 30})

	commands := Update(state, SaveRequested{OutputPath: "/tmp/out.eln"})
	if len(commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(commands))
	}
	save, ok := commands[0].(SaveArchive)
	if !ok {
		t.Fatalf("command = %T, want SaveArchive", commands[0])
	}
	if save.Payload.Title != "Buffer exchange" {
		t.Errorf("payload title = %q", save.Payload.Title)
	}
	if save.Payload.OutputPath != "/tmp/out.eln" {
		t.Errorf("payload output = %q", save.Payload.OutputPath)
	}
	if state.Err != "" {
		t.Errorf("unexpected error: %q", state.Err)
	}

	local := time.Date(2026, time.January, 5, 14, 30, 0, 0, time.Local)
	if !save.Payload.PerformedAt.Equal(local.UTC()) {
		t.Errorf("performedAt = %v, want %v", save.Payload.PerformedAt, local.UTC())
	}
}

func TestSaveValidationRejectsDuplicateAttachmentNames(t *testing.T) {
	// The registry cannot be driven into this state through messages,
	// so the gate is exercised directly on a crafted snapshot.
	items := []attachment.Attachment{
		{SanitizedName: "gel.png"},
		{SanitizedName: "gel.png"},
	}
	problem := duplicateNameProblem(items)
	if problem == "" {
		t.Fatal("duplicate sanitized names accepted")
	}
	if !strings.Contains(problem, "gel.png") {
		t.Errorf("problem %q does not name the offending file", problem)
	}
	if got := duplicateNameProblem(items[:1]); got != "" {
		t.Errorf("unique names rejected: %q", got)
	}
}

func TestSaveRequestWithEmptyTitleSetsError(t *testing.T) {
	state := newTestState()
	Update(state, TitleChanged{Title: "   "})

	commands := Update(state, SaveRequested{OutputPath: "/tmp/out.eln"})
	if len(commands) != 0 {
		t.Fatalf("commands = %d, want 0", len(commands))
	}
	if state.Err != "Please enter a title." {
		t.Errorf("error = %q", state.Err)
	}
}

func TestSaveRequestRejectsImpossibleDate(t *testing.T) {
	state := newTestState()
	Update(state, TitleChanged{Title: "Entry"})
	Update(state, SetDate{Year: 2026, Month: time.February, Day: 30})

	commands := Update(state, SaveRequested{OutputPath: "/tmp/out.eln"})
	if len(commands) != 0 {
		t.Fatalf("commands = %d, want 0", len(commands))
	}
	if !strings.HasPrefix(state.Err, "Invalid date/time:") {
		t.Errorf("error = %q", state.Err)
	}
}

func TestSaveLifecycleStatusLines(t *testing.T) {
	state := newTestState()

	Update(state, SaveCancelled{})
	if state.Status != "Save cancelled." {
		t.Errorf("status = %q", state.Status)
	}

	Update(state, SaveCompleted{Path: "/tmp/out.eln"})
	if state.Status != "Archive saved: /tmp/out.eln" {
		t.Errorf("status = %q", state.Status)
	}
	if state.Err != "" {
		t.Errorf("unexpected error: %q", state.Err)
	}

	Update(state, SaveCompleted{Path: "/tmp/out.eln", Err: "disk full"})
	if state.Err != "Failed to save archive:\n\ndisk full" {
		t.Errorf("error = %q", state.Err)
	}
}

func TestFieldValidationMessages(t *testing.T) {
	tests := []struct {
		name    string
		field   extrafields.Field
		problem string
	}{
		{
			name:    "required empty",
			field:   extrafields.Field{Label: "Sample", Kind: extrafields.KindText, Required: true},
			problem: "Field 'Sample' is required.",
		},
		{
			name:    "bad url",
			field:   extrafields.Field{Label: "Protocol", Kind: extrafields.KindURL, Value: "ftp://example.org"},
			problem: "Field 'Protocol' must be a valid http/https URL.",
		},
		{
			name:    "bad number",
			field:   extrafields.Field{Label: "Mass", Kind: extrafields.KindNumber, Value: "abc"},
			problem: "Field 'Mass' must be a valid number.",
		},
		{
			name:    "bad integer reference",
			field:   extrafields.Field{Label: "Plasmid", Kind: extrafields.KindItems, Value: "4.2"},
			problem: "Field 'Plasmid' must be a valid integer ID.",
		},
		{
			name:    "bad email",
			field:   extrafields.Field{Label: "Contact", Kind: extrafields.KindEmail, Value: "nobody"},
			problem: "Field 'Contact' is invalid.",
		},
		{
			name:  "valid url",
			field: extrafields.Field{Label: "Protocol", Kind: extrafields.KindURL, Value: "https://example.org/p/12"},
		},
		{
			name:  "valid number",
			field: extrafields.Field{Label: "Mass", Kind: extrafields.KindNumber, Value: "1.540562"},
		},
		{
			name:  "optional empty passes",
			field: extrafields.Field{Label: "Notes", Kind: extrafields.KindURL},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			state := newTestState()
			Update(state, TitleChanged{Title: "Entry"})
			Update(state, FieldsImported{Fields: []extrafields.Field{test.field}})

			commands := Update(state, SaveRequested{OutputPath: "/tmp/out.eln"})
			if test.problem == "" {
				if len(commands) != 1 {
					t.Fatalf("commands = %d, want 1 (err %q)", len(commands), state.Err)
				}
				return
			}
			if len(commands) != 0 {
				t.Fatalf("commands = %d, want 0", len(commands))
			}
			if state.Err != test.problem {
				t.Errorf("error = %q, want %q", state.Err, test.problem)
			}
		})
	}
}

func TestFilesPickedFansOutHashCommands(t *testing.T) {
	state := newTestState()
	commands := Update(state, FilesPicked{Paths: []string{"/data/a.png", "/data/b.csv"}})
	if len(commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(commands))
	}
	for index, path := range []string{"/data/a.png", "/data/b.csv"} {
		hash, ok := commands[index].(HashFile)
		if !ok {
			t.Fatalf("command %d = %T, want HashFile", index, commands[index])
		}
		if hash.Path != path {
			t.Errorf("command %d path = %q, want %q", index, hash.Path, path)
		}
	}
	if state.Status != "Processing attachments..." {
		t.Errorf("status = %q", state.Status)
	}

	if commands := Update(state, FilesPicked{}); len(commands) != 0 {
		t.Errorf("empty pick produced %d commands", len(commands))
	}
}

func TestFileHashedDeduplicatesByContent(t *testing.T) {
	state := newTestState()

	Update(state, FileHashed{Path: "/data/a.png", SHA256: strings.Repeat("a", 64), MIME: "image/png", Size: 10})
	if state.Attachments.Len() != 1 {
		t.Fatalf("attachments = %d, want 1", state.Attachments.Len())
	}
	if state.Status != "Attachment added" {
		t.Errorf("status = %q", state.Status)
	}

	Update(state, FileHashed{Path: "/other/copy.png", SHA256: strings.Repeat("a", 64), MIME: "image/png", Size: 10})
	if state.Attachments.Len() != 1 {
		t.Fatalf("duplicate content registered, attachments = %d", state.Attachments.Len())
	}
	if state.Status != "Attachment skipped (duplicate or invalid)" {
		t.Errorf("status = %q", state.Status)
	}
}

func TestThumbnailRequestFlow(t *testing.T) {
	state := newTestState()

	commands := Update(state, RequestThumbnail{Path: "/data/a.png"})
	if len(commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(commands))
	}
	if _, ok := commands[0].(LoadThumbnail); !ok {
		t.Fatalf("command = %T, want LoadThumbnail", commands[0])
	}

	Update(state, ThumbnailReady{Path: "/data/a.png", Art: "▀▀"})
	if commands := Update(state, RequestThumbnail{Path: "/data/a.png"}); len(commands) != 0 {
		t.Errorf("cached path re-requested, commands = %d", len(commands))
	}

	Update(state, ThumbnailFailed{Path: "/data/b.png"})
	if commands := Update(state, RequestThumbnail{Path: "/data/b.png"}); len(commands) != 0 {
		t.Errorf("failed path re-requested, commands = %d", len(commands))
	}
}

func TestPendingCommandCounterSaturates(t *testing.T) {
	state := newTestState()

	state.CommandsDispatched(2)
	if state.PendingCommands() != 2 {
		t.Fatalf("pending = %d, want 2", state.PendingCommands())
	}
	state.MessageReceived()
	state.MessageReceived()
	state.MessageReceived()
	if state.PendingCommands() != 0 {
		t.Errorf("pending = %d, want 0 after saturation", state.PendingCommands())
	}
}

func TestAddKeywordsCountsSkips(t *testing.T) {
	state := newTestState()
	Update(state, OpenKeywordModal{})
	Update(state, KeywordInputChanged{Text: "pcr"})
	Update(state, AddKeywords{})
	if state.Status != "Added 1 keyword(s)." {
		t.Errorf("status = %q", state.Status)
	}
	if state.Keywords.ModalOpen() {
		t.Error("modal still open after successful add")
	}

	Update(state, OpenKeywordModal{})
	Update(state, KeywordInputChanged{Text: "PCR, gel, , gel"})
	Update(state, AddKeywords{})
	if state.Status != "Added 1 keyword(s); skipped 2 duplicate(s) and 1 empty entry/entries." {
		t.Errorf("status = %q", state.Status)
	}

	Update(state, OpenKeywordModal{})
	Update(state, KeywordInputChanged{Text: "pcr, "})
	Update(state, AddKeywords{})
	if state.Status != "No keywords added; skipped duplicates or empty entries." {
		t.Errorf("status = %q", state.Status)
	}
	if !state.Keywords.ModalOpen() {
		t.Error("modal closed although nothing was added")
	}

	want := []string{"pcr", "gel"}
	got := state.Keywords.List()
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Errorf("keyword %d = %q, want %q", index, got[index], want[index])
		}
	}
}

func TestKeywordEditAndRemove(t *testing.T) {
	state := newTestState()
	Update(state, OpenKeywordModal{})
	Update(state, KeywordInputChanged{Text: "pcr, gel"})
	Update(state, AddKeywords{})

	Update(state, StartKeywordEdit{Index: 1})
	Update(state, KeywordEditChanged{Text: "PCR"})
	Update(state, CommitKeywordEdit{})
	if state.Err != "Keyword already exists." {
		t.Errorf("error = %q", state.Err)
	}

	Update(state, KeywordEditChanged{Text: "  "})
	Update(state, CommitKeywordEdit{})
	if state.Err != "Keyword cannot be empty." {
		t.Errorf("error = %q", state.Err)
	}

	Update(state, KeywordEditChanged{Text: "electrophoresis"})
	Update(state, CommitKeywordEdit{})
	if got := state.Keywords.List(); got[1] != "electrophoresis" {
		t.Errorf("keyword = %q, want electrophoresis", got[1])
	}

	Update(state, RemoveKeyword{Index: 0})
	if state.Status != "Keyword removed" {
		t.Errorf("status = %q", state.Status)
	}
	if state.Keywords.List()[0] != "electrophoresis" {
		t.Errorf("remaining = %v", state.Keywords.List())
	}
}

func TestAttachmentRenameValidation(t *testing.T) {
	state := newTestState()
	Update(state, FileHashed{Path: "/data/a.png", SHA256: strings.Repeat("a", 64), MIME: "image/png", Size: 10})
	Update(state, FileHashed{Path: "/data/b.png", SHA256: strings.Repeat("b", 64), MIME: "image/png", Size: 12})

	Update(state, StartAttachmentRename{Index: 1})
	Update(state, AttachmentRenameChanged{Text: "a.png"})
	Update(state, CommitAttachmentRename{})
	if state.Err != "Another attachment already uses this filename in the archive." {
		t.Errorf("error = %q", state.Err)
	}

	Update(state, AttachmentRenameChanged{Text: "   "})
	Update(state, CommitAttachmentRename{})
	if state.Err != "Filename cannot be empty." {
		t.Errorf("error = %q", state.Err)
	}

	Update(state, AttachmentRenameChanged{Text: "gel scan.png"})
	Update(state, CommitAttachmentRename{})
	if index, _ := state.Attachments.Editing(); index != -1 {
		t.Errorf("rename still active, index = %d", index)
	}
	items := state.Attachments.Items()
	if items[1].SanitizedName != "gel_scan.png" {
		t.Errorf("renamed to %q", items[1].SanitizedName)
	}
}

func TestRemoveAttachmentClearsThumbnailCache(t *testing.T) {
	state := newTestState()
	Update(state, FileHashed{Path: "/data/a.png", SHA256: strings.Repeat("a", 64), MIME: "image/png", Size: 10})
	Update(state, ThumbnailReady{Path: "/data/a.png", Art: "▀▀"})

	Update(state, RemoveAttachment{Index: 0})
	if state.Attachments.Len() != 0 {
		t.Fatalf("attachments = %d, want 0", state.Attachments.Len())
	}
	if _, cached := state.Attachments.ThumbnailArt("/data/a.png"); cached {
		t.Error("thumbnail art survived removal")
	}
}

func TestFieldDraftModal(t *testing.T) {
	state := newTestState()

	Update(state, StartAddField{})
	Update(state, CommitFieldModal{})
	if state.Err != "Field label cannot be empty." {
		t.Errorf("error = %q", state.Err)
	}

	Update(state, DraftLabelChanged{Label: "Buffer"})
	Update(state, DraftKindChanged{Kind: extrafields.KindNumber})
	Update(state, CommitFieldModal{})
	fields := state.Fields.List()
	if len(fields) != 1 || fields[0].Label != "Buffer" || fields[0].Kind != extrafields.KindNumber {
		t.Fatalf("fields = %+v", fields)
	}

	Update(state, StartAddField{})
	Update(state, DraftLabelChanged{Label: "buffer"})
	Update(state, CommitFieldModal{})
	if state.Err != "A field with this label already exists." {
		t.Errorf("error = %q", state.Err)
	}
	Update(state, CancelFieldModal{})
	if state.Fields.DraftOpen() {
		t.Error("draft still open after cancel")
	}

	Update(state, FieldValueChanged{Index: 0, Value: "7.4"})
	if state.Fields.List()[0].Value != "7.4" {
		t.Errorf("value = %q", state.Fields.List()[0].Value)
	}
	Update(state, RemoveField{Index: 0})
	if len(state.Fields.List()) != 0 {
		t.Errorf("fields = %d, want 0", len(state.Fields.List()))
	}
}

func TestSetDateTimeNowUsesInjectedClock(t *testing.T) {
	state := newTestState()
	Update(state, SetDate{Year: 1999, Month: time.December, Day: 31})

	Update(state, SetDateTimeNow{})
	local := testInstant.Local()
	if state.DateTime.Year != local.Year() || state.DateTime.Month != local.Month() || state.DateTime.Day != local.Day() {
		t.Errorf("date = %04d-%02d-%02d", state.DateTime.Year, state.DateTime.Month, state.DateTime.Day)
	}
	if state.DateTime.Hour != local.Hour() || state.DateTime.Minute != local.Minute() {
		t.Errorf("time = %02d:%02d", state.DateTime.Hour, state.DateTime.Minute)
	}
}

func TestHourAndMinuteClamp(t *testing.T) {
	state := newTestState()
	Update(state, SetHour{Hour: 99})
	Update(state, SetMinute{Minute: -5})
	if state.DateTime.Hour != 23 {
		t.Errorf("hour = %d, want 23", state.DateTime.Hour)
	}
	if state.DateTime.Minute != 0 {
		t.Errorf("minute = %d, want 0", state.DateTime.Minute)
	}
}

func TestSavePayloadNormalizesKeywords(t *testing.T) {
	state := newTestState()
	Update(state, TitleChanged{Title: "Entry"})
	Update(state, OpenKeywordModal{})
	Update(state, KeywordInputChanged{Text: "PCR, gel"})
	Update(state, AddKeywords{})

	commands := Update(state, SaveRequested{OutputPath: "/tmp/out.eln"})
	if len(commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(commands))
	}
	payload := commands[0].(SaveArchive).Payload
	if len(payload.Keywords) != 2 || payload.Keywords[0] != "PCR" || payload.Keywords[1] != "gel" {
		t.Errorf("keywords = %v", payload.Keywords)
	}
}
