// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"strings"

	"github.com/elnforge/elnforge/lib/extrafields"
)

// Fields is the structured-metadata panel state: the imported field
// set plus the new-field draft modal.
type Fields struct {
	fields []extrafields.Field
	groups []extrafields.Group

	// source is the path the current set was imported from, empty for
	// hand-added fields.
	source string

	draftOpen    bool
	draftLabel   string
	draftKind    extrafields.Kind
	draftGroupID *int
}

func newFields() Fields {
	return Fields{draftKind: extrafields.KindText}
}

// List returns the fields in display order.
func (fields *Fields) List() []extrafields.Field {
	return append([]extrafields.Field(nil), fields.fields...)
}

// Groups returns the imported group definitions.
func (fields *Fields) Groups() []extrafields.Group {
	return append([]extrafields.Group(nil), fields.groups...)
}

// Source returns the path of the last import, if any.
func (fields *Fields) Source() string { return fields.source }

// DraftOpen reports whether the new-field modal is showing.
func (fields *Fields) DraftOpen() bool { return fields.draftOpen }

// Draft returns the modal's label and kind buffers.
func (fields *Fields) Draft() (string, extrafields.Kind) {
	return fields.draftLabel, fields.draftKind
}

func (fields *Fields) replace(imported []extrafields.Field, groups []extrafields.Group, source string) {
	fields.fields = imported
	fields.groups = groups
	fields.source = source
}

func (fields *Fields) setValue(index int, value string) bool {
	if index < 0 || index >= len(fields.fields) {
		return false
	}
	fields.fields[index].Value = value
	return true
}

func (fields *Fields) remove(index int) bool {
	if index < 0 || index >= len(fields.fields) {
		return false
	}
	fields.fields = append(fields.fields[:index], fields.fields[index+1:]...)
	return true
}

func (fields *Fields) startDraft(groupID *int) {
	fields.draftOpen = true
	fields.draftLabel = ""
	fields.draftKind = extrafields.KindText
	fields.draftGroupID = groupID
}

// commitDraft appends the drafted field. The returned message is empty
// on success.
func (fields *Fields) commitDraft() (message string, isError bool) {
	if !fields.draftOpen {
		return "", false
	}

	label := strings.TrimSpace(fields.draftLabel)
	if label == "" {
		return "Field label cannot be empty.", true
	}
	for _, existing := range fields.fields {
		if strings.EqualFold(existing.Label, label) {
			return "A field with this label already exists.", true
		}
	}

	fields.fields = append(fields.fields, extrafields.Field{
		Label:   label,
		Kind:    fields.draftKind,
		GroupID: fields.draftGroupID,
	})
	fields.cancelDraft()
	return "", false
}

func (fields *Fields) cancelDraft() {
	fields.draftOpen = false
	fields.draftLabel = ""
	fields.draftKind = extrafields.KindText
	fields.draftGroupID = nil
}
