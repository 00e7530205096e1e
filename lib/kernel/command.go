// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"time"

	"github.com/elnforge/elnforge/lib/archive"
	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/rocrate"
)

// Command is a side effect Update wants executed off the interactive
// thread. Commands carry values only; executing one produces exactly
// one Message back.
type Command interface {
	isCommand()
}

// PickFiles opens the attachment file picker.
type PickFiles struct{}

// PickMetadataFile opens the picker for an eLabFTW metadata JSON or
// YAML template.
type PickMetadataFile struct{}

// HashFile digests one candidate attachment and gathers its metadata.
type HashFile struct{ Path string }

// LoadThumbnail decodes one attachment image at preview size.
type LoadThumbnail struct{ Path string }

// SaveArchive builds and writes the package described by Payload.
type SaveArchive struct{ Payload SavePayload }

func (PickFiles) isCommand()        {}
func (PickMetadataFile) isCommand() {}
func (HashFile) isCommand()         {}
func (LoadThumbnail) isCommand()    {}
func (SaveArchive) isCommand()      {}

// SavePayload is the validated, detached snapshot of everything a save
// needs. Once built it shares nothing with live state, so the build
// can run on a worker while the user keeps editing.
type SavePayload struct {
	OutputPath string

	Title      string
	Body       string
	BodyFormat archive.BodyFormat

	Attachments []attachment.Attachment
	Fields      []extrafields.Field
	Groups      []extrafields.Group

	PerformedAt time.Time
	Genre       rocrate.Genre
	Keywords    []string
}
