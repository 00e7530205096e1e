// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"errors"

	"github.com/elnforge/elnforge/lib/attachment"
)

// Attachments is the attachment panel's slice of state: the registry
// plus the thumbnail cache and the inline rename editor.
type Attachments struct {
	registry *attachment.Registry

	// thumbnailArt caches finished cell art keyed by source path.
	thumbnailArt map[string]string

	// thumbnailFailures marks paths that failed to decode so the shell
	// stops requesting them.
	thumbnailFailures map[string]bool

	editingIndex  int // -1 when no rename is active
	editingBuffer string
}

func newAttachments() Attachments {
	return Attachments{
		registry:          attachment.NewRegistry(),
		thumbnailArt:      make(map[string]string),
		thumbnailFailures: make(map[string]bool),
		editingIndex:      -1,
	}
}

// Items returns the registered attachments in order.
func (attachments *Attachments) Items() []attachment.Attachment {
	return attachments.registry.Items()
}

// Len returns the number of registered attachments.
func (attachments *Attachments) Len() int {
	return attachments.registry.Len()
}

// ThumbnailArt returns cached cell art for a source path.
func (attachments *Attachments) ThumbnailArt(path string) (string, bool) {
	art, ok := attachments.thumbnailArt[path]
	return art, ok
}

// ThumbnailFailed reports whether decoding already failed for a path.
func (attachments *Attachments) ThumbnailFailed(path string) bool {
	return attachments.thumbnailFailures[path]
}

// Editing returns the active rename target (-1 when idle) and buffer.
func (attachments *Attachments) Editing() (int, string) {
	return attachments.editingIndex, attachments.editingBuffer
}

// register adds a hashed candidate and reports whether it was stored.
func (attachments *Attachments) register(path, sha256, mimeType string, size int64) bool {
	_, err := attachments.registry.Register(path, sha256, mimeType, size)
	return err == nil
}

// remove deletes the attachment at index along with its cached
// thumbnail state.
func (attachments *Attachments) remove(index int) bool {
	removed, ok := attachments.registry.Remove(index)
	if !ok {
		return false
	}
	delete(attachments.thumbnailArt, removed.SourcePath)
	delete(attachments.thumbnailFailures, removed.SourcePath)
	if attachments.editingIndex == index {
		attachments.editingIndex = -1
		attachments.editingBuffer = ""
	}
	return true
}

// commitRename applies the pending edit. The returned message is empty
// on success.
func (attachments *Attachments) commitRename() (message string, isError bool) {
	if attachments.editingIndex < 0 {
		return "", false
	}

	err := attachments.registry.Rename(attachments.editingIndex, attachments.editingBuffer)
	switch {
	case err == nil:
		attachments.editingIndex = -1
		attachments.editingBuffer = ""
		return "", false
	case errors.Is(err, attachment.ErrEmptyName):
		return "Filename cannot be empty.", true
	case errors.Is(err, attachment.ErrDuplicateName):
		return "Another attachment already uses this filename in the archive.", true
	default:
		return err.Error(), true
	}
}

func (attachments *Attachments) cancelRename() {
	attachments.editingIndex = -1
	attachments.editingBuffer = ""
}

func (attachments *Attachments) startRename(index int) {
	if item, ok := attachments.registry.At(index); ok {
		attachments.editingIndex = index
		attachments.editingBuffer = item.SanitizedName
	}
}
