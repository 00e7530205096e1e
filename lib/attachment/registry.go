// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/elnforge/elnforge/lib/binhash"
	"github.com/elnforge/elnforge/lib/sanitize"
)

// Registration failure reasons. The update kernel maps these to
// user-facing status text; the packaging engine never sees them
// because rejected candidates are not stored.
var (
	// ErrDuplicateName means another attachment already claims the
	// candidate's sanitized name.
	ErrDuplicateName = errors.New("an attachment with this filename already exists in the archive")

	// ErrDuplicateContent means a byte-identical file (same content
	// hash) is already registered.
	ErrDuplicateContent = errors.New("a file with identical content is already attached")

	// ErrEmptyName means a rename produced an empty filename.
	ErrEmptyName = errors.New("filename cannot be empty")
)

// Registry is the in-memory attachment collection for one entry. It
// enforces the two package-wide uniqueness invariants at insertion
// time: no two attachments share a sanitized name, and no two
// attachments with real content hashes share a hash.
//
// The registry is owned by single-threaded kernel state. Workers never
// touch it; they communicate by value through messages.
type Registry struct {
	items  []Attachment
	hashes map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{hashes: make(map[string]bool)}
}

// Register inserts a candidate attachment built from the given file
// metadata. The sanitized name is derived from the path's basename.
// Returns the stored attachment, or ErrDuplicateName /
// ErrDuplicateContent when the candidate collides with the live
// registry. A candidate with the sentinel hash skips the content
// check entirely.
func (registry *Registry) Register(sourcePath, contentHash, mimeType string, sizeBytes int64) (Attachment, error) {
	baseName := filepath.Base(sourcePath)
	if baseName == "." || baseName == string(filepath.Separator) {
		baseName = fmt.Sprintf("attachment-%d.bin", len(registry.items)+1)
	}
	sanitizedName := sanitize.Component(baseName)

	if registry.nameTaken(sanitizedName, -1) {
		return Attachment{}, fmt.Errorf("%s: %w", sanitizedName, ErrDuplicateName)
	}
	if binhash.IsReal(contentHash) && registry.hashes[contentHash] {
		return Attachment{}, fmt.Errorf("%s: %w", baseName, ErrDuplicateContent)
	}

	att := Attachment{
		SourcePath:    sourcePath,
		SanitizedName: sanitizedName,
		MIME:          mimeType,
		ContentHash:   contentHash,
		SizeBytes:     sizeBytes,
	}
	if binhash.IsReal(contentHash) {
		registry.hashes[contentHash] = true
	}
	registry.items = append(registry.items, att)
	return att, nil
}

// Remove deletes the attachment at index and frees its content hash
// so a re-added identical file is treated as new. Returns the removed
// attachment and true, or false when index is out of range.
func (registry *Registry) Remove(index int) (Attachment, bool) {
	if index < 0 || index >= len(registry.items) {
		return Attachment{}, false
	}
	removed := registry.items[index]
	if binhash.IsReal(removed.ContentHash) {
		delete(registry.hashes, removed.ContentHash)
	}
	registry.items = append(registry.items[:index], registry.items[index+1:]...)
	return removed, true
}

// Rename re-sanitizes the proposed name for the attachment at index
// and commits it. Rejects out-of-range indices, names that sanitize to
// nothing the user typed (empty input), and collisions with any other
// attachment's current sanitized name.
func (registry *Registry) Rename(index int, proposed string) error {
	if index < 0 || index >= len(registry.items) {
		return fmt.Errorf("attachment index %d out of range", index)
	}

	trimmed := strings.TrimSpace(proposed)
	if trimmed == "" {
		return ErrEmptyName
	}

	sanitizedName := sanitize.Component(trimmed)
	if registry.nameTaken(sanitizedName, index) {
		return fmt.Errorf("%s: %w", sanitizedName, ErrDuplicateName)
	}

	registry.items[index].SanitizedName = sanitizedName
	return nil
}

// Items returns the attachments in registration order. The returned
// slice is a copy; mutating it does not affect the registry. This is
// what save-payload snapshots are built from.
func (registry *Registry) Items() []Attachment {
	items := make([]Attachment, len(registry.items))
	copy(items, registry.items)
	return items
}

// At returns the attachment at index, or false when out of range.
func (registry *Registry) At(index int) (Attachment, bool) {
	if index < 0 || index >= len(registry.items) {
		return Attachment{}, false
	}
	return registry.items[index], true
}

// Len returns the number of registered attachments.
func (registry *Registry) Len() int {
	return len(registry.items)
}

func (registry *Registry) nameTaken(sanitizedName string, excludeIndex int) bool {
	for index, item := range registry.items {
		if index == excludeIndex {
			continue
		}
		if item.SanitizedName == sanitizedName {
			return true
		}
	}
	return false
}
