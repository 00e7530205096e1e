// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"fmt"
	"strings"
)

// Keywords is the keyword panel state: the list plus the add-modal and
// inline editor buffers. Keywords are unique case-insensitively; the
// first-entered casing wins.
type Keywords struct {
	keywords []string

	modalOpen  bool
	modalInput string

	editingIndex  int // -1 when no edit is active
	editingBuffer string
}

func newKeywords() Keywords {
	return Keywords{editingIndex: -1}
}

// List returns the keywords in entry order.
func (keywords *Keywords) List() []string {
	return append([]string(nil), keywords.keywords...)
}

// ModalOpen reports whether the add prompt is showing.
func (keywords *Keywords) ModalOpen() bool { return keywords.modalOpen }

// ModalInput returns the add prompt's buffer.
func (keywords *Keywords) ModalInput() string { return keywords.modalInput }

// Editing returns the active edit target (-1 when idle) and buffer.
func (keywords *Keywords) Editing() (int, string) {
	return keywords.editingIndex, keywords.editingBuffer
}

func (keywords *Keywords) contains(candidate string, excludeIndex int) bool {
	for index, existing := range keywords.keywords {
		if index == excludeIndex {
			continue
		}
		if strings.EqualFold(existing, candidate) {
			return true
		}
	}
	return false
}

// addFromModal splits the modal input on commas and appends the unique
// non-empty parts. Returns the status line and whether anything was
// added; the modal closes only when at least one keyword landed.
func (keywords *Keywords) addFromModal() (message string, addedAny bool) {
	var added, duplicates, empties int
	for _, part := range strings.Split(keywords.modalInput, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			empties++
			continue
		}
		if keywords.contains(trimmed, -1) {
			duplicates++
			continue
		}
		keywords.keywords = append(keywords.keywords, trimmed)
		added++
	}

	var skipped []string
	if duplicates > 0 {
		skipped = append(skipped, fmt.Sprintf("%d duplicate(s)", duplicates))
	}
	if empties > 0 {
		skipped = append(skipped, fmt.Sprintf("%d empty entry/entries", empties))
	}

	switch {
	case added > 0 && len(skipped) > 0:
		message = fmt.Sprintf("Added %d keyword(s); skipped %s.", added, strings.Join(skipped, " and "))
	case added > 0:
		message = fmt.Sprintf("Added %d keyword(s).", added)
	default:
		message = "No keywords added; skipped duplicates or empty entries."
	}

	if added > 0 {
		keywords.modalOpen = false
		keywords.modalInput = ""
	}
	return message, added > 0
}

// commitEdit applies the pending inline edit. The returned message is
// empty on success.
func (keywords *Keywords) commitEdit() (message string, isError bool) {
	if keywords.editingIndex < 0 {
		return "", false
	}

	trimmed := strings.TrimSpace(keywords.editingBuffer)
	if trimmed == "" {
		return "Keyword cannot be empty.", true
	}
	if keywords.contains(trimmed, keywords.editingIndex) {
		return "Keyword already exists.", true
	}

	keywords.keywords[keywords.editingIndex] = trimmed
	keywords.editingIndex = -1
	keywords.editingBuffer = ""
	return "", false
}

func (keywords *Keywords) remove(index int) bool {
	if index < 0 || index >= len(keywords.keywords) {
		return false
	}
	keywords.keywords = append(keywords.keywords[:index], keywords.keywords[index+1:]...)
	if keywords.editingIndex == index {
		keywords.editingIndex = -1
		keywords.editingBuffer = ""
	}
	return true
}

// NormalizeKeywords trims, drops empties, and deduplicates
// case-insensitively, keeping the first casing seen. Save payloads run
// the keyword list through this as a final normalization.
func NormalizeKeywords(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, keyword := range raw {
		trimmed := strings.TrimSpace(keyword)
		if trimmed == "" {
			continue
		}
		lowered := strings.ToLower(trimmed)
		if seen[lowered] {
			continue
		}
		seen[lowered] = true
		normalized = append(normalized, trimmed)
	}
	return normalized
}
