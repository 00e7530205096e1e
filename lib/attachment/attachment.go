// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package attachment

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Attachment is one file bound into the package. The source file on
// disk remains externally owned; the record captures its identity
// (content hash), its archive-relative name, and best-effort metadata
// at registration time.
type Attachment struct {
	// SourcePath is the absolute path of the original file on disk.
	SourcePath string

	// SanitizedName is the archive-relative filename, unique within
	// one package.
	SanitizedName string

	// MIME is the best-effort detected content type.
	MIME string

	// ContentHash is the SHA256 hex digest of the file contents, or
	// binhash.SentinelUnavailable when hashing failed.
	ContentHash string

	// SizeBytes is the file size observed at registration time.
	SizeBytes int64
}

// DetectMIME returns the content type of the file at path. Detection
// sniffs the file contents first; when the file cannot be read it
// falls back to the extension, and finally to application/octet-stream.
// The returned value is the bare media type without parameters.
func DetectMIME(path string) string {
	if detected, err := mimetype.DetectFile(path); err == nil {
		return essence(detected.String())
	}
	if byExtension := mime.TypeByExtension(filepath.Ext(path)); byExtension != "" {
		return essence(byExtension)
	}
	return "application/octet-stream"
}

// essence strips media type parameters ("text/plain; charset=utf-8"
// becomes "text/plain").
func essence(mediaType string) string {
	if index := strings.IndexByte(mediaType, ';'); index >= 0 {
		mediaType = mediaType[:index]
	}
	return strings.TrimSpace(mediaType)
}

// AssertUniqueNames verifies that no two attachments share a sanitized
// name. The packaging engine calls this on the detached save payload
// as a final gate even though the registry enforces the same invariant
// at insertion time.
func AssertUniqueNames(attachments []Attachment) error {
	seen := make(map[string]bool, len(attachments))
	for _, att := range attachments {
		if seen[att.SanitizedName] {
			return fmt.Errorf("duplicate attachment filename in archive: %s", att.SanitizedName)
		}
		seen[att.SanitizedName] = true
	}
	return nil
}

// FormatBytes renders a byte count with binary-scaled units for
// display ("1.5 MB"). Exact byte counts below 1024 are shown as-is.
func FormatBytes(bytes int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}
