// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"

	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/binhash"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/markdown"
	"github.com/elnforge/elnforge/lib/rocrate"
	"github.com/elnforge/elnforge/lib/sanitize"
)

// Extension is the archive file extension, without the dot.
const Extension = "eln"

// BodyFormat selects how the entry body is stored in the metadata.
type BodyFormat string

const (
	// BodyHTML converts the markdown body to sanitized HTML.
	BodyHTML BodyFormat = "html"

	// BodyMarkdown stores the body source verbatim.
	BodyMarkdown BodyFormat = "markdown"
)

// IntegrityError reports an attachment whose bytes on disk no longer
// match the digest captured at registration time.
type IntegrityError struct {
	Path     string
	Expected string
	Found    string
}

func (err *IntegrityError) Error() string {
	return fmt.Sprintf("attachment modified since it was added:\n  %s\n  expected sha256 %s\n  found sha256 %s",
		err.Path, err.Expected, err.Found)
}

// Request is a complete, detached description of one archive build.
// It carries values only; nothing in it is shared with live editor
// state, so the build can run on a worker without coordination.
type Request struct {
	OutputPath string

	Title       string
	Body        string
	BodyFormat  BodyFormat
	MathEnabled bool

	Attachments []attachment.Attachment
	Fields      []extrafields.Field
	Groups      []extrafields.Group

	PerformedAt time.Time
	Genre       rocrate.Genre
	Keywords    []string

	Organization rocrate.Organization
}

// SuggestedName derives a safe default archive filename from the entry
// title: sanitized, lowercased, with the .eln extension.
func SuggestedName(title string) string {
	base := strings.ToLower(sanitize.Component(title))
	if base == "" {
		base = sanitize.Fallback
	}
	return base + "." + Extension
}

// EnsureExtension forces extension onto path unless it already carries
// it (case-insensitive).
func EnsureExtension(path, extension string) string {
	current := strings.TrimPrefix(filepath.Ext(path), ".")
	if strings.EqualFold(current, extension) {
		return path
	}
	if current != "" {
		path = strings.TrimSuffix(path, "."+current)
	}
	return path + "." + extension
}

// BuildAndWrite packages the request into a ZIP archive at
// request.OutputPath.
//
// Layout: a root folder named after the sanitized output stem holds
// experiment/ with every attachment under its sanitized name, plus
// ro-crate-metadata.json describing the whole. The request is gated
// up front: attachment names must be unique and every metadata field
// must validate. Before any attachment is written its on-disk bytes
// are re-hashed and compared against the digest captured at
// registration; a mismatch aborts the build with an *IntegrityError.
//
// The archive streams into a temporary file next to the target and is
// renamed into place only after the ZIP finalizes, so a failed build
// never leaves a truncated archive at the output path.
func BuildAndWrite(request Request) error {
	parent := filepath.Dir(request.OutputPath)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", parent, err)
	}

	if err := attachment.AssertUniqueNames(request.Attachments); err != nil {
		return err
	}
	if problems := extrafields.ValidateAll(request.Fields); len(problems) > 0 {
		return fmt.Errorf("invalid metadata fields: %s", strings.Join(problems, "; "))
	}

	stem := strings.TrimSuffix(filepath.Base(request.OutputPath), filepath.Ext(request.OutputPath))
	rootFolder := sanitize.Component(stem)
	rootPrefix := rootFolder + "/"
	experimentDir := rootPrefix + "experiment/"

	temporary, err := os.CreateTemp(parent, ".elnforge-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary archive in %s: %w", parent, err)
	}
	defer func() {
		temporary.Close()
		os.Remove(temporary.Name())
	}()

	writer := zip.NewWriter(temporary)
	writer.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	now := time.Now()
	for _, directory := range []string{rootPrefix, experimentDir} {
		if _, err := writer.CreateHeader(&zip.FileHeader{Name: directory, Modified: now}); err != nil {
			return fmt.Errorf("creating archive directory %s: %w", directory, err)
		}
	}

	fileEntries := make([]rocrate.FileEntry, 0, len(request.Attachments))
	for _, att := range request.Attachments {
		if err := copyAttachment(writer, experimentDir, att, now); err != nil {
			return err
		}
		fileEntries = append(fileEntries, rocrate.FileEntry{
			Name:           att.SanitizedName,
			EncodingFormat: att.MIME,
			SizeBytes:      att.SizeBytes,
			SHA256:         att.ContentHash,
		})
	}

	bodyText, encodingFormat, err := renderBody(request)
	if err != nil {
		return err
	}

	metadata, err := rocrate.Build(rocrate.Entry{
		Title:          request.Title,
		BodyText:       bodyText,
		EncodingFormat: encodingFormat,
		PerformedAt:    request.PerformedAt,
		Genre:          request.Genre,
		Keywords:       request.Keywords,
		Files:          fileEntries,
		Fields:         request.Fields,
		Groups:         request.Groups,
	}, request.Organization)
	if err != nil {
		return err
	}

	metadataFile, err := writer.CreateHeader(&zip.FileHeader{
		Name:     rootPrefix + "ro-crate-metadata.json",
		Method:   zip.Deflate,
		Modified: now,
	})
	if err != nil {
		return fmt.Errorf("creating metadata file in archive: %w", err)
	}
	if _, err := metadataFile.Write(metadata); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing temporary archive: %w", err)
	}
	if err := os.Rename(temporary.Name(), request.OutputPath); err != nil {
		return fmt.Errorf("moving archive to %s: %w", request.OutputPath, err)
	}
	return nil
}

// copyAttachment re-hashes the source file, verifies it against the
// registered digest, and streams it into the archive.
func copyAttachment(writer *zip.Writer, experimentDir string, att attachment.Attachment, modified time.Time) error {
	if binhash.IsReal(att.ContentHash) {
		if _, err := binhash.ParseDigest(att.ContentHash); err != nil {
			return fmt.Errorf("attachment %s carries a malformed digest: %w", att.SourcePath, err)
		}
		currentHash, err := binhash.HashFile(att.SourcePath)
		if err != nil {
			return fmt.Errorf("rehashing attachment %s: %w", att.SourcePath, err)
		}
		if currentHash != att.ContentHash {
			return &IntegrityError{
				Path:     att.SourcePath,
				Expected: att.ContentHash,
				Found:    currentHash,
			}
		}
	}

	archivePath := experimentDir + att.SanitizedName
	destination, err := writer.CreateHeader(&zip.FileHeader{
		Name:     archivePath,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("adding %s to archive: %w", archivePath, err)
	}

	source, err := os.Open(att.SourcePath)
	if err != nil {
		return fmt.Errorf("reading attachment %s: %w", att.SourcePath, err)
	}
	defer source.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("writing %s into archive: %w", archivePath, err)
	}
	return nil
}

func renderBody(request Request) (bodyText, encodingFormat string, err error) {
	switch request.BodyFormat {
	case BodyMarkdown:
		return request.Body, "text/markdown", nil
	default:
		converted, err := markdown.NewConverter(request.MathEnabled).ToHTML(request.Body)
		if err != nil {
			return "", "", err
		}
		return converted, "text/html", nil
	}
}
