// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/elnforge/elnforge/lib/attachment"
	"github.com/elnforge/elnforge/lib/binhash"
	"github.com/elnforge/elnforge/lib/extrafields"
	"github.com/elnforge/elnforge/lib/rocrate"
)

func testRequest(t *testing.T, output string) Request {
	t.Helper()
	return Request{
		OutputPath:  output,
		Title:       "Buffer exchange",
		Body:        "# Protocol\n\nDialyzed **overnight** at 4°C.",
		BodyFormat:  BodyHTML,
		PerformedAt: time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC),
		Genre:       rocrate.GenreExperiment,
		Keywords:    []string{"dialysis"},
		Organization: rocrate.Organization{
			ID:   "https://elnforge.dev/#organization",
			Name: "elnforge",
			URL:  "https://github.com/elnforge/elnforge",
		},
	}
}

func addTestAttachment(t *testing.T, request *Request, directory, name, content string) attachment.Attachment {
	t.Helper()
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", path, err)
	}
	hash, err := binhash.HashFile(path)
	if err != nil {
		t.Fatalf("hashing fixture: %v", err)
	}
	att := attachment.Attachment{
		SourcePath:    path,
		SanitizedName: name,
		MIME:          "text/plain",
		ContentHash:   hash,
		SizeBytes:     int64(len(content)),
	}
	request.Attachments = append(request.Attachments, att)
	return att
}

func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()
	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	defer reader.Close()

	contents := make(map[string][]byte)
	for _, file := range reader.File {
		if strings.HasSuffix(file.Name, "/") {
			contents[file.Name] = nil
			continue
		}
		opened, err := file.Open()
		if err != nil {
			t.Fatalf("opening %s in archive: %v", file.Name, err)
		}
		data, err := io.ReadAll(opened)
		opened.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", file.Name, err)
		}
		contents[file.Name] = data
	}
	return contents
}

func TestBuildAndWriteLayout(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "Buffer Exchange.eln")
	request := testRequest(t, output)
	addTestAttachment(t, &request, directory, "gel.txt", "lane 1: marker\nlane 2: sample\n")

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}

	contents := readArchive(t, output)
	// Root folder is the sanitized output stem.
	for _, want := range []string{
		"Buffer_Exchange/",
		"Buffer_Exchange/experiment/",
		"Buffer_Exchange/experiment/gel.txt",
		"Buffer_Exchange/ro-crate-metadata.json",
	} {
		if _, ok := contents[want]; !ok {
			t.Errorf("archive missing %s; has %v", want, mapKeys(contents))
		}
	}

	if got := string(contents["Buffer_Exchange/experiment/gel.txt"]); got != "lane 1: marker\nlane 2: sample\n" {
		t.Errorf("attachment content = %q", got)
	}
}

func TestBuildAndWriteMetadata(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "entry.eln")
	request := testRequest(t, output)
	att := addTestAttachment(t, &request, directory, "notes.txt", "pH 7.4")

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}

	contents := readArchive(t, output)
	var document map[string]any
	if err := json.Unmarshal(contents["entry/ro-crate-metadata.json"], &document); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}

	graph := document["@graph"].([]any)
	var experiment, file map[string]any
	for _, raw := range graph {
		node := raw.(map[string]any)
		switch node["@id"] {
		case "./experiment/":
			experiment = node
		case "./experiment/notes.txt":
			file = node
		}
	}

	if experiment == nil {
		t.Fatal("experiment node missing")
	}
	if experiment["encodingFormat"] != "text/html" {
		t.Errorf("encodingFormat = %v", experiment["encodingFormat"])
	}
	body := experiment["text"].(string)
	if !strings.Contains(body, "<strong>overnight</strong>") {
		t.Errorf("body not converted to HTML: %q", body)
	}

	if file == nil {
		t.Fatal("file node missing")
	}
	if file["sha256"] != att.ContentHash {
		t.Errorf("file sha256 = %v, want %v", file["sha256"], att.ContentHash)
	}
	if file["contentSize"] != "6" {
		t.Errorf("contentSize = %v", file["contentSize"])
	}
}

func TestBuildAndWriteMarkdownBody(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "raw.eln")
	request := testRequest(t, output)
	request.BodyFormat = BodyMarkdown

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}

	contents := readArchive(t, output)
	var document map[string]any
	if err := json.Unmarshal(contents["raw/ro-crate-metadata.json"], &document); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	for _, raw := range document["@graph"].([]any) {
		node := raw.(map[string]any)
		if node["@id"] == "./experiment/" {
			if node["encodingFormat"] != "text/markdown" {
				t.Errorf("encodingFormat = %v", node["encodingFormat"])
			}
			if node["text"] != request.Body {
				t.Errorf("body altered: %q", node["text"])
			}
		}
	}
}

func TestBuildAndWriteIntegrityGate(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "tampered.eln")
	request := testRequest(t, output)
	att := addTestAttachment(t, &request, directory, "data.txt", "original bytes")

	// Modify the file after registration.
	if err := os.WriteFile(att.SourcePath, []byte("tampered bytes!"), 0o644); err != nil {
		t.Fatalf("tampering with fixture: %v", err)
	}

	err := BuildAndWrite(request)
	var integrityError *IntegrityError
	if !errors.As(err, &integrityError) {
		t.Fatalf("BuildAndWrite err = %v, want *IntegrityError", err)
	}
	if integrityError.Path != att.SourcePath {
		t.Errorf("error path = %q, want %q", integrityError.Path, att.SourcePath)
	}
	if integrityError.Expected != att.ContentHash || integrityError.Found == att.ContentHash {
		t.Errorf("digests not reported: expected %q found %q", integrityError.Expected, integrityError.Found)
	}

	// No partial archive may remain.
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("failed build left %s behind", output)
	}
}

func TestBuildAndWriteSentinelHashSkipsGate(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "sentinel.eln")
	request := testRequest(t, output)
	att := addTestAttachment(t, &request, directory, "volatile.txt", "first")
	request.Attachments[0].ContentHash = binhash.SentinelUnavailable

	// Changing the file is fine when no digest was captured.
	if err := os.WriteFile(att.SourcePath, []byte("second"), 0o644); err != nil {
		t.Fatalf("rewriting fixture: %v", err)
	}
	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}
}

func TestBuildAndWriteRejectsDuplicateNames(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "dup.eln")
	request := testRequest(t, output)
	addTestAttachment(t, &request, directory, "a.txt", "one")
	second := addTestAttachment(t, &request, directory, "b.txt", "two")
	request.Attachments[1] = attachment.Attachment{
		SourcePath:    second.SourcePath,
		SanitizedName: "a.txt",
		MIME:          second.MIME,
		ContentHash:   second.ContentHash,
		SizeBytes:     second.SizeBytes,
	}

	if err := BuildAndWrite(request); err == nil {
		t.Fatal("duplicate sanitized names accepted")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("failed build left %s behind", output)
	}
}

func TestBuildAndWriteRejectsMalformedDigest(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "bad-digest.eln")
	request := testRequest(t, output)
	addTestAttachment(t, &request, directory, "data.txt", "bytes")
	request.Attachments[0].ContentHash = "not-a-hex-digest"

	err := BuildAndWrite(request)
	if err == nil {
		t.Fatal("malformed digest accepted")
	}
	if !strings.Contains(err.Error(), "malformed digest") {
		t.Errorf("err = %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("failed build left %s behind", output)
	}
}

func TestBuildAndWriteRejectsInvalidFields(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "fields.eln")
	request := testRequest(t, output)
	request.Fields = []extrafields.Field{
		{Label: "Sample", Kind: extrafields.KindText, Required: true},
	}

	err := BuildAndWrite(request)
	if err == nil {
		t.Fatal("invalid field accepted")
	}
	if !strings.Contains(err.Error(), "Sample") {
		t.Errorf("err %v does not name the field", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("failed build left %s behind", output)
	}
}

func TestBuildAndWriteTwoAttachmentsIndependentDigests(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "pair.eln")
	request := testRequest(t, output)
	first := addTestAttachment(t, &request, directory, "gel.txt", "lane 1: marker")
	second := addTestAttachment(t, &request, directory, "notes.txt", "pH 7.4, room temp")

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}

	contents := readArchive(t, output)
	var document map[string]any
	if err := json.Unmarshal(contents["pair/ro-crate-metadata.json"], &document); err != nil {
		t.Fatalf("metadata: %v", err)
	}

	fileNodes := make(map[string]map[string]any)
	for _, raw := range document["@graph"].([]any) {
		node := raw.(map[string]any)
		id, _ := node["@id"].(string)
		if strings.HasPrefix(id, "./experiment/") && id != "./experiment/" {
			fileNodes[id] = node
		}
	}
	if len(fileNodes) != 2 {
		t.Fatalf("file nodes = %d, want 2", len(fileNodes))
	}

	// Each node's digest must match both the registered hash and a
	// fresh hash of the bytes actually stored in the archive.
	for _, att := range []attachment.Attachment{first, second} {
		node := fileNodes["./experiment/"+att.SanitizedName]
		if node == nil {
			t.Fatalf("no file node for %s", att.SanitizedName)
		}
		recomputed := sha256.Sum256(contents["pair/experiment/"+att.SanitizedName])
		if node["sha256"] != hex.EncodeToString(recomputed[:]) {
			t.Errorf("%s: metadata sha256 %v does not match archived bytes", att.SanitizedName, node["sha256"])
		}
		if node["sha256"] != att.ContentHash {
			t.Errorf("%s: metadata sha256 %v, registered %s", att.SanitizedName, node["sha256"], att.ContentHash)
		}
	}
}

func TestBuildAndWriteCreatesParentDirectories(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "nested", "deeper", "entry.eln")
	request := testRequest(t, output)

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("archive not written: %v", err)
	}
}

func TestSuggestedName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Ångström Study v1", "angstrom_study_v1.eln"},
		{"", "eln_entry.eln"},
		{"...", "eln_entry.eln"},
		{"Simple", "simple.eln"},
	}
	for _, test := range tests {
		if got := SuggestedName(test.title); got != test.want {
			t.Errorf("SuggestedName(%q) = %q, want %q", test.title, got, test.want)
		}
	}
}

func TestEnsureExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/report.ELN", "/tmp/report.ELN"},
		{"report.txt", "report.eln"},
		{"report", "report.eln"},
		{"archive.tar.gz", "archive.tar.eln"},
	}
	for _, test := range tests {
		if got := EnsureExtension(test.path, "eln"); got != test.want {
			t.Errorf("EnsureExtension(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}

func TestBuildAndWriteNoTemporaryFilesLeft(t *testing.T) {
	directory := t.TempDir()
	output := filepath.Join(directory, "clean.eln")
	request := testRequest(t, output)

	if err := BuildAndWrite(request); err != nil {
		t.Fatalf("BuildAndWrite: %v", err)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".elnforge-") {
			t.Errorf("temporary file left behind: %s", entry.Name())
		}
	}
}

func mapKeys(contents map[string][]byte) []string {
	keys := make([]string, 0, len(contents))
	for key := range contents {
		keys = append(keys, key)
	}
	return keys
}
