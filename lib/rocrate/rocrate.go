// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package rocrate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/elnforge/elnforge/lib/extrafields"
)

// Specification identifiers for the profile this package emits.
const (
	contextURI    = "https://w3id.org/ro/crate/1.2/context"
	conformsToURI = "https://w3id.org/ro/crate/1.2"

	// rootVersion is the schema version consumers use to detect the
	// archive layout.
	rootVersion = 103
)

// Genre categorizes the archived entry.
type Genre string

const (
	GenreExperiment Genre = "experiment"
	GenreResource   Genre = "resource"
)

// Organization identifies the publishing entity referenced from the
// metadata descriptor and the entry's author link.
type Organization struct {
	ID   string
	Name string
	URL  string
}

// FileEntry describes one archived attachment for its File node.
type FileEntry struct {
	// Name is the sanitized filename under the experiment directory.
	Name string

	// EncodingFormat is the detected MIME type.
	EncodingFormat string

	// SizeBytes is the attachment size.
	SizeBytes int64

	// SHA256 is the hex content digest, or the "unavailable" sentinel.
	SHA256 string
}

// Entry carries everything the metadata document describes.
type Entry struct {
	Title string

	// BodyText is the entry body, already converted to the shape
	// EncodingFormat announces (sanitized HTML or raw markdown).
	BodyText       string
	EncodingFormat string

	PerformedAt time.Time
	Genre       Genre
	Keywords    []string
	Files       []FileEntry

	Fields []extrafields.Field
	Groups []extrafields.Group
}

type reference struct {
	ID string `json:"@id"`
}

type descriptorNode struct {
	ID          string    `json:"@id"`
	Type        string    `json:"@type"`
	About       reference `json:"about"`
	ConformsTo  reference `json:"conformsTo"`
	DateCreated string    `json:"dateCreated"`
	SDPublisher reference `json:"sdPublisher"`
}

type rootNode struct {
	ID      string      `json:"@id"`
	Type    string      `json:"@type"`
	Name    string      `json:"name"`
	HasPart []reference `json:"hasPart"`
	Version int         `json:"version"`
}

type experimentNode struct {
	ID               string      `json:"@id"`
	Type             string      `json:"@type"`
	Name             string      `json:"name"`
	EncodingFormat   string      `json:"encodingFormat"`
	Text             string      `json:"text"`
	DateCreated      string      `json:"dateCreated"`
	DateModified     string      `json:"dateModified"`
	Author           reference   `json:"author"`
	Genre            string      `json:"genre"`
	Keywords         []string    `json:"keywords"`
	VariableMeasured []reference `json:"variableMeasured"`
	HasPart          []reference `json:"hasPart"`
}

type fileNode struct {
	ID             string `json:"@id"`
	Type           string `json:"@type"`
	Name           string `json:"name"`
	EncodingFormat string `json:"encodingFormat"`
	ContentSize    string `json:"contentSize"`
	SHA256         string `json:"sha256"`
}

type organizationNode struct {
	ID   string `json:"@id"`
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type propertyValueNode struct {
	ID             string `json:"@id"`
	Type           string `json:"@type"`
	PropertyID     string `json:"propertyID"`
	ValueReference string `json:"valueReference,omitempty"`
	Value          any    `json:"value"`
	UnitText       string `json:"unitText,omitempty"`
	Description    string `json:"description,omitempty"`
}

type document struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

// Build renders the ro-crate-metadata.json document for an entry,
// pretty-printed. The graph holds the metadata descriptor, the root
// dataset, the experiment dataset, the publishing organization, one
// File node per attachment, and PropertyValue nodes for structured
// fields plus the embedded eLabFTW metadata blob.
func Build(entry Entry, organization Organization) ([]byte, error) {
	timestamp := entry.PerformedAt.Format(time.RFC3339)

	fileNodes := make([]any, 0, len(entry.Files))
	fileRefs := make([]reference, 0, len(entry.Files))
	for _, file := range entry.Files {
		id := "./experiment/" + file.Name
		fileNodes = append(fileNodes, fileNode{
			ID:             id,
			Type:           "File",
			Name:           file.Name,
			EncodingFormat: file.EncodingFormat,
			ContentSize:    fmt.Sprintf("%d", file.SizeBytes),
			SHA256:         file.SHA256,
		})
		fileRefs = append(fileRefs, reference{ID: id})
	}

	propertyNodes, variableRefs, err := buildPropertyValues(entry.Fields, entry.Groups)
	if err != nil {
		return nil, err
	}

	keywords := entry.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	experiment := experimentNode{
		ID:               "./experiment/",
		Type:             "Dataset",
		Name:             entry.Title,
		EncodingFormat:   entry.EncodingFormat,
		Text:             entry.BodyText,
		DateCreated:      timestamp,
		DateModified:     timestamp,
		Author:           reference{ID: organization.ID},
		Genre:            string(entry.Genre),
		Keywords:         keywords,
		VariableMeasured: variableRefs,
		HasPart:          fileRefs,
	}

	graph := []any{
		descriptorNode{
			ID:          "ro-crate-metadata.json",
			Type:        "CreativeWork",
			About:       reference{ID: "./"},
			ConformsTo:  reference{ID: conformsToURI},
			DateCreated: timestamp,
			SDPublisher: reference{ID: organization.ID},
		},
		rootNode{
			ID:      "./",
			Type:    "Dataset",
			Name:    entry.Title,
			HasPart: []reference{{ID: "./experiment/"}},
			Version: rootVersion,
		},
		experiment,
		organizationNode{
			ID:   organization.ID,
			Type: "Organization",
			Name: organization.Name,
			URL:  organization.URL,
		},
	}
	graph = append(graph, fileNodes...)
	graph = append(graph, propertyNodes...)

	encoded, err := json.MarshalIndent(document{Context: contextURI, Graph: graph}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding crate metadata: %w", err)
	}
	return encoded, nil
}

// buildPropertyValues emits one PropertyValue node per structured
// field plus a node carrying the reconstructed eLabFTW metadata JSON
// for round-trip import. The metadata node leads the variableMeasured
// reference list.
func buildPropertyValues(fields []extrafields.Field, groups []extrafields.Group) ([]any, []reference, error) {
	metadataJSON, err := extrafields.MetadataJSON(fields, groups)
	if err != nil {
		return nil, nil, err
	}

	nodes := make([]any, 0, len(fields)+1)
	references := make([]reference, 0, len(fields)+1)

	metadataID := "pv://" + uuid.NewString()
	nodes = append(nodes, propertyValueNode{
		ID:          metadataID,
		Type:        "PropertyValue",
		PropertyID:  "elabftw_metadata",
		Description: "eLabFTW metadata JSON as string",
		Value:       metadataJSON,
	})
	references = append(references, reference{ID: metadataID})

	for _, field := range fields {
		id := "pv://" + uuid.NewString()
		nodes = append(nodes, propertyValueNode{
			ID:             id,
			Type:           "PropertyValue",
			PropertyID:     field.Label,
			ValueReference: string(field.Kind),
			Value:          extrafields.ExportValue(field),
			UnitText:       field.Unit,
			Description:    field.Description,
		})
		references = append(references, reference{ID: id})
	}

	return nodes, references, nil
}
