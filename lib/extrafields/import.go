// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package extrafields

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawEnvelope mirrors the eLabFTW metadata layout. The same shape is
// accepted as YAML so field templates can be kept in editable files.
type rawEnvelope struct {
	ExtraFields map[string]rawField `json:"extra_fields" yaml:"extra_fields"`
	ElabFTW     rawElabFTW          `json:"elabftw" yaml:"elabftw"`
}

type rawElabFTW struct {
	Groups []rawGroup `json:"extra_fields_groups" yaml:"extra_fields_groups"`
}

type rawGroup struct {
	ID   any    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// rawField tolerates the loose typing of real exports: values may be
// strings, numbers, booleans, or arrays; group ids may be numbers or
// strings.
type rawField struct {
	Kind                  string `json:"type" yaml:"type"`
	Options               []any  `json:"options" yaml:"options"`
	Unit                  string `json:"unit" yaml:"unit"`
	Units                 []any  `json:"units" yaml:"units"`
	Value                 any    `json:"value" yaml:"value"`
	Position              *int   `json:"position" yaml:"position"`
	Required              bool   `json:"required" yaml:"required"`
	Description           string `json:"description" yaml:"description"`
	AllowMultiValues      bool   `json:"allow_multi_values" yaml:"allow_multi_values"`
	BlankValueOnDuplicate bool   `json:"blank_value_on_duplicate" yaml:"blank_value_on_duplicate"`
	Readonly              bool   `json:"readonly" yaml:"readonly"`
	GroupID               any    `json:"group_id" yaml:"group_id"`
}

// ImportJSON parses an eLabFTW metadata JSON document into fields and
// groups.
func ImportJSON(data []byte) (Import, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var envelope rawEnvelope
	if err := decoder.Decode(&envelope); err != nil {
		return Import{}, fmt.Errorf("parsing extra fields JSON: %w", err)
	}
	return convertEnvelope(envelope), nil
}

// ImportYAML parses a field template in YAML using the same layout as
// the JSON exports.
func ImportYAML(data []byte) (Import, error) {
	var envelope rawEnvelope
	if err := yaml.Unmarshal(data, &envelope); err != nil {
		return Import{}, fmt.Errorf("parsing extra fields YAML: %w", err)
	}
	return convertEnvelope(envelope), nil
}

func convertEnvelope(envelope rawEnvelope) Import {
	fields := make([]Field, 0, len(envelope.ExtraFields))
	for label, raw := range envelope.ExtraFields {
		field := Field{
			Label:                 label,
			Kind:                  Kind(strings.TrimSpace(raw.Kind)),
			Options:               stringList(raw.Options),
			Unit:                  strings.TrimSpace(raw.Unit),
			Units:                 stringList(raw.Units),
			Position:              raw.Position,
			Required:              raw.Required,
			Description:           strings.TrimSpace(raw.Description),
			AllowMultiValues:      raw.AllowMultiValues,
			BlankValueOnDuplicate: raw.BlankValueOnDuplicate,
			Readonly:              raw.Readonly,
			GroupID:               parseID(raw.GroupID),
		}

		if values, ok := raw.Value.([]any); ok {
			field.MultiValues = stringList(values)
			field.Value = strings.Join(field.MultiValues, ", ")
		} else if raw.Value != nil {
			field.Value = valueString(raw.Value)
		}

		fields = append(fields, field)
	}
	sortFields(fields)

	var groups []Group
	for index, raw := range envelope.ElabFTW.Groups {
		id := parseID(raw.ID)
		if id == nil {
			continue
		}
		groups = append(groups, Group{ID: *id, Name: raw.Name, Position: index})
	}

	return Import{Fields: fields, Groups: groups}
}

func stringList(values []any) []string {
	var result []string
	for _, value := range values {
		result = append(result, valueString(value))
	}
	return result
}

// valueString renders a loosely typed JSON/YAML scalar the way the
// eLabFTW web client does: checkbox booleans become "on" or "".
func valueString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		if typed {
			return "on"
		}
		return ""
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", typed)
	}
}

func parseID(value any) *int {
	switch typed := value.(type) {
	case json.Number:
		if id, err := typed.Int64(); err == nil {
			converted := int(id)
			return &converted
		}
	case int:
		return &typed
	case int64:
		converted := int(typed)
		return &converted
	case float64:
		converted := int(typed)
		return &converted
	case string:
		if id, err := strconv.Atoi(typed); err == nil {
			return &id
		}
	}
	return nil
}
