// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package extrafields

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ExportValue returns the JSON shape of a field's value for metadata
// export. Multi-value fields export as string arrays. Number values
// stay strings for eLabFTW compatibility; entity references (items,
// experiments, users) export as integers when they parse.
func ExportValue(field Field) any {
	if field.AllowMultiValues && len(field.MultiValues) > 0 {
		return append([]string(nil), field.MultiValues...)
	}

	switch field.Kind {
	case KindNumber:
		return field.Value
	case KindItems, KindExperiments, KindUsers:
		if id, err := strconv.ParseInt(field.Value, 10, 64); err == nil {
			return id
		}
		return field.Value
	default:
		return field.Value
	}
}

// MetadataJSON reconstructs the eLabFTW metadata document from the
// current fields and groups, returned as a compact JSON string for
// embedding. Optional attributes are omitted when unset so the output
// mirrors what the eLabFTW web client writes.
func MetadataJSON(fields []Field, groups []Group) (string, error) {
	groupsJSON := make([]map[string]any, 0, len(groups))
	for _, group := range groups {
		groupsJSON = append(groupsJSON, map[string]any{
			"id":   group.ID,
			"name": group.Name,
		})
	}

	fieldsJSON := make(map[string]any, len(fields))
	for _, field := range fields {
		entry := map[string]any{
			"type":  string(field.Kind),
			"value": ExportValue(field),
		}
		if len(field.Options) > 0 {
			entry["options"] = field.Options
		}
		if field.Unit != "" {
			entry["unit"] = field.Unit
		}
		if len(field.Units) > 0 {
			entry["units"] = field.Units
		}
		if field.Position != nil {
			entry["position"] = *field.Position
		}
		if field.Required {
			entry["required"] = true
		}
		if field.Description != "" {
			entry["description"] = field.Description
		}
		if field.AllowMultiValues {
			entry["allow_multi_values"] = true
		}
		if field.BlankValueOnDuplicate {
			entry["blank_value_on_duplicate"] = true
		}
		if field.GroupID != nil {
			entry["group_id"] = *field.GroupID
		}
		if field.Readonly {
			entry["readonly"] = true
		}
		fieldsJSON[field.Label] = entry
	}

	document := map[string]any{
		"elabftw": map[string]any{
			"display_main_text":   true,
			"extra_fields_groups": groupsJSON,
		},
		"extra_fields": fieldsJSON,
	}

	encoded, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("encoding extra fields metadata: %w", err)
	}
	return string(encoded), nil
}
