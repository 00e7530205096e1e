// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package extrafields

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Kind is an eLabFTW field type token. Unknown tokens round-trip
// unchanged so imported metadata survives re-export.
type Kind string

const (
	KindText          Kind = "text"
	KindNumber        Kind = "number"
	KindSelect        Kind = "select"
	KindCheckbox      Kind = "checkbox"
	KindDate          Kind = "date"
	KindDateTimeLocal Kind = "datetime-local"
	KindTime          Kind = "time"
	KindURL           Kind = "url"
	KindEmail         Kind = "email"
	KindRadio         Kind = "radio"
	KindItems         Kind = "items"
	KindExperiments   Kind = "experiments"
	KindUsers         Kind = "users"
)

// Field is one structured metadata field: definition plus current
// value. Values are kept as strings regardless of kind; export decides
// the JSON shape.
type Field struct {
	Label                 string
	Kind                  Kind
	Value                 string
	MultiValues           []string
	Options               []string
	Unit                  string
	Units                 []string
	Position              *int
	Required              bool
	Description           string
	AllowMultiValues      bool
	BlankValueOnDuplicate bool
	GroupID               *int
	Readonly              bool
}

// Group orders related fields under a heading.
type Group struct {
	ID       int
	Name     string
	Position int
}

// Import is a parsed template: fields sorted by (position, label) and
// groups in declaration order.
type Import struct {
	Fields []Field
	Groups []Group
}

// Validation reason codes returned by Validate.
const (
	ReasonRequired       = "required"
	ReasonInvalidURL     = "invalid_url"
	ReasonInvalidNumber  = "invalid_number"
	ReasonInvalidInteger = "invalid_integer"
	ReasonInvalidEmail   = "invalid_email"
)

// Validate checks a field's current value and returns a reason code
// when it is invalid, or "" when valid. An empty optional value passes
// every kind-specific check.
func Validate(field Field) string {
	value := strings.TrimSpace(field.Value)

	if field.Required && value == "" {
		return ReasonRequired
	}
	if value == "" {
		return ""
	}

	switch field.Kind {
	case KindURL:
		parsed, err := url.Parse(value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return ReasonInvalidURL
		}
	case KindNumber:
		if number, err := strconv.ParseFloat(value, 64); err != nil || math.IsInf(number, 0) || math.IsNaN(number) {
			return ReasonInvalidNumber
		}
	case KindItems, KindExperiments, KindUsers:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return ReasonInvalidInteger
		}
	case KindEmail:
		if _, err := mail.ParseAddress(value); err != nil {
			return ReasonInvalidEmail
		}
	}
	return ""
}

// ValidateAll returns a human-readable problem for each invalid field,
// in field order. An empty result means every field passes.
func ValidateAll(fields []Field) []string {
	var problems []string
	for _, field := range fields {
		if reason := Validate(field); reason != "" {
			problems = append(problems, fmt.Sprintf("%s: %s", field.Label, reasonText(reason)))
		}
	}
	return problems
}

func reasonText(reason string) string {
	switch reason {
	case ReasonRequired:
		return "value is required"
	case ReasonInvalidURL:
		return "not a valid http(s) URL"
	case ReasonInvalidNumber:
		return "not a valid number"
	case ReasonInvalidInteger:
		return "not a valid integer"
	case ReasonInvalidEmail:
		return "not a valid email address"
	default:
		return reason
	}
}

// sortFields orders fields by explicit position first, then label.
// Fields without a position sort after every positioned field.
func sortFields(fields []Field) {
	sort.SliceStable(fields, func(a, b int) bool {
		positionA, positionB := math.MaxInt32, math.MaxInt32
		if fields[a].Position != nil {
			positionA = *fields[a].Position
		}
		if fields[b].Position != nil {
			positionB = *fields[b].Position
		}
		if positionA != positionB {
			return positionA < positionB
		}
		return fields[a].Label < fields[b].Label
	})
}
