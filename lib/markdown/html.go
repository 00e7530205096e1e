// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// mathClassPattern matches the two span classes the math extension
// emits.
var mathClassPattern = regexp.MustCompile(`^math math-(inline|display)$`)

// languageClassPattern matches the language hint goldmark puts on
// fenced code blocks.
var languageClassPattern = regexp.MustCompile(`^language-[a-zA-Z0-9_+-]+$`)

// newSanitizerPolicy builds the bluemonday policy applied to every
// exported body. Starts from the user-generated-content baseline and
// adds the structural extras the converter emits: tables, task list
// checkboxes, code language hints, and math spans.
func newSanitizerPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowTables()
	policy.AllowAttrs("class").Matching(mathClassPattern).OnElements("span")
	policy.AllowAttrs("class").Matching(languageClassPattern).OnElements("code")
	policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	policy.AllowAttrs("checked", "disabled").OnElements("input")
	return policy
}

// Converter turns markdown body text into sanitized HTML for package
// metadata. A Converter is safe for concurrent use.
type Converter struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewConverter builds a converter. When mathEnabled is set, $...$ and
// $$...$$ fragments become classed spans; otherwise dollar signs pass
// through as literal text.
func NewConverter(mathEnabled bool) *Converter {
	options := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM),
		// Raw HTML passes through the renderer and is stripped to the
		// allowed subset by the sanitizer policy afterwards.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	if mathEnabled {
		options = append(options, goldmark.WithExtensions(&mathExtension{}))
	}
	return &Converter{
		markdown: goldmark.New(options...),
		policy:   newSanitizerPolicy(),
	}
}

// ToHTML converts body markdown to sanitized HTML.
func (converter *Converter) ToHTML(body string) (string, error) {
	var buffer bytes.Buffer
	if err := converter.markdown.Convert([]byte(body), &buffer); err != nil {
		return "", fmt.Errorf("converting markdown body: %w", err)
	}
	return converter.policy.Sanitize(buffer.String()), nil
}
