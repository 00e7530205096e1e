// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// mathNode is an inline TeX fragment delimited by $...$ or $$...$$.
// The raw TeX is preserved verbatim; rendering is left to whatever
// consumes the archived HTML.
type mathNode struct {
	ast.BaseInline

	// Display marks $$...$$ fragments.
	Display bool

	// Segment locates the TeX source between the delimiters.
	Segment text.Segment
}

var kindMath = ast.NewNodeKind("Math")

func (node *mathNode) Kind() ast.NodeKind { return kindMath }

func (node *mathNode) Dump(source []byte, level int) {
	ast.DumpHelper(node, source, level, nil, nil)
}

// mathParser recognizes single-line $...$ and $$...$$ spans. An
// unterminated or empty delimiter pair is left alone and renders as
// literal text.
type mathParser struct{}

func (*mathParser) Trigger() []byte { return []byte{'$'} }

func (*mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, segment := block.PeekLine()

	display := false
	delimiter := 1
	if len(line) >= 2 && line[1] == '$' {
		display = true
		delimiter = 2
	}

	var closing int
	if display {
		closing = bytes.Index(line[delimiter:], []byte("$$"))
	} else {
		closing = bytes.IndexByte(line[delimiter:], '$')
	}
	if closing <= 0 {
		return nil
	}

	start := segment.Start + delimiter
	node := &mathNode{
		Display: display,
		Segment: text.NewSegment(start, start+closing),
	}
	block.Advance(delimiter + closing + delimiter)
	return node
}

// mathHTMLRenderer emits math fragments as classed spans with the TeX
// escaped inside, the shape client-side renderers like KaTeX expect.
type mathHTMLRenderer struct{}

func (renderer *mathHTMLRenderer) RegisterFuncs(registerer renderer.NodeRendererFuncRegisterer) {
	registerer.Register(kindMath, renderer.render)
}

func (*mathHTMLRenderer) render(writer util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	math := node.(*mathNode)
	if math.Display {
		writer.WriteString(`<span class="math math-display">`)
	} else {
		writer.WriteString(`<span class="math math-inline">`)
	}
	html.DefaultWriter.RawWrite(writer, math.Segment.Value(source))
	writer.WriteString("</span>")
	return ast.WalkSkipChildren, nil
}

// mathExtension wires the parser and renderer into a goldmark
// instance.
type mathExtension struct{}

func (*mathExtension) Extend(markdown goldmark.Markdown) {
	markdown.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(&mathParser{}, 500)),
	)
	markdown.Renderer().AddOptions(
		renderer.WithNodeRenderers(util.Prioritized(&mathHTMLRenderer{}, 500)),
	)
}
