// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package markdown

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// PreviewTheme carries the colors the preview pane renders with. The
// editor shell fills this from its active theme.
type PreviewTheme struct {
	Text    lipgloss.TerminalColor
	Faint   lipgloss.TerminalColor
	Heading lipgloss.TerminalColor
	Rule    lipgloss.TerminalColor
}

// previewParser is shared: the configuration never changes and parsing
// creates per-call state internally.
var (
	previewParser     goldmark.Markdown
	previewParserOnce sync.Once
)

func getPreviewParser() goldmark.Markdown {
	previewParserOnce.Do(func() {
		previewParser = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return previewParser
}

// RenderPreview renders body markdown as ANSI-styled text wrapped to
// width for the editor's preview pane. Soft line breaks become spaces
// so hard-wrapped source reflows at the pane's width.
func RenderPreview(body string, theme PreviewTheme, width int) string {
	if body == "" {
		return ""
	}
	source := []byte(body)
	document := getPreviewParser().Parser().Parse(text.NewReader(source))

	// Force the color profile: this output always targets the TUI, and
	// auto-detection would strip color under tests with no TTY.
	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	preview := &previewRenderer{
		source:      source,
		theme:       theme,
		width:       width,
		lipRenderer: lipRenderer,
	}
	ast.Walk(document, preview.walk)
	return strings.TrimRight(preview.output.String(), "\n")
}

// previewRenderer walks the goldmark AST directly instead of using the
// renderer interface: paragraph content accumulates in a buffer and is
// word-wrapped as a unit when the paragraph closes, which the
// streaming callbacks do not accommodate.
type previewRenderer struct {
	source []byte
	theme  PreviewTheme
	width  int

	output strings.Builder

	// inline accumulates styled fragments until the enclosing block
	// flushes them with word-wrap.
	inline strings.Builder

	// indent is the continuation prefix from nested lists and quotes.
	indent string

	// pendingBullet replaces the indent for the first emitted line of
	// a list item, then clears.
	pendingBullet string

	boldCount          int
	italicCount        int
	strikethroughCount int

	listStack []previewListState

	lipRenderer *lipgloss.Renderer
}

type previewListState struct {
	ordered bool
	counter int
}

func (preview *previewRenderer) style() lipgloss.Style {
	return preview.lipRenderer.NewStyle()
}

func (preview *previewRenderer) contentWidth() int {
	width := preview.width - len(preview.indent)
	if width < 10 {
		width = 10
	}
	return width
}

func (preview *previewRenderer) styledText(content string) string {
	style := preview.style().Foreground(preview.theme.Text)
	if preview.boldCount > 0 {
		style = style.Bold(true)
	}
	if preview.italicCount > 0 {
		style = style.Italic(true)
	}
	if preview.strikethroughCount > 0 {
		style = style.Strikethrough(true)
	}
	return style.Render(content)
}

// writeBlock wraps content to the pane width, prefixes each line with
// the indent (or the pending bullet on the first line), and appends a
// trailing blank line.
func (preview *previewRenderer) writeBlock(content string) {
	wrapped := ansi.Wrap(content, preview.contentWidth(), " ,.;-+|")
	for index, line := range strings.Split(wrapped, "\n") {
		if index == 0 && preview.pendingBullet != "" {
			preview.output.WriteString(preview.pendingBullet)
			preview.pendingBullet = ""
		} else {
			preview.output.WriteString(preview.indent)
		}
		preview.output.WriteString(line)
		preview.output.WriteString("\n")
	}
	preview.output.WriteString("\n")
}

func (preview *previewRenderer) flushInline() {
	content := preview.inline.String()
	preview.inline.Reset()
	if content == "" {
		return
	}
	preview.writeBlock(content)
}

func (preview *previewRenderer) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch node.Kind() {

	case ast.KindParagraph, ast.KindTextBlock:
		if entering {
			preview.inline.Reset()
		} else {
			preview.flushInline()
		}

	case ast.KindHeading:
		if entering {
			preview.inline.Reset()
		} else {
			content := ansi.Strip(preview.inline.String())
			preview.inline.Reset()
			if content != "" {
				heading := preview.style().Bold(true).Foreground(preview.theme.Heading)
				preview.writeBlock(heading.Render(content))
			}
		}

	case ast.KindFencedCodeBlock:
		if entering {
			preview.renderFencedCode(node.(*ast.FencedCodeBlock))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindCodeBlock:
		if entering {
			preview.renderPlainCode(blockLines(node, preview.source))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindBlockquote:
		if entering {
			preview.indent += "│ "
		} else {
			preview.indent = preview.indent[:len(preview.indent)-len("│ ")]
		}

	case ast.KindList:
		if entering {
			list := node.(*ast.List)
			state := previewListState{ordered: list.IsOrdered()}
			if state.ordered {
				state.counter = list.Start
			}
			preview.listStack = append(preview.listStack, state)
		} else {
			preview.listStack = preview.listStack[:len(preview.listStack)-1]
		}

	case ast.KindListItem:
		if entering {
			preview.enterListItem()
		} else {
			preview.indent = preview.indent[:len(preview.indent)-2]
		}

	case ast.KindThematicBreak:
		if entering {
			rule := preview.style().Foreground(preview.theme.Rule)
			preview.writeBlock(rule.Render(strings.Repeat("─", preview.contentWidth())))
		}

	case ast.KindText:
		if entering {
			textNode := node.(*ast.Text)
			preview.inline.WriteString(preview.styledText(string(textNode.Segment.Value(preview.source))))
			if textNode.SoftLineBreak() {
				preview.inline.WriteString(" ")
			}
			if textNode.HardLineBreak() {
				preview.inline.WriteString("\n")
			}
		}

	case ast.KindString:
		if entering {
			preview.inline.WriteString(preview.styledText(string(node.(*ast.String).Value)))
		}

	case ast.KindEmphasis:
		emphasis := node.(*ast.Emphasis)
		delta := -1
		if entering {
			delta = 1
		}
		if emphasis.Level >= 2 {
			preview.boldCount += delta
		} else {
			preview.italicCount += delta
		}

	case extast.KindStrikethrough:
		if entering {
			preview.strikethroughCount++
		} else {
			preview.strikethroughCount--
		}

	case ast.KindCodeSpan:
		if entering {
			faint := preview.style().Foreground(preview.theme.Faint)
			preview.inline.WriteString(faint.Render(spanText(node, preview.source)))
			return ast.WalkSkipChildren, nil
		}

	case ast.KindLink:
		if entering {
			link := node.(*ast.Link)
			faint := preview.style().Foreground(preview.theme.Faint)
			preview.inline.WriteString(preview.styledText(spanText(link, preview.source)))
			if len(link.Destination) > 0 {
				preview.inline.WriteString(" " + faint.Render("("+string(link.Destination)+")"))
			}
			return ast.WalkSkipChildren, nil
		}

	case ast.KindAutoLink:
		if entering {
			faint := preview.style().Foreground(preview.theme.Faint)
			preview.inline.WriteString(faint.Render(string(node.(*ast.AutoLink).URL(preview.source))))
		}

	case ast.KindImage:
		if entering {
			image := node.(*ast.Image)
			faint := preview.style().Foreground(preview.theme.Faint)
			preview.inline.WriteString(faint.Render("[" + spanText(image, preview.source) + "]"))
			return ast.WalkSkipChildren, nil
		}

	case extast.KindTaskCheckBox:
		if entering {
			if node.(*extast.TaskCheckBox).IsChecked {
				preview.inline.WriteString(preview.styledText("[x] "))
			} else {
				preview.inline.WriteString(preview.styledText("[ ] "))
			}
		}

	case extast.KindTable:
		if entering {
			preview.renderTable(node)
			return ast.WalkSkipChildren, nil
		}

	case ast.KindHTMLBlock, ast.KindRawHTML:
		// Raw HTML is meaningless in a terminal pane; drop it.
		if entering {
			return ast.WalkSkipChildren, nil
		}
	}

	return ast.WalkContinue, nil
}

func (preview *previewRenderer) enterListItem() {
	if len(preview.listStack) == 0 {
		return
	}
	top := &preview.listStack[len(preview.listStack)-1]
	bullet := "- "
	if top.ordered {
		bullet = fmt.Sprintf("%d. ", top.counter)
		top.counter++
	}
	preview.pendingBullet = preview.indent + bullet
	preview.indent += "  "
}

func (preview *previewRenderer) renderFencedCode(node *ast.FencedCodeBlock) {
	language := string(node.Language(preview.source))
	code := blockLines(node, preview.source)

	if language != "" {
		var highlighted strings.Builder
		if err := quick.Highlight(&highlighted, code, language, "terminal256", "monokai"); err == nil {
			preview.writeCodeLines(highlighted.String())
			return
		}
	}
	preview.renderPlainCode(code)
}

func (preview *previewRenderer) renderPlainCode(code string) {
	faint := preview.style().Foreground(preview.theme.Faint)
	var styled strings.Builder
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		styled.WriteString(faint.Render(line))
		styled.WriteString("\n")
	}
	preview.writeCodeLines(styled.String())
}

// writeCodeLines emits pre-styled code verbatim, without word-wrap.
func (preview *previewRenderer) writeCodeLines(code string) {
	for _, line := range strings.Split(strings.TrimRight(code, "\n"), "\n") {
		preview.output.WriteString(preview.indent)
		preview.output.WriteString(line)
		preview.output.WriteString("\n")
	}
	preview.output.WriteString("\n")
}

// renderTable flattens a table to "cell │ cell" rows. The preview pane
// is narrow; full column layout is not worth the space.
func (preview *previewRenderer) renderTable(table ast.Node) {
	bold := preview.style().Bold(true).Foreground(preview.theme.Text)
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, spanText(cell, preview.source))
		}
		line := strings.Join(cells, " │ ")
		if row.Kind() == extast.KindTableHeader {
			line = bold.Render(line)
		} else {
			line = preview.styledText(line)
		}
		preview.output.WriteString(preview.indent)
		preview.output.WriteString(line)
		preview.output.WriteString("\n")
	}
	preview.output.WriteString("\n")
}

// blockLines joins the raw source lines of a block node.
func blockLines(node ast.Node, source []byte) string {
	var builder strings.Builder
	lines := node.Lines()
	for index := 0; index < lines.Len(); index++ {
		segment := lines.At(index)
		builder.Write(segment.Value(source))
	}
	return builder.String()
}

// spanText collects the plain text of a node's inline children.
func spanText(node ast.Node, source []byte) string {
	var builder strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch typed := child.(type) {
		case *ast.Text:
			builder.WriteString(string(typed.Segment.Value(source)))
		case *ast.String:
			builder.Write(typed.Value)
		default:
			builder.WriteString(spanText(child, source))
		}
	}
	return builder.String()
}
