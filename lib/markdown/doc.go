// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package markdown converts entry body text for its two consumers: the
// archived HTML embedded in package metadata, and the styled preview
// shown in the editor's terminal pane.
//
// The HTML path runs goldmark with GitHub-flavored extensions and an
// optional inline math extension, then sanitizes the output through a
// bluemonday policy so archived metadata never carries scripts or
// event handlers. The terminal path walks the goldmark AST directly
// and emits ANSI-styled text sized to the preview pane.
package markdown
