// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is the component returned for input that sanitizes to
// nothing usable (empty, ".", "..").
const Fallback = "eln_entry"

// reservedBasenames are Windows device names that cannot be used as a
// file basename regardless of extension. Matched case-insensitively.
var reservedBasenames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// asciiFold maps characters that do not decompose to an ASCII base
// letter under NFD. Everything else non-ASCII is handled by stripping
// combining marks after decomposition, or falls through to the
// underscore replacement in Component.
var asciiFold = map[rune]string{
	'ß': "ss", 'ẞ': "SS",
	'Æ': "AE", 'æ': "ae",
	'Ø': "O", 'ø': "o",
	'Œ': "OE", 'œ': "oe",
	'Ð': "D", 'ð': "d",
	'Þ': "TH", 'þ': "th",
	'Đ': "D", 'đ': "d",
	'Ł': "L", 'ł': "l",
	'ı': "i",
	'–': "-", '—': "-",
}

// stripMarks removes combining marks left over after canonical
// decomposition, turning "Café" into "Cafe" and "Ångström" into
// "Angstrom".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// transliterate produces an ASCII approximation of value. Characters
// with no ASCII mapping are passed through unchanged; Component maps
// them to underscores afterwards.
func transliterate(value string) string {
	decomposed, _, err := transform.String(stripMarks, value)
	if err != nil {
		decomposed = value
	}

	var builder strings.Builder
	builder.Grow(len(decomposed))
	for _, character := range decomposed {
		if character < 128 {
			builder.WriteRune(character)
			continue
		}
		if folded, ok := asciiFold[character]; ok {
			builder.WriteString(folded)
			continue
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

// Component maps an arbitrary string to a filesystem- and
// archive-safe path component:
//
//   - transliterate Unicode to an ASCII approximation ("Å" becomes "A")
//   - keep ASCII alphanumerics plus '-', '_', and '.'; everything else
//     becomes '_'
//   - collapse runs of '_' and runs of '.' to a single character
//   - drop an underscore immediately preceding a dot
//   - trim trailing dots and spaces
//   - replace an empty or dot-only result with Fallback
//   - append '_' to a basename that collides case-insensitively with a
//     reserved Windows device name
//
// Multi-part extensions survive: "data.v1.2.tar.gz" stays intact. The
// mapping is deterministic and idempotent: Component(Component(x)) ==
// Component(x) for every input.
func Component(value string) string {
	transliterated := transliterate(value)

	var out strings.Builder
	out.Grow(len(transliterated))
	var last rune
	for _, character := range transliterated {
		mapped := character
		switch {
		case character >= 'a' && character <= 'z',
			character >= 'A' && character <= 'Z',
			character >= '0' && character <= '9',
			character == '-', character == '_', character == '.':
		default:
			mapped = '_'
		}

		if (mapped == '_' || mapped == '.') && last == mapped {
			continue
		}
		out.WriteRune(mapped)
		last = mapped
	}

	result := out.String()

	// Drop stray underscores immediately before a dot so "name _.ext"
	// style artifacts collapse cleanly.
	for {
		index := strings.Index(result, "_.")
		if index < 0 {
			break
		}
		result = result[:index] + result[index+1:]
	}

	// Dropping an underscore can butt two dot runs together ("x_._.y"
	// becomes "x..y"); collapse dots once more so the mapping stays
	// idempotent. The drop loop itself cannot leave a new "_." behind.
	for strings.Contains(result, "..") {
		result = strings.ReplaceAll(result, "..", ".")
	}

	result = strings.TrimRight(result, ". ")

	if result == "" || result == "." || result == ".." {
		return Fallback
	}

	return guardReservedBasename(result)
}

// guardReservedBasename appends an underscore to the basename when it
// matches a reserved Windows device name, preserving any extension.
func guardReservedBasename(name string) string {
	basename := name
	extension := ""
	if dot := strings.LastIndex(name, "."); dot > 0 {
		basename = name[:dot]
		extension = name[dot:]
	}

	if reservedBasenames[strings.ToUpper(basename)] {
		return basename + "_" + extension
	}
	return name
}
