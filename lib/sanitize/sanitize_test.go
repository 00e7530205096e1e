// Copyright 2026 The Elnforge Authors
// SPDX-License-Identifier: Apache-2.0

package sanitize

import "testing"

func TestComponentTransliteratesAndPreservesExtension(t *testing.T) {
	if got := Component("Café (draft).md"); got != "Cafe_draft.md" {
		t.Errorf("Component = %q, want %q", got, "Cafe_draft.md")
	}
}

func TestComponentCollapsesWhitespaceAndSeparators(t *testing.T) {
	if got := Component("Ångström data 2025/11/25"); got != "Angstrom_data_2025_11_25" {
		t.Errorf("Component = %q, want %q", got, "Angstrom_data_2025_11_25")
	}
}

func TestComponentDeduplicatesDotsKeepsMultiPartExtensions(t *testing.T) {
	if got := Component("data..v1...2.tar..gz"); got != "data.v1.2.tar.gz" {
		t.Errorf("Component = %q, want %q", got, "data.v1.2.tar.gz")
	}
}

func TestComponentTrimsTrailingDots(t *testing.T) {
	if got := Component("name."); got != "name" {
		t.Errorf("Component = %q, want %q", got, "name")
	}
}

func TestComponentReservedBasenames(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CON", "CON_"},
		{"con", "con_"},
		{"NUL.txt", "NUL_.txt"},
		{"lpt9.log", "lpt9_.log"},
		{"CONSOLE", "CONSOLE"}, // prefix match is not enough
	}
	for _, test := range tests {
		if got := Component(test.input); got != test.want {
			t.Errorf("Component(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestComponentFallback(t *testing.T) {
	tests := []string{"...", "", ".", "..", "   ", "()()"}
	for _, input := range tests {
		if got := Component(input); got != Fallback {
			t.Errorf("Component(%q) = %q, want %q", input, got, Fallback)
		}
	}
}

func TestComponentDropsUnderscoreBeforeDot(t *testing.T) {
	if got := Component("report (final).txt"); got != "report_final.txt" {
		t.Errorf("Component = %q, want %q", got, "report_final.txt")
	}
}

func TestComponentRecollapsesDotsAfterUnderscoreDrop(t *testing.T) {
	// Dropping "_" before "." can merge two dot runs; the result must
	// still be fully collapsed or a second pass would change it.
	tests := []struct {
		input string
		want  string
	}{
		{"x_._.y", "x.y"},
		{"q_._._z", "q._z"},
		{"_._._", "._"},
	}
	for _, test := range tests {
		if got := Component(test.input); got != test.want {
			t.Errorf("Component(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestComponentFoldsNonDecomposableLetters(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Straße.txt", "Strasse.txt"},
		{"Øresund.dat", "Oresund.dat"},
		{"naïve æther.md", "naive_aether.md"},
	}
	for _, test := range tests {
		if got := Component(test.input); got != test.want {
			t.Errorf("Component(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestComponentIdempotent(t *testing.T) {
	inputs := []string{
		"Café (draft).md",
		"Ångström data 2025/11/25",
		"data..v1...2.tar..gz",
		"name.",
		"CON",
		"NUL.txt",
		"...",
		"",
		"report (final).txt",
		"Straße über alles!.tar.gz",
		"__weird__..name__.",
		"平仮名.txt",
		"a_.b_.c_.",
		"x_._.y",
		"_._._",
		"q_._._z",
		"  spaces  everywhere  ",
		"emoji 🧪 lab.bin",
	}
	for _, input := range inputs {
		once := Component(input)
		twice := Component(once)
		if once != twice {
			t.Errorf("Component not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestComponentKeepsAllowedCharacters(t *testing.T) {
	if got := Component("normal-file_123.txt"); got != "normal-file_123.txt" {
		t.Errorf("Component = %q, want input unchanged", got)
	}
}
