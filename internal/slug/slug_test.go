// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

// TestGenerate exercises the slug generator with typical category and
// subcategory names, special characters, accents, and edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Normal names ---
		{
			name:  "simple two words",
			input: "Hello World",
			want:  "hello-world",
		},
		{
			name:  "already lowercase",
			input: "already lowercase",
			want:  "already-lowercase",
		},
		{
			name:  "single word",
			input: "Immobilier",
			want:  "immobilier",
		},
		{
			name:  "name with digits",
			input: "Pieces Detachees 2026",
			want:  "pieces-detachees-2026",
		},

		// --- French accents ---
		{
			name:  "accented vehicles",
			input: "Véhicules",
			want:  "vehicules",
		},
		{
			name:  "accents and ampersand",
			input: "Véhicules & Motos",
			want:  "vehicules-motos",
		},
		{
			name:  "cedilla and grave accent",
			input: "Leçons à domicile",
			want:  "lecons-a-domicile",
		},
		{
			name:  "circumflex",
			input: "Pêche et Chasse",
			want:  "peche-et-chasse",
		},

		// --- Special characters ---
		{
			name:  "punctuation marks",
			input: "Hello, World! How's it going?",
			want:  "hello-world-hows-it-going",
		},
		{
			name:  "ampersand and at sign",
			input: "Rock & Roll @ the Arena",
			want:  "rock-roll-the-arena",
		},
		{
			name:  "parentheses and brackets",
			input: "Version (2.0) [Beta]",
			want:  "version-20-beta",
		},

		// --- Edge cases ---
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "!!! ??? ...",
			want:  "",
		},
		{
			name:  "leading and trailing spaces",
			input: "  Maison & Jardin  ",
			want:  "maison-jardin",
		},
		{
			name:  "multiple internal spaces",
			input: "Mode   et    Beauté",
			want:  "mode-et-beaute",
		},
		{
			name:  "existing hyphens preserved",
			input: "multi-word-slug",
			want:  "multi-word-slug",
		},
		{
			name:  "consecutive hyphens collapsed",
			input: "a -- b",
			want:  "a-b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
