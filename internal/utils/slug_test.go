package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Diagram!":             "my-diagram",
		"  Conseil stratégique ": "conseil-strategique",
		"Q&A / Notes":             "q-and-a-notes",
		"l'été à Kinshasa":        "lete-a-kinshasa",
		"---":                     "",
		"Résumé 2026.final":       "resume-2026-final",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
