package topic

import "testing"

func TestDerive(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"My Notes!!.pdf", "my_notes"},
		{"Photosynthesis Basics.pdf", "photosynthesis_basics"},
		{"chapter-3_review.txt", "chapter_3_review"},
		{"UPPER.PDF", "upper"},
		{"already_clean.md", "already_clean"},
		{"weird   spacing .pdf", "weird_spacing"},
		{"multi.part.name.pdf", "multi"},
		{"___.pdf", ""},
		{"", ""},
		{"noextension", "noextension"},
		{"42 answers.txt", "42_answers"},
	}
	for _, tc := range tests {
		if got := Derive(tc.filename); got != tc.want {
			t.Errorf("Derive(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestDerive_Idempotent(t *testing.T) {
	names := []string{"My Notes!!.pdf", "Photosynthesis Basics.pdf", "a b c.txt"}
	for _, name := range names {
		first := Derive(name)
		second := Derive(name)
		if first != second {
			t.Errorf("Derive(%q) not stable: %q then %q", name, first, second)
		}
	}
}

func TestDerive_CollisionsShareTopic(t *testing.T) {
	// Differently-named files can collapse to the same identifier. Both land
	// in one topic; that is the documented, accepted behavior.
	a := Derive("my-notes.pdf")
	b := Derive("My Notes.txt")
	if a != b {
		t.Fatalf("expected colliding identifiers, got %q and %q", a, b)
	}
}
