package common

import "testing"

func TestIsBlank(t *testing.T) {
	for _, s := range []string{"", " ", "\t\n"} {
		if !IsBlank(s) {
			t.Fatalf("expected %q to be blank", s)
		}
	}
	if IsBlank(" Paris ") {
		t.Fatalf("expected non-blank")
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := FirstNonEmpty("", "  ", " Bavaria "); got != "Bavaria" {
		t.Fatalf("expected Bavaria, got %q", got)
	}
	if got := FirstNonEmpty("Germany", "Berlin"); got != "Germany" {
		t.Fatalf("expected Germany, got %q", got)
	}
	if got := FirstNonEmpty(); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
