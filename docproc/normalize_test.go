package docproc

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb", "a\nb"},
		{"tabs", "a\tb", "a b"},
		{"nbsp", "a\u00a0b", "a b"},
		{"interior spaces", "a    b  c", "a b c"},
		{"trailing spaces", "a   \nb", "a\nb"},
		{"blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"document edges", "  \n\na\n\n  ", "a"},
		{"space-only lines collapse", "a\n\n   \n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("%s: Normalize(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"# Title\r\n\r\n\r\n\r\nBody\ttext  here.\n\n   \n\nMore.",
		"a\n\n \n\nb",
		"   only   spaces   ",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
