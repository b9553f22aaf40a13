package textutil

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Fast", "Fast"},
		{"tags", "<b>X</b>", "&lt;b&gt;X&lt;/b&gt;"},
		{"ampersand first", "&lt;", "&amp;lt;"},
		{"quotes", `say "hi" it's`, "say &quot;hi&quot; it&#39;s"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeHTML(tt.input); got != tt.expected {
				t.Errorf("EscapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRuneLen(t *testing.T) {
	if got := RuneLen("añoñoñoño"); got != 9 {
		t.Errorf("RuneLen = %d, want 9", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		n        int
		expected string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"ñandú", 3, "ña…"},
		{"x", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.n); got != tt.expected {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.expected)
		}
	}
}

func TestJoinNLNL(t *testing.T) {
	if got := JoinNLNL([]string{"a", "b"}); got != "a\n\nb" {
		t.Errorf("JoinNLNL = %q", got)
	}
}
