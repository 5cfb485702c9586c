package sanitize

import "testing"

func TestContent(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello there", "hello there"},
		{"trims whitespace", "  hi  ", "hi"},
		{"escapes markup", `<script>alert("x")</script>`, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"},
		{"strips control chars", "a\x00b\x07c", "abc"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
		{"empty", "   ", ""},
		{"unicode preserved", "héllo 世界 🎉", "héllo 世界 🎉"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Content(tc.in); got != tc.want {
				t.Errorf("Content(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestIdentifier(t *testing.T) {
	valid := []string{"abc", "ABC-123", "a_b-c", "550e8400-e29b-41d4-a716-446655440000"}
	for _, in := range valid {
		if got := Identifier(in); got != in {
			t.Errorf("Identifier(%q) = %q, want unchanged", in, got)
		}
	}

	invalid := []string{"", "   ", "a b", "a;drop", "a/../b", "{\"$gt\":\"\"}", string(make([]byte, 65))}
	for _, in := range invalid {
		if got := Identifier(in); got != "" {
			t.Errorf("Identifier(%q) = %q, want empty", in, got)
		}
	}

	if got := Identifier("  trimmed  "); got != "trimmed" {
		t.Errorf("Identifier should trim surrounding whitespace, got %q", got)
	}
}
