package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello world", "hello world"},
		{"strips tags", "<b>hello</b> world", "hello world"},
		{"strips script", `<script>alert("x")</script>note`, "note"},
		{"trims", "  padded  ", "padded"},
		{"empty", "", ""},
		{"link text kept", `<a href="https://evil.example">click</a>`, "click"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
