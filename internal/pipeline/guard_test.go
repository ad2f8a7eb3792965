package pipeline

import (
	"strings"
	"testing"
)

func TestMathDelimiterGuard_Protect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "no delimiters",
			input:    "plain $x=1$ text",
			expected: "plain $x=1$ text",
		},
		{
			name:     "inline math",
			input:    `\(a=b\)`,
			expected: ParenOpenPlaceholder + "a=b" + ParenClosePlaceholder,
		},
		{
			name:     "display math",
			input:    `\[x^2\]`,
			expected: BracketOpenPlaceholder + "x^2" + BracketClosePlaceholder,
		},
		{
			name:     "escaped backslash before paren",
			input:    `\\(`,
			expected: `\` + ParenOpenPlaceholder,
		},
		{
			name:     "other escapes untouched",
			input:    `\*not emphasis\*`,
			expected: `\*not emphasis\*`,
		},
		{
			name:     "literal placeholder is escaped",
			input:    ParenOpenPlaceholder,
			expected: placeholderEscape + ParenOpenPlaceholder,
		},
		{
			name:     "literal escape rune is escaped",
			input:    placeholderEscape,
			expected: placeholderEscape + placeholderEscape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MathDelimiterGuard{}.Protect(tt.input)
			if got != tt.expected {
				t.Errorf("Protect(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMathDelimiterGuard_ProtectRemovesDelimiters(t *testing.T) {
	t.Parallel()

	input := strings.Repeat(`\(\)\[\]`, 100)
	got := MathDelimiterGuard{}.Protect(input)

	for _, d := range []string{ParenOpen, ParenClose, BracketOpen, BracketClose} {
		if strings.Contains(got, d) {
			t.Errorf("Protect left %q in output", d)
		}
	}
}

func TestMathDelimiterGuard_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"hello world",
		`\(a=b\)`,
		`\[ \int_0^1 x\,dx \]`,
		`\\(\\)`,
		`\(\)\[\]\(\)\[\]`,
		`text \( unbalanced`,
		`\`,
		`\\\(`,
		ParenOpenPlaceholder + ParenClosePlaceholder + BracketOpenPlaceholder + BracketClosePlaceholder,
		placeholderEscape + ParenOpenPlaceholder,
		placeholderEscape + placeholderEscape + `\(`,
		placeholderEscape,
		"\xff\xfe invalid utf-8 \\(",
		"数学 \\(E=mc^2\\) 公式",
	}

	guard := MathDelimiterGuard{}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			got := guard.Restore(guard.Protect(input))
			if got != input {
				t.Errorf("Restore(Protect(%q)) = %q", input, got)
			}
		})
	}
}

func TestMathDelimiterGuard_Restore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "placeholders inside markup",
			input:    "<p>" + ParenOpenPlaceholder + "a=b" + ParenClosePlaceholder + "</p>",
			expected: `<p>\(a=b\)</p>`,
		},
		{
			name:     "placeholders split across spans",
			input:    `<span class="err">` + BracketOpenPlaceholder + `</span>x<span>` + BracketClosePlaceholder + `</span>`,
			expected: `<span class="err">\[</span>x<span>\]</span>`,
		},
		{
			name:     "escaped placeholder comes back literally",
			input:    placeholderEscape + BracketOpenPlaceholder,
			expected: BracketOpenPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MathDelimiterGuard{}.Restore(tt.input)
			if got != tt.expected {
				t.Errorf("Restore(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
