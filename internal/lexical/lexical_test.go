package lexical

import (
	"strings"
	"testing"
)

func TestMaskStringLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no strings", "x = a / b", "x = a / b"},
		{"double quoted", `x = "a/b";`, `x =      ;`},
		{"single quoted", `f('a', b)`, `f(   , b)`},
		{"mixed quote is content", `x = 'say "hi"' + y`, `x =            + y`},
		{"escaped quote", `x = "a\"b" + c`, `x =        + c`},
		{"unterminated", `x = "abc`, `x =     `},
		{"escaped opening quote is not a delimiter", `x = \"a`, `x = \"a`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskStringLiterals(tt.input)
			if got != tt.expected {
				t.Errorf("MaskStringLiterals(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMaskAgreesWithIsPositionInsideString(t *testing.T) {
	lines := []string{
		`x = "a/b";`,
		`result = lookup('key', "other \" quote") / count`,
		`a = 'unterminated / b`,
		`plain / line`,
		`s = "it's" + 'say "x"'`,
		`q = \'not a string\' + "yes"`,
	}

	for _, line := range lines {
		masked := MaskStringLiterals(line)
		if len(masked) != len(line) {
			t.Fatalf("mask changed length for %q: %d != %d", line, len(masked), len(line))
		}
		for p := 0; p < len(line); p++ {
			inside := IsPositionInsideString(line, p)
			changed := masked[p] != line[p]
			if changed && !inside {
				t.Errorf("%q: position %d masked but not reported inside", line, p)
			}
			if inside && masked[p] != ' ' {
				t.Errorf("%q: position %d reported inside but not masked", line, p)
			}
		}
	}
}

func TestIsPositionInsideString_OutOfRange(t *testing.T) {
	if IsPositionInsideString(`"abc"`, -1) {
		t.Error("negative position should not be inside")
	}
	if IsPositionInsideString(`"abc"`, 10) {
		t.Error("position past the end should not be inside")
	}
}

func TestMaskLineComment(t *testing.T) {
	got := MaskLine(`x = a / b // ratio c / d`)
	if strings.Contains(got, "c / d") {
		t.Errorf("comment tail not masked: %q", got)
	}
	if !strings.HasPrefix(got, "x = a / b ") {
		t.Errorf("code before comment changed: %q", got)
	}

	// A // inside a string is not a comment
	got = MaskLine(`url = "http://x" + a`)
	if !strings.HasSuffix(got, "+ a") {
		t.Errorf("string content treated as comment: %q", got)
	}
}

func TestEscapeRegex(t *testing.T) {
	input := `. * + ? ^ $ { } ( ) | [ ] \`
	escaped := EscapeRegex(input)
	for _, meta := range strings.Fields(input) {
		if !strings.Contains(escaped, `\`+meta) {
			t.Errorf("metacharacter %q not escaped in %q", meta, escaped)
		}
	}
}

func TestWordBoundaryPattern(t *testing.T) {
	re := WordBoundaryPattern("my_var")
	line := "my_var = my_variable + my_var2 + x.my_var + my_var"
	matches := re.FindAllStringIndex(line, -1)
	// my_var at 0, x.my_var at 35, my_var at 45
	if len(matches) != 3 {
		t.Fatalf("expected 3 whole-word matches, got %d: %v", len(matches), matches)
	}
	if matches[0][0] != 0 {
		t.Errorf("expected first match at 0, got %d", matches[0][0])
	}
}

func TestWordBoundaryPattern_Metacharacters(t *testing.T) {
	re := WordBoundaryPattern("a.b")
	if re.MatchString("axb") {
		t.Error("dot should be matched literally")
	}
	if !re.MatchString("x = a.b;") {
		t.Error("expected literal match")
	}
}

func TestSubstitutePlaceholders(t *testing.T) {
	got := SubstitutePlaceholders("protect({expression}, {defaultAltValue})", map[string]string{
		"expression":      "total / count",
		"defaultAltValue": "DEFAULT_1",
	})
	if got != "protect(total / count, DEFAULT_1)" {
		t.Errorf("unexpected substitution: %q", got)
	}
}

func TestSubstitutePlaceholders_ValuesAreLiteral(t *testing.T) {
	got := SubstitutePlaceholders("{a} and {a}", map[string]string{"a": "$1 (.*) \\"})
	if got != "$1 (.*) \\ and $1 (.*) \\" {
		t.Errorf("replacement value was interpreted: %q", got)
	}

	got = SubstitutePlaceholders("{missing} stays", map[string]string{"other": "x"})
	if got != "{missing} stays" {
		t.Errorf("unknown placeholder should be kept: %q", got)
	}
}

func TestFindOccurrences(t *testing.T) {
	line := `a / b + "a / b" + a / b`
	got := FindOccurrences(line, "a / b")
	if len(got) != 2 || got[0] != 0 || got[1] != 18 {
		t.Errorf("expected occurrences [0 18], got %v", got)
	}
	if FindOccurrences(line, "") != nil {
		t.Error("empty text should have no occurrences")
	}
}

func TestToCamelCase(t *testing.T) {
	tests := map[string]string{
		"my_variable":  "myVariable",
		"MyVariable":   "myVariable",
		"MY_VAR":       "myVar",
		"_private":     "private",
		"total_Count":  "totalCount",
		"var_1":        "var1",
		"already":      "already",
		"X":            "x",
		"__":           "",
		"a__b":         "aB",
		"HTTP_request": "hTTPRequest",
	}
	for input, expected := range tests {
		if got := ToCamelCase(input); got != expected {
			t.Errorf("ToCamelCase(%q) = %q, want %q", input, got, expected)
		}
	}
}

func TestCharColumn(t *testing.T) {
	tests := []struct {
		line   string
		offset int
		want   int
	}{
		{"x = a / b", 4, 4},
		{`s = "é"; r = a / b`, 14, 13},
		{"名前 = a", 9, 5},
		{"abc", 10, 3},
		{"abc", -1, 0},
		{"", 0, 0},
	}
	for _, tt := range tests {
		if got := CharColumn(tt.line, tt.offset); got != tt.want {
			t.Errorf("CharColumn(%q, %d) = %d, want %d", tt.line, tt.offset, got, tt.want)
		}
	}
}

func TestByteOffset(t *testing.T) {
	tests := []struct {
		line   string
		column int
		want   int
	}{
		{"x = a / b", 4, 4},
		{`s = "é"; r = a / b`, 13, 14},
		{"名前 = a", 5, 9},
		{"abc", 10, 3},
		{"abc", -2, 0},
	}
	for _, tt := range tests {
		got := ByteOffset(tt.line, tt.column)
		if got != tt.want {
			t.Errorf("ByteOffset(%q, %d) = %d, want %d", tt.line, tt.column, got, tt.want)
		}
		if back := CharColumn(tt.line, got); tt.column >= 0 && tt.column <= len([]rune(tt.line)) && back != tt.column {
			t.Errorf("CharColumn(ByteOffset(%q, %d)) = %d", tt.line, tt.column, back)
		}
	}
}
