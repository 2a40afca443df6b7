// Package lexical provides the line-level text utilities the rules are built on:
// string-literal masking, regex escaping, whole-word matching and literal
// placeholder substitution. None of these functions fail; malformed input
// degrades to best-effort results.
package lexical

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// literalMask reports, for each of the first n bytes of line, whether the byte
// lies inside a quoted literal. Delimiters count as inside. A quote is escaped
// only when the byte right before it is a backslash.
func literalMask(line string, n int) []bool {
	if n > len(line) {
		n = len(line)
	}
	inside := make([]bool, n)
	var quote byte
	for i := 0; i < n; i++ {
		c := line[i]
		if quote != 0 {
			inside[i] = true
			if c == quote && !isEscaped(line, i) {
				quote = 0
			}
			continue
		}
		if (c == '"' || c == '\'') && !isEscaped(line, i) {
			quote = c
			inside[i] = true
		}
	}
	return inside
}

func isEscaped(line string, i int) bool {
	return i > 0 && line[i-1] == '\\'
}

// MaskStringLiterals returns line with every byte of every single- or
// double-quoted literal (delimiters included) replaced by a space. The result
// has the same length as line, so columns stay valid. An unterminated literal
// is masked through the end of the line.
func MaskStringLiterals(line string) string {
	mask := literalMask(line, len(line))
	out := []byte(line)
	for i, inside := range mask {
		if inside {
			out[i] = ' '
		}
	}
	return string(out)
}

// IsPositionInsideString reports whether position lands inside a string
// literal of line. It agrees with MaskStringLiterals.
func IsPositionInsideString(line string, position int) bool {
	if position < 0 || position >= len(line) {
		return false
	}
	return literalMask(line, position+1)[position]
}

// MaskLineComment blanks a trailing // comment. The input must already have
// its string literals masked.
func MaskLineComment(masked string) string {
	idx := strings.Index(masked, "//")
	if idx < 0 {
		return masked
	}
	return masked[:idx] + strings.Repeat(" ", len(masked)-idx)
}

// MaskLine masks string literals and the trailing comment of line.
func MaskLine(line string) string {
	return MaskLineComment(MaskStringLiterals(line))
}

// EscapeRegex escapes the regex metacharacters . * + ? ^ $ { } ( ) | [ ] \
// so s can be embedded literally in a pattern.
func EscapeRegex(s string) string {
	return regexp.QuoteMeta(s)
}

// WordBoundaryPattern returns a regex matching word as a whole token. Word
// boundaries are only asserted on edges that are identifier characters.
func WordBoundaryPattern(word string) *regexp.Regexp {
	pattern := EscapeRegex(word)
	if word != "" && IsIdentByte(word[0]) {
		pattern = `\b` + pattern
	}
	if word != "" && IsIdentByte(word[len(word)-1]) {
		pattern += `\b`
	}
	return regexp.MustCompile(pattern)
}

// CharColumn converts a byte offset within line to a character offset.
// Offsets past the end count the characters of the whole line.
func CharColumn(line string, offset int) int {
	if offset > len(line) {
		offset = len(line)
	}
	if offset <= 0 {
		return 0
	}
	return utf8.RuneCountInString(line[:offset])
}

// ByteOffset converts a character column within line back to a byte offset,
// clamped to len(line).
func ByteOffset(line string, column int) int {
	if column <= 0 {
		return 0
	}
	n := 0
	for i := range line {
		if n == column {
			return i
		}
		n++
	}
	return len(line)
}

// SubstitutePlaceholders replaces every literal {key} in template with
// values[key]. Keys are applied in sorted order. Values are inserted verbatim;
// no regex or $-expansion is performed on them.
func SubstitutePlaceholders(template string, values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := template
	for _, k := range keys {
		result = strings.ReplaceAll(result, "{"+k+"}", values[k])
	}
	return result
}

// FindOccurrences returns the start offsets of every non-overlapping
// occurrence of text in line that does not begin inside a string literal.
func FindOccurrences(line, text string) []int {
	if text == "" {
		return nil
	}
	var offsets []int
	for from := 0; from <= len(line)-len(text); {
		idx := strings.Index(line[from:], text)
		if idx < 0 {
			break
		}
		pos := from + idx
		if !IsPositionInsideString(line, pos) {
			offsets = append(offsets, pos)
		}
		from = pos + len(text)
	}
	return offsets
}

// IsIdentByte reports whether c can appear in an identifier.
func IsIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// IsIdentStart reports whether c can start an identifier.
func IsIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ToCamelCase converts an identifier to lower camelCase: underscores are
// removed, the segment following each underscore is capitalized and the first
// letter is lowered. SCREAMING_SNAKE names are lowered before joining.
func ToCamelCase(name string) string {
	if strings.ToUpper(name) == name {
		name = strings.ToLower(name)
	}

	var b strings.Builder
	for _, segment := range strings.Split(name, "_") {
		if segment == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(strings.ToLower(segment[:1]) + segment[1:])
			continue
		}
		b.WriteString(strings.ToUpper(segment[:1]) + segment[1:])
	}
	return b.String()
}
