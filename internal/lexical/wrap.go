package lexical

import "regexp"

var templateCallPattern = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)

// EnclosingCalls returns the names of the calls whose argument list contains
// pos, innermost first. A grouping parenthesis with no callee yields "".
// masked must have its string literals masked.
func EnclosingCalls(masked string, pos int) []string {
	if pos > len(masked) {
		pos = len(masked)
	}
	var names []string
	depth := 0
	for i := pos - 1; i >= 0; i-- {
		switch masked[i] {
		case ')':
			depth++
		case '(':
			if depth > 0 {
				depth--
				continue
			}
			names = append(names, identBefore(masked, i))
		}
	}
	return names
}

// MethodWrappers returns the names of methods chained onto every group that
// closes after end, innermost first: for "(a / b).protect(0)" and end at the
// close of "a / b" it returns ["protect"].
func MethodWrappers(masked string, end int) []string {
	var names []string
	depth := 0
	for i := end; i < len(masked); i++ {
		switch masked[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
				continue
			}
			if name := methodAfter(masked, i+1); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// IsWrappedIn reports whether the span [start, end) of masked is an argument
// of a call to one of fns, either as fn(...span...) or as (...span...).fn(.
func IsWrappedIn(masked string, start, end int, fns []string) bool {
	if len(fns) == 0 {
		return false
	}
	wanted := make(map[string]bool, len(fns))
	for _, fn := range fns {
		wanted[fn] = true
	}
	for _, name := range EnclosingCalls(masked, start) {
		if wanted[name] {
			return true
		}
	}
	for _, name := range MethodWrappers(masked, end) {
		if wanted[name] {
			return true
		}
	}
	return false
}

// TemplateCallNames returns the function or method names called by a fix
// template, e.g. "protect" for "protect({expression}, {defaultAltValue})".
func TemplateCallNames(template string) []string {
	var names []string
	for _, m := range templateCallPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}

// identBefore returns the identifier ending right before position i, skipping
// whitespace. Only the last dotted segment is returned.
func identBefore(s string, i int) string {
	j := i - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t') {
		j--
	}
	end := j + 1
	for j >= 0 && IsIdentByte(s[j]) {
		j--
	}
	start := j + 1
	if start >= end || !IsIdentStart(s[start]) {
		return ""
	}
	return s[start:end]
}

// methodAfter parses ".name(" starting at i, allowing whitespace, and returns
// name.
func methodAfter(s string, i int) string {
	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != '.' {
		return ""
	}
	i = skipSpaces(s, i+1)
	start := i
	for i < len(s) && IsIdentByte(s[i]) {
		i++
	}
	if start == i || !IsIdentStart(s[start]) {
		return ""
	}
	name := s[start:i]
	i = skipSpaces(s, i)
	if i >= len(s) || s[i] != '(' {
		return ""
	}
	return name
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
