package rules

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// defaultAltValue is the placeholder scheme used when a rule has no defaultAltValue
const defaultAltValue = "DEFAULT_{instance}"

func isActive(cfg *config.RuleConfig) bool {
	return cfg != nil && cfg.Enabled
}

// finding carries the rule-specific parts of a suggestion. column is a byte
// offset into the line; suggestions report it in characters.
type finding struct {
	column   int
	original string
	instance int
	message  string
	fixable  bool
	altForms bool
}

func newSuggestion(rule Rule, cfg *config.RuleConfig, lineNumber int, line string, f finding) domain.Suggestion {
	severity := domain.Severity(cfg.Severity)
	if !severity.IsValid() {
		severity = domain.SeverityWarning
	}
	label := cfg.Label
	if label == "" {
		label = rule.Name()
	}
	return domain.Suggestion{
		Line:              lineNumber,
		Column:            lexical.CharColumn(line, f.column),
		Message:           f.message,
		Severity:          severity,
		RuleName:          rule.Name(),
		Label:             label,
		Fixable:           f.fixable,
		HasAlternateForms: f.altForms,
		Original:          f.original,
		InstanceNumber:    f.instance,
	}
}

// renderMessage substitutes values into template, or into fallback when the
// template is not configured.
func renderMessage(template, fallback string, values map[string]string) string {
	if template == "" {
		template = fallback
	}
	return lexical.SubstitutePlaceholders(template, values)
}

// placeholderValue renders the default value placeholder for an instance
func placeholderValue(cfg *config.RuleConfig, instance int) string {
	tpl := cfg.DefaultAltValue
	if tpl == "" {
		tpl = defaultAltValue
	}
	return lexical.SubstitutePlaceholders(tpl, map[string]string{"instance": strconv.Itoa(instance)})
}

// fixTemplate picks the template for the configured style, falling back to
// the rule's built-in template.
func fixTemplate(cfg *config.RuleConfig, fallback config.FixTemplates) string {
	style := cfg.Style()
	if tpl := cfg.FixTemplates.ForStyle(style); tpl != "" {
		return tpl
	}
	return fallback.ForStyle(style)
}

// wrapperNames is the list of calls that mark an expression as already
// fixed: the configured skip list plus every call made by a fix template.
func wrapperNames(cfg *config.RuleConfig, fallback config.FixTemplates) []string {
	names := append([]string(nil), cfg.SkipIfWrappedIn...)
	for _, tpl := range []string{
		cfg.FixTemplates.Traditional,
		cfg.FixTemplates.Method,
		fallback.Traditional,
		fallback.Method,
	} {
		names = append(names, lexical.TemplateCallNames(tpl)...)
	}
	return names
}

// isWholeToken reports whether text at pos is not glued to a neighbouring
// identifier or member access.
func isWholeToken(line string, pos, length int) bool {
	if pos > 0 {
		prev := line[pos-1]
		if lexical.IsIdentByte(prev) || prev == '.' {
			return false
		}
	}
	end := pos + length
	if end < len(line) && lexical.IsIdentByte(line[end]) {
		return false
	}
	return true
}

// commentStart returns the offset of a trailing // comment of line, or len(line)
func commentStart(line string) int {
	if idx := strings.Index(lexical.MaskStringLiterals(line), "//"); idx >= 0 {
		return idx
	}
	return len(line)
}

// occurrenceFilter lets a rule veto an occurrence at [pos, end) of a masked line
type occurrenceFilter func(masked string, pos, end int) bool

// replaceUnwrapped replaces every whole-token occurrence of original in line
// that is outside strings and comments and not already wrapped in one of
// wrappers. It returns the new line and the number of replacements.
func replaceUnwrapped(line, original, replacement string, wrappers []string, accept occurrenceFilter) (string, int) {
	masked := lexical.MaskLine(line)
	limit := commentStart(line)

	offsets := lexical.FindOccurrences(line, original)
	count := 0
	// Right to left so earlier offsets stay valid
	for i := len(offsets) - 1; i >= 0; i-- {
		pos := offsets[i]
		end := pos + len(original)
		if pos >= limit || !isWholeToken(line, pos, len(original)) {
			continue
		}
		if lexical.IsWrappedIn(masked, pos, end, wrappers) {
			continue
		}
		if accept != nil && !accept(masked, pos, end) {
			continue
		}
		line = line[:pos] + replacement + line[end:]
		masked = masked[:pos] + lexical.MaskLine(replacement) + masked[end:]
		count++
	}
	return line, count
}

// replaceOnLine applies replaceUnwrapped to the suggestion's line, falling
// back to every line when the suggestion's line no longer holds the text.
func replaceOnLine(code string, s domain.Suggestion, replacement string, wrappers []string, accept occurrenceFilter) string {
	if s.Original == "" {
		return code
	}
	lines := strings.Split(code, "\n")

	if idx := s.Line - 1; idx >= 0 && idx < len(lines) {
		if updated, n := replaceUnwrapped(lines[idx], s.Original, replacement, wrappers, accept); n > 0 {
			lines[idx] = updated
			return strings.Join(lines, "\n")
		}
	}

	changed := false
	for i, line := range lines {
		if updated, n := replaceUnwrapped(line, s.Original, replacement, wrappers, accept); n > 0 {
			lines[i] = updated
			changed = true
		}
	}
	if !changed {
		return code
	}
	return strings.Join(lines, "\n")
}

// trimSpan narrows [start, end) of line to exclude surrounding whitespace
func trimSpan(line string, start, end int) (int, int) {
	for start < end && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	for end > start && (line[end-1] == ' ' || line[end-1] == '\t' || line[end-1] == '\r') {
		end--
	}
	return start, end
}

// nextNonSpace returns the first non-blank byte at or after i, or 0
func nextNonSpace(s string, i int) byte {
	for ; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

// prevNonSpace returns the last non-blank byte before i, or 0
func prevNonSpace(s string, i int) byte {
	for i--; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

// patterns built from configuration are compiled once per process
var patternCache sync.Map

// cachedRegexp compiles expr, reusing earlier compilations. expr must be valid.
func cachedRegexp(expr string) *regexp.Regexp {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(expr)
	patternCache.Store(expr, re)
	return re
}
