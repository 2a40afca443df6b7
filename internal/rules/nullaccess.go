package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// NullAccessRuleName is the configuration key of the null access rule
const NullAccessRuleName = "null-access"

var memberAccessPattern = regexp.MustCompile(`\b([A-Za-z_]\w*)\.([A-Za-z_]\w*)\b`)

var nullAccessTemplates = config.FixTemplates{
	Traditional: "nullGuard({expression}, {defaultAltValue})",
	Method:      `{object}.getOrDefault("{property}", {defaultAltValue})`,
}

const nullAccessMessage = "**{expression}** is accessed without a null check"

// NullAccessRule flags property reads with no visible null guard. The guard
// detection is textual: a matching guard anywhere on the line, or an if guard
// on the line before, suppresses the finding.
type NullAccessRule struct{}

// NewNullAccessRule creates the null access rule
func NewNullAccessRule() *NullAccessRule {
	return &NullAccessRule{}
}

func (r *NullAccessRule) Name() string        { return NullAccessRuleName }
func (r *NullAccessRule) Version() string     { return "1.1.0" }
func (r *NullAccessRule) Description() string { return "Property access without a null guard" }

// DefaultTemplates returns the built-in fix templates
func (r *NullAccessRule) DefaultTemplates() config.FixTemplates {
	return nullAccessTemplates
}

// Check implements Rule
func (r *NullAccessRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	masked := lexical.MaskLine(line)
	previous := ""
	if lineNumber >= 2 && lineNumber-2 < len(lines) {
		previous = lexical.MaskLine(lines[lineNumber-2])
	}
	wrappers := wrapperNames(cfg, nullAccessTemplates)
	seen := make(map[string]bool)

	var suggestions []domain.Suggestion
	for _, m := range memberAccessPattern.FindAllStringSubmatchIndex(masked, -1) {
		start, end := m[0], m[1]
		if lexical.IsPositionInsideString(line, start) {
			continue
		}
		if !isPropertyRead(masked, start, end) {
			continue
		}

		object := line[m[2]:m[3]]
		property := line[m[4]:m[5]]
		expression := line[start:end]
		if seen[expression] || isLibrary(ctx, object) {
			continue
		}
		if usesOptionalChaining(masked, object) || isGuarded(masked, object) || isIfGuarded(previous, object) {
			continue
		}
		if lexical.IsWrappedIn(masked, start, end, wrappers) {
			continue
		}
		seen[expression] = true

		instance := ctx.NextInstance(r.Name())
		values := map[string]string{
			"expression":      expression,
			"object":          object,
			"property":        property,
			"instance":        strconv.Itoa(instance),
			"defaultAltValue": placeholderValue(cfg, instance),
		}
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   start,
			original: expression,
			instance: instance,
			message:  renderMessage(cfg.Suggestion, nullAccessMessage, values),
			fixable:  cfg.AutoFixEnabled,
			altForms: true,
		}))
	}
	return suggestions
}

// isPropertyRead excludes chain tails, method calls, declarations and
// assignment targets.
func isPropertyRead(masked string, start, end int) bool {
	if start > 0 && masked[start-1] == '.' {
		return false
	}
	switch nextNonSpace(masked, end) {
	case '(', ':':
		return false
	case '=':
		i := end
		for i < len(masked) && masked[i] != '=' {
			i++
		}
		return i+1 < len(masked) && masked[i+1] == '='
	}
	return true
}

func isLibrary(ctx *Context, object string) bool {
	if ctx == nil {
		return false
	}
	for _, library := range ctx.Libraries {
		if library == object {
			return true
		}
	}
	return false
}

func usesOptionalChaining(masked, object string) bool {
	return cachedRegexp(`\b` + lexical.EscapeRegex(object) + `\?\.`).MatchString(masked)
}

// isGuarded looks for if (x != ...), x != null, x !== undefined or typeof x != ...
func isGuarded(masked, object string) bool {
	obj := lexical.EscapeRegex(object)
	return cachedRegexp(`\bif\s*\(\s*`+obj+`\s*!==?`).MatchString(masked) ||
		cachedRegexp(`\b`+obj+`\s*!==?\s*(?:null|undefined)\b`).MatchString(masked) ||
		cachedRegexp(`\btypeof\s+`+obj+`\s*!==?`).MatchString(masked)
}

// isIfGuarded reports whether previous opens an if guarding object
func isIfGuarded(previous, object string) bool {
	if !strings.Contains(previous, "if") {
		return false
	}
	return isGuarded(previous, object)
}

// Fix implements Fixer
func (r *NullAccessRule) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	if cfg == nil || !cfg.AutoFixEnabled {
		return code
	}
	dot := strings.LastIndexByte(s.Original, '.')
	if dot <= 0 {
		return code
	}
	replacement := lexical.SubstitutePlaceholders(fixTemplate(cfg, nullAccessTemplates), map[string]string{
		"expression":      s.Original,
		"object":          s.Original[:dot],
		"property":        s.Original[dot+1:],
		"defaultAltValue": placeholderValue(cfg, s.InstanceNumber),
	})
	return replaceOnLine(code, s, replacement, wrapperNames(cfg, nullAccessTemplates), isPropertyRead)
}
