package rules

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// VariableNamingRuleName is the configuration key of the naming rule
const VariableNamingRuleName = "variable-naming"

var (
	declarationPattern = regexp.MustCompile(`\b(?:var|let|const|local)\s+([A-Za-z_]\w*)`)
	assignmentPattern  = regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*=`)
)

const namingMessage = "Variable **{name}** should be camelCase: {suggested}"

// VariableNamingRule flags variables bound with a name that is not camelCase.
type VariableNamingRule struct{}

// NewVariableNamingRule creates the naming rule
func NewVariableNamingRule() *VariableNamingRule {
	return &VariableNamingRule{}
}

func (r *VariableNamingRule) Name() string    { return VariableNamingRuleName }
func (r *VariableNamingRule) Version() string { return "1.0.1" }
func (r *VariableNamingRule) Description() string {
	return "Variables should be declared in camelCase"
}

// Check implements Rule
func (r *VariableNamingRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	masked := lexical.MaskLine(line)
	var bindings [][]int
	for _, m := range declarationPattern.FindAllStringSubmatchIndex(masked, -1) {
		bindings = append(bindings, []int{m[2], m[3]})
	}
	if m := assignmentPattern.FindStringSubmatchIndex(masked); m != nil && !isComparison(masked, m[1]) {
		bindings = append(bindings, []int{m[2], m[3]})
	}

	seen := make(map[string]bool)
	var suggestions []domain.Suggestion
	for _, b := range bindings {
		if lexical.IsPositionInsideString(line, b[0]) {
			continue
		}
		name := line[b[0]:b[1]]
		if seen[name] || !needsRename(name) {
			continue
		}
		seen[name] = true

		suggested := lexical.ToCamelCase(name)
		if suggested == "" || suggested == name {
			continue
		}
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   b[0],
			original: name,
			instance: instance,
			message: renderMessage(cfg.Suggestion, namingMessage, map[string]string{
				"name":      name,
				"suggested": suggested,
				"instance":  strconv.Itoa(instance),
			}),
			fixable: cfg.AutoFixEnabled,
		}))
	}
	return suggestions
}

// isComparison reports whether the '=' ending at end is part of '==' or '=>'
func isComparison(masked string, end int) bool {
	return end < len(masked) && (masked[end] == '=' || masked[end] == '>')
}

func needsRename(name string) bool {
	return strings.Contains(name, "_") || unicode.IsUpper(rune(name[0]))
}

// Fix renames every whole-word use of the variable outside strings and line
// comments. Member accesses such as obj.name are left alone, and the fix is
// skipped when the camelCase name is already used in code.
func (r *VariableNamingRule) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	if cfg == nil || !cfg.AutoFixEnabled || s.Original == "" {
		return code
	}
	target := lexical.ToCamelCase(s.Original)
	if target == "" || target == s.Original {
		return code
	}

	lines := strings.Split(code, "\n")
	if usesWord(lines, target) {
		return code
	}

	pattern := lexical.WordBoundaryPattern(s.Original)
	changed := false
	for i, line := range lines {
		masked := lexical.MaskLine(line)
		matches := pattern.FindAllStringIndex(masked, -1)
		for j := len(matches) - 1; j >= 0; j-- {
			start, end := matches[j][0], matches[j][1]
			if start > 0 && masked[start-1] == '.' {
				continue
			}
			line = line[:start] + target + line[end:]
			changed = true
		}
		lines[i] = line
	}
	if !changed {
		return code
	}
	return strings.Join(lines, "\n")
}

// usesWord reports whether word appears as a whole token in code
func usesWord(lines []string, word string) bool {
	pattern := lexical.WordBoundaryPattern(word)
	for _, line := range lines {
		if pattern.MatchString(lexical.MaskLine(line)) {
			return true
		}
	}
	return false
}
