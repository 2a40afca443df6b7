package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// MathClarityRuleName is the configuration key of the math clarity rule
const MathClarityRuleName = "math-clarity"

// a (+|-) b (*|/) c
var mixedPrecedencePattern = regexp.MustCompile(`(\w+)\s*([+\-])\s*(\w+)\s*([*/])\s*(\w+)`)

const mathClarityMessage = "Add parentheses to make precedence explicit: **{suggested}**"

// MathClarityRule flags additive expressions mixed with a multiplicative
// operand that are not parenthesized.
type MathClarityRule struct{}

// NewMathClarityRule creates the math clarity rule
func NewMathClarityRule() *MathClarityRule {
	return &MathClarityRule{}
}

func (r *MathClarityRule) Name() string    { return MathClarityRuleName }
func (r *MathClarityRule) Version() string { return "1.0.0" }
func (r *MathClarityRule) Description() string {
	return "Mixed-precedence arithmetic without parentheses"
}

// Check implements Rule
func (r *MathClarityRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	masked := lexical.MaskLine(line)
	var suggestions []domain.Suggestion
	for _, m := range findMixedPrecedence(masked) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		original := line[m[0]:m[1]]
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   m[0],
			original: original,
			instance: instance,
			message: renderMessage(cfg.Suggestion, mathClarityMessage, map[string]string{
				"expression": original,
				"suggested":  parenthesize(line, m),
				"instance":   strconv.Itoa(instance),
			}),
			fixable: cfg.AutoFixEnabled,
		}))
	}
	return suggestions
}

// findMixedPrecedence returns the submatch indexes of every unparenthesized
// mixed-precedence expression of masked.
func findMixedPrecedence(masked string) [][]int {
	var out [][]int
	for _, m := range mixedPrecedencePattern.FindAllStringSubmatchIndex(masked, -1) {
		if prevNonSpace(masked, m[0]) == '(' || nextNonSpace(masked, m[1]) == ')' {
			continue
		}
		out = append(out, m)
	}
	return out
}

// parenthesize returns the match with the multiplicative operation wrapped in
// parentheses, keeping the original spacing.
func parenthesize(line string, m []int) string {
	return line[m[0]:m[6]] + "(" + line[m[6]:m[1]] + ")"
}

// Fix implements Fixer
func (r *MathClarityRule) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	if cfg == nil || !cfg.AutoFixEnabled || s.Original == "" {
		return code
	}
	lines := strings.Split(code, "\n")
	idx := s.Line - 1
	if idx < 0 || idx >= len(lines) {
		return code
	}

	line := lines[idx]
	for _, m := range findMixedPrecedence(lexical.MaskLine(line)) {
		if line[m[0]:m[1]] != s.Original {
			continue
		}
		lines[idx] = line[:m[0]] + parenthesize(line, m) + line[m[1]:]
		return strings.Join(lines, "\n")
	}
	return code
}
