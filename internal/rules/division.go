package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// DivisionByZeroRuleName is the configuration key of the division rule
const DivisionByZeroRuleName = "division-by-zero"

// operand / operand, where the divisor is an identifier or member access
var divisionPattern = regexp.MustCompile(`([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\s*/\s*([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)`)

var divisionTemplates = config.FixTemplates{
	Traditional: "protect({expression}, {defaultAltValue})",
	Method:      "({expression}).protect({defaultAltValue})",
}

const divisionMessage = "Division **{expression}** may divide by zero"

// DivisionByZeroRule flags divisions by a variable that are not protected.
type DivisionByZeroRule struct{}

// NewDivisionByZeroRule creates the division rule
func NewDivisionByZeroRule() *DivisionByZeroRule {
	return &DivisionByZeroRule{}
}

func (r *DivisionByZeroRule) Name() string    { return DivisionByZeroRuleName }
func (r *DivisionByZeroRule) Version() string { return "1.2.0" }
func (r *DivisionByZeroRule) Description() string {
	return "Divisions by a variable that may be zero"
}

// DefaultTemplates returns the built-in fix templates
func (r *DivisionByZeroRule) DefaultTemplates() config.FixTemplates {
	return divisionTemplates
}

// Check implements Rule
func (r *DivisionByZeroRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	masked := lexical.MaskLine(line)
	wrappers := wrapperNames(cfg, divisionTemplates)
	seen := make(map[string]bool)

	var suggestions []domain.Suggestion
	for _, m := range divisionPattern.FindAllStringIndex(masked, -1) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		op := m[0] + strings.IndexByte(masked[m[0]:m[1]], '/')

		start, end := divisionBounds(masked, op)
		if limit := commentStart(line); end > limit {
			end = limit
		}
		start, end = trimSpan(line, start, end)
		if start >= end {
			continue
		}
		expression := line[start:end]
		if seen[expression] {
			continue
		}
		seen[expression] = true

		if lexical.IsWrappedIn(masked, start, end, wrappers) {
			continue
		}

		instance := ctx.NextInstance(r.Name())
		values := map[string]string{
			"expression":      expression,
			"instance":        strconv.Itoa(instance),
			"defaultAltValue": placeholderValue(cfg, instance),
		}
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   start,
			original: expression,
			instance: instance,
			message:  renderMessage(cfg.Suggestion, divisionMessage, values),
			fixable:  cfg.AutoFixEnabled,
			altForms: true,
		}))
	}
	return suggestions
}

// divisionBounds returns the extent of the expression around the operator at
// op: back to the nearest '=', ',' or '(' and forward to the nearest ',', ')'
// or ';', both exclusive, defaulting to the line edges.
func divisionBounds(masked string, op int) (int, int) {
	start := 0
	for i := op - 1; i >= 0; i-- {
		if c := masked[i]; c == '=' || c == ',' || c == '(' {
			start = i + 1
			break
		}
	}
	end := len(masked)
	for i := op + 1; i < len(masked); i++ {
		if c := masked[i]; c == ',' || c == ')' || c == ';' {
			end = i
			break
		}
	}
	return start, end
}

// Fix implements Fixer
func (r *DivisionByZeroRule) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	if cfg == nil || !cfg.AutoFixEnabled {
		return code
	}
	replacement := lexical.SubstitutePlaceholders(fixTemplate(cfg, divisionTemplates), map[string]string{
		"expression":      s.Original,
		"defaultAltValue": placeholderValue(cfg, s.InstanceNumber),
	})
	return replaceOnLine(code, s, replacement, wrapperNames(cfg, divisionTemplates), nil)
}
