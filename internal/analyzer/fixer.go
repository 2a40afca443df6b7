package analyzer

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/rules"
)

// ApplyFixes returns code with every enabled auto-fix applied in form
func (e *Engine) ApplyFixes(code string, cfg *config.Config, form domain.FixStyle) string {
	return e.Fix(code, cfg, form).Code
}

// Fix applies the fixes of every rule that has autoFixEnabled, one rule at a
// time in registry order. Each rule re-analyzes the code left by the previous
// ones, so a finding that an earlier fix already wrapped is not fixed twice.
// A valid form overrides the configured fixStyle of every rule for the pass.
//
// Fix is idempotent: running it on its own output changes nothing.
func (e *Engine) Fix(code string, cfg *config.Config, form domain.FixStyle) *domain.FixResult {
	result := &domain.FixResult{
		Code:    code,
		Applied: make(map[string]int),
	}

	for _, rule := range e.registry.Rules() {
		fixer, ok := rule.(rules.Fixer)
		if !ok {
			continue
		}
		rc, ok := cfg.RuleConfig(rule.Name())
		if !ok || !rc.Enabled || !rc.AutoFixEnabled {
			continue
		}
		if form.IsValid() {
			rc.FixStyle = string(form)
		}

		lines := strings.Split(result.Code, "\n")
		ctx := rules.NewContext(len(lines), libraries(cfg), nil)
		suggestions, err := e.checkRule(rule, lines, e.lineLimit(len(lines)), ctx, rc)
		if err != nil {
			e.logger().Warn("rule failed", "rule", rule.Name(), "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		for _, s := range suggestions {
			if !s.Fixable {
				continue
			}
			fixed, err := applyFix(fixer, result.Code, s, rc)
			if err != nil {
				e.logger().Warn("fix failed", "rule", rule.Name(), "line", s.Line, "error", err)
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			if fixed != result.Code {
				result.Code = fixed
				result.Applied[rule.Name()]++
			}
		}
	}

	e.logger().Debug("fix pass complete", "applied", result.TotalApplied())
	return result
}

func applyFix(fixer rules.Fixer, code string, s domain.Suggestion, rc *config.RuleConfig) (fixed string, err error) {
	defer func() {
		if r := recover(); r != nil {
			fixed = code
			err = fmt.Errorf("fix %s at line %d failed: %v", fixer.Name(), s.Line, r)
		}
	}()
	return fixer.Fix(code, s, rc), nil
}
