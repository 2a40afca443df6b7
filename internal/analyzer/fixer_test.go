package analyzer

import (
	"strings"
	"testing"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/rules"
)

// panickingFixer reports every line and fails to fix it
type panickingFixer struct{ panickingRule }

func (panickingFixer) Check(line string, lineNumber int, lines []string, ctx *rules.Context, cfg *config.RuleConfig) []domain.Suggestion {
	return []domain.Suggestion{{Line: lineNumber, RuleName: "exploding", Fixable: true, Original: line}}
}

func (panickingFixer) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	panic("boom")
}

func TestEngine_FixDivision(t *testing.T) {
	engine := newTestEngine(nil)

	tests := []struct {
		form domain.FixStyle
		want string
	}{
		{domain.FixStyleTraditional, "result = protect(total / count, DEFAULT_1)"},
		{domain.FixStyleMethod, "result = (total / count).protect(DEFAULT_1)"},
	}

	for _, tt := range tests {
		t.Run(string(tt.form), func(t *testing.T) {
			got := engine.ApplyFixes("result = total / count", config.DefaultConfig(), tt.form)
			if got != tt.want {
				t.Errorf("ApplyFixes() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_FixFormOverridesConfiguredStyle(t *testing.T) {
	engine := newTestEngine(nil)
	cfg := config.DefaultConfig()
	cfg.Rules[rules.DivisionByZeroRuleName]["fixStyle"] = "method"

	got := engine.ApplyFixes("result = total / count", cfg, domain.FixStyleTraditional)
	if got != "result = protect(total / count, DEFAULT_1)" {
		t.Errorf("the selected form should win, got %q", got)
	}

	// No form keeps the configured style
	got = engine.ApplyFixes("result = total / count", cfg, "")
	if got != "result = (total / count).protect(DEFAULT_1)" {
		t.Errorf("expected the configured method form, got %q", got)
	}
}

func TestEngine_FixInstanceNumbering(t *testing.T) {
	engine := newTestEngine(nil)
	code := "total = a / b\nratio = c / d\nlast = e / f"
	want := "total = protect(a / b, DEFAULT_1)\nratio = protect(c / d, DEFAULT_2)\nlast = protect(e / f, DEFAULT_3)"

	result := engine.Fix(code, config.DefaultConfig(), domain.FixStyleTraditional)
	if result.Code != want {
		t.Errorf("Fix() =\n%s\nwant\n%s", result.Code, want)
	}
	if result.Applied[rules.DivisionByZeroRuleName] != 3 || result.TotalApplied() != 3 {
		t.Errorf("unexpected applied counts: %v", result.Applied)
	}
}

func TestEngine_FixAcrossRules(t *testing.T) {
	engine := newTestEngine(nil)

	tests := []struct {
		name string
		form domain.FixStyle
		code string
		want string
	}{
		{
			name: "division then null access",
			form: domain.FixStyleTraditional,
			code: "x = order.total / count",
			want: "x = protect(nullGuard(order.total, DEFAULT_1) / count, DEFAULT_1)",
		},
		{
			name: "division then null access, method form",
			form: domain.FixStyleMethod,
			code: "x = order.total / count",
			want: `x = (order.getOrDefault("total", DEFAULT_1) / count).protect(DEFAULT_1)`,
		},
		{
			name: "rename then parenthesize",
			form: domain.FixStyleTraditional,
			code: "var my_var = a + b * c\ny = my_var",
			want: "var myVar = a + (b * c)\ny = myVar",
		},
		{
			name: "block wrapper",
			form: domain.FixStyleTraditional,
			code: "block(\n    x = 5\n)",
			want: "x = 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := engine.ApplyFixes(tt.code, config.DefaultConfig(), tt.form); got != tt.want {
				t.Errorf("ApplyFixes() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestEngine_FixIsIdempotent(t *testing.T) {
	engine := newTestEngine(nil)
	inputs := []string{
		"result = total / count",
		"x = order.total / count",
		"var my_var = a + b * c\ny = my_var",
		"block(\n    x = 5\n)",
		"total = a / b\nratio = c / d\nlast = e / f",
		"y = block(f(a, b))\nz = Global.user + query(1)",
		"if (order != null) {\n    x = order.total\n}",
		"",
	}

	for _, form := range []domain.FixStyle{domain.FixStyleTraditional, domain.FixStyleMethod} {
		for _, code := range inputs {
			cfg := config.DefaultConfig()
			once := engine.ApplyFixes(code, cfg, form)
			twice := engine.Fix(once, cfg, form)
			if twice.Code != once {
				t.Errorf("%s: second pass changed %q into %q", form, once, twice.Code)
			}
			if twice.TotalApplied() != 0 {
				t.Errorf("%s: second pass applied %v", form, twice.Applied)
			}
		}
	}
}

func TestEngine_FixSkipsRulesWithoutAutoFix(t *testing.T) {
	engine := newTestEngine(nil)
	cfg := config.DefaultConfig()
	cfg.Rules[rules.DivisionByZeroRuleName]["autoFixEnabled"] = false

	code := "result = total / count"
	if got := engine.ApplyFixes(code, cfg, domain.FixStyleTraditional); got != code {
		t.Errorf("expected no change, got %q", got)
	}
}

func TestEngine_FixIsolatesPanickingFixer(t *testing.T) {
	registry := rules.NewRegistry(panickingFixer{}, rules.NewDivisionByZeroRule())
	engine := newTestEngine(registry)
	cfg := config.DefaultConfig()
	cfg.Rules["exploding"] = map[string]interface{}{"enabled": true, "autoFixEnabled": true}

	result := engine.Fix("result = total / count", cfg, domain.FixStyleTraditional)
	if result.Code != "result = protect(total / count, DEFAULT_1)" {
		t.Errorf("other fixers should still run, got %q", result.Code)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "exploding") {
		t.Errorf("expected one error naming the rule, got %v", result.Errors)
	}
}
