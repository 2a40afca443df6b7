package rules

import (
	"strings"
	"testing"
)

func TestNullAccess_Check(t *testing.T) {
	rule := NewNullAccessRule()
	cfg := defaultRuleConfig(t, rule.Name())

	got := checkCode(rule, "x = order.total + 1", cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	s := got[0]
	if s.Original != "order.total" || s.Column != 4 || s.InstanceNumber != 1 {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if !s.Fixable || !s.HasAlternateForms {
		t.Errorf("null access should be fixable in two forms: %+v", s)
	}
	if !strings.Contains(s.Message, "**order.total**") {
		t.Errorf("message should name the expression: %q", s.Message)
	}
}

func TestNullAccess_Comparison(t *testing.T) {
	rule := NewNullAccessRule()
	cfg := defaultRuleConfig(t, rule.Name())

	got := checkCode(rule, "ok = order.total == 5", cfg)
	if len(got) != 1 || got[0].Original != "order.total" {
		t.Errorf("a comparison reads the property, got %+v", got)
	}
}

func TestNullAccess_NoFinding(t *testing.T) {
	rule := NewNullAccessRule()
	cfg := defaultRuleConfig(t, rule.Name())

	tests := []struct {
		name string
		code string
	}{
		{"if guard", "if (order != null) x = order.total"},
		{"null comparison", "ok = order !== null && order.total > 0"},
		{"typeof guard", "ok = typeof order != 'undefined' && order.total > 0"},
		{"guard on previous line", "if (order != null) {\n    x = order.total\n}"},
		{"optional chaining", "x = order?.total ?? order.count"},
		{"assignment target", "order.total = 5"},
		{"method call", "order.save()"},
		{"declaration", "order.total: number"},
		{"string", `x = "order.total"`},
		{"comment", "x = 1 // order.total"},
		{"wrapped", "x = nullGuard(order.total, 0)"},
		{"method form", `x = order.getOrDefault("total", 0)`},
		{"library", "x = Global.user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkCode(rule, tt.code, cfg, "Global"); len(got) != 0 {
				t.Errorf("expected no suggestions for %q, got %+v", tt.code, got)
			}
		})
	}
}

func TestNullAccess_Fix(t *testing.T) {
	rule := NewNullAccessRule()

	tests := []struct {
		style string
		want  string
	}{
		{"traditional", "x = nullGuard(order.total, DEFAULT_1) + 1"},
		{"method", `x = order.getOrDefault("total", DEFAULT_1) + 1`},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			cfg := defaultRuleConfig(t, rule.Name())
			cfg.FixStyle = tt.style
			code := "x = order.total + 1"

			suggestions := checkCode(rule, code, cfg)
			if len(suggestions) != 1 {
				t.Fatalf("expected 1 suggestion, got %d", len(suggestions))
			}
			got := rule.Fix(code, suggestions[0], cfg)
			if got != tt.want {
				t.Errorf("Fix() = %q, want %q", got, tt.want)
			}
			if again := checkCode(rule, got, cfg); len(again) != 0 {
				t.Errorf("fixed code should not be reported again, got %+v", again)
			}
		})
	}
}

func TestNullAccess_FixLeavesAssignmentTarget(t *testing.T) {
	rule := NewNullAccessRule()
	cfg := defaultRuleConfig(t, rule.Name())

	code := "order.total = order.total + 1"
	suggestions := checkCode(rule, code, cfg)
	if len(suggestions) != 1 || suggestions[0].Column != 14 {
		t.Fatalf("expected the read at column 14, got %+v", suggestions)
	}

	want := "order.total = nullGuard(order.total, DEFAULT_1) + 1"
	if got := rule.Fix(code, suggestions[0], cfg); got != want {
		t.Errorf("Fix() = %q, want %q", got, want)
	}
}
