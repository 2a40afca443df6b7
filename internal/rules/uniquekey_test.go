package rules

import (
	"strings"
	"testing"
)

func TestUniqueKey_Usage(t *testing.T) {
	rule := NewUniqueKeyRule()
	cfg := defaultRuleConfig(t, rule.Name())

	got := checkCode(rule, "id = uniqueKey()\nname = \"uniqueKey()\"\nUniqueKey: orderId", cfg)
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
	if got[0].Line != 1 || got[0].Column != 5 {
		t.Errorf("unexpected position %d:%d", got[0].Line, got[0].Column)
	}
}

func TestUniqueKey_StrictNaming(t *testing.T) {
	rule := NewUniqueKeyRule()
	cfg := defaultRuleConfig(t, rule.Name())
	cfg.Strict = true

	code := "UniqueKey: orderId\nUniqueKey: OrderID\nid = uniqueKey()\nUniqueKey : customer_id"
	got := checkCode(rule, code, cfg)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %+v", len(got), got)
	}
	if got[0].Original != "orderId" || got[0].Column != 11 {
		t.Errorf("unexpected first finding: %+v", got[0])
	}
	if !strings.Contains(got[0].Message, "**orderId**") || !strings.Contains(got[0].Message, "ID$") {
		t.Errorf("naming message should name the field and pattern: %q", got[0].Message)
	}
	if got[1].Original != "customer_id" || got[1].InstanceNumber != 2 {
		t.Errorf("unexpected second finding: %+v", got[1])
	}
}

func TestUniqueKey_CustomPattern(t *testing.T) {
	rule := NewUniqueKeyRule()
	cfg := defaultRuleConfig(t, rule.Name())
	cfg.Strict = true
	cfg.NamePattern = "^[a-z]+$"

	if got := checkCode(rule, "UniqueKey: order", cfg); len(got) != 0 {
		t.Errorf("field matching the custom pattern should pass, got %+v", got)
	}
	if got := checkCode(rule, "UniqueKey: OrderID", cfg); len(got) != 1 {
		t.Errorf("field failing the custom pattern should be reported, got %d", len(got))
	}
}
