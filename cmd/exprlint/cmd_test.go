package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/constants"
	"github.com/ludo-technologies/exprlint/internal/testutil"
	"github.com/spf13/cobra"
)

// execute runs cmd with args and returns what it wrote to stdout
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCmd_FlagsExist(t *testing.T) {
	cmd := analyzeCmd()

	expectedFlags := []string{"format", "json", "sort", "min-severity", "rules", "config", "output",
		"include", "exclude", "no-recursive", "no-cache", "no-source", "no-progress", "color"}
	for _, flagName := range expectedFlags {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
}

func TestAnalyzeCmd_ShortFlags(t *testing.T) {
	cmd := analyzeCmd()

	shortFlags := map[string]string{
		"f": "format",
		"o": "output",
		"c": "config",
	}

	for short, long := range shortFlags {
		flag := cmd.Flags().ShorthandLookup(short)
		if flag == nil || flag.Name != long {
			t.Errorf("Missing short flag -%s for --%s", short, long)
		}
	}
}

func TestAnalyzeCmd_NoPathsError(t *testing.T) {
	if _, err := execute(t, analyzeCmd()); err == nil {
		t.Error("Expected error when no paths specified")
	}
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pricing.expr", "x = a / b\ny = order.total\n")

	out, err := execute(t, analyzeCmd(), "--json", "--no-cache", dir)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var resp domain.LintResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if resp.Summary.FilesAnalyzed != 1 || resp.Summary.TotalSuggestions != 2 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
}

func TestAnalyzeCmd_Stdin(t *testing.T) {
	cmd := analyzeCmd()
	cmd.SetIn(strings.NewReader("total = a / b\n"))

	out, err := execute(t, cmd, "--format", "text", "--no-cache", "--color", "never", "-")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	testutil.AssertContains(t, out, "<stdin>")
	testutil.AssertContains(t, out, "[division-by-zero]")
}

func TestAnalyzeCmd_UnknownRule(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a.expr", "x = 1\n")

	_, err := execute(t, analyzeCmd(), "--rules", "divison-by-zero", "--no-cache", dir)
	if err == nil || !strings.Contains(err.Error(), "division-by-zero") {
		t.Errorf("expected a suggestion for the misspelled rule, got %v", err)
	}
}

func TestFixCmd_FlagsExist(t *testing.T) {
	cmd := fixCmd()

	for _, flagName := range []string{"form", "write", "dry-run", "print", "format", "config", "no-recursive", "no-progress"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
	if flag := cmd.Flags().ShorthandLookup("w"); flag == nil || flag.Name != "write" {
		t.Error("Missing short flag -w for --write")
	}
}

func TestFixCmd_Write(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "pricing.expr", "x = a / b\n")

	out, err := execute(t, fixCmd(), "--write", "--no-progress", path)
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	testutil.AssertContains(t, out, "1 fix applied")
	testutil.AssertEqual(t, testutil.ReadFile(t, path), "x = protect(a / b, DEFAULT_1)\n")
}

func TestFixCmd_DryRunLeavesFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "pricing.expr", "x = a / b\n")

	out, err := execute(t, fixCmd(), "--print", "--no-progress", path)
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	testutil.AssertContains(t, out, "would fix")
	testutil.AssertContains(t, out, "x = protect(a / b, DEFAULT_1)")
	testutil.AssertEqual(t, testutil.ReadFile(t, path), "x = a / b\n")
}

func TestFixCmd_Stdin(t *testing.T) {
	cmd := fixCmd()
	cmd.SetIn(strings.NewReader("x = a / b"))

	out, err := execute(t, cmd, "--form", "method", "-")
	if err != nil {
		t.Fatalf("fix failed: %v", err)
	}
	testutil.AssertEqual(t, out, "x = (a / b).protect(DEFAULT_1)")
}

func TestFixCmd_InvalidForm(t *testing.T) {
	cmd := fixCmd()
	cmd.SetIn(strings.NewReader("x = 1"))

	if _, err := execute(t, cmd, "--form", "fancy", "-"); err == nil {
		t.Error("expected an error for an unknown form")
	}
}

func TestFixCmd_WriteAndDryRunConflict(t *testing.T) {
	if _, err := execute(t, fixCmd(), "--write", "--dry-run", "x.expr"); err == nil {
		t.Error("expected --write and --dry-run to be rejected together")
	}
}

func TestCheckCmd_FlagsExist(t *testing.T) {
	cmd := checkCmd()

	for _, flagName := range []string{"fail-on", "max-warnings", "rules", "json", "no-cache", "config"} {
		if cmd.Flags().Lookup(flagName) == nil {
			t.Errorf("Missing expected flag: --%s", flagName)
		}
	}
	if flag := cmd.Flags().Lookup("max-warnings"); flag.DefValue != "-1" {
		t.Errorf("Expected default max-warnings to be '-1', got '%s'", flag.DefValue)
	}
}

func TestCheckCmd_NoPathsError(t *testing.T) {
	_, err := execute(t, checkCmd())

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != constants.ExitCodeError {
		t.Errorf("expected exit code %d, got %v", constants.ExitCodeError, err)
	}
}

func TestCheckCmd_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pricing.expr", "x = a / b\n")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"warnings pass by default", nil, constants.ExitCodeSuccess},
		{"fail on warnings", []string{"--fail-on", "warning"}, constants.ExitCodeFindings},
		{"warning budget exceeded", []string{"--max-warnings", "0"}, constants.ExitCodeFindings},
		{"warning budget kept", []string{"--max-warnings", "1"}, constants.ExitCodeSuccess},
		{"invalid threshold", []string{"--fail-on", "fatal"}, constants.ExitCodeError},
		{"missing path", []string{filepath.Join(dir, "missing")}, constants.ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--json", "--no-cache"}, tt.args...)
			if len(tt.args) == 0 || !strings.Contains(tt.args[len(tt.args)-1], "missing") {
				args = append(args, dir)
			}

			_, err := execute(t, checkCmd(), args...)
			code := constants.ExitCodeSuccess
			var exitErr *ExitError
			if errors.As(err, &exitErr) {
				code = exitErr.Code
			} else if err != nil {
				t.Fatalf("unexpected error type: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (err: %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestCheckCmd_JSONReport(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "pricing.expr", "x = a / b\n")

	out, _ := execute(t, checkCmd(), "--json", "--no-cache", "--fail-on", "warning", dir)

	var result domain.CheckResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Passed || len(result.Violations) != 1 {
		t.Fatalf("expected one violation, got %+v", result)
	}
	v := result.Violations[0]
	testutil.AssertEqual(t, v.Rule, "division-by-zero")
	testutil.AssertTrue(t, strings.Contains(v.Location, "pricing.expr:1:"), "location should name the file and line: "+v.Location)
}

func TestExitError_Error(t *testing.T) {
	err := &ExitError{Code: 1, Message: "test error"}
	if err.Error() != "test error" {
		t.Errorf("Error() should return message, got '%s'", err.Error())
	}
}

func TestRulesCmd_JSON(t *testing.T) {
	out, err := execute(t, rulesCmd(), "--json")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}

	var infos []ruleInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(infos) != 8 {
		t.Fatalf("expected 8 rules, got %d", len(infos))
	}
	testutil.AssertEqual(t, infos[0].Name, "division-by-zero")
	testutil.AssertEqual(t, infos[0].Kind, "fixable (two forms)")
	testutil.AssertEqual(t, infos[len(infos)-1].Name, "extraneous-blocks")
}

func TestRulesCmd_Text(t *testing.T) {
	out, err := execute(t, rulesCmd())
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	testutil.AssertContains(t, out, "RULE")
	testutil.AssertContains(t, out, "null-access")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, versionCmd())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	testutil.AssertContains(t, out, "exprlint version")

	out, err = execute(t, versionCmd(), "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("incomplete build info: %v", info)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"analyze", "fix", "check", "init", "rules", "version"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.PersistentFlags().ShorthandLookup("v") == nil {
		t.Error("missing persistent -v flag")
	}
}
