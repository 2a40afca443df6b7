package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/ludo-technologies/exprlint/app"
	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/constants"
	"github.com/ludo-technologies/exprlint/internal/version"
	"github.com/ludo-technologies/exprlint/service"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Quality gate for CI/CD pipelines",
		Long: `Analyze the given paths and fail when findings cross the thresholds.

Exit codes:
  0 - All checks pass
  1 - Threshold(s) violated
  2 - Analysis error (file not found, invalid configuration, etc.)

Examples:
  # Fail on any error-level finding
  exprlint check rules/

  # Fail on warnings too
  exprlint check --fail-on warning rules/

  # Allow at most 10 warnings
  exprlint check --max-warnings 10 rules/

  # JSON output for machine parsing
  exprlint check --json rules/`,
		RunE:          runCheck,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("fail-on", string(domain.SeverityError),
		"Fail on findings at or above this severity: error, warning, info")
	cmd.Flags().Int("max-warnings", -1,
		"Maximum allowed warning-level findings (-1 = unlimited)")
	cmd.Flags().StringSlice("rules", nil,
		"Only check these rules (comma-separated)")
	cmd.Flags().Bool("json", false,
		"Output results as JSON")
	cmd.Flags().Bool("no-cache", false,
		"Ignore and do not update the result cache")
	cmd.Flags().StringP("config", "c", "",
		"Path to config file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return &ExitError{Code: constants.ExitCodeError, Message: "no paths specified"}
	}

	failOn, _ := cmd.Flags().GetString("fail-on")
	maxWarnings, _ := cmd.Flags().GetInt("max-warnings")
	selected, _ := cmd.Flags().GetStringSlice("rules")
	asJSON, _ := cmd.Flags().GetBool("json")
	noCache, _ := cmd.Flags().GetBool("no-cache")

	threshold := domain.Severity(strings.ToLower(failOn))
	if !threshold.IsValid() {
		return &ExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("invalid --fail-on %q", failOn)}
	}

	startTime := time.Now()

	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return &ExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	loader := service.NewConfigurationLoader()
	req := loader.RequestFromConfig(cfg)
	req.Paths = args
	req.Rules = selected
	req.OutputFormat = domain.OutputFormatText
	if err := loader.ValidateRequest(req, cfg.RuleNames()); err != nil {
		return &ExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	pm := service.NewProgressManager(!asJSON)
	defer pm.Close()
	svc := service.NewLintServiceWithProgress(cfg, pm)
	if req.UseCache && !noCache {
		if cache, err := service.NewResultCache(cfg); err == nil {
			svc.SetCache(cache)
		}
	}

	uc, err := app.NewLintUseCaseBuilder().
		WithService(svc).
		WithFileHelper(app.NewFileHelper().WithGitignore(cfg.Analysis.RespectGitignore)).
		Build()
	if err != nil {
		return &ExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	resp, err := uc.Execute(ctx, *req)
	if err != nil {
		return &ExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	result := evaluateCheck(resp, threshold, maxWarnings)
	result.Duration = time.Since(startTime).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)
	result.Version = version.Version

	out := cmd.OutOrStdout()
	if asJSON {
		if err := outputCheckJSON(out, result); err != nil {
			return &ExitError{Code: constants.ExitCodeError, Message: err.Error()}
		}
	} else {
		outputCheckText(out, result)
	}

	if !result.Passed {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// evaluateCheck turns a lint response into gate violations
func evaluateCheck(resp *domain.LintResponse, threshold domain.Severity, maxWarnings int) *domain.CheckResult {
	result := &domain.CheckResult{
		Passed:     true,
		ExitCode:   constants.ExitCodeSuccess,
		Violations: []domain.CheckViolation{},
		Summary: domain.CheckSummary{
			FilesAnalyzed:    resp.Summary.FilesAnalyzed,
			TotalSuggestions: resp.Summary.TotalSuggestions,
			BySeverity:       resp.Summary.BySeverity,
		},
	}

	for _, file := range resp.Files {
		for _, s := range file.Result.Suggestions {
			if s.Severity.Level() < threshold.Level() {
				continue
			}
			result.Violations = append(result.Violations, domain.CheckViolation{
				Rule:     s.RuleName,
				Severity: string(s.Severity),
				Message:  s.Message,
				Location: fmt.Sprintf("%s:%d:%d", file.FilePath, s.Line, s.Column),
			})
		}
	}

	warnings := resp.Summary.BySeverity[string(domain.SeverityWarning)]
	if maxWarnings >= 0 && warnings > maxWarnings {
		result.Violations = append(result.Violations, domain.CheckViolation{
			Rule:      "max-warnings",
			Severity:  string(domain.SeverityError),
			Message:   fmt.Sprintf("%d warnings exceed the allowed maximum", warnings),
			Actual:    strconv.Itoa(warnings),
			Threshold: strconv.Itoa(maxWarnings),
		})
	}

	result.Summary.TotalViolations = len(result.Violations)
	if len(result.Violations) > 0 {
		result.Passed = false
		result.ExitCode = constants.ExitCodeFindings
	}
	return result
}

func outputCheckJSON(w io.Writer, result *domain.CheckResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func outputCheckText(w io.Writer, result *domain.CheckResult) {
	for _, v := range result.Violations {
		if v.Location != "" {
			fmt.Fprintf(w, "%s: %s [%s] %s\n", v.Location, v.Severity, v.Rule, v.Message)
		} else {
			fmt.Fprintf(w, "%s [%s] %s (actual %s, max %s)\n", v.Severity, v.Rule, v.Message, v.Actual, v.Threshold)
		}
	}

	if result.Passed {
		fmt.Fprintf(w, "Check passed: %d files, %d suggestions, no violations\n",
			result.Summary.FilesAnalyzed, result.Summary.TotalSuggestions)
		return
	}
	fmt.Fprintf(w, "Check failed: %d violations in %d files\n",
		result.Summary.TotalViolations, result.Summary.FilesAnalyzed)
}
