package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ludo-technologies/exprlint/app"
	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/log"
	"github.com/ludo-technologies/exprlint/service"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze expression sources and report suggestions",
		Long: `Analyze expression DSL files and report every rule finding.

Directories are walked recursively. Use "-" to read a single source from stdin.

Examples:
  exprlint analyze rules/
  exprlint analyze --format json rules/ > report.json
  exprlint analyze --sort line --min-severity warning pricing.expr
  exprlint analyze --rules division-by-zero,null-access rules/
  cat pricing.expr | exprlint analyze -`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringP("format", "f", "", "Output format: text, json, yaml, csv (default from config)")
	cmd.Flags().Bool("json", false, "Output results as JSON (shorthand for --format json)")
	cmd.Flags().String("sort", "", "Sort suggestions by: rule, line (default from config)")
	cmd.Flags().String("min-severity", "", "Only report suggestions at or above: info, warning, error")
	cmd.Flags().StringSlice("rules", nil, "Only report these rules (comma-separated)")
	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringSlice("include", nil, "Include patterns (replace the configured ones)")
	cmd.Flags().StringSlice("exclude", nil, "Exclude patterns (replace the configured ones)")
	cmd.Flags().Bool("no-recursive", false, "Do not descend into subdirectories")
	cmd.Flags().Bool("no-cache", false, "Ignore and do not update the result cache")
	cmd.Flags().Bool("no-source", false, "Do not print source lines in text output")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	cmd.Flags().String("color", "", "Colorize text output: auto, always, never (default from config)")

	return cmd
}

// buildLintRequest merges the analyze flags onto the configured defaults
func buildLintRequest(cmd *cobra.Command, args []string, cfg *config.Config) (*domain.LintRequest, error) {
	loader := service.NewConfigurationLoader()
	base := loader.RequestFromConfig(cfg)

	format, _ := cmd.Flags().GetString("format")
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		format = string(domain.OutputFormatJSON)
	}
	sortBy, _ := cmd.Flags().GetString("sort")
	minSeverity, _ := cmd.Flags().GetString("min-severity")
	selected, _ := cmd.Flags().GetStringSlice("rules")
	include, _ := cmd.Flags().GetStringSlice("include")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")
	configPath, _ := cmd.Flags().GetString("config")

	req := loader.MergeRequest(base, &domain.LintRequest{
		Paths:           args,
		OutputFormat:    domain.OutputFormat(format),
		SortBy:          domain.SortCriteria(sortBy),
		MinSeverity:     domain.Severity(minSeverity),
		Rules:           selected,
		IncludePatterns: include,
		ExcludePatterns: exclude,
		ConfigPath:      configPath,
	})

	if noRecursive, _ := cmd.Flags().GetBool("no-recursive"); noRecursive {
		req.Recursive = false
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		req.UseCache = false
	}
	if noSource, _ := cmd.Flags().GetBool("no-source"); noSource {
		req.ShowSource = false
	}

	if err := loader.ValidateRequest(req, cfg.RuleNames()); err != nil {
		return nil, err
	}
	return req, nil
}

func newFormatter(cmd *cobra.Command, cfg *config.Config, req *domain.LintRequest, toFile bool) *service.OutputFormatterImpl {
	formatter := service.NewOutputFormatter()
	formatter.SetShowSource(req.ShowSource)

	mode, _ := cmd.Flags().GetString("color")
	if mode == "" {
		mode = cfg.Output.Color
	}
	if toFile {
		mode = service.ColorNever
	}
	formatter.SetColorMode(mode)
	return formatter
}

// newLintService wires the progress bar and, when enabled, the result cache
func newLintService(cmd *cobra.Command, cfg *config.Config, req *domain.LintRequest) (*service.LintServiceImpl, domain.ProgressManager) {
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	pm := service.NewProgressManager(!noProgress && req.OutputFormat == domain.OutputFormatText)

	svc := service.NewLintServiceWithProgress(cfg, pm)
	if req.UseCache {
		cache, err := service.NewResultCache(cfg)
		if err != nil {
			log.Warn("result cache disabled: %v", err)
		} else {
			svc.SetCache(cache)
		}
	}
	return svc, pm
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	req, err := buildLintRequest(cmd, args, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out := cmd.OutOrStdout()
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	req.OutputWriter = out

	svc, pm := newLintService(cmd, cfg, req)
	defer pm.Close()
	formatter := newFormatter(cmd, cfg, req, outputPath != "")

	if len(args) == 1 && args[0] == "-" {
		return analyzeStdin(ctx, cmd.InOrStdin(), svc, formatter, req)
	}

	uc, err := app.NewLintUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithFileHelper(app.NewFileHelper().WithGitignore(cfg.Analysis.RespectGitignore)).
		Build()
	if err != nil {
		return err
	}

	if _, err := uc.Execute(ctx, *req); err != nil {
		return err
	}
	if outputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", outputPath)
	}
	return nil
}

// analyzeStdin analyzes a single source read from r and writes the report
func analyzeStdin(ctx context.Context, r io.Reader, svc *service.LintServiceImpl, formatter domain.OutputFormatter, req *domain.LintRequest) error {
	source, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	uc := app.NewLintUseCase(svc, formatter)
	result, err := uc.AnalyzeSource(ctx, "<stdin>", string(source))
	if err != nil {
		return err
	}

	response := service.NewLintResponse([]*domain.FileResult{result}, *req)
	return formatter.Write(response, req.OutputFormat, req.OutputWriter)
}
