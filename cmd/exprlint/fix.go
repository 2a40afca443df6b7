package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/ludo-technologies/exprlint/app"
	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/service"
	"github.com/spf13/cobra"
)

func fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path...]",
		Short: "Apply the automatic fixes of every enabled rule",
		Long: `Rewrite fixable findings. Nothing is written unless --write is given;
without it, fix reports what would change.

Use "-" to fix a source read from stdin; the fixed code goes to stdout.

Examples:
  exprlint fix rules/
  exprlint fix --write rules/
  exprlint fix --write --form method pricing.expr
  cat pricing.expr | exprlint fix -`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFix,
	}

	cmd.Flags().String("form", "", "Fix form: traditional, method (default: each rule's fixStyle)")
	cmd.Flags().BoolP("write", "w", false, "Rewrite files in place")
	cmd.Flags().Bool("dry-run", false, "Report what would change without writing (default)")
	cmd.Flags().Bool("print", false, "Print the fixed code of every changed file")
	cmd.Flags().StringP("format", "f", "text", "Summary format: text, json, yaml")
	cmd.Flags().StringP("config", "c", "", "Path to config file")
	cmd.Flags().Bool("no-recursive", false, "Do not descend into subdirectories")
	cmd.Flags().Bool("no-progress", false, "Disable the progress bar")
	cmd.MarkFlagsMutuallyExclusive("write", "dry-run")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	form, _ := cmd.Flags().GetString("form")
	write, _ := cmd.Flags().GetBool("write")
	printFixed, _ := cmd.Flags().GetBool("print")
	format, _ := cmd.Flags().GetString("format")
	noRecursive, _ := cmd.Flags().GetBool("no-recursive")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	fixForm := domain.FixStyle(form)
	if form != "" && !fixForm.IsValid() {
		return fmt.Errorf("invalid --form %q (must be traditional or method)", form)
	}

	pm := service.NewProgressManager(!noProgress && format == string(domain.OutputFormatText))
	defer pm.Close()
	svc := service.NewFixService(cfg, pm)

	if len(args) == 1 && args[0] == "-" {
		return fixStdin(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), svc, fixForm)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	uc := app.NewFixUseCase(svc, app.NewFileHelper().WithGitignore(cfg.Analysis.RespectGitignore))
	resp, err := uc.Execute(ctx, domain.FixRequest{
		Paths:           args,
		Form:            fixForm,
		Write:           write,
		Recursive:       cfg.Analysis.Recursive && !noRecursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if printFixed && domain.OutputFormat(format) == domain.OutputFormatText {
		for _, f := range resp.Files {
			if f.Changed {
				fmt.Fprintf(out, "==> %s <==\n%s\n", f.FilePath, f.Fixed)
			}
		}
	}

	formatter := service.NewOutputFormatter()
	return formatter.WriteFix(resp, domain.OutputFormat(format), out)
}

// fixStdin writes the fixed source to out and any isolated failures to errOut
func fixStdin(in io.Reader, out, errOut io.Writer, svc *service.FixServiceImpl, form domain.FixStyle) error {
	source, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	result := svc.FixSource(string(source), form)
	for _, e := range result.Errors {
		fmt.Fprintf(errOut, "warning: %s\n", e)
	}
	_, err = io.WriteString(out, result.Code)
	return err
}
