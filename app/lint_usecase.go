package app

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/exprlint/domain"
)

// LintUseCase orchestrates the analysis workflow: validate, collect files,
// analyze, write the report
type LintUseCase struct {
	service    domain.LintService
	fileHelper *FileHelper
	formatter  domain.OutputFormatter
}

// NewLintUseCase creates a new lint use case
func NewLintUseCase(service domain.LintService, formatter domain.OutputFormatter) *LintUseCase {
	return &LintUseCase{
		service:    service,
		fileHelper: NewFileHelper(),
		formatter:  formatter,
	}
}

// Execute performs the complete analysis workflow. The report is written to
// req.OutputWriter when both it and a formatter are set.
func (uc *LintUseCase) Execute(ctx context.Context, req domain.LintRequest) (*domain.LintResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	files, err := ResolveFilePaths(
		uc.fileHelper,
		req.Paths,
		req.Recursive,
		req.IncludePatterns,
		req.ExcludePatterns,
	)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no source files found in the specified paths", nil)
	}
	req.Paths = files

	response, err := uc.service.Analyze(ctx, req)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}

	if req.OutputWriter != nil && uc.formatter != nil {
		if err := uc.formatter.Write(response, req.OutputFormat, req.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write report", err)
		}
	}

	return response, nil
}

// AnalyzeSource analyzes in-memory source text, e.g. read from stdin
func (uc *LintUseCase) AnalyzeSource(ctx context.Context, name, source string) (*domain.FileResult, error) {
	result, err := uc.service.AnalyzeSource(ctx, name, source)
	if err != nil {
		return nil, domain.NewAnalysisError("analysis failed", err)
	}
	return result, nil
}

func (uc *LintUseCase) validateRequest(req domain.LintRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.MinSeverity != "" && !req.MinSeverity.IsValid() {
		return fmt.Errorf("invalid minimum severity: %s", req.MinSeverity)
	}
	return nil
}

// LintUseCaseBuilder provides a builder pattern for creating LintUseCase
type LintUseCaseBuilder struct {
	service    domain.LintService
	fileHelper *FileHelper
	formatter  domain.OutputFormatter
}

// NewLintUseCaseBuilder creates a new builder
func NewLintUseCaseBuilder() *LintUseCaseBuilder {
	return &LintUseCaseBuilder{}
}

// WithService sets the lint service
func (b *LintUseCaseBuilder) WithService(service domain.LintService) *LintUseCaseBuilder {
	b.service = service
	return b
}

// WithFileHelper sets the file helper
func (b *LintUseCaseBuilder) WithFileHelper(fileHelper *FileHelper) *LintUseCaseBuilder {
	b.fileHelper = fileHelper
	return b
}

// WithFormatter sets the report formatter
func (b *LintUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *LintUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the LintUseCase with the configured dependencies
func (b *LintUseCaseBuilder) Build() (*LintUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("lint service is required")
	}

	uc := &LintUseCase{
		service:    b.service,
		fileHelper: b.fileHelper,
		formatter:  b.formatter,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	return uc, nil
}
