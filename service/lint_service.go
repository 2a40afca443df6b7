package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/analyzer"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/log"
	"github.com/ludo-technologies/exprlint/internal/version"
)

// fileTask adapts the analysis of one file to domain.ExecutableTask
type fileTask struct {
	path string
	run  func(ctx context.Context) error
}

func (t *fileTask) Name() string    { return t.path }
func (t *fileTask) IsEnabled() bool { return true }
func (t *fileTask) Execute(ctx context.Context) (interface{}, error) {
	return nil, t.run(ctx)
}

// LintServiceImpl implements the LintService interface
type LintServiceImpl struct {
	config   *config.Config
	engine   *analyzer.Engine
	executor *ParallelExecutorImpl
	cache    *ResultCache
}

// NewLintService creates a lint service for cfg with no progress reporting
func NewLintService(cfg *config.Config) *LintServiceImpl {
	return NewLintServiceWithProgress(cfg, nil)
}

// NewLintServiceWithProgress creates a lint service that reports per-file progress
func NewLintServiceWithProgress(cfg *config.Config, pm domain.ProgressManager) *LintServiceImpl {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &LintServiceImpl{
		config:   cfg,
		engine:   analyzer.NewEngine(analyzer.EngineConfigFrom(cfg), nil),
		executor: NewParallelExecutorWithProgress(&cfg.Performance, pm),
	}
}

// SetCache enables the result cache. A nil cache disables it.
func (s *LintServiceImpl) SetCache(cache *ResultCache) {
	s.cache = cache
}

// Engine returns the engine the service analyzes with
func (s *LintServiceImpl) Engine() *analyzer.Engine {
	return s.engine
}

// Analyze analyzes every file of req in parallel. A file that cannot be read
// is reported in the response's Errors; the others are still analyzed.
func (s *LintServiceImpl) Analyze(ctx context.Context, req domain.LintRequest) (*domain.LintResponse, error) {
	start := time.Now()

	results := make([]*domain.FileResult, len(req.Paths))
	tasks := make([]domain.ExecutableTask, len(req.Paths))
	for i, path := range req.Paths {
		tasks[i] = &fileTask{
			path: path,
			run: func(ctx context.Context) error {
				result, err := s.analyzeFile(ctx, path, req.UseCache)
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			},
		}
	}

	var fileErrors []string
	if err := s.executor.Execute(ctx, tasks); err != nil {
		var aggErr *AggregatedError
		if !errors.As(err, &aggErr) {
			return nil, domain.NewAnalysisError("analysis failed", err)
		}
		fileErrors = aggErr.Messages()
	}

	response := NewLintResponse(results, req)
	response.Errors = fileErrors

	if len(response.Files) == 0 && len(fileErrors) > 0 {
		return nil, domain.NewAnalysisError("no files could be analyzed", errors.New(strings.Join(fileErrors, "; ")))
	}

	response.DurationMs = time.Since(start).Milliseconds()
	log.Debug("analyzed %d files in %dms", response.Summary.FilesAnalyzed, response.DurationMs)
	return response, nil
}

// NewLintResponse applies the filters and sort order of req to results and
// builds the response around them. Nil entries are skipped and each
// result's engine errors become warnings.
func NewLintResponse(results []*domain.FileResult, req domain.LintRequest) *domain.LintResponse {
	response := &domain.LintResponse{
		Files:       make([]domain.FileResult, 0, len(results)),
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}

	for _, result := range results {
		if result == nil {
			continue
		}
		filterResult(result, req)
		for _, e := range result.Result.Errors {
			response.Warnings = append(response.Warnings, fmt.Sprintf("[%s] %s", result.FilePath, e))
		}
		response.Files = append(response.Files, *result)
	}

	response.Summary = summarize(response.Files)
	return response
}

// AnalyzeSource analyzes in-memory source text. The cache is not used.
func (s *LintServiceImpl) AnalyzeSource(ctx context.Context, name string, source string) (*domain.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &domain.FileResult{
		FilePath: name,
		Result:   *s.engine.Analyze(source, s.config),
		Lines:    strings.Split(source, "\n"),
	}, nil
}

// analyzeFile reads and analyzes a single file, consulting the cache first
func (s *LintServiceImpl) analyzeFile(ctx context.Context, path string, useCache bool) (*domain.FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	result := &domain.FileResult{
		FilePath: path,
		Lines:    strings.Split(string(content), "\n"),
	}

	var cache *ResultCache
	if useCache {
		cache = s.cache
	}
	key := cache.Key(content)

	cached, hit, err := cache.Get(key)
	if err != nil {
		log.Warn("cache read failed for %s: %v", path, err)
	}
	if hit {
		result.Result = *cached
		result.Cached = true
		return result, nil
	}

	analysis := s.engine.Analyze(string(content), s.config)
	if err := cache.Put(key, analysis); err != nil {
		log.Warn("cache write failed for %s: %v", path, err)
	}
	result.Result = *analysis
	return result, nil
}

// filterResult drops suggestions below the minimum severity or outside the
// requested rules, re-sorts them and recomputes the summary
func filterResult(result *domain.FileResult, req domain.LintRequest) {
	filtered := make([]domain.Suggestion, 0, len(result.Result.Suggestions))
	for _, sg := range result.Result.Suggestions {
		if req.MinSeverity != "" && sg.Severity.Level() < req.MinSeverity.Level() {
			continue
		}
		if len(req.Rules) > 0 && !containsRule(req.Rules, sg.RuleName) {
			continue
		}
		filtered = append(filtered, sg)
	}

	if req.SortBy == domain.SortCriteriaLine {
		filtered = domain.SortByLine(filtered)
	}

	result.Result.Suggestions = filtered
	result.Result.Summary = domain.NewSummary(filtered)
}

func summarize(files []domain.FileResult) domain.LintSummary {
	summary := domain.LintSummary{
		FilesAnalyzed: len(files),
		BySeverity:    make(map[string]int),
		ByRule:        make(map[string]int),
	}
	for _, f := range files {
		if f.Result.HasFindings() {
			summary.FilesWithIssues++
		}
		for _, sg := range f.Result.Suggestions {
			summary.TotalSuggestions++
			summary.BySeverity[string(sg.Severity)]++
			summary.ByRule[sg.RuleName]++
			if sg.Fixable {
				summary.FixableCount++
			}
		}
	}
	return summary
}
