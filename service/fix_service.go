package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/analyzer"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/log"
)

// FixServiceImpl implements the FixService interface
type FixServiceImpl struct {
	config   *config.Config
	engine   *analyzer.Engine
	executor *ParallelExecutorImpl
}

// NewFixService creates a fix service for cfg
func NewFixService(cfg *config.Config, pm domain.ProgressManager) *FixServiceImpl {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	executor := NewParallelExecutorWithProgress(&cfg.Performance, pm)
	executor.SetDescription("Fixing files")
	return &FixServiceImpl{
		config:   cfg,
		engine:   analyzer.NewEngine(analyzer.EngineConfigFrom(cfg), nil),
		executor: executor,
	}
}

// Fix applies every enabled auto-fix to each file of req. Files are only
// rewritten when req.Write is set and the content changed.
func (s *FixServiceImpl) Fix(ctx context.Context, req domain.FixRequest) (*domain.FixResponse, error) {
	if req.Form != "" && !req.Form.IsValid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid fix form: %s (must be traditional or method)", req.Form), nil)
	}

	fixes := make([]*domain.FileFix, len(req.Paths))
	notes := make([][]string, len(req.Paths))
	tasks := make([]domain.ExecutableTask, len(req.Paths))
	for i, path := range req.Paths {
		tasks[i] = &fileTask{
			path: path,
			run: func(ctx context.Context) error {
				fix, fixErrors, err := s.fixFile(ctx, path, req)
				if err != nil {
					return err
				}
				fixes[i] = fix
				notes[i] = fixErrors
				return nil
			},
		}
	}

	response := &domain.FixResponse{
		Files: make([]domain.FileFix, 0, len(req.Paths)),
	}
	if err := s.executor.Execute(ctx, tasks); err != nil {
		var aggErr *AggregatedError
		if !errors.As(err, &aggErr) {
			return nil, domain.NewAnalysisError("fix failed", err)
		}
		response.Errors = append(response.Errors, aggErr.Messages()...)
	}

	for i, fix := range fixes {
		if fix == nil {
			continue
		}
		for _, note := range notes[i] {
			response.Errors = append(response.Errors, fmt.Sprintf("[%s] %s", fix.FilePath, note))
		}
		if fix.Changed {
			response.FilesChanged++
		}
		for _, n := range fix.Applied {
			response.FixesApplied += n
		}
		response.Files = append(response.Files, *fix)
	}

	return response, nil
}

// FixSource applies every enabled auto-fix to in-memory source text
func (s *FixServiceImpl) FixSource(source string, form domain.FixStyle) *domain.FixResult {
	return s.engine.Fix(source, s.config, form)
}

func (s *FixServiceImpl) fixFile(ctx context.Context, path string, req domain.FixRequest) (*domain.FileFix, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	original := string(content)
	result := s.engine.Fix(original, s.config, req.Form)

	fix := &domain.FileFix{
		FilePath: path,
		Changed:  result.Code != original,
		Applied:  result.Applied,
		Original: original,
		Fixed:    result.Code,
	}

	if req.Write && fix.Changed {
		if err := writeFileAtomic(path, []byte(result.Code)); err != nil {
			return nil, nil, fmt.Errorf("failed to write file: %w", err)
		}
		fix.Written = true
		log.Debug("rewrote %s (%d fixes)", path, result.TotalApplied())
	}

	return fix, result.Errors, nil
}

// writeFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the original permissions
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".exprlint-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Debug("failed to remove temp file %s: %v", tmp, rmErr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(info.Mode().Perm()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
