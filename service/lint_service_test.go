package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/testutil"
)

func TestLintService_Analyze(t *testing.T) {
	dir := t.TempDir()
	clean := testutil.WriteFile(t, dir, "clean.expr", `label = "a/b"`)
	dirty := testutil.WriteFile(t, dir, "pricing.expr", "ratio = total / count\nname = order.total")

	svc := NewLintService(config.DefaultConfig())
	resp, err := svc.Analyze(context.Background(), domain.LintRequest{Paths: []string{dirty, clean}})
	testutil.AssertNoError(t, err)

	if len(resp.Files) != 2 {
		t.Fatalf("expected 2 file results, got %d", len(resp.Files))
	}
	if resp.Files[0].FilePath != dirty {
		t.Errorf("files should keep request order, got %s first", resp.Files[0].FilePath)
	}
	if resp.Summary.FilesAnalyzed != 2 || resp.Summary.FilesWithIssues != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Summary.ByRule["division-by-zero"] != 1 || resp.Summary.ByRule["null-access"] != 1 {
		t.Errorf("unexpected per-rule counts: %v", resp.Summary.ByRule)
	}
	if resp.Summary.FixableCount != 2 {
		t.Errorf("expected 2 fixable suggestions, got %d", resp.Summary.FixableCount)
	}
	if len(resp.Files[0].Lines) != 2 {
		t.Errorf("source lines should be kept for reports, got %d", len(resp.Files[0].Lines))
	}
	if resp.Version == "" || resp.GeneratedAt == "" {
		t.Error("response metadata should be set")
	}
}

func TestLintService_Filters(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "rules.expr", "x = order.total\ny = a / b\nz = query(1)")

	tests := []struct {
		name      string
		req       domain.LintRequest
		wantRules []string
	}{
		{
			name:      "engine order",
			req:       domain.LintRequest{},
			wantRules: []string{"division-by-zero", "query-functions", "null-access"},
		},
		{
			name:      "line order",
			req:       domain.LintRequest{SortBy: domain.SortCriteriaLine},
			wantRules: []string{"null-access", "division-by-zero", "query-functions"},
		},
		{
			name:      "minimum severity",
			req:       domain.LintRequest{MinSeverity: domain.SeverityWarning},
			wantRules: []string{"division-by-zero", "null-access"},
		},
		{
			name:      "rule selection",
			req:       domain.LintRequest{Rules: []string{"Query-Functions"}},
			wantRules: []string{"query-functions"},
		},
	}

	svc := NewLintService(config.DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Paths = []string{path}
			resp, err := svc.Analyze(context.Background(), tt.req)
			testutil.AssertNoError(t, err)

			got := testutil.RuleNames(resp.Files[0].Result.Suggestions)
			testutil.AssertEqual(t, tt.wantRules, got)
			if resp.Files[0].Result.Summary.Total != len(tt.wantRules) {
				t.Errorf("summary not recomputed: %d", resp.Files[0].Result.Summary.Total)
			}
		})
	}
}

func TestLintService_MissingFile(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good.expr", "x = a / b")
	missing := filepath.Join(dir, "missing.expr")

	svc := NewLintService(nil)
	resp, err := svc.Analyze(context.Background(), domain.LintRequest{Paths: []string{good, missing}})
	testutil.AssertNoError(t, err)
	if len(resp.Files) != 1 || len(resp.Errors) != 1 {
		t.Errorf("expected 1 result and 1 error, got %d and %v", len(resp.Files), resp.Errors)
	}

	_, err = svc.Analyze(context.Background(), domain.LintRequest{Paths: []string{missing}})
	if !domain.HasCode(err, domain.ErrCodeAnalysis) {
		t.Errorf("expected an analysis error when nothing could be read, got %v", err)
	}
}

func TestLintService_Cache(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "cached.expr", "x = a / b")

	cfg := config.DefaultConfig()
	cfg.Cache.Directory = filepath.Join(dir, "cache")
	cache, err := NewResultCache(cfg)
	testutil.AssertNoError(t, err)

	svc := NewLintService(cfg)
	svc.SetCache(cache)
	req := domain.LintRequest{Paths: []string{path}, UseCache: true}

	first, err := svc.Analyze(context.Background(), req)
	testutil.AssertNoError(t, err)
	if first.Files[0].Cached {
		t.Error("first run cannot be a cache hit")
	}

	second, err := svc.Analyze(context.Background(), req)
	testutil.AssertNoError(t, err)
	if !second.Files[0].Cached {
		t.Error("second run should be served from the cache")
	}
	testutil.AssertEqual(t, first.Files[0].Result.Suggestions, second.Files[0].Result.Suggestions)

	req.UseCache = false
	third, err := svc.Analyze(context.Background(), req)
	testutil.AssertNoError(t, err)
	if third.Files[0].Cached {
		t.Error("cache should be bypassed when the request disables it")
	}
}

func TestLintService_AnalyzeSource(t *testing.T) {
	svc := NewLintService(nil)

	result, err := svc.AnalyzeSource(context.Background(), "<stdin>", "x = a / b")
	testutil.AssertNoError(t, err)
	if result.FilePath != "<stdin>" || result.Result.Summary.Total != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.AnalyzeSource(ctx, "<stdin>", "x = a / b"); err == nil {
		t.Error("a cancelled context should fail")
	}
}
