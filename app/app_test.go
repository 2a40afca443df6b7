package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/testutil"
)

var testTree = map[string]string{
	"main.expr":               "x = a / b",
	"rules/pricing.dsl":       "y = c / d",
	"rules/legacy.rule":       "z = 1",
	"rules/nested/deep.expr":  "w = 2",
	"notes.txt":               "not a source file",
	"node_modules/pkg/x.expr": "ignored = 1",
	"generated/out.expr":      "ignored = 2",
	"café/menu.expr":          "price = 3",
}

func relPaths(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		testutil.AssertNoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestFileHelper_CollectSourceFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, testTree)
	testutil.WriteFile(t, root, ".gitignore", "generated/\n")

	tests := []struct {
		name      string
		helper    *FileHelper
		recursive bool
		include   []string
		exclude   []string
		want      []string
	}{
		{
			name:      "extensions only",
			helper:    NewFileHelper(),
			recursive: true,
			want: []string{
				"café/menu.expr", "generated/out.expr", "main.expr", "node_modules/pkg/x.expr",
				"rules/legacy.rule", "rules/nested/deep.expr", "rules/pricing.dsl",
			},
		},
		{
			name:      "exclude and gitignore",
			helper:    NewFileHelper().WithGitignore(true),
			recursive: true,
			exclude:   []string{"node_modules"},
			want: []string{
				"café/menu.expr", "main.expr", "rules/legacy.rule", "rules/nested/deep.expr", "rules/pricing.dsl",
			},
		},
		{
			name:      "include patterns",
			helper:    NewFileHelper(),
			recursive: true,
			include:   []string{"rules/**/*.expr", "*.dsl"},
			want:      []string{"rules/nested/deep.expr", "rules/pricing.dsl"},
		},
		{
			name:   "non-recursive",
			helper: NewFileHelper(),
			want:   []string{"main.expr"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := tt.helper.CollectSourceFiles([]string{root}, tt.recursive, tt.include, tt.exclude)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.want, relPaths(t, root, files))
		})
	}
}

func TestFileHelper_CollectExplicitFiles(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, testTree)
	main := filepath.Join(root, "main.expr")

	files, err := NewFileHelper().CollectSourceFiles(
		[]string{main, filepath.Join(root, "notes.txt"), main, root},
		false, nil, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, []string{main}, files)

	_, err = NewFileHelper().CollectSourceFiles([]string{filepath.Join(root, "missing")}, true, nil, nil)
	testutil.AssertError(t, err)
}

func TestFileHelper_IsSourceFile(t *testing.T) {
	helper := NewFileHelper()
	tests := []struct {
		path string
		want bool
	}{
		{"pricing.expr", true},
		{"pricing.EXPR", true},
		{"rules/a.dsl", true},
		{"legacy.rule", true},
		{"notes.txt", false},
		{"expr", false},
	}
	for _, tt := range tests {
		if got := helper.IsSourceFile(tt.path); got != tt.want {
			t.Errorf("IsSourceFile(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestFileHelper_FileExists(t *testing.T) {
	root := t.TempDir()
	path := testutil.WriteFile(t, root, "a.expr", "x = 1")
	helper := NewFileHelper()

	exists, err := helper.FileExists(path)
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, exists, "file should exist")

	exists, _ = helper.FileExists(root)
	testutil.AssertFalse(t, exists, "a directory is not a file")

	exists, err = helper.FileExists(filepath.Join(root, "missing.expr"))
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, exists, "missing file should not exist")
}

// fakeLintService records the request it was given
type fakeLintService struct {
	got domain.LintRequest
	err error
}

func (s *fakeLintService) Analyze(ctx context.Context, req domain.LintRequest) (*domain.LintResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.LintResponse{Summary: domain.LintSummary{FilesAnalyzed: len(req.Paths)}}, nil
}

func (s *fakeLintService) AnalyzeSource(ctx context.Context, name, source string) (*domain.FileResult, error) {
	return &domain.FileResult{FilePath: name}, s.err
}

type fakeFormatter struct {
	written bool
}

func (f *fakeFormatter) Format(resp *domain.LintResponse, format domain.OutputFormat) (string, error) {
	return "report", nil
}

func (f *fakeFormatter) Write(resp *domain.LintResponse, format domain.OutputFormat, w io.Writer) error {
	f.written = true
	_, err := io.WriteString(w, "report")
	return err
}

func TestLintUseCase_Execute(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, testTree)

	svc := &fakeLintService{}
	formatter := &fakeFormatter{}
	uc, err := NewLintUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithFileHelper(NewFileHelper()).
		Build()
	testutil.AssertNoError(t, err)

	var out bytes.Buffer
	resp, err := uc.Execute(context.Background(), domain.LintRequest{
		Paths:           []string{root},
		Recursive:       true,
		ExcludePatterns: []string{"node_modules", "generated"},
		OutputWriter:    &out,
	})
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 5, resp.Summary.FilesAnalyzed)
	testutil.AssertEqual(t, 5, len(svc.got.Paths))
	testutil.AssertTrue(t, formatter.written, "report should be written")
	testutil.AssertEqual(t, "report", out.String())
}

func TestLintUseCase_Errors(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "notes.txt", "nothing")

	uc := NewLintUseCase(&fakeLintService{}, nil)
	tests := []struct {
		name string
		req  domain.LintRequest
		code domain.ErrorCode
	}{
		{"no paths", domain.LintRequest{}, domain.ErrCodeInvalidInput},
		{"bad severity", domain.LintRequest{Paths: []string{root}, MinSeverity: "fatal"}, domain.ErrCodeInvalidInput},
		{"missing path", domain.LintRequest{Paths: []string{filepath.Join(root, "nope")}}, domain.ErrCodeFileNotFound},
		{"no source files", domain.LintRequest{Paths: []string{root}, Recursive: true}, domain.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.req)
			if !domain.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	failing := NewLintUseCase(&fakeLintService{err: errors.New("boom")}, nil)
	path := testutil.WriteFile(t, root, "a.expr", "x = 1")
	_, err := failing.Execute(context.Background(), domain.LintRequest{Paths: []string{path}})
	if !domain.HasCode(err, domain.ErrCodeAnalysis) {
		t.Errorf("expected an analysis error, got %v", err)
	}

	if _, err := NewLintUseCaseBuilder().Build(); err == nil {
		t.Error("Build without a service should fail")
	}
}

type fakeFixService struct {
	got domain.FixRequest
}

func (s *fakeFixService) Fix(ctx context.Context, req domain.FixRequest) (*domain.FixResponse, error) {
	s.got = req
	return &domain.FixResponse{}, nil
}

func TestFixUseCase_Execute(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFiles(t, root, testTree)

	svc := &fakeFixService{}
	uc := NewFixUseCase(svc, nil)

	_, err := uc.Execute(context.Background(), domain.FixRequest{
		Paths:     []string{filepath.Join(root, "rules")},
		Recursive: true,
		Form:      domain.FixStyleMethod,
	})
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 3, len(svc.got.Paths))

	_, err = uc.Execute(context.Background(), domain.FixRequest{Paths: []string{root}, Form: "fancy"})
	if !domain.HasCode(err, domain.ErrCodeInvalidInput) {
		t.Errorf("expected invalid input for an unknown form, got %v", err)
	}
}
