package domain

import (
	"context"
	"io"
)

// OutputFormat represents the supported output formats
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatCSV  OutputFormat = "csv"
)

// SortCriteria represents the criteria for ordering suggestions in reports
type SortCriteria string

const (
	// SortCriteriaRule keeps the engine order (rule-major, then line-major)
	SortCriteriaRule SortCriteria = "rule"

	// SortCriteriaLine re-sorts suggestions line-major for display
	SortCriteriaLine SortCriteria = "line"
)

// LintRequest represents a request to analyze a set of files
type LintRequest struct {
	// Input files or directories to analyze
	Paths []string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	SortBy       SortCriteria
	ShowSource   bool

	// Filtering
	MinSeverity Severity
	Rules       []string // empty means every enabled rule

	// Configuration
	ConfigPath string

	// Analysis options
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
	UseCache        bool
}

// FileResult holds the analysis result for a single file
type FileResult struct {
	FilePath string         `json:"file_path" yaml:"file_path"`
	Result   AnalysisResult `json:"result" yaml:"result"`
	Cached   bool           `json:"cached,omitempty" yaml:"cached,omitempty"`

	// Source lines, kept for text reports that print the offending line
	Lines []string `json:"-" yaml:"-"`
}

// LintSummary aggregates statistics across all analyzed files
type LintSummary struct {
	FilesAnalyzed    int            `json:"files_analyzed" yaml:"files_analyzed"`
	FilesWithIssues  int            `json:"files_with_issues" yaml:"files_with_issues"`
	TotalSuggestions int            `json:"total_suggestions" yaml:"total_suggestions"`
	FixableCount     int            `json:"fixable" yaml:"fixable"`
	BySeverity       map[string]int `json:"by_severity" yaml:"by_severity"`
	ByRule           map[string]int `json:"by_rule" yaml:"by_rule"`
}

// LintResponse represents the complete multi-file analysis result
type LintResponse struct {
	Files   []FileResult `json:"files" yaml:"files"`
	Summary LintSummary  `json:"summary" yaml:"summary"`

	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
	Version     string `json:"version" yaml:"version"`
	DurationMs  int64  `json:"duration_ms" yaml:"duration_ms"`
}

// FixRequest represents a request to auto-fix a set of files
type FixRequest struct {
	Paths           []string
	Form            FixStyle
	Write           bool // rewrite files in place
	ConfigPath      string
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string
}

// FileFix records the auto-fix outcome for one file
type FileFix struct {
	FilePath string         `json:"file_path" yaml:"file_path"`
	Changed  bool           `json:"changed" yaml:"changed"`
	Applied  map[string]int `json:"applied,omitempty" yaml:"applied,omitempty"`
	Written  bool           `json:"written" yaml:"written"`

	Original string `json:"-" yaml:"-"`
	Fixed    string `json:"-" yaml:"-"`
}

// FixResponse represents the outcome of a multi-file fix run
type FixResponse struct {
	Files        []FileFix `json:"files" yaml:"files"`
	FilesChanged int       `json:"files_changed" yaml:"files_changed"`
	FixesApplied int       `json:"fixes_applied" yaml:"fixes_applied"`
	Errors       []string  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// LintService defines the core business logic for multi-file analysis
type LintService interface {
	// Analyze performs analysis on every file in the request
	Analyze(ctx context.Context, req LintRequest) (*LintResponse, error)

	// AnalyzeSource analyzes in-memory source text
	AnalyzeSource(ctx context.Context, name string, source string) (*FileResult, error)
}

// FixService defines the auto-fix workflow over files
type FixService interface {
	Fix(ctx context.Context, req FixRequest) (*FixResponse, error)
}

// SourceReader defines the file operations needed to collect DSL sources
type SourceReader interface {
	CollectSourceFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsSourceFile(path string) bool
	FileExists(path string) (bool, error)
}

// OutputFormatter defines the interface for formatting analysis results
type OutputFormatter interface {
	// Format renders the response according to the specified format
	Format(response *LintResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *LintResponse, format OutputFormat, writer io.Writer) error
}
