package domain

import "sort"

// Severity represents the importance of a suggestion
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid reports whether s is one of the known severities
func (s Severity) IsValid() bool {
	switch s {
	case SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Level returns the severity as an integer for comparison (higher is more severe)
func (s Severity) Level() int {
	switch s {
	case SeverityInfo:
		return 1
	case SeverityWarning:
		return 2
	case SeverityError:
		return 3
	default:
		return 2
	}
}

// FixStyle selects one of the two textual renderings of a fix
type FixStyle string

const (
	// FixStyleTraditional renders fixes as function calls: protect(expr, d)
	FixStyleTraditional FixStyle = "traditional"

	// FixStyleMethod renders fixes as chained calls: (expr).protect(d)
	FixStyleMethod FixStyle = "method"
)

// IsValid reports whether f is one of the known fix styles
func (f FixStyle) IsValid() bool {
	return f == FixStyleTraditional || f == FixStyleMethod
}

// Suggestion represents a single finding produced by a rule
type Suggestion struct {
	// Location within the analyzed source
	Line   int `json:"line" yaml:"line" msgpack:"line"`    // 1-indexed
	Column int `json:"column" yaml:"column" msgpack:"col"` // 0-indexed character offset within the line

	Message  string   `json:"message" yaml:"message" msgpack:"msg"`
	Severity Severity `json:"severity" yaml:"severity" msgpack:"sev"`
	RuleName string   `json:"rule" yaml:"rule" msgpack:"rule"`
	Label    string   `json:"label" yaml:"label" msgpack:"label"`

	Fixable           bool `json:"fixable" yaml:"fixable" msgpack:"fix"`
	HasAlternateForms bool `json:"has_alternate_forms" yaml:"has_alternate_forms" msgpack:"alt"`

	// Original is the exact source text the fix anchors on
	Original string `json:"original,omitempty" yaml:"original,omitempty" msgpack:"orig"`

	// InstanceNumber is a per-rule, per-run occurrence counter starting at 1
	InstanceNumber int `json:"instance" yaml:"instance" msgpack:"n"`
}

// AnalysisSummary provides aggregate statistics for one analysis run
type AnalysisSummary struct {
	Total      int            `json:"total" yaml:"total" msgpack:"total"`
	BySeverity map[string]int `json:"by_severity" yaml:"by_severity" msgpack:"by_sev"`
}

// AnalysisResult is the outcome of analyzing one document.
//
// Suggestions are in rule-major order: every finding of the first registered
// rule (in line order), then every finding of the second rule, and so on.
// Use SortByLine for a line-major view.
type AnalysisResult struct {
	Suggestions []Suggestion    `json:"suggestions" yaml:"suggestions" msgpack:"s"`
	Summary     AnalysisSummary `json:"summary" yaml:"summary" msgpack:"sum"`

	// Errors holds rule failures that were isolated during the run
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty" msgpack:"err"`
}

// NewSummary computes the summary for a list of suggestions
func NewSummary(suggestions []Suggestion) AnalysisSummary {
	summary := AnalysisSummary{
		Total:      len(suggestions),
		BySeverity: make(map[string]int),
	}
	for _, s := range suggestions {
		summary.BySeverity[string(s.Severity)]++
	}
	return summary
}

// ForRule returns the suggestions produced by the named rule, in order
func (r *AnalysisResult) ForRule(name string) []Suggestion {
	var out []Suggestion
	for _, s := range r.Suggestions {
		if s.RuleName == name {
			out = append(out, s)
		}
	}
	return out
}

// HasFindings reports whether the run produced any suggestion
func (r *AnalysisResult) HasFindings() bool {
	return len(r.Suggestions) > 0
}

// SortByLine returns a copy of the suggestions in line-major order.
// Ties keep the engine's rule-major order.
func SortByLine(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Column < sorted[j].Column
	})
	return sorted
}

// FixResult reports the outcome of an auto-fix pass
type FixResult struct {
	Code string `json:"code" yaml:"code"`

	// Applied counts the fixes that changed the code, per rule
	Applied map[string]int `json:"applied" yaml:"applied"`

	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// TotalApplied returns the number of fixes applied across all rules
func (r *FixResult) TotalApplied() int {
	total := 0
	for _, n := range r.Applied {
		total += n
	}
	return total
}
