package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/lexical"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Color modes accepted by SetColorMode
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// OutputFormatterImpl implements the OutputFormatter interface
type OutputFormatterImpl struct {
	showSource bool

	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	pathColor    *color.Color
	dimColor     *color.Color
}

// NewOutputFormatter creates a new output formatter. Colors follow the
// terminal unless SetColorMode says otherwise.
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{
		showSource:   true,
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow),
		infoColor:    color.New(color.FgCyan),
		pathColor:    color.New(color.Underline),
		dimColor:     color.New(color.Faint),
	}
}

// SetShowSource controls whether text output prints the offending line
func (f *OutputFormatterImpl) SetShowSource(show bool) {
	f.showSource = show
}

// SetColorMode forces colors on or off; "auto" keeps terminal detection
func (f *OutputFormatterImpl) SetColorMode(mode string) {
	for _, c := range []*color.Color{f.errorColor, f.warningColor, f.infoColor, f.pathColor, f.dimColor} {
		switch mode {
		case ColorAlways:
			c.EnableColor()
		case ColorNever:
			c.DisableColor()
		}
	}
}

// WriteJSON writes data as JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML to the writer
func WriteYAML(writer io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// Format renders the response as a string
func (f *OutputFormatterImpl) Format(response *domain.LintResponse, format domain.OutputFormat) (string, error) {
	var sb strings.Builder
	if err := f.Write(response, format, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Write writes the lint response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.LintResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.writeCSV(response, writer)
	case domain.OutputFormatText, "":
		return f.writeText(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// WriteFix writes the outcome of a fix run
func (f *OutputFormatterImpl) WriteFix(response *domain.FixResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText, "":
		return f.writeFixText(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func (f *OutputFormatterImpl) severityColor(s domain.Severity) *color.Color {
	switch s {
	case domain.SeverityError:
		return f.errorColor
	case domain.SeverityWarning:
		return f.warningColor
	default:
		return f.infoColor
	}
}

// writeText writes one block per file with findings, then a summary line
func (f *OutputFormatterImpl) writeText(response *domain.LintResponse, w io.Writer) error {
	for _, file := range response.Files {
		if !file.Result.HasFindings() {
			continue
		}
		fmt.Fprintf(w, "%s\n", f.pathColor.Sprint(file.FilePath))
		for _, s := range file.Result.Suggestions {
			fixable := ""
			if s.Fixable {
				fixable = f.dimColor.Sprint(" (fixable)")
			}
			fmt.Fprintf(w, "  %d:%d  %s  %s  %s%s\n",
				s.Line, s.Column,
				f.severityColor(s.Severity).Sprintf("%-7s", s.Severity),
				s.Message,
				f.dimColor.Sprintf("[%s]", s.RuleName),
				fixable)
			if f.showSource && s.Line >= 1 && s.Line <= len(file.Lines) {
				writeSourceExcerpt(w, file.Lines[s.Line-1], s.Column)
			}
		}
		fmt.Fprintln(w)
	}

	if len(response.Warnings) > 0 {
		fmt.Fprintf(w, "Warnings:\n")
		for _, warning := range response.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
		fmt.Fprintln(w)
	}
	if len(response.Errors) > 0 {
		fmt.Fprintf(w, "Errors:\n")
		for _, e := range response.Errors {
			fmt.Fprintf(w, "  - %s\n", f.errorColor.Sprint(e))
		}
		fmt.Fprintln(w)
	}

	summary := response.Summary
	if summary.TotalSuggestions == 0 {
		fmt.Fprintf(w, "No issues found in %d %s.\n", summary.FilesAnalyzed, plural(summary.FilesAnalyzed, "file"))
		return nil
	}

	fmt.Fprintf(w, "%d %s (%d errors, %d warnings, %d info) in %d of %d %s, %d fixable\n",
		summary.TotalSuggestions, plural(summary.TotalSuggestions, "suggestion"),
		summary.BySeverity[string(domain.SeverityError)],
		summary.BySeverity[string(domain.SeverityWarning)],
		summary.BySeverity[string(domain.SeverityInfo)],
		summary.FilesWithIssues, summary.FilesAnalyzed, plural(summary.FilesAnalyzed, "file"),
		summary.FixableCount)
	return nil
}

// writeSourceExcerpt prints line with a caret under the character column.
// The padding copies tabs and uses display width for everything else.
func writeSourceExcerpt(w io.Writer, line string, column int) {
	line = strings.TrimRight(line, "\r")
	var pad strings.Builder
	for _, r := range line[:lexical.ByteOffset(line, column)] {
		if r == '\t' {
			pad.WriteRune('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	fmt.Fprintf(w, "      %s\n      %s^\n", line, pad.String())
}

var csvHeader = []string{"file", "line", "column", "severity", "rule", "message", "fixable", "instance"}

func (f *OutputFormatterImpl) writeCSV(response *domain.LintResponse, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, file := range response.Files {
		for _, s := range file.Result.Suggestions {
			record := []string{
				file.FilePath,
				strconv.Itoa(s.Line),
				strconv.Itoa(s.Column),
				string(s.Severity),
				s.RuleName,
				s.Message,
				strconv.FormatBool(s.Fixable),
				strconv.Itoa(s.InstanceNumber),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func (f *OutputFormatterImpl) writeFixText(response *domain.FixResponse, w io.Writer) error {
	for _, file := range response.Files {
		if !file.Changed {
			continue
		}
		status := "would fix"
		if file.Written {
			status = "fixed"
		}
		fmt.Fprintf(w, "%s: %s %s\n", f.pathColor.Sprint(file.FilePath), status, formatApplied(file.Applied))
	}
	for _, e := range response.Errors {
		fmt.Fprintf(w, "%s %s\n", f.errorColor.Sprint("error:"), e)
	}
	fmt.Fprintf(w, "%d %s applied across %d changed %s\n",
		response.FixesApplied, plural(response.FixesApplied, "fix"),
		response.FilesChanged, plural(response.FilesChanged, "file"))
	return nil
}

// formatApplied renders per-rule counts as "(null-access: 2, math-clarity: 1)"
func formatApplied(applied map[string]int) string {
	names := make([]string, 0, len(applied))
	for name := range applied {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, applied[name]))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	if strings.HasSuffix(word, "x") {
		return word + "es"
	}
	return word + "s"
}
