// Package analyzer drives the rules over a document and applies their fixes.
//
// Analysis is rule-major: every finding of the first registered rule, in line
// order, comes before any finding of the next rule. Reports that want a
// line-major view re-sort with domain.SortByLine.
package analyzer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/log"
	"github.com/ludo-technologies/exprlint/internal/rules"
)

// EngineConfig holds the limits applied to each analysis run
type EngineConfig struct {
	// MaxLines bounds the number of lines checked per document (0 = no limit)
	MaxLines int

	// MaxSuggestionsPerRule caps the findings kept per rule and run (0 = no limit)
	MaxSuggestionsPerRule int

	// Logger receives rule failures. Nil uses the package logger.
	Logger *slog.Logger
}

// DefaultEngineConfig returns the default limits
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		MaxLines:              config.DefaultMaxLines,
		MaxSuggestionsPerRule: config.DefaultMaxSuggestionsPerRule,
	}
}

// EngineConfigFrom builds the engine limits from the analysis section of cfg
func EngineConfigFrom(cfg *config.Config) *EngineConfig {
	ec := DefaultEngineConfig()
	if cfg != nil {
		ec.MaxLines = cfg.Analysis.MaxLines
		ec.MaxSuggestionsPerRule = cfg.Analysis.MaxSuggestionsPerRule
	}
	return ec
}

// Engine runs a rule registry over documents. It holds no per-run state and
// is safe for concurrent use.
type Engine struct {
	config   *EngineConfig
	registry *rules.Registry
}

// NewEngine creates an engine. A nil config uses the default limits and a nil
// registry the built-in rules.
func NewEngine(config *EngineConfig, registry *rules.Registry) *Engine {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if registry == nil {
		registry = rules.DefaultRegistry()
	}
	return &Engine{
		config:   config,
		registry: registry,
	}
}

// Registry returns the rules run by the engine
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

func (e *Engine) logger() *slog.Logger {
	if e.config.Logger != nil {
		return e.config.Logger
	}
	return log.Logger()
}

// Analyze runs every enabled rule over every line of code. A rule with no
// configuration entry is skipped. A rule that panics is logged, reported in
// the result's Errors and skipped; the other rules still run.
func (e *Engine) Analyze(code string, cfg *config.Config) *domain.AnalysisResult {
	lines := strings.Split(code, "\n")
	limit := e.lineLimit(len(lines))

	result := &domain.AnalysisResult{
		Suggestions: make([]domain.Suggestion, 0),
	}
	if limit < len(lines) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("only the first %d of %d lines were analyzed", limit, len(lines)))
	}

	ctx := rules.NewContext(len(lines), libraries(cfg), nil)
	for _, rule := range e.registry.Rules() {
		rc, ok := cfg.RuleConfig(rule.Name())
		if !ok || !rc.Enabled {
			continue
		}

		suggestions, err := e.checkRule(rule, lines, limit, ctx, rc)
		if err != nil {
			e.logger().Warn("rule failed", "rule", rule.Name(), "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Suggestions = append(result.Suggestions, suggestions...)
	}

	result.Summary = domain.NewSummary(result.Suggestions)
	e.logger().Debug("analysis complete", "lines", len(lines), "suggestions", result.Summary.Total)
	return result
}

// checkRule runs one rule over the first limit lines. A panic inside the rule
// is turned into an error and its partial findings are dropped.
func (e *Engine) checkRule(rule rules.Rule, lines []string, limit int, ctx *rules.Context, rc *config.RuleConfig) (suggestions []domain.Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = fmt.Errorf("rule %s failed: %v", rule.Name(), r)
		}
	}()

	for i := 0; i < limit; i++ {
		suggestions = append(suggestions, rule.Check(lines[i], i+1, lines, ctx, rc)...)
		if n := e.config.MaxSuggestionsPerRule; n > 0 && len(suggestions) >= n {
			e.logger().Debug("suggestion limit reached", "rule", rule.Name(), "line", i+1)
			return suggestions[:n], nil
		}
	}
	return suggestions, nil
}

func (e *Engine) lineLimit(total int) int {
	if e.config.MaxLines > 0 && total > e.config.MaxLines {
		return e.config.MaxLines
	}
	return total
}

func libraries(cfg *config.Config) []string {
	if cfg == nil {
		return nil
	}
	return cfg.Libraries
}
