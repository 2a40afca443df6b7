// Package rules implements the detectors and fixers run by the analyzer.
//
// Every rule works on one line at a time, with the whole document available
// for lookahead. Rules hold no state: per-run data such as instance counters
// lives on the Context created for each analysis.
package rules

import (
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
)

// Rule defines the interface that all rules must implement.
type Rule interface {
	// Name returns the stable key used to look up configuration.
	Name() string

	// Version is informational.
	Version() string

	// Description returns a one-line summary of what the rule detects.
	Description() string

	// Check returns the suggestions for one line. lineNumber is 1-indexed and
	// lines holds the whole document. A nil or disabled cfg yields nothing.
	Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion
}

// Fixer is implemented by rules that can rewrite their findings.
type Fixer interface {
	Rule

	// Fix rewrites the occurrence behind s in code and returns the new code.
	// It returns code unchanged when auto-fix is disabled or nothing applies.
	Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string
}

// FormFixer is implemented by fixers offering the two fix renderings.
type FormFixer interface {
	Fixer

	// DefaultTemplates are used when the configuration has no template for
	// the selected style.
	DefaultTemplates() config.FixTemplates
}

// Context is the per-run state shared by every rule of one analysis.
type Context struct {
	// TotalLines is the number of lines in the document
	TotalLines int

	// Libraries is the global list of library node names
	Libraries []string

	// Options holds caller-supplied settings
	Options map[string]interface{}

	counters map[string]int
}

// NewContext creates the context for one analysis run.
func NewContext(totalLines int, libraries []string, options map[string]interface{}) *Context {
	return &Context{
		TotalLines: totalLines,
		Libraries:  libraries,
		Options:    options,
		counters:   make(map[string]int),
	}
}

// NextInstance increments and returns the instance counter of rule.
func (c *Context) NextInstance(rule string) int {
	if c == nil {
		return 0
	}
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	c.counters[rule]++
	return c.counters[rule]
}

// Instances returns how many instances rule has numbered so far.
func (c *Context) Instances(rule string) int {
	if c == nil {
		return 0
	}
	return c.counters[rule]
}

// Registry holds rules in registration order.
type Registry struct {
	rules []Rule
}

// NewRegistry creates a registry holding rules in the given order.
func NewRegistry(rules ...Rule) *Registry {
	return &Registry{rules: rules}
}

// DefaultRegistry returns the built-in rules in their fixed order.
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewDivisionByZeroRule(),
		NewQueryFunctionsRule(),
		NewUniqueKeyRule(),
		NewVariableNamingRule(),
		NewNodeAccessRule(),
		NewNullAccessRule(),
		NewMathClarityRule(),
		NewExtraneousBlocksRule(),
	)
}

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Names returns the registered rule names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name()
	}
	return names
}

// Lookup finds a rule by name, ignoring case.
func (r *Registry) Lookup(name string) (Rule, bool) {
	for _, rule := range r.rules {
		if strings.EqualFold(rule.Name(), name) {
			return rule, true
		}
	}
	return nil, false
}

// Kind describes what a rule offers: "fixable (two forms)", "fixable" or "advisory".
func Kind(rule Rule) string {
	switch rule.(type) {
	case FormFixer:
		return "fixable (two forms)"
	case Fixer:
		return "fixable"
	default:
		return "advisory"
	}
}
