package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// QueryFunctionsRuleName is the configuration key of the query rule
const QueryFunctionsRuleName = "query-functions"

var defaultQueryFunctions = []string{"query", "lookup", "fetchAll", "search"}

const queryMessage = "**{function}()** runs a query on every evaluation"

// QueryFunctionsRule reports calls to functions that run a query.
type QueryFunctionsRule struct{}

// NewQueryFunctionsRule creates the query rule
func NewQueryFunctionsRule() *QueryFunctionsRule {
	return &QueryFunctionsRule{}
}

func (r *QueryFunctionsRule) Name() string    { return QueryFunctionsRuleName }
func (r *QueryFunctionsRule) Version() string { return "1.0.0" }
func (r *QueryFunctionsRule) Description() string {
	return "Calls to functions that run a query on every evaluation"
}

// Check implements Rule
func (r *QueryFunctionsRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	names := cfg.FunctionNames
	if len(names) == 0 {
		names = defaultQueryFunctions
	}
	pattern := callPattern(names)
	if pattern == nil {
		return nil
	}

	masked := lexical.MaskLine(line)
	var suggestions []domain.Suggestion
	for _, m := range pattern.FindAllStringSubmatchIndex(masked, -1) {
		start, end := m[2], m[3]
		if lexical.IsPositionInsideString(line, start) {
			continue
		}
		name := line[start:end]
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   start,
			original: name,
			instance: instance,
			message: renderMessage(cfg.Suggestion, queryMessage, map[string]string{
				"function": name,
				"instance": strconv.Itoa(instance),
			}),
		}))
	}
	return suggestions
}

// callPattern matches a call to any of names, capturing the name
func callPattern(names []string) *regexp.Regexp {
	var alternatives []string
	for _, name := range names {
		if name != "" {
			alternatives = append(alternatives, lexical.EscapeRegex(name))
		}
	}
	if len(alternatives) == 0 {
		return nil
	}
	return cachedRegexp(`\b(` + strings.Join(alternatives, "|") + `)\s*\(`)
}
