package rules

import (
	"regexp"
	"strconv"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// UniqueKeyRuleName is the configuration key of the unique key rule
const UniqueKeyRuleName = "unique-key"

const defaultKeyNamePattern = `^[A-Z][a-zA-Z0-9]*ID$`

var (
	uniqueKeyCallPattern  = regexp.MustCompile(`\buniqueKey\s*\(`)
	uniqueKeyFieldPattern = regexp.MustCompile(`\bUniqueKey\s*:\s*([A-Za-z_]\w*)`)
	defaultKeyNameRegexp  = regexp.MustCompile(defaultKeyNamePattern)
)

const (
	uniqueKeyMessage       = "**uniqueKey()** generates a new key on every call"
	uniqueKeyNamingMessage = "UniqueKey field **{field}** should match {pattern}"
)

// UniqueKeyRule reports uniqueKey() calls or, in strict mode, UniqueKey
// declarations whose field name does not follow the naming pattern.
type UniqueKeyRule struct{}

// NewUniqueKeyRule creates the unique key rule
func NewUniqueKeyRule() *UniqueKeyRule {
	return &UniqueKeyRule{}
}

func (r *UniqueKeyRule) Name() string    { return UniqueKeyRuleName }
func (r *UniqueKeyRule) Version() string { return "1.1.0" }
func (r *UniqueKeyRule) Description() string {
	return "uniqueKey() usage, or UniqueKey field naming in strict mode"
}

// Check implements Rule
func (r *UniqueKeyRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}
	masked := lexical.MaskLine(line)
	if cfg.Strict {
		return r.checkNaming(line, masked, lineNumber, ctx, cfg)
	}

	var suggestions []domain.Suggestion
	for _, m := range uniqueKeyCallPattern.FindAllStringIndex(masked, -1) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   m[0],
			original: "uniqueKey",
			instance: instance,
			message: renderMessage(cfg.Suggestion, uniqueKeyMessage, map[string]string{
				"instance": strconv.Itoa(instance),
			}),
		}))
	}
	return suggestions
}

func (r *UniqueKeyRule) checkNaming(line, masked string, lineNumber int, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	pattern := defaultKeyNameRegexp
	source := defaultKeyNamePattern
	if cfg.NamePattern != "" {
		if re, err := regexp.Compile(cfg.NamePattern); err == nil {
			pattern, source = re, cfg.NamePattern
		}
	}

	var suggestions []domain.Suggestion
	for _, m := range uniqueKeyFieldPattern.FindAllStringSubmatchIndex(masked, -1) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		field := line[m[2]:m[3]]
		if pattern.MatchString(field) {
			continue
		}
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   m[2],
			original: field,
			instance: instance,
			message: renderMessage(cfg.ExtraString("namingSuggestion", ""), uniqueKeyNamingMessage, map[string]string{
				"field":    field,
				"pattern":  source,
				"instance": strconv.Itoa(instance),
			}),
		}))
	}
	return suggestions
}
