package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// ExtraneousBlocksRuleName is the configuration key of the extraneous blocks rule
const ExtraneousBlocksRuleName = "extraneous-blocks"

// maxBlockLookahead bounds how many lines a block( wrapper may span
const maxBlockLookahead = 500

var (
	blockCallPattern  = regexp.MustCompile(`\bblock\s*\(`)
	emptyBlockPattern = regexp.MustCompile(`\{\s*\}`)
)

const (
	blockMessage      = "**block(...)** wraps a single statement; remove the wrapper"
	braceMessage      = "Braces around a single statement are unnecessary"
	emptyBlockMessage = "Empty block **{}** has no effect"
)

// ExtraneousBlocksRule reports block(...) wrappers around a single statement,
// lone braces around a single statement line and empty {} blocks. Only the
// block(...) case is fixable.
type ExtraneousBlocksRule struct{}

// NewExtraneousBlocksRule creates the extraneous blocks rule
func NewExtraneousBlocksRule() *ExtraneousBlocksRule {
	return &ExtraneousBlocksRule{}
}

func (r *ExtraneousBlocksRule) Name() string    { return ExtraneousBlocksRuleName }
func (r *ExtraneousBlocksRule) Version() string { return "1.0.0" }
func (r *ExtraneousBlocksRule) Description() string {
	return "Blocks that wrap a single statement or nothing"
}

// Check implements Rule
func (r *ExtraneousBlocksRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	masked := lexical.MaskLine(line)
	separators := cfg.SeparatorCharacters
	if len(separators) == 0 {
		separators = []string{","}
	}

	var suggestions []domain.Suggestion
	emit := func(column int, original, template, fallback string, fixable bool) {
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   column,
			original: original,
			instance: instance,
			message:  renderMessage(template, fallback, map[string]string{"instance": strconv.Itoa(instance)}),
			fixable:  fixable,
		}))
	}

	for _, m := range blockCallPattern.FindAllStringIndex(masked, -1) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		original, statements, ok := scanBlock(lines, lineNumber-1, m[0], m[1]-1, separators)
		if !ok || statements > 1 {
			continue
		}
		emit(m[0], original, cfg.Suggestion, blockMessage, cfg.AutoFixEnabled)
	}

	if col, ok := loneBrace(lines, lineNumber-1, masked); ok {
		emit(col, "{", cfg.ExtraString("braceSuggestion", ""), braceMessage, false)
	}

	for _, m := range emptyBlockPattern.FindAllStringIndex(masked, -1) {
		if lexical.IsPositionInsideString(line, m[0]) {
			continue
		}
		// {} as a value is an empty object or map, not a block
		if strings.IndexByte("=:(,[", prevNonSpace(masked, m[0])) >= 0 {
			continue
		}
		emit(m[0], line[m[0]:m[1]], cfg.ExtraString("emptySuggestion", ""), emptyBlockMessage, false)
	}

	return suggestions
}

// scanBlock follows a block( wrapper starting at lines[idx][start] whose
// open paren is at open, possibly across lines. It returns the wrapper text,
// the number of top-level statements and whether the wrapper closes.
func scanBlock(lines []string, idx, start, open int, separators []string) (string, int, bool) {
	depth := 0
	separatorCount := 0
	hasContent := false

	last := idx + maxBlockLookahead
	if last > len(lines) {
		last = len(lines)
	}

	var text strings.Builder
	for i := idx; i < last; i++ {
		line := lines[i]
		masked := lexical.MaskLine(line)
		from := 0
		if i == idx {
			from = open + 1
		} else {
			text.WriteByte('\n')
		}

		for j := from; j < len(masked); j++ {
			c := masked[j]
			switch c {
			case '(', '[', '{':
				depth++
			case ']', '}':
				if depth > 0 {
					depth--
				}
			case ')':
				if depth == 0 {
					if i == idx {
						text.WriteString(line[start : j+1])
					} else {
						text.WriteString(line[:j+1])
					}
					statements := 0
					if hasContent {
						statements = separatorCount + 1
					}
					return text.String(), statements, true
				}
				depth--
			}
			if depth == 0 && hasSeparatorAt(masked, j, separators) {
				separatorCount++
				continue
			}
			if c != ' ' && c != '\t' && c != '\r' {
				hasContent = true
			}
		}

		if i == idx {
			text.WriteString(line[start:])
		} else {
			text.WriteString(line)
		}
	}
	return "", 0, false
}

func hasSeparatorAt(masked string, j int, separators []string) bool {
	for _, sep := range separators {
		if sep != "" && strings.HasPrefix(masked[j:], sep) {
			return true
		}
	}
	return false
}

// loneBrace reports a line holding only "{" followed by exactly one statement
// line and a closing brace.
func loneBrace(lines []string, idx int, masked string) (int, bool) {
	if strings.TrimSpace(masked) != "{" || idx+2 >= len(lines) {
		return 0, false
	}
	body := strings.TrimSpace(lexical.MaskLine(lines[idx+1]))
	if body == "" || strings.ContainsAny(body, "{}") {
		return 0, false
	}
	switch strings.TrimSpace(lexical.MaskLine(lines[idx+2])) {
	case "}", "};", "},":
		return strings.IndexByte(masked, '{'), true
	}
	return 0, false
}

// Fix replaces a block(...) wrapper with its trimmed content. Brace findings
// are advisory and left unchanged.
func (r *ExtraneousBlocksRule) Fix(code string, s domain.Suggestion, cfg *config.RuleConfig) string {
	if cfg == nil || !cfg.AutoFixEnabled || !blockCallPattern.MatchString(s.Original) {
		return code
	}
	open := strings.IndexByte(s.Original, '(')
	if open < 0 || !strings.HasSuffix(s.Original, ")") {
		return code
	}
	inner := strings.TrimSpace(s.Original[open+1 : len(s.Original)-1])

	pos := anchorOffset(code, s)
	if pos < 0 {
		return code
	}
	return code[:pos] + inner + code[pos+len(s.Original):]
}

// anchorOffset finds s.Original in code, preferring the suggestion's own
// position and falling back to the first occurrence.
func anchorOffset(code string, s domain.Suggestion) int {
	lineStart := 0
	for n := 1; n < s.Line && lineStart >= 0; n++ {
		next := strings.IndexByte(code[lineStart:], '\n')
		if next < 0 {
			lineStart = -1
			break
		}
		lineStart += next + 1
	}
	if lineStart >= 0 {
		line := code[lineStart:]
		if end := strings.IndexByte(line, '\n'); end >= 0 {
			line = line[:end]
		}
		if at := lineStart + lexical.ByteOffset(line, s.Column); strings.HasPrefix(code[at:], s.Original) {
			return at
		}
	}
	return strings.Index(code, s.Original)
}
