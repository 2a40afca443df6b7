package rules

import (
	"sort"
	"strconv"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/lexical"
)

// NodeAccessRuleName is the configuration key of the node access rule
const NodeAccessRuleName = "node-access"

const nodeAccessMessage = "Direct access to **{object}.{member}**"

// NodeAccessRule reports direct member access on library nodes. The library
// names come from the rule's libraryNodes, or the global libraries when empty.
type NodeAccessRule struct{}

// NewNodeAccessRule creates the node access rule
func NewNodeAccessRule() *NodeAccessRule {
	return &NodeAccessRule{}
}

func (r *NodeAccessRule) Name() string        { return NodeAccessRuleName }
func (r *NodeAccessRule) Version() string     { return "1.0.0" }
func (r *NodeAccessRule) Description() string { return "Direct member access on library nodes" }

type nodeAccess struct {
	start, end int
	library    string
	member     string
}

// Check implements Rule
func (r *NodeAccessRule) Check(line string, lineNumber int, lines []string, ctx *Context, cfg *config.RuleConfig) []domain.Suggestion {
	if !isActive(cfg) {
		return nil
	}

	libraries := cfg.LibraryNodes
	if len(libraries) == 0 && ctx != nil {
		libraries = ctx.Libraries
	}

	masked := lexical.MaskLine(line)
	var accesses []nodeAccess
	for _, library := range libraries {
		if library == "" {
			continue
		}
		pattern := cachedRegexp(`\b` + lexical.EscapeRegex(library) + `\.([A-Za-z_]\w*)`)
		for _, m := range pattern.FindAllStringSubmatchIndex(masked, -1) {
			start, end := m[0], m[1]
			if lexical.IsPositionInsideString(line, start) {
				continue
			}
			if start > 0 && masked[start-1] == '.' {
				continue
			}
			// Library.member: is a declaration
			if nextNonSpace(masked, end) == ':' {
				continue
			}
			accesses = append(accesses, nodeAccess{start: start, end: end, library: library, member: line[m[2]:m[3]]})
		}
	}

	sort.SliceStable(accesses, func(i, j int) bool {
		return accesses[i].start < accesses[j].start
	})

	var suggestions []domain.Suggestion
	for _, a := range accesses {
		instance := ctx.NextInstance(r.Name())
		suggestions = append(suggestions, newSuggestion(r, cfg, lineNumber, line, finding{
			column:   a.start,
			original: line[a.start:a.end],
			instance: instance,
			message: renderMessage(cfg.Suggestion, nodeAccessMessage, map[string]string{
				"object":   a.library,
				"member":   a.member,
				"instance": strconv.Itoa(instance),
			}),
		}))
	}
	return suggestions
}
