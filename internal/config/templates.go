package config

import (
	"strconv"
	"strings"
)

// Strictness represents the analysis strictness level
type Strictness string

const (
	StrictnessRelaxed  Strictness = "relaxed"
	StrictnessStandard Strictness = "standard"
	StrictnessStrict   Strictness = "strict"
)

// StrictnessPreset holds the rule adjustments for a strictness level
type StrictnessPreset struct {
	// DefaultSeverity is written to defaults.severity
	DefaultSeverity string

	// Disabled lists rules turned off at this level
	Disabled []string

	// Severities overrides the severity of individual rules
	Severities map[string]string

	// StrictNaming enables the unique-key naming check
	StrictNaming bool
}

// GetStrictnessPresets returns presets for the strictness levels
func GetStrictnessPresets() map[Strictness]StrictnessPreset {
	return map[Strictness]StrictnessPreset{
		StrictnessRelaxed: {
			DefaultSeverity: "info",
			Disabled:        []string{"math-clarity", "extraneous-blocks", "node-access"},
		},
		StrictnessStandard: {
			DefaultSeverity: "warning",
		},
		StrictnessStrict: {
			DefaultSeverity: "warning",
			Severities: map[string]string{
				"division-by-zero": "error",
				"null-access":      "error",
				"variable-naming":  "error",
				"query-functions":  "warning",
				"unique-key":       "warning",
			},
			StrictNaming: true,
		},
	}
}

// ParseStrictness converts a name to a Strictness, defaulting to standard
func ParseStrictness(s string) Strictness {
	switch Strictness(strings.ToLower(s)) {
	case StrictnessRelaxed:
		return StrictnessRelaxed
	case StrictnessStrict:
		return StrictnessStrict
	default:
		return StrictnessStandard
	}
}

// ApplyStrictness adjusts the rule settings of config to a strictness level
func ApplyStrictness(config *Config, strictness Strictness) {
	preset, ok := GetStrictnessPresets()[strictness]
	if !ok {
		return
	}

	config.Defaults = Resolve(map[string]interface{}{"severity": preset.DefaultSeverity}, config.Defaults)
	for _, name := range preset.Disabled {
		config.SetRuleEnabled(name, false)
	}
	for name, severity := range preset.Severities {
		key := canonicalRuleName(config.Rules, name)
		config.Rules[key] = Resolve(map[string]interface{}{"severity": severity}, config.Rules[key])
	}
	if preset.StrictNaming {
		key := canonicalRuleName(config.Rules, "unique-key")
		config.Rules[key] = Resolve(map[string]interface{}{"strict": true}, config.Rules[key])
	}
}

// GetFullConfigTemplate returns the documented config template as YAML
func GetFullConfigTemplate(strictness Strictness) string {
	preset := GetStrictnessPresets()[strictness]
	if preset.DefaultSeverity == "" {
		preset = GetStrictnessPresets()[StrictnessStandard]
	}

	enabled := func(rule string) string {
		for _, name := range preset.Disabled {
			if name == rule {
				return "false"
			}
		}
		return "true"
	}
	severity := func(rule, fallback string) string {
		if s, ok := preset.Severities[rule]; ok {
			return s
		}
		return fallback
	}

	defaults := DefaultConfig()

	return `# exprlint configuration
# Documentation: https://github.com/ludo-technologies/exprlint

# ============================================================================
# RULE DEFAULTS
# ============================================================================
# Every rule inherits these settings; a rule entry overrides them key by key.
defaults:
  enabled: true
  # Severity: "error", "warning", "info"
  severity: ` + preset.DefaultSeverity + `
  autoFixEnabled: false
  # Fix form: "traditional" (wrapper call) or "method" (method call)
  fixStyle: traditional

# Library node names known to every rule
libraries:` + formatYAMLList(defaults.Libraries, "  ") + `

# ============================================================================
# RULES
# ============================================================================
# Entries are layered onto the built-in rules; set enabled: false to turn one off.
# Messages use {placeholder} tokens.
rules:
  division-by-zero:
    enabled: ` + enabled("division-by-zero") + `
    severity: ` + severity("division-by-zero", "warning") + `
    autoFixEnabled: true
    fixTemplates:
      traditional: "protect({expression}, {defaultAltValue})"
      method: "({expression}).protect({defaultAltValue})"
    # Expressions already inside one of these calls are skipped
    skipIfWrappedIn: [protect, safeDivide]
    # {instance} is replaced by a per-run counter
    defaultAltValue: "DEFAULT_{instance}"

  query-functions:
    enabled: ` + enabled("query-functions") + `
    severity: ` + severity("query-functions", "info") + `
    functionNames: [query, lookup, fetchAll, search]

  unique-key:
    enabled: ` + enabled("unique-key") + `
    severity: ` + severity("unique-key", "info") + `
    # Strict mode checks UniqueKey field names against namePattern
    strict: ` + strconv.FormatBool(preset.StrictNaming) + `
    namePattern: "^[A-Z][a-zA-Z0-9]*ID$"

  variable-naming:
    enabled: ` + enabled("variable-naming") + `
    severity: ` + severity("variable-naming", "warning") + `
    autoFixEnabled: true

  node-access:
    enabled: ` + enabled("node-access") + `
    severity: ` + severity("node-access", "info") + `
    # Empty list falls back to the global libraries
    libraryNodes: []

  null-access:
    enabled: ` + enabled("null-access") + `
    severity: ` + severity("null-access", "warning") + `
    autoFixEnabled: true
    fixTemplates:
      traditional: "nullGuard({expression}, {defaultAltValue})"
      method: '{object}.getOrDefault("{property}", {defaultAltValue})'
    skipIfWrappedIn: [nullGuard, getOrDefault]
    defaultAltValue: "DEFAULT_{instance}"

  math-clarity:
    enabled: ` + enabled("math-clarity") + `
    severity: ` + severity("math-clarity", "info") + `
    autoFixEnabled: true

  extraneous-blocks:
    enabled: ` + enabled("extraneous-blocks") + `
    severity: ` + severity("extraneous-blocks", "info") + `
    autoFixEnabled: true
    # Characters that separate statements inside block(...)
    separatorCharacters: [","]

# ============================================================================
# OUTPUT SETTINGS
# ============================================================================
output:
  # Output format: "text", "json", "yaml", "csv"
  format: text
  # Sort order: "rule" (engine order) or "line"
  sort_by: rule
  show_source: true
  # Colors: "auto", "always", "never"
  color: auto

# ============================================================================
# ANALYSIS SCOPE
# ============================================================================
analysis:
  include_patterns:` + formatYAMLList(defaults.Analysis.IncludePatterns, "    ") + `
  exclude_patterns:` + formatYAMLList(defaults.Analysis.ExcludePatterns, "    ") + `
  recursive: true
  respect_gitignore: true
  # Lines analyzed per file (0 = no limit)
  max_lines: ` + strconv.Itoa(DefaultMaxLines) + `
  max_suggestions_per_rule: ` + strconv.Itoa(DefaultMaxSuggestionsPerRule) + `

performance:
  # Parallel workers (0 = number of CPUs)
  max_goroutines: 0
  timeout_seconds: ` + strconv.Itoa(DefaultTimeoutSeconds) + `

cache:
  enabled: true
  directory: ` + DefaultCacheDirectory + `
`
}

// GetMinimalConfigTemplate returns a minimal config template
func GetMinimalConfigTemplate() string {
	return `# exprlint configuration (minimal)
# See full options: https://github.com/ludo-technologies/exprlint

defaults:
  severity: warning
  fixStyle: traditional

rules:
  division-by-zero:
    enabled: true
  null-access:
    enabled: true
  variable-naming:
    enabled: true

analysis:
  include_patterns: ["**/*.expr", "**/*.dsl"]
`
}

// formatYAMLList formats a string slice as an indented YAML block sequence
func formatYAMLList(items []string, indent string) string {
	if len(items) == 0 {
		return " []"
	}

	var b strings.Builder
	for _, item := range items {
		b.WriteString("\n" + indent + "- " + strconv.Quote(item))
	}
	return b.String()
}
