package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Fix styles accepted by the fixStyle setting
const (
	FixStyleTraditional = "traditional"
	FixStyleMethod      = "method"
)

// FixTemplates holds the two renderings of a rule's fix
type FixTemplates struct {
	Traditional string `json:"traditional,omitempty" mapstructure:"traditional" yaml:"traditional,omitempty" toml:"traditional,omitempty"`
	Method      string `json:"method,omitempty" mapstructure:"method" yaml:"method,omitempty" toml:"method,omitempty"`
}

// ForStyle returns the template for style, or "" when it is not configured
func (t FixTemplates) ForStyle(style string) string {
	if style == FixStyleMethod {
		return t.Method
	}
	return t.Traditional
}

// RuleConfig is the effective configuration of one rule for one run.
// It is decoded from the merge of the global defaults and the rule override.
type RuleConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Severity    string `mapstructure:"severity"`
	Label       string `mapstructure:"label"`
	Description string `mapstructure:"description"`

	// Suggestion is the message template, with {placeholder} tokens
	Suggestion string `mapstructure:"suggestion"`

	AutoFixEnabled bool         `mapstructure:"autofixenabled"`
	FixStyle       string       `mapstructure:"fixstyle"`
	FixTemplates   FixTemplates `mapstructure:"fixtemplates"`

	// Rule specific settings
	SkipIfWrappedIn     []string `mapstructure:"skipifwrappedin"`
	LibraryNodes        []string `mapstructure:"librarynodes"`
	FunctionNames       []string `mapstructure:"functionnames"`
	DefaultAltValue     string   `mapstructure:"defaultaltvalue"`
	SeparatorCharacters []string `mapstructure:"separatorcharacters"`
	Strict              bool     `mapstructure:"strict"`
	NamePattern         string   `mapstructure:"namepattern"`

	// Extra holds any remaining keys, lower-cased
	Extra map[string]interface{} `mapstructure:",remain"`
}

// Style returns the configured fix style, defaulting to traditional
func (rc *RuleConfig) Style() string {
	if rc.FixStyle == FixStyleMethod {
		return FixStyleMethod
	}
	return FixStyleTraditional
}

// ExtraString returns a string from the extra settings, or fallback
func (rc *RuleConfig) ExtraString(key, fallback string) string {
	if v, ok := rc.Extra[strings.ToLower(key)].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Resolve merges a rule override onto the global defaults. It is a pure,
// shallow merge: the result starts as a copy of defaults and every key of
// override replaces the default value, nested maps included. Keys are
// compared case-insensitively and returned lower-cased.
func Resolve(override, defaults map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(override))
	for k, v := range defaults {
		merged[strings.ToLower(k)] = normalizeValue(v)
	}
	for k, v := range override {
		merged[strings.ToLower(k)] = normalizeValue(v)
	}
	return merged
}

// DecodeRuleConfig decodes a merged settings map into a RuleConfig
func DecodeRuleConfig(settings map[string]interface{}) (*RuleConfig, error) {
	rc := &RuleConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           rc,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to decode rule settings: %w", err)
	}
	return rc, nil
}

// RuleConfig returns the effective configuration of the named rule. A rule
// with no entry in Rules is reported as absent, which callers treat exactly
// like a disabled rule.
func (c *Config) RuleConfig(name string) (*RuleConfig, bool) {
	if c == nil {
		return nil, false
	}
	override, ok := c.lookupRule(name)
	if !ok {
		return nil, false
	}
	rc, err := DecodeRuleConfig(Resolve(override, c.Defaults))
	if err != nil {
		// Validate rejects undecodable settings at load time
		return nil, false
	}
	return rc, true
}

// HasRule reports whether the config carries an entry for the named rule
func (c *Config) HasRule(name string) bool {
	_, ok := c.lookupRule(name)
	return ok
}

func (c *Config) lookupRule(name string) (map[string]interface{}, bool) {
	if c == nil || c.Rules == nil {
		return nil, false
	}
	if override, ok := c.Rules[name]; ok {
		return override, true
	}
	lower := strings.ToLower(name)
	for k, override := range c.Rules {
		if strings.ToLower(k) == lower {
			return override, true
		}
	}
	return nil, false
}

// normalizeValue lower-cases the keys of nested maps so they decode the same
// way whether they came from JSON, YAML or viper.
func normalizeValue(v interface{}) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, inner := range m {
			out[strings.ToLower(k)] = normalizeValue(inner)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, inner := range m {
			out[strings.ToLower(fmt.Sprint(k))] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
