package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default host settings
const (
	// DefaultOutputFormat is the report format used when none is configured
	DefaultOutputFormat = "text"

	// DefaultSortBy keeps the engine order (rule-major)
	DefaultSortBy = "rule"

	// DefaultMaxLines bounds the number of lines analyzed per source. 0 disables the limit.
	DefaultMaxLines = 20000

	// DefaultMaxSuggestionsPerRule bounds the findings kept per rule and source
	DefaultMaxSuggestionsPerRule = 1000

	// DefaultTimeoutSeconds is the per-run timeout for multi-file analysis
	DefaultTimeoutSeconds = 300

	// DefaultCacheDirectory is relative to the working directory
	DefaultCacheDirectory = ".exprlint/cache"
)

// ConfigEnvVar names the environment variable holding a fallback config path
const ConfigEnvVar = "EXPRLINT_CONFIG"

// Config represents the main configuration structure
type Config struct {
	// Defaults are the settings every rule inherits
	Defaults map[string]interface{} `json:"defaults" mapstructure:"-" yaml:"defaults" toml:"defaults"`

	// Rules maps a rule name to its override settings. A rule without an
	// entry is disabled.
	Rules map[string]map[string]interface{} `json:"rules" mapstructure:"-" yaml:"rules" toml:"rules"`

	// Libraries lists the globally known library node names
	Libraries []string `json:"libraries" mapstructure:"-" yaml:"libraries" toml:"libraries"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output" toml:"output"`

	// Analysis holds file collection and engine limits
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis" yaml:"analysis" toml:"analysis"`

	// Performance holds concurrency settings for multi-file runs
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance" toml:"performance"`

	// Cache holds the per-file result cache settings
	Cache CacheConfig `json:"cache" mapstructure:"cache" yaml:"cache" toml:"cache"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `json:"format" mapstructure:"format" yaml:"format" toml:"format"`

	// SortBy specifies how to sort suggestions: rule, line
	SortBy string `json:"sort_by" mapstructure:"sort_by" yaml:"sort_by" toml:"sort_by"`

	// ShowSource prints the offending source line under each text finding
	ShowSource bool `json:"show_source" mapstructure:"show_source" yaml:"show_source" toml:"show_source"`

	// Color controls ANSI colouring of text output: auto, always, never
	Color string `json:"color" mapstructure:"color" yaml:"color" toml:"color"`
}

// AnalysisConfig holds general analysis configuration
type AnalysisConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns" toml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns"`

	// Recursive controls whether to analyze directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive" toml:"recursive"`

	// RespectGitignore skips files matched by .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore" toml:"respect_gitignore"`

	// MaxLines is the maximum number of lines analyzed per source (0 = no limit)
	MaxLines int `json:"max_lines" mapstructure:"max_lines" yaml:"max_lines" toml:"max_lines"`

	// MaxSuggestionsPerRule caps findings per rule and source (0 = no limit)
	MaxSuggestionsPerRule int `json:"max_suggestions_per_rule" mapstructure:"max_suggestions_per_rule" yaml:"max_suggestions_per_rule" toml:"max_suggestions_per_rule"`
}

// PerformanceConfig holds concurrency settings
type PerformanceConfig struct {
	// MaxGoroutines bounds parallel file analysis (0 = number of CPUs)
	MaxGoroutines int `json:"max_goroutines" mapstructure:"max_goroutines" yaml:"max_goroutines" toml:"max_goroutines"`

	// TimeoutSeconds bounds a whole run (0 = no timeout)
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory" toml:"directory"`
}

// DefaultConfig returns the default configuration: the embedded rule set
// plus the host defaults.
func DefaultConfig() *Config {
	defaults, rules, libraries := mustLoadDefaultRules()

	return &Config{
		Defaults:  defaults,
		Rules:     rules,
		Libraries: libraries,
		Output: OutputConfig{
			Format:     DefaultOutputFormat,
			SortBy:     DefaultSortBy,
			ShowSource: true,
			Color:      "auto",
		},
		Analysis: AnalysisConfig{
			IncludePatterns: []string{"**/*.expr", "**/*.dsl", "**/*.rule"},
			ExcludePatterns: []string{
				".git",
				"node_modules",
				"vendor",
				"dist",
				"build",
				".exprlint",
			},
			Recursive:             true,
			RespectGitignore:      true,
			MaxLines:              DefaultMaxLines,
			MaxSuggestionsPerRule: DefaultMaxSuggestionsPerRule,
		},
		Performance: PerformanceConfig{
			MaxGoroutines:  0,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Directory: DefaultCacheDirectory,
		},
	}
}

// RuleNames returns the names of the rules carrying an entry, sorted
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy whose rule maps can be modified independently
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Defaults = Resolve(nil, c.Defaults)
	out.Rules = make(map[string]map[string]interface{}, len(c.Rules))
	for name, settings := range c.Rules {
		out.Rules[name] = Resolve(nil, settings)
	}
	out.Libraries = append([]string(nil), c.Libraries...)
	out.Analysis.IncludePatterns = append([]string(nil), c.Analysis.IncludePatterns...)
	out.Analysis.ExcludePatterns = append([]string(nil), c.Analysis.ExcludePatterns...)
	return &out
}

// SetRuleEnabled toggles a rule, creating an entry when needed
func (c *Config) SetRuleEnabled(name string, enabled bool) {
	if c.Rules == nil {
		c.Rules = make(map[string]map[string]interface{})
	}
	key := name
	for k := range c.Rules {
		if strings.EqualFold(k, name) {
			key = k
			break
		}
	}
	c.Rules[key] = Resolve(map[string]interface{}{"enabled": enabled}, c.Rules[key])
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// With no explicit path the file is discovered from targetPath upward.
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads a configuration file and layers it onto the defaults
func loadConfigFromFile(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Slices replace the defaults instead of merging element-wise
	if v.IsSet("analysis.include_patterns") {
		config.Analysis.IncludePatterns = v.GetStringSlice("analysis.include_patterns")
	}
	if v.IsSet("analysis.exclude_patterns") {
		config.Analysis.ExcludePatterns = v.GetStringSlice("analysis.exclude_patterns")
	}
	if v.IsSet("libraries") {
		config.Libraries = v.GetStringSlice("libraries")
	}

	if v.IsSet("defaults") {
		config.Defaults = Resolve(v.GetStringMap("defaults"), config.Defaults)
	}

	if v.IsSet("rules") {
		for name, raw := range v.GetStringMap("rules") {
			settings, ok := raw.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid configuration: rules.%s must be a mapping", name)
			}
			key := canonicalRuleName(config.Rules, name)
			config.Rules[key] = Resolve(settings, config.Rules[key])
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// canonicalRuleName maps a lower-cased name read by viper back to the key
// already present in rules, if any.
func canonicalRuleName(rules map[string]map[string]interface{}, name string) string {
	for k := range rules {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// configCandidates are the file names recognised during discovery, in priority order
var configCandidates = []string{
	"exprlint.yaml",
	"exprlint.yml",
	"exprlint.json",
	"exprlint.toml",
	".exprlint.yaml",
	".exprlint.yml",
	".exprlint.json",
	".exprlint.toml",
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the file or directory being analyzed.
func findDefaultConfig(targetPath string) string {
	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, configCandidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	if config := searchConfigInDirectory(".", configCandidates); config != "" {
		return config
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, "exprlint"), configCandidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		if config := searchConfigInDirectory(filepath.Join(home, ".config", "exprlint"), configCandidates); config != "" {
			return config
		}
		if config := searchConfigInDirectory(home, configCandidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(ConfigEnvVar); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

var validSeverities = map[string]bool{
	"error":   true,
	"warning": true,
	"info":    true,
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if err := validateRuleSettings("defaults", c.Defaults); err != nil {
		return err
	}

	known := builtinRuleNames()
	for _, name := range c.RuleNames() {
		if !containsFold(known, name) {
			msg := fmt.Sprintf("unknown rule '%s'", name)
			if hint := SuggestRuleName(name, known); hint != "" {
				msg += fmt.Sprintf(" (did you mean '%s'?)", hint)
			}
			return errors.New(msg)
		}
		if err := validateRuleSettings("rules."+name, Resolve(c.Rules[name], c.Defaults)); err != nil {
			return err
		}
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format)
	}

	if c.Output.SortBy != "rule" && c.Output.SortBy != "line" {
		return fmt.Errorf("invalid output.sort_by '%s', must be one of: rule, line", c.Output.SortBy)
	}

	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid output.color '%s', must be one of: auto, always, never", c.Output.Color)
	}

	if len(c.Analysis.IncludePatterns) == 0 {
		return fmt.Errorf("analysis.include_patterns cannot be empty")
	}

	if c.Analysis.MaxLines < 0 {
		return fmt.Errorf("analysis.max_lines must be >= 0, got %d", c.Analysis.MaxLines)
	}

	if c.Analysis.MaxSuggestionsPerRule < 0 {
		return fmt.Errorf("analysis.max_suggestions_per_rule must be >= 0, got %d", c.Analysis.MaxSuggestionsPerRule)
	}

	if c.Performance.MaxGoroutines < 0 {
		return fmt.Errorf("performance.max_goroutines must be >= 0, got %d", c.Performance.MaxGoroutines)
	}

	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	return nil
}

// validateRuleSettings checks one merged rule map
func validateRuleSettings(path string, settings map[string]interface{}) error {
	rc, err := DecodeRuleConfig(Resolve(settings, nil))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if rc.Severity != "" && !validSeverities[rc.Severity] {
		return fmt.Errorf("invalid %s.severity '%s', must be one of: error, warning, info", path, rc.Severity)
	}

	if rc.FixStyle != "" && rc.FixStyle != FixStyleTraditional && rc.FixStyle != FixStyleMethod {
		return fmt.Errorf("invalid %s.fixStyle '%s', must be one of: traditional, method", path, rc.FixStyle)
	}

	if rc.NamePattern != "" {
		if _, err := regexp.Compile(rc.NamePattern); err != nil {
			return fmt.Errorf("invalid %s.namePattern: %w", path, err)
		}
	}

	return nil
}

// builtinRuleNames returns the rule names carried by the embedded defaults
func builtinRuleNames() []string {
	_, rules, _ := mustLoadDefaultRules()
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuggestRuleName returns the closest known rule name to name, or ""
func SuggestRuleName(name string, known []string) string {
	matches := fuzzy.Find(strings.ToLower(name), known)
	if len(matches) == 0 {
		// Fall back to matching on the first word, e.g. "division" for a typo'd rule
		if i := strings.IndexAny(name, "-_ "); i > 0 {
			matches = fuzzy.Find(strings.ToLower(name[:i]), known)
		}
	}
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// EncodeConfig writes config in the given format: yaml, json or toml
func EncodeConfig(config *Config, format string, w io.Writer) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(config); err != nil {
			return fmt.Errorf("failed to encode YAML config: %w", err)
		}
		return encoder.Close()
	case "json":
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode JSON config: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "toml":
		if err := toml.NewEncoder(w).Encode(config); err != nil {
			return fmt.Errorf("failed to encode TOML config: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format: %s", format)
	}
}

// SaveConfig saves configuration to a file, choosing the format from its extension
func SaveConfig(config *Config, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if format == "" {
		format = "yaml"
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer file.Close()

	return EncodeConfig(config, format, file)
}
