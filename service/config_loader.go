package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/ludo-technologies/exprlint/internal/config"
)

// ConfigurationLoaderImpl loads configuration files and turns them into
// lint requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads the configuration at path. An empty path discovers the
// file from target upward and falls back to the built-in defaults.
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// RequestFromConfig converts the host settings of cfg into a lint request
func (c *ConfigurationLoaderImpl) RequestFromConfig(cfg *config.Config) *domain.LintRequest {
	return &domain.LintRequest{
		// Paths are set by the caller, not from config
		Paths: []string{},

		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		SortBy:       domain.SortCriteria(cfg.Output.SortBy),
		ShowSource:   cfg.Output.ShowSource,

		Recursive:       cfg.Analysis.Recursive,
		IncludePatterns: cfg.Analysis.IncludePatterns,
		ExcludePatterns: cfg.Analysis.ExcludePatterns,
		UseCache:        cfg.Cache.Enabled,
	}
}

// MergeRequest layers the non-zero values of override onto base. Boolean
// flags are merged by the caller, which knows whether they were set.
func (c *ConfigurationLoaderImpl) MergeRequest(base, override *domain.LintRequest) *domain.LintRequest {
	merged := *base

	// Paths always come from command arguments
	if len(override.Paths) > 0 {
		merged.Paths = override.Paths
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.SortBy != "" {
		merged.SortBy = override.SortBy
	}
	if override.MinSeverity != "" {
		merged.MinSeverity = override.MinSeverity
	}
	if len(override.Rules) > 0 {
		merged.Rules = override.Rules
	}
	if len(override.IncludePatterns) > 0 {
		merged.IncludePatterns = override.IncludePatterns
	}
	if len(override.ExcludePatterns) > 0 {
		merged.ExcludePatterns = override.ExcludePatterns
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	return &merged
}

// ValidateRequest checks the enumerated fields of req. Unknown rule names
// are checked against known, with a close match offered when there is one.
func (c *ConfigurationLoaderImpl) ValidateRequest(req *domain.LintRequest, known []string) error {
	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv)", req.OutputFormat)
	}

	switch req.SortBy {
	case "", domain.SortCriteriaRule, domain.SortCriteriaLine:
	default:
		return fmt.Errorf("invalid sort criteria: %s (must be one of: rule, line)", req.SortBy)
	}

	if req.MinSeverity != "" && !req.MinSeverity.IsValid() {
		return fmt.Errorf("invalid severity: %s (must be one of: error, warning, info)", req.MinSeverity)
	}

	for _, name := range req.Rules {
		if containsRule(known, name) {
			continue
		}
		if suggestion := config.SuggestRuleName(name, known); suggestion != "" {
			return fmt.Errorf("unknown rule %q (did you mean %q?)", name, suggestion)
		}
		return fmt.Errorf("unknown rule %q", name)
	}

	return nil
}

func containsRule(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
