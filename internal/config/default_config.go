package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// DefaultRulesJSON contains the embedded default rule configuration
//
//go:embed default_config.json
var DefaultRulesJSON string

// ruleSet is the part of Config carried by default_config.json
type ruleSet struct {
	Defaults  map[string]interface{}            `json:"defaults"`
	Rules     map[string]map[string]interface{} `json:"rules"`
	Libraries []string                          `json:"libraries"`
}

// LoadDefaultRules parses the embedded default rule configuration
func LoadDefaultRules() (defaults map[string]interface{}, rules map[string]map[string]interface{}, libraries []string, err error) {
	var rs ruleSet
	if err := json.Unmarshal([]byte(DefaultRulesJSON), &rs); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid embedded default config: %w", err)
	}
	return rs.Defaults, rs.Rules, rs.Libraries, nil
}

func mustLoadDefaultRules() (map[string]interface{}, map[string]map[string]interface{}, []string) {
	defaults, rules, libraries, err := LoadDefaultRules()
	if err != nil {
		panic(err)
	}
	return defaults, rules, libraries
}
