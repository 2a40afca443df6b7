package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/ludo-technologies/exprlint/internal/rules"
	"github.com/ludo-technologies/exprlint/service"
	"github.com/spf13/cobra"
)

// ruleInfo is one row of the rules listing
type ruleInfo struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Kind        string `json:"kind" yaml:"kind"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Severity    string `json:"severity,omitempty" yaml:"severity,omitempty"`
	AutoFix     bool   `json:"auto_fix" yaml:"auto_fix"`
	Description string `json:"description" yaml:"description"`
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules and their configured state",
		Args:  cobra.NoArgs,
		RunE:  runRules,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")
	cmd.Flags().StringP("config", "c", "", "Path to config file")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	var infos []ruleInfo
	for _, rule := range rules.DefaultRegistry().Rules() {
		info := ruleInfo{
			Name:        rule.Name(),
			Version:     rule.Version(),
			Kind:        rules.Kind(rule),
			Description: rule.Description(),
		}
		if rc, ok := cfg.RuleConfig(rule.Name()); ok {
			info.Enabled = rc.Enabled
			info.Severity = rc.Severity
			info.AutoFix = rc.AutoFixEnabled
		}
		infos = append(infos, info)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return service.WriteJSON(out, infos)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tVERSION\tSTATE\tSEVERITY\tKIND\tDESCRIPTION")
	for _, info := range infos {
		state := "disabled"
		if info.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Name, info.Version, state, info.Severity, info.Kind, info.Description)
	}
	return tw.Flush()
}
