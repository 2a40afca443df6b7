package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/constants"
	"github.com/ludo-technologies/exprlint/internal/log"
	"github.com/ludo-technologies/exprlint/internal/version"
	"github.com/spf13/cobra"
)

// ExitError carries a process exit code out of a command. Output has
// already been written when Message is empty.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func main() {
	rootCmd := newRootCmd()

	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintf(os.Stderr, "Error: %s\n", exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(constants.ExitCodeError)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "exprlint - static analyzer for expression rule files",
		Long: `exprlint checks expression DSL sources for risky patterns such as
unguarded divisions and null accesses, and rewrites the fixable ones.`,
		Version: version.GetVersion(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			log.SetVerbose(verbose)
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(fixCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			verbose, _ := cmd.Flags().GetBool("verbose")
			out := cmd.OutOrStdout()

			switch {
			case asJSON:
				data, err := json.MarshalIndent(version.Info(), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case verbose:
				fmt.Fprintln(out, version.GetFullVersion())
			default:
				fmt.Fprintf(out, "%s version %s\n", constants.ToolName, version.GetVersion())
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print build information as JSON")
	return cmd
}

// loadConfig loads --config, or discovers a configuration file from the
// first target path
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	target := ""
	if len(args) > 0 && args[0] != "-" {
		target = args[0]
	}

	cfg, err := config.LoadConfigWithTarget(configPath, target)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded configuration (rules: %v)", cfg.RuleNames())
	return cfg, nil
}
