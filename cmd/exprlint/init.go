package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/exprlint/internal/config"
	"github.com/ludo-technologies/exprlint/internal/constants"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate an exprlint configuration file",
		Long: `Generate a documented exprlint configuration file with sensible defaults.

By default, creates exprlint.yaml in the current directory with full
documentation. --format json or toml (or a .json/.toml path) writes the
resolved configuration in that format instead. Use --interactive for a
guided setup wizard.

Examples:
  # Create exprlint.yaml in current directory
  exprlint init

  # Custom output path and format
  exprlint init --config exprlint.toml
  exprlint init --format json

  # Overwrite existing file
  exprlint init --force

  # Stricter severities for CI
  exprlint init --strictness strict

  # Interactive setup wizard
  exprlint init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")
	cmd.Flags().String("format", "",
		"Config format: yaml, json, toml (default from the file extension)")
	cmd.Flags().String("strictness", string(config.StrictnessStandard),
		"Strictness preset: relaxed, standard, strict")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")
	strictnessFlag, _ := cmd.Flags().GetString("strictness")
	format, _ := cmd.Flags().GetString("format")

	format = strings.ToLower(format)
	if format != "" && !cmd.Flags().Changed("config") {
		configPath = strings.TrimSuffix(configPath, filepath.Ext(configPath)) + "." + format
	}

	strictness := config.ParseStrictness(strictnessFlag)
	out := cmd.OutOrStdout()

	if interactive {
		var err error
		strictness, configPath, err = runInteractiveSetup(out, configPath)
		if err != nil {
			return err
		}
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(configPath), ".")
	}
	content, err := renderConfig(format, strictness, minimal)
	if err != nil {
		return err
	}

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Fprintf(out, "Created %s\n", displayPath)
	fmt.Fprintf(out, "\nRun '%s analyze .' to analyze your project.\n", constants.ToolName)

	return nil
}

// renderConfig produces the file content in format. YAML gets the commented
// template; JSON and TOML get the resolved configuration.
func renderConfig(format string, strictness config.Strictness, minimal bool) ([]byte, error) {
	format = strings.ToLower(format)
	switch format {
	case "", "yaml", "yml":
		if minimal {
			return []byte(config.GetMinimalConfigTemplate()), nil
		}
		return []byte(config.GetFullConfigTemplate(strictness)), nil
	case "json", "toml":
		cfg := config.DefaultConfig()
		config.ApplyStrictness(cfg, strictness)
		var buf bytes.Buffer
		if err := config.EncodeConfig(cfg, format, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (use yaml, json or toml)", format)
	}
}

func runInteractiveSetup(out io.Writer, defaultConfigPath string) (config.Strictness, string, error) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "exprlint Configuration Setup")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Default severities for every rule", config.StrictnessStandard},
		{"Relaxed", "Info severity, stylistic rules off", config.StrictnessRelaxed},
		{"Strict", "Error severity for unsafe access, strict key naming", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should the analysis be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	idx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selected := strictnessLevels[idx].Value

	fmt.Fprintln(out)

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Fprintln(out)
	return selected, outputPath, nil
}
