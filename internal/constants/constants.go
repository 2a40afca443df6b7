package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "exprlint"

	// ConfigFileName is the config file written by init
	ConfigFileName = "exprlint.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "EXPRLINT"
)

// SourceExtensions are the file extensions analyzed by default
var SourceExtensions = []string{".expr", ".dsl", ".rule"}

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatCSV  = "csv"
)

// Exit codes shared by the commands
const (
	ExitCodeSuccess  = 0
	ExitCodeFindings = 1
	ExitCodeError    = 2
)
