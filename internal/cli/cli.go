package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/vk/contestflow/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// varFlags collects repeated -var key=value flags.
type varFlags map[string]string

func (v varFlags) String() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+v[k])
	}
	return strings.Join(pairs, ",")
}

func (v varFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	v[strings.TrimSpace(key)] = value
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("contestflow", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
contestflow - Build and run dependency-aware contest workflows.

Usage:
  contestflow [options] [WORKFLOW_PATH]

Arguments:
  WORKFLOW_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Path to the workflow file or directory.")
	wFlag := flagSet.String("w", "", "Path to the workflow file or directory (shorthand).")
	rootFlag := flagSet.String("root", ".", "Directory relative workflow paths are resolved against.")
	modeFlag := flagSet.String("mode", app.DefaultMode, "Execution mode. Options: 'sequential' or 'parallel'.")
	workersFlag := flagSet.Int("workers", app.DefaultWorkers, "Maximum concurrent nodes per wave in parallel mode.")
	backendFlag := flagSet.String("backend", app.DefaultBackend, "Driver backend. Options: 'local' or 'dummy'.")
	logFormatFlag := flagSet.String("log-format", app.DefaultLogFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", app.DefaultLogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	reportFlag := flagSet.String("report", app.DefaultReport, "Report format. Options: 'text', 'yaml' or 'toml'.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Build and print the execution plan without running it.")
	allowInvalidFlag := flagSet.Bool("allow-invalid", false, "Execute even when some steps failed validation.")
	envFileFlag := flagSet.String("env-file", "", "Dotenv file whose entries are available as env.* in the workflow.")
	vars := varFlags{}
	flagSet.Var(vars, "var", "Set a workflow variable as key=value. May be repeated.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *workflowFlag != "" {
		path = *workflowFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Workflow path determined.", "path", path)

	if path == "" {
		slog.Debug("No workflow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		WorkflowPath: path,
		Root:         *rootFlag,
		Mode:         *modeFlag,
		Workers:      *workersFlag,
		Backend:      *backendFlag,
		LogFormat:    *logFormatFlag,
		LogLevel:     *logLevelFlag,
		Report:       *reportFlag,
		DryRun:       *dryRunFlag,
		AllowInvalid: *allowInvalidFlag,
		Vars:         vars,
		EnvFile:      *envFileFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
