// Package cli parses the wodc command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ExitError is an error that carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Config is one parsed invocation.
type Config struct {
	Command     string
	Path        string
	ConfigPath  string
	CatalogPath string
	SearchPaths []string
	Start       string
	ScoresPath  string
	Alias       string
	Session     string
	LogLevel    string
	LogFormat   string
}

var commands = []string{"fmt", "lint", "compile", "export", "rank"}

const usageText = `wodc - compiler toolchain for workout session definitions.

Usage:
  wodc COMMAND [options] FILE

Commands:
  fmt      Rewrite a source file in canonical form.
  lint     Check a source file against the programming rules.
  compile  Compile the file's session and print it as JSON.
  export   Compile the file's session and print an iCalendar event.
  rank     Rank submitted scores against the session's scoring directive.

Run 'wodc COMMAND -h' for the command's options.
`

// Parse processes command-line arguments. It returns the populated Config, a
// boolean indicating the program should exit cleanly (help was printed), or
// an ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(output, usageText)
		return nil, true, nil
	}
	command := args[0]
	if !isCommand(command) {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q, want one of %s", command, strings.Join(commands, ", "))}
	}

	flagSet := flag.NewFlagSet("wodc "+command, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "Usage:\n  wodc %s [options] FILE\n\nOptions:\n", command)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to a wodc YAML config file.")
	catalogFlag := flagSet.String("catalog", "", "Path to the movement catalog JSON file.")
	pathsFlag := flagSet.String("paths", "", "Colon-separated module search paths.")
	logLevelFlag := flagSet.String("log-level", "", "Log level: 'debug', 'info', 'warn', or 'error'.")
	logFormatFlag := flagSet.String("log-format", "", "Log output format: 'text' or 'json'.")
	startFlag := flagSet.String("start", "", "Event start for export, e.g. 2026-03-02T17:00.")
	scoresFlag := flagSet.String("scores", "", "Path to a JSON array of score records for rank.")
	aliasFlag := flagSet.String("alias", "", "Scoring alias to rank; defaults to the first directive.")
	sessionFlag := flagSet.String("session", "", "Session title to pick when the file defines several.")

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() == 0 {
		return nil, false, &ExitError{Code: 2, Message: command + " needs a source file argument"}
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one source file argument"}
	}

	cfg := &Config{
		Command:     command,
		Path:        flagSet.Arg(0),
		ConfigPath:  *configFlag,
		CatalogPath: *catalogFlag,
		Start:       *startFlag,
		ScoresPath:  *scoresFlag,
		Alias:       *aliasFlag,
		Session:     *sessionFlag,
		LogLevel:    strings.ToLower(*logLevelFlag),
		LogFormat:   strings.ToLower(*logFormatFlag),
	}
	if *pathsFlag != "" {
		cfg.SearchPaths = strings.Split(*pathsFlag, ":")
	}
	if command == "rank" && cfg.ScoresPath == "" {
		return nil, false, &ExitError{Code: 2, Message: "rank needs -scores pointing at a JSON records file"}
	}
	return cfg, false, nil
}

func isCommand(name string) bool {
	for _, c := range commands {
		if c == name {
			return true
		}
	}
	return false
}
