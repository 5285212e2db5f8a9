package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

const appName = "skillradar"

func main() {
	flag.String("workspace", "", "Path to workspace root (default: $SKILLRADAR_WORKSPACE)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s: engineer self-assessment scoring\n\n", appName)
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [--workspace DIR] [command] [flags]\n\n", appName)
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  init     Initialize a new workspace")
		fmt.Fprintln(os.Stderr, "  assess   Manage assessments (new, list, show, select, set, answer, delete)")
		fmt.Fprintln(os.Stderr, "  team     Manage teams (create, rename, delete, list)")
		fmt.Fprintln(os.Stderr, "  import   Import assessment or backup files")
		fmt.Fprintln(os.Stderr, "  export   Export an assessment, a backup or a radar chart")
		fmt.Fprintln(os.Stderr, "  compare  Aggregate several assessments")
		fmt.Fprintln(os.Stderr, "  audit    Show recent audit events")
		fmt.Fprintln(os.Stderr, "  help     Show this help")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flag.PrintDefaults()
	}

	workspacePath, remaining, err := extractWorkspaceFlag(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	args := remaining
	if len(args) == 0 || isHelp(args[0]) {
		flag.Usage()
		return
	}

	var run func([]string, string) error
	switch args[0] {
	case "init":
		run = runInit
	case "assess":
		run = runAssess
	case "team":
		run = runTeam
	case "import":
		run = runImport
	case "export":
		run = runExport
	case "compare":
		run = runCompare
	case "audit":
		run = runAudit
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err := run(args[1:], workspacePath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractWorkspaceFlag(args []string) (string, []string, error) {
	var workspacePath string
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--workspace" {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("--workspace requires a value")
			}
			workspacePath = args[i+1]
			i++
			continue
		}
		if strings.HasPrefix(arg, "--workspace=") {
			workspacePath = strings.TrimPrefix(arg, "--workspace=")
			continue
		}
		remaining = append(remaining, arg)
	}
	return workspacePath, remaining, nil
}

func isHelp(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// parseInterspersed parses fs allowing flags after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}

func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
