package main

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// Configure GOMAXPROCS before pool sizing happens.
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verboseRequested(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command line and returns the process exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd := args[1]

	if !isCommand(cmd) {
		// Legacy invocation: "md2enex note.md" without a command.
		if looksLikeMarkdown(cmd) {
			fmt.Fprintln(env.Stderr, "DEPRECATED: invoking without a command; use 'md2enex convert <input>'")
			return runConvertCmd(args[1:], env)
		}
		fmt.Fprintf(env.Stderr, "unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	rest := args[2:]
	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "scan":
		return runScanCmd(rest, env)
	case "version":
		return runVersion(env)
	}
	runHelp(rest, env)
	return ExitSuccess
}

// isCommand reports whether s names a known command.
func isCommand(s string) bool {
	switch s {
	case "convert", "scan", "version", "help":
		return true
	}
	return false
}

// looksLikeMarkdown reports whether s has a markdown file extension.
func looksLikeMarkdown(s string) bool {
	return strings.HasSuffix(s, ".md") || strings.HasSuffix(s, ".markdown")
}

// verboseRequested peeks at raw args for the verbose flag before parsing.
func verboseRequested(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}
