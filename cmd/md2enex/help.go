package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2enex <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown notes to Evernote ENEX archives")
	fmt.Fprintln(w, "  scan       Report notes and planned archives without converting")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2enex help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2enex convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert markdown notes to Evernote ENEX archives.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.sourceDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <dir>           Output directory for .enex files")
	fmt.Fprintln(w, "  -c, --config <name>          Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>            Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Grouping:")
	fmt.Fprintln(w, "      --group-by <s>           single, top_folder, full_folder, notebook, custom")
	fmt.Fprintln(w, "      --split <n>              Max notes per .enex file (0 = unlimited)")
	fmt.Fprintln(w, "      --name-pattern <s>       Archive naming pattern, must contain {name}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resources:")
	fmt.Fprintln(w, "      --resource-dir <name>    Per-folder resource directory name")
	fmt.Fprintln(w, "      --max-resource-size <n>  Resource size limit in bytes (0 = unlimited)")
	fmt.Fprintln(w, "      --keep-unknown           Placeholder for unresolved references (default true)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export:")
	fmt.Fprintln(w, "      --author <s>             Note author written to note-attributes")
	fmt.Fprintln(w, "      --tag <s>                Tag applied to every note (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Scope:")
	fmt.Fprintln(w, "      --scan-only              Scan and report, convert nothing")
	fmt.Fprintln(w, "      --max-notes <n>          Convert at most n notes (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                  Only show errors")
	fmt.Fprintln(w, "  -v, --verbose                Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  General error")
	fmt.Fprintln(w, "  2  Usage or configuration error")
	fmt.Fprintln(w, "  3  I/O error")
	fmt.Fprintln(w, "  4  Conversion error")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  md2enex convert vault/ -o exports/")
	fmt.Fprintln(w, "  md2enex convert vault/ --group-by top_folder --split 500")
	fmt.Fprintln(w, "  md2enex convert note.md --author jane --tag imported")
}

// printScanUsage prints usage for the scan command.
func printScanUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2enex scan <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Walk a source tree and report note counts and planned archives.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    Markdown file or directory (optional if config has input.sourceDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>          Config file name or path")
	fmt.Fprintln(w, "      --group-by <s>           Grouping strategy for the archive preview")
	fmt.Fprintln(w, "      --resource-dir <name>    Per-folder resource directory name")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "scan":
		printScanUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2enex version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2enex help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
