package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// Sentinel defaults detect whether a numeric flag was explicitly set.
// Zero is meaningful for both (unlimited split, unlimited size), so the
// unset value must live outside the valid range.
const (
	splitUnset   = -1
	maxSizeUnset = -1
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// outputFlags holds grouping and naming flags.
type outputFlags struct {
	dir         string
	groupBy     string
	split       int
	namePattern string
}

// resourceFlags holds attachment handling flags.
type resourceFlags struct {
	dir            string
	maxSize        int64
	keepUnknown    bool
	keepUnknownSet bool // --keep-unknown was passed explicitly
}

// exportFlags holds export metadata flags.
type exportFlags struct {
	author string
	tags   []string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common    commonFlags
	output    outputFlags
	resources resourceFlags
	export    exportFlags
	workers   int
	scanOnly  bool
	maxNotes  int
}

// scanFlags holds all flags for the scan command.
type scanFlags struct {
	common      commonFlags
	groupBy     string
	resourceDir string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addOutputFlags adds grouping and naming flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.StringVarP(&f.dir, "output", "o", "", "output directory for .enex files")
	fs.StringVar(&f.groupBy, "group-by", "", "grouping: single, top_folder, full_folder, notebook, custom")
	fs.IntVar(&f.split, "split", splitUnset, "max notes per .enex file (0 = unlimited)")
	fs.StringVar(&f.namePattern, "name-pattern", "", "archive naming pattern, must contain {name}")
}

// addResourceFlags adds attachment handling flags to a FlagSet.
func addResourceFlags(fs *flag.FlagSet, f *resourceFlags) {
	fs.StringVar(&f.dir, "resource-dir", "", "per-folder resource directory name")
	fs.Int64Var(&f.maxSize, "max-resource-size", maxSizeUnset, "resource size limit in bytes (0 = unlimited)")
	fs.BoolVar(&f.keepUnknown, "keep-unknown", true, "embed a placeholder for unresolved references")
}

// addExportFlags adds export metadata flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVar(&f.author, "author", "", "note author written to note-attributes")
	fs.StringArrayVar(&f.tags, "tag", nil, "tag applied to every note (repeatable)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVar(&f.scanOnly, "scan-only", false, "scan and report, convert nothing")
	fs.IntVar(&f.maxNotes, "max-notes", 0, "convert at most n notes (0 = all)")

	addCommonFlags(fs, &f.common)
	addOutputFlags(fs, &f.output)
	addResourceFlags(fs, &f.resources)
	addExportFlags(fs, &f.export)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	f.resources.keepUnknownSet = fs.Changed("keep-unknown")

	return f, fs.Args(), nil
}

// parseScanFlags parses scan command flags and returns positional args.
func parseScanFlags(args []string) (*scanFlags, []string, error) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	f := &scanFlags{}

	fs.StringVar(&f.groupBy, "group-by", "", "grouping: single, top_folder, full_folder, notebook, custom")
	fs.StringVar(&f.resourceDir, "resource-dir", "", "per-folder resource directory name")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printScanUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
