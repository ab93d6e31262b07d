package main

import (
	"fmt"
	"sort"

	md2enex "github.com/alnah/go-md2enex"
	"github.com/alnah/go-md2enex/internal/config"
	"github.com/alnah/go-md2enex/internal/hints"
	"github.com/alnah/go-md2enex/internal/scanner"
)

// runScanCmd parses scan flags and reports the source tree.
func runScanCmd(args []string, env *Environment) int {
	flags, positional, err := parseScanFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	if err := runScan(positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runScan walks the source tree and prints counts and planned archives,
// converting nothing.
func runScan(positionalArgs []string, flags *scanFlags, env *Environment) error {
	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	if flags.groupBy != "" {
		cfg.Output.GroupBy = flags.groupBy
	}
	if flags.resourceDir != "" {
		cfg.Input.ResourceDir = flags.resourceDir
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}

	docs, err := scanner.Scan(inputPath, scanner.Options{ResourceDirName: cfg.Input.ResourceDir})
	if err != nil {
		return fmt.Errorf("scanning source: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w under %s%s", ErrNoDocuments, inputPath, hints.ForNoDocuments())
	}

	return printScanSummary(docs, cfg, env)
}

// printScanSummary reports note counts per folder and the archives the
// current grouping strategy would produce.
func printScanSummary(docs []md2enex.Document, cfg *config.Config, env *Environment) error {
	s := scanner.Summarize(docs)
	fmt.Fprintf(env.Stdout, "Found %d notes in %d folders\n", s.Total, len(s.Folders))

	folders := make([]string, 0, len(s.Folders))
	for f := range s.Folders {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	for _, f := range folders {
		name := f
		if name == "" {
			name = "(root)"
		}
		fmt.Fprintf(env.Stdout, "  %s: %d\n", name, s.Folders[f])
	}

	groupBy, err := md2enex.ParseGroupStrategy(cfg.Output.GroupBy)
	if err != nil {
		return err
	}

	// Planned archives in first-seen order, like the real grouping.
	var keys []string
	counts := make(map[string]int)
	for _, doc := range docs {
		key := md2enex.GroupKeyFor(groupBy, doc)
		if counts[key] == 0 {
			keys = append(keys, key)
		}
		counts[key]++
	}

	fmt.Fprintf(env.Stdout, "\nPlanned archives (%s):\n", cfg.Output.GroupBy)
	for _, key := range keys {
		fileName := md2enex.ArchiveFileName(key, cfg.Output.NamePattern, cfg.Output.ReplaceSpaces)
		fmt.Fprintf(env.Stdout, "  %s: %d notes\n", fileName, counts[key])
	}
	return nil
}
