package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	md2enex "github.com/alnah/go-md2enex"
	"github.com/alnah/go-md2enex/internal/config"
	"github.com/alnah/go-md2enex/internal/fileutil"
	"github.com/alnah/go-md2enex/internal/hints"
	"github.com/alnah/go-md2enex/internal/scanner"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrNoDocuments        = errors.New("no markdown files found")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteArchive       = errors.New("failed to write ENEX file")
	ErrCreateOutputDir    = errors.New("failed to create output directory")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrConversionFailed   = errors.New("conversion failed")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// archiveWriteConcurrency caps parallel .enex encodes; archives are few
// and large, so a small limit keeps memory bounded.
const archiveWriteConcurrency = 4

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	RelPath  string
	Note     *md2enex.Note
	Err      error
	Duration time.Duration
}

// runConvertCmd parses convert flags and runs the conversion under a
// signal-cancelled context.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process: load config, merge
// flags, scan the source tree, convert notes on a worker pool, and write
// the grouped archives.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output.dir, cfg)

	docs, err := scanner.Scan(inputPath, scanner.Options{
		ResourceDirName: cfg.Input.ResourceDir,
		Tags:            cfg.Export.Tags,
	})
	if err != nil {
		return fmt.Errorf("scanning source: %w", err)
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w under %s%s", ErrNoDocuments, inputPath, hints.ForNoDocuments())
	}
	logger.Debug("scan complete", "source", inputPath, "notes", len(docs))

	if flags.scanOnly {
		return printScanSummary(docs, cfg, env)
	}

	if flags.maxNotes > 0 && len(docs) > flags.maxNotes {
		logger.Info("limiting conversion", "notes", flags.maxNotes, "found", len(docs))
		docs = docs[:flags.maxNotes]
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	poolSize := md2enex.ResolvePoolSize(flags.workers)
	pool, err := md2enex.NewConverterPool(poolSize, opts)
	if err != nil {
		return err
	}
	logger.Debug("pool ready", "size", pool.Size())

	start := env.Now()
	results := convertBatch(ctx, pool, docs)

	notes := make([]*md2enex.Note, 0, len(results))
	failed := 0
	missing := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("conversion failed", "file", r.RelPath, "error", r.Err)
			continue
		}
		notes = append(notes, r.Note)
		missing += len(r.Note.MissingRefs)
		logger.Debug("converted", "file", r.RelPath, "took", r.Duration.Round(time.Millisecond))
	}

	if len(notes) > 0 {
		archives := md2enex.BuildArchives(notes, opts, env.Now().UTC())
		if err := writeArchives(ctx, archives, outputDir, logger); err != nil {
			return err
		}
		logger.Info("export complete",
			"notes", len(notes),
			"archives", len(archives),
			"took", time.Since(start).Round(time.Millisecond),
		)
	}

	if missing > 0 && !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "warning: %d unresolved resource reference(s)%s\n", missing, hints.ForMissingResources())
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d conversion(s) failed", ErrConversionFailed, failed)
	}
	return nil
}

// loadConfig loads a named config, or the defaults when name is empty.
// A not-found error carries the search-path hint.
func loadConfig(name string) (*config.Config, error) {
	if name == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	if flags.output.dir != "" {
		cfg.Output.Dir = flags.output.dir
	}
	if flags.output.groupBy != "" {
		cfg.Output.GroupBy = flags.output.groupBy
	}
	if flags.output.split != splitUnset {
		cfg.Output.MaxNotesPerFile = flags.output.split
	}
	if flags.output.namePattern != "" {
		cfg.Output.NamePattern = flags.output.namePattern
	}

	if flags.resources.dir != "" {
		cfg.Input.ResourceDir = flags.resources.dir
	}
	if flags.resources.maxSize != maxSizeUnset {
		cfg.Resources.MaxSize = flags.resources.maxSize
	}
	if flags.resources.keepUnknownSet {
		cfg.Resources.KeepUnknown = flags.resources.keepUnknown
	}

	if flags.export.author != "" {
		cfg.Export.Author = flags.export.author
	}
	if len(flags.export.tags) > 0 {
		cfg.Export.Tags = flags.export.tags
	}
}

// buildOptions maps a validated config onto conversion options.
func buildOptions(cfg *config.Config) (md2enex.Options, error) {
	groupBy, err := md2enex.ParseGroupStrategy(cfg.Output.GroupBy)
	if err != nil {
		return md2enex.Options{}, err
	}

	opts := md2enex.Options{
		ProtectCode:      cfg.Markdown.ProtectCode,
		RewriteWikiLinks: cfg.Markdown.RewriteWikiLinks,
		NormalizeLists:   cfg.Markdown.NormalizeLists,
		StripHeadings:    cfg.Markdown.StripHeadings,
		StripHighlights:  cfg.Markdown.StripHighlights,
		EscapeHTML:       cfg.Markdown.EscapeHTML,

		MaxResourceSize: cfg.Resources.MaxSize,
		KeepUnknown:     cfg.Resources.KeepUnknown,

		GroupBy:         groupBy,
		MaxNotesPerFile: cfg.Output.MaxNotesPerFile,
		NamePattern:     cfg.Output.NamePattern,
		ReplaceSpaces:   cfg.Output.ReplaceSpaces,

		Author:      cfg.Export.Author,
		Application: cfg.Export.Application,
		Version:     cfg.Export.Version,
	}
	for _, s := range cfg.Markdown.Substitutions {
		opts.Substitutions = append(opts.Substitutions, md2enex.Substitution{From: s.From, To: s.To})
	}
	return opts, nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.SourceDir != "" {
		return cfg.Input.SourceDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
// Empty means the current directory.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	if cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return "."
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2enex.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2enex.MaxPoolSize)
	}
	return nil
}

// convertBatch processes documents concurrently using the converter pool.
// Results are indexed by position, so output order equals scan order.
func convertBatch(ctx context.Context, pool *md2enex.ConverterPool, docs []md2enex.Document) []ConversionResult {
	if len(docs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(docs) {
		concurrency = len(docs)
	}

	results := make([]ConversionResult, len(docs))
	var wg sync.WaitGroup
	jobs := make(chan int, len(docs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{
						RelPath: docs[idx].RelPath,
						Err:     ctx.Err(),
					}
					continue
				}
				results[idx] = convertDocument(ctx, conv, docs[idx])
			}
		}()
	}

	for i := range docs {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertDocument reads one markdown file and converts it to a note.
func convertDocument(ctx context.Context, conv *md2enex.Converter, doc md2enex.Document) ConversionResult {
	start := time.Now()
	result := ConversionResult{RelPath: doc.RelPath}

	content, err := os.ReadFile(doc.AbsPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrReadMarkdown, err)
		result.Duration = time.Since(start)
		return result
	}

	note, err := conv.Convert(ctx, md2enex.Input{
		Markdown: string(content),
		Document: doc,
	})
	if err != nil {
		result.Err = err
	} else {
		result.Note = note
	}
	result.Duration = time.Since(start)
	return result
}

// writeArchives encodes and writes every archive under outputDir. Writes
// run concurrently; the first error cancels the rest.
func writeArchives(ctx context.Context, archives []md2enex.EnexDocument, outputDir string, logger *slog.Logger) error {
	if err := os.MkdirAll(outputDir, dirPermissions); err != nil {
		return fmt.Errorf("%w: %v%s", ErrCreateOutputDir, err, hints.ForOutputDirectory())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(archiveWriteConcurrency)

	for i := range archives {
		doc := &archives[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			data, err := md2enex.EnexBytes(doc)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", doc.FileName, err)
			}

			outPath := filepath.Join(outputDir, doc.FileName)
			// #nosec G306 -- exports are meant to be readable
			if err := os.WriteFile(outPath, data, filePermissions); err != nil {
				return fmt.Errorf("%w: %v", ErrWriteArchive, err)
			}

			logger.Info("wrote archive", "file", outPath, "notes", len(doc.Notes))
			return nil
		})
	}
	return g.Wait()
}
