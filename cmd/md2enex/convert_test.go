package main

// Notes:
// - End-to-end tests drive runConvert against real temporary vaults and
//   assert on the .enex output through substrings; full XML round-trips
//   are covered by the enex encoder's own tests.
// - Read failures are provoked with nonexistent paths instead of
//   permission bits, which the root user would bypass.
// These are acceptable gaps: signal delivery is covered in signal_test.go.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	md2enex "github.com/alnah/go-md2enex"
	"github.com/alnah/go-md2enex/internal/config"
)

// writeVaultNote writes one markdown file under root, creating parents.
func writeVaultNote(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("creating %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
}

// parseFlagsForTest parses convert flags, failing the test on error.
func parseFlagsForTest(t *testing.T, args ...string) (*convertFlags, []string) {
	t.Helper()
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		t.Fatalf("parseConvertFlags(%v): %v", args, err)
	}
	return flags, positional
}

// readArchive reads one .enex file from outDir and returns its content.
func readArchive(t *testing.T, outDir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outDir, name))
	if err != nil {
		t.Fatalf("reading archive %s: %v", name, err)
	}
	return string(data)
}

// ---------------------------------------------------------------------------
// runConvert end to end
// ---------------------------------------------------------------------------

func TestRunConvert_EndToEnd(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "root.md", "# Root Note\n\nHello from the root.")
	writeVaultNote(t, vault, "Work/plan.md", "# Plan\n\n- first\n- second")
	writeVaultNote(t, vault, "Personal/journal.md", "Daily notes.")
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir)
	env, _, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}

	content := readArchive(t, outDir, "All_Notes.enex")
	for _, want := range []string{
		`<?xml`,
		`<en-export`,
		`<title>journal</title>`,
		`<title>plan</title>`,
		`<title>root</title>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("archive should contain %q", want)
		}
	}

	if !strings.Contains(stderr.String(), "wrote archive") {
		t.Errorf("stderr should log the archive write, got %q", stderr.String())
	}
}

func TestRunConvert_GroupByTopFolder(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "root.md", "At the root.")
	writeVaultNote(t, vault, "Work/plan.md", "The plan.")
	writeVaultNote(t, vault, "Work/notes.md", "The notes.")
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir, "--group-by", "top_folder")
	env, _, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}

	work := readArchive(t, outDir, "Work.enex")
	if got := strings.Count(work, "<title>"); got != 2 {
		t.Errorf("Work.enex should hold 2 notes, found %d titles", got)
	}

	root := readArchive(t, outDir, "Root.enex")
	if !strings.Contains(root, "<title>root</title>") {
		t.Error("Root.enex should hold the root note")
	}
}

func TestRunConvert_ConfigDriven(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "Work/plan.md", "The plan.")
	outDir := filepath.Join(t.TempDir(), "exports")

	configPath := filepath.Join(t.TempDir(), "export.yaml")
	configYAML := fmt.Sprintf("input:\n  sourceDir: %s\noutput:\n  dir: %s\n  groupBy: top_folder\nexport:\n  author: jane\n", vault, outDir)
	if err := os.WriteFile(configPath, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// No positional input and no -o: both come from the config file.
	flags, positional := parseFlagsForTest(t, "--config", configPath)
	env, _, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}

	content := readArchive(t, outDir, "Work.enex")
	if !strings.Contains(content, "<author>jane</author>") {
		t.Error("archive should carry the configured author")
	}
}

func TestRunConvert_ScanOnly(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "root.md", "At the root.")
	writeVaultNote(t, vault, "Work/plan.md", "The plan.")
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir, "--scan-only")
	env, stdout, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"Found 2 notes",
		"(root)",
		"Planned archives (single):",
		"All_Notes.enex: 2 notes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("scan summary should contain %q, got %q", want, out)
		}
	}

	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("scan-only run should not create the output directory")
	}
}

func TestRunConvert_MaxNotes(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "a.md", "First.")
	writeVaultNote(t, vault, "b.md", "Second.")
	writeVaultNote(t, vault, "c.md", "Third.")
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir, "--max-notes", "1")
	env, _, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}

	content := readArchive(t, outDir, "All_Notes.enex")
	if got := strings.Count(content, "<title>"); got != 1 {
		t.Errorf("capped run should convert 1 note, found %d titles", got)
	}
	// Scan order is lexical, so the cap keeps the first file.
	if !strings.Contains(content, "<title>a</title>") {
		t.Error("capped run should keep the first scanned note")
	}
}

func TestRunConvert_NoDocuments(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	flags, positional := parseFlagsForTest(t, vault)
	env, _, _ := testEnv()

	err := runConvert(context.Background(), positional, flags, env)
	if !errors.Is(err, ErrNoDocuments) {
		t.Fatalf("runConvert = %v, want ErrNoDocuments", err)
	}
	if !strings.Contains(err.Error(), "hint:") {
		t.Errorf("error should carry a hint, got %q", err.Error())
	}
}

func TestRunConvert_InvalidWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"negative count", []string{"in.md", "--workers=-1"}},
		{"count above pool maximum", []string{"in.md", "--workers", "99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags, positional := parseFlagsForTest(t, tt.args...)
			env, _, _ := testEnv()

			err := runConvert(context.Background(), positional, flags, env)
			if !errors.Is(err, ErrInvalidWorkerCount) {
				t.Fatalf("runConvert = %v, want ErrInvalidWorkerCount", err)
			}
		})
	}
}

func TestRunConvert_ConfigNotFound(t *testing.T) {
	t.Parallel()

	flags, positional := parseFlagsForTest(t, "in.md", "--config", "md2enex-test-missing-config")
	env, _, _ := testEnv()

	err := runConvert(context.Background(), positional, flags, env)
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Fatalf("runConvert = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "--config") {
		t.Errorf("error should hint at --config, got %q", err.Error())
	}
}

func TestRunConvert_BadGroupByFlag(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "Body.")

	flags, positional := parseFlagsForTest(t, vault, "--group-by", "bogus")
	env, _, _ := testEnv()

	err := runConvert(context.Background(), positional, flags, env)
	if !errors.Is(err, md2enex.ErrInvalidGroupStrategy) {
		t.Fatalf("runConvert = %v, want ErrInvalidGroupStrategy", err)
	}
}

func TestRunConvert_MissingResourceWarning(t *testing.T) {
	t.Parallel()

	t.Run("unresolved reference warns but succeeds", func(t *testing.T) {
		t.Parallel()

		vault := t.TempDir()
		writeVaultNote(t, vault, "note.md", "Before.\n\n![[gone.png]]\n\nAfter.")
		outDir := filepath.Join(t.TempDir(), "exports")

		flags, positional := parseFlagsForTest(t, vault, "-o", outDir)
		env, _, stderr := testEnv()

		if err := runConvert(context.Background(), positional, flags, env); err != nil {
			t.Fatalf("runConvert: %v", err)
		}

		if !strings.Contains(stderr.String(), "unresolved resource reference") {
			t.Errorf("stderr should warn about unresolved references, got %q", stderr.String())
		}
		if !strings.Contains(stderr.String(), "--keep-unknown") {
			t.Errorf("warning should carry the keep-unknown hint, got %q", stderr.String())
		}
		readArchive(t, outDir, "All_Notes.enex")
	})

	t.Run("quiet suppresses the warning", func(t *testing.T) {
		t.Parallel()

		vault := t.TempDir()
		writeVaultNote(t, vault, "note.md", "![[gone.png]]")
		outDir := filepath.Join(t.TempDir(), "exports")

		flags, positional := parseFlagsForTest(t, vault, "-o", outDir, "-q")
		env, _, stderr := testEnv()

		if err := runConvert(context.Background(), positional, flags, env); err != nil {
			t.Fatalf("runConvert: %v", err)
		}
		if strings.Contains(stderr.String(), "unresolved") {
			t.Errorf("quiet run should not warn, got %q", stderr.String())
		}
	})
}

func TestRunConvert_EmbeddedResource(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "A picture:\n\n![[pic.png]]")
	resDir := filepath.Join(vault, "_resources")
	if err := os.MkdirAll(resDir, 0o750); err != nil {
		t.Fatalf("creating resource dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(resDir, "pic.png"), []byte("png-bytes"), 0o600); err != nil {
		t.Fatalf("writing resource: %v", err)
	}
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir)
	env, _, stderr := testEnv()

	if err := runConvert(context.Background(), positional, flags, env); err != nil {
		t.Fatalf("runConvert: %v\nstderr: %s", err, stderr.String())
	}
	if strings.Contains(stderr.String(), "unresolved") {
		t.Errorf("resolved reference should not warn, got %q", stderr.String())
	}

	content := readArchive(t, outDir, "All_Notes.enex")
	for _, want := range []string{"<resource>", "en-media", "<mime>image/png</mime>"} {
		if !strings.Contains(content, want) {
			t.Errorf("archive should contain %q", want)
		}
	}
}

func TestRunConvert_OutputDirBlocked(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "note.md", "Body.")

	// A regular file where the output directory should go.
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o600); err != nil {
		t.Fatalf("writing blocker: %v", err)
	}
	outDir := filepath.Join(blocked, "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir)
	env, _, _ := testEnv()

	err := runConvert(context.Background(), positional, flags, env)
	if !errors.Is(err, ErrCreateOutputDir) {
		t.Fatalf("runConvert = %v, want ErrCreateOutputDir", err)
	}
}

func TestRunConvert_CancelledContext(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	writeVaultNote(t, vault, "a.md", "First.")
	writeVaultNote(t, vault, "b.md", "Second.")
	outDir := filepath.Join(t.TempDir(), "exports")

	flags, positional := parseFlagsForTest(t, vault, "-o", outDir)
	env, _, _ := testEnv()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runConvert(ctx, positional, flags, env)
	if !errors.Is(err, ErrConversionFailed) {
		t.Fatalf("runConvert = %v, want ErrConversionFailed", err)
	}
}

// ---------------------------------------------------------------------------
// convertBatch
// ---------------------------------------------------------------------------

func TestConvertBatch_PreservesOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docs := make([]md2enex.Document, 10)
	for i := range docs {
		rel := fmt.Sprintf("n%02d.md", i)
		abs := filepath.Join(dir, rel)
		if err := os.WriteFile(abs, []byte(fmt.Sprintf("Note body %d.", i)), 0o600); err != nil {
			t.Fatalf("writing %s: %v", rel, err)
		}
		docs[i] = md2enex.Document{AbsPath: abs, RelPath: rel}
	}

	pool, err := md2enex.NewConverterPool(4, md2enex.DefaultOptions())
	if err != nil {
		t.Fatalf("NewConverterPool: %v", err)
	}

	results := convertBatch(context.Background(), pool, docs)
	if len(results) != len(docs) {
		t.Fatalf("got %d results, want %d", len(results), len(docs))
	}

	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d failed: %v", i, r.Err)
		}
		wantTitle := strings.TrimSuffix(docs[i].RelPath, ".md")
		if r.Note.Title != wantTitle {
			t.Errorf("result %d title = %q, want %q (order not preserved)", i, r.Note.Title, wantTitle)
		}
		if r.RelPath != docs[i].RelPath {
			t.Errorf("result %d RelPath = %q, want %q", i, r.RelPath, docs[i].RelPath)
		}
	}
}

func TestConvertBatch_CollectsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	if err := os.WriteFile(good, []byte("Fine."), 0o600); err != nil {
		t.Fatalf("writing good.md: %v", err)
	}

	docs := []md2enex.Document{
		{AbsPath: good, RelPath: "good.md"},
		{AbsPath: filepath.Join(dir, "gone.md"), RelPath: "gone.md"},
		{AbsPath: good, RelPath: "also-good.md"},
	}

	pool, err := md2enex.NewConverterPool(2, md2enex.DefaultOptions())
	if err != nil {
		t.Fatalf("NewConverterPool: %v", err)
	}

	results := convertBatch(context.Background(), pool, docs)

	if results[0].Err != nil {
		t.Errorf("result 0 should succeed, got %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, ErrReadMarkdown) {
		t.Errorf("result 1 = %v, want ErrReadMarkdown", results[1].Err)
	}
	if results[2].Err != nil {
		t.Errorf("result 2 should succeed, got %v", results[2].Err)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	pool, err := md2enex.NewConverterPool(1, md2enex.DefaultOptions())
	if err != nil {
		t.Fatalf("NewConverterPool: %v", err)
	}

	if results := convertBatch(context.Background(), pool, nil); results != nil {
		t.Errorf("empty batch should return nil, got %v", results)
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("unset flags keep config values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.GroupBy = "notebook"
		cfg.Output.MaxNotesPerFile = 200
		cfg.Resources.MaxSize = 1024
		cfg.Resources.KeepUnknown = false
		cfg.Export.Tags = []string{"keep"}

		flags := &convertFlags{}
		flags.output.split = splitUnset
		flags.resources.maxSize = maxSizeUnset

		mergeFlags(flags, cfg)

		if cfg.Output.GroupBy != "notebook" {
			t.Errorf("GroupBy = %q, want notebook", cfg.Output.GroupBy)
		}
		if cfg.Output.MaxNotesPerFile != 200 {
			t.Errorf("MaxNotesPerFile = %d, want 200", cfg.Output.MaxNotesPerFile)
		}
		if cfg.Resources.MaxSize != 1024 {
			t.Errorf("MaxSize = %d, want 1024", cfg.Resources.MaxSize)
		}
		if cfg.Resources.KeepUnknown {
			t.Error("KeepUnknown should stay false when the flag was not passed")
		}
		if len(cfg.Export.Tags) != 1 || cfg.Export.Tags[0] != "keep" {
			t.Errorf("Tags = %v, want [keep]", cfg.Export.Tags)
		}
	})

	t.Run("set flags override config values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "from-config"
		cfg.Export.Tags = []string{"old"}

		flags := &convertFlags{}
		flags.output.dir = "from-flag"
		flags.output.groupBy = "top_folder"
		flags.output.split = 0 // explicit zero overrides
		flags.output.namePattern = "vault-{name}.enex"
		flags.resources.dir = "attachments"
		flags.resources.maxSize = 0 // explicit zero overrides
		flags.resources.keepUnknown = false
		flags.resources.keepUnknownSet = true
		flags.export.author = "jane"
		flags.export.tags = []string{"new", "tags"}

		mergeFlags(flags, cfg)

		if cfg.Output.Dir != "from-flag" {
			t.Errorf("Dir = %q, want from-flag", cfg.Output.Dir)
		}
		if cfg.Output.GroupBy != "top_folder" {
			t.Errorf("GroupBy = %q, want top_folder", cfg.Output.GroupBy)
		}
		if cfg.Output.MaxNotesPerFile != 0 {
			t.Errorf("MaxNotesPerFile = %d, want 0", cfg.Output.MaxNotesPerFile)
		}
		if cfg.Output.NamePattern != "vault-{name}.enex" {
			t.Errorf("NamePattern = %q, want vault-{name}.enex", cfg.Output.NamePattern)
		}
		if cfg.Input.ResourceDir != "attachments" {
			t.Errorf("ResourceDir = %q, want attachments", cfg.Input.ResourceDir)
		}
		if cfg.Resources.MaxSize != 0 {
			t.Errorf("MaxSize = %d, want 0", cfg.Resources.MaxSize)
		}
		if cfg.Resources.KeepUnknown {
			t.Error("KeepUnknown should be overridden to false")
		}
		if cfg.Export.Author != "jane" {
			t.Errorf("Author = %q, want jane", cfg.Export.Author)
		}
		if len(cfg.Export.Tags) != 2 || cfg.Export.Tags[0] != "new" {
			t.Errorf("Tags = %v, want [new tags]", cfg.Export.Tags)
		}
	})

	t.Run("keep-unknown flag default does not override without explicit set", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Resources.KeepUnknown = false

		flags := &convertFlags{}
		flags.output.split = splitUnset
		flags.resources.maxSize = maxSizeUnset
		flags.resources.keepUnknown = true // pflag default
		flags.resources.keepUnknownSet = false

		mergeFlags(flags, cfg)

		if cfg.Resources.KeepUnknown {
			t.Error("config value should survive when --keep-unknown was not passed")
		}
	})
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	t.Run("maps config fields onto options", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.GroupBy = "full_folder"
		cfg.Output.MaxNotesPerFile = 50
		cfg.Output.NamePattern = "x-{name}.enex"
		cfg.Output.ReplaceSpaces = false
		cfg.Markdown.ProtectCode = false
		cfg.Markdown.Substitutions = []config.Substitution{{From: "->", To: "→"}}
		cfg.Resources.MaxSize = 99
		cfg.Resources.KeepUnknown = false
		cfg.Export.Author = "jane"

		opts, err := buildOptions(cfg)
		if err != nil {
			t.Fatalf("buildOptions: %v", err)
		}

		if opts.GroupBy != md2enex.GroupFullFolder {
			t.Errorf("GroupBy = %v, want GroupFullFolder", opts.GroupBy)
		}
		if opts.MaxNotesPerFile != 50 {
			t.Errorf("MaxNotesPerFile = %d, want 50", opts.MaxNotesPerFile)
		}
		if opts.NamePattern != "x-{name}.enex" {
			t.Errorf("NamePattern = %q", opts.NamePattern)
		}
		if opts.ReplaceSpaces {
			t.Error("ReplaceSpaces should be false")
		}
		if opts.ProtectCode {
			t.Error("ProtectCode should be false")
		}
		if opts.MaxResourceSize != 99 {
			t.Errorf("MaxResourceSize = %d, want 99", opts.MaxResourceSize)
		}
		if opts.KeepUnknown {
			t.Error("KeepUnknown should be false")
		}
		if opts.Author != "jane" {
			t.Errorf("Author = %q, want jane", opts.Author)
		}
		if len(opts.Substitutions) != 1 || opts.Substitutions[0].From != "->" || opts.Substitutions[0].To != "→" {
			t.Errorf("Substitutions = %v", opts.Substitutions)
		}
	})

	t.Run("unknown strategy fails", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.GroupBy = "bogus"

		if _, err := buildOptions(cfg); !errors.Is(err, md2enex.ErrInvalidGroupStrategy) {
			t.Fatalf("buildOptions = %v, want ErrInvalidGroupStrategy", err)
		}
	})
}

func TestResolveInputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		sourceDir string
		want      string
		wantErr   error
	}{
		{"positional wins over config", []string{"arg/path"}, "/vault", "arg/path", nil},
		{"config source when no positional", nil, "/vault", "/vault", nil},
		{"neither fails", nil, "", "", ErrNoInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Input.SourceDir = tt.sourceDir

			got, err := resolveInputPath(tt.args, cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveInputPath = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveInputPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveInputPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveOutputDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flagOutput string
		configDir  string
		want       string
	}{
		{"flag wins", "flag-dir", "config-dir", "flag-dir"},
		{"config when no flag", "", "config-dir", "config-dir"},
		{"current directory fallback", "", "", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			cfg.Output.Dir = tt.configDir

			if got := resolveOutputDir(tt.flagOutput, cfg); got != tt.want {
				t.Errorf("resolveOutputDir = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateWorkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers int
		wantErr bool
	}{
		{"zero means auto", 0, false},
		{"one", 1, false},
		{"pool maximum", md2enex.MaxPoolSize, false},
		{"negative", -1, true},
		{"above pool maximum", md2enex.MaxPoolSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateWorkers(tt.workers)
			if tt.wantErr && !errors.Is(err, ErrInvalidWorkerCount) {
				t.Fatalf("validateWorkers(%d) = %v, want ErrInvalidWorkerCount", tt.workers, err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("validateWorkers(%d) = %v, want nil", tt.workers, err)
			}
		})
	}
}
