package md2enex

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// GroupStrategy selects how notes are bucketed into .enex output files.
// The set is closed: every strategy is handled explicitly and parsing
// rejects anything else.
type GroupStrategy int

const (
	// GroupSingle puts every note into one archive.
	GroupSingle GroupStrategy = iota

	// GroupTopFolder buckets notes by the first folder segment of their path.
	GroupTopFolder

	// GroupFullFolder buckets notes by their full parent folder path.
	GroupFullFolder

	// GroupNotebook buckets notes by the notebook assigned during scanning.
	GroupNotebook

	// GroupCustom buckets notes by the per-document group override.
	GroupCustom
)

// Group key fallbacks, used when a strategy has nothing to key on.
const (
	GroupKeyAll     = "All Notes"
	GroupKeyRoot    = "Root"
	GroupKeyDefault = "Default"
)

// groupStrategyNames maps strategies to their configuration spelling.
var groupStrategyNames = map[GroupStrategy]string{
	GroupSingle:     "single",
	GroupTopFolder:  "top_folder",
	GroupFullFolder: "full_folder",
	GroupNotebook:   "notebook",
	GroupCustom:     "custom",
}

// String returns the configuration spelling of the strategy.
func (g GroupStrategy) String() string {
	if name, ok := groupStrategyNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GroupStrategy(%d)", int(g))
}

// ParseGroupStrategy converts a configuration string into a GroupStrategy.
func ParseGroupStrategy(s string) (GroupStrategy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for strategy, n := range groupStrategyNames {
		if n == name {
			return strategy, nil
		}
	}
	return GroupSingle, fmt.Errorf("%w: %q (must be single, top_folder, full_folder, notebook, or custom)", ErrInvalidGroupStrategy, s)
}

// Document describes one markdown file discovered under the source tree.
// The scanner fills it in; the converter only reads it.
type Document struct {
	AbsPath       string    // absolute path on disk
	RelPath       string    // slash-separated path relative to the source root
	ResourceDir   string    // directory searched for embedded resources
	Notebook      string    // slash-separated parent folder path, "" at the root
	GroupOverride string    // precomputed group key for GroupCustom
	Tags          []string  // tags applied to the resulting note
	ModTime       time.Time // modification time, creation date fallback
}

// Stem returns the file name without directory or extension.
// Note titles come from here.
func (d Document) Stem() string {
	base := path.Base(d.RelPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Input contains conversion parameters for a single note.
type Input struct {
	Markdown string   // markdown content
	Document Document // source descriptor (RelPath required)
}

// Note is one converted note, ready for archive assembly.
type Note struct {
	Title       string
	Content     string      // ENML note body: the children of en-note
	Created     time.Time   // UTC, never zero
	Updated     time.Time   // UTC, never zero
	Tags        []string
	Resources   []*Resource // unique per note, ordered by first reference
	GroupKey    string      // archive bucket, computed from the group strategy
	SourcePath  string      // RelPath of the originating document
	MissingRefs []string    // references that could not be resolved
}

// Resource is one binary attachment, deduplicated run-wide by hash.
type Resource struct {
	Hash        string // MD5 of Data, lowercase hex; the en-media key
	Data        []byte
	Mime        string
	FileName    string
	Placeholder bool // stand-in image bound to an unknown reference
}

// Size returns the resource payload size in bytes.
func (r *Resource) Size() int64 {
	return int64(len(r.Data))
}

// NoteGroup is one archive bucket: the notes sharing a group key, in
// scan order.
type NoteGroup struct {
	Key   string
	Notes []*Note
}

// EnexDocument is one .enex output file ready for encoding.
type EnexDocument struct {
	FileName    string // final file name, naming pattern applied
	Name        string // group name, with part suffix when split
	Notes       []*Note
	ExportDate  time.Time
	Application string
	Version     string
	Author      string // note-attributes author; "" omits it
}

// Substitution is one ordered special-character replacement, applied to
// document text during preprocessing.
type Substitution struct {
	From string
	To   string
}

// Output naming constants.
const (
	// NamePlaceholder marks where the group name lands in a naming pattern.
	NamePlaceholder = "{name}"

	// DefaultNamePattern is the naming pattern applied when none is configured.
	DefaultNamePattern = "{name}.enex"
)

// DefaultMaxResourceSize caps embedded resources at Evernote's own
// per-resource limit.
const DefaultMaxResourceSize = 50 * 1024 * 1024

// Options is the resolved configuration for a conversion run. The CLI
// merges config file and flags before handing it over; the library
// validates but never mutates it.
type Options struct {
	// Preprocessing passes.
	ProtectCode      bool // lift fenced blocks and inline spans out of markdown
	RewriteWikiLinks bool // ![[embed]] and [[link]] syntax
	NormalizeLists   bool // asterisk list markers to hyphens
	StripHeadings    bool // remove ATX markers, keep heading text
	StripHighlights  bool // remove ==highlight== delimiters, keep text
	EscapeHTML       bool // escape raw markup so it renders as text
	Substitutions    []Substitution

	// Resource handling.
	MaxResourceSize int64 // bytes; larger files are treated as unknown
	KeepUnknown     bool  // bind unknown references to a placeholder image

	// Grouping and output naming.
	GroupBy         GroupStrategy
	MaxNotesPerFile int    // 0 = unlimited
	NamePattern     string // must contain {name}; "" = default
	ReplaceSpaces   bool   // spaces to underscores in file names

	// Export metadata.
	Author      string // note-attributes author; "" omits it
	Application string // en-export application attribute
	Version     string // en-export version attribute
}

// DefaultOptions returns the conversion defaults: full Obsidian
// normalization, a 50MB resource cap with placeholder substitution, and
// a single archive holding every note.
func DefaultOptions() Options {
	return Options{
		ProtectCode:      true,
		RewriteWikiLinks: true,
		NormalizeLists:   true,
		StripHeadings:    true,
		StripHighlights:  true,
		EscapeHTML:       true,
		MaxResourceSize:  DefaultMaxResourceSize,
		KeepUnknown:      true,
		GroupBy:          GroupSingle,
		MaxNotesPerFile:  0,
		NamePattern:      DefaultNamePattern,
		ReplaceSpaces:    true,
		Application:      "md2enex",
		Version:          "1.0",
	}
}

// Validate checks option consistency. Zero values that have meaning
// (unlimited split, empty author) pass.
func (o *Options) Validate() error {
	if _, ok := groupStrategyNames[o.GroupBy]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidGroupStrategy, int(o.GroupBy))
	}
	if o.MaxNotesPerFile < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidSplitSize, o.MaxNotesPerFile)
	}
	if o.MaxResourceSize < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidResourceSize, o.MaxResourceSize)
	}
	if o.NamePattern != "" && !strings.Contains(o.NamePattern, NamePlaceholder) {
		return fmt.Errorf("%w: %q (must contain %s)", ErrInvalidNamePattern, o.NamePattern, NamePlaceholder)
	}
	return nil
}
