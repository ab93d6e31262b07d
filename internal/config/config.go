// Package config loads and validates the YAML configuration for the
// converter CLI. Defaults mirror the library's DefaultOptions; the file
// only needs the fields it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-md2enex/internal/fileutil"
	"github.com/alnah/go-md2enex/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Field length limits keep pathological config values out of file names
// and export metadata.
const (
	MaxAuthorLength       = 100 // note-attributes author
	MaxApplicationLength  = 50  // en-export application attribute
	MaxVersionLength      = 50  // en-export version attribute
	MaxPatternLength      = 200 // output file naming pattern
	MaxDirNameLength      = 100 // resource subdirectory name
	MaxSubstitutionLength = 100 // one side of a replacement pair
)

// groupStrategies are the accepted groupBy values; they match the
// library's GroupStrategy names.
var groupStrategies = []interface{}{
	"single", "top_folder", "full_folder", "notebook", "custom",
}

// Config holds all configuration for a conversion run.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Markdown  MarkdownConfig  `yaml:"markdown"`
	Resources ResourcesConfig `yaml:"resources"`
	Export    ExportConfig    `yaml:"export"`
}

// InputConfig defines source tree options.
type InputConfig struct {
	SourceDir   string `yaml:"sourceDir"`   // Default source directory (empty = must specify)
	ResourceDir string `yaml:"resourceDir"` // Resource subdirectory name per note folder
}

// Validate validates the input section.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ResourceDir,
			validation.Length(0, MaxDirNameLength),
			validation.By(isDirName),
		),
	)
}

// OutputConfig defines archive destination and shaping options.
type OutputConfig struct {
	Dir             string `yaml:"dir"`             // Output directory (empty = current directory)
	GroupBy         string `yaml:"groupBy"`         // single, top_folder, full_folder, notebook, custom
	MaxNotesPerFile int    `yaml:"maxNotesPerFile"` // 0 = no splitting
	NamePattern     string `yaml:"namePattern"`     // {name} substitution pattern
	ReplaceSpaces   bool   `yaml:"replaceSpaces"`   // spaces to underscores in file names
}

// Validate validates the output section.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.GroupBy, validation.Required, validation.In(groupStrategies...)),
		validation.Field(&c.MaxNotesPerFile, validation.Min(0)),
		validation.Field(&c.NamePattern,
			validation.Length(0, MaxPatternLength),
			validation.By(hasNamePlaceholder),
		),
	)
}

// MarkdownConfig selects preprocessing passes. All passes default to on;
// a config file only needs the ones it turns off.
type MarkdownConfig struct {
	ProtectCode      bool           `yaml:"protectCode"`
	RewriteWikiLinks bool           `yaml:"rewriteWikiLinks"`
	NormalizeLists   bool           `yaml:"normalizeLists"`
	StripHeadings    bool           `yaml:"stripHeadings"`
	StripHighlights  bool           `yaml:"stripHighlights"`
	EscapeHTML       bool           `yaml:"escapeHtml"`
	Substitutions    []Substitution `yaml:"substitutions"`
}

// Validate validates the markdown section.
func (c *MarkdownConfig) Validate() error {
	for i := range c.Substitutions {
		if err := c.Substitutions[i].Validate(); err != nil {
			return fmt.Errorf("markdown.substitutions[%d]: %w", i, err)
		}
	}
	return nil
}

// Substitution is one ordered text replacement applied during
// preprocessing.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Validate validates a replacement pair.
func (s *Substitution) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.From,
			validation.Required,
			validation.Length(1, MaxSubstitutionLength),
		),
		validation.Field(&s.To, validation.Length(0, MaxSubstitutionLength)),
	)
}

// ResourcesConfig defines attachment handling options.
type ResourcesConfig struct {
	MaxSize     int64 `yaml:"maxSize"`     // bytes; 0 = unlimited
	KeepUnknown bool  `yaml:"keepUnknown"` // placeholder image for unresolved references
}

// Validate validates the resources section.
func (c *ResourcesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxSize, validation.Min(int64(0))),
	)
}

// ExportConfig defines ENEX export metadata.
type ExportConfig struct {
	Author      string   `yaml:"author"`      // note-attributes author (empty = omitted)
	Application string   `yaml:"application"` // en-export application attribute
	Version     string   `yaml:"version"`     // en-export version attribute
	Tags        []string `yaml:"tags"`        // tags stamped on every note
}

// Validate validates the export section.
func (c *ExportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Author, validation.Length(0, MaxAuthorLength)),
		validation.Field(&c.Application, validation.Required, validation.Length(1, MaxApplicationLength)),
		validation.Field(&c.Version, validation.Required, validation.Length(1, MaxVersionLength)),
	)
}

// Validate checks the whole configuration. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Markdown.Validate(); err != nil {
		return err
	}
	if err := c.Resources.Validate(); err != nil {
		return err
	}
	return c.Export.Validate()
}

// hasNamePlaceholder requires the {name} marker in non-empty patterns so
// grouped archives cannot overwrite each other.
func hasNamePlaceholder(value interface{}) error {
	s, _ := value.(string)
	if s != "" && !strings.Contains(s, "{name}") {
		return errors.New("must contain {name}")
	}
	return nil
}

// isDirName rejects resource directory values containing path
// separators; the setting names a subdirectory, not a path.
func isDirName(value interface{}) error {
	s, _ := value.(string)
	if fileutil.IsFilePath(s) {
		return errors.New("must be a directory name, not a path")
	}
	return nil
}

// DefaultConfig returns the configuration matching the library defaults:
// every preprocessing pass on, unknown references kept as placeholders,
// one archive holding every note.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			ResourceDir: "_resources",
		},
		Output: OutputConfig{
			GroupBy:       "single",
			NamePattern:   "{name}.enex",
			ReplaceSpaces: true,
		},
		Markdown: MarkdownConfig{
			ProtectCode:      true,
			RewriteWikiLinks: true,
			NormalizeLists:   true,
			StripHeadings:    true,
			StripHighlights:  true,
			EscapeHTML:       true,
		},
		Resources: ResourcesConfig{
			MaxSize:     50 * 1024 * 1024,
			KeepUnknown: true,
		},
		Export: ExportConfig{
			Application: "md2enex",
			Version:     "1.0",
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard
// locations. The file is decoded over the defaults, so omitted fields
// keep their default values. Returns error if the file is not found
// (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate locations for a config name, in
// resolution order: current directory then the user config directory,
// each with .yaml before .yml. Callers use it for error hints.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-md2enex", name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
