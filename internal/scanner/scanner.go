// Package scanner discovers markdown documents under a source tree.
//
// A scan walks an Obsidian vault (or any plain directory) and returns one
// Document per markdown file, carrying everything the converter needs:
// relative path, sibling resource directory, notebook folder, and the file
// modification time used as the creation-date fallback. Hidden directories
// and resource directories are skipped.
package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	md2enex "github.com/alnah/go-md2enex"
	"github.com/alnah/go-md2enex/internal/fileutil"
)

// Sentinel errors for source discovery.
var (
	// ErrSourceNotFound means the input path does not exist.
	ErrSourceNotFound = errors.New("source path not found")

	// ErrInvalidExtension means a single-file input is not markdown.
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
)

// DefaultResourceDirName is the sibling folder searched for embedded
// resources when none is configured.
const DefaultResourceDirName = "_resources"

// Options configures a scan.
type Options struct {
	// ResourceDirName is the name of the per-folder resource directory.
	// Empty means DefaultResourceDirName. Directories with this name are
	// skipped during the walk and recorded as each note's resource root.
	ResourceDirName string

	// Tags are applied to every discovered document.
	Tags []string
}

// Scan walks root and returns one Document per markdown file, in lexical
// walk order. Root may also be a single markdown file.
func Scan(root string, opts Options) ([]md2enex.Document, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving source path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, root)
		}
		return nil, fmt.Errorf("reading source path: %w", err)
	}

	resourceDirName := opts.ResourceDirName
	if resourceDirName == "" {
		resourceDirName = DefaultResourceDirName
	}
	tags := append([]string(nil), opts.Tags...)

	if !info.IsDir() {
		if err := validateMarkdownExtension(absRoot); err != nil {
			return nil, err
		}
		doc := describe(absRoot, filepath.Base(absRoot), resourceDirName, tags)
		doc.ModTime = info.ModTime()
		return []md2enex.Document{doc}, nil
	}

	var docs []md2enex.Document
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		if d.IsDir() {
			if p == absRoot {
				return nil
			}
			// Hidden directories (.obsidian, .trash) and resource
			// directories are never note sources.
			if fileutil.IsHidden(d.Name()) || d.Name() == resourceDirName {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".md" && ext != ".markdown" {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		doc := describe(p, filepath.ToSlash(rel), resourceDirName, tags)
		doc.ModTime = fi.ModTime()
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// describe builds a Document from an absolute path and its slash-separated
// relative path. ModTime is left for the caller.
func describe(absPath, relPath, resourceDirName string, tags []string) md2enex.Document {
	notebook := path.Dir(relPath)
	if notebook == "." {
		notebook = ""
	}

	groupOverride := md2enex.GroupKeyRoot
	if notebook != "" {
		groupOverride = strings.ReplaceAll(notebook, "/", "_")
	}

	return md2enex.Document{
		AbsPath:       absPath,
		RelPath:       relPath,
		ResourceDir:   filepath.Join(filepath.Dir(absPath), resourceDirName),
		Notebook:      notebook,
		GroupOverride: groupOverride,
		Tags:          tags,
	}
}

// validateMarkdownExtension checks that the file has a .md or .markdown
// extension.
func validateMarkdownExtension(p string) error {
	ext := filepath.Ext(p)
	if ext != ".md" && ext != ".markdown" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// Summary aggregates a scan for reporting.
type Summary struct {
	Total   int
	Folders map[string]int // notes per notebook folder, "" is the root
}

// Summarize counts documents per notebook folder.
func Summarize(docs []md2enex.Document) Summary {
	s := Summary{Folders: make(map[string]int)}
	for _, doc := range docs {
		s.Total++
		s.Folders[doc.Notebook]++
	}
	return s
}
