package md2enex

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// GroupKeyFor computes the archive bucket for a document. Strategies are
// total: every document maps to a non-empty key.
func GroupKeyFor(strategy GroupStrategy, doc Document) string {
	switch strategy {
	case GroupTopFolder:
		dir := path.Dir(doc.RelPath)
		if dir == "." || dir == "" {
			return GroupKeyRoot
		}
		if i := strings.IndexByte(dir, '/'); i >= 0 {
			return dir[:i]
		}
		return dir

	case GroupFullFolder:
		dir := path.Dir(doc.RelPath)
		if dir == "." || dir == "" {
			return GroupKeyRoot
		}
		return dir

	case GroupNotebook:
		if doc.Notebook != "" {
			return doc.Notebook
		}
		return GroupKeyDefault

	case GroupCustom:
		if doc.GroupOverride != "" {
			return doc.GroupOverride
		}
		return GroupKeyDefault

	default: // GroupSingle and anything unrecognized
		return GroupKeyAll
	}
}

// GroupNotes buckets notes by their precomputed group key. Groups appear
// in first-seen order; notes keep their scan order within a group.
func GroupNotes(notes []*Note) []NoteGroup {
	var groups []NoteGroup
	index := make(map[string]int)

	for _, n := range notes {
		key := n.GroupKey
		if key == "" {
			key = GroupKeyDefault
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, NoteGroup{Key: key})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}
	return groups
}

// splitGroup slices a group into chunks of at most maxNotes. Split parts
// are numbered from one: "Key (Part 1)", "Key (Part 2)", ...
// A group that fits keeps its bare key as the name.
func splitGroup(g NoteGroup, maxNotes int) []EnexDocument {
	if maxNotes <= 0 || len(g.Notes) <= maxNotes {
		return []EnexDocument{{Name: g.Key, Notes: g.Notes}}
	}

	parts := (len(g.Notes) + maxNotes - 1) / maxNotes
	docs := make([]EnexDocument, 0, parts)
	for i := 0; i < parts; i++ {
		lo := i * maxNotes
		hi := lo + maxNotes
		if hi > len(g.Notes) {
			hi = len(g.Notes)
		}
		docs = append(docs, EnexDocument{
			Name:  fmt.Sprintf("%s (Part %d)", g.Key, i+1),
			Notes: g.Notes[lo:hi],
		})
	}
	return docs
}

// BuildArchives runs grouping, splitting, and file naming over converted
// notes, producing the final set of archive documents in output order.
func BuildArchives(notes []*Note, opts Options, exportDate time.Time) []EnexDocument {
	var docs []EnexDocument
	for _, g := range GroupNotes(notes) {
		docs = append(docs, splitGroup(g, opts.MaxNotesPerFile)...)
	}
	for i := range docs {
		docs[i].FileName = ArchiveFileName(docs[i].Name, opts.NamePattern, opts.ReplaceSpaces)
		docs[i].ExportDate = exportDate
		docs[i].Application = opts.Application
		docs[i].Version = opts.Version
		docs[i].Author = opts.Author
	}
	return docs
}

// ArchiveFileName renders a group name into a safe .enex file name.
// Characters outside [A-Za-z0-9 ._-] are dropped, spaces optionally
// become underscores, and the {name} pattern is applied. A name reduced
// to nothing falls back to "notes".
func ArchiveFileName(name, pattern string, replaceSpaces bool) string {
	clean := sanitizeFileName(name, replaceSpaces)
	if clean == "" {
		clean = "notes"
	}
	if pattern == "" {
		pattern = DefaultNamePattern
	}
	out := strings.ReplaceAll(pattern, NamePlaceholder, clean)
	if !strings.HasSuffix(strings.ToLower(out), ".enex") {
		out += ".enex"
	}
	return out
}

// sanitizeFileName keeps the filesystem-safe character set and drops the
// rest. Path separators fall out with the other rejected characters.
func sanitizeFileName(name string, replaceSpaces bool) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		switch {
		case r == ' ':
			if replaceSpaces {
				b.WriteByte('_')
			} else {
				b.WriteByte(' ')
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " .")
}
