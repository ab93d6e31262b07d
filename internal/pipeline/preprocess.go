package pipeline

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/alnah/go-md2enex/internal/dateutil"
)

// Media placeholders mark resource references for later binding. They use
// the same Private Use Area trick as code placeholders: Goldmark passes
// them through as plain text and the note assembler swaps them for
// en-media elements once resource hashes are known.
const (
	mediaTokenStart = "\uE004" // U+E004: media placeholder start
	mediaTokenEnd   = "\uE005" // U+E005: media placeholder end
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Obsidian image embed ![[name]] or ![[name|size]]
	embedPattern = regexp.MustCompile(`!\[\[([^\[\]]+)\]\]`)

	// Obsidian wiki link [[target]] or [[target|alias]]
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

	// Asterisk list markers at line start
	asteriskListPattern = regexp.MustCompile(`(?m)^(\s*)\*(\s+)`)

	// ATX heading markers at line start
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s+`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)

	// Bare ampersands, excluding ones already starting an entity
	bareAmpPattern = regexp.MustCompile(`&(#[0-9]{1,7};|#[xX][0-9a-fA-F]{1,6};|[a-zA-Z][a-zA-Z0-9]{1,31};)?`)
)

// Substitution is one ordered special-character replacement, applied to
// document text before HTML-sensitive characters are escaped.
type Substitution struct {
	From string
	To   string
}

// PreprocessConfig selects which normalization passes run.
type PreprocessConfig struct {
	ProtectCode      bool // lift fenced blocks and inline spans out of the text
	RewriteWikiLinks bool // ![[embed]] and [[link]] syntax
	NormalizeLists   bool // asterisk list markers to hyphens
	StripHeadings    bool // remove ATX markers, keep heading text
	StripHighlights  bool // remove ==highlight== delimiters, keep text
	EscapeHTML       bool // escape raw markup so it renders as text
	Substitutions    []Substitution
}

// Preprocessed carries the normalized markdown plus everything lifted out
// of it on the way: the creation date from frontmatter, protected code
// regions, and resource references in placeholder index order.
type Preprocessed struct {
	Markdown string
	Created  time.Time // zero when frontmatter has no usable date
	Blocks   []CodeBlock
	Spans    []CodeSpan
	Refs     []string
}

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	Preprocess(ctx context.Context, content string, cfg PreprocessConfig) *Preprocessed
}

// ObsidianPreprocessor normalizes Obsidian-flavored markdown into the
// CommonMark subset the renderer understands.
type ObsidianPreprocessor struct{}

// Preprocess applies all configured transformations. The pass order
// matters: code regions are lifted first so nothing later touches them,
// and HTML-sensitive characters are escaped after the substitution table
// so replacements are not re-escaped.
func (p *ObsidianPreprocessor) Preprocess(ctx context.Context, content string, cfg PreprocessConfig) *Preprocessed {
	// Check for cancellation before processing
	if ctx.Err() != nil {
		return &Preprocessed{Markdown: content}
	}

	result := &Preprocessed{}

	content = normalizeLineEndings(content)
	content, result.Created = splitFrontmatter(content)

	if cfg.ProtectCode {
		content, result.Blocks = ExtractCodeBlocks(content)
		content, result.Spans = ExtractCodeSpans(content)
	}
	if cfg.StripHighlights {
		content = stripHighlights(content)
	}
	if cfg.StripHeadings {
		content = stripHeadings(content)
	}
	if cfg.NormalizeLists {
		content = normalizeListMarkers(content)
	}

	content = applySubstitutions(content, cfg.Substitutions)

	if cfg.EscapeHTML {
		content = escapeHTMLChars(content)
	}
	if cfg.RewriteWikiLinks {
		content, result.Refs = rewriteEmbeds(content)
		content = rewriteWikiLinks(content)
	}

	result.Markdown = compressBlankLines(content)
	return result
}

// MediaToken renders the resource placeholder for reference index i.
// The note assembler replaces these with en-media elements.
func MediaToken(i int) string {
	return mediaTokenStart + strconv.Itoa(i) + mediaTokenEnd
}

// noteFrontmatter is the only frontmatter shape we read. Everything except
// the creation date is parsed and discarded.
type noteFrontmatter struct {
	Created string `yaml:"created"`
}

// splitFrontmatter strips a YAML frontmatter block and extracts the
// creation date. Malformed frontmatter never fails a document: the block
// is treated as absent and the body returned untouched.
func splitFrontmatter(content string) (string, time.Time) {
	var meta noteFrontmatter
	rest, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return content, time.Time{}
	}

	if meta.Created != "" {
		if t, perr := dateutil.ParseNoteDate(meta.Created); perr == nil {
			return string(rest), t
		}
	}
	return string(rest), time.Time{}
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// rewriteEmbeds converts ![[name]] image embeds into media placeholders
// and records the referenced file names in placeholder index order.
// A |size or |alt suffix after the name is dropped.
func rewriteEmbeds(content string) (string, []string) {
	var refs []string
	out := embedPattern.ReplaceAllStringFunc(content, func(m string) string {
		inner := m[3 : len(m)-2]
		name := inner
		if i := strings.Index(inner, "|"); i >= 0 {
			name = inner[:i]
		}
		// Embed names were escaped along with the rest of the text;
		// resource lookup needs the literal file name back.
		name = html.UnescapeString(strings.TrimSpace(name))
		if name == "" {
			return ""
		}
		refs = append(refs, name)
		return MediaToken(len(refs) - 1)
	})
	return out, refs
}

// rewriteWikiLinks converts [[target]] and [[target|alias]] into ordinary
// markdown links. Targets go into angle-bracket destinations so names
// with spaces survive rendering.
func rewriteWikiLinks(content string) string {
	return wikiLinkPattern.ReplaceAllStringFunc(content, func(m string) string {
		inner := m[2 : len(m)-2]
		target, alias := inner, inner
		if i := strings.Index(inner, "|"); i >= 0 {
			target = strings.TrimSpace(inner[:i])
			alias = strings.TrimSpace(inner[i+1:])
			if alias == "" {
				alias = target
			}
		}
		if target == "" {
			return alias
		}
		return "[" + alias + "](<" + target + ">)"
	})
}

// normalizeListMarkers converts asterisk list items to hyphen items.
// Emphasis is unaffected: the pattern requires whitespace after the
// asterisk, which *emphasis* and **bold** never have.
func normalizeListMarkers(content string) string {
	return asteriskListPattern.ReplaceAllString(content, "${1}-${2}")
}

// stripHeadings removes ATX heading markers while keeping the text.
func stripHeadings(content string) string {
	return headingPattern.ReplaceAllString(content, "")
}

// stripHighlights removes ==highlight== delimiters while keeping the text.
// ENML has no highlight element, so the styling cannot be carried over.
func stripHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, "$1")
}

// applySubstitutions runs the replacement table in declared order.
func applySubstitutions(content string, subs []Substitution) string {
	for _, s := range subs {
		if s.From == "" {
			continue
		}
		content = strings.ReplaceAll(content, s.From, s.To)
	}
	return content
}

// escapeHTMLChars escapes ampersands and angle brackets so raw markup in
// the source renders as visible text instead of leaking into the ENML.
// Existing entity references are left alone.
func escapeHTMLChars(content string) string {
	content = bareAmpPattern.ReplaceAllStringFunc(content, func(m string) string {
		if m == "&" {
			return "&amp;"
		}
		return m
	})
	content = strings.ReplaceAll(content, "<", "&lt;")
	return strings.ReplaceAll(content, ">", "&gt;")
}
