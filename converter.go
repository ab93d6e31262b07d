package md2enex

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-md2enex/internal/pipeline"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.ObsidianPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.Sanitizer            = (*pipeline.ENMLSanitizer)(nil)
)

// Converter turns markdown documents into Evernote notes. A Converter is
// safe for sequential reuse; use a ConverterPool for concurrent batches.
type Converter struct {
	opts         Options
	preprocessor pipeline.MarkdownPreprocessor
	html         pipeline.HTMLConverter
	sanitizer    pipeline.Sanitizer
	resolver     *resourceResolver
	now          func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithResourceIndex shares a resource dedup index across converters.
// Pool workers use this so identical attachments are stored once per run.
func WithResourceIndex(index *ResourceIndex) Option {
	return func(c *Converter) {
		c.resolver.index = index
	}
}

// NewConverter creates a Converter from validated options.
func NewConverter(opts Options, convOpts ...Option) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Converter{
		opts:         opts,
		preprocessor: &pipeline.ObsidianPreprocessor{},
		html:         pipeline.NewGoldmarkConverter(),
		sanitizer:    &pipeline.ENMLSanitizer{},
		resolver: &resourceResolver{
			maxSize: opts.MaxResourceSize,
			index:   NewResourceIndex(),
		},
		now: time.Now,
	}
	for _, opt := range convOpts {
		opt(c)
	}
	return c, nil
}

// Convert runs the full pipeline for one document: preprocess the
// markdown, render it to HTML, sanitize that into ENML, bind resource
// references, and assemble the note.
//
// The creation date comes from frontmatter when present, then the file's
// modification time, then the clock. Empty markdown is legal and yields
// a note with an empty body.
func (c *Converter) Convert(ctx context.Context, input Input) (*Note, error) {
	if input.Document.RelPath == "" {
		return nil, ErrMissingPath
	}

	pre := c.preprocessor.Preprocess(ctx, input.Markdown, c.preprocessConfig())

	htmlOut, err := c.html.ToHTML(ctx, pre.Markdown)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkdownConversion, err)
	}

	san, err := c.sanitizer.Sanitize(ctx, pipeline.SanitizeInput{
		HTML:   htmlOut,
		Blocks: pre.Blocks,
		Spans:  pre.Spans,
		Refs:   pre.Refs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrENMLConversion, err)
	}

	content, resources, missing := c.bindResources(san.ENML, san.Refs, input.Document.ResourceDir)

	created := pre.Created
	if created.IsZero() {
		created = input.Document.ModTime
	}
	if created.IsZero() {
		created = c.now()
	}
	created = created.UTC()

	return &Note{
		Title:       input.Document.Stem(),
		Content:     content,
		Created:     created,
		Updated:     created,
		Tags:        append([]string(nil), input.Document.Tags...),
		Resources:   resources,
		GroupKey:    GroupKeyFor(c.opts.GroupBy, input.Document),
		SourcePath:  input.Document.RelPath,
		MissingRefs: missing,
	}, nil
}

// Options returns a copy of the converter's configuration.
func (c *Converter) Options() Options {
	return c.opts
}

// bindResources replaces media placeholders with en-media elements and
// returns the note's unique resources in first-reference order. Unknown
// references get the placeholder image, or are dropped entirely when
// placeholder substitution is off; either way they are reported back.
func (c *Converter) bindResources(enml string, refs []string, dir string) (string, []*Resource, []string) {
	if len(refs) == 0 {
		return enml, nil, nil
	}

	var ordered []*Resource
	var missing []string
	seen := make(map[string]bool)

	for i, ref := range refs {
		token := pipeline.MediaToken(i)
		if !strings.Contains(enml, token) {
			continue
		}

		res, err := c.resolver.resolve(dir, ref)
		if err != nil {
			missing = append(missing, ref)
			if !c.opts.KeepUnknown {
				enml = strings.ReplaceAll(enml, token, "")
				continue
			}
			res = c.resolver.placeholder()
		}

		enml = strings.ReplaceAll(enml, token, enMediaElement(res))
		if !seen[res.Hash] {
			seen[res.Hash] = true
			ordered = append(ordered, res)
		}
	}
	return enml, ordered, missing
}

// enMediaElement renders the en-media reference for a resource.
func enMediaElement(r *Resource) string {
	return fmt.Sprintf(`<en-media type="%s" hash="%s"/>`, r.Mime, r.Hash)
}

// preprocessConfig maps public options onto the preprocessing passes.
func (c *Converter) preprocessConfig() pipeline.PreprocessConfig {
	cfg := pipeline.PreprocessConfig{
		ProtectCode:      c.opts.ProtectCode,
		RewriteWikiLinks: c.opts.RewriteWikiLinks,
		NormalizeLists:   c.opts.NormalizeLists,
		StripHeadings:    c.opts.StripHeadings,
		StripHighlights:  c.opts.StripHighlights,
		EscapeHTML:       c.opts.EscapeHTML,
	}
	for _, s := range c.opts.Substitutions {
		cfg.Substitutions = append(cfg.Substitutions, pipeline.Substitution(s))
	}
	return cfg
}
