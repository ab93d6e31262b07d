// Package pipeline implements the Markdown-to-ENML conversion stages.
//
// This package handles preprocessing, HTML conversion, and sanitization:
//   - Markdown preprocessing (frontmatter, code protection, wiki syntax,
//     list and heading normalization, character substitutions)
//   - Markdown to HTML conversion via Goldmark
//   - HTML to ENML sanitization against Evernote's element grammar
//
// Resource resolution, note assembly, and ENEX serialization are handled
// by the root md2enex package. This separation keeps the pipeline focused
// on a single document's content, while the root package owns everything
// that spans documents: the resource index, grouping, and archive output.
//
// Stages communicate through Private Use Area placeholder tokens. The
// preprocessor lifts fenced code and resource references out of the text,
// Goldmark passes the tokens through untouched, and the sanitizer or note
// assembler substitutes the final ENML on the other side.
package pipeline
