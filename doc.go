// Package md2enex converts Obsidian-flavored Markdown into Evernote
// export (.enex) archives that Apple Notes imports cleanly.
//
// # Quick Start
//
// Create a converter, convert a document, and encode the archive:
//
//	opts := md2enex.DefaultOptions()
//	conv, err := md2enex.NewConverter(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	note, err := conv.Convert(ctx, md2enex.Input{
//	    Markdown: "# Hello\n\nWorld",
//	    Document: md2enex.Document{RelPath: "hello.md"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	docs := md2enex.BuildArchives([]*md2enex.Note{note}, opts, time.Now())
//	for _, d := range docs {
//	    f, _ := os.Create(d.FileName)
//	    md2enex.WriteEnex(f, &d)
//	    f.Close()
//	}
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Markdown preprocessing (frontmatter, code protection, wiki links)
//  2. Markdown to HTML conversion via Goldmark (GFM)
//  3. HTML to ENML sanitization (allow-listed tags, en-todo, en-media)
//  4. Resource binding (MD5 dedup, placeholder substitution)
//  5. Grouping, splitting, and ENEX encoding
//
// Notes carry a GroupKey computed from the configured GroupStrategy;
// BuildArchives buckets notes by that key, splits oversized groups, and
// names the output files. WriteEnex serializes one archive.
//
// # Configuration
//
// Options is a plain value, resolved by the caller before conversion:
//
//	opts := md2enex.DefaultOptions()
//	opts.GroupBy = md2enex.GroupTopFolder
//	opts.MaxNotesPerFile = 100
//	opts.Author = "jane"
//	conv, err := md2enex.NewConverter(opts)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool. All workers share one
// resource index, so an attachment embedded in many notes is stored
// once per run:
//
//	pool, err := md2enex.NewConverterPool(4, opts)
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
//	note, err := conv.Convert(ctx, input)
//
// # Resource Handling
//
// Embedded references (![[image.png]] and local <img> paths) are
// resolved against the document's resource directory by exact name.
// Files over Options.MaxResourceSize, missing files, and unreadable
// files become unknown references: those get a transparent placeholder
// image, or are dropped when Options.KeepUnknown is false.
package md2enex
