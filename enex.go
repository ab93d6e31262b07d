package md2enex

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/alnah/go-md2enex/internal/dateutil"
)

// Document type declarations Evernote validates on import.
const (
	enexDoctype = `<!DOCTYPE en-export SYSTEM "http://xml.evernote.com/pub/evernote-export3.dtd">`

	enmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n" +
		`<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">` + "\n"
)

// base64LineLength folds resource payloads the way Evernote's own
// exports do.
const base64LineLength = 76

// enexExport mirrors the en-export root element.
type enexExport struct {
	XMLName     xml.Name   `xml:"en-export"`
	ExportDate  string     `xml:"export-date,attr"`
	Application string     `xml:"application,attr"`
	Version     string     `xml:"version,attr"`
	Notes       []enexNote `xml:"note"`
}

type enexNote struct {
	Title      string          `xml:"title"`
	Content    enexContent     `xml:"content"`
	Created    string          `xml:"created,omitempty"`
	Updated    string          `xml:"updated,omitempty"`
	Tags       []string        `xml:"tag,omitempty"`
	Attributes *noteAttributes `xml:"note-attributes,omitempty"`
	Resources  []enexResource  `xml:"resource,omitempty"`
}

// enexContent holds the ENML document. The cdata tag makes the encoder
// emit a CDATA section and split any embedded "]]>" across sections, so
// the content can never terminate the CDATA early.
type enexContent struct {
	Data string `xml:",cdata"`
}

type noteAttributes struct {
	Author            string `xml:"author,omitempty"`
	SourceApplication string `xml:"source-application,omitempty"`
}

type enexResource struct {
	Data       enexData            `xml:"data"`
	Mime       string              `xml:"mime"`
	Attributes *resourceAttributes `xml:"resource-attributes,omitempty"`
}

type enexData struct {
	Encoding string `xml:"encoding,attr"`
	Value    string `xml:",chardata"`
}

type resourceAttributes struct {
	FileName string `xml:"file-name,omitempty"`
}

// WriteEnex encodes the document as an ENEX export stream: XML
// declaration, en-export doctype, then the note list.
func WriteEnex(w io.Writer, doc *EnexDocument) error {
	export := enexExport{
		ExportDate:  dateutil.FormatEvernote(doc.ExportDate),
		Application: doc.Application,
		Version:     doc.Version,
		Notes:       make([]enexNote, 0, len(doc.Notes)),
	}
	for _, n := range doc.Notes {
		export.Notes = append(export.Notes, toEnexNote(n))
	}
	withNoteAttributes(export.Notes, doc.Author, doc.Application)

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("%w: %v", ErrEnexEncode, err)
	}
	if _, err := io.WriteString(w, enexDoctype+"\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrEnexEncode, err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("%w: %v", ErrEnexEncode, err)
	}

	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("%w: %v", ErrEnexEncode, err)
	}
	return nil
}

// EnexBytes encodes the document into memory.
func EnexBytes(doc *EnexDocument) ([]byte, error) {
	var b strings.Builder
	if err := WriteEnex(&b, doc); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func toEnexNote(n *Note) enexNote {
	out := enexNote{
		Title:   n.Title,
		Content: enexContent{Data: enmlEnvelope(n.Content)},
		Tags:    n.Tags,
	}
	if !n.Created.IsZero() {
		out.Created = dateutil.FormatEvernote(n.Created)
	}
	if !n.Updated.IsZero() {
		out.Updated = dateutil.FormatEvernote(n.Updated)
	}
	for _, r := range n.Resources {
		out.Resources = append(out.Resources, toEnexResource(r))
	}
	return out
}

// withNoteAttributes attaches export metadata to every note. Empty
// metadata leaves the note-attributes element out entirely.
func withNoteAttributes(notes []enexNote, author, sourceApp string) {
	if author == "" && sourceApp == "" {
		return
	}
	for i := range notes {
		notes[i].Attributes = &noteAttributes{
			Author:            author,
			SourceApplication: sourceApp,
		}
	}
}

func toEnexResource(r *Resource) enexResource {
	res := enexResource{
		Data: enexData{
			Encoding: "base64",
			Value:    wrapBase64(r.Data),
		},
		Mime: r.Mime,
	}
	if r.FileName != "" {
		res.Attributes = &resourceAttributes{FileName: r.FileName}
	}
	return res
}

// enmlEnvelope wraps a note body in the ENML document shell.
func enmlEnvelope(body string) string {
	var b strings.Builder
	b.Grow(len(enmlHeader) + len(body) + len("<en-note></en-note>"))
	b.WriteString(enmlHeader)
	b.WriteString("<en-note>")
	b.WriteString(body)
	b.WriteString("</en-note>")
	return b.String()
}

// wrapBase64 encodes data and folds it into fixed-width lines.
func wrapBase64(data []byte) string {
	s := base64.StdEncoding.EncodeToString(data)
	if len(s) <= base64LineLength {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/base64LineLength + 1)
	for len(s) > base64LineLength {
		b.WriteString(s[:base64LineLength])
		b.WriteByte('\n')
		s = s[base64LineLength:]
	}
	b.WriteString(s)
	return b.String()
}
