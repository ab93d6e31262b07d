package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-md2enex/internal/fileutil"
)

// ErrSanitizeContent indicates HTML to ENML transformation failed.
var ErrSanitizeContent = errors.New("ENML sanitization failed")

// permittedElements is the exact set of tags Evernote's ENML grammar
// allows inside en-note, plus the en-media and en-todo extension
// elements. Anything else is unwrapped: the tag goes away, its children
// stay, so text content is never lost.
var permittedElements = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "address": true,
	"area": true, "b": true, "bdo": true, "big": true,
	"blockquote": true, "br": true, "caption": true, "center": true,
	"cite": true, "code": true, "col": true, "colgroup": true,
	"dd": true, "del": true, "dfn": true, "div": true,
	"dl": true, "dt": true, "em": true, "font": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hr": true, "i": true, "img": true, "ins": true,
	"kbd": true, "li": true, "map": true, "ol": true, "p": true,
	"pre": true, "q": true, "s": true, "samp": true, "small": true,
	"span": true, "strike": true, "strong": true, "sub": true,
	"sup": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "title": true,
	"tr": true, "tt": true, "u": true, "ul": true, "var": true,
	"xmp": true,
	"en-media": true, "en-todo": true,
}

// prohibitedAttrs are attributes ENML rejects on any element. Event
// handler attributes (on*) are rejected by prefix.
var prohibitedAttrs = map[string]bool{
	"id": true, "class": true, "accesskey": true,
	"data": true, "dynsrc": true, "tabindex": true,
}

// hrDivider stands in for horizontal rules. Apple Notes drops <hr> on
// import; a run of em dashes keeps the visual break.
var hrDivider = strings.Repeat("—", 24)

// SanitizeInput bundles the rendered HTML fragment with everything the
// preprocessor lifted out of the markdown.
type SanitizeInput struct {
	HTML   string
	Blocks []CodeBlock
	Spans  []CodeSpan
	Refs   []string
}

// SanitizeResult is the ENML note body plus the complete resource
// reference list: the preprocessor's embeds followed by local images
// discovered in the HTML. Media placeholders in the body are indexed
// into Refs; the note assembler binds them to resource hashes.
type SanitizeResult struct {
	ENML string
	Refs []string
}

// Sanitizer abstracts HTML to ENML transformation.
type Sanitizer interface {
	Sanitize(ctx context.Context, in SanitizeInput) (*SanitizeResult, error)
}

// ENMLSanitizer rewrites rendered HTML into the ENML subset that Apple
// Notes imports cleanly. The transformation is idempotent: running it on
// its own output yields the same ENML.
type ENMLSanitizer struct{}

// Sanitize parses the fragment, rewrites it element by element, and
// renders it back. See transformNode for the individual rewrites.
func (s *ENMLSanitizer) Sanitize(ctx context.Context, in SanitizeInput) (*SanitizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	container, err := parseFragment(in.HTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSanitizeContent, err)
	}

	st := &sanitizeState{
		blocks: in.Blocks,
		spans:  in.Spans,
		refs:   append([]string(nil), in.Refs...),
	}

	transformChildren(container, st)
	repairListNesting(container)

	enml, err := renderFragment(container)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSanitizeContent, err)
	}

	return &SanitizeResult{ENML: enml, Refs: st.refs}, nil
}

// sanitizeState accumulates resource references and carries the protected
// code regions through the tree walk.
type sanitizeState struct {
	blocks []CodeBlock
	spans  []CodeSpan
	refs   []string
}

// parseFragment parses an HTML fragment with body context to avoid the
// parser wrapping it in <html><body>. The returned container node holds
// the fragment's top-level nodes.
func parseFragment(content string) (*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, nil
}

// renderFragment renders the container's children directly, avoiding an
// <html><body> wrapper around the fragment.
func renderFragment(container *html.Node) (string, error) {
	var buf strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// transformChildren replaces each child of n with its transformed nodes.
func transformChildren(n *html.Node, st *sanitizeState) {
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	for _, c := range kids {
		n.RemoveChild(c)
	}
	for _, c := range kids {
		for _, r := range transformNode(c, st) {
			n.AppendChild(r)
		}
	}
}

// transformNode rewrites one node into zero or more ENML-safe nodes:
//
//   - comments and doctypes are dropped
//   - text nodes get code spans restored and invalid XML characters removed
//   - a paragraph holding a fenced-code placeholder becomes one div per line
//   - local img elements become media placeholders; remote ones survive
//   - task list checkboxes become en-todo elements
//   - hr becomes a text divider, p becomes div
//   - permitted elements lose their prohibited attributes
//   - everything else is unwrapped, keeping its children
func transformNode(n *html.Node, st *sanitizeState) []*html.Node {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return nil

	case html.TextNode:
		return st.transformText(n)

	case html.ElementNode:
		// Handled below.

	default:
		return nil
	}

	if idx, ok := blockTokenParagraph(n); ok && idx < len(st.blocks) {
		return codeBlockNodes(st.blocks[idx])
	}

	switch n.Data {
	case "img":
		return st.transformImage(n)

	case "input":
		return transformCheckbox(n)

	case "hr":
		div := newElement("div")
		div.AppendChild(newText(hrDivider))
		return []*html.Node{div}
	}

	if !permittedElements[n.Data] {
		transformChildren(n, st)
		return detachChildren(n)
	}

	stripProhibitedAttrs(n)
	transformChildren(n, st)

	switch n.Data {
	case "p":
		n.Data = "div"
		n.DataAtom = atom.Div
		if n.FirstChild == nil {
			n.AppendChild(newElement("br"))
		}
	case "a":
		markPlainLink(n)
	}

	return []*html.Node{n}
}

// transformText removes characters the XML character set forbids, restores
// protected code spans as code elements, and expands any fenced-code
// placeholder that ended up inline (for example inside a list item).
func (st *sanitizeState) transformText(n *html.Node) []*html.Node {
	data := scrubXMLChars(n.Data)

	if strings.Contains(data, codeSpanStart) {
		return st.codeSpanNodes(data)
	}
	if strings.Contains(data, codeBlockStart) {
		return st.inlineCodeNodes(data)
	}

	n.Data = data
	return []*html.Node{n}
}

// transformImage turns a local image into a media placeholder and records
// the referenced file name. Remote images are legal ENML and stay, minus
// prohibited attributes.
func (st *sanitizeState) transformImage(n *html.Node) []*html.Node {
	src := attrValue(n, "src")
	if src == "" {
		return nil
	}

	if fileutil.IsURL(src) {
		stripProhibitedAttrs(n)
		return []*html.Node{n}
	}

	name := src
	if unescaped, err := url.PathUnescape(src); err == nil {
		name = unescaped
	}

	st.refs = append(st.refs, name)
	return []*html.Node{newText(MediaToken(len(st.refs) - 1))}
}

// transformCheckbox converts GFM task list checkboxes to en-todo, the
// ENML checkbox element. Other input elements are dropped.
func transformCheckbox(n *html.Node) []*html.Node {
	if attrValue(n, "type") != "checkbox" {
		return nil
	}

	todo := &html.Node{Type: html.ElementNode, Data: "en-todo"}
	if hasAttr(n, "checked") {
		todo.Attr = []html.Attribute{{Key: "checked", Val: "true"}}
	}
	return []*html.Node{todo}
}

// markPlainLink tags bare URL links with rev="en_rl_none", which Evernote
// renders as a plain link rather than a rich link card.
func markPlainLink(n *html.Node) {
	href := attrValue(n, "href")
	if href == "" || !fileutil.IsURL(href) || hasAttr(n, "rev") {
		return
	}
	if textContent(n) != href {
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "rev", Val: "en_rl_none"})
}

// blockTokenParagraph reports whether n is a block element whose sole
// content is a fenced-code placeholder.
func blockTokenParagraph(n *html.Node) (int, bool) {
	if n.Data != "p" && n.Data != "div" {
		return 0, false
	}
	c := n.FirstChild
	if c == nil || c.NextSibling != nil || c.Type != html.TextNode {
		return 0, false
	}
	return BlockTokenIndex(c.Data)
}

// codeBlockNodes renders a fenced code region as one div per line, with
// <div><br/></div> for blank lines. A trailing blank line is dropped.
// No code styling is applied; Apple Notes would not render it anyway.
func codeBlockNodes(b CodeBlock) []*html.Node {
	lines := b.Lines
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	nodes := make([]*html.Node, 0, len(lines))
	for _, line := range lines {
		div := newElement("div")
		if line == "" {
			div.AppendChild(newElement("br"))
		} else {
			div.AppendChild(newText(scrubXMLChars(line)))
		}
		nodes = append(nodes, div)
	}
	return nodes
}

// inlineCodeNodes expands fenced-code placeholders that sit inside other
// content. Lines are joined with <br/> since divs cannot be used inline.
func (st *sanitizeState) inlineCodeNodes(data string) []*html.Node {
	var nodes []*html.Node

	for {
		start := strings.Index(data, codeBlockStart)
		if start < 0 {
			break
		}
		end := strings.Index(data[start:], codeBlockEnd)
		if end < 0 {
			break
		}
		end += start

		if pre := data[:start]; pre != "" {
			nodes = append(nodes, newText(pre))
		}

		idx, err := strconv.Atoi(data[start+len(codeBlockStart) : end])
		if err == nil && idx >= 0 && idx < len(st.blocks) {
			lines := st.blocks[idx].Lines
			if len(lines) > 0 && lines[len(lines)-1] == "" {
				lines = lines[:len(lines)-1]
			}
			for i, line := range lines {
				if i > 0 {
					nodes = append(nodes, newElement("br"))
				}
				if line != "" {
					nodes = append(nodes, newText(scrubXMLChars(line)))
				}
			}
		}

		data = data[end+len(codeBlockEnd):]
	}

	if data != "" {
		nodes = append(nodes, newText(data))
	}
	return nodes
}

// codeSpanNodes expands inline span placeholders into code elements, the
// inline code form the ENML grammar provides. Text around the placeholders
// stays plain and may itself hold fenced-block tokens.
func (st *sanitizeState) codeSpanNodes(data string) []*html.Node {
	var nodes []*html.Node

	text := func(s string) {
		if s == "" {
			return
		}
		if strings.Contains(s, codeBlockStart) {
			nodes = append(nodes, st.inlineCodeNodes(s)...)
			return
		}
		nodes = append(nodes, newText(s))
	}

	for {
		start := strings.Index(data, codeSpanStart)
		if start < 0 {
			break
		}
		end := strings.Index(data[start:], codeSpanEnd)
		if end < 0 {
			break
		}
		end += start

		text(data[:start])

		idx, err := strconv.Atoi(data[start+len(codeSpanStart) : end])
		if err == nil && idx >= 0 && idx < len(st.spans) {
			code := newElement("code")
			code.AppendChild(newText(scrubXMLChars(st.spans[idx].Text)))
			nodes = append(nodes, code)
		}

		data = data[end+len(codeSpanEnd):]
	}

	text(data)
	return nodes
}

// repairListNesting wraps list items that lost their list parent during
// unwrapping, so every li sits directly under a ul or ol.
func repairListNesting(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		repairListNesting(c)
	}

	if n.Type == html.ElementNode && (n.Data == "ul" || n.Data == "ol") {
		return
	}

	c := n.FirstChild
	for c != nil {
		if !isElement(c, "li") {
			c = c.NextSibling
			continue
		}

		// Collect the run of consecutive items, including whitespace
		// between them.
		var run []*html.Node
		r := c
		for r != nil && (isElement(r, "li") || isBlankText(r)) {
			run = append(run, r)
			r = r.NextSibling
		}
		for len(run) > 0 && isBlankText(run[len(run)-1]) {
			run = run[:len(run)-1]
		}

		ul := &html.Node{Type: html.ElementNode, DataAtom: atom.Ul, Data: "ul"}
		n.InsertBefore(ul, c)
		for _, x := range run {
			n.RemoveChild(x)
			ul.AppendChild(x)
		}
		c = ul.NextSibling
	}
}

// stripProhibitedAttrs removes attributes ENML rejects and scrubs the
// values of the ones it keeps.
func stripProhibitedAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if prohibitedAttrs[a.Key] || strings.HasPrefix(a.Key, "on") {
			continue
		}
		a.Val = scrubXMLChars(a.Val)
		kept = append(kept, a)
	}
	n.Attr = kept
}

// detachChildren removes and returns all children of n.
func detachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		out = append(out, c)
	}
	return out
}

// scrubXMLChars removes characters outside the XML 1.0 character set.
// ENEX consumers reject documents containing them.
func scrubXMLChars(s string) string {
	for _, r := range s {
		if !isXMLChar(r) {
			return strings.Map(func(r rune) rune {
				if isXMLChar(r) {
					return r
				}
				return -1
			}, s)
		}
	}
	return s
}

func isXMLChar(r rune) bool {
	return r == 0x9 || r == 0xA || r == 0xD ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func newElement(tag string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func isBlankText(n *html.Node) bool {
	return n.Type == html.TextNode && strings.TrimSpace(n.Data) == ""
}

// textContent returns the concatenated text of n's descendants.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(m *html.Node) {
		if m.Type == html.TextNode {
			b.WriteString(m.Data)
		}
		for c := m.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
