package pipeline

import (
	"strconv"
	"strings"
)

// Code placeholders use Unicode Private Use Area characters.
// These are guaranteed to not conflict with any standard characters
// and will pass through Goldmark unchanged (no WithUnsafe needed).
// The ENML sanitizer restores the original text after HTML generation.
const (
	codeBlockStart = "\uE000" // U+E000: fenced block placeholder start
	codeBlockEnd   = "\uE001" // U+E001: fenced block placeholder end
	codeSpanStart  = "\uE002" // U+E002: inline span placeholder start
	codeSpanEnd    = "\uE003" // U+E003: inline span placeholder end
)

// CodeBlock is a fenced code region lifted out of the markdown before
// rendering and restored line by line into the ENML afterwards.
type CodeBlock struct {
	Language string   // info string of the opening fence, may be empty
	Lines    []string // content lines, verbatim, without fence markers
}

// CodeSpan is an inline code span protected from rendering the same way.
type CodeSpan struct {
	Text string
}

// ExtractCodeBlocks replaces fenced code regions (``` or ~~~) with opaque
// placeholder lines and returns the extracted regions in document order.
// The placeholder index matches the position in the returned slice.
//
// An unterminated fence runs to the end of the document, matching
// CommonMark. The opening fence's indentation is kept on the placeholder
// line so blocks nested in lists stay attached to their item.
func ExtractCodeBlocks(content string) (string, []CodeBlock) {
	if !strings.Contains(content, "```") && !strings.Contains(content, "~~~") {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	var blocks []CodeBlock

	for i := 0; i < len(lines); i++ {
		indent, marker, info, ok := parseFenceOpen(lines[i])
		if !ok {
			out = append(out, lines[i])
			continue
		}

		block := CodeBlock{Language: info}
		j := i + 1
		for ; j < len(lines); j++ {
			if isFenceClose(lines[j], marker) {
				break
			}
			block.Lines = append(block.Lines, strings.TrimPrefix(lines[j], indent))
		}

		token := codeBlockStart + strconv.Itoa(len(blocks)) + codeBlockEnd
		out = append(out, indent+token)
		blocks = append(blocks, block)
		i = j // skip past the closing fence, or to EOF when unterminated
	}

	return strings.Join(out, "\n"), blocks
}

// parseFenceOpen recognizes an opening code fence. It returns the leading
// indentation, the fence marker (``` or longer, or ~~~), and the trimmed
// info string (language tag).
func parseFenceOpen(line string) (indent, marker, info string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 3 {
		return "", "", "", false
	}

	fenceChar := trimmed[0]
	if fenceChar != '`' && fenceChar != '~' {
		return "", "", "", false
	}

	n := 0
	for n < len(trimmed) && trimmed[n] == fenceChar {
		n++
	}
	if n < 3 {
		return "", "", "", false
	}

	rest := strings.TrimSpace(trimmed[n:])
	// An info string containing the fence character is not an opening
	// fence (e.g. ````inline```` runs).
	if strings.ContainsRune(rest, rune(fenceChar)) {
		return "", "", "", false
	}

	indent = line[:len(line)-len(trimmed)]
	return indent, trimmed[:n], rest, true
}

// isFenceClose reports whether the line closes a fence opened with marker.
// The closing fence must use the same character, be at least as long, and
// carry no info string.
func isFenceClose(line, marker string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, marker) {
		return false
	}
	return strings.TrimRight(trimmed, string(marker[0])+" \t") == ""
}

// ExtractCodeSpans replaces inline code spans with opaque placeholders and
// returns the spans in document order. Runs of N backticks close only on
// the next run of exactly N backticks, on the same line.
//
// Call after ExtractCodeBlocks so fence markers are already gone.
func ExtractCodeSpans(content string) (string, []CodeSpan) {
	if !strings.Contains(content, "`") {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	var spans []CodeSpan

	for li, line := range lines {
		if !strings.Contains(line, "`") {
			continue
		}

		var b strings.Builder
		for i := 0; i < len(line); {
			if line[i] != '`' {
				b.WriteByte(line[i])
				i++
				continue
			}

			n := 0
			for i+n < len(line) && line[i+n] == '`' {
				n++
			}
			open := line[i : i+n]

			end := findSpanClose(line, i+n, n)
			if end < 0 {
				// Unmatched run stays literal.
				b.WriteString(open)
				i += n
				continue
			}

			spans = append(spans, CodeSpan{Text: line[i+n : end]})
			b.WriteString(codeSpanStart + strconv.Itoa(len(spans)-1) + codeSpanEnd)
			i = end + n
		}
		lines[li] = b.String()
	}

	return strings.Join(lines, "\n"), spans
}

// findSpanClose locates a closing run of exactly n backticks at or after
// position from. Returns the index of the run start, or -1.
func findSpanClose(line string, from, n int) int {
	for i := from; i < len(line); {
		if line[i] != '`' {
			i++
			continue
		}
		run := 0
		for i+run < len(line) && line[i+run] == '`' {
			run++
		}
		if run == n {
			return i
		}
		i += run
	}
	return -1
}

// BlockTokenIndex reports whether s consists solely of a code block
// placeholder, and if so which block it names.
func BlockTokenIndex(s string) (int, bool) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, codeBlockStart) || !strings.HasSuffix(t, codeBlockEnd) {
		return 0, false
	}
	idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(t, codeBlockStart), codeBlockEnd))
	if err != nil {
		return 0, false
	}
	return idx, true
}
