package nixfile

import "strings"

// Document is the immutable text of a Nix file.
type Document struct {
	text string
	eol  string
}

// NewDocument wraps text, detecting its line terminator.
// Files that use "\r\n" anywhere are treated as CRLF files.
func NewDocument(text string) Document {
	eol := "\n"
	if strings.Contains(text, "\r\n") {
		eol = "\r\n"
	}
	return Document{text: text, eol: eol}
}

// String returns the full text.
func (d Document) String() string {
	return d.text
}

// EOL returns the line terminator new lines are written with.
func (d Document) EOL() string {
	if d.eol == "" {
		return "\n"
	}
	return d.eol
}

// Len returns the length of the text in bytes.
func (d Document) Len() int {
	return len(d.text)
}

// Equal reports whether both documents hold the same text.
func (d Document) Equal(other Document) bool {
	return d.text == other.text
}

// splice returns a new document with text[start:end] replaced by s.
func (d Document) splice(start, end int, s string) Document {
	return Document{text: d.text[:start] + s + d.text[end:], eol: d.eol}
}

// lineStart returns the offset of the first byte of the line containing i.
func lineStart(text string, i int) int {
	return strings.LastIndexByte(text[:i], '\n') + 1
}

// lineEnd returns the offset of the '\n' ending the line containing i,
// or len(text) for the last line.
func lineEnd(text string, i int) int {
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		return i + j
	}
	return len(text)
}

// isBlank reports whether s holds only spaces, tabs and carriage returns.
func isBlank(s string) bool {
	return strings.TrimLeft(s, " \t\r") == ""
}

// isSpace reports whether c is Nix whitespace.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// leadingIndent returns the run of spaces and tabs at the start of s.
func leadingIndent(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// line is one line of a document: text[start:end] without its
// terminator, next is the offset of the following line.
type line struct {
	start, end, next int
}

func (l line) content(text string) string {
	return strings.TrimSuffix(text[l.start:l.end], "\r")
}

// splitLines returns the lines of text with their offsets.
func splitLines(text string) []line {
	var lines []line
	for start := 0; start < len(text); {
		end := lineEnd(text, start)
		next := end
		if next < len(text) {
			next++
		}
		lines = append(lines, line{start: start, end: end, next: next})
		start = next
	}
	return lines
}
