package nixfile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// listHeader matches the keyword pair and opening bracket of a package
// list. It is anchored and applied at candidate offsets only.
var listHeader = regexp.MustCompile(`^with\s+pkgs\s*;\s*\[`)

// Element is one entry of a package list.
type Element struct {
	// Name is the element text. For opaque elements whitespace runs are
	// collapsed to single spaces.
	Name  string
	Start int
	End   int
	// Opaque marks parenthesised, bracketed, braced or quoted
	// expressions. They are listed but never matched by name.
	Opaque bool
}

// ListBlock is a located `with pkgs; [ ... ]` construct.
type ListBlock struct {
	Start    int // offset of the "with" keyword
	Open     int // offset of '['
	Close    int // offset of the matching ']'
	End      int // Close + 1
	Elements []Element
	Style    FormatStyle
}

// Names returns the element names in file order, duplicates included.
func (b *ListBlock) Names() []string {
	names := make([]string, len(b.Elements))
	for i, e := range b.Elements {
		names[i] = e.Name
	}
	return names
}

// Index returns the position of the first bare element named name, or -1.
func (b *ListBlock) Index(name string) int {
	for i, e := range b.Elements {
		if !e.Opaque && e.Name == name {
			return i
		}
	}
	return -1
}

// LocateList finds the first package list in doc and classifies its style.
// It returns ErrNotFound when the document has none and ErrMalformed when
// the list's brackets do not balance.
func LocateList(doc Document) (*ListBlock, error) {
	text := doc.text
	start, open, ok := findListHeader(text)
	if !ok {
		return nil, ErrNotFound
	}

	closeAt, elements, err := scanList(text, open)
	if err != nil {
		return nil, err
	}

	block := &ListBlock{
		Start:    start,
		Open:     open,
		Close:    closeAt,
		End:      closeAt + 1,
		Elements: elements,
	}
	block.Style = Analyze(doc, block)
	return block, nil
}

// findListHeader returns the offsets of the first "with pkgs; [" outside
// comments and strings.
func findListHeader(text string) (start, open int, ok bool) {
	for i := 0; i < len(text); {
		if next, skipped := skipTrivia(text, i); skipped {
			i = next
			continue
		}
		if text[i] == 'w' && (i == 0 || !isIdentByte(text[i-1])) {
			if loc := listHeader.FindStringIndex(text[i:]); loc != nil {
				return i, i + loc[1] - 1, true
			}
		}
		i++
	}
	return 0, 0, false
}

// scanList walks from the opening bracket to its match, collecting the
// depth-1 elements.
func scanList(text string, open int) (int, []Element, error) {
	stack := []byte{']'}
	var elements []Element
	nestedStart := -1

	for i := open + 1; i < len(text); {
		if next, skipped := skipTrivia(text, i); skipped {
			if len(stack) == 1 && (text[i] == '"' || text[i] == '\'') {
				elements = append(elements, opaqueElement(text, i, next))
			}
			i = next
			continue
		}

		c := text[i]
		switch c {
		case '[', '(', '{':
			if len(stack) == 1 {
				nestedStart = i
			}
			stack = append(stack, closerFor(c))
			i++
		case ']', ')', '}':
			want := stack[len(stack)-1]
			if c != want {
				return 0, nil, fmt.Errorf("%w: unexpected %q at offset %d, expected %q", ErrMalformed, c, i, want)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, elements, nil
			}
			if len(stack) == 1 {
				elements = append(elements, opaqueElement(text, nestedStart, i+1))
			}
			i++
		default:
			if isSpace(c) || len(stack) > 1 {
				i++
				continue
			}
			j := i + 1
			for j < len(text) && isTokenByte(text, j) {
				j++
			}
			elements = append(elements, Element{Name: text[i:j], Start: i, End: j})
			i = j
		}
	}

	return 0, nil, fmt.Errorf("%w: package list opened at offset %d is never closed", ErrMalformed, open)
}

func opaqueElement(text string, start, end int) Element {
	return Element{
		Name:   strings.Join(strings.Fields(text[start:end]), " "),
		Start:  start,
		End:    end,
		Opaque: true,
	}
}

func closerFor(c byte) byte {
	switch c {
	case '(':
		return ')'
	case '{':
		return '}'
	default:
		return ']'
	}
}

// isIdentByte reports whether c can be part of a Nix identifier.
func isIdentByte(c byte) bool {
	return c == '_' || c == '-' || c == '\'' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isTokenByte reports whether text[i] continues a bare list element.
func isTokenByte(text string, i int) bool {
	c := text[i]
	if isSpace(c) || strings.IndexByte(`[](){}";#`, c) >= 0 {
		return false
	}
	rest := text[i:]
	return !strings.HasPrefix(rest, "/*") && !strings.HasPrefix(rest, "''")
}

// ValidName reports whether name can be written as a bare list element.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isTokenByte(name, i) {
			return false
		}
	}
	return true
}

// skipTrivia returns the offset just past the comment or string starting
// at i. Unterminated comments and strings run to the end of text.
func skipTrivia(text string, i int) (int, bool) {
	rest := text[i:]
	switch {
	case rest[0] == '#':
		return lineEnd(text, i), true
	case strings.HasPrefix(rest, "/*"):
		if j := strings.Index(rest[2:], "*/"); j >= 0 {
			return i + 2 + j + 2, true
		}
		return len(text), true
	case rest[0] == '"':
		return skipString(text, i+1), true
	case strings.HasPrefix(rest, "''"):
		return skipIndentedString(text, i+2), true
	}
	return i, false
}

// spans is a sorted list of non-overlapping [start, end) byte ranges.
type spans [][2]int

// hiddenSpans returns the block comments and strings of text. Line
// comments are left out since they never cover the start of a line.
func hiddenSpans(text string) spans {
	var out spans
	for i := 0; i < len(text); {
		if text[i] == '\'' && i > 0 && isIdentByte(text[i-1]) {
			i++
			continue
		}
		next, skipped := skipTrivia(text, i)
		if !skipped {
			i++
			continue
		}
		if text[i] != '#' {
			out = append(out, [2]int{i, next})
		}
		i = next
	}
	return out
}

// covers reports whether offset lies strictly inside one of the spans.
func (s spans) covers(offset int) bool {
	j := sort.Search(len(s), func(j int) bool { return s[j][1] > offset })
	return j < len(s) && s[j][0] < offset
}

// skipString scans a "..." string body starting at i.
func skipString(text string, i int) int {
	for i < len(text) {
		switch {
		case text[i] == '\\':
			i += 2
		case text[i] == '"':
			return i + 1
		case strings.HasPrefix(text[i:], "${"):
			i = skipInterpolation(text, i+2)
		default:
			i++
		}
	}
	return len(text)
}

// skipIndentedString scans a ''...'' string body starting at i.
func skipIndentedString(text string, i int) int {
	for i < len(text) {
		rest := text[i:]
		switch {
		case strings.HasPrefix(rest, "'''"), strings.HasPrefix(rest, "''$"):
			i += 3
		case strings.HasPrefix(rest, "''\\"):
			i += 4
		case strings.HasPrefix(rest, "''"):
			return i + 2
		case strings.HasPrefix(rest, "${"):
			i = skipInterpolation(text, i+2)
		default:
			i++
		}
	}
	return len(text)
}

// skipInterpolation scans a ${ ... } body starting just after "${".
func skipInterpolation(text string, i int) int {
	depth := 1
	for i < len(text) {
		if next, skipped := skipTrivia(text, i); skipped {
			i = next
			continue
		}
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return len(text)
}
