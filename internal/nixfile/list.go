package nixfile

import (
	"errors"
	"fmt"
	"strings"
)

// Packages returns the elements of the first package list in file order,
// duplicates included. A document without a package list yields an empty
// slice, not an error.
func Packages(doc Document) ([]string, error) {
	block, err := LocateList(doc)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return block.Names(), nil
}

// InsertList adds name to block using block.Style so the new element
// looks like the existing ones. Text outside the inserted span is left
// untouched.
func InsertList(doc Document, block *ListBlock, name string) (Document, Status, error) {
	if !ValidName(name) {
		return doc, 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if block.Index(name) >= 0 {
		return doc, AlreadyPresent, nil
	}

	text := doc.text
	style := block.Style
	n := len(block.Elements)

	if style.Kind == SingleLine {
		if n > 0 {
			at := block.Elements[n-1].End
			return doc.splice(at, at, style.Separator+name), Inserted, nil
		}
		inner := text[block.Open+1 : block.Close]
		ws := leadingIndent(inner)
		if ws == "" {
			return doc.splice(block.Open+1, block.Open+1, name), Inserted, nil
		}
		at := block.Open + 1 + len(ws)
		return doc.splice(at, at, name+" "), Inserted, nil
	}

	eol := doc.EOL()
	if style.TrailingSeparator {
		at := lineStart(text, block.Close)
		return doc.splice(at, at, style.Indent+name+eol), Inserted, nil
	}

	// ']' shares its line with the last element: break that line and
	// keep the bracket on the new element's line.
	at := block.Open + 1
	if n > 0 {
		at = block.Elements[n-1].End
	}
	return doc.splice(at, at, eol+style.Indent+name), Inserted, nil
}

// RemoveList deletes the first bare element named name from block.
//
// An element alone on its line (optionally followed by a comment) is
// removed with the whole line. Otherwise the token goes together with one
// adjacent whitespace gap so neighbouring elements stay separated.
func RemoveList(doc Document, block *ListBlock, name string) (Document, Status, error) {
	idx := block.Index(name)
	if idx < 0 {
		return doc, NotPresent, nil
	}

	text := doc.text
	e := block.Elements[idx]

	ls := lineStart(text, e.Start)
	le := lineEnd(text, e.End)
	if ls > block.Open && le < block.Close && isBlank(text[ls:e.Start]) && isTrailer(text[e.End:le]) {
		next := le
		if next < len(text) {
			next++
		}
		return doc.splice(ls, next, ""), Removed, nil
	}

	prevEnd := block.Open + 1
	if idx > 0 {
		prevEnd = block.Elements[idx-1].End
	}
	gap := text[prevEnd:e.Start]
	if idx > 0 && gap != "" && strings.TrimLeft(gap, " \t\r\n") == "" &&
		(!strings.Contains(gap, "\n") || precedesClose(text, e.End, block.Close)) {
		return doc.splice(prevEnd, e.End, ""), Removed, nil
	}

	end := e.End
	for end < block.Close && (text[end] == ' ' || text[end] == '\t') {
		end++
	}
	start := e.Start
	if end == e.End {
		for start > prevEnd && (text[start-1] == ' ' || text[start-1] == '\t') {
			start--
		}
	}
	return doc.splice(start, end, ""), Removed, nil
}

// isTrailer reports whether s is blank or a blank-prefixed line comment.
func isTrailer(s string) bool {
	s = strings.TrimLeft(s, " \t")
	return isBlank(s) || strings.HasPrefix(s, "#")
}

// precedesClose reports whether only whitespace separates i from close.
func precedesClose(text string, i, close int) bool {
	return strings.TrimLeft(text[i:close], " \t\r\n") == ""
}
