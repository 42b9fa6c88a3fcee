package nixfile

import "strings"

// StyleKind distinguishes single-line from multi-line package lists.
type StyleKind int

const (
	// SingleLine lists keep all elements between brackets on one line.
	SingleLine StyleKind = iota
	// MultiLine lists span several lines.
	MultiLine
)

func (k StyleKind) String() string {
	if k == MultiLine {
		return "multi-line"
	}
	return "single-line"
}

const (
	// DefaultIndentUnit is added to the closing line's indent when a
	// multi-line list has no element line to copy from.
	DefaultIndentUnit = "  "
	// DefaultSeparator separates single-line elements when the list has
	// fewer than two elements to observe.
	DefaultSeparator = " "
)

// FormatStyle describes how a package list is laid out.
type FormatStyle struct {
	Kind StyleKind
	// Indent is the whitespace prefix of element lines (MultiLine only).
	Indent string
	// TrailingSeparator is set when the last element is followed by a
	// line break before ']' (MultiLine only).
	TrailingSeparator bool
	// Separator is the gap between elements (SingleLine only).
	Separator string
}

// Analyze classifies the layout of block. It never modifies the document.
func Analyze(doc Document, block *ListBlock) FormatStyle {
	text := doc.text
	if !strings.Contains(text[block.Open:block.Close], "\n") {
		return FormatStyle{Kind: SingleLine, Separator: singleLineSeparator(text, block)}
	}

	closeLine := lineStart(text, block.Close)
	style := FormatStyle{
		Kind:              MultiLine,
		TrailingSeparator: isBlank(text[closeLine:block.Close]),
	}

	for _, e := range block.Elements {
		ls := lineStart(text, e.Start)
		if ls > block.Open && isBlank(text[ls:e.Start]) {
			style.Indent = text[ls:e.Start]
			return style
		}
	}
	style.Indent = leadingIndent(text[closeLine:block.Close]) + DefaultIndentUnit
	return style
}

// singleLineSeparator returns the gap between the first two elements when
// it is plain horizontal whitespace.
func singleLineSeparator(text string, block *ListBlock) string {
	if len(block.Elements) < 2 {
		return DefaultSeparator
	}
	gap := text[block.Elements[0].End:block.Elements[1].Start]
	if gap == "" || !isBlank(gap) {
		return DefaultSeparator
	}
	return gap
}
