package nixfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultOptionIndent is used for new option lines when no sibling
// declaration is available to copy from.
const DefaultOptionIndent = "  "

// OptionSpec names the attribute path shape of an option declaration:
// <Namespace>.<package>.<Field> = <value>;
type OptionSpec struct {
	Namespace string
	Field     string
}

// DefaultOptionSpec matches `programs.<package>.enable`.
func DefaultOptionSpec() OptionSpec {
	return OptionSpec{Namespace: "programs", Field: "enable"}
}

// Key returns the attribute path governing pkg.
func (s OptionSpec) Key(pkg string) string {
	return s.Namespace + "." + pkg + "." + s.Field
}

// Validate checks that the spec can be rendered as an attribute path.
func (s OptionSpec) Validate() error {
	for _, part := range strings.Split(s.Namespace, ".") {
		if !attrName.MatchString(part) {
			return fmt.Errorf("invalid option namespace %q", s.Namespace)
		}
	}
	if !attrName.MatchString(s.Field) {
		return fmt.Errorf("invalid option field %q", s.Field)
	}
	return nil
}

// Declaration renders a complete enable line without indent or terminator.
func (s OptionSpec) Declaration(pkg string) string {
	return s.Key(pkg) + " = true;"
}

var attrName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_'-]*$`)

// optionLine builds the pattern of a declaration line for one package, or
// for any package when pkg is empty. The assigned value is captured raw.
func (s OptionSpec) optionLine(pkg string) *regexp.Regexp {
	name := `[A-Za-z_][A-Za-z0-9_'-]*`
	if pkg != "" {
		name = regexp.QuoteMeta(pkg)
	}
	return regexp.MustCompile(`^([ \t]*)` + regexp.QuoteMeta(s.Namespace) + `\.(` + name + `)\.` +
		regexp.QuoteMeta(s.Field) + `[ \t]*=[ \t]*(.*)$`)
}

var (
	literalValue    = regexp.MustCompile(`^(true|false)[ \t]*;[ \t]*(#.*|/\*.*)?$`)
	terminatedValue = regexp.MustCompile(`;[ \t]*(#.*|/\*.*)?$`)
)

// OptionDeclaration is a located `<ns>.<pkg>.<field> = <value>;` line.
type OptionDeclaration struct {
	Start   int // first byte of the line
	End     int // first byte of the following line
	Package string
	Indent  string
	// Expr is the assigned text after '=', trailing comment included.
	Expr string
	// Literal is set when the value is a plain true or false.
	Literal bool
	// Value is the literal value. It is false for non-literal values.
	Value bool
	// Terminated is set when the assignment ends on its own line.
	Terminated bool

	valueStart, valueEnd int
}

// LocateOption finds the declaration governing pkg. It returns ErrNotFound
// when there is none and ErrAmbiguous when more than one line matches.
// Lines inside block comments and strings are ignored.
func LocateOption(doc Document, spec OptionSpec, pkg string) (*OptionDeclaration, error) {
	decls := findOptions(doc.text, spec.optionLine(pkg))
	switch len(decls) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &decls[0], nil
	default:
		return nil, fmt.Errorf("%w: %d declarations of %s", ErrAmbiguous, len(decls), spec.Key(pkg))
	}
}

func findOptions(text string, re *regexp.Regexp) []OptionDeclaration {
	hidden := hiddenSpans(text)
	var decls []OptionDeclaration
	for _, l := range splitLines(text) {
		if hidden.covers(l.start) {
			continue
		}
		content := l.content(text)
		m := re.FindStringSubmatchIndex(content)
		if m == nil {
			continue
		}
		expr := content[m[6]:m[7]]
		decl := OptionDeclaration{
			Start:      l.start,
			End:        l.next,
			Package:    content[m[4]:m[5]],
			Indent:     content[m[2]:m[3]],
			Expr:       strings.TrimSpace(expr),
			Terminated: terminatedValue.MatchString(expr),
		}
		if v := literalValue.FindStringSubmatchIndex(expr); v != nil {
			decl.Literal = true
			decl.Value = expr[v[2]:v[3]] == "true"
			decl.valueStart = l.start + m[6] + v[2]
			decl.valueEnd = l.start + m[6] + v[3]
		}
		decls = append(decls, decl)
	}
	return decls
}

// InsertOption enables pkg through an option declaration.
//
// An existing `true` declaration is left alone, an existing `false` one
// is flipped in place. Otherwise one new line is added after the last
// sibling declaration, or before the closing brace of the file's
// attribute set, or at the end of the file.
func InsertOption(doc Document, spec OptionSpec, pkg string) (Document, Status, error) {
	if !attrName.MatchString(pkg) {
		return doc, 0, fmt.Errorf("%w: %q", ErrInvalidName, pkg)
	}

	decl, err := LocateOption(doc, spec, pkg)
	switch {
	case err == nil && !decl.Literal:
		return doc, 0, fmt.Errorf("%w: %s is set to `%s`", ErrAmbiguous, spec.Key(pkg), decl.Expr)
	case err == nil && decl.Value:
		return doc, AlreadyPresent, nil
	case err == nil:
		return doc.splice(decl.valueStart, decl.valueEnd, "true"), Inserted, nil
	case !errors.Is(err, ErrNotFound):
		return doc, 0, err
	}

	text := doc.text
	eol := doc.EOL()
	newLine := spec.Declaration(pkg)

	if last := lastSibling(text, spec); last != nil {
		return insertLineAt(doc, last.End, last.Indent+newLine), Inserted, nil
	}

	hidden := hiddenSpans(text)
	lines := splitLines(text)
	for i := len(lines) - 1; i >= 0; i-- {
		content := lines[i].content(text)
		if isBlank(content) || hidden.covers(lines[i].start) {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(content), "}") {
			indent := leadingIndent(content) + DefaultOptionIndent
			return doc.splice(lines[i].start, lines[i].start, indent+newLine+eol), Inserted, nil
		}
		break
	}

	return insertLineAt(doc, len(text), DefaultOptionIndent+newLine), Inserted, nil
}

// lastSibling returns the last single-line declaration of any package.
func lastSibling(text string, spec OptionSpec) *OptionDeclaration {
	decls := findOptions(text, spec.optionLine(""))
	for i := len(decls) - 1; i >= 0; i-- {
		if decls[i].Terminated {
			return &decls[i]
		}
	}
	return nil
}

// insertLineAt inserts a full line at offset at, which must be the start
// of a line or the end of the text.
func insertLineAt(doc Document, at int, content string) Document {
	eol := doc.EOL()
	if at == len(doc.text) && at > 0 && doc.text[at-1] != '\n' {
		return doc.splice(at, at, eol+content)
	}
	return doc.splice(at, at, content+eol)
}

// RemoveOption deletes the declaration line governing pkg.
func RemoveOption(doc Document, spec OptionSpec, pkg string) (Document, Status, error) {
	decl, err := LocateOption(doc, spec, pkg)
	if errors.Is(err, ErrNotFound) {
		return doc, NotPresent, nil
	}
	if err != nil {
		return doc, 0, err
	}
	if !decl.Terminated {
		return doc, 0, fmt.Errorf("%w: %s continues past its first line", ErrAmbiguous, spec.Key(pkg))
	}

	start, text := decl.Start, doc.text
	if decl.End == len(text) && !strings.HasSuffix(text, "\n") && start > 0 {
		// last line without a terminator: drop the break before it
		start--
		if start > 0 && text[start-1] == '\r' {
			start--
		}
	}
	return doc.splice(start, decl.End, ""), Removed, nil
}
