package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

const (
	// Prefix starts every line rustc emits for -Zprint-type-sizes.
	Prefix = "print-type-size "
	// IndentWidth is the whitespace width of one nesting level.
	IndentWidth = 4

	maxLineBytes = 16 << 20
)

var (
	typeLinePattern = regexp.MustCompile(
		"^type: `(?P<name>[^`]+)`: (?P<size>\\d+) bytes, alignment: (?P<align>\\d+) bytes$")
	innerLinePattern = regexp.MustCompile(
		"^(?P<indent>\\s+)(?P<kind>[a-z ]+)(?: `(?P<name>[^`]+)`)?: (?P<size>\\d+) bytes" +
			"(?:, offset: (?P<offset>\\d+) bytes)?(?:, alignment: (?P<align>\\d+) bytes)?$")
	nameSepPattern = regexp.MustCompile(`::|<|>|->`)
)

// LineKind is the shape a prefixed line was recognised as.
type LineKind uint8

const (
	LineMalformed LineKind = iota
	LineType
	LineInner
)

func (k LineKind) String() string {
	switch k {
	case LineType:
		return "type"
	case LineInner:
		return "inner"
	default:
		return "malformed"
	}
}

// Line is a report line with the "print-type-size " prefix removed.
type Line struct {
	Num  int
	Text string
}

// Lines reads r and keeps only prefixed lines, stripped of the prefix. Line
// numbers refer to the whole input, unrelated lines included.
func Lines(r io.Reader) ([]Line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var out []Line
	num := 0
	for sc.Scan() {
		num++
		if l, ok := stripPrefix(num, sc.Text()); ok {
			out = append(out, l)
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read report: %w", err)
	}
	return out, nil
}

// SplitLines is Lines for text already in memory.
func SplitLines(text string) []Line {
	var out []Line
	for i, raw := range strings.Split(text, "\n") {
		if l, ok := stripPrefix(i+1, raw); ok {
			out = append(out, l)
		}
	}
	return out
}

func stripPrefix(num int, raw string) (Line, bool) {
	raw = strings.TrimSuffix(raw, "\r")
	rest, ok := strings.CutPrefix(raw, Prefix)
	if !ok {
		return Line{}, false
	}
	return Line{Num: num, Text: rest}, true
}

// Classified is a line after pattern matching. Which fields are meaningful
// depends on Kind; Err is set only for LineMalformed.
type Classified struct {
	Kind LineKind
	Line Line

	Item    ItemKind
	Indent  int
	Name    string
	HasName bool
	Size    int
	RawSize string
	Offset  Optional
	Align   Optional

	Err error
}

// Classify matches one prefixed line against the type and inner shapes.
func Classify(l Line) Classified {
	if m := typeLinePattern.FindStringSubmatch(l.Text); m != nil {
		return classifyType(l, m)
	}
	if m := innerLinePattern.FindStringSubmatch(l.Text); m != nil {
		return classifyInner(l, m)
	}
	return malformed(l, "type or inner line", nil)
}

// ClassifyAll classifies every line, preserving order.
func ClassifyAll(lines []Line) []Classified {
	out := make([]Classified, len(lines))
	for i, l := range lines {
		out[i] = Classify(l)
	}
	return out
}

func classifyType(l Line, m []string) Classified {
	size, err := parseBytes(m[typeLinePattern.SubexpIndex("size")])
	if err != nil {
		return malformed(l, "type size", err)
	}
	align, err := parseBytes(m[typeLinePattern.SubexpIndex("align")])
	if err != nil {
		return malformed(l, "type alignment", err)
	}
	return Classified{
		Kind:    LineType,
		Line:    l,
		Item:    KindType,
		Name:    m[typeLinePattern.SubexpIndex("name")],
		HasName: true,
		Size:    size,
		RawSize: m[typeLinePattern.SubexpIndex("size")],
		Align:   Some(align),
	}
}

func classifyInner(l Line, m []string) Classified {
	kind, ok := parseItemKind(m[innerLinePattern.SubexpIndex("kind")])
	if !ok {
		return malformed(l, "one of discriminant, padding, end padding, field, variant",
			fmt.Errorf("unknown item kind %q", m[innerLinePattern.SubexpIndex("kind")]))
	}
	c := Classified{
		Kind:    LineInner,
		Line:    l,
		Item:    kind,
		Indent:  len(m[innerLinePattern.SubexpIndex("indent")]),
		RawSize: m[innerLinePattern.SubexpIndex("size")],
	}
	var err error
	if c.Size, err = parseBytes(c.RawSize); err != nil {
		return malformed(l, "item size", err)
	}
	if c.Offset, err = parseOptional(m[innerLinePattern.SubexpIndex("offset")]); err != nil {
		return malformed(l, "item offset", err)
	}
	if c.Align, err = parseOptional(m[innerLinePattern.SubexpIndex("align")]); err != nil {
		return malformed(l, "item alignment", err)
	}
	if idx := innerLinePattern.SubexpIndex("name"); m[idx] != "" {
		c.Name, c.HasName = m[idx], true
	}
	return c
}

func malformed(l Line, expected string, err error) Classified {
	return Classified{
		Kind: LineMalformed,
		Line: l,
		Err:  &MalformedLineError{Line: l.Num, Text: l.Text, Expected: expected, Err: err},
	}
}

func parseBytes(s string) (int, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return safecast.Conv[int](u)
}

func parseOptional(s string) (Optional, error) {
	if s == "" {
		return Optional{}, nil
	}
	v, err := parseBytes(s)
	if err != nil {
		return Optional{}, err
	}
	return Some(v), nil
}

// node builds the tree node for an inner line.
func (c Classified) node() Node {
	switch c.Item {
	case KindDiscriminant:
		return Discriminant{Size: c.Size, Raw: c.RawSize}
	case KindPadding:
		return Padding{Size: c.Size}
	case KindEndPadding:
		return EndPadding{Size: c.Size}
	case KindField:
		return &Field{Name: c.Name, Size: c.Size, Offset: c.Offset, Align: c.Align}
	case KindVariant:
		return NewVariant(c.Name, c.Size)
	}
	return nil
}

// describe is a short human label for error messages.
func describe(n Node) string {
	switch v := n.(type) {
	case nil:
		return "missing"
	case Named:
		return fmt.Sprintf("%s `%s`", n.Kind(), v.DisplayName())
	default:
		return n.Kind().String()
	}
}
