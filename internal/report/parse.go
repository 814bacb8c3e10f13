package report

import (
	"errors"
	"fmt"
	"io"

	"typesizes/internal/diag"
)

// ParseType builds one Type from the head of lines and returns the lines it
// did not consume. On error the returned rest starts right after the
// offending line, so callers can keep going.
//
// A malformed line inside the type ends it early: the Type is returned with
// the nodes parsed before that line, together with the error. A broken
// nesting invariant discards the whole type.
func ParseType(lines []Classified) (*Type, []Classified, error) {
	if len(lines) == 0 {
		return nil, nil, io.ErrUnexpectedEOF
	}
	head, rest := lines[0], lines[1:]
	switch head.Kind {
	case LineType:
	case LineMalformed:
		return nil, rest, head.Err
	default:
		return nil, rest, &MalformedLineError{
			Line:     head.Line.Num,
			Text:     head.Line.Text,
			Expected: "type declaration",
		}
	}

	tree, rest, err := parseTree(rest, 1)
	if err != nil && !keepsPartial(err) {
		return nil, rest, err
	}
	align, _ := head.Align.Get()
	return &Type{
		Name:  head.Name,
		Size:  head.Size,
		Align: align,
		Tree:  tree,
		Line:  head.Line.Num,
	}, rest, err
}

// keepsPartial reports whether a subtree cut short by err is still usable.
func keepsPartial(err error) bool {
	var (
		broken    *BrokenInvariantError
		malformed *MalformedLineError
	)
	return !errors.As(err, &broken) && errors.As(err, &malformed)
}

// parseTree collects the nodes at nesting depth. It stops without consuming
// at a type line or at a line indented less than depth levels.
func parseTree(lines []Classified, depth int) ([]Node, []Classified, error) {
	var tree []Node
	for len(lines) > 0 {
		l := lines[0]
		switch l.Kind {
		case LineType:
			return tree, lines, nil
		case LineMalformed:
			return tree, lines[1:], l.Err
		}

		expected := depth * IndentWidth
		switch {
		case l.Indent > expected:
			var prev Node
			if len(tree) > 0 {
				prev = tree[len(tree)-1]
			}
			v, ok := prev.(*Variant)
			if !ok {
				return tree, lines[1:], &BrokenInvariantError{
					Line: l.Line.Num,
					Text: l.Line.Text,
					Prev: describe(prev),
				}
			}
			sub, rest, err := parseTree(lines, depth+1)
			if err != nil {
				if keepsPartial(err) {
					_ = v.Bind(sub)
				}
				return tree, rest, err
			}
			if err := v.Bind(sub); err != nil {
				return tree, rest[min(1, len(rest)):], &BrokenInvariantError{
					Line: l.Line.Num,
					Text: l.Line.Text,
					Prev: describe(prev),
					Err:  err,
				}
			}
			lines = rest
			continue
		case l.Indent < expected:
			return tree, lines, nil
		}

		tree = append(tree, l.node())
		lines = lines[1:]
	}
	return tree, lines, nil
}

// Parser turns a whole report into types, reporting problems through
// Reporter instead of stopping at the first one.
type Parser struct {
	// Input names the report in diagnostics.
	Input    string
	Reporter diag.Reporter
}

// ParseReader reads and parses a report. The error is non-nil only when r
// fails; parse problems go to the Reporter.
func (p *Parser) ParseReader(r io.Reader) ([]*Type, error) {
	lines, err := Lines(r)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(lines), nil
}

// ParseText parses a report held in memory.
func (p *Parser) ParseText(text string) []*Type {
	return p.ParseLines(SplitLines(text))
}

// ParseLines parses prefixed lines. A type that fails to parse is dropped,
// the failure is reported, and parsing resumes at the next type line.
func (p *Parser) ParseLines(lines []Line) []*Type {
	classified := ClassifyAll(lines)
	var types []*Type
	for len(classified) > 0 {
		t, rest, err := ParseType(classified)
		if t != nil {
			types = append(types, t)
		}
		if err != nil {
			p.reportError(err, t)
			rest = p.resync(rest)
		}
		classified = rest
	}
	if len(lines) == 0 {
		diag.ReportWarning(p.reporter(), diag.RptNoTypes, diag.Location{Input: p.Input},
			"no print-type-size lines found; was the crate compiled with -Zprint-type-sizes?").Emit()
	}
	return types
}

// resync skips inner lines orphaned by a failed type.
func (p *Parser) resync(lines []Classified) []Classified {
	n := 0
	for n < len(lines) && lines[n].Kind == LineInner {
		n++
	}
	if n > 0 {
		diag.ReportInfo(p.reporter(), diag.PrsSkippedLines,
			diag.Location{Input: p.Input, Line: lines[0].Line.Num},
			fmt.Sprintf("skipped %d inner line(s) up to line %d", n, lines[n-1].Line.Num)).Emit()
	}
	return lines[n:]
}

// reportError records err. kept is the truncated type ParseType returned
// alongside it, if any.
func (p *Parser) reportError(err error, kept *Type) {
	var (
		malformed *MalformedLineError
		broken    *BrokenInvariantError
	)
	switch {
	case errors.As(err, &broken):
		diag.ReportError(p.reporter(), diag.PrsBrokenInvariant,
			diag.Location{Input: p.Input, Line: broken.Line}, broken.Error()).
			WithText(broken.Text).
			Emit()
	case errors.As(err, &malformed):
		b := diag.ReportError(p.reporter(), diag.PrsMalformedLine,
			diag.Location{Input: p.Input, Line: malformed.Line}, malformed.Error()).
			WithText(malformed.Text)
		if kept != nil {
			b = b.WithNote(fmt.Sprintf("type `%s` ends here; %d node(s) before this line are kept",
				kept.Name, len(kept.Tree)))
		}
		b.Emit()
	default:
		diag.ReportError(p.reporter(), diag.UnknownCode, diag.Location{Input: p.Input}, err.Error()).Emit()
	}
}

func (p *Parser) reporter() diag.Reporter {
	if p.Reporter == nil {
		return diag.NopReporter{}
	}
	return p.Reporter
}
