package reportfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"typesizes/internal/report"
)

// PrettyOpts controls the text tree.
type PrettyOpts struct {
	Color bool
	// Indent is the width of one tree level. Zero means report.IndentWidth.
	Indent int
	// Lang selects digit grouping for sizes; English when unset.
	Lang language.Tag
}

// levelColors cycle by angle-bracket depth.
var levelColors = []color.Attribute{
	color.FgCyan,
	color.FgGreen,
	color.FgMagenta,
	color.FgYellow,
	color.FgBlue,
}

type prettyLine struct {
	label string
	width int
	stats string
}

// Pretty writes every type as an aligned tree:
//
//	Option<u64>       16 bytes, align 8
//	    variant Some  16 bytes
//	        field .0  8 bytes, offset 8
func Pretty(w io.Writer, types []*report.Type, opts PrettyOpts) error {
	lang := opts.Lang
	if lang == language.Und {
		lang = language.English
	}
	p := message.NewPrinter(lang)
	indent := opts.Indent
	if indent <= 0 {
		indent = report.IndentWidth
	}
	for i, t := range types {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := prettyType(w, t, indent, p, opts.Color); err != nil {
			return err
		}
	}
	return nil
}

func prettyType(w io.Writer, t *report.Type, indent int, p *message.Printer, useColor bool) error {
	var lines []prettyLine
	report.Walk(t, func(n report.Node, depth int) bool {
		label := strings.Repeat(" ", depth*indent) + nodeLabel(n, useColor)
		plain := strings.Repeat(" ", depth*indent) + nodeLabel(n, false)
		lines = append(lines, prettyLine{
			label: label,
			width: runewidth.StringWidth(plain),
			stats: nodeStats(n, p),
		})
		return true
	})
	col := 0
	for _, l := range lines {
		col = max(col, l.width)
	}
	for _, l := range lines {
		pad := strings.Repeat(" ", col-l.width+2)
		if _, err := fmt.Fprintf(w, "%s%s%s\n", l.label, pad, l.stats); err != nil {
			return err
		}
	}
	return nil
}

func nodeLabel(n report.Node, useColor bool) string {
	switch v := n.(type) {
	case *report.Type:
		return ColorName(v.Name, useColor)
	case report.Named:
		return n.Kind().String() + " " + ColorName(v.DisplayName(), useColor)
	}
	return n.Kind().String()
}

func nodeStats(n report.Node, p *message.Printer) string {
	s := p.Sprintf("%d bytes", n.Bytes())
	switch v := n.(type) {
	case *report.Type:
		s += p.Sprintf(", align %d", v.Align)
	case *report.Field:
		if off, ok := v.Offset.Get(); ok {
			s += p.Sprintf(", offset %d", off)
		}
		if al, ok := v.Align.Get(); ok {
			s += p.Sprintf(", align %d", al)
		}
	}
	return s
}

// ColorName paints each fragment of a type name by its bracket level.
func ColorName(name string, useColor bool) string {
	if !useColor || name == "" {
		return name
	}
	var b strings.Builder
	for _, tok := range report.SplitName(name).Tokens {
		attr := color.FgRed
		if tok.Level >= 0 {
			attr = levelColors[tok.Level%len(levelColors)]
		}
		c := color.New(attr)
		c.EnableColor()
		b.WriteString(c.Sprint(tok.Text))
	}
	return b.String()
}
