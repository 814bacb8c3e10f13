package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"typesizes/internal/diag"
)

// Pretty writes one block per diagnostic:
//
//	<input>:<line>: <SEV> <CODE>: <Message>
//	    | <offending line>
//	    = note: <note>
//
// The bag is expected to be sorted already.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		if d.Severity < opts.MinSeverity {
			continue
		}
		if err := prettyOne(w, d, opts); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, opts PrettyOpts) error {
	sev := severityColor(d.Severity)
	loc := color.New(color.Bold)
	gutter := color.New(color.FgBlue)
	if !opts.Color {
		sev.DisableColor()
		loc.DisableColor()
		gutter.DisableColor()
	}

	if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
		loc.Sprint(d.Location.String()), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message); err != nil {
		return err
	}
	if opts.ShowText && d.Text != "" {
		if _, err := fmt.Fprintf(w, "    %s %s\n", gutter.Sprint("|"), d.Text); err != nil {
			return err
		}
	}
	if opts.ShowNotes {
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "    %s note: %s\n", gutter.Sprint("="), n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func severityColor(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}

// Summary is the one-line tally printed after the diagnostics.
func Summary(bag *diag.Bag) string {
	if bag == nil {
		return ""
	}
	var errs, warns, infos int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s), %d note(s)", errs, warns, infos)
}
