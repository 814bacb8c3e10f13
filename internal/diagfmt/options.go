package diagfmt

import "typesizes/internal/diag"

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowText  bool
	ShowNotes bool
	// MinSeverity hides less important diagnostics (SevInfo shows all).
	MinSeverity diag.Severity
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	Max          int // caps output only; the Bag is untouched
	IncludeNotes bool
	IncludeText  bool
}
