// Package report turns rustc's -Zprint-type-sizes output into a forest of
// typed layout nodes.
//
// The pipeline inside the package is:
//
//	Lines      drop everything not prefixed with "print-type-size "
//	Classify   recognise type lines, inner lines, or malformed lines
//	Parser     rebuild the tree from indentation, one Type at a time
//	Filter     include/exclude by top-level type name, optional size sort
//	Trimmer    shorten long names while keeping angle brackets balanced
//
// Nothing in the package logs. Conditions worth telling the user about are
// emitted through a diag.Reporter; fatal ones are also returned as typed
// errors (*MalformedLineError, *BrokenInvariantError).
package report
