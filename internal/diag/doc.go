// Package diag defines the diagnostic model shared by the report parser and
// the surrounding pipeline.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced while
//     classifying and parsing type-size reports.
//   - Offer light-weight utilities (Reporter, Bag) so producers can emit
//     diagnostics without coupling to storage or formatting.
//
// # Scope
//
// Package diag does not perform formatting or IO. Rendering lives in
// internal/diagfmt; deciding whether a run failed is up to the CLI, which asks
// the Bag for HasErrors.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Location – input name and 1-based line number of the offending line.
//   - Text – the offending report line, verbatim, when there is one.
//   - Notes – optional extra context.
//
// # Emitting diagnostics
//
// Producers take a Reporter. ReportError / ReportWarning / ReportInfo return a
// ReportBuilder; chain WithNote / WithText and finish with Emit. BagReporter
// collects into a Bag, which supports sorting, deduplication and limits.
package diag
