// Package pipeline wires the stages of a type-size run together:
//
//	compile → parse → filter → sort → trim
//
// Each stage reports progress to an optional ProgressSink, records its
// duration in Timings and the observ.Timer, and opens a trace span on the
// tracer carried by the context. Parse-time conditions end up in the
// returned diag.Bag; only I/O, compiler and configuration failures are
// returned as errors.
package pipeline
