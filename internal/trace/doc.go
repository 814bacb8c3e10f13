// Package trace provides span tracing for the type-sizes pipeline.
//
// It answers "where did the time go" and "where is it stuck" for a run that
// spends most of its life waiting on cargo.
//
// # Usage
//
//	type-sizes run --trace=- --trace-level=stage
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelStage: Driver and pipeline stage boundaries
//   - LevelDetail: Per-input events
//   - LevelDebug: Everything including one event per parsed type
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//
//	ctx, span := trace.Start(ctx, trace.ScopeStage, "parse")
//	defer span.End("")
//	span.Point(trace.ScopeType, name, "16 bytes")
package trace
