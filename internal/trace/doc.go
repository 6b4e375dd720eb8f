// Package trace records what the preprocessor is doing while it does it.
//
// A command opens a span, each stage unit opens a child span, every fragment
// the engine loads gets its own span and skipped includes show up as points.
// When a loader hangs, the open fragment span and the heartbeat counter of
// open spans make it visible.
//
// # Usage
//
//	shaderpp build --trace=- --trace-level=detail basic
//	shaderpp preprocess --trace=out.ndjson --trace-mode=both main.frag
//
// # Levels
//
//   - off: nothing
//   - error: ring buffer only, dumped when the process panics
//   - phase: commands and stage units
//   - detail: plus every loaded fragment
//   - debug: plus single directives
//
// # Context
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeUnit, "stage:vertex")
//	defer span.End("")
package trace
