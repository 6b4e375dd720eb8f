// Package diag defines the diagnostic model shared by the preprocessor, the
// log translator, the compiler wrapper and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier (see codes.go) with stable string form
//     such as PP1004 or CMP3001.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – a source.Location in the file the author wrote. Locations are
//     display names plus 1-based line/column, not byte spans: translated
//     compiler messages only ever carry line numbers.
//   - Notes – secondary locations, e.g. "included from" frames.
//
// # Emitting diagnostics
//
// Producers use a Reporter; BagReporter collects into a bounded Bag, which supports
// sorting and deduplication. Dedup wraps a Reporter and filters duplicates on the way in.
// Deduplication is always opt-in: the translator reports every compiler line.
//
// Rendering lives in internal/diagfmt.
package diag
