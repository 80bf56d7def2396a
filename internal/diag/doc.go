// Package diag defines the diagnostic model shared by the SSA pass, the
// project loader and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable ID such as
//     SSA1001 or PRJ5002.
//   - Message – human oriented text; name the symbol, record or function.
//   - Primary span – the source.Span of the offending tree node. Spans are
//     opaque here: the front end owns the file table.
//   - Notes – optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Phases report through a diag.Reporter. ReportError/ReportWarning return a
// ReportBuilder; call Emit to send it. BagReporter collects into a Bag, which
// supports sorting and deduplication; DedupReporter drops repeats before
// they reach the Bag.
//
// Rendering lives in internal/diagfmt; FormatShort gives the one-line form
// used by tests and quiet CLI output.
package diag
