package diag

import (
	"fmt"
	"sort"
	"strings"
)

type shortDiagnostic struct {
	severity string
	code     string
	span     string
	file     uint32
	start    uint32
	message  string
}

// FormatShort renders diagnostics one per line in a stable order, e.g.
//
//	error SSA1001 1:10-14 unresolved symbol "x" in function "mint"
//
// Notes are rendered as separate "note" lines when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		rendered = append(rendered, shortDiagnostic{
			severity: d.Severity.label(),
			code:     d.Code.ID(),
			span:     d.Primary.String(),
			start:    d.Primary.Start,
			file:     uint32(d.Primary.File),
			message:  sanitizeMessage(d.Message),
		})
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			rendered = append(rendered, shortDiagnostic{
				severity: "note",
				code:     d.Code.ID(),
				span:     note.Span.String(),
				start:    note.Span.Start,
				file:     uint32(note.Span.File),
				message:  sanitizeMessage(note.Msg),
			})
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.file != dj.file {
			return di.file < dj.file
		}
		if di.start != dj.start {
			return di.start < dj.start
		}
		return di.code < dj.code
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.severity, d.code, d.span, d.message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
