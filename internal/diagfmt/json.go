package diagfmt

import (
	"encoding/json"
	"io"

	"zkc/internal/diag"
	"zkc/internal/source"
)

// LocationJSON представляет местоположение в дереве для JSON
type LocationJSON struct {
	Unit      string `json:"unit"`
	File      uint32 `json:"file,omitempty"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(unit string, span source.Span) LocationJSON {
	return LocationJSON{
		Unit:      unit,
		File:      uint32(span.File),
		StartByte: span.Start,
		EndByte:   span.End,
	}
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(units []UnitDiagnostics, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, u := range units {
		if u.Bag == nil {
			continue
		}
		for _, d := range u.Bag.Items() {
			if opts.Max > 0 && len(diagnostics) >= opts.Max {
				break
			}
			dj := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.ID(),
				Title:    d.Code.Title(),
				Message:  d.Message,
				Location: makeLocation(u.Unit, d.Primary),
			}
			includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
			if includeNotes && len(d.Notes) > 0 {
				dj.Notes = make([]NoteJSON, len(d.Notes))
				for j, note := range d.Notes {
					dj.Notes[j] = NoteJSON{
						Message:  note.Msg,
						Location: makeLocation(u.Unit, note.Span),
					}
				}
			}
			diagnostics = append(diagnostics, dj)
		}
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON форматирует диагностики всех единиц в один JSON документ.
func JSON(w io.Writer, units []UnitDiagnostics, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(units, opts))
}
