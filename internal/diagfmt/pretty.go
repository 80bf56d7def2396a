package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"zkc/internal/diag"
	"zkc/internal/source"
)

type palette struct {
	err, warn, info, code, note, unit *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan),
		code: color.New(color.Bold),
		note: color.New(color.FgBlue),
		unit: color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.note, p.unit} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид:
//
//	<unit>: <SEV> <CODE>: <Message> [at <span>]
//	    note: <Msg>
//
// Units are printed in the given order, diagnostics in bag order.
func Pretty(w io.Writer, units []UnitDiagnostics, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	printed := 0
	for _, u := range units {
		if u.Bag == nil {
			continue
		}
		for _, d := range u.Bag.Items() {
			if opts.Max > 0 && printed >= opts.Max {
				return nil
			}
			printed++
			if _, err := fmt.Fprintf(w, "%s: %s %s: %s%s\n",
				p.unit.Sprint(u.Unit),
				p.severity(d.Severity).Sprint(d.Severity.String()),
				p.code.Sprint(d.Code.ID()),
				d.Message,
				location(d.Primary),
			); err != nil {
				return err
			}
			if !opts.ShowNotes && d.Code != diag.ObsTimings {
				continue
			}
			for _, n := range d.Notes {
				if _, err := fmt.Fprintf(w, "    %s %s%s\n", p.note.Sprint("note:"), n.Msg, location(n.Span)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func location(sp source.Span) string {
	if sp.Empty() {
		return ""
	}
	return " at " + sp.String()
}

// Summary counts errors and warnings across units, e.g. "2 errors, 1 warning".
func Summary(units []UnitDiagnostics) string {
	var errs, warns int
	for _, u := range units {
		if u.Bag == nil {
			continue
		}
		for _, d := range u.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
		}
	}
	return fmt.Sprintf("%s, %s", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
