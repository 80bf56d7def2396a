package diag

import (
	"zkc/internal/source"
)

type Note struct {
	Span source.Span `json:"span"`
	Msg  string      `json:"msg"`
}

type Diagnostic struct {
	Severity Severity    `json:"severity"`
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Primary  source.Span `json:"primary"`
	Notes    []Note      `json:"notes,omitempty"`
}
