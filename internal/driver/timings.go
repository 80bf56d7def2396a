package driver

import (
	"encoding/json"
	"fmt"

	"zkc/internal/diag"
	"zkc/internal/observ"
	"zkc/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Unit    string               `json:"unit,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func appendTimingDiagnostic(bag *diag.Bag, unit string, report observ.Report) {
	if bag == nil {
		return
	}
	payload := timingPayload{
		Kind:    "unit",
		Unit:    unit,
		TotalMS: report.TotalMS,
		Phases:  report.Phases,
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if unit != "" {
		msg = fmt.Sprintf("%s: %s", msg, unit)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.NoSpan, msg).
		WithNote(source.NoSpan, string(data))

	if bag.Add(entry) {
		return
	}
	// лимит исчерпан, но тайминги запрошены явно
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
