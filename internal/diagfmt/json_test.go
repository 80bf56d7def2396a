package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONAcrossUnits(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleUnits(), JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 3 || len(out.Diagnostics) != 3 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	first := out.Diagnostics[0]
	if first.Severity != "ERROR" || first.Code != "SSA1001" || first.Location.Unit != "a.json" {
		t.Fatalf("first = %+v", first)
	}
	if first.Location.StartByte != 10 || first.Location.EndByte != 14 {
		t.Fatalf("location = %+v", first.Location)
	}
	if len(first.Notes) != 1 {
		t.Fatalf("notes = %+v", first.Notes)
	}
	if out.Diagnostics[2].Location.Unit != "b.json" {
		t.Fatalf("third = %+v", out.Diagnostics[2])
	}
}

func TestJSONMaxAndNotes(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleUnits(), JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	if len(out.Diagnostics[0].Notes) != 0 {
		t.Fatalf("notes included without IncludeNotes: %+v", out.Diagnostics[0].Notes)
	}

	empty := BuildDiagnosticsOutput(nil, JSONOpts{})
	data, err := json.Marshal(empty)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"diagnostics":[],"count":0}` {
		t.Fatalf("empty output = %s", data)
	}
}
