package driver_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"zkc/internal/diag"
	"zkc/internal/driver"
	"zkc/internal/project"
	"zkc/internal/ssa"
)

type recorder struct {
	mu     sync.Mutex
	events []driver.Event
}

func (r *recorder) OnEvent(evt driver.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) trail() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, string(e.Stage)+":"+string(e.Status))
	}
	return out
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestCompileWritesOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "token.json", okProgram("token"))
	out := filepath.Join(dir, "out", "token.ssa.json")
	rec := &recorder{}

	res, err := driver.Compile(context.Background(), &driver.CompileRequest{
		Path:     in,
		Validate: true,
		Out:      out,
		Format:   project.FormatJSON,
		Progress: rec,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShort(res.Bag.Items(), true))
	}
	if res.OutPath != out || res.Cached {
		t.Fatalf("result = %+v", res)
	}

	written, err := driver.LoadTree(out)
	if err != nil {
		t.Fatalf("reload output: %v", err)
	}
	if err := ssa.Validate(written); err != nil {
		t.Fatalf("output is not in SSA form: %v", err)
	}
	if got := dump(t, written); !strings.Contains(got, "return b$1;") {
		t.Fatalf("output not renamed:\n%s", got)
	}

	want := []string{
		"load:working", "load:done",
		"ssa:working", "ssa:done",
		"validate:working", "validate:done",
		"emit:working", "emit:done",
	}
	if got := rec.trail(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestCompileToStdoutAsText(t *testing.T) {
	dir := t.TempDir()
	in := writeMsgpack(t, dir, "token.mp", okProgram("token"))
	var stdout bytes.Buffer

	res, err := driver.Compile(context.Background(), &driver.CompileRequest{
		Path:   in,
		Out:    "-",
		Stdout: &stdout,
		Format: project.FormatText,
	})
	if err != nil || res.Failed() {
		t.Fatalf("Compile: %v %v", err, codes(res.Bag))
	}
	if res.OutPath != "" {
		t.Fatalf("stdout emission should not set OutPath, got %q", res.OutPath)
	}
	if !strings.Contains(stdout.String(), "let b$1: u64 = (a + 1u64);") {
		t.Fatalf("stdout =\n%s", stdout.String())
	}
}

func TestCompileProjectWithImports(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "build/main.json", okProgram("main"))
	writeMsgpack(t, dir, "build/lib.msgpack", okProgram("lib"))
	m := writeProject(t, dir, "[ssa]\nvalidate = true\n")

	res, err := driver.Compile(context.Background(), &driver.CompileRequest{Manifest: m, Validate: m.SSA.Validate})
	if err != nil || res.Failed() {
		t.Fatalf("Compile: %v %v", err, codes(res.Bag))
	}
	if res.Unit != "main.aleo" {
		t.Fatalf("unit = %q", res.Unit)
	}
	text := dump(t, res.Program)
	// the import is converted first and shares the name counter
	if !strings.Contains(text, "let b$1: u64") || !strings.Contains(text, "let b$2: u64") {
		t.Fatalf("import and main not renamed with a shared counter:\n%s", text)
	}
}

func TestCompileUsesDiskCache(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "token.json", okProgram("token"))
	cache, err := driver.NewDiskCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	req := func(unroll int) *driver.CompileRequest {
		return &driver.CompileRequest{Path: in, Validate: true, MaxUnroll: unroll, Cache: cache}
	}

	first, err := driver.Compile(context.Background(), req(0))
	if err != nil || first.Failed() || first.Cached {
		t.Fatalf("first compile: err=%v cached=%v", err, first.Cached)
	}
	rec := &recorder{}
	r2 := req(0)
	r2.Progress = rec
	second, err := driver.Compile(context.Background(), r2)
	if err != nil || second.Failed() || !second.Cached {
		t.Fatalf("second compile: err=%v cached=%v", err, second.Cached)
	}
	if dump(t, first.Program) != dump(t, second.Program) {
		t.Fatalf("cached program differs:\n%s\n---\n%s", dump(t, first.Program), dump(t, second.Program))
	}
	if got := strings.Join(rec.trail(), " "); !strings.Contains(got, "ssa:cached") {
		t.Fatalf("events = %s", got)
	}

	// other pass options, other key
	third, err := driver.Compile(context.Background(), req(8))
	if err != nil || third.Cached {
		t.Fatalf("third compile: err=%v cached=%v", err, third.Cached)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	fourth, err := driver.Compile(context.Background(), req(0))
	if err != nil || fourth.Cached {
		t.Fatalf("after DropAll: err=%v cached=%v", err, fourth.Cached)
	}
}

func TestCompileReportsPassErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "token.json", brokenProgram("token"))
	out := filepath.Join(dir, "token.ssa.json")
	rec := &recorder{}

	res, err := driver.Compile(context.Background(), &driver.CompileRequest{Path: in, Out: out, Progress: rec})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.Failed() || res.Program != nil || res.OutPath != "" {
		t.Fatalf("result = %+v", res)
	}
	if got := codes(res.Bag); len(got) != 1 || got[0] != diag.SSAUnresolvedSymbol {
		t.Fatalf("codes = %v", got)
	}
	msg := res.Bag.Items()[0].Message
	if want := `unresolved symbol "missing" in function "f" (program token.aleo)`; msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}
	trail := rec.trail()
	if trail[len(trail)-1] != "ssa:error" {
		t.Fatalf("events = %v", trail)
	}
}

func TestCompileLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.json", []byte(`{"program_scopes": 7}`))
	null := writeFile(t, dir, "null.json", []byte(`{"program_scopes": {"token.aleo": {"functions": {"f": null}}}}`))
	tests := []struct {
		name string
		path string
		want diag.Code
	}{
		{"missing", filepath.Join(dir, "absent.json"), diag.IOLoadFileError},
		{"undecodable", bad, diag.IODecodeError},
		{"null function", null, diag.IODecodeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := driver.Compile(context.Background(), &driver.CompileRequest{Path: tt.path})
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if got := codes(res.Bag); len(got) != 1 || got[0] != tt.want {
				t.Fatalf("codes = %v, want [%v]", got, tt.want)
			}
		})
	}
}

func TestCompileTimings(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "token.json", okProgram("token"))
	res, err := driver.Compile(context.Background(), &driver.CompileRequest{Path: in, Validate: true, Timings: true})
	if err != nil || res.Failed() {
		t.Fatalf("Compile: %v %v", err, codes(res.Bag))
	}
	items := res.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || items[0].Severity != diag.SevInfo {
		t.Fatalf("diagnostics = %+v", items)
	}
	if len(items[0].Notes) != 1 || !strings.Contains(items[0].Notes[0].Msg, `"name":"ssa"`) {
		t.Fatalf("timing payload = %+v", items[0].Notes)
	}
}

func TestCompileRejectsEmptyRequest(t *testing.T) {
	if _, err := driver.Compile(context.Background(), nil); err == nil {
		t.Fatal("nil request accepted")
	}
	if _, err := driver.Compile(context.Background(), &driver.CompileRequest{}); err == nil {
		t.Fatal("request without input accepted")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := driver.Compile(ctx, &driver.CompileRequest{Path: "x.json"}); err == nil {
		t.Fatal("cancelled context accepted")
	}
}

func TestCompileAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var reqs []*driver.CompileRequest
	names := []string{"alpha", "beta", "gamma", "delta"}
	rec := &recorder{}
	for i, name := range names {
		prog := okProgram(name)
		if i == 2 {
			prog = brokenProgram(name)
		}
		reqs = append(reqs, &driver.CompileRequest{
			Path:     writeJSON(t, dir, name+".json", prog),
			Validate: true,
			Progress: rec,
		})
	}

	results, err := driver.CompileAll(context.Background(), reqs, 2)
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	for i, res := range results {
		if res.Unit != reqs[i].Path {
			t.Fatalf("result %d is for %q, want %q", i, res.Unit, reqs[i].Path)
		}
		if got, want := res.Failed(), i == 2; got != want {
			t.Fatalf("%s failed = %v, want %v", names[i], got, want)
		}
	}
	queued := 0
	for _, s := range rec.trail() {
		if s == "load:queued" {
			queued++
		}
	}
	if queued != len(names) {
		t.Fatalf("queued events = %d, want %d", queued, len(names))
	}
}
