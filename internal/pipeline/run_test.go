package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"typesizes/internal/cache"
	"typesizes/internal/cargo"
	"typesizes/internal/diag"
	"typesizes/internal/report"
)

func reportText(lines ...string) []byte {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(report.Prefix)
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	return []byte(sb.String())
}

var (
	small = reportText(
		"type: `app::Small`: 4 bytes, alignment: 4 bytes",
		"    field `.n`: 4 bytes",
	)
	big = reportText(
		"type: `std::vec::Vec<app::Small>`: 24 bytes, alignment: 8 bytes",
		"    field `.buf`: 16 bytes",
		"    field `.len`: 8 bytes",
		"type: `app::Big`: 64 bytes, alignment: 8 bytes",
		"    field `.data`: 64 bytes",
	)
)

type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) has(input string, stage Stage, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.Input == input && ev.Stage == stage && ev.Status == status {
			return true
		}
	}
	return false
}

func names(types []*report.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.Name
	}
	return out
}

func TestRunKeepsInputOrder(t *testing.T) {
	res, err := Run(context.Background(), &Request{
		Inputs: []Input{{Name: "a", Text: small}, {Name: "b", Text: big}},
		Jobs:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "app::Small,std::vec::Vec<app::Small>,app::Big"
	if got := strings.Join(names(res.Types), ","); got != want {
		t.Errorf("types = %s, want %s", got, want)
	}
	if res.Bag.Len() != 0 {
		t.Errorf("diagnostics: %+v", res.Bag.Items())
	}
	if !res.Timings.Has(StageParse) || !res.Timings.Has(StageFilter) {
		t.Error("missing stage timings")
	}
	if res.Timings.Has(StageSort) || res.Timings.Has(StageTrim) {
		t.Error("sort/trim ran without being requested")
	}
}

func TestRunFilterSortTrim(t *testing.T) {
	sink := &recordSink{}
	res, err := Run(context.Background(), &Request{
		Inputs:    []Input{{Name: "a", Text: small}, {Name: "b", Text: big}},
		Exclude:   []string{report.ExcludeStd},
		SortSize:  true,
		MaxLength: 5,
		Progress:  sink,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(names(res.Types), ","); got != "app::…,app::…" {
		t.Errorf("types = %s", got)
	}
	if res.Types[0].Size != 64 {
		t.Errorf("first type size %d, want 64", res.Types[0].Size)
	}
	for _, stage := range []Stage{StageParse, StageFilter, StageSort, StageTrim} {
		if !sink.has("", stage, StatusDone) {
			t.Errorf("no done event for %s", stage)
		}
	}
	if !sink.has("a", StageParse, StatusQueued) || !sink.has("b", StageParse, StatusDone) {
		t.Error("missing per-input parse events")
	}
}

func TestRunReadsPathsAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	text := append(append([]byte{}, small...), []byte(report.Prefix+"type: `Broken`: lots of bytes\n")...)
	if err := os.WriteFile(path, text, 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := Run(context.Background(), &Request{Inputs: []Input{{Path: path}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Types) != 1 {
		t.Errorf("got %d types", len(res.Types))
	}
	if !res.Bag.HasErrors() {
		t.Fatal("malformed line not reported")
	}
	d := res.Bag.Items()[0]
	if d.Code != diag.PrsMalformedLine || d.Location.Input != path || d.Location.Line != 3 {
		t.Errorf("diagnostic = %+v", d)
	}

	if _, err := Run(context.Background(), &Request{Inputs: []Input{{Path: filepath.Join(dir, "missing")}}}); err == nil {
		t.Error("expected read error")
	}
}

func TestRunRejectsBadPattern(t *testing.T) {
	_, err := Run(context.Background(), &Request{Inputs: []Input{{Text: small}}, Include: []string{"("}})
	if err == nil {
		t.Fatal("expected pattern error")
	}
}

func TestRunUsesCache(t *testing.T) {
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	req := func(sink ProgressSink) *Request {
		return &Request{Inputs: []Input{{Name: "b", Text: big}}, Cache: c, Progress: sink}
	}
	if _, err := Run(context.Background(), req(nil)); err != nil {
		t.Fatal(err)
	}
	sink := &recordSink{}
	res, err := Run(context.Background(), req(sink))
	if err != nil {
		t.Fatal(err)
	}
	if !sink.has("b", StageParse, StatusCached) {
		t.Error("second run did not hit the cache")
	}
	if len(res.Types) != 2 || len(res.Types[0].Tree) != 2 {
		t.Errorf("cached types = %+v", res.Types)
	}
}

func TestRunCacheKeepsDiagnosticsBeyondLimit(t *testing.T) {
	c, err := cache.OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	noisy := reportText(
		"type: `A`: lots of bytes",
		"type: `B`: lots of bytes",
		"type: `C`: lots of bytes",
	)
	run := func(max int) (Result, *recordSink) {
		t.Helper()
		sink := &recordSink{}
		res, err := Run(context.Background(), &Request{
			Inputs:         []Input{{Name: "noisy", Text: noisy}},
			Cache:          c,
			MaxDiagnostics: max,
			Progress:       sink,
		})
		if err != nil {
			t.Fatal(err)
		}
		return res, sink
	}

	if res, _ := run(1); res.Bag.Len() != 1 {
		t.Fatalf("limited run kept %d diagnostics", res.Bag.Len())
	}
	res, sink := run(10)
	if !sink.has("noisy", StageParse, StatusCached) {
		t.Fatal("second run did not hit the cache")
	}
	if res.Bag.Len() != 3 {
		t.Errorf("cached run replayed %d diagnostics, want 3", res.Bag.Len())
	}
	for _, d := range res.Bag.Items() {
		if d.Location.Input != "noisy" {
			t.Errorf("diagnostic input = %q", d.Location.Input)
		}
	}
}

func TestRunCompile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "cargo")
	script := "#!/bin/sh\ncat <<'EOF'\n" + string(small) + "EOF\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	opts := &cargo.Options{Cargo: bin}
	res, err := Run(context.Background(), &Request{Compile: opts})
	if err != nil {
		t.Fatal(err)
	}
	if res.Command != opts.CommandLine() {
		t.Errorf("command = %q", res.Command)
	}
	if len(res.Types) != 1 || res.Types[0].Name != "app::Small" {
		t.Errorf("types = %v", names(res.Types))
	}
	if !res.Timings.Has(StageCompile) {
		t.Error("compile not timed")
	}
}
