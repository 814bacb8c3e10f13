package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true, IncludeText: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "PRS1001" || d.Severity != "ERROR" || d.Location.Line != 12 || d.Location.Input != "build.log" {
		t.Errorf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Text == "" {
		t.Errorf("notes/text missing: %+v", d)
	}
}

func TestJSONMax(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleBag(), JSONOpts{Max: 1})
	if out.Count != 1 {
		t.Errorf("count = %d, want 1", out.Count)
	}
	if out.Diagnostics[0].Notes != nil || out.Diagnostics[0].Text != "" {
		t.Error("notes/text included without opting in")
	}
}

func TestJSONNilBag(t *testing.T) {
	out := BuildDiagnosticsOutput(nil, JSONOpts{})
	if out.Diagnostics == nil || out.Count != 0 {
		t.Errorf("nil bag should give an empty list, got %+v", out)
	}
}
