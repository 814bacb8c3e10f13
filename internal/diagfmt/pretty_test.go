package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"typesizes/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	d := diag.NewError(diag.PrsMalformedLine, diag.Location{Input: "build.log", Line: 12}, "line 12: malformed type-size line").
		WithNote("expected type declaration")
	d.Text = "    field `x`: many bytes"
	bag.Add(d)
	bag.Add(diag.New(diag.SevInfo, diag.PrsSkippedLines, diag.Location{Input: "build.log", Line: 13}, "skipped 2 inner line(s) up to line 14"))
	return bag
}

// TestPrettyPlain проверяет вывод без цвета
func TestPrettyPlain(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{ShowText: true, ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"build.log:12: ERROR PRS1001: line 12: malformed type-size line",
		"    | " + "    field `x`: many bytes",
		"    = note: expected type declaration",
		"build.log:13: INFO PRS1003:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("escape codes in uncolored output")
	}
}

func TestPrettyMinSeverity(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{MinSeverity: diag.SevWarning}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "PRS1003") {
		t.Errorf("info diagnostic not filtered:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "note:") {
		t.Error("notes shown without ShowNotes")
	}
}

func TestSummary(t *testing.T) {
	if got := Summary(sampleBag()); got != "1 error(s), 0 warning(s), 1 note(s)" {
		t.Errorf("Summary = %q", got)
	}
}
