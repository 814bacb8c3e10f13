package reportfmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"typesizes/internal/diag"
	"typesizes/internal/report"
)

const sample = `print-type-size type: ` + "`std::option::Option<u64>`" + `: 16 bytes, alignment: 8 bytes
print-type-size     discriminant: 8 bytes
print-type-size     variant ` + "`Some`" + `: 8 bytes
print-type-size         field ` + "`.0`" + `: 8 bytes, offset: 8 bytes
print-type-size     variant ` + "`None`" + `: 0 bytes
print-type-size type: ` + "`Pair`" + `: 8 bytes, alignment: 4 bytes
print-type-size     field ` + "`.a`" + `: 4 bytes, alignment: 4 bytes
print-type-size     field ` + "`.b`" + `: 1 bytes
print-type-size     end padding: 3 bytes
`

func sampleTypes(t *testing.T) []*report.Type {
	t.Helper()
	bag := diag.NewBag(10)
	p := &report.Parser{Input: "sample", Reporter: diag.BagReporter{Bag: bag}}
	types := p.ParseText(sample)
	if bag.Len() != 0 || len(types) != 2 {
		t.Fatalf("sample parse: %d types, diagnostics %+v", len(types), bag.Items())
	}
	return types
}

func TestDTORoundTrip(t *testing.T) {
	types := sampleTypes(t)
	dto := FromTypes(types)
	back, err := ToTypes(dto)
	if err != nil {
		t.Fatalf("ToTypes: %v", err)
	}
	if got, want := FromTypes(back), dto; !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, want)
	}

	some, ok := back[0].Tree[1].(*report.Variant)
	if !ok || !some.Bound() || len(some.Tree()) != 1 {
		t.Fatalf("variant Some not rebuilt: %#v", back[0].Tree[1])
	}
	f := some.Tree()[0].(*report.Field)
	if off, ok := f.Offset.Get(); !ok || off != 8 {
		t.Errorf("offset = %v", f.Offset)
	}
	if _, ok := f.Align.Get(); ok {
		t.Errorf("align should be absent")
	}
}

func TestToTypeUnknownKind(t *testing.T) {
	tj := TypeJSON{Name: "X", Children: []NodeJSON{{Kind: "bogus"}}}
	if _, err := tj.ToType(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestPrettyAlignsStats(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleTypes(t)[:1], PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		fmt.Sprintf("%-26s%s", "std::option::Option<u64>", "16 bytes, align 8"),
		fmt.Sprintf("%-26s%s", "    discriminant", "8 bytes"),
		fmt.Sprintf("%-26s%s", "    variant Some", "8 bytes"),
		fmt.Sprintf("%-26s%s", "        field .0", "8 bytes, offset 8"),
		fmt.Sprintf("%-26s%s", "    variant None", "0 bytes"),
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("pretty output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrettyGroupsDigits(t *testing.T) {
	big := []*report.Type{{Name: "Big", Size: 1048576, Align: 8}}
	var buf bytes.Buffer
	if err := Pretty(&buf, big, PrettyOpts{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "1,048,576 bytes") {
		t.Errorf("got %q", buf.String())
	}
}

func TestColorNameKeepsText(t *testing.T) {
	name := "Vec<Option<u8>>"
	if got := ColorName(name, false); got != name {
		t.Errorf("uncoloured = %q", got)
	}
	colored := ColorName(name, true)
	if colored == name || !strings.Contains(colored, "Option") {
		t.Errorf("coloured = %q", colored)
	}
}

func TestJSONDocument(t *testing.T) {
	gen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := NewReport("demo", "cargo +nightly rustc", gen, sampleTypes(t))
	var buf bytes.Buffer
	if err := JSON(&buf, r); err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Package != "demo" || len(back.Types) != 2 || !back.Generated.Equal(gen) {
		t.Errorf("decoded %+v", back)
	}
	if back.Types[1].Children[2].Kind != "end padding" {
		t.Errorf("kind = %q", back.Types[1].Children[2].Kind)
	}
}

func TestWriteHTML(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := NewReport("demo<pkg>", "cargo +nightly rustc", time.Now(), sampleTypes(t))
	path, err := WriteHTML(dir, r)
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	page, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(page)
	for _, want := range []string{
		"<!DOCTYPE html>",
		"demo&lt;pkg&gt;",
		`<span class="lvl-1">u64</span>`,
		"kind-end-padding",
		"cargo +nightly rustc",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("page lacks %q", want)
		}
	}
	for _, name := range []string{"styles.css", "index.js"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("static %s: %v", name, err)
		}
	}
}
