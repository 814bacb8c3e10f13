package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"typesizes/internal/diag"
	"typesizes/internal/reportfmt"
)

func samplePayload() *Payload {
	off := 0
	return &Payload{
		Types: []reportfmt.TypeJSON{{
			Name:  "Foo",
			Size:  8,
			Align: 8,
			Line:  1,
			Children: []reportfmt.NodeJSON{
				{Kind: "field", Name: ".x", Size: 8, Offset: &off},
			},
		}},
		Diagnostics: []DiagPayload{{
			Severity: diag.SevWarning,
			Code:     diag.RptNoTypes,
			Message:  "no types",
			Notes:    []string{"check flags"},
		}},
	}
}

func TestPutGetAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("print-type-size type: `Foo`: 8 bytes, alignment: 8 bytes\n"))
	if err := c.Put(key, samplePayload()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	fresh, err := OpenDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, err := fresh.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if len(got.Types) != 1 || got.Types[0].Children[0].Offset == nil || *got.Types[0].Children[0].Offset != 0 {
		t.Errorf("types = %+v", got.Types)
	}

	if _, ok, _ := fresh.Get(Key([]byte("other"))); ok {
		t.Error("unexpected hit for unknown key")
	}
}

func TestGetRejectsUnknownSeverity(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("y"))
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	bad := samplePayload()
	bad.Schema = schemaVersion
	bad.Diagnostics[0].Severity = diag.Severity(9)
	data, err := msgpack.Marshal(bad)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err == nil {
		t.Fatalf("Get = %v, %v; want corrupt-entry error", ok, err)
	}
}

func TestGetIgnoresOldSchema(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("x"))
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := msgpack.Marshal(&Payload{Schema: schemaVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(key); ok || err != nil {
		t.Errorf("Get = %v, %v; want miss", ok, err)
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Key([]byte("x"))
	if err := c.Put(key, samplePayload()); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Error("entry survived DropAll")
	}
	if err := c.Put(key, samplePayload()); err != nil {
		t.Errorf("Put after DropAll: %v", err)
	}
}

func TestNilCache(t *testing.T) {
	var c *DiskCache
	if err := c.Put(Key(nil), samplePayload()); err != nil {
		t.Error(err)
	}
	if _, ok, err := c.Get(Key(nil)); ok || err != nil {
		t.Errorf("nil Get = %v, %v", ok, err)
	}
}

func TestKeyDependsOnText(t *testing.T) {
	if Key([]byte("a")) == Key([]byte("b")) {
		t.Error("distinct texts share a key")
	}
	if Key([]byte("a")) != Key([]byte("a")) {
		t.Error("key is not deterministic")
	}
}

func TestReplayRestoresInput(t *testing.T) {
	bag := diag.NewBag(10)
	samplePayload().Replay("build.log", diag.BagReporter{Bag: bag})
	if bag.Len() != 1 {
		t.Fatalf("replayed %d diagnostics", bag.Len())
	}
	d := bag.Items()[0]
	if d.Location.Input != "build.log" || d.Code != diag.RptNoTypes || len(d.Notes) != 1 {
		t.Errorf("replayed %+v", d)
	}

	round := FromBag(bag)
	if len(round) != 1 || round[0].Message != "no types" {
		t.Errorf("FromBag = %+v", round)
	}
}
