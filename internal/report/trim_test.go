package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"typesizes/internal/diag"
)

func balance(s string) int {
	return SplitName(s).OpenBrackets()
}

func TestTrimName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"within limit", "Option<u8>", 10, "Option<u8>"},
		{"disabled", "Option<Vec<String>>", 0, "Option<Vec<String>>"},
		{"negative disables", "Option<Vec<String>>", -3, "Option<Vec<String>>"},
		{"closes open brackets", "Option<Vec<String>>", 10, "Option<Vec…>"},
		{"closes nested brackets", "Option<Vec<String>>", 12, "Option<Vec<S…>>"},
		{"cut after close", "Vec<u8>::Iter", 8, "Vec<u8>:…"},
		{"runes not bytes", "Schlüssel<Größe>", 12, "Schlüssel<Gr…>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, changed := TrimName(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("TrimName(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if changed != (got != tt.input) {
				t.Errorf("changed = %v for %q", changed, got)
			}
		})
	}
}

func TestTrimNamePrefixLength(t *testing.T) {
	name := "Option<Vec<String>>"
	got, split, _ := TrimName(name, 10)
	prefix := strings.TrimSuffix(strings.TrimRight(got, ">"), Ellipsis)
	if utf8.RuneCountInString(prefix) != 10 || !strings.HasPrefix(name, prefix) {
		t.Fatalf("prefix = %q", prefix)
	}
	closers := strings.Count(got, ">") - strings.Count(prefix, ">")
	if closers != split.OpenBrackets() {
		t.Errorf("appended %d '>', want %d", closers, split.OpenBrackets())
	}
}

func TestTrimNameIdempotentAndBalanced(t *testing.T) {
	names := []string{
		"alloc::collections::btree::map::BTreeMap<std::string::String, std::vec::Vec<core::option::Option<u64>>>",
		"core::future::from_generator::GenFuture<[static generator@src/main.rs:10:5: 20:6]>",
		"fn(&mut std::fmt::Formatter<'_>) -> std::result::Result<(), std::fmt::Error>",
		"short",
	}
	for _, name := range names {
		for _, max := range []int{1, 5, 17, 40, 200} {
			once, _, _ := TrimName(name, max)
			twice, _, _ := TrimName(once, max)
			if once != twice {
				t.Errorf("not idempotent for %q/%d: %q then %q", name, max, once, twice)
			}
			if b := balance(once); b != 0 {
				t.Errorf("TrimName(%q, %d) = %q has %d open brackets", name, max, once, b)
			}
		}
	}
}

func TestTrimmerWalksWholeTree(t *testing.T) {
	types, _ := parseText(t, reportText(
		"type: `Option<Vec<String>>`: 24 bytes, alignment: 8 bytes",
		"    variant `Some<Vec<String>>`: 24 bytes",
		"        field `inner_value_name`: 24 bytes, offset: 0 bytes",
		"    variant `None`: 0 bytes",
	))
	orig := types[0]
	trimmed := Trimmer{Max: 10}.Trim(orig)

	var names []string
	Walk(trimmed, func(n Node, _ int) bool {
		if named, ok := n.(Named); ok {
			names = append(names, named.DisplayName())
		}
		return true
	})
	want := []string{"Option<Vec…>", "Some<Vec<S…>>", "inner_valu…", "None"}
	if strings.Join(names, "|") != strings.Join(want, "|") {
		t.Errorf("names = %q, want %q", names, want)
	}
	if orig.Name != "Option<Vec<String>>" {
		t.Errorf("original mutated: %q", orig.Name)
	}
	if !trimmed.Tree[0].(*Variant).Bound() {
		t.Error("clone lost the variant binding")
	}
}

func TestTrimmerDisabledReturnsSame(t *testing.T) {
	ty := &Type{Name: strings.Repeat("x", 500)}
	if got := (Trimmer{}).Trim(ty); got != ty {
		t.Error("Max 0 should return the type unchanged")
	}
}

func TestTrimmerWarnsOnUnbalanced(t *testing.T) {
	bag := diag.NewBag(10)
	tr := Trimmer{Max: 6, Input: "in", Reporter: diag.BagReporter{Bag: bag}}
	tr.TrimAll([]*Type{{Name: "Ab>Cd<Efgh", Line: 3}})
	if bag.Len() != 1 {
		t.Fatalf("diagnostics = %+v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.NamUnbalancedBrackets || d.Severity != diag.SevWarning || d.Location.Line != 3 {
		t.Errorf("diagnostic = %+v", d)
	}
}
