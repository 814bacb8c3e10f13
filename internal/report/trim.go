package report

import (
	"fmt"
	"strings"

	"typesizes/internal/diag"
)

// Ellipsis marks a shortened name.
const Ellipsis = "…"

// TrimName shortens name to max runes, appends Ellipsis, and closes every
// angle bracket left open by the cut. Names within the limit, and any name
// when max <= 0, are returned unchanged. The split of the shortened prefix is
// returned so callers can inspect its balance.
func TrimName(name string, max int) (string, NameSplit, bool) {
	if max <= 0 {
		return name, NameSplit{}, false
	}
	runes := []rune(name)
	if len(runes) <= max {
		return name, NameSplit{}, false
	}
	trimmed := string(runes[:max]) + Ellipsis
	split := SplitName(trimmed)
	if open := split.OpenBrackets(); open > 0 {
		trimmed += strings.Repeat(">", open)
	}
	return trimmed, split, true
}

// Trimmer applies TrimName to every named node of a type.
type Trimmer struct {
	Max      int
	Input    string
	Reporter diag.Reporter
}

// Trim returns a copy of t with names trimmed, walking the tree in pre-order.
// With Max <= 0 t itself is returned.
func (tr Trimmer) Trim(t *Type) *Type {
	if t == nil || tr.Max <= 0 {
		return t
	}
	out := t.Clone()
	Walk(out, func(n Node, _ int) bool {
		named, ok := n.(Named)
		if !ok {
			return true
		}
		trimmed, split, changed := TrimName(named.DisplayName(), tr.Max)
		if !changed {
			return true
		}
		if !split.Balanced && tr.Reporter != nil {
			diag.ReportWarning(tr.Reporter, diag.NamUnbalancedBrackets,
				diag.Location{Input: tr.Input, Line: t.Line},
				fmt.Sprintf("%s name has an unmatched '>' and may render incorrectly", n.Kind())).
				WithText(named.DisplayName()).
				Emit()
		}
		named.setName(trimmed)
		return true
	})
	return out
}

// TrimAll trims every type in order.
func (tr Trimmer) TrimAll(types []*Type) []*Type {
	out := make([]*Type, len(types))
	for i, t := range types {
		out[i] = tr.Trim(t)
	}
	return out
}
