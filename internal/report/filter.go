package report

import (
	"fmt"
	"regexp"
	"sort"
)

// ExcludeStd is the exclusion pattern for standard library types.
const ExcludeStd = `^(std|core)::`

// Filter keeps top-level types by name. A type passes when it matches at
// least one include pattern (or there are none) and no exclude pattern.
// Patterns are unanchored searches.
type Filter struct {
	include []*regexp.Regexp
	exclude []*regexp.Regexp
}

// NewFilter compiles the patterns.
func NewFilter(include, exclude []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range include {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, re)
	}
	for _, p := range exclude {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, re)
	}
	return f, nil
}

// Match reports whether a type called name survives the filter.
func (f *Filter) Match(name string) bool {
	if f == nil {
		return true
	}
	if len(f.include) > 0 {
		hit := false
		for _, re := range f.include {
			if re.MatchString(name) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, re := range f.exclude {
		if re.MatchString(name) {
			return false
		}
	}
	return true
}

// Apply returns the surviving types in their original order.
func (f *Filter) Apply(types []*Type) []*Type {
	out := make([]*Type, 0, len(types))
	for _, t := range types {
		if f.Match(t.Name) {
			out = append(out, t)
		}
	}
	return out
}

// SortBySize returns a copy of types ordered by size, largest first. Equal
// sizes keep their relative order.
func SortBySize(types []*Type) []*Type {
	out := append([]*Type(nil), types...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Size > out[j].Size
	})
	return out
}
