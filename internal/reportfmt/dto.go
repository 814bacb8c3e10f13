package reportfmt

import (
	"fmt"
	"time"

	"typesizes/internal/report"
)

// NodeJSON is one node of a layout tree. Kind is the ItemKind string.
type NodeJSON struct {
	Kind     string     `json:"kind" msgpack:"kind"`
	Name     string     `json:"name,omitempty" msgpack:"name,omitempty"`
	Size     int        `json:"size" msgpack:"size"`
	Offset   *int       `json:"offset,omitempty" msgpack:"offset,omitempty"`
	Align    *int       `json:"align,omitempty" msgpack:"align,omitempty"`
	Raw      string     `json:"raw,omitempty" msgpack:"raw,omitempty"`
	Children []NodeJSON `json:"children,omitempty" msgpack:"children,omitempty"`
}

// TypeJSON is a top-level type.
type TypeJSON struct {
	Name     string     `json:"name" msgpack:"name"`
	Size     int        `json:"size" msgpack:"size"`
	Align    int        `json:"align" msgpack:"align"`
	Line     int        `json:"line,omitempty" msgpack:"line,omitempty"`
	Children []NodeJSON `json:"children,omitempty" msgpack:"children,omitempty"`
}

// Report is the document every output format is built from.
type Report struct {
	Package   string     `json:"package"`
	Command   string     `json:"command,omitempty"`
	Generated time.Time  `json:"generated"`
	Types     []TypeJSON `json:"types"`
}

// NewReport converts parsed types into a Report.
func NewReport(pkg, command string, generated time.Time, types []*report.Type) Report {
	return Report{
		Package:   pkg,
		Command:   command,
		Generated: generated,
		Types:     FromTypes(types),
	}
}

// FromTypes converts types, never returning nil.
func FromTypes(types []*report.Type) []TypeJSON {
	out := make([]TypeJSON, 0, len(types))
	for _, t := range types {
		out = append(out, FromType(t))
	}
	return out
}

func FromType(t *report.Type) TypeJSON {
	return TypeJSON{
		Name:     t.Name,
		Size:     t.Size,
		Align:    t.Align,
		Line:     t.Line,
		Children: fromTree(t.Tree),
	}
}

func fromTree(tree []report.Node) []NodeJSON {
	if len(tree) == 0 {
		return nil
	}
	out := make([]NodeJSON, 0, len(tree))
	for _, n := range tree {
		out = append(out, fromNode(n))
	}
	return out
}

func optPtr(o report.Optional) *int {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}

func fromNode(n report.Node) NodeJSON {
	nj := NodeJSON{Kind: n.Kind().String(), Size: n.Bytes()}
	switch v := n.(type) {
	case report.Discriminant:
		nj.Raw = v.Raw
	case *report.Field:
		nj.Name = v.Name
		nj.Offset = optPtr(v.Offset)
		nj.Align = optPtr(v.Align)
	case *report.Variant:
		nj.Name = v.Name
		nj.Children = fromTree(v.Tree())
	}
	return nj
}

// ToTypes converts back to parsed types.
func ToTypes(in []TypeJSON) ([]*report.Type, error) {
	out := make([]*report.Type, 0, len(in))
	for i := range in {
		t, err := in[i].ToType()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ToType rebuilds a report.Type. Unknown kinds are an error.
func (tj TypeJSON) ToType() (*report.Type, error) {
	tree, err := toTree(tj.Children)
	if err != nil {
		return nil, fmt.Errorf("type %q: %w", tj.Name, err)
	}
	return &report.Type{
		Name:  tj.Name,
		Size:  tj.Size,
		Align: tj.Align,
		Line:  tj.Line,
		Tree:  tree,
	}, nil
}

func toTree(in []NodeJSON) ([]report.Node, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]report.Node, 0, len(in))
	for _, nj := range in {
		n, err := nj.toNode()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func optFrom(p *int) report.Optional {
	if p == nil {
		return report.Optional{}
	}
	return report.Some(*p)
}

func (nj NodeJSON) toNode() (report.Node, error) {
	switch nj.Kind {
	case report.KindDiscriminant.String():
		return report.Discriminant{Size: nj.Size, Raw: nj.Raw}, nil
	case report.KindPadding.String():
		return report.Padding{Size: nj.Size}, nil
	case report.KindEndPadding.String():
		return report.EndPadding{Size: nj.Size}, nil
	case report.KindField.String():
		return &report.Field{Name: nj.Name, Size: nj.Size, Offset: optFrom(nj.Offset), Align: optFrom(nj.Align)}, nil
	case report.KindVariant.String():
		v := report.NewVariant(nj.Name, nj.Size)
		if nj.Children != nil {
			tree, err := toTree(nj.Children)
			if err != nil {
				return nil, err
			}
			if err := v.Bind(tree); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown node kind %q", nj.Kind)
}
