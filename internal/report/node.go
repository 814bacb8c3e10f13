package report

import "strconv"

// ItemKind identifies what a node in a layout tree describes.
type ItemKind uint8

const (
	KindType ItemKind = iota + 1
	KindDiscriminant
	KindPadding
	KindEndPadding
	KindField
	KindVariant
)

func (k ItemKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindDiscriminant:
		return "discriminant"
	case KindPadding:
		return "padding"
	case KindEndPadding:
		return "end padding"
	case KindField:
		return "field"
	case KindVariant:
		return "variant"
	default:
		return "unknown"
	}
}

// parseItemKind maps the kind word of an inner line. "type" is not an inner
// kind and is rejected.
func parseItemKind(s string) (ItemKind, bool) {
	switch s {
	case "discriminant":
		return KindDiscriminant, true
	case "padding":
		return KindPadding, true
	case "end padding":
		return KindEndPadding, true
	case "field":
		return KindField, true
	case "variant":
		return KindVariant, true
	}
	return 0, false
}

// Optional is a byte count that may be missing from the report line.
type Optional struct {
	Value int
	Valid bool
}

// Some returns a present Optional.
func Some(v int) Optional { return Optional{Value: v, Valid: true} }

// Get returns the value and whether it is present.
func (o Optional) Get() (int, bool) { return o.Value, o.Valid }

func (o Optional) String() string {
	if !o.Valid {
		return ""
	}
	return strconv.Itoa(o.Value)
}

// Node is any element of a layout tree.
type Node interface {
	Kind() ItemKind
	Bytes() int
}

// Named is implemented by nodes that carry a name.
type Named interface {
	Node
	DisplayName() string
	setName(string)
}

type Discriminant struct {
	Size int
	// Raw is the size exactly as captured from the line.
	Raw string
}

func (Discriminant) Kind() ItemKind { return KindDiscriminant }
func (d Discriminant) Bytes() int   { return d.Size }

type Padding struct {
	Size int
}

func (Padding) Kind() ItemKind { return KindPadding }
func (p Padding) Bytes() int   { return p.Size }

type EndPadding struct {
	Size int
}

func (EndPadding) Kind() ItemKind { return KindEndPadding }
func (p EndPadding) Bytes() int   { return p.Size }

type Field struct {
	Name   string
	Size   int
	Offset Optional
	Align  Optional
}

func (*Field) Kind() ItemKind        { return KindField }
func (f *Field) Bytes() int          { return f.Size }
func (f *Field) DisplayName() string { return f.Name }
func (f *Field) setName(name string) { f.Name = name }

// Variant is one arm of an enum. Its subtree starts unbound and is bound at
// most once, after the deeper block following the variant line is parsed.
type Variant struct {
	Name string
	Size int

	tree  []Node
	bound bool
}

// NewVariant returns a variant with an unbound subtree.
func NewVariant(name string, size int) *Variant {
	return &Variant{Name: name, Size: size}
}

func (*Variant) Kind() ItemKind        { return KindVariant }
func (v *Variant) Bytes() int          { return v.Size }
func (v *Variant) DisplayName() string { return v.Name }
func (v *Variant) setName(name string) { v.Name = name }

// Bind attaches the variant's nested nodes. A second call fails with
// ErrVariantBound.
func (v *Variant) Bind(tree []Node) error {
	if v.bound {
		return ErrVariantBound
	}
	v.tree = tree
	v.bound = true
	return nil
}

// Bound reports whether Bind has been called.
func (v *Variant) Bound() bool { return v.bound }

// Tree returns the nested nodes, nil when none were bound.
func (v *Variant) Tree() []Node { return v.tree }

// Type is a top-level entry of the report.
type Type struct {
	Name  string
	Size  int
	Align int
	Tree  []Node

	// Line is the 1-based input line of the declaration.
	Line int
}

func (*Type) Kind() ItemKind        { return KindType }
func (t *Type) Bytes() int          { return t.Size }
func (t *Type) DisplayName() string { return t.Name }
func (t *Type) setName(name string) { t.Name = name }

// Clone returns a deep copy of t.
func (t *Type) Clone() *Type {
	if t == nil {
		return nil
	}
	out := *t
	out.Tree = cloneTree(t.Tree)
	return &out
}

func cloneTree(tree []Node) []Node {
	if tree == nil {
		return nil
	}
	out := make([]Node, len(tree))
	for i, n := range tree {
		out[i] = cloneNode(n)
	}
	return out
}

func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *Field:
		c := *v
		return &c
	case *Variant:
		c := &Variant{Name: v.Name, Size: v.Size, bound: v.bound}
		c.tree = cloneTree(v.tree)
		return c
	case *Type:
		return v.Clone()
	case Discriminant, Padding, EndPadding:
		return v
	}
	return n
}
