package report

// Children returns the nested nodes of n, if any.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Type:
		return v.Tree
	case *Variant:
		return v.tree
	}
	return nil
}

// Walk visits n and then its children in order (pre-order). depth is 0 for n
// itself. Returning false from visit skips the children of that node.
func Walk(n Node, visit func(n Node, depth int) bool) {
	walk(n, 0, visit)
}

func walk(n Node, depth int, visit func(Node, int) bool) {
	if n == nil || !visit(n, depth) {
		return
	}
	for _, c := range Children(n) {
		walk(c, depth+1, visit)
	}
}
