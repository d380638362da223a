package micrograd

// Operands returns a copy of the direct inputs that produced v; empty for
// leaves. Together with Data, Grad, Label and Op this is the whole
// graph-walk surface an external visualizer needs.
func (v *Value) Operands() []*Value {
	if len(v.prev) == 0 {
		return nil
	}
	out := make([]*Value, len(v.prev))
	copy(out, v.prev)
	return out
}

// Walk visits every node reachable from root exactly once, consumers
// before their operands, in the deterministic order of the scheduler.
func Walk(root *Value, visit func(*Value)) {
	topo := topoOrder(root)
	for i := len(topo) - 1; i >= 0; i-- {
		visit(topo[i])
	}
}

// Edge is one consumer→operand dependency in a computation graph.
type Edge struct {
	Consumer *Value
	Operand  *Value
}

// Trace flattens the graph rooted at root into its node and edge sets,
// the shape a renderer consumes. The core deliberately stops here and
// carries no rendering dependency.
func Trace(root *Value) ([]*Value, []Edge) {
	nodes := topoOrder(root)
	edges := []Edge{}
	for _, node := range nodes {
		for _, operand := range node.prev {
			edges = append(edges, Edge{Consumer: node, Operand: operand})
		}
	}
	return nodes, edges
}
