package micrograd

// topoOrder collects every node reachable from root over operand edges in
// post-order (operand-before-consumer). Traversing the result back-to-
// front visits each consumer before its operands, which is the order the
// backward pass needs. The visited set is keyed by node identity, not
// value, and the order is deterministic for a fixed operand insertion
// order. A node re-entered while still on the DFS stack means the operand
// relation has a cycle, which the builder is supposed to make impossible;
// that panics with ErrCycleDetected.
func topoOrder(root *Value) []*Value {
	topo := []*Value{}
	visited := make(map[*Value]bool)
	onStack := make(map[*Value]bool)

	var build func(*Value)
	build = func(node *Value) {
		if onStack[node] {
			panic(ErrCycleDetected)
		}
		if visited[node] {
			return
		}
		visited[node] = true
		onStack[node] = true
		for _, operand := range node.prev {
			build(operand)
		}
		onStack[node] = false
		topo = append(topo, node)
	}
	build(root)
	return topo
}

// Backward computes d(v)/d(node) for every node reachable from v,
// accumulating into each node's gradient. It seeds v with an upstream
// gradient of 1.0 and replays the local gradient rules in consumer-
// before-operand order.
//
// The pass propagates through its own clean upstream map and only merges
// into the persistent accumulators at the end, so stale gradients from an
// earlier pass never feed the propagation. A second Backward call without
// re-zeroing therefore adds an exact second copy of the pass on top of
// the first, which is what summing gradients over a mini-batch wants.
// Callers needing single-step gradients must zero first, e.g. with
// ZeroGradGraph.
func (v *Value) Backward() {
	topo := topoOrder(v)

	upstream := make(map[*Value]float64, len(topo))
	upstream[v] = 1.0
	// Go in reverse order of the topological sort.
	for i := len(topo) - 1; i >= 0; i-- {
		node := topo[i]
		rule := backwardRules[node.op]
		if rule == nil {
			continue
		}
		contrib := rule(node, upstream[node])
		for j, operand := range node.prev {
			upstream[operand] += contrib[j]
		}
	}

	for _, node := range topo {
		node.grad += upstream[node]
	}
}

// ZeroGradGraph resets the gradient of every node reachable from root,
// making a following Backward call start from a clean slate.
func ZeroGradGraph(root *Value) {
	for _, node := range topoOrder(root) {
		node.grad = 0.0
	}
}
