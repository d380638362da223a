package micrograd

import (
	"math"
	"testing"
)

// buildExpr constructs tanh(a*b + c^3 + 0.1*e^a) from plain floats and
// returns the leaves plus the root. Rebuilding per call is how the
// finite-difference check re-evaluates the forward pass, since node
// values are immutable once created.
func buildExpr(t *testing.T, av, bv, cv float64) (a, b, c, root *Value) {
	t.Helper()
	a = NewLabeledValue(av, "a")
	b = NewLabeledValue(bv, "b")
	c = NewLabeledValue(cv, "c")

	cube, err := c.Pow(3)
	if err != nil {
		t.Fatalf("Pow failed: %v", err)
	}
	root = a.Mul(b).Add(cube).Add(a.Exp().MulScalar(0.1)).Tanh()
	return a, b, c, root
}

func TestFiniteDifferenceGradients(t *testing.T) {
	const (
		eps = 1e-6
		tol = 1e-4
	)

	av, bv, cv := 0.7, -0.4, 0.3
	a, b, c, root := buildExpr(t, av, bv, cv)
	root.Backward()

	eval := func(av, bv, cv float64) float64 {
		_, _, _, r := buildExpr(t, av, bv, cv)
		return r.Data()
	}

	checks := []struct {
		name        string
		grad        float64
		plus, minus float64
	}{
		{"a", a.Grad(), eval(av+eps, bv, cv), eval(av-eps, bv, cv)},
		{"b", b.Grad(), eval(av, bv+eps, cv), eval(av, bv-eps, cv)},
		{"c", c.Grad(), eval(av, bv, cv+eps), eval(av, bv, cv-eps)},
	}
	for _, chk := range checks {
		numeric := (chk.plus - chk.minus) / (2 * eps)
		if !almostEqual(chk.grad, numeric, tol) {
			t.Errorf("leaf %s: backward grad %g, finite difference %g", chk.name, chk.grad, numeric)
		}
	}
}

// Every consumer must appear strictly before all of its operands in the
// scheduler's backward order.
func TestTopologicalValidity(t *testing.T) {
	_, _, _, root := buildExpr(t, 0.5, 1.5, -2.0)

	position := map[*Value]int{}
	i := 0
	Walk(root, func(v *Value) {
		position[v] = i
		i++
	})

	nodes, edges := Trace(root)
	if len(position) != len(nodes) {
		t.Fatalf("Walk visited %d nodes, Trace found %d", len(position), len(nodes))
	}
	for _, e := range edges {
		if position[e.Consumer] >= position[e.Operand] {
			t.Errorf("consumer %s scheduled at %d, after operand %s at %d",
				e.Consumer.Label(), position[e.Consumer], e.Operand.Label(), position[e.Operand])
		}
	}
}

// The schedule must be deterministic for a fixed operand insertion order.
func TestScheduleDeterminism(t *testing.T) {
	_, _, _, r1 := buildExpr(t, 0.7, -0.4, 0.3)
	_, _, _, r2 := buildExpr(t, 0.7, -0.4, 0.3)

	o1 := topoOrder(r1)
	o2 := topoOrder(r2)
	if len(o1) != len(o2) {
		t.Fatalf("orders differ in length: %d vs %d", len(o1), len(o2))
	}
	for i := range o1 {
		if o1[i].Op() != o2[i].Op() || o1[i].Data() != o2[i].Data() {
			t.Errorf("position %d: (%s, %f) vs (%s, %f)",
				i, o1[i].Op(), o1[i].Data(), o2[i].Op(), o2[i].Data())
		}
	}
}

// Gradients accumulate across Backward calls by design; clearing between
// calls makes them idempotent, omitting the clear doubles them exactly.
func TestBackwardAccumulationSemantics(t *testing.T) {
	a, b, c, root := buildExpr(t, 0.7, -0.4, 0.3)
	leaves := []*Value{a, b, c}

	root.Backward()
	first := make([]float64, len(leaves))
	for i, l := range leaves {
		first[i] = l.Grad()
	}

	ZeroGradGraph(root)
	root.Backward()
	for i, l := range leaves {
		if l.Grad() != first[i] {
			t.Errorf("leaf %s: cleared re-run gave %g, want %g", l.Label(), l.Grad(), first[i])
		}
	}

	// No clear this time: an exact second copy stacks on the first.
	root.Backward()
	for i, l := range leaves {
		if l.Grad() != 2*first[i] {
			t.Errorf("leaf %s: uncleared re-run gave %g, want %g", l.Label(), l.Grad(), 2*first[i])
		}
	}
	if root.Grad() != 2.0 {
		t.Errorf("root: expected accumulated seed 2.0, got %g", root.Grad())
	}
}

func TestZeroGradGraph(t *testing.T) {
	_, _, _, root := buildExpr(t, 1.0, 2.0, 3.0)
	root.Backward()

	ZeroGradGraph(root)
	Walk(root, func(v *Value) {
		if v.Grad() != 0 {
			t.Errorf("node %s: expected zero grad, got %g", v.Label(), v.Grad())
		}
	})
}

// Backward on a bare leaf is legal and only seeds its own gradient.
func TestBackwardOnLeaf(t *testing.T) {
	v := NewValue(5.0)
	v.Backward()
	if v.Grad() != 1.0 {
		t.Errorf("expected leaf grad 1.0, got %f", v.Grad())
	}
	if v.Data() != 5.0 {
		t.Errorf("expected leaf data unchanged, got %f", v.Data())
	}
}

// The builder cannot create a cycle, so one appearing means memory
// corruption or a builder bug; the scheduler treats it as fatal.
func TestCycleDetectedPanics(t *testing.T) {
	v := NewValue(1.0)
	v.prev = []*Value{v}
	v.op = OpAdd

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on cyclic graph")
		}
		if err, ok := r.(error); !ok || err != ErrCycleDetected {
			t.Fatalf("expected ErrCycleDetected panic, got %v", r)
		}
	}()
	v.Backward()
}

func TestTraceEdges(t *testing.T) {
	a := NewLabeledValue(2.0, "a")
	b := NewLabeledValue(3.0, "b")
	d := a.Mul(b)

	nodes, edges := Trace(d)
	if len(nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(nodes))
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	for _, e := range edges {
		if e.Consumer != d {
			t.Errorf("expected consumer d, got %s", e.Consumer.Label())
		}
		if e.Operand != a && e.Operand != b {
			t.Errorf("unexpected operand %s", e.Operand.Label())
		}
	}

	// Operands must come back as a copy with the insertion order kept.
	ops := d.Operands()
	if len(ops) != 2 || ops[0] != a || ops[1] != b {
		t.Fatalf("unexpected operand order: %v", ops)
	}
	ops[0] = nil
	if d.Operands()[0] != a {
		t.Error("mutating the returned slice must not affect the node")
	}
}

func TestSharedSubgraphScheduledOnce(t *testing.T) {
	// x feeds both branches; it must appear exactly once in the order.
	x := NewValue(2.0)
	left := x.Tanh()
	right := x.Exp()
	root := left.Add(right)

	seen := 0
	Walk(root, func(v *Value) {
		if v == x {
			seen++
		}
	})
	if seen != 1 {
		t.Errorf("expected shared node visited once, got %d", seen)
	}

	root.Backward()
	// d/dx (tanh x + e^x) = (1 - tanh^2 x) + e^x
	want := (1 - math.Tanh(2.0)*math.Tanh(2.0)) + math.Exp(2.0)
	if !almostEqual(x.Grad(), want, 1e-12) {
		t.Errorf("expected x.grad = %f, got %f", want, x.Grad())
	}
}
