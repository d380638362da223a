// Package micrograd implements a minimal reverse-mode automatic
// differentiation engine over scalar values, plus a small multilayer
// perceptron built on top of it.
//
// A forward expression is built by calling operator methods on *Value
// handles; each call records the operand nodes and an operation tag, so
// the expression incrementally grows a DAG. Calling Backward on an output
// node linearizes the DAG and accumulates d(output)/d(node) into every
// ancestor's gradient.
package micrograd

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Op identifies which local-gradient rule produced a Value.
type Op uint8

const (
	OpLeaf Op = iota // inputs, weights, biases, constants; no operands
	OpAdd
	OpMul
	OpPow
	OpTanh
	OpExp
)

// String returns the operation symbol used in diagnostics and traces.
func (op Op) String() string {
	switch op {
	case OpLeaf:
		return "leaf"
	case OpAdd:
		return "+"
	case OpMul:
		return "*"
	case OpPow:
		return "**"
	case OpTanh:
		return "tanh"
	case OpExp:
		return "exp"
	default:
		return fmt.Sprintf("op(%d)", uint8(op))
	}
}

// Value represents a scalar value with support for automatic
// differentiation. A Value's data is fixed at construction; only its
// gradient mutates, and only by accumulation, because a node may feed
// several consumers.
type Value struct {
	data     float64
	grad     float64
	prev     []*Value
	op       Op
	exponent float64 // constant exponent, set only for OpPow
	label    string
}

// nodeCount numbers Values for auto-generated labels.
var nodeCount atomic.Uint64

// NewValue creates a new leaf Value scalar with an auto-generated label.
func NewValue(data float64) *Value {
	return &Value{
		data:  data,
		label: fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}
}

// NewLabeledValue creates a new leaf Value scalar with the given
// diagnostic label.
func NewLabeledValue(data float64, label string) *Value {
	v := NewValue(data)
	v.label = label
	return v
}

// Values promotes a slice of float64 inputs to leaf Values.
func Values(xs ...float64) []*Value {
	out := make([]*Value, len(xs))
	for i, x := range xs {
		out[i] = NewValue(x)
	}
	return out
}

// Data returns the underlying data of the Value.
func (v *Value) Data() float64 {
	return v.data
}

// SetData sets the underlying data of the Value. It is intended for an
// external optimizer updating leaf parameters between graph builds;
// mutating a non-leaf node desynchronizes it from its operands.
func (v *Value) SetData(d float64) {
	v.data = d
}

// Grad returns the gradient of the Value.
func (v *Value) Grad() float64 {
	return v.grad
}

// ZeroGrad resets the gradient to 0.
func (v *Value) ZeroGrad() {
	v.grad = 0.0
}

// Label returns the diagnostic label of the Value.
func (v *Value) Label() string {
	return v.label
}

// SetLabel sets the diagnostic label of the Value.
func (v *Value) SetLabel(label string) {
	v.label = label
}

// Op returns the operation that produced the Value; OpLeaf for leaves.
func (v *Value) Op() Op {
	return v.op
}

// backwardRules maps each operation to its local gradient rule: a pure
// function of the output node and the upstream gradient, returning the
// contribution for each operand (unused slots stay zero for one-operand
// ops). Keeping the rules in one table, rather than in per-node closures,
// makes the backward rule set auditable in one place and keeps nodes free
// of captured mutable state.
var backwardRules = [...]func(out *Value, upstream float64) [2]float64{
	OpLeaf: nil,
	OpAdd: func(out *Value, upstream float64) [2]float64 {
		return [2]float64{1.0 * upstream, 1.0 * upstream}
	},
	OpMul: func(out *Value, upstream float64) [2]float64 {
		return [2]float64{out.prev[1].data * upstream, out.prev[0].data * upstream}
	},
	OpPow: func(out *Value, upstream float64) [2]float64 {
		a := out.prev[0].data
		return [2]float64{out.exponent * math.Pow(a, out.exponent-1) * upstream}
	},
	OpTanh: func(out *Value, upstream float64) [2]float64 {
		return [2]float64{(1 - out.data*out.data) * upstream}
	},
	OpExp: func(out *Value, upstream float64) [2]float64 {
		return [2]float64{out.data * upstream}
	},
}

// Add performs addition: v + other
func (v *Value) Add(other *Value) *Value {
	return &Value{
		data:  v.data + other.data,
		prev:  []*Value{v, other},
		op:    OpAdd,
		label: fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}
}

// AddScalar performs addition with a float64: v + scalar.
// The scalar is promoted to a constant leaf node.
func (v *Value) AddScalar(scalar float64) *Value {
	return v.Add(NewValue(scalar))
}

// Mul performs multiplication: v * other
func (v *Value) Mul(other *Value) *Value {
	return &Value{
		data:  v.data * other.data,
		prev:  []*Value{v, other},
		op:    OpMul,
		label: fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}
}

// MulScalar performs multiplication with a float64: v * scalar.
// The scalar is promoted to a constant leaf node.
func (v *Value) MulScalar(scalar float64) *Value {
	return v.Mul(NewValue(scalar))
}

// Pow performs the power operation v ^ exponent, where the exponent is a
// constant, not a graph node. A non-finite exponent fails with
// ErrInvalidOperation at build time. Undefined intermediates follow IEEE
// semantics: math.Pow(0, 0) == 1, and e.g. Pow(-1, 0.5) yields NaN that
// propagates through later values and gradients.
func (v *Value) Pow(exponent float64) (*Value, error) {
	if math.IsNaN(exponent) || math.IsInf(exponent, 0) {
		return nil, fmt.Errorf("%w: pow exponent must be finite, got %f", ErrInvalidOperation, exponent)
	}
	return &Value{
		data:     math.Pow(v.data, exponent),
		prev:     []*Value{v},
		op:       OpPow,
		exponent: exponent,
		label:    fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}, nil
}

// Tanh performs the hyperbolic tangent activation.
func (v *Value) Tanh() *Value {
	return &Value{
		data:  math.Tanh(v.data),
		prev:  []*Value{v},
		op:    OpTanh,
		label: fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}
}

// Exp computes e^v.
func (v *Value) Exp() *Value {
	return &Value{
		data:  math.Exp(v.data),
		prev:  []*Value{v},
		op:    OpExp,
		label: fmt.Sprintf("val_%d", nodeCount.Add(1)-1),
	}
}

// Neg computes -v, expressed as v * (-1) so that negation shares the
// multiply gradient rule.
func (v *Value) Neg() *Value {
	return v.MulScalar(-1)
}

// Sub computes v - other, expressed as v + (-other).
func (v *Value) Sub(other *Value) *Value {
	return v.Add(other.Neg())
}

// SubScalar computes v - scalar.
func (v *Value) SubScalar(scalar float64) *Value {
	return v.AddScalar(-scalar)
}

// Div computes v / other, expressed as v * other^(-1). A divisor node
// whose value is zero fails with ErrInvalidOperation at build time rather
// than silently producing Inf in later gradients.
func (v *Value) Div(other *Value) (*Value, error) {
	if other.data == 0 {
		return nil, fmt.Errorf("%w: division by zero-valued node %q", ErrInvalidOperation, other.label)
	}
	inv, err := other.Pow(-1)
	if err != nil {
		return nil, err
	}
	return v.Mul(inv), nil
}

// String implements the Stringer interface for pretty printing.
func (v *Value) String() string {
	return fmt.Sprintf("Value(label=%s, data=%f, grad=%f, op=%s)", v.label, v.data, v.grad, v.op)
}
