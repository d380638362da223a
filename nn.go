package micrograd

import (
	"fmt"
	"math/rand"
)

// Module is the interface for all neural network modules.
type Module interface {
	Parameters() []*Value
	ZeroGrad()
}

// Neuron represents a single neuron with weights and a bias. Its
// parameters are leaf Values created once at construction; each Call
// builds fresh intermediate nodes without mutating the parameter leaves.
type Neuron struct {
	w []*Value
	b *Value
}

// NewNeuron creates a new Neuron with nin inputs. Weights and bias are
// drawn uniformly from (-1, 1) using the given random source; passing the
// source explicitly rather than reading ambient global state keeps
// initialization reproducible. The label prefixes the parameter labels
// for diagnostics.
func NewNeuron(rng *rand.Rand, nin int, label string) *Neuron {
	w := make([]*Value, nin)
	for i := range w {
		w[i] = NewLabeledValue(rng.Float64()*2-1, fmt.Sprintf("%s__Weight%d", label, i))
	}
	b := NewLabeledValue(rng.Float64()*2-1, fmt.Sprintf("%s__Bias", label))
	return &Neuron{w: w, b: b}
}

// Call computes the output of the neuron for input x:
// tanh(sum_i w_i*x_i + b). The input length must equal the weight count.
func (n *Neuron) Call(x []*Value) (*Value, error) {
	if len(x) != len(n.w) {
		return nil, fmt.Errorf("%w: neuron expects %d inputs, got %d", ErrDimensionMismatch, len(n.w), len(x))
	}

	act := n.b
	for i, wi := range n.w {
		act = act.Add(wi.Mul(x[i]))
	}
	return act.Tanh(), nil
}

// Parameters returns the parameters (weights + bias) of the neuron.
func (n *Neuron) Parameters() []*Value {
	params := make([]*Value, len(n.w)+1)
	copy(params, n.w)
	params[len(n.w)] = n.b
	return params
}

// ZeroGrad resets gradients of all parameters in the neuron.
func (n *Neuron) ZeroGrad() {
	for _, p := range n.Parameters() {
		p.ZeroGrad()
	}
}

// Layer represents a layer of neurons sharing one input width.
type Layer struct {
	neurons []*Neuron
}

// NewLayer creates a new Layer with nin inputs and nout neurons.
func NewLayer(rng *rand.Rand, nin, nout int, label string) *Layer {
	neurons := make([]*Neuron, nout)
	for i := range neurons {
		neurons[i] = NewNeuron(rng, nin, fmt.Sprintf("%s__Neuron%d", label, i))
	}
	return &Layer{neurons: neurons}
}

// Call computes the output of each neuron for input x, in neuron order.
func (l *Layer) Call(x []*Value) ([]*Value, error) {
	outs := make([]*Value, len(l.neurons))
	for i, n := range l.neurons {
		out, err := n.Call(x)
		if err != nil {
			return nil, err
		}
		outs[i] = out
	}
	return outs, nil
}

// Parameters returns the parameters of all neurons in the layer.
func (l *Layer) Parameters() []*Value {
	var params []*Value
	for _, n := range l.neurons {
		params = append(params, n.Parameters()...)
	}
	return params
}

// ZeroGrad resets gradients of all parameters in the layer.
func (l *Layer) ZeroGrad() {
	for _, p := range l.Parameters() {
		p.ZeroGrad()
	}
}

// MLP represents a Multi-Layer Perceptron.
type MLP struct {
	layers []*Layer
}

// NewMLP creates a new MLP. nin is the number of inputs and nouts lists
// the number of neurons in each layer, so each layer's neuron count is
// the next layer's input width.
func NewMLP(rng *rand.Rand, nin int, nouts []int) *MLP {
	layers := make([]*Layer, len(nouts))
	sz := append([]int{nin}, nouts...)
	for i := 0; i < len(nouts); i++ {
		layers[i] = NewLayer(rng, sz[i], sz[i+1], fmt.Sprintf("Layer%d", i))
	}
	return &MLP{layers: layers}
}

// Call feeds x through the layers in order and returns the final layer's
// output nodes.
func (m *MLP) Call(x []*Value) ([]*Value, error) {
	var err error
	for _, l := range m.layers {
		x, err = l.Call(x)
		if err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Parameters returns the parameters of all layers in the MLP, in a
// stable order: weights then bias per neuron, neurons then layers in
// declaration order.
func (m *MLP) Parameters() []*Value {
	var params []*Value
	for _, l := range m.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// ZeroGrad resets gradients of all parameters in the MLP. Note this only
// clears the parameter leaves; intermediate nodes of a previous forward
// pass are cleared with ZeroGradGraph on that pass's output.
func (m *MLP) ZeroGrad() {
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
}
