package micrograd

import "errors"

// Errors reported by the graph builder and the parametric modules. All of
// them are deterministic programming-logic errors, reported synchronously
// and never retried.
var (
	// ErrInvalidOperation is returned when a graph-builder call cannot
	// produce a well-defined node, e.g. division by a zero-valued node or
	// a non-finite power exponent. It fails at build time, not during the
	// backward pass.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrDimensionMismatch is returned when a forward call receives an
	// input whose length does not match the module's expected width.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrCycleDetected signals that the operand relation is no longer
	// acyclic. The builder only ever references already-built nodes, so a
	// cycle is a fatal invariant violation; the scheduler panics with
	// this error rather than returning it.
	ErrCycleDetected = errors.New("cycle detected in computation graph")
)
