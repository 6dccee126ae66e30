package dag

import (
	"latticeflow/internal/atom"
	"latticeflow/internal/ntype"
)

// Map applies Op pointwise across Inputs, all sharing Map's output shape.
type Map struct {
	Base
	Op       atom.Atom
	InputsOf []Node
}

// NewMap builds a pointwise map node. All inputs must already share
// outputShape (broadcasting/re-indexing is the job of an intervening
// Reshape, per node model — out of scope validation here, as
// DAG construction itself is an external collaborator ).
func NewMap(op atom.Atom, nt ntype.NType, inputs ...Node) *Map {
	var outShape = inputs[0].Shape()
	return &Map{
		Base:     newBase(outShape, nt, inputs),
		Op:       op,
		InputsOf: inputs,
	}
}

func (m *Map) Inputs() []Node { return m.InputsOf }
