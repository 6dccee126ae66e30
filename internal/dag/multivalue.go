package dag

import (
	"latticeflow/internal/atom"
	"latticeflow/internal/ntype"
)

// MultiValueMap applies Op pointwise across Inputs producing NumValues
// distinct output arrays (e.g. divmod), each sharing the same shape.
// Individual results are accessed through a MultiValueRef.
type MultiValueMap struct {
	Base
	Op        atom.Atom
	NumValues int
	InputsOf  []Node
}

// NewMultiValueMap builds a multi-output pointwise map node.
func NewMultiValueMap(op atom.Atom, numValues int, nt ntype.NType, inputs ...Node) *MultiValueMap {
	return &MultiValueMap{
		Base:      newBase(inputs[0].Shape(), nt, inputs),
		Op:        op,
		NumValues: numValues,
		InputsOf:  inputs,
	}
}

func (m *MultiValueMap) Inputs() []Node { return m.InputsOf }

// MultiValueRef selects the N-th output of a MultiValueMap input.
type MultiValueRef struct {
	Base
	N        int
	InputOf  Node
}

// NewMultiValueRef builds a node selecting output n of input (which must
// be a *MultiValueMap).
func NewMultiValueRef(n int, input *MultiValueMap) *MultiValueRef {
	return &MultiValueRef{
		Base:    newBase(input.Shape(), input.NType(), []Node{input}),
		N:       n,
		InputOf: input,
	}
}

func (r *MultiValueRef) Inputs() []Node { return []Node{r.InputOf} }
