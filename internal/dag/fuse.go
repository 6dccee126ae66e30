package dag

import "latticeflow/internal/shape"

// Fuse concatenates Inputs, each contributing a disjoint subspace of the
// output shape. The partitioner (internal/lower) is the pass that
// discovers, for a given iteration subspace, which single input a Fuse
// resolves to.
type Fuse struct {
	Base
	InputsOf []Node
	// InputShapes holds each input's contribution to the fused output's
	// index space, same order as InputsOf. A rank-1 Fuse of two disjoint
	// contiguous ranges (boundary example [0..4) + [4..8)) is
	// the common case, but Fuse is not restricted to contiguous pieces.
	InputShapes []shape.Shape
}

// NewFuse builds a fuse node. outShape must equal the union of
// inputShapes (ShapeMismatch error covers violations of this,
// surfaced by internal/lower rather than validated at construction, since
// DAG construction is out of scope ).
func NewFuse(outShape shape.Shape, inputs []Node, inputShapes []shape.Shape) *Fuse {
	return &Fuse{
		Base:        newBase(outShape, inputs[0].NType(), inputs),
		InputsOf:    inputs,
		InputShapes: inputShapes,
	}
}

func (f *Fuse) Inputs() []Node { return f.InputsOf }
