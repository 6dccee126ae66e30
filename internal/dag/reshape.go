package dag

import "latticeflow/internal/shape"

// Reshape applies an affine Transformation to Input's index space. The
// invariant input shape ∘ transformation = output shape is a
// DAG-construction contract, not re-validated here.
type Reshape struct {
	Base
	InputOf        Node
	Transformation shape.Transform
}

// NewReshape builds a reshape node with an explicit output shape (the
// caller — DAG construction, out of scope — is responsible
// for ensuring it equals input.Shape() composed with xform).
func NewReshape(input Node, xform shape.Transform, outShape shape.Shape) *Reshape {
	return &Reshape{
		Base:           newBase(outShape, input.NType(), []Node{input}),
		InputOf:        input,
		Transformation: xform,
	}
}

func (r *Reshape) Inputs() []Node { return []Node{r.InputOf} }

// IsBroadcasting reports whether this reshape is a "broadcasting
// reshape" for purposes of critical-node rule 4: a transformation
// that reduces input rank or replicates indices, i.e. one whose linear
// map is not injective.
func (r *Reshape) IsBroadcasting() bool {
	return r.Transformation.ReducesRank() || !r.Transformation.Injective()
}
