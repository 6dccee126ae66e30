package dag

import (
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
)

// ImmediateVariant discriminates an Immediate's concrete payload, per
// "Immediate{value|range|array}" (the range variant is
// modeled separately as RangeImmediate, see rangeimmediate.go, since it
// has no backing storage and the overview enumerates it as its own node
// kind alongside Immediate).
type ImmediateVariant uint8

const (
	ImmediateScalar ImmediateVariant = iota
	ImmediateArray
)

// Immediate is a materialized array value with concrete storage.
type Immediate struct {
	Base
	Variant ImmediateVariant
	Scalar  float64
	Data    []float64
}

// NewScalarImmediate builds a rank-0 materialized immediate.
func NewScalarImmediate(value float64, nt ntype.NType) *Immediate {
	return &Immediate{
		Base:    newBase(shape.Shape{}, nt, nil),
		Variant: ImmediateScalar,
		Scalar:  value,
	}
}

// NewArrayImmediate builds a materialized immediate of the given shape
// backed by data. len(data) must equal sh.Size(); callers (DAG producers,
// out of scope ) are expected to uphold this.
func NewArrayImmediate(sh shape.Shape, data []float64, nt ntype.NType) *Immediate {
	return &Immediate{
		Base:    newBase(sh, nt, nil),
		Variant: ImmediateArray,
		Data:    data,
	}
}

func (i *Immediate) Inputs() []Node { return nil }

// MaterializedLike builds a fresh, storage-less Immediate with the same
// shape and ntype as an arbitrary node — the "target" immediate produced
// when a non-immediate node is marked critical: one fresh corresponding
// immediate (same shape, same ntype) per critical node.
func MaterializedLike(n Node) *Immediate {
	return &Immediate{
		Base: newBase(n.Shape(), n.NType(), nil),
		// Variant is left ImmediateArray: a materialization target always
		// has backing storage once a backend executes its kernels, even
		// though this core never allocates it (Non-goals).
		Variant: ImmediateArray,
	}
}
