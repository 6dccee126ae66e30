package dag

import (
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
)

// RangeImmediate is a rank-1 leaf that describes an affine index range
// (e.g. "iota") without backing storage — it is still a leaf for the
// purposes of the source/range collector (any leaf hit, immediate or
// range, is treated as a collector boundary), but unlike
// Immediate it has no Data/Scalar payload to allocate.
type RangeImmediate struct {
	Base
	Range shape.Range
}

// NewRangeImmediate builds a leaf node describing r.
func NewRangeImmediate(r shape.Range, nt ntype.NType) *RangeImmediate {
	return &RangeImmediate{
		Base:  newBase(shape.Of(r), nt, nil),
		Range: r,
	}
}

func (r *RangeImmediate) Inputs() []Node { return nil }
