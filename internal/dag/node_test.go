package dag

import (
	"testing"

	"latticeflow/internal/atom"
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
)

func TestDepthIsLongestPathToLeaf(t *testing.T) {
	a := NewArrayImmediate(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}), make([]float64, 4), ntype.Generic(ntype.Float64))
	b := NewArrayImmediate(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}), make([]float64, 4), ntype.Generic(ntype.Float64))
	if a.Depth() != 0 || b.Depth() != 0 {
		t.Fatalf("leaf depth should be 0")
	}

	m1 := NewMap(atom.Func("+"), ntype.Generic(ntype.Float64), a, b)
	if m1.Depth() != 1 {
		t.Fatalf("Map(leaf, leaf) depth = %d, want 1", m1.Depth())
	}

	m2 := NewMap(atom.Func("*"), ntype.Generic(ntype.Float64), m1, a)
	if m2.Depth() != 2 {
		t.Fatalf("Map(Map(leaf,leaf), leaf) depth = %d, want 2", m2.Depth())
	}
}

func TestReductionDropsLeadingAxis(t *testing.T) {
	in := NewArrayImmediate(
		shape.Of(
			shape.Range{Start: 0, Step: 1, End: 4},
			shape.Range{Start: 0, Step: 1, End: 3},
		),
		make([]float64, 12),
		ntype.Generic(ntype.Float64),
	)
	r := NewReduction(atom.Func("+"), in)
	if r.Rank() != 1 {
		t.Fatalf("reduction rank = %d, want 1", r.Rank())
	}
	if r.Shape().Ranges[0] != (shape.Range{Start: 0, Step: 1, End: 3}) {
		t.Fatalf("reduction output range = %v, want [0,3)", r.Shape().Ranges[0])
	}
}

func TestReshapeBroadcastDetection(t *testing.T) {
	in := NewArrayImmediate(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}), make([]float64, 4), ntype.Generic(ntype.Float64))

	replicate := shape.Transform{InDims: 1, Rows: []shape.Row{
		{Axis: []int{0}, Coeff: []int64{1}, Offset: 0},
		{Axis: []int{0}, Coeff: []int64{1}, Offset: 0},
	}}
	rs := NewReshape(in, replicate, shape.Of(
		shape.Range{Start: 0, Step: 1, End: 4},
		shape.Range{Start: 0, Step: 1, End: 4},
	))
	if !rs.IsBroadcasting() {
		t.Fatalf("expected replicating reshape to be flagged broadcasting")
	}

	id := shape.Identity(1)
	plain := NewReshape(in, id, in.Shape())
	if plain.IsBroadcasting() {
		t.Fatalf("identity reshape should not be flagged broadcasting")
	}
}
