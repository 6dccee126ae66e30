package shape

import "testing"

func TestRangeLen(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		want int64
	}{
		{name: "simple", r: Range{Start: 0, Step: 1, End: 4}, want: 4},
		{name: "strided", r: Range{Start: 0, Step: 2, End: 8}, want: 4},
		{name: "singleton", r: Range{Start: 3, Step: 1, End: 4}, want: 1},
		{name: "empty", r: Range{Start: 4, Step: 1, End: 4}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Len(); got != tt.want {
				t.Fatalf("Len() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShapeIntersectDisjoint(t *testing.T) {
	a := Of(Range{Start: 0, Step: 1, End: 4})
	b := Of(Range{Start: 4, Step: 1, End: 8})

	if _, ok := a.Intersect(b); ok {
		t.Fatalf("expected disjoint shapes to fail to intersect")
	}
	if !PairwiseDisjoint([]Shape{a, b}) {
		t.Fatalf("expected [0,4) and [4,8) to be pairwise disjoint")
	}
	if !Covers(Of(Range{Start: 0, Step: 1, End: 8}), []Shape{a, b}) {
		t.Fatalf("expected [0,4) + [4,8) to cover [0,8)")
	}
}

func TestTransformIdentity(t *testing.T) {
	id := Identity(2)
	if !id.IsIdentity() {
		t.Fatalf("Identity(2) did not report IsIdentity")
	}
	if !id.Injective() {
		t.Fatalf("identity must be injective")
	}
	out := id.Apply([]int64{3, 5})
	if out[0] != 3 || out[1] != 5 {
		t.Fatalf("identity Apply = %v, want [3 5]", out)
	}
}

func TestTransformComposeOffset(t *testing.T) {
	// outer shifts axis 0 by +10, inner shifts axis 0 by +4: composed should
	// shift by +14, modeling a range shift plus compensating reshape that
	// yields identical storage coordinates.
	outer := Transform{InDims: 1, Rows: []Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: 10}}}
	inner := Transform{InDims: 1, Rows: []Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: 4}}}
	composed := Compose(outer, inner)
	out := composed.Apply([]int64{0})
	if out[0] != 14 {
		t.Fatalf("composed offset = %d, want 14", out[0])
	}
}

func TestTransformInverse(t *testing.T) {
	tr := Transform{InDims: 1, Rows: []Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: 10}}}
	inv, ok := tr.Inverse()
	if !ok {
		t.Fatalf("expected invertible transform")
	}
	fwd := tr.Apply([]int64{0})
	back := inv.Apply(fwd)
	if back[0] != 0 {
		t.Fatalf("round trip through inverse = %d, want 0", back[0])
	}
}

func TestTransformBroadcastDetection(t *testing.T) {
	// A transform reading the same input axis from two output rows
	// replicates indices: not injective, per the conservative definition
	// resolving open question.
	broadcast := Transform{InDims: 1, Rows: []Row{
		{Axis: []int{0}, Coeff: []int64{1}, Offset: 0},
		{Axis: []int{0}, Coeff: []int64{1}, Offset: 0},
	}}
	if broadcast.Injective() {
		t.Fatalf("expected replicating transform to be non-injective")
	}

	// Reduction over axis 1 of a rank-2 input: the output transform only
	// carries axis 0 forward, so InDims (2) > OutRank (1).
	reducing := Transform{InDims: 2, Rows: []Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: 0}}}
	if !reducing.ReducesRank() {
		t.Fatalf("expected rank-2-input to rank-1-output transform to reduce rank")
	}
}
