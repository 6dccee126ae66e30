package lower

import (
	"testing"

	"latticeflow/internal/atom"
	"latticeflow/internal/dag"
	"latticeflow/internal/hashcons"
	"latticeflow/internal/lowererr"
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
)

// cyclicNode is a minimal dag.Node stand-in for exercising checkAcyclic:
// the public dag constructors can only ever build acyclic structures, so a
// real cycle has to be wired up directly against the interface.
type cyclicNode struct {
	inputs []dag.Node
}

func (n *cyclicNode) Shape() shape.Shape { return shape.Shape{} }
func (n *cyclicNode) Rank() int          { return 0 }
func (n *cyclicNode) NType() ntype.NType { return ntype.Generic(ntype.Float64) }
func (n *cyclicNode) Size() int64        { return 1 }
func (n *cyclicNode) Depth() int         { return 0 }
func (n *cyclicNode) Inputs() []dag.Node { return n.inputs }
func (n *cyclicNode) Tag() string        { return "cyclic" }

func TestLowerRejectsCyclicDAG(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	a := &cyclicNode{}
	b := &cyclicNode{inputs: []dag.Node{a}}
	a.inputs = []dag.Node{b}

	_, err := Lower(pool, []dag.Node{a})
	if err == nil {
		t.Fatal("Lower accepted a cyclic DAG")
	}
	if !lowererr.IsKind(err, lowererr.DAGCycle) {
		t.Fatalf("got %v, want a DAGCycle", err)
	}
}

func TestLowerRejectsDanglingInput(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	n := &cyclicNode{inputs: []dag.Node{nil}}

	_, err := Lower(pool, []dag.Node{n})
	if err == nil {
		t.Fatal("Lower accepted a dangling input")
	}
	if !lowererr.IsKind(err, lowererr.DanglingInput) {
		t.Fatalf("got %v, want a DanglingInput", err)
	}
}

// containsHead reports whether t, or any sub-term embedded (recursively)
// among its elements, has a head whose name is head; plain atom elements
// such as operator names are not compared.
func containsHead(t *hashcons.UTerm, head string) bool {
	if t == nil {
		return false
	}
	if t.Head().String() == head {
		return true
	}
	for cur := t.Tail(); cur != nil; cur = cur.Tail() {
		if raw, ok := cur.Head().RawTerm(); ok {
			if sub, ok := raw.(*hashcons.UTerm); ok && containsHead(sub, head) {
				return true
			}
		}
	}
	return false
}

func TestLowerPureMapNoFusion(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 3}))
	b := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 3}))
	m := dag.NewMap(atom.Func("+"), f64(), a, b)

	res, err := Lower(pool, []dag.Node{m})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(res.Outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(res.Outputs))
	}
	target := res.Outputs[0]
	ks := res.Kernels[target]
	if len(ks) != 1 {
		t.Fatalf("got %d kernels, want 1", len(ks))
	}
	if len(ks[0].Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(ks[0].Sources))
	}
	if ks[0].Sources[0] != dag.Node(a) || ks[0].Sources[1] != dag.Node(b) {
		t.Fatalf("sources not in left-to-right discovery order")
	}
	if !containsHead(ks[0].Blueprint, "Call") {
		t.Fatalf("blueprint missing a Call term for the pointwise +")
	}
}

func TestLowerReductionCollapsesAxis(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}, shape.Range{Start: 0, Step: 1, End: 3}))
	r := dag.NewReduction(atom.Func("+"), a)

	res, err := Lower(pool, []dag.Node{r})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	target := res.Outputs[0]
	ks := res.Kernels[target]
	if len(ks) != 1 {
		t.Fatalf("got %d kernels, want 1", len(ks))
	}
	if len(ks[0].Ranges) != 2 {
		t.Fatalf("got %d ranges, want 2 (outer storage + reduction axis)", len(ks[0].Ranges))
	}
	if !target.Shape().Equal(shape.Of(shape.Range{Start: 0, Step: 1, End: 3})) {
		t.Fatalf("target shape = %v, want [0..3)", target.Shape())
	}
	if !containsHead(ks[0].Blueprint, "Reduce") {
		t.Fatalf("blueprint missing a Reduce term")
	}
}

func TestLowerFuseForcesPartition(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	b := arr(shape.Of(shape.Range{Start: 4, Step: 1, End: 8}))
	fuseShape := shape.Of(shape.Range{Start: 0, Step: 1, End: 8})
	fuse := dag.NewFuse(fuseShape, []dag.Node{a, b}, []shape.Shape{a.Shape(), b.Shape()})
	m := dag.NewMap(atom.Func("id"), f64(), fuse)

	res, err := Lower(pool, []dag.Node{m})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	target := res.Outputs[0]
	ks := res.Kernels[target]
	if len(ks) != 2 {
		t.Fatalf("got %d kernels, want 2", len(ks))
	}
	for _, k := range ks {
		if containsHead(k.Blueprint, "Fuse") {
			t.Fatalf("kernel blueprint must not contain a Fuse term")
		}
		if len(k.Sources) != 1 {
			t.Fatalf("got %d sources, want 1 (each kernel reads only its own fused input)", len(k.Sources))
		}
	}
}

func TestLowerRefcountTwoForcesMaterialization(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	y := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	z := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	x := dag.NewMap(atom.Func("*"), f64(), y, z)
	outer := dag.NewMap(atom.Func("+"), f64(), x, x)

	res, err := Lower(pool, []dag.Node{outer})
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(res.Kernels) != 2 {
		t.Fatalf("got %d targets, want 2 (X and the outer map)", len(res.Kernels))
	}
	outerTarget := res.Outputs[0]
	outerKernel := res.Kernels[outerTarget][0]
	for _, src := range outerKernel.Sources {
		if src == dag.Node(y) || src == dag.Node(z) {
			t.Fatalf("outer kernel's sources must reference X's materialized immediate, not Y/Z directly")
		}
	}
	if len(outerKernel.Sources) != 1 {
		t.Fatalf("got %d sources, want 1 (X referenced twice collapses to one source)", len(outerKernel.Sources))
	}
}

func TestLowerNormalizationStability(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})

	a1 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	b1 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	m1 := dag.NewMap(atom.Func("+"), f64(), a1, b1)

	a2 := arr(shape.Of(shape.Range{Start: 10, Step: 1, End: 14}))
	b2 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
	shift := shape.Transform{Rows: []shape.Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: -10}}, InDims: 1}
	reshaped := dag.NewReshape(a2, shift, shift.ApplyShape(a2.Shape()))
	m2 := dag.NewMap(atom.Func("+"), f64(), reshaped, b2)

	res1, err := Lower(pool, []dag.Node{m1})
	if err != nil {
		t.Fatalf("Lower(m1): %v", err)
	}
	res2, err := Lower(pool, []dag.Node{m2})
	if err != nil {
		t.Fatalf("Lower(m2): %v", err)
	}

	bp1 := res1.Kernels[res1.Outputs[0]][0].Blueprint
	bp2 := res2.Kernels[res2.Outputs[0]][0].Blueprint
	if bp1 != bp2 {
		t.Fatalf("blueprints for DAGs differing only by a translated, reshape-compensated range are not identity-equal")
	}
}
