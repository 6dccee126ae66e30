package lower

import (
	"fmt"

	"latticeflow/internal/atom"
	"latticeflow/internal/dag"
	"latticeflow/internal/hashcons"
	"latticeflow/internal/lowererr"
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
	"latticeflow/internal/term"
)

// specializedOperator picks the operator atom a Map/MultiValueMap call
// should carry: when every input shares a specialized, same-Base ntype,
// it projects op onto that Base (e.g. "+" -> "+.f64") so the blueprint
// records the specialization; otherwise it raises (and locally discards)
// a SpecializationAbort and falls back to the generic union ntype's
// recovery path, keeping op unspecialized.
func specializedOperator(op atom.Atom, inputs []dag.Node) atom.Atom {
	if len(inputs) == 0 {
		return op
	}
	nt := inputs[0].NType()
	allSpecialized := nt.Specialized()
	for _, in := range inputs[1:] {
		other := in.NType()
		if !allSpecialized || !other.Specialized() || other.Base != nt.Base {
			allSpecialized = false
		}
		nt = ntype.Union(nt, other)
	}
	if !allSpecialized {
		_ = lowererr.New(lowererr.SpecializationAbort,
			fmt.Sprintf("operator %s: could not specialize across mixed/generic input ntypes", op.String()))
		return op
	}
	return atom.Func(op.String() + "." + nt.Base.String())
}

// BuildBlueprint composes the UTerm for one (target, root, subspace)
// kernel, given the sources/ranges Collect already produced for the same
// (root, subspace) pair.
func BuildBlueprint(b *term.Builder, target dag.Node, root dag.Node, critical map[dag.Node]dag.Node, relevant shape.Shape, ranges []shape.Range, sources []dag.Node) *hashcons.UTerm {
	d := target.Rank()

	sourceIndex := map[dag.Node]int{}
	for i, s := range sources {
		sourceIndex[s] = i
	}

	bb := &blueprintBuilder{
		builder:        b,
		critical:       critical,
		sourceIndex:    sourceIndex,
		nextReduceAxis: int64(d),
	}

	body := bb.expr(root, relevant, loopToRootXform(relevant), true)
	store := b.Store(b.Reference(0, identityIndices(d)), body)

	nest := store
	for axis := d - 1; axis >= 0; axis-- {
		nest = b.For(int64(axis), nest)
	}

	rangeInfo := make([]term.RangeInfoEntry, len(ranges))
	for i, r := range ranges {
		floor, ceil := term.QuantizeSize(r.Len())
		rangeInfo[i] = term.RangeInfoEntry{FloorLog2Size: floor, CeilLog2Size: ceil, Step: r.Step}
	}

	storageInfo := make([]term.StorageInfoEntry, 0, len(sources)+1)
	storageInfo = append(storageInfo, term.StorageInfoEntry{TypeTag: target.NType().Base.String()})
	for _, s := range sources {
		storageInfo = append(storageInfo, term.StorageInfoEntry{TypeTag: s.NType().Base.String()})
	}

	return b.Blueprint(rangeInfo, storageInfo, nest)
}

type blueprintBuilder struct {
	builder        *term.Builder
	critical       map[dag.Node]dag.Node
	sourceIndex    map[dag.Node]int
	nextReduceAxis int64
}

func (bb *blueprintBuilder) expr(node dag.Node, relevant shape.Shape, xform shape.Transform, isRoot bool) *hashcons.UTerm {
	if !isRoot {
		if target, ok := bb.critical[node]; ok {
			return bb.reference(target, xform)
		}
	}

	switch n := node.(type) {
	case *dag.Immediate:
		return bb.reference(n, xform)
	case *dag.RangeImmediate:
		return bb.reference(n, xform)
	case *dag.Reshape:
		invT, ok := n.Transformation.Inverse()
		if !ok {
			return bb.reference(n, xform)
		}
		newXform := shape.Compose(invT, xform)
		return bb.expr(n.InputOf, invT.ApplyShape(relevant), newXform, false)
	case *dag.Fuse:
		for i, in := range n.InputsOf {
			inter, ok := relevant.Intersect(n.InputShapes[i])
			if ok && inter.Equal(relevant) {
				return bb.expr(in, relevant, xform, false)
			}
		}
		return bb.reference(n, xform) // defensive: no input covers relevant
	case *dag.Map:
		args := make([]*hashcons.UTerm, len(n.InputsOf))
		for i, in := range n.InputsOf {
			args[i] = bb.expr(in, relevant, xform, false)
		}
		return bb.builder.Call(specializedOperator(n.Op, n.InputsOf), args)
	case *dag.MultiValueMap:
		args := make([]*hashcons.UTerm, len(n.InputsOf))
		for i, in := range n.InputsOf {
			args[i] = bb.expr(in, relevant, xform, false)
		}
		return bb.builder.Call(specializedOperator(n.Op, n.InputsOf), args)
	case *dag.MultiValueRef:
		mv, ok := n.InputOf.(*dag.MultiValueMap)
		if !ok {
			return bb.reference(n, xform)
		}
		args := make([]*hashcons.UTerm, len(mv.InputsOf))
		for i, in := range mv.InputsOf {
			args[i] = bb.expr(in, relevant, xform, false)
		}
		// A projected operator identity (distinct per output index) keeps
		// the normal-form "operator identities" part of the cache key
		// sensitive to which multi-value output is read, matching
		// normal-form contract without adding a grammar
		// head the term vocabulary doesn't otherwise have.
		projected := atom.Func(fmt.Sprintf("%s#%d", mv.Op.String(), n.N))
		return bb.builder.Call(projected, args)
	case *dag.Reduction:
		axis := n.ReducedAxis()
		full := n.InputOf.Shape().Ranges[axis]
		relevant2 := shape.Shape{Ranges: append([]shape.Range{full}, relevant.Ranges...)}
		axisID := bb.nextReduceAxis
		bb.nextReduceAxis++
		// The input's reduced (leading) axis is swept by loop variable
		// axisID; its remaining axes are the reduction's output axes.
		rows := append([]shape.Row{{Axis: []int{int(axisID)}, Coeff: []int64{full.Step}, Offset: full.Start}}, xform.Rows...)
		inXform := shape.Transform{Rows: rows, InDims: int(axisID) + 1}
		body := bb.expr(n.InputOf, relevant2, inXform, false)
		return bb.builder.Reduce(axisID, n.Op, body)
	default:
		return bb.reference(node, xform)
	}
}

// reference builds Reference(storage-id, indices) for a leaf already
// present in sources, indexing storage coordinates from the accumulated
// xform (root iteration space -> this node's own DAG space) composed with
// the leaf's own translation into zero-based storage coordinates.
func (bb *blueprintBuilder) reference(leaf dag.Node, xform shape.Transform) *hashcons.UTerm {
	idx, ok := bb.sourceIndex[leaf]
	if !ok {
		idx = 0
	}
	composed := shape.Compose(toStorage(leaf), xform)
	return bb.builder.Reference(int64(idx)+1, indices(composed))
}

// toStorage returns the affine map from leaf's own DAG index space to its
// zero-based storage coordinates: a pure translation by each axis's start.
func toStorage(leaf dag.Node) shape.Transform {
	sh := leaf.Shape()
	rows := make([]shape.Row, sh.Rank())
	for i, r := range sh.Ranges {
		rows[i] = shape.Row{Axis: []int{i}, Coeff: []int64{1}, Offset: -r.Start}
	}
	return shape.Transform{Rows: rows, InDims: sh.Rank()}
}

// loopToRootXform maps a kernel's own loop variables (0-based, stepped per
// range-info) to root's absolute DAG coordinates: loop var i contributes
// relevant.Ranges[i].Start + i*relevant.Ranges[i].Step.
func loopToRootXform(relevant shape.Shape) shape.Transform {
	rows := make([]shape.Row, relevant.Rank())
	for i, r := range relevant.Ranges {
		rows[i] = shape.Row{Axis: []int{i}, Coeff: []int64{r.Step}, Offset: r.Start}
	}
	return shape.Transform{Rows: rows, InDims: relevant.Rank()}
}

func indices(t shape.Transform) []term.IndexTriple {
	out := make([]term.IndexTriple, len(t.Rows))
	for i, row := range t.Rows {
		var axis, mult int64
		if len(row.Axis) > 0 {
			axis = int64(row.Axis[0])
			mult = row.Coeff[0]
		}
		out[i] = term.IndexTriple{Axis: axis, Multiplier: mult, Offset: row.Offset}
	}
	return out
}

func identityIndices(d int) []term.IndexTriple {
	out := make([]term.IndexTriple, d)
	for i := 0; i < d; i++ {
		out[i] = term.IndexTriple{Axis: int64(i), Multiplier: 1, Offset: 0}
	}
	return out
}
