package lower

import (
	"fmt"
	"sort"

	"latticeflow/internal/dag"
	"latticeflow/internal/lowererr"
	"latticeflow/internal/shape"
)

// Partition implements iteration_spaces for one critical
// subtree root, returning the set of disjoint index subspaces (expressed
// in root's own index space) that cover root.Shape().
//
// Coordinate-system convention (resolved here, see DESIGN.md): xform
// always maps root's coordinate space to the
// coordinate space of the node currently being visited, so that at a
// fusion boundary — where recursion bottoms out and a concrete subspace
// must be emitted in root's own coordinates — applying xform's inverse
// recovers "xform⁻¹(intersection)".
func Partition(root dag.Node, critical map[dag.Node]dag.Node) ([]shape.Shape, error) {
	spaces, matched, err := dispatch(root, root.Shape(), shape.Identity(root.Rank()), critical, true)
	if err != nil {
		return nil, err
	}
	if !matched {
		return []shape.Shape{root.Shape()}, nil
	}
	return spaces, nil
}

// dispatch is iteration_spaces. isRoot suppresses the leaf check
// on the very first call: the partition root is itself always critical
// (it is the thing being partitioned), but must still be descended into.
func dispatch(node dag.Node, relevant shape.Shape, xform shape.Transform, critical map[dag.Node]dag.Node, isRoot bool) ([]shape.Shape, bool, error) {
	if !isRoot {
		if _, ok := critical[node]; ok {
			return nil, false, nil // leaf: materialized elsewhere, caller decides
		}
	}

	switch n := node.(type) {
	case *dag.Fuse:
		return dispatchFuse(n, relevant, xform, critical)
	case *dag.Reshape:
		return dispatchReshape(n, relevant, xform, critical)
	case *dag.Reduction:
		return dispatchReduction(n, relevant, xform, critical)
	case *dag.Map:
		return dispatchMap(n.InputsOf, relevant, xform, critical)
	case *dag.MultiValueMap:
		return dispatchMap(n.InputsOf, relevant, xform, critical)
	case *dag.MultiValueRef:
		return dispatch(n.InputOf, relevant, xform, critical, false)
	default:
		return nil, false, nil
	}
}

// validateFuse checks the three properties a Fuse must hold to raise
// ShapeMismatch: every input shares the fuse's rank, the inputs
// are pairwise disjoint, and their union exactly covers the fuse's own
// shape. Violating any of these means the fuse node was built from
// inconsistent pieces upstream of internal/lower.
func validateFuse(n *dag.Fuse) error {
	out := n.Shape()
	for i, in := range n.InputShapes {
		if in.Rank() != out.Rank() {
			return lowererr.New(lowererr.ShapeMismatch,
				fmt.Sprintf("fuse input %d rank %d disagrees with fuse rank %d", i, in.Rank(), out.Rank()),
				lowererr.NodeRef{Tag: n.Tag(), Shape: fmt.Sprintf("%v", out)},
				lowererr.NodeRef{Tag: fmt.Sprintf("input[%d]", i), Shape: fmt.Sprintf("%v", in)})
		}
	}
	if !shape.PairwiseDisjoint(n.InputShapes) {
		return lowererr.New(lowererr.ShapeMismatch,
			"fuse inputs are not pairwise disjoint",
			lowererr.NodeRef{Tag: n.Tag(), Shape: fmt.Sprintf("%v", out)})
	}
	if !shape.Covers(out, n.InputShapes) {
		return lowererr.New(lowererr.ShapeMismatch,
			"fuse inputs do not cover the fuse's own shape",
			lowererr.NodeRef{Tag: n.Tag(), Shape: fmt.Sprintf("%v", out)})
	}
	return nil
}

func dispatchFuse(n *dag.Fuse, relevant shape.Shape, xform shape.Transform, critical map[dag.Node]dag.Node) ([]shape.Shape, bool, error) {
	if err := validateFuse(n); err != nil {
		return nil, false, err
	}
	var result []shape.Shape
	for i, input := range n.InputsOf {
		inter, ok := relevant.Intersect(n.InputShapes[i])
		if !ok {
			continue
		}
		sub, matched, err := dispatch(input, inter, xform, critical, false)
		if err != nil {
			return nil, false, err
		}
		if matched {
			result = append(result, sub...)
			continue
		}
		inv, ok := xform.Inverse()
		if !ok {
			inv = xform
		}
		result = append(result, inv.ApplyShape(inter))
	}
	if len(result) == 0 {
		return nil, false, nil
	}
	return result, true, nil
}

func dispatchReshape(n *dag.Reshape, relevant shape.Shape, xform shape.Transform, critical map[dag.Node]dag.Node) ([]shape.Shape, bool, error) {
	invT, ok := n.Transformation.Inverse()
	if !ok {
		// A non-invertible (broadcasting) reshape has no inverse to carry
		// relevant into its input's space; the selector forced that input
		// critical (rule 4), and the reshape is treated as a fusion
		// boundary rather than failing.
		return nil, false, nil
	}
	relevant2 := invT.ApplyShape(relevant)
	newXform := shape.Compose(invT, xform)
	return dispatch(n.InputOf, relevant2, newXform, critical, false)
}

func dispatchReduction(n *dag.Reduction, relevant shape.Shape, xform shape.Transform, critical map[dag.Node]dag.Node) ([]shape.Shape, bool, error) {
	fullAxis := n.InputOf.Shape().Ranges[0]
	relevant2 := shape.Shape{Ranges: append([]shape.Range{fullAxis}, relevant.Ranges...)}
	return dispatch(n.InputOf, relevant2, xform, critical, false)
}

func dispatchMap(inputs []dag.Node, relevant shape.Shape, xform shape.Transform, critical map[dag.Node]dag.Node) ([]shape.Shape, bool, error) {
	var collected [][]shape.Shape
	for _, in := range inputs {
		sub, matched, err := dispatch(in, relevant, xform, critical, false)
		if err != nil {
			return nil, false, err
		}
		if matched {
			collected = append(collected, sub)
		}
	}
	// Open Question: zero fusing inputs concatenates to the
	// empty list, which the top-level caller (Partition) treats as "no
	// fusion anywhere" and replaces with the whole-shape singleton.
	if len(collected) == 0 {
		return nil, false, nil
	}
	var all []shape.Shape
	for _, c := range collected {
		all = append(all, c...)
	}
	if len(collected) > 1 {
		return subdivide(all), true, nil
	}
	return all, true, nil
}

// subdivide returns the coarsest partition of the union of spaces that
// respects every original boundary (Subdivision), by
// splitting on every axis at every unique break point and keeping only
// the resulting cells that are actually covered by one of the inputs.
func subdivide(spaces []shape.Shape) []shape.Shape {
	if len(spaces) == 0 {
		return nil
	}
	rank := spaces[0].Rank()
	breakpoints := make([][]int64, rank)
	for axis := 0; axis < rank; axis++ {
		set := map[int64]bool{}
		for _, s := range spaces {
			r := s.Ranges[axis]
			set[r.Start] = true
			set[r.End] = true
		}
		pts := make([]int64, 0, len(set))
		for p := range set {
			pts = append(pts, p)
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i] < pts[j] })
		breakpoints[axis] = pts
	}

	var cells []shape.Shape
	var rec func(axis int, cur []shape.Range)
	rec = func(axis int, cur []shape.Range) {
		if axis == rank {
			cell := shape.Shape{Ranges: append([]shape.Range{}, cur...)}
			for _, s := range spaces {
				if coveredBy(s, cell) {
					cells = append(cells, cell)
					return
				}
			}
			return
		}
		pts := breakpoints[axis]
		step := spaces[0].Ranges[axis].Step
		for i := 0; i+1 < len(pts); i++ {
			r := shape.Range{Start: pts[i], Step: step, End: pts[i+1]}
			rec(axis+1, append(cur, r))
		}
	}
	rec(0, nil)
	return cells
}

func coveredBy(container, cell shape.Shape) bool {
	inter, ok := container.Intersect(cell)
	if !ok {
		return false
	}
	return inter.Equal(cell)
}
