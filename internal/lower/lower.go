package lower

import (
	"latticeflow/internal/dag"
	"latticeflow/internal/hashcons"
	"latticeflow/internal/lowererr"
	"latticeflow/internal/shape"
	"latticeflow/internal/term"
)

// Kernel is (target, ranges, sources, blueprint) tuple.
type Kernel struct {
	Target    dag.Node
	Ranges    []shape.Range
	Sources   []dag.Node
	Blueprint *hashcons.UTerm
}

// Result is one Lower invocation's full output: the ordered sequence of
// target immediates (one per root), and each non-immediate target's
// ordered kernel vector.
type Result struct {
	Outputs []dag.Node
	Kernels map[dag.Node][]Kernel
}

// Lower runs the full kernelization pipeline — critical-node selection,
// iteration-space partitioning, and per-subspace source/range collection
// and blueprint construction — over one ordered set of DAG roots. The
// returned error, when non-nil, is a *lowererr.LowerError or, for the
// fatal kinds, a pkg/errors stack wrapper around one (lowererr.IsKind sees
// through either): a DAGCycle/DanglingInput from the acyclicity check
// below, or a ShapeMismatch raised while partitioning a malformed Fuse.
// The returned *Result is nil whenever the error is non-nil.
func Lower(pool *hashcons.Pool, roots []dag.Node) (*Result, error) {
	if len(roots) == 0 {
		return &Result{Kernels: map[dag.Node][]Kernel{}}, nil
	}

	if err := checkAcyclic(roots); err != nil {
		return nil, err
	}

	critical := NewSelector().Select(roots)
	b := term.NewBuilder(pool)
	kernels := map[dag.Node][]Kernel{}

	for _, node := range criticalOrder(roots, critical) {
		target := critical[node]
		var ks []Kernel
		subs, err := Partition(node, critical)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			initRanges := toStorage(target).ApplyShape(sub).Ranges
			ranges, sources := Collect(node, critical, sub, initRanges)
			bp := BuildBlueprint(b, target, node, critical, sub, ranges, sources)
			ks = append(ks, Kernel{Target: target, Ranges: ranges, Sources: sources, Blueprint: bp})
		}
		kernels[target] = ks
	}

	outputs := make([]dag.Node, len(roots))
	for i, r := range roots {
		outputs[i] = critical[r]
	}
	return &Result{Outputs: outputs, Kernels: kernels}, nil
}

// color is a DFS visitation state for checkAcyclic's three-color sweep:
// white (unseen) -> gray (on the current recursion stack) -> black (done).
type color int

const (
	white color = iota
	gray
	black
)

// checkAcyclic walks roots' reachable subgraph and raises DAGCycle on
// revisiting a gray node (still on the recursion stack, hence a back
// edge) or DanglingInput on encountering a nil input slot. A dag.Node is
// otherwise trusted to be immutable and finite, so this is the one place
// the pipeline verifies that contract before committing to it.
func checkAcyclic(roots []dag.Node) error {
	colors := map[dag.Node]color{}
	var walk func(n dag.Node) error
	walk = func(n dag.Node) error {
		if n == nil {
			return lowererr.New(lowererr.DanglingInput, "encountered a nil input node")
		}
		switch colors[n] {
		case black:
			return nil
		case gray:
			return lowererr.New(lowererr.DAGCycle, "DAG contains a cycle", lowererr.NodeRef{Tag: n.Tag()})
		}
		colors[n] = gray
		for _, in := range n.Inputs() {
			if err := walk(in); err != nil {
				return err
			}
		}
		colors[n] = black
		return nil
	}
	for _, r := range roots {
		if err := walk(r); err != nil {
			return err
		}
	}
	return nil
}

// criticalOrder returns every critical, non-immediate node reachable from
// roots in left-to-right DFS discovery order, so kernel generation (and
// its source/range collection) is deterministic across runs.
func criticalOrder(roots []dag.Node, critical map[dag.Node]dag.Node) []dag.Node {
	var order []dag.Node
	seen := map[dag.Node]bool{}
	var walk func(n dag.Node)
	walk = func(n dag.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if _, imm := asImmediate(n); !imm {
			if _, ok := critical[n]; ok {
				order = append(order, n)
			}
		}
		for _, in := range n.Inputs() {
			walk(in)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return order
}
