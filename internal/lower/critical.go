// Package lower implements the kernelization pass: critical-node
// selection, fusion-free iteration-space partitioning, per-kernel
// source/range collection, and blueprint construction.
//
// Grounded in an established internal/compiler (a visitor-style,
// single-pass AST-to-bytecode lowering) for the overall "walk a tree,
// build an interned artifact" shape, generalized from a single linear
// pass emitting bytecode to the DAG's required two-phase traversal
// (refcount pass, then a pass that both selects targets and builds
// kernels) emitting hash-consed terms instead.
package lower

import "latticeflow/internal/dag"

// asImmediate reports whether n is already a materialized leaf — either a
// dag.Immediate or a dag.RangeImmediate — rule 1 and the leaf-function
// notion used throughout the rest of this file.
func asImmediate(n dag.Node) (dag.Node, bool) {
	switch n.(type) {
	case *dag.Immediate, *dag.RangeImmediate:
		return n, true
	default:
		return nil, false
	}
}

// Selector implements two-phase DFS.
type Selector struct {
	refcount       map[dag.Node]int64
	target         map[dag.Node]dag.Node
	visited        map[dag.Node]bool
	reductionCache map[dag.Node]bool
}

// NewSelector creates a selector ready to process one lowering invocation.
func NewSelector() *Selector {
	return &Selector{
		refcount:       map[dag.Node]int64{},
		target:         map[dag.Node]dag.Node{},
		visited:        map[dag.Node]bool{},
		reductionCache: map[dag.Node]bool{},
	}
}

// Select runs both phases over roots and returns the critical-node table:
// node -> its target immediate (itself, for nodes already immediate).
func (s *Selector) Select(roots []dag.Node) map[dag.Node]dag.Node {
	s.computeRefcounts(roots)
	for _, r := range roots {
		s.visit(r, true)
	}
	return s.target
}

// computeRefcounts is Phase A: count edges within the roots-reachable
// subgraph. Counted per edge occurrence (a node appearing twice in the
// same parent's Inputs() contributes two), not per distinct parent —
// this is the reading that forces X critical in Map(+, X, X) (a single
// parent referencing X through two input slots) under rule 3's
// "refcount >= 2" test; see DESIGN.md.
func (s *Selector) computeRefcounts(roots []dag.Node) {
	seen := map[dag.Node]bool{}
	var walk func(n dag.Node)
	walk = func(n dag.Node) {
		for _, in := range n.Inputs() {
			s.refcount[in]++
			if !seen[in] {
				seen[in] = true
				walk(in)
			}
		}
	}
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
		}
		walk(r)
	}
}

// Refcount exposes the Phase A result for a node (0 if unreached).
func (s *Selector) Refcount(n dag.Node) int64 { return s.refcount[n] }

func (s *Selector) markCritical(n dag.Node) {
	if _, ok := s.target[n]; ok {
		return
	}
	if imm, ok := asImmediate(n); ok {
		s.target[n] = imm
		return
	}
	s.target[n] = dag.MaterializedLike(n)
}

// visit is Phase B: it marks n critical when warranted, and recurses into
// n's inputs unless n is memoized (refcount >= 2, already visited).
func (s *Selector) visit(n dag.Node, isRoot bool) {
	if _, ok := asImmediate(n); ok {
		s.markCritical(n) // rule 1
		return
	}

	critical := isRoot || s.refcount[n] >= 2 || s.rule5(n) // rules 2, 3, 5
	if critical {
		s.markCritical(n)
	}

	if s.refcount[n] >= 2 {
		if s.visited[n] {
			return
		}
		s.visited[n] = true
	}

	if reshape, ok := n.(*dag.Reshape); ok && reshape.IsBroadcasting() {
		s.markCritical(reshape.InputOf) // rule 4
	}
	if s.rule5(n) {
		for _, in := range n.Inputs() {
			if s.hasReductionBelow(in) {
				s.markCritical(in)
			}
		}
	}

	for _, in := range n.Inputs() {
		s.visit(in, false)
	}
}

// rule5 implements rule 5: n has >= 2 inputs each of which
// transitively contains a reduction below the next critical boundary.
// "Next critical boundary" is approximated here by refcount >= 2 (the
// rule-3 criterion), which is decidable from Phase A's already-complete
// refcounts without needing the (still in-progress) critical set itself —
// see DESIGN.md for why this is a safe, conservative reading.
func (s *Selector) rule5(n dag.Node) bool {
	count := 0
	for _, in := range n.Inputs() {
		if s.hasReductionBelow(in) {
			count++
		}
	}
	return count >= 2
}

func (s *Selector) hasReductionBelow(n dag.Node) bool {
	if v, ok := s.reductionCache[n]; ok {
		return v
	}
	var result bool
	switch {
	case isImmediateKind(n):
		result = false
	case isReduction(n):
		result = true
	case s.refcount[n] >= 2:
		result = false // boundary: will be materialized, stop looking further
	default:
		for _, in := range n.Inputs() {
			if s.hasReductionBelow(in) {
				result = true
				break
			}
		}
	}
	s.reductionCache[n] = result
	return result
}

func isImmediateKind(n dag.Node) bool {
	_, ok := asImmediate(n)
	return ok
}

func isReduction(n dag.Node) bool {
	_, ok := n.(*dag.Reduction)
	return ok
}
