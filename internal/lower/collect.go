package lower

import (
	"latticeflow/internal/dag"
	"latticeflow/internal/shape"
)

// Collect traverses from root, for one (root, iteration subspace) pair,
// and returns the extended per-axis storage ranges and
// the ordered, duplicate-free list of referenced leaf immediates.
//
// initialRanges are the per-axis storage ranges of the target for this
// subspace (the caller — the top-level kernel builder — already knows
// these from the partitioner's output); Collect appends one range per
// reduction axis encountered, in traversal order.
func Collect(root dag.Node, critical map[dag.Node]dag.Node, relevant shape.Shape, initialRanges []shape.Range) ([]shape.Range, []dag.Node) {
	c := &collector{critical: critical, ranges: append([]shape.Range{}, initialRanges...)}
	c.walk(root, relevant, true)
	return c.ranges, c.sources
}

type collector struct {
	critical map[dag.Node]dag.Node
	ranges   []shape.Range
	sources  []dag.Node
	seen     map[dag.Node]bool
}

func (c *collector) addSource(leaf dag.Node) {
	if c.seen == nil {
		c.seen = map[dag.Node]bool{}
	}
	if c.seen[leaf] {
		return
	}
	c.seen[leaf] = true
	c.sources = append(c.sources, leaf)
}

func (c *collector) walk(node dag.Node, relevant shape.Shape, isRoot bool) {
	if !isRoot {
		if target, ok := c.critical[node]; ok {
			c.addSource(target)
			return
		}
	}

	switch n := node.(type) {
	case *dag.Immediate:
		c.addSource(n)
	case *dag.RangeImmediate:
		c.addSource(n)
	case *dag.Map:
		for _, in := range n.InputsOf {
			c.walk(in, relevant, false)
		}
	case *dag.MultiValueMap:
		for _, in := range n.InputsOf {
			c.walk(in, relevant, false)
		}
	case *dag.MultiValueRef:
		c.walk(n.InputOf, relevant, false)
	case *dag.Reduction:
		c.ranges = append(c.ranges, n.InputOf.Shape().Ranges[n.ReducedAxis()])
		c.walk(n.InputOf, relevant, false)
	case *dag.Fuse:
		for i, in := range n.InputsOf {
			inter, ok := relevant.Intersect(n.InputShapes[i])
			if ok && inter.Equal(relevant) {
				c.walk(in, relevant, false)
				return
			}
		}
	case *dag.Reshape:
		invT, ok := n.Transformation.Inverse()
		if !ok {
			return
		}
		c.walk(n.InputOf, invT.ApplyShape(relevant), false)
	}
}
