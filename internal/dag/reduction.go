package dag

import (
	"latticeflow/internal/atom"
	"latticeflow/internal/shape"
)

// Reduction folds Op over Input's leading axis (axis 0). Which axis a
// Reduction{op, input} node collapses is resolved here (see DESIGN.md) as
// "always the leading axis": input shape [0..4 x 0..3] reduces to output
// shape [0..3], i.e. axis 0 (size 4) is dropped and axis 1 survives
// renumbered to output axis 0.
type Reduction struct {
	Base
	Op      atom.Atom
	InputOf Node
}

// NewReduction builds a reduction node. The output shape is input's shape
// with axis 0 dropped (input must have rank >= 1).
func NewReduction(op atom.Atom, input Node) *Reduction {
	in := input.Shape()
	out := shape.Shape{Ranges: append([]shape.Range{}, in.Ranges[1:]...)}
	return &Reduction{
		Base:    newBase(out, input.NType(), []Node{input}),
		Op:      op,
		InputOf: input,
	}
}

func (r *Reduction) Inputs() []Node { return []Node{r.InputOf} }

// ReducedAxis returns the axis index, in Input's shape, that this
// reduction collapses (always 0, see the type doc comment).
func (r *Reduction) ReducedAxis() int { return 0 }
