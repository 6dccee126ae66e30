// Package dag models the lazy-array DAG the lowering core consumes: an
// opaque node type exposing shape, rank, ntype, size, depth, inputs, and a
// discriminator. Concrete array construction, type inference, and the
// public array API are out of scope — this package only provides the node
// shapes the lowering passes in internal/lower match against.
//
// Polymorphic DAG nodes are best expressed as a tagged sum, realized here
// as one concrete struct per node kind embedding a shared
// Base, with lower's passes type-switching on the concrete pointer type —
// the Go analogue of match arms, grounded in an established
// internal/compiler visitor (VisitLiteralExpr/VisitBinaryExpr/...): there,
// each AST node kind gets its own Visit method; here, each DAG node kind
// gets its own case in a type switch, which is the same "per-constructor
// handler" shape without the overhead of a full visitor interface that
// every new pass would otherwise have to implement a method for.
package dag

import (
	"github.com/google/uuid"

	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
)

// Node is the common interface every DAG node kind implements.
type Node interface {
	Shape() shape.Shape
	Rank() int
	NType() ntype.NType
	Size() int64
	Depth() int
	Inputs() []Node
	// Tag is a short debug identity (not used for equality: node identity
	// is always Go pointer identity, "structure is immutable").
	Tag() string
}

// Base carries the fields common to every node kind. Embedded, never used
// standalone.
type Base struct {
	shape shape.Shape
	ntype ntype.NType
	depth int
	tag   uuid.UUID
}

func newBase(sh shape.Shape, nt ntype.NType, inputs []Node) Base {
	d := 0
	for _, in := range inputs {
		if in.Depth()+1 > d {
			d = in.Depth() + 1
		}
	}
	return Base{shape: sh, ntype: nt, depth: d, tag: uuid.New()}
}

func (b Base) Shape() shape.Shape   { return b.shape }
func (b Base) Rank() int            { return b.shape.Rank() }
func (b Base) NType() ntype.NType   { return b.ntype }
func (b Base) Size() int64          { return b.shape.Size() }
func (b Base) Depth() int           { return b.depth }
func (b Base) Tag() string          { return b.tag.String()[:8] }
