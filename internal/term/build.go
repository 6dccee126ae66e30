// Package term implements blueprint grammar atop
// internal/hashcons: each constructor (Blueprint, For, Store, Reference,
// Call, Reduce, Accumulate) builds one interned UTerm list whose first
// element is a distinguishing head Symbol and whose remaining elements are
// the constructor's fields in canonical order, sub-terms embedded via
// atom.Term so the whole blueprint is one hash-consed structure with
// identity equality end to end.
//
// Grounded in an established internal/bytecode (opcodes.go's flat iota
// enum of instruction heads, chunk.go's flat Code/Constants arrays): the
// same "small closed vocabulary of tagged records" shape, generalized from
// a linear bytecode stream to a hash-consed tree so that two structurally
// identical blueprints — not just two identical flat encodings — collapse
// to the same cache key.
package term

import (
	"latticeflow/internal/atom"
	"latticeflow/internal/hashcons"
)

// Builder binds a grammar to a single hash-cons pool. All terms produced
// by one Builder share that pool's interning; comparing terms from two
// different Builders by identity is meaningless (cache-key
// contract is scoped to one pool).
type Builder struct {
	pool *hashcons.Pool
}

// NewBuilder creates a grammar builder over pool.
func NewBuilder(pool *hashcons.Pool) *Builder {
	return &Builder{pool: pool}
}

// Pool returns the underlying hash-cons pool.
func (b *Builder) Pool() *hashcons.Pool { return b.pool }

// list interns a flat sequence of atoms as one UList, right to left, and
// returns the resulting head term (elems[0] is the returned term's Head).
func (b *Builder) list(elems ...atom.Atom) *hashcons.UTerm {
	var tail *hashcons.UTerm
	for i := len(elems) - 1; i >= 0; i-- {
		tail = b.pool.MustIntern(elems[i], tail)
	}
	return tail
}

// sub wraps an already-built term as an Atom so it can be embedded as one
// element of an enclosing list.
func sub(t *hashcons.UTerm) atom.Atom { return atom.Term(t) }
