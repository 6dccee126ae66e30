package hashcons

import "latticeflow/internal/atom"

// UTerm is the immutable (head, tail) pair at the core of the hash-cons
// representation. Identity is structural equality: two UTerm pointers are
// equal as terms iff they are the same pointer, guaranteed by Pool.Intern's
// uniqueness invariant. The only mutable field is children, an auxiliary
// per-term child index invisible to semantics.
type UTerm struct {
	pool     *Pool
	head     atom.Atom
	tail     *UTerm
	children childTable
}

func newUTerm(p *Pool, head atom.Atom, tail *UTerm) *UTerm {
	return &UTerm{pool: p, head: head, tail: tail}
}

// Head returns this term's head atom.
func (t *UTerm) Head() atom.Atom { return t.head }

// Tail returns this term's tail, or nil for the None tail.
func (t *UTerm) Tail() *UTerm { return t.tail }

// Pool returns the pool this term was interned in.
func (t *UTerm) Pool() *Pool { return t.pool }

// AtomIdentity implements atom.termLike so a UTerm can be wrapped as the
// head of another term (the KindTerm atom case) with O(1) equality.
func (t *UTerm) AtomIdentity() uintptr {
	return uintptrOf(t)
}

// Elems walks the UList starting at t (or an empty slice for a nil
// UList/None) head-first, i.e. [t.Head(), t.Tail().Head(), ...] until a
// nil tail is reached. Useful for dumping/debugging; the lowering passes
// themselves consume specific positional fields, not this generic walk.
func (t *UTerm) Elems() []atom.Atom {
	var out []atom.Atom
	for cur := t; cur != nil; cur = cur.tail {
		out = append(out, cur.head)
	}
	return out
}

// Depth returns the number of links to the None tail (0 for a leaf term).
func (t *UTerm) Depth() int {
	n := 0
	for cur := t; cur.tail != nil; cur = cur.tail {
		n++
	}
	return n
}
