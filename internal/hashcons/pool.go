// Package hashcons implements the interning pool for immutable cons-like
// UTerm values: repeated Intern calls with equal (head, tail) arguments
// return the identical *UTerm handle, so structural equality degenerates
// to pointer equality everywhere downstream.
package hashcons

import (
	"sync"

	"github.com/pkg/errors"

	"latticeflow/internal/atom"
)

// Config mirrors recognized pool options.
type Config struct {
	// InitialLeafCapacity hints the starting size of the leaf table.
	InitialLeafCapacity int
	// ChildTableUpgradeThreshold is the association-list -> map upgrade
	// point for a term's child table. Default 8.
	ChildTableUpgradeThreshold int
}

// DefaultChildTableUpgradeThreshold is the association-list -> map
// upgrade point used when Config doesn't override it.
const DefaultChildTableUpgradeThreshold = 8

func (c Config) threshold() int {
	if c.ChildTableUpgradeThreshold > 0 {
		return c.ChildTableUpgradeThreshold
	}
	return DefaultChildTableUpgradeThreshold
}

// Pool is the process-wide (or caller-scoped, for tests) hash-cons store.
// Every insertion is serialized behind the pool's single RWMutex (lookups
// of an existing child go through that tail's own child-table lock, see
// internChild), the same strategy
// prior art uses for its ConcurrencyModule's shared maps
// (internal/concurrency/concurrency.go) — a single exclusion lock is
// simplest to reason about and the pool's hot path (repeated lookups of
// already-interned terms) is read-dominated, which RWMutex favors.
type Pool struct {
	mu        sync.RWMutex
	cfg       Config
	leaves    map[atom.Atom]*UTerm
	nodeCount int
}

// New creates an empty pool. Callers that want a single process-wide pool
// should store one *Pool behind a package-level sync.Once or var, which
// this type deliberately does not do itself — lifecycle ownership belongs
// to the caller.
func New(cfg Config) *Pool {
	cap := cfg.InitialLeafCapacity
	if cap <= 0 {
		cap = 64
	}
	return &Pool{
		cfg:    cfg,
		leaves: make(map[atom.Atom]*UTerm, cap),
	}
}

// Len reports the number of distinct UTerm nodes the pool has interned.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.nodeCount
}

// Clear invalidates every outstanding UTerm handle from this pool —
// clearing is a caller decision, not something the pool does itself. The
// pool itself is safe to reuse afterward, with the same Config.
func (p *Pool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leaves = make(map[atom.Atom]*UTerm, len(p.leaves))
	p.nodeCount = 0
}

// Intern returns the unique UTerm for (head, tail), creating it if this is
// the first such pair ever seen by this pool. tail must be nil (the None
// tail) or a *UTerm previously returned by this same pool; anything else
// is a programming error ("Attempting to intern a tail
// that is not None and not a pool handle is a programming error (fatal)").
func (p *Pool) Intern(head atom.Atom, tail *UTerm) (*UTerm, error) {
	if tail != nil && tail.pool != p {
		return nil, errors.WithStack(&InvalidTailError{Tail: tail})
	}

	if tail == nil {
		return p.internLeaf(head)
	}
	return p.internChild(head, tail)
}

// MustIntern panics (instead of returning an error) on the fatal InvalidTail
// path. Most call sites in the term/lower packages pass an already-owned
// tail and never hit this, so MustIntern keeps their call sites flat.
func (p *Pool) MustIntern(head atom.Atom, tail *UTerm) *UTerm {
	t, err := p.Intern(head, tail)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *Pool) internLeaf(head atom.Atom) (*UTerm, error) {
	p.mu.RLock()
	if t, ok := p.leaves[head]; ok {
		p.mu.RUnlock()
		return t, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.leaves[head]; ok {
		return t, nil
	}
	t := newUTerm(p, head, nil)
	p.leaves[head] = t
	p.nodeCount++
	return t, nil
}

func (p *Pool) internChild(head atom.Atom, tail *UTerm) (*UTerm, error) {
	// The child table belongs to tail, not to the pool: tail.children is
	// guarded by tail's own mutex so that sibling terms' child-table
	// traffic doesn't contend on the pool-wide lock. The pool lock here
	// only protects the nodeCount bump and the (rare) allocation path.
	if existing, ok := tail.children.lookup(head); ok {
		return existing, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := tail.children.lookup(head); ok {
		return existing, nil
	}
	t := newUTerm(p, head, tail)
	tail.children.insert(head, t, p.cfg.threshold())
	p.nodeCount++
	return t, nil
}

// InvalidTailError is returned when Intern is called with a tail that does
// not belong to the pool it is called on.
type InvalidTailError struct {
	Tail *UTerm
}

func (e *InvalidTailError) Error() string {
	return "hashcons: tail does not belong to this pool"
}
