package hashcons

import (
	"sync"

	"latticeflow/internal/atom"
)

// childTable holds the head -> *UTerm entries for a single term's interned
// children, : "starts as an inline association list, and
// when its size exceeds a threshold of 8 it is upgraded to a hash map with
// identity-hashed keys." atom.Atom's equality is already O(1) identity
// comparison (see internal/atom), so "identity-hashed" here just means the
// map key is the Atom value itself — Go's map already hashes it in O(1)
// regardless of any wrapped string's length.
type childTable struct {
	mu    sync.RWMutex
	list  []childEntry // used while len(list) <= threshold
	index map[atom.Atom]*UTerm // non-nil once upgraded; list is nil afterward
}

type childEntry struct {
	head atom.Atom
	term *UTerm
}

func (c *childTable) lookup(head atom.Atom) (*UTerm, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.index != nil {
		t, ok := c.index[head]
		return t, ok
	}
	for _, e := range c.list {
		if e.head.Equal(head) {
			return e.term, true
		}
	}
	return nil, false
}

// insert adds (head, term) to the table, upgrading to the hash-map form
// once the association-list form would exceed threshold entries. Callers
// (Pool.internChild) already re-check lookup under the pool lock before
// calling insert, so a duplicate insert here would only happen under a
// benign race that the pool's double-checked locking already prevents;
// insert itself re-checks once more for defense against table-local races.
func (c *childTable) insert(head atom.Atom, term *UTerm, threshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil {
		if _, ok := c.index[head]; !ok {
			c.index[head] = term
		}
		return
	}

	for _, e := range c.list {
		if e.head.Equal(head) {
			return
		}
	}

	c.list = append(c.list, childEntry{head: head, term: term})
	if len(c.list) > threshold {
		c.index = make(map[atom.Atom]*UTerm, len(c.list)*2)
		for _, e := range c.list {
			c.index[e.head] = e.term
		}
		c.list = nil
	}
}

// Len reports how many children are currently interned under this term,
// regardless of representation. Exposed for tests that assert on the
// list/map upgrade boundary.
func (c *childTable) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.index != nil {
		return len(c.index)
	}
	return len(c.list)
}

// upgraded reports whether this table has converted to the hash-map form.
func (c *childTable) upgraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.index != nil
}
