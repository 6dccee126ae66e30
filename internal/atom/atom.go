// Package atom defines the restricted value type usable as a UTerm head
// or hash-cons lookup key: anything that supports O(1) identity equality.
package atom

import "fmt"

// Kind discriminates the concrete representation packed into an Atom.
type Kind uint8

const (
	// KindInt is a small interned integer (axis ids, storage ids, offsets).
	KindInt Kind = iota
	// KindSymbol is an interned operator/head name ("For", "+", "Store", ...).
	KindSymbol
	// KindFunc is an interned function/operator identifier distinct from a
	// plain symbol (reduction/accumulate operators carry identity beyond name).
	KindFunc
	// KindChar is a single character, stored as its code point. No grammar
	// head in internal/term currently uses it.
	KindChar
	// KindTerm wraps an already-interned UTerm used as a child's head,
	// i.e. a term embedded as the head of another term.
	KindTerm
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindSymbol:
		return "symbol"
	case KindFunc:
		return "func"
	case KindChar:
		return "char"
	case KindTerm:
		return "term"
	default:
		return "unknown"
	}
}

// Atom is a small, identity-comparable value. Two Atoms compare equal with
// == iff they have the same Kind and the same payload; symbols and funcs
// are pre-interned so their payload is itself a pointer (identity), which
// keeps this comparison O(1) regardless of the string's length.
type Atom struct {
	kind Kind
	i    int64
	sym  *symbol
	term termLike
}

// termLike lets KindTerm atoms embed a *hashcons.UTerm without an import
// cycle; hashcons implements this with a single pointer-identity method.
type termLike interface {
	AtomIdentity() uintptr
}

// Int returns an Atom wrapping a small integer.
func Int(v int64) Atom { return Atom{kind: KindInt, i: v} }

// Char returns an Atom wrapping a single rune, stored as its code point.
func Char(r rune) Atom { return Atom{kind: KindChar, i: int64(r)} }

// Term returns an Atom wrapping an already-interned term-like value.
func Term(t termLike) Atom { return Atom{kind: KindTerm, term: t} }

// RawTerm returns the embedded term-like value for a KindTerm atom (nil,
// false otherwise), so callers outside this package (e.g. term.Dump) can
// type-assert it back to their own concrete term type for recursion.
func (a Atom) RawTerm() (interface{}, bool) {
	if a.kind != KindTerm || a.term == nil {
		return nil, false
	}
	return a.term, true
}

// Kind reports which concrete representation this Atom carries.
func (a Atom) Kind() Kind { return a.kind }

// Int reports the integer payload; valid only for KindInt/KindChar.
func (a Atom) Int() int64 { return a.i }

// Equal implements O(1) identity-equality per atom_eq contract.
func (a Atom) Equal(b Atom) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInt, KindChar:
		return a.i == b.i
	case KindSymbol, KindFunc:
		return a.sym == b.sym
	case KindTerm:
		if a.term == nil || b.term == nil {
			return a.term == b.term
		}
		return a.term.AtomIdentity() == b.term.AtomIdentity()
	default:
		return false
	}
}

func (a Atom) String() string {
	switch a.kind {
	case KindInt:
		return fmt.Sprintf("%d", a.i)
	case KindChar:
		return fmt.Sprintf("%q", rune(a.i))
	case KindSymbol, KindFunc:
		if a.sym == nil {
			return "<nil-symbol>"
		}
		return a.sym.name
	case KindTerm:
		return "<term>"
	default:
		return "<invalid-atom>"
	}
}

// symbol is the interned backing object for KindSymbol/KindFunc atoms:
// its pointer IS the identity, so equality of symbols is pointer equality.
type symbol struct {
	name string
	kind Kind
}

// table is the process-wide symbol interning table. Mirrors the
// single-mutex strategy prior art uses for its shared WorkerPool state
// (internal/concurrency's ConcurrencyModule.mu) — a symbol table sees the
// same write-rarely/read-often traffic as the hash-cons pool's leaf table.
var table = newSymbolTable()

// Symbol returns the unique Atom for an operator/head name.
func Symbol(name string) Atom {
	return Atom{kind: KindSymbol, sym: table.intern(name, KindSymbol)}
}

// Func returns the unique Atom for a function/operator identifier. Distinct
// namespace from Symbol so "Reduce" the grammar head and "Reduce" an
// operator name (if ever coincident) can never collide.
func Func(name string) Atom {
	return Atom{kind: KindFunc, sym: table.intern(name, KindFunc)}
}
