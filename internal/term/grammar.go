package term

import (
	"latticeflow/internal/atom"
	"latticeflow/internal/hashcons"
)

// Head symbols, one grammar row. Declared as package
// vars (not consts) because atom.Symbol interns into the process-wide
// symbol table on first use — mirrors an established
// internal/bytecode.OpCode iota enum in spirit (a small fixed vocabulary),
// but the values here are interned Atoms rather than byte constants since
// they also serve as UTerm heads.
var (
	HeadBlueprint  = atom.Symbol("Blueprint")
	HeadFor        = atom.Symbol("For")
	HeadStore      = atom.Symbol("Store")
	HeadReference  = atom.Symbol("Reference")
	HeadCall       = atom.Symbol("Call")
	HeadReduce     = atom.Symbol("Reduce")
	HeadAccumulate = atom.Symbol("Accumulate")

	// HeadIndexTriple marks one (axis, multiplier, offset) group within a
	// Reference's field list — not a grammar row on its own, but a
	// sub-structuring marker so Reference's variable-length index list can
	// be told apart from its fixed storage-id field when dumping/walking.
	HeadIndexTriple = atom.Symbol("Idx")
	// HeadRangeTriple heads a Blueprint's whole range-info list, whose
	// (floorlog2, ceillog2, step) triples follow it flattened, three atoms
	// per range; Blueprint also uses it to head the storage-info list.
	HeadRangeTriple = atom.Symbol("Range")
)

// IndexTriple is one (axis, multiplier, offset) entry of a Reference.
type IndexTriple struct {
	Axis       int64
	Multiplier int64
	Offset     int64
}

// Reference builds Reference(storage-id, (axis, multiplier, offset)*).
// Triples are stored in the order given. internal/lower's index-building
// is the only caller: it passes one triple per storage axis of the
// referenced array, in storage-axis order, with identity axes written as
// (axis, 1, 0), so the Axis fields ascend only when the access does not
// permute axes. Reference does not re-sort, to keep construction a pure,
// non-surprising function of its arguments.
func (b *Builder) Reference(storageID int64, triples []IndexTriple) *hashcons.UTerm {
	elems := []atom.Atom{HeadReference, atom.Int(storageID)}
	for _, t := range triples {
		elems = append(elems, sub(b.list(HeadIndexTriple, atom.Int(t.Axis), atom.Int(t.Multiplier), atom.Int(t.Offset))))
	}
	return b.list(elems...)
}

// Call builds Call(operator, arg*).
func (b *Builder) Call(operator atom.Atom, args []*hashcons.UTerm) *hashcons.UTerm {
	elems := []atom.Atom{HeadCall, operator}
	for _, a := range args {
		elems = append(elems, sub(a))
	}
	return b.list(elems...)
}

// Store builds Store(reference, expression).
func (b *Builder) Store(reference, expression *hashcons.UTerm) *hashcons.UTerm {
	return b.list(HeadStore, sub(reference), sub(expression))
}

// For builds For(axis-id, body).
func (b *Builder) For(axisID int64, body *hashcons.UTerm) *hashcons.UTerm {
	return b.list(HeadFor, atom.Int(axisID), sub(body))
}

// Reduce builds Reduce(axis-id, operator, body).
func (b *Builder) Reduce(axisID int64, operator atom.Atom, body *hashcons.UTerm) *hashcons.UTerm {
	return b.list(HeadReduce, atom.Int(axisID), operator, sub(body))
}

// Accumulate builds Accumulate(axis-id, operator, initial, body).
// Grammar-vocabulary completeness: no dag.Node kind currently lowers to
// an Accumulate (BuildBlueprint never calls this), since nothing in the
// node model yet expresses a scan/prefix-reduction. Kept so the grammar
// matches the full term vocabulary rather than only what today's node
// kinds happen to emit.
func (b *Builder) Accumulate(axisID int64, operator atom.Atom, initial, body *hashcons.UTerm) *hashcons.UTerm {
	return b.list(HeadAccumulate, atom.Int(axisID), operator, sub(initial), sub(body))
}

// RangeInfoEntry is one (floorLog2Size, ceilLog2Size, step) triple: range
// sizes are quantized to discourage blueprint fragmentation while
// preserving step-specialization.
type RangeInfoEntry struct {
	FloorLog2Size int64
	CeilLog2Size  int64
	Step          int64
}

// StorageInfoEntry is one element-type tag in a Blueprint's storage-info
// list (target first, then each source, ).
type StorageInfoEntry struct {
	TypeTag string
}

// Blueprint builds Blueprint(range-info, storage-info, expression), the
// top-level kernel term.
func (b *Builder) Blueprint(rangeInfo []RangeInfoEntry, storageInfo []StorageInfoEntry, expression *hashcons.UTerm) *hashcons.UTerm {
	riElems := make([]atom.Atom, 0, len(rangeInfo)+1)
	riElems = append(riElems, HeadRangeTriple)
	for _, r := range rangeInfo {
		riElems = append(riElems, atom.Int(r.FloorLog2Size), atom.Int(r.CeilLog2Size), atom.Int(r.Step))
	}
	riTerm := b.list(riElems...)

	siElems := make([]atom.Atom, 0, len(storageInfo)+1)
	siElems = append(siElems, HeadRangeTriple) // reuse as a generic "info list" marker
	for _, s := range storageInfo {
		siElems = append(siElems, atom.Symbol(s.TypeTag))
	}
	siTerm := b.list(siElems...)

	return b.list(HeadBlueprint, sub(riTerm), sub(siTerm), sub(expression))
}
