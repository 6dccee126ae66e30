// Package ntype implements numeric type descriptor: an element
// type plus refinement, with a generic-union fallback used when operator
// specialization fails (SpecializationAbort, "Recovered
// locally: fall back to the generic union ntype"). Grounded in an
// established internal/dataframe NDArray.Dtype field, generalized from a
// bare string tag ("float64", "int64", "bool") into a small closed Base
// enum plus a Refinement for narrower element subtypes, so two ntypes
// can be combined (Union) instead of only compared for exact string match.
package ntype

// Base is the closed set of element type families the lowering core
// needs to distinguish for operator specialization and storage layout.
type Base uint8

const (
	Float64 Base = iota
	Float32
	Int64
	Int32
	Bool
)

func (b Base) String() string {
	switch b {
	case Float64:
		return "f64"
	case Float32:
		return "f32"
	case Int64:
		return "i64"
	case Int32:
		return "i32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Refinement narrows a Base with extra constant-range information a
// specialization pass might use to pick a tighter operator path (e.g. an
// Int64 known to be non-negative can use an unsigned kernel variant). The
// zero Refinement means "no refinement known".
type Refinement struct {
	NonNegative bool
	HasConstant bool
	Constant    float64
}

// NType is the full descriptor: Base plus Refinement.
type NType struct {
	Base       Base
	Refinement Refinement
}

// Generic returns the unrefined descriptor for a Base, used as the
// SpecializationAbort fallback target.
func Generic(b Base) NType { return NType{Base: b} }

// Specialized reports whether this descriptor carries refinement info
// beyond its Base.
func (t NType) Specialized() bool {
	return t.Refinement != Refinement{}
}

// Union returns the most general descriptor compatible with both inputs:
// same Base required (cross-Base combination is a caller contract
// violation upstream of ntype, in type inference, which is out of scope
// here), refinements dropped since a union of two refined ranges
// is, in general, unrefined. This is the operation
// internal/lower invokes on SpecializationAbort.
func Union(a, b NType) NType {
	if a.Base != b.Base {
		// Out-of-scope type-inference violation; ntype itself has no
		// promotion lattice to consult, so fall back to the wider of the
		// two bit widths as a conservative default rather than panicking.
		return NType{Base: widerOf(a.Base, b.Base)}
	}
	return Generic(a.Base)
}

func widerOf(a, b Base) Base {
	width := map[Base]int{Float64: 64, Float32: 32, Int64: 64, Int32: 32, Bool: 1}
	if width[a] >= width[b] {
		return a
	}
	return b
}
