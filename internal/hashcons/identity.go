package hashcons

import "unsafe"

// uintptrOf exposes a UTerm's pointer identity as a plain integer so it can
// sit inside an atom.Atom (itself a plain comparable struct) without the
// atom package importing hashcons. An established internal/jit package
// reaches for unsafe.Pointer the same way to cross a representation
// boundary (NaN-boxed Value <-> raw globals pointer); here the boundary is
// "term identity" rather than "NaN-boxed value".
func uintptrOf(t *UTerm) uintptr {
	return uintptr(unsafe.Pointer(t))
}
