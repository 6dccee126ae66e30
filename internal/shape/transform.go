package shape

// Transform is either the identity or an affine map y = A*x + b with a
// sparse integer matrix A, . Sparsity is represented as one
// Row per output axis: the row lists which input axes it reads (usually
// exactly one, for a pure axis permutation/slice/stride reshape) and their
// coefficients, plus a constant offset.
type Transform struct {
	Rows []Row
	// InDims is the input rank this transform is declared over. It must be
	// set explicitly (rather than inferred from which axes rows reference)
	// because a rank-reducing transform's dropped axes are, by definition,
	// never referenced by any row.
	InDims int
}

// Row is one output axis's contribution: sum(Coeff[k] * x[Axis[k]]) + Offset.
type Row struct {
	Axis   []int
	Coeff  []int64
	Offset int64
}

// Identity returns the rank-n identity transform: y[i] = x[i].
func Identity(n int) Transform {
	rows := make([]Row, n)
	for i := 0; i < n; i++ {
		rows[i] = Row{Axis: []int{i}, Coeff: []int64{1}, Offset: 0}
	}
	return Transform{Rows: rows, InDims: n}
}

// IsIdentity reports whether t is exactly the identity transform.
func (t Transform) IsIdentity() bool {
	for i, row := range t.Rows {
		if len(row.Axis) != 1 || row.Axis[0] != i || len(row.Coeff) != 1 || row.Coeff[0] != 1 || row.Offset != 0 {
			return false
		}
	}
	return true
}

// OutRank is the number of output axes (len(Rows)).
func (t Transform) OutRank() int { return len(t.Rows) }

// InRank is the number of input axes this transform is declared over.
func (t Transform) InRank() int { return t.InDims }

// Injective reports whether t's linear map (ignoring the offset) is
// injective. Open Question resolves the "broadcasting
// reference" predicate (critical-node rule 4) as: any transformation
// whose linear map is not injective. The conservative, decidable check
// implemented here: every output row must read exactly one input axis
// with a nonzero coefficient, every input axis must be read by at most
// one output row, and no two rows may read the same axis (which would
// let two outputs collapse onto one input, i.e. replication) — any
// transform failing this is treated as non-injective (broadcasting).
func (t Transform) Injective() bool {
	seen := make(map[int]bool)
	for _, row := range t.Rows {
		if len(row.Axis) != 1 || row.Coeff[0] == 0 {
			return false
		}
		axis := row.Axis[0]
		if seen[axis] {
			return false
		}
		seen[axis] = true
	}
	return true
}

// ReducesRank reports whether this transform maps a higher-rank input down
// to a lower-rank output, the other half of critical-node rule 4's
// "broadcasting reshape" (a reshape whose transformation reduces input
// rank or replicates indices).
func (t Transform) ReducesRank() bool {
	return t.OutRank() < t.InRank()
}

// Compose returns the transform equivalent to applying inner then outer:
// (outer . inner)(x) = outer(inner(x)). Used when composing a Reshape's
// transformation with the accumulated xform during partitioning/building.
func Compose(outer, inner Transform) Transform {
	rows := make([]Row, len(outer.Rows))
	for i, orow := range outer.Rows {
		acc := map[int]int64{}
		offset := orow.Offset
		for k, oaxis := range orow.Axis {
			coeff := orow.Coeff[k]
			if oaxis >= len(inner.Rows) {
				// References an axis inner doesn't define: treat as identity
				// passthrough on that axis (covers composing with a partial
				// identity padding, which the builder relies on for axes
				// outside a Reshape's declared domain).
				acc[oaxis] += coeff
				continue
			}
			irow := inner.Rows[oaxis]
			offset += coeff * irow.Offset
			for j, iaxis := range irow.Axis {
				acc[iaxis] += coeff * irow.Coeff[j]
			}
		}
		row := Row{Offset: offset}
		for axis, coeff := range acc {
			if coeff == 0 {
				continue
			}
			row.Axis = append(row.Axis, axis)
			row.Coeff = append(row.Coeff, coeff)
		}
		sortRow(&row)
		rows[i] = row
	}
	return Transform{Rows: rows, InDims: inner.InDims}
}

// Apply maps a single point through the transform.
func (t Transform) Apply(x []int64) []int64 {
	out := make([]int64, len(t.Rows))
	for i, row := range t.Rows {
		v := row.Offset
		for k, axis := range row.Axis {
			if axis < len(x) {
				v += row.Coeff[k] * x[axis]
			}
		}
		out[i] = v
	}
	return out
}

// ApplyShape maps an input Shape through the transform axis-by-axis,
// assuming t is a pure per-axis affine map (each row touches one input
// axis) so every range maps to a range rather than requiring a full
// polytope image. A row that reads several input axes is mapped through
// its first axis only; a row that reads no axis maps to the singleton
// range at its offset. Nothing here or in NewReshape rejects a transform
// that is not pure per-axis.
func (t Transform) ApplyShape(in Shape) Shape {
	out := make([]Range, len(t.Rows))
	for i, row := range t.Rows {
		if len(row.Axis) == 0 {
			out[i] = Range{Start: row.Offset, Step: 1, End: row.Offset + 1}
			continue
		}
		axis := row.Axis[0]
		coeff := row.Coeff[0]
		r := in.Ranges[axis]
		start := coeff*r.Start + row.Offset
		step := coeff * r.Step
		end := coeff*r.End + row.Offset
		if step < 0 {
			start, end = end-step, start-step
			step = -step
		}
		out[i] = Range{Start: start, Step: step, End: end}
	}
	return Shape{Ranges: out}
}

// Inverse returns the inverse transform where the linear map is square and
// non-singular. Only pure per-axis affine maps
// (permutation + coefficient ±1 + offset) are supported, which is the form
// ApplyShape itself produces/consumes.
func (t Transform) Inverse() (Transform, bool) {
	n := len(t.Rows)
	rows := make([]Row, n)
	assigned := make([]bool, n)
	for outAxis, row := range t.Rows {
		if len(row.Axis) != 1 || row.Coeff[0] == 0 {
			return Transform{}, false
		}
		inAxis := row.Axis[0]
		if inAxis >= n || assigned[inAxis] {
			return Transform{}, false
		}
		assigned[inAxis] = true
		coeff := row.Coeff[0]
		if coeff != 1 && coeff != -1 {
			// Non-unit integer coefficients have no integer inverse scale;
			// the matrix may be non-singular over the reals while still
			// having no integral inverse, so we only materialize the
			// inverse when it stays integral.
			return Transform{}, false
		}
		rows[inAxis] = Row{
			Axis:   []int{outAxis},
			Coeff:  []int64{coeff},
			Offset: -coeff * row.Offset,
		}
	}
	for _, ok := range assigned {
		if !ok {
			return Transform{}, false
		}
	}
	return Transform{Rows: rows, InDims: n}, true
}

func sortRow(r *Row) {
	for i := 1; i < len(r.Axis); i++ {
		for j := i; j > 0 && r.Axis[j-1] > r.Axis[j]; j-- {
			r.Axis[j-1], r.Axis[j] = r.Axis[j], r.Axis[j-1]
			r.Coeff[j-1], r.Coeff[j] = r.Coeff[j], r.Coeff[j-1]
		}
	}
}
