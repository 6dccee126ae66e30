// Package shape implements shape and transformation model:
// ranges, their cartesian-product shapes, and the affine transformations
// that relate a Reshape node's input and output shapes. The element-count
// and axis arithmetic here is grounded in an established
// internal/dataframe's NDArray (Shape []int, Size int, Reshape) — the same
// "track shape alongside a flat buffer" idea, generalized from a single
// dense row-major shape to per-axis (start, step, end) ranges that support
// slicing, broadcasting, and storage-coordinate offsets.
package shape

import "fmt"

// Range is an axis range (start, step, end) with step != 0, .
type Range struct {
	Start, Step, End int64
}

// Len returns the number of elements this range sweeps.
func (r Range) Len() int64 {
	if r.Step == 0 {
		return 0
	}
	if r.Step > 0 {
		if r.End <= r.Start {
			return 0
		}
		return (r.End - r.Start + r.Step - 1) / r.Step
	}
	if r.Start <= r.End {
		return 0
	}
	return (r.Start - r.End - r.Step - 1) / (-r.Step)
}

// At returns the i-th coordinate this range sweeps (0-indexed).
func (r Range) At(i int64) int64 { return r.Start + i*r.Step }

// Intersect returns the overlap of two ranges with the same step; ranges
// whose steps differ (even only in sign) report no overlap (the
// partitioner only ever intersects ranges produced by the same axis
// lineage, so step compatibility is a caller invariant, not something
// Intersect needs to reconcile).
func (r Range) Intersect(o Range) (Range, bool) {
	if r.Step != o.Step {
		return Range{}, false
	}
	if r.Step >= 0 {
		start := max64(r.Start, o.Start)
		end := min64(r.End, o.End)
		if start >= end {
			return Range{}, false
		}
		return Range{Start: start, Step: r.Step, End: end}, true
	}
	start := min64(r.Start, o.Start)
	end := max64(r.End, o.End)
	if start <= end {
		return Range{}, false
	}
	return Range{Start: start, Step: r.Step, End: end}, true
}

// Disjoint reports whether two ranges share no coordinate.
func (r Range) Disjoint(o Range) bool {
	_, ok := r.Intersect(o)
	return !ok
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d:%d]", r.Start, r.Step, r.End)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
