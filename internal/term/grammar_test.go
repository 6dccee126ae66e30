package term

import (
	"bytes"
	"testing"

	"latticeflow/internal/atom"
	"latticeflow/internal/hashcons"
)

func TestQuantizeSize(t *testing.T) {
	tests := []struct {
		size        int64
		floor, ceil int64
	}{
		{size: 1, floor: 0, ceil: 0},
		{size: 2, floor: 1, ceil: 1},
		{size: 3, floor: 1, ceil: 2},
		{size: 4, floor: 2, ceil: 2},
		{size: 5, floor: 2, ceil: 3},
	}
	for _, tt := range tests {
		f, c := QuantizeSize(tt.size)
		if f != tt.floor || c != tt.ceil {
			t.Fatalf("QuantizeSize(%d) = (%d,%d), want (%d,%d)", tt.size, f, c, tt.floor, tt.ceil)
		}
	}
}

func TestIdenticalNormalFormsInternToTheSameTerm(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	b := NewBuilder(pool)

	build := func() *hashcons.UTerm {
		ref := b.Reference(0, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 0}})
		call := b.Call(atom.Func("+"),
			[]*hashcons.UTerm{
				b.Reference(1, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 0}}),
				b.Reference(2, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 0}}),
			})
		store := b.Store(ref, call)
		return b.For(0, store)
	}

	t1 := build()
	t2 := build()
	if t1 != t2 {
		t.Fatalf("two structurally identical blueprints interned to different terms")
	}
}

func TestBlueprintDeterministicAcrossShiftedOffsets(t *testing.T) {
	// Two DAGs differing only by a translated range (compensated by an
	// equal-and-opposite index offset) must
	// produce identity-equal blueprints. At the term layer this means: the
	// same (axis, multiplier, offset) triple values intern to the same
	// term regardless of which "DAG" produced them.
	pool := hashcons.New(hashcons.Config{})
	b := NewBuilder(pool)

	refA := b.Reference(1, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 10}})
	refB := b.Reference(1, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 10}})
	if refA != refB {
		t.Fatalf("identical Reference triples did not intern to the same term")
	}
}

func TestDumpProducesParenthesizedOutput(t *testing.T) {
	pool := hashcons.New(hashcons.Config{})
	b := NewBuilder(pool)
	ref := b.Reference(0, []IndexTriple{{Axis: 0, Multiplier: 1, Offset: 0}})

	var buf bytes.Buffer
	Dump(&buf, ref)
	if buf.Len() == 0 {
		t.Fatalf("Dump produced no output")
	}
	if buf.String()[0] != '(' {
		t.Fatalf("Dump output should start with '(', got %q", buf.String())
	}
}
