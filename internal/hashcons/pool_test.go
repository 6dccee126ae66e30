package hashcons

import (
	"testing"

	"latticeflow/internal/atom"
)

func TestInternUniqueness(t *testing.T) {
	tests := []struct {
		name string
		head atom.Atom
	}{
		{name: "int-head", head: atom.Int(42)},
		{name: "symbol-head", head: atom.Symbol("For")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{})

			before := p.Len()
			first, err := p.Intern(tt.head, nil)
			if err != nil {
				t.Fatalf("first intern: %v", err)
			}
			if got := p.Len(); got != before+1 {
				t.Fatalf("pool count after first intern = %d, want %d", got, before+1)
			}

			second, err := p.Intern(tt.head, nil)
			if err != nil {
				t.Fatalf("second intern: %v", err)
			}
			if got := p.Len(); got != before+1 {
				t.Fatalf("pool count after second intern = %d, want %d (no growth)", got, before+1)
			}
			if first != second {
				t.Fatalf("intern returned distinct handles for equal arguments")
			}
		})
	}
}

func TestInternChildChain(t *testing.T) {
	p := New(Config{})

	root, err := p.Intern(atom.Symbol("root"), nil)
	if err != nil {
		t.Fatal(err)
	}
	a, err := p.Intern(atom.Int(1), root)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Intern(atom.Int(1), root)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("two interns of the same (head, tail) returned different handles")
	}

	c, err := p.Intern(atom.Int(2), root)
	if err != nil {
		t.Fatal(err)
	}
	if a == c {
		t.Fatalf("distinct heads under the same tail interned to the same term")
	}
}

func TestInternInvalidTail(t *testing.T) {
	p1 := New(Config{})
	p2 := New(Config{})

	foreign, err := p2.Intern(atom.Symbol("x"), nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p1.Intern(atom.Int(0), foreign); err == nil {
		t.Fatalf("expected InvalidTail error interning a foreign-pool tail")
	}
}

func TestChildTableUpgradesAtThreshold(t *testing.T) {
	p := New(Config{ChildTableUpgradeThreshold: 8})

	root, err := p.Intern(atom.Symbol("root"), nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		if _, err := p.Intern(atom.Int(int64(i)), root); err != nil {
			t.Fatal(err)
		}
	}
	if root.children.upgraded() {
		t.Fatalf("child table upgraded early at exactly threshold entries")
	}

	if _, err := p.Intern(atom.Int(8), root); err != nil {
		t.Fatal(err)
	}
	if !root.children.upgraded() {
		t.Fatalf("child table did not upgrade after exceeding threshold")
	}
	if got := root.children.Len(); got != 9 {
		t.Fatalf("child table len = %d, want 9", got)
	}
}

func TestClearInvalidatesCount(t *testing.T) {
	p := New(Config{})
	if _, err := p.Intern(atom.Symbol("x"), nil); err != nil {
		t.Fatal(err)
	}
	if p.Len() == 0 {
		t.Fatalf("expected nonzero count before Clear")
	}
	p.Clear()
	if got := p.Len(); got != 0 {
		t.Fatalf("pool count after Clear = %d, want 0", got)
	}
}
