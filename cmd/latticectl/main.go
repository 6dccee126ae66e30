// cmd/latticectl/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"latticeflow/internal/atom"
	"latticeflow/internal/dag"
	"latticeflow/internal/hashcons"
	"latticeflow/internal/lower"
	"latticeflow/internal/ntype"
	"latticeflow/internal/shape"
	"latticeflow/internal/term"

	"golang.org/x/sync/errgroup"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("latticectl 0.1.0")
	case "lower":
		if len(args) < 2 {
			log.Fatal("lower requires a scenario name")
		}
		if err := runLower(args[1]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	case "race":
		if err := runRace(args[1:]); err != nil {
			log.Fatalf("Error: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("latticectl - array-computation lowering demo")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  latticectl lower <scenario>     Build and dump kernels for a literal scenario")
	fmt.Println("  latticectl race [--workers N] [--repeats K]")
	fmt.Println("                                   Run the concurrent-intern stress check")
	fmt.Println()
	fmt.Println("Scenarios:")
	fmt.Println("  pure-map            pointwise map, no fusion, no materialization")
	fmt.Println("  reduction           reduction collapsing the leading axis")
	fmt.Println("  fuse                fuse forcing a two-kernel partition")
	fmt.Println("  refcount-two        Map(+, X, X) forcing X's materialization")
	fmt.Println("  normalization       two DAGs differing by a translated, reshape-compensated range")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  latticectl lower fuse")
	fmt.Println("  latticectl race --workers 32 --repeats 500")
}

func f64() ntype.NType { return ntype.Generic(ntype.Float64) }

func arr(sh shape.Shape) *dag.Immediate {
	data := make([]float64, int(sh.Size()))
	return dag.NewArrayImmediate(sh, data, f64())
}

func dump(pool *hashcons.Pool, res *lower.Result) {
	for i, target := range res.Outputs {
		fmt.Printf("output %d: target=%s shape=%v\n", i, target.Tag(), target.Shape())
		for j, k := range res.Kernels[target] {
			fmt.Printf("  kernel %d: ranges=%v sources=%d\n", j, k.Ranges, len(k.Sources))
			fmt.Print("    ")
			term.Dump(os.Stdout, k.Blueprint)
			fmt.Println()
		}
	}
}

func runLower(scenario string) error {
	pool := hashcons.New(hashcons.Config{})

	switch scenario {
	case "pure-map":
		a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 3}))
		b := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 3}))
		m := dag.NewMap(atom.Func("+"), f64(), a, b)
		res, err := lower.Lower(pool, []dag.Node{m})
		if err != nil {
			return err
		}
		dump(pool, res)

	case "reduction":
		a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}, shape.Range{Start: 0, Step: 1, End: 3}))
		r := dag.NewReduction(atom.Func("+"), a)
		res, err := lower.Lower(pool, []dag.Node{r})
		if err != nil {
			return err
		}
		dump(pool, res)

	case "fuse":
		a := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		b := arr(shape.Of(shape.Range{Start: 4, Step: 1, End: 8}))
		fuseShape := shape.Of(shape.Range{Start: 0, Step: 1, End: 8})
		fuse := dag.NewFuse(fuseShape, []dag.Node{a, b}, []shape.Shape{a.Shape(), b.Shape()})
		m := dag.NewMap(atom.Func("id"), f64(), fuse)
		res, err := lower.Lower(pool, []dag.Node{m})
		if err != nil {
			return err
		}
		dump(pool, res)

	case "refcount-two":
		y := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		z := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		x := dag.NewMap(atom.Func("*"), f64(), y, z)
		outer := dag.NewMap(atom.Func("+"), f64(), x, x)
		res, err := lower.Lower(pool, []dag.Node{outer})
		if err != nil {
			return err
		}
		dump(pool, res)

	case "normalization":
		a1 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		b1 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		m1 := dag.NewMap(atom.Func("+"), f64(), a1, b1)

		a2 := arr(shape.Of(shape.Range{Start: 10, Step: 1, End: 14}))
		b2 := arr(shape.Of(shape.Range{Start: 0, Step: 1, End: 4}))
		shift := shape.Transform{Rows: []shape.Row{{Axis: []int{0}, Coeff: []int64{1}, Offset: -10}}, InDims: 1}
		reshaped := dag.NewReshape(a2, shift, shift.ApplyShape(a2.Shape()))
		m2 := dag.NewMap(atom.Func("+"), f64(), reshaped, b2)

		res1, err := lower.Lower(pool, []dag.Node{m1})
		if err != nil {
			return err
		}
		res2, err := lower.Lower(pool, []dag.Node{m2})
		if err != nil {
			return err
		}
		bp1 := res1.Kernels[res1.Outputs[0]][0].Blueprint
		bp2 := res2.Kernels[res2.Outputs[0]][0].Blueprint

		fmt.Println("dag 1:")
		dump(pool, res1)
		fmt.Println("dag 2:")
		dump(pool, res2)
		fmt.Printf("blueprints identity-equal: %v\n", bp1 == bp2)

	default:
		return fmt.Errorf("unknown scenario %q", scenario)
	}
	return nil
}

// runRace reproduces the pool's concurrency contract standalone: N
// goroutines each intern the same (head, tail) pair K times, then report
// whether the pool grew by exactly one node.
func runRace(args []string) error {
	workers := 16
	repeats := 200
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--workers":
			if i+1 >= len(args) {
				return fmt.Errorf("--workers requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("--workers: %w", err)
			}
			workers = n
		case "--repeats":
			if i+1 >= len(args) {
				return fmt.Errorf("--repeats requires a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return fmt.Errorf("--repeats: %w", err)
			}
			repeats = n
		default:
			return fmt.Errorf("unknown race flag %q", args[i])
		}
	}

	pool := hashcons.New(hashcons.Config{})
	root := pool.MustIntern(atom.Symbol("race-root"), nil)
	before := pool.Len()

	var g errgroup.Group
	handles := make(chan *hashcons.UTerm, workers*repeats)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for r := 0; r < repeats; r++ {
				t := pool.MustIntern(atom.Func("+"), root)
				handles <- t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	close(handles)

	var first *hashcons.UTerm
	for h := range handles {
		if first == nil {
			first = h
			continue
		}
		if first != h {
			return fmt.Errorf("race detected: two interned handles for the same (head, tail) differ")
		}
	}

	grew := pool.Len() - before
	fmt.Printf("workers=%d repeats=%d pool grew by %d node(s)\n", workers, repeats, grew)
	if grew != 1 {
		return fmt.Errorf("expected pool to grow by exactly 1 node, got %d", grew)
	}
	fmt.Println("ok: every caller held the same handle")
	return nil
}
