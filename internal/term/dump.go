package term

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"latticeflow/internal/atom"
	"latticeflow/internal/hashcons"
)

// ansi color codes used only when Dump's writer is a terminal.
const (
	colorHead  = "\x1b[36m" // cyan: grammar head symbols
	colorReset = "\x1b[0m"
)

// Dump writes a parenthesized, fully recursive rendering of t to w,
// colorizing grammar head symbols (For/Store/Call/...) when w is a
// terminal, the same terminal-aware formatting go-isatty enables
// elsewhere in this tree, without pulling in the much larger
// internal/formatter package, which formatted source code, not
// hash-consed terms.
func Dump(w io.Writer, t *hashcons.UTerm) {
	colorize := false
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	dump(w, t, colorize)
}

func dump(w io.Writer, t *hashcons.UTerm, colorize bool) {
	if t == nil {
		fmt.Fprint(w, "nil")
		return
	}

	fmt.Fprint(w, "(")
	head := t.Head()
	if colorize && head.Kind() == atom.KindSymbol {
		fmt.Fprintf(w, "%s%s%s", colorHead, head.String(), colorReset)
	} else {
		fmt.Fprint(w, head.String())
	}

	for cur := t.Tail(); cur != nil; cur = cur.Tail() {
		fmt.Fprint(w, " ")
		elemHead := cur.Head()
		if raw, ok := elemHead.RawTerm(); ok {
			if sub, ok := raw.(*hashcons.UTerm); ok {
				dump(w, sub, colorize)
				continue
			}
		}
		fmt.Fprint(w, elemHead.String())
	}
	fmt.Fprint(w, ")")
}
