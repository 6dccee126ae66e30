// Package lowererr defines the lowering pipeline's error kinds and their
// disposition. It adapts an established internal/errors package
// (SentraError/ErrorType/SourceLocation/StackFrame) to the lowering
// pipeline's vocabulary: a NodeRef stands in for a source location, and
// the kind set is a fixed table of lowering-specific dispositions rather
// than a language front-end's syntax/runtime/type/reference/import/compile
// split.
package lowererr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind is one of the error dispositions from table.
type Kind string

const (
	InvalidAtom       Kind = "InvalidAtom"
	InvalidTail       Kind = "InvalidTail"
	ShapeMismatch     Kind = "ShapeMismatch"
	SpecializationAbort Kind = "SpecializationAbort"
	DAGCycle          Kind = "DAGCycle"
	DanglingInput     Kind = "DanglingInput"
)

// fatal reports whether a kind is a programmer/caller-contract violation
// ("Fatal" disposition) as opposed to one surfaced to the caller as an
// ordinary error, or recovered locally and never surfaced.
func (k Kind) fatal() bool {
	switch k {
	case InvalidAtom, InvalidTail, DAGCycle, DanglingInput:
		return true
	default:
		return false
	}
}

// NodeRef identifies the DAG node(s) an error is about, standing in for
// an established SourceLocation (a lowering pipeline has no source text,
// only node identity and shape).
type NodeRef struct {
	Tag   string // e.g. a dag.Node's debug tag (often its uuid short form)
	Shape string // stringified shape, when relevant (ShapeMismatch)
}

func (r NodeRef) String() string {
	if r.Shape == "" {
		return r.Tag
	}
	return fmt.Sprintf("%s(shape=%s)", r.Tag, r.Shape)
}

// LowerError is the error type every exported lowering entry point
// returns, directly or (for fatal kinds, see New) wrapped with a stack
// trace. Its Error() rendering mirrors an established SentraError.Error()
// layout (kind, message, then offending node references) without the
// source-line/call-stack machinery a language front end needs.
type LowerError struct {
	Kind    Kind
	Message string
	Nodes   []NodeRef
}

func (e *LowerError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if len(e.Nodes) > 0 {
		parts := make([]string, len(e.Nodes))
		for i, n := range e.Nodes {
			parts[i] = n.String()
		}
		sb.WriteString(" [")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}

// New builds a LowerError for the given kind. Fatal kinds are wrapped with
// pkg/errors.WithStack so a caller that lets a fatal error propagate (as
// opposed to a recovered SpecializationAbort) keeps a trace back to the
// call site that detected the contract violation.
func New(kind Kind, message string, nodes ...NodeRef) error {
	e := &LowerError{Kind: kind, Message: message, Nodes: nodes}
	if kind.fatal() {
		return errors.WithStack(e)
	}
	return e
}

// IsKind reports whether err is (or wraps) a LowerError of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *LowerError
	for err != nil {
		if v, ok := err.(*LowerError); ok {
			le = v
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			// Also follow Cause(), the unwrapping method pkg/errors' wrappers
			// have always provided.
			if c, ok := err.(interface{ Cause() error }); ok {
				err = c.Cause()
				continue
			}
			break
		}
		err = u.Unwrap()
	}
	return le != nil && le.Kind == kind
}
