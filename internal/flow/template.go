// Package flow builds remote flow invocations.
//
// A Template is the argument contract of one flow: its identifier and the
// ordered types it accepts. Bind either returns a complete Invocation or
// fails before any timed work starts. A Choice selects one of a fixed set of
// templates from a configured value.
package flow

import (
	"fmt"
	"strings"

	"github.com/roach88/ledgerload/internal/ir"
	"github.com/roach88/ledgerload/internal/scenario"
)

// Arg is one positional argument of a flow signature. Type is an ir type
// name as reported by ir.TypeOf.
type Arg struct {
	Name string
	Type string
}

// Template is an invocation template: a flow identifier and the exact
// argument list it accepts.
type Template struct {
	Flow   string
	Params []Arg
}

// Invocation is a fully specified call of one flow. It is built fresh for
// every iteration and consumed by the invoker.
type Invocation struct {
	Flow     string
	Args     ir.Array
	ClientID string
}

// SignatureError reports arguments that do not match a template.
// Index is -1 for an arity mismatch.
type SignatureError struct {
	Flow  string
	Index int
	Want  string
	Got   string
}

func (e *SignatureError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("flow %s: expected %s arguments, got %s", e.Flow, e.Want, e.Got)
	}
	return fmt.Sprintf("flow %s: argument %d: expected %s, got %s", e.Flow, e.Index, e.Want, e.Got)
}

// Unwrap exposes the error as a configuration error.
func (e *SignatureError) Unwrap() error {
	return &scenario.ConfigurationError{Reason: "argument mismatch for " + e.Flow}
}

// Check verifies that args match the template's arity and types.
func (t Template) Check(args ir.Array) error {
	if len(args) != len(t.Params) {
		return &SignatureError{
			Flow:  t.Flow,
			Index: -1,
			Want:  fmt.Sprint(len(t.Params)),
			Got:   fmt.Sprint(len(args)),
		}
	}
	for i, p := range t.Params {
		if got := ir.TypeOf(args[i]); got != p.Type {
			return &SignatureError{Flow: t.Flow, Index: i, Want: p.Type, Got: got}
		}
	}
	return nil
}

// Bind checks args and returns the invocation. The client id is left empty;
// the controller assigns it per iteration.
func (t Template) Bind(args ...ir.Value) (Invocation, error) {
	arr := make(ir.Array, len(args))
	copy(arr, args)
	if err := t.Check(arr); err != nil {
		return Invocation{}, err
	}
	return Invocation{Flow: t.Flow, Args: arr}, nil
}

// Signature renders the template as "flow(name Type, ...)".
func (t Template) Signature() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.Name + " " + p.Type
	}
	return t.Flow + "(" + strings.Join(parts, ", ") + ")"
}

// WithClientID returns a copy of inv carrying the content-addressed client
// id for the given run and iteration.
func (inv Invocation) WithClientID(runID string, seq int64) (Invocation, error) {
	id, err := ir.ClientID(runID, inv.Flow, inv.Args, seq)
	if err != nil {
		return Invocation{}, err
	}
	inv.ClientID = id
	return inv, nil
}
