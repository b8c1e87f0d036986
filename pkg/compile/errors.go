package compile

import (
	"errors"

	"github.com/thistle-tpl/thistle/pkg/diag"
)

// CompileError is returned for templates whose directives cannot be
// combined, such as two template directives on one element or a case
// outside a switch.
type CompileError = diag.Error[CompileErrorTag]

// CompileErrorTag parameterizes [diag.Error] to define [CompileError].
type CompileErrorTag struct{}

func (CompileErrorTag) ErrorTag() string { return "compile error" }

// SyntaxError is returned when the value of a directive attribute does not
// follow the directive's grammar. Its context covers the offending text.
type SyntaxError = diag.Error[SyntaxErrorTag]

// SyntaxErrorTag parameterizes [diag.Error] to define [SyntaxError].
type SyntaxErrorTag struct{}

func (SyntaxErrorTag) ErrorTag() string { return "syntax error" }

// NodeError wraps an error that occurred while compiling a template node,
// such as a malformed expression in an attribute. Context points at the
// node; the wrapped error keeps its own context.
type NodeError struct {
	Context diag.Context
	Err     error
}

func (e *NodeError) Error() string {
	if desc := e.Context.Describe(); desc != "" {
		return desc + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *NodeError) Unwrap() error { return e.Err }

// Range returns the range of the node.
func (e *NodeError) Range() diag.Ranging { return e.Context.Range() }

// SourceContext returns the context of the node.
func (e *NodeError) SourceContext() *diag.Context { return &e.Context }

// Show shows the wrapped error, followed by the node it occurred in.
func (e *NodeError) Show(indent string) string {
	var inner string
	var shower diag.Shower
	if errors.As(e.Err, &shower) {
		inner = shower.Show(indent)
	} else {
		inner = e.Err.Error()
	}
	return inner + "\n" + indent + "  in " + e.Context.Show(indent+"     ")
}

// Wraps errors returned by directive hooks. Errors that already point into
// the template are returned as is.
func wrapNodeError(ctx diag.Context, err error) error {
	var nerr *NodeError
	if errors.As(err, &nerr) {
		return err
	}
	var cerr *CompileError
	if errors.As(err, &cerr) && cerr.Context.Describe() != "" &&
		cerr.Context.Name == ctx.Name && cerr.Context.Source == ctx.Source {
		return err
	}
	return &NodeError{ctx, err}
}
