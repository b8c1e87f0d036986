// Package diag contains building blocks for formatting and processing
// diagnostic information.
package diag

import (
	"fmt"
	"strings"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be shown.
type Error[T ErrorTag] struct {
	Message string
	Context Context
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	tag := errorTag[T]()
	if desc := e.Context.Describe(); desc != "" {
		return tag + ": " + desc + ": " + e.Message
	}
	return tag + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

// Shower is implemented by errors that can render themselves with the
// offending source, such as [Error] and errors wrapping a template node.
type Shower interface {
	// Show renders the value, indenting continuation lines with indent.
	Show(indent string) string
}

// Contexter wraps the SourceContext method.
type Contexter interface {
	// SourceContext returns the context the value is pinned to.
	SourceContext() *Context
}

// SourceContext returns the context of the error.
func (e *Error[T]) SourceContext() *Context { return &e.Context }

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s", title(errorTag[T]()), messageStart, e.Message, messageEnd)
	if e.Context.Source == "" {
		return header
	}
	return header + "\n" + indent + "  " + e.Context.Show(indent+"  ")
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
