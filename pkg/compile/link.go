package compile

import "github.com/thistle-tpl/thistle/pkg/node"

// ContentFn appends content to parent. Component templates receive the
// content of the element that invoked them as a ContentFn.
type ContentFn func(fm *Frame, parent *node.Node) error

// Linker appends the output for a compiled part of a template to parent.
type Linker interface {
	Link(fm *Frame, parent *node.Node, content ContentFn) error
}

// LinkerFunc adapts a function to a Linker.
type LinkerFunc func(fm *Frame, parent *node.Node, content ContentFn) error

// Link calls f.
func (f LinkerFunc) Link(fm *Frame, parent *node.Node, content ContentFn) error {
	return f(fm, parent, content)
}

// Seq is a Linker that calls its members in order, stopping at the first
// error.
type Seq []Linker

// Link implements Linker.
func (s Seq) Link(fm *Frame, parent *node.Node, content ContentFn) error {
	for _, l := range s {
		if err := l.Link(fm, parent, content); err != nil {
			return err
		}
	}
	return nil
}

// Combine returns a Seq of the given linkers. Members that are themselves
// Seq values are flattened into the result and nil members are dropped.
func Combine(linkers ...Linker) Seq {
	var flat Seq
	for _, l := range linkers {
		switch l := l.(type) {
		case nil:
		case Seq:
			flat = append(flat, l...)
		default:
			flat = append(flat, l)
		}
	}
	return flat
}
