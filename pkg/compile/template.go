package compile

import (
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/scope"
)

// Template is a compiled template. It is immutable, and can be linked
// concurrently as long as each link call uses its own Frame and output
// tree.
type Template struct {
	linker Linker
}

// Link links the template against data, which is converted with
// scope.From, and returns the top-level output nodes. The nodes are children
// of a new root node.
func (t *Template) Link(data any) ([]*node.Node, error) {
	root := node.NewRoot()
	if err := t.AppendTo(NewFrame(scope.From(data)), root, nil); err != nil {
		return nil, err
	}
	return root.Children, nil
}

// AppendTo links the template in fm and appends the output to parent.
// Content elements in the template output content.
func (t *Template) AppendTo(fm *Frame, parent *node.Node, content ContentFn) error {
	if t.linker == nil {
		return nil
	}
	return t.linker.Link(fm, parent, content)
}
