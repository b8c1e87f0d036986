// Package node defines the tree that templates are compiled from and that
// linking produces.
package node

import (
	"strings"

	"github.com/thistle-tpl/thistle/pkg/diag"
)

// Type is the type of a Node.
type Type uint8

// Possible values for Type.
const (
	Root Type = iota
	Element
	Text
	Doctype
	Comment
)

var typeNames = [...]string{"root", "element", "text", "doctype", "comment"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Attr is an attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// Node is a node in a template or output tree.
//
// Parent and Root are navigational references maintained by AppendChild; the
// tree owns its nodes through Children. Root is nil for nodes in a subtree
// that is not under a root node; TreeRoot works in both cases.
type Node struct {
	Type Type
	// Tag name of an element.
	Name string
	// Payload of a text, doctype or comment node.
	Data string
	// Attributes of an element, in declaration order.
	Attrs    []Attr
	Children []*Node
	Parent   *Node
	Root     *Node
	// Position in the source the node was parsed from. Nodes built in code
	// have diag.NoRanging.
	diag.Ranging
}

// NewRoot returns a new root node.
func NewRoot() *Node {
	return &Node{Type: Root, Ranging: diag.NoRanging}
}

// NewElement returns a new element with the given tag name and attributes.
func NewElement(name string, attrs ...Attr) *Node {
	return &Node{Type: Element, Name: name, Attrs: attrs, Ranging: diag.NoRanging}
}

// NewText returns a new text node.
func NewText(data string) *Node {
	return &Node{Type: Text, Data: data, Ranging: diag.NoRanging}
}

// NewDoctype returns a new doctype node. The data is what follows "<!DOCTYPE ".
func NewDoctype(data string) *Node {
	return &Node{Type: Doctype, Data: data, Ranging: diag.NoRanging}
}

// NewComment returns a new comment node.
func NewComment(data string) *Node {
	return &Node{Type: Comment, Data: data, Ranging: diag.NoRanging}
}

// Attr returns the value of the named attribute and whether it exists.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute exists.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// SetAttr sets an attribute, keeping its position if it already exists and
// appending it otherwise.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{name, value})
}

// RemoveAttr removes an attribute and reports whether it existed.
func (n *Node) RemoveAttr(name string) bool {
	for i, a := range n.Attrs {
		if a.Name == name {
			n.Attrs = append(n.Attrs[:i:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// Classes returns the whitespace-separated tokens of the class attribute.
func (n *Node) Classes() []string {
	class, _ := n.Attr("class")
	return strings.Fields(class)
}

// TreeRoot returns the root of the tree n belongs to: n.Root if set, n itself
// if n is a root or has no parent, or the topmost ancestor otherwise.
func (n *Node) TreeRoot() *Node {
	if n.Root != nil {
		return n.Root
	}
	top := n
	for top.Parent != nil {
		top = top.Parent
	}
	return top
}

// AppendChild appends c to the children of n and sets its parent. The root
// references of c and its descendants are pointed at the root node n belongs
// to, or cleared when n is in a detached subtree. A subtree whose root
// references are already right is not walked, so a subtree built while
// detached is only walked once, when it is attached.
func (n *Node) AppendChild(c *Node) {
	n.Children = append(n.Children, c)
	c.Parent = n
	root := n.TreeRoot()
	if root.Type != Root {
		root = nil
	}
	if c.Root != root {
		setRoot(c, root)
	}
}

func setRoot(n, root *Node) {
	n.Root = root
	for _, c := range n.Children {
		setRoot(c, root)
	}
}

// Clone returns a deep copy of n. The copy is detached: it has no parent,
// and TreeRoot of its descendants is the copy.
func (n *Node) Clone() *Node {
	c := &Node{Type: n.Type, Name: n.Name, Data: n.Data, Ranging: n.Ranging}
	if n.Attrs != nil {
		c.Attrs = append([]Attr(nil), n.Attrs...)
	}
	for _, child := range n.Children {
		c.AppendChild(child.Clone())
	}
	return c
}

// Text returns the concatenated data of all text nodes in the subtree.
func (n *Node) Text() string {
	var sb strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Type == Text {
			sb.WriteString(n.Data)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
