package expr

import "github.com/thistle-tpl/thistle/pkg/diag"

// Node is a node in the syntax tree of an expression.
//
// The parser accepts a larger language than the compiler: assignments,
// conditionals, sequences, function literals and a few other constructs are
// parsed so that the compiler can reject them with a precise message.
type Node interface {
	diag.Ranger
	describe() string
}

// Literal is a number, string, boolean or null literal.
type Literal struct {
	diag.Ranging
	Value any
}

// Ident is an identifier, resolved as a scope lookup.
type Ident struct {
	diag.Ranging
	Name string
}

// Unary is a prefix operator applied to an operand.
type Unary struct {
	diag.Ranging
	Op      string
	Operand Node
}

// Binary is a binary operator, including the logical operators and the
// filter pipe.
type Binary struct {
	diag.Ranging
	Op          string
	Left, Right Node
}

// Member is a.b, a[b] or a?.b.
type Member struct {
	diag.Ranging
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

// Call is a function call.
type Call struct {
	diag.Ranging
	Callee Node
	Args   []Node
}

// Array is an array literal. Holes are nil.
type Array struct {
	diag.Ranging
	Elems []Node
}

// Object is an object literal.
type Object struct {
	diag.Ranging
	Props []*Property
}

// Property is one entry of an object literal. Key is an *Ident or *Literal
// unless Computed is set.
type Property struct {
	Key      Node
	Value    Node
	Computed bool
}

// Conditional is a ? b : c.
type Conditional struct {
	diag.Ranging
	Test, Then, Else Node
}

// Assign is an assignment, possibly compound.
type Assign struct {
	diag.Ranging
	Op            string
	Target, Value Node
}

// Sequence is a comma-separated list of expressions.
type Sequence struct {
	diag.Ranging
	Exprs []Node
}

// Update is ++ or --.
type Update struct {
	diag.Ranging
	Op      string
	Operand Node
}

// Function is a function literal, arrow function or object method. Only its
// extent is recorded.
type Function struct {
	diag.Ranging
	Arrow bool
}

// New is a new expression.
type New struct {
	diag.Ranging
	Callee Node
	Args   []Node
}

// This is the this keyword.
type This struct {
	diag.Ranging
}

// Spread is ...x inside an array, object or argument list.
type Spread struct {
	diag.Ranging
	Arg Node
}

func (*Literal) describe() string     { return "literal" }
func (*Ident) describe() string       { return "identifier" }
func (n *Unary) describe() string     { return n.Op + " operator" }
func (n *Binary) describe() string    { return n.Op + " operator" }
func (*Member) describe() string      { return "member access" }
func (*Call) describe() string        { return "call" }
func (*Array) describe() string       { return "array literal" }
func (*Object) describe() string      { return "object literal" }
func (*Conditional) describe() string { return "conditional expression" }
func (*Assign) describe() string      { return "assignment" }
func (*Sequence) describe() string    { return "sequence of expressions" }
func (n *Update) describe() string    { return n.Op + " operator" }
func (*New) describe() string         { return "new expression" }
func (*This) describe() string        { return "this" }
func (*Spread) describe() string      { return "spread element" }

func (n *Function) describe() string {
	if n.Arrow {
		return "arrow function"
	}
	return "function literal"
}
