package expr

import (
	"fmt"

	"github.com/thistle-tpl/thistle/pkg/diag"
)

// ParseError is raised for malformed or disallowed expressions.
type ParseError = diag.Error[ParseErrorTag]

// ParseErrorTag parameterizes [diag.Error] to define [ParseError].
type ParseErrorTag struct{}

func (ParseErrorTag) ErrorTag() string { return "parse error" }

// Parse parses a single expression. The result may still contain constructs
// that Compile rejects.
func Parse(srcName, src string) (n Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*ParseError); ok {
				n, err = nil, perr
				return
			}
			panic(r)
		}
	}()
	ps := &parser{srcName: srcName, src: src, tokens: lex(srcName, src)}
	n = ps.parseExpression()
	if t := ps.peek(); t.is(tPunct, ";") {
		ps.errorf(t, "must provide exactly one expression")
	} else if t.typ != tEOF {
		ps.errorf(t, "unexpected %s", t.describe())
	}
	return n, nil
}

type parser struct {
	srcName string
	src     string
	tokens  []token
	i       int
}

func (ps *parser) peek() token { return ps.tokens[ps.i] }

func (ps *parser) peekAt(k int) token {
	if ps.i+k < len(ps.tokens) {
		return ps.tokens[ps.i+k]
	}
	return ps.tokens[len(ps.tokens)-1]
}

func (ps *parser) next() token {
	t := ps.tokens[ps.i]
	if t.typ != tEOF {
		ps.i++
	}
	return t
}

// The end offset of the last consumed token.
func (ps *parser) end() int {
	if ps.i == 0 {
		return 0
	}
	return ps.tokens[ps.i-1].To
}

func (ps *parser) isPunct(text string) bool { return ps.peek().is(tPunct, text) }

func (ps *parser) accept(text string) bool {
	if ps.isPunct(text) {
		ps.next()
		return true
	}
	return false
}

func (ps *parser) expect(text string) token {
	t := ps.peek()
	if !t.is(tPunct, text) {
		ps.errorf(t, "expected %q, found %s", text, t.describe())
	}
	return ps.next()
}

func (ps *parser) errorf(r diag.Ranger, format string, args ...any) {
	panic(&ParseError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(ps.srcName, ps.src, r),
	})
}

func (ps *parser) span(begin int) diag.Ranging {
	return diag.Ranging{From: begin, To: ps.end()}
}

// Expression := Assign { "," Assign }
func (ps *parser) parseExpression() Node {
	begin := ps.peek().From
	first := ps.parseAssign()
	if !ps.isPunct(",") {
		return first
	}
	exprs := []Node{first}
	for ps.accept(",") {
		exprs = append(exprs, ps.parseAssign())
	}
	return &Sequence{ps.span(begin), exprs}
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "<<=": true, ">>=": true, ">>>=": true, "&=": true,
	"|=": true, "^=": true,
}

// Assign := Conditional [ AssignOp Assign ]
func (ps *parser) parseAssign() Node {
	begin := ps.peek().From
	target := ps.parseConditional()
	if t := ps.peek(); t.typ == tPunct && assignOps[t.text] {
		ps.next()
		value := ps.parseAssign()
		return &Assign{ps.span(begin), t.text, target, value}
	}
	return target
}

// Conditional := Binary [ "?" Assign ":" Assign ]
func (ps *parser) parseConditional() Node {
	begin := ps.peek().From
	test := ps.parseBinary(1)
	if !ps.accept("?") {
		return test
	}
	then := ps.parseAssign()
	ps.expect(":")
	els := ps.parseAssign()
	return &Conditional{ps.span(begin), test, then, els}
}

// Binding power of binary operators. The filter pipe takes the slot of
// bitwise or.
var binaryPrec = map[string]int{
	"??": 1, "||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6, "===": 6, "!==": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7, "in": 7, "instanceof": 7,
	"<<": 8, ">>": 8, ">>>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

func (ps *parser) binaryOp() (string, int, bool) {
	t := ps.peek()
	if t.typ != tPunct && !t.is(tKeyword, "in") && !t.is(tKeyword, "instanceof") {
		return "", 0, false
	}
	prec, ok := binaryPrec[t.text]
	return t.text, prec, ok
}

// Binary := Unary { BinaryOp Unary }, by precedence climbing. All operators
// are left-associative except **.
func (ps *parser) parseBinary(minPrec int) Node {
	begin := ps.peek().From
	left := ps.parseUnary()
	for {
		op, prec, ok := ps.binaryOp()
		if !ok || prec < minPrec {
			return left
		}
		ps.next()
		if op == "|" && ps.peek().typ == tKeyword {
			// Filter names may be reserved words, as in "x | default(y)".
			ps.tokens[ps.i].typ = tIdent
		}
		var right Node
		if op == "**" {
			right = ps.parseBinary(prec)
		} else {
			right = ps.parseBinary(prec + 1)
		}
		left = &Binary{ps.span(begin), op, left, right}
	}
}

// Unary := UnaryOp Unary | ("++" | "--") Unary | Postfix
func (ps *parser) parseUnary() Node {
	t := ps.peek()
	switch {
	case t.typ == tPunct && (t.text == "!" || t.text == "-" || t.text == "+" || t.text == "~"),
		t.is(tKeyword, "typeof"), t.is(tKeyword, "void"), t.is(tKeyword, "delete"):
		ps.next()
		operand := ps.parseUnary()
		return &Unary{ps.span(t.From), t.text, operand}
	case t.is(tPunct, "++"), t.is(tPunct, "--"):
		ps.next()
		operand := ps.parseUnary()
		return &Update{ps.span(t.From), t.text, operand}
	}
	operand := ps.parseCallMember()
	if t := ps.peek(); t.is(tPunct, "++") || t.is(tPunct, "--") {
		ps.next()
		return &Update{ps.span(operand.Range().From), t.text, operand}
	}
	return operand
}

// CallMember := Primary { "." Name | "?." Name | "[" Expression "]" | Args }
func (ps *parser) parseCallMember() Node {
	begin := ps.peek().From
	n := ps.parsePrimary()
	for {
		switch {
		case ps.isPunct(".") || ps.isPunct("?."):
			optional := ps.next().text == "?."
			name := ps.next()
			if name.typ != tIdent && name.typ != tKeyword {
				ps.errorf(name, "expected property name, found %s", name.describe())
			}
			n = &Member{ps.span(begin), n, &Ident{name.Ranging, name.text}, false, optional}
		case ps.isPunct("["):
			ps.next()
			prop := ps.parseExpression()
			ps.expect("]")
			n = &Member{ps.span(begin), n, prop, true, false}
		case ps.isPunct("("):
			args := ps.parseArgs()
			n = &Call{ps.span(begin), n, args}
		default:
			return n
		}
	}
}

// Args := "(" [ Arg { "," Arg } ] ")"
func (ps *parser) parseArgs() []Node {
	ps.expect("(")
	var args []Node
	for !ps.isPunct(")") {
		args = append(args, ps.parseElement())
		if !ps.accept(",") {
			break
		}
	}
	ps.expect(")")
	return args
}

// Element := "..." Assign | Assign
func (ps *parser) parseElement() Node {
	if t := ps.peek(); t.is(tPunct, "...") {
		ps.next()
		arg := ps.parseAssign()
		return &Spread{ps.span(t.From), arg}
	}
	return ps.parseAssign()
}

func (ps *parser) parsePrimary() Node {
	t := ps.peek()
	switch t.typ {
	case tNumber, tString:
		ps.next()
		return &Literal{t.Ranging, t.val}
	case tIdent:
		ps.next()
		if ps.isPunct("=>") {
			return ps.parseArrowBody(t.From)
		}
		return &Ident{t.Ranging, t.text}
	case tKeyword:
		return ps.parseKeyword()
	case tPunct:
		switch t.text {
		case "(":
			ps.next()
			if ps.isPunct(")") && ps.peekAt(1).is(tPunct, "=>") {
				ps.next()
				return ps.parseArrowBody(t.From)
			}
			inner := ps.parseExpression()
			ps.expect(")")
			if ps.isPunct("=>") {
				return ps.parseArrowBody(t.From)
			}
			return inner
		case "[":
			return ps.parseArray()
		case "{":
			return ps.parseObject()
		case "/", "/=":
			ps.errorf(t, "regular expression literals are not supported")
		}
	}
	ps.errorf(t, "unexpected %s", t.describe())
	panic("unreachable")
}

func (ps *parser) parseKeyword() Node {
	t := ps.next()
	switch t.text {
	case "true", "false":
		return &Literal{t.Ranging, t.text == "true"}
	case "null":
		return &Literal{t.Ranging, nil}
	case "this":
		return &This{t.Ranging}
	case "function":
		if ps.peek().typ == tIdent {
			ps.next()
		}
		ps.skipBalanced("(", ")")
		ps.skipBalanced("{", "}")
		return &Function{ps.span(t.From), false}
	case "new":
		callee := ps.parseCallMemberNoCall()
		var args []Node
		if ps.isPunct("(") {
			args = ps.parseArgs()
		}
		return &New{ps.span(t.From), callee, args}
	case "var", "let", "const":
		ps.errorf(t, "expression may not contain variable declaration")
	}
	ps.errorf(t, "unexpected keyword %s", t.text)
	panic("unreachable")
}

// The callee of new extends over member accesses but not calls.
func (ps *parser) parseCallMemberNoCall() Node {
	begin := ps.peek().From
	n := ps.parsePrimary()
	for ps.isPunct(".") {
		ps.next()
		name := ps.next()
		n = &Member{ps.span(begin), n, &Ident{name.Ranging, name.text}, false, false}
	}
	return n
}

func (ps *parser) parseArrowBody(begin int) Node {
	ps.expect("=>")
	if ps.isPunct("{") {
		ps.skipBalanced("{", "}")
	} else {
		ps.parseAssign()
	}
	return &Function{ps.span(begin), true}
}

// Skips a bracketed token group, which must start at the current token.
func (ps *parser) skipBalanced(open, close string) {
	ps.expect(open)
	depth := 1
	for depth > 0 {
		t := ps.next()
		switch {
		case t.typ == tEOF:
			ps.errorf(t, "expected %q, found %s", close, t.describe())
		case t.is(tPunct, open):
			depth++
		case t.is(tPunct, close):
			depth--
		}
	}
}

// Array := "[" { [ Element ] "," } [ Element ] "]"
func (ps *parser) parseArray() Node {
	begin := ps.expect("[").From
	var elems []Node
	for !ps.isPunct("]") {
		if ps.accept(",") {
			elems = append(elems, nil)
			continue
		}
		elems = append(elems, ps.parseElement())
		if !ps.accept(",") {
			break
		}
	}
	ps.expect("]")
	return &Array{ps.span(begin), elems}
}

// Object := "{" [ Prop { "," Prop } [ "," ] ] "}"
func (ps *parser) parseObject() Node {
	begin := ps.expect("{").From
	var props []*Property
	for !ps.isPunct("}") {
		props = append(props, ps.parseProperty())
		if !ps.accept(",") {
			break
		}
	}
	ps.expect("}")
	return &Object{ps.span(begin), props}
}

func (ps *parser) parseProperty() *Property {
	t := ps.peek()
	if t.is(tPunct, "...") {
		return &Property{Value: ps.parseElement()}
	}
	var key Node
	computed := false
	switch t.typ {
	case tIdent, tKeyword:
		ps.next()
		key = &Ident{t.Ranging, t.text}
		if (t.text == "get" || t.text == "set") && !ps.isPunct(":") && !ps.isPunct(",") &&
			!ps.isPunct("}") && !ps.isPunct("(") {
			// Accessor: get name() { ... }
			ps.next()
			return ps.parseMethod(t.From, key)
		}
		if t.typ == tIdent && (ps.isPunct(",") || ps.isPunct("}")) {
			return &Property{Key: key, Value: &Ident{t.Ranging, t.text}}
		}
	case tString, tNumber:
		ps.next()
		key = &Literal{t.Ranging, t.val}
	default:
		if !t.is(tPunct, "[") {
			ps.errorf(t, "expected property name, found %s", t.describe())
		}
		ps.next()
		key = ps.parseAssign()
		ps.expect("]")
		computed = true
	}
	if ps.isPunct("(") {
		return ps.parseMethod(t.From, key)
	}
	ps.expect(":")
	return &Property{Key: key, Value: ps.parseAssign(), Computed: computed}
}

func (ps *parser) parseMethod(begin int, key Node) *Property {
	ps.skipBalanced("(", ")")
	ps.skipBalanced("{", "}")
	return &Property{Key: key, Value: &Function{ps.span(begin), false}}
}
