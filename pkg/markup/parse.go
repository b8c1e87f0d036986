// Package markup parses HTML into node trees and serializes node trees back
// to HTML, using golang.org/x/net/html.
//
// The parser is deliberately shallow: it builds the tree the tokens
// describe, without the HTML5 tree construction rules that move or insert
// elements, so templates keep the structure they are written with.
package markup

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/node"
)

// Elements that never have content.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// ParseError is returned when markup cannot be tokenized.
type ParseError = diag.Error[ParseErrorTag]

// ParseErrorTag parameterizes [diag.Error] to define [ParseError].
type ParseErrorTag struct{}

func (ParseErrorTag) ErrorTag() string { return "markup error" }

// Parse parses markup into a root node. The ranges of the resulting nodes
// are byte offsets into src; an element's range extends from its start tag
// to the end of its end tag.
func Parse(name, src string) (*node.Node, error) {
	root := node.NewRoot()
	root.Ranging = diag.Ranging{From: 0, To: len(src)}
	stack := []*node.Node{root}
	top := func() *node.Node { return stack[len(stack)-1] }

	z := html.NewTokenizer(strings.NewReader(src))
	pos := 0
	for {
		typ := z.Next()
		if typ == html.ErrorToken {
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return nil, &ParseError{
					Message: err.Error(),
					Context: *diag.NewContext(name, src, diag.PointRanging(pos)),
				}
			}
			break
		}
		begin := pos
		pos += len(z.Raw())
		r := diag.Ranging{From: begin, To: pos}
		tok := z.Token()

		switch typ {
		case html.TextToken:
			n := node.NewText(tok.Data)
			n.Ranging = r
			top().AppendChild(n)
		case html.CommentToken:
			n := node.NewComment(tok.Data)
			n.Ranging = r
			top().AppendChild(n)
		case html.DoctypeToken:
			n := node.NewDoctype(tok.Data)
			n.Ranging = r
			top().AppendChild(n)
		case html.StartTagToken, html.SelfClosingTagToken:
			n := node.NewElement(tok.Data, convertAttrs(tok.Attr)...)
			n.Ranging = r
			top().AppendChild(n)
			if typ == html.StartTagToken && !voidElements[tok.Data] {
				stack = append(stack, n)
			}
		case html.EndTagToken:
			// Close the innermost open element with the same name, along
			// with everything opened inside it. Unmatched end tags are
			// ignored.
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Name == tok.Data {
					for _, open := range stack[i:] {
						open.To = pos
					}
					stack = stack[:i]
					break
				}
			}
		}
	}
	for _, open := range stack[1:] {
		open.To = len(src)
	}
	return root, nil
}

func convertAttrs(attrs []html.Attribute) []node.Attr {
	if len(attrs) == 0 {
		return nil
	}
	converted := make([]node.Attr, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		converted = append(converted, node.Attr{Name: name, Value: a.Val})
	}
	return converted
}
