package markup

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/thistle-tpl/thistle/pkg/node"
)

// Serialize writes nodes as HTML. Root nodes contribute their children.
func Serialize(w io.Writer, nodes ...*node.Node) error {
	for _, n := range nodes {
		if n.Type == node.Root {
			if err := Serialize(w, n.Children...); err != nil {
				return err
			}
			continue
		}
		hn, err := toHTML(n)
		if err != nil {
			return err
		}
		if err := html.Render(w, hn); err != nil {
			return err
		}
	}
	return nil
}

// String is like Serialize, but returns the HTML as a string.
func String(nodes ...*node.Node) (string, error) {
	var sb strings.Builder
	if err := Serialize(&sb, nodes...); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func toHTML(n *node.Node) (*html.Node, error) {
	hn := &html.Node{}
	switch n.Type {
	case node.Element:
		hn.Type = html.ElementNode
		hn.Data = n.Name
		for _, a := range n.Attrs {
			hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
		}
	case node.Text:
		hn.Type = html.TextNode
		hn.Data = n.Data
	case node.Comment:
		hn.Type = html.CommentNode
		hn.Data = n.Data
	case node.Doctype:
		hn.Type = html.DoctypeNode
		hn.Data = n.Data
	case node.Root:
		hn.Type = html.DocumentNode
	default:
		return nil, fmt.Errorf("cannot serialize node of type %v", n.Type)
	}
	for _, c := range n.Children {
		hc, err := toHTML(c)
		if err != nil {
			return nil, err
		}
		hn.AppendChild(hc)
	}
	return hn, nil
}
