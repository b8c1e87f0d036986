package markup

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/tt"
)

// Compares the shape of trees, ignoring navigation references and ranges.
var shapeOnly = cmp.Options{
	cmpopts.IgnoreFields(node.Node{}, "Parent", "Root", "Ranging"),
	cmpopts.EquateEmpty(),
}

func el(name string, attrs []node.Attr, children ...*node.Node) *node.Node {
	n := node.NewElement(name, attrs...)
	n.Children = children
	return n
}

func attrs(kvs ...string) []node.Attr {
	var as []node.Attr
	for i := 0; i+1 < len(kvs); i += 2 {
		as = append(as, node.Attr{Name: kvs[i], Value: kvs[i+1]})
	}
	return as
}

func TestParse(t *testing.T) {
	src := `<!DOCTYPE html><ul class="list"><li thi-repeat="item in items">{{item}} &amp; more</li><br><!-- note --></ul><img src=x />tail`
	root, err := Parse("[test]", src)
	if err != nil {
		t.Fatal(err)
	}
	want := []*node.Node{
		node.NewDoctype("html"),
		el("ul", attrs("class", "list"),
			el("li", attrs("thi-repeat", "item in items"), node.NewText("{{item}} & more")),
			el("br", nil),
			node.NewComment(" note "),
		),
		el("img", attrs("src", "x")),
		node.NewText("tail"),
	}
	if diff := cmp.Diff(want, root.Children, shapeOnly); diff != "" {
		t.Errorf("Parse (-want +got):\n%s", diff)
	}

	li := root.Children[1].Children[0]
	if got := src[li.From:li.To]; got != `<li thi-repeat="item in items">{{item}} &amp; more</li>` {
		t.Errorf("range of li covers %q", got)
	}
	text := li.Children[0]
	if got := src[text.From:text.To]; got != "{{item}} &amp; more" {
		t.Errorf("range of text covers %q", got)
	}
	if li.Parent != root.Children[1] || li.Root != root || text.Root != root {
		t.Errorf("navigation references not set")
	}
}

func TestParse_Lenient(t *testing.T) {
	root, err := Parse("[test]", `<div><p>a</span>b</div><em>unclosed`)
	if err != nil {
		t.Fatal(err)
	}
	want := []*node.Node{
		el("div", nil, el("p", nil, node.NewText("a"), node.NewText("b"))),
		el("em", nil, node.NewText("unclosed")),
	}
	if diff := cmp.Diff(want, root.Children, shapeOnly); diff != "" {
		t.Errorf("Parse (-want +got):\n%s", diff)
	}
	em := root.Children[1]
	if em.To != len(`<div><p>a</span>b</div><em>unclosed`) {
		t.Errorf("unclosed element should extend to the end, got %v", em.Ranging)
	}
}

func TestParse_DuplicateAttributes(t *testing.T) {
	root, err := Parse("[test]", `<a x="1" x="2" Y="3"></a>`)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(attrs("x", "1", "y", "3"), root.Children[0].Attrs); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestSerialize(t *testing.T) {
	root := node.NewRoot()
	root.AppendChild(node.NewDoctype("html"))
	ul := el("ul", attrs("class", "a b", "title", `say "hi"`))
	root.AppendChild(ul)
	ul.AppendChild(el("li", nil, node.NewText("1 < 2 & 3")))
	ul.AppendChild(el("br", nil))
	ul.AppendChild(node.NewComment("c"))
	root.AppendChild(el("script", nil, node.NewText("if (a < b) {}")))

	tt.Test(t, tt.Fn("String", String), tt.Table{
		tt.Args(root).Rets(
			`<!DOCTYPE html><ul class="a b" title="say &#34;hi&#34;"><li>1 &lt; 2 &amp; 3</li><br/><!--c--></ul><script>if (a < b) {}</script>`,
			nil),
		tt.Args(node.NewText("x"), node.NewText("y")).Rets("xy", nil),
	})
}

func TestRoundTrip(t *testing.T) {
	src := `<div class="x"><p>Hello, <b>{{name}}</b>!</p><input type="text"/></div>`
	root, err := Parse("[test]", src)
	if err != nil {
		t.Fatal(err)
	}
	got, err := String(root)
	if err != nil {
		t.Fatal(err)
	}
	if got != src {
		t.Errorf("round trip gives %q, want %q", got, src)
	}
}

func TestSerialize_Error(t *testing.T) {
	br := el("br", nil, node.NewText("x"))
	if _, err := String(br); err == nil {
		t.Errorf("want error for void element with children")
	}
	bad := &node.Node{Type: node.Type(99), Ranging: diag.NoRanging}
	if _, err := String(bad); err == nil {
		t.Errorf("want error for unknown node type")
	}
}
