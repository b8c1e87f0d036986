package selector

import (
	"testing"

	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/tt"
)

var (
	li     = node.NewElement("li", node.Attr{Name: "thi-repeat", Value: "x in xs"}, node.Attr{Name: "class", Value: " item\tfirst "})
	button = node.NewElement("button", node.Attr{Name: "type", Value: "submit"})
	text   = node.NewText("li")
)

func match(src string, n *node.Node) (Trigger, bool) {
	return MustCompile(src).Match(n)
}

func TestMatch(t *testing.T) {
	tt.Test(t, tt.Fn("match", match), tt.Table{
		tt.Args("li", li).Rets(Trigger{Element, "li"}, true),
		tt.Args("LI", li).Rets(Trigger{Element, "LI"}, true),
		tt.Args("ul", li).Rets(Trigger{}, false),
		tt.Args("[thi-repeat]", li).Rets(Trigger{Attribute, "thi-repeat"}, true),
		tt.Args("[thi-if]", li).Rets(Trigger{}, false),
		tt.Args(".item", li).Rets(Trigger{Class, "item"}, true),
		tt.Args(".first", li).Rets(Trigger{Class, "first"}, true),
		tt.Args(".last", li).Rets(Trigger{}, false),
		tt.Args("li.item.first", li).Rets(Trigger{Element, "li"}, true),
		tt.Args("li.item[thi-repeat]", li).Rets(Trigger{Attribute, "thi-repeat"}, true),
		tt.Args("*", li).Rets(Trigger{Element, "*"}, true),
		tt.Args(`[type=submit]`, button).Rets(Trigger{Attribute, "type"}, true),
		tt.Args(`[type="submit"]`, button).Rets(Trigger{Attribute, "type"}, true),
		tt.Args(`[type='reset']`, button).Rets(Trigger{}, false),
		tt.Args("ul, .item", li).Rets(Trigger{Class, "item"}, true),
		tt.Args("ul,button", button).Rets(Trigger{Element, "button"}, true),
		tt.Args("li", text).Rets(Trigger{}, false),
	})
}

func compileError(src string) error {
	_, err := Compile(src)
	return err
}

func TestCompile_Errors(t *testing.T) {
	tt.Test(t, tt.Fn("compileError", compileError), tt.Table{
		tt.Args("").Rets(tt.ErrorContains("empty alternative")),
		tt.Args("a,").Rets(tt.ErrorContains("empty alternative")),
		tt.Args("ul li").Rets(tt.ErrorContains("combinators are not supported")),
		tt.Args("ul > li").Rets(tt.AnyError),
		tt.Args("svg:rect").Rets(nil),
		tt.Args("[x]li").Rets(tt.ErrorContains("must come first")),
		tt.Args("[x").Rets(tt.ErrorContains("unexpected")),
		tt.Args(" li ").Rets(nil),
	})
}

func TestRestrict(t *testing.T) {
	s := MustCompile("thi-if, [thi-if], .thi-if")
	if got := s.Kinds(); got != Any {
		t.Errorf("Kinds() = %v, want %v", got, Any)
	}
	r := s.Restrict(Attribute | Class)
	if got := r.Kinds(); got != Attribute|Class {
		t.Errorf("Kinds() after Restrict = %v", got)
	}
	if _, ok := r.Match(node.NewElement("thi-if")); ok {
		t.Errorf("restricted selector matches element")
	}
	if r.String() != s.String() {
		t.Errorf("Restrict changes String()")
	}
}

func TestNames(t *testing.T) {
	s := MustCompile("todo-item, [thi-if], [thi-if=x], li[thi-repeat], *, .c")
	tt.Test(t, tt.Fn("AttrNames", s.AttrNames), tt.Table{
		tt.Args().Rets([]string{"thi-if", "thi-repeat"}),
	})
	tt.Test(t, tt.Fn("TagNames", s.TagNames), tt.Table{
		tt.Args().Rets([]string{"todo-item"}),
	})
}

func TestRestrict_String(t *testing.T) {
	tt.Test(t, tt.Fn("Restrict.String", Restrict.String), tt.Table{
		tt.Args(Any).Rets("EAC"),
		tt.Args(Attribute).Rets("A"),
		tt.Args(Restrict(0)).Rets(""),
	})
}
