package scope

import (
	"testing"

	"github.com/thistle-tpl/thistle/pkg/tt"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

type data struct {
	Name  string
	Count int `json:"count"`
}

func lookup(s Scope, name string) (any, bool) { return s.Lookup(name) }

func TestFrom(t *testing.T) {
	tt.Test(t, tt.Fn("lookup", lookup), tt.Table{
		tt.Args(From(nil), "a").Rets(nil, false),
		tt.Args(From(map[string]any{"a": 1.0}), "a").Rets(1.0, true),
		tt.Args(From(vals.MapOf("a", "x")), "a").Rets("x", true),
		tt.Args(From(data{Name: "n", Count: 2}), "count").Rets(2, true),
		tt.Args(From(&data{Name: "n"}), "Name").Rets("n", true),
		tt.Args(From(&data{}), "missing").Rets(nil, false),
		tt.Args(From(map[string]string{"k": "v"}), "k").Rets("v", true),
		tt.Args(From(42), "a").Rets(nil, false),
		tt.Args(From(Map{"s": true}), "s").Rets(true, true),
	})
}

func TestChild(t *testing.T) {
	parent := Map{"a": 1.0, "item": "outer"}
	child := NewChild(parent)
	child.Set("item", "inner")
	child.Set("$index", 0.0)
	child.Set("$index", 1.0)

	tt.Test(t, tt.Fn("lookup", lookup), tt.Table{
		tt.Args(child, "a").Rets(1.0, true),
		tt.Args(child, "item").Rets("inner", true),
		tt.Args(child, "$index").Rets(1.0, true),
		tt.Args(parent, "item").Rets("outer", true),
		tt.Args(parent, "$index").Rets(nil, false),
	})

	grandchild := NewChild(child)
	if v, _ := grandchild.Lookup("item"); v != "inner" {
		t.Errorf("grandchild sees item = %v, want inner", v)
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	if _, ok := r.Lookup("x"); ok {
		t.Errorf("Recorder has bindings")
	}
	if len(r.Names) != 1 || r.Names[0] != "x" {
		t.Errorf("Recorder.Names = %v", r.Names)
	}
}
