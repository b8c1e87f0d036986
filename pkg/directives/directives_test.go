package directives

import (
	"errors"
	"testing"

	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/markup"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/tt"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

var compiler = compile.NewCompiler(Standard(), nil, nil)

func render(src string, data any) (string, error) {
	t, err := compiler.Compile(compile.Source{Name: "[test]", Code: src})
	if err != nil {
		return "", err
	}
	nodes, err := t.Link(data)
	if err != nil {
		return "", err
	}
	return markup.String(nodes...)
}

var testData = map[string]any{
	"items": []any{"a", "b", "c"},
	"obj":   vals.MapOf("x", 1.0, "y", 2.0),
	"kind":  "b",
	"num":   2.0,
	"yes":   true,
	"no":    false,
	"empty": []any{},
	"nul":   nil,
	"rows":  []any{[]any{1.0, 2.0}, []any{3.0}},
	"users": []any{
		map[string]any{"name": "ann", "role": "admin"},
		map[string]any{"name": "bob", "role": "guest"},
		map[string]any{"name": "cy", "role": "nobody"},
	},
}

func TestIf(t *testing.T) {
	tt.Test(t, tt.Fn("render", render), tt.Table{
		tt.Args(`<p thi-if="yes">a</p>`, testData).Rets(`<p>a</p>`, nil),
		tt.Args(`<p thi-if="no">a</p>`, testData).Rets(``, nil),
		tt.Args(`<p thi-if="missing">a</p>`, testData).Rets(``, nil),
		tt.Args(`<p thi-if="num > 1" class="c">a</p>`, testData).Rets(`<p class="c">a</p>`, nil),
		tt.Args(`<template thi-if="yes"><b>a</b>c</template>`, testData).Rets(`<b>a</b>c`, nil),
		tt.Args(`<p thi-if="yes"><i thi-if="no">x</i>y</p>`, testData).Rets(`<p>y</p>`, nil),
		tt.Args(`<p thi-if="a = 1">a</p>`, testData).
			Rets("", tt.ErrorContains("expression may not contain assignment")),
	})
}

func TestRepeat(t *testing.T) {
	tt.Test(t, tt.Fn("render", render), tt.Table{
		tt.Args(`<li thi-repeat="item in items">{{item}}</li>`, testData).
			Rets(`<li>a</li><li>b</li><li>c</li>`, nil),
		tt.Args(`<li thi-repeat="(k, v) in obj">{{k}}={{v}}</li>`, testData).
			Rets(`<li>x=1</li><li>y=2</li>`, nil),
		tt.Args(`<i thi-repeat="(k, v) in {b: 1, a: 2}">{{k}}{{v}}</i>`, testData).
			Rets(`<i>b1</i><i>a2</i>`, nil),
		tt.Args(`<li thi-repeat="(i, v) in items">{{i}}{{v}}</li>`, testData).
			Rets(`<li>0a</li><li>1b</li><li>2c</li>`, nil),
		tt.Args(`<li thi-repeat="item in missing">x</li>`, testData).Rets(``, nil),
		tt.Args(`<li thi-repeat="item in nul">x</li>`, testData).Rets(``, nil),
		tt.Args(`<li thi-repeat="item in empty">x</li>`, testData).Rets(``, nil),
		tt.Args(`<li thi-repeat="  item   in  items  ">{{item}}</li>`, testData).
			Rets(`<li>a</li><li>b</li><li>c</li>`, nil),
		tt.Args(`<tr thi-repeat="row in rows"><td thi-repeat="cell in row">{{cell}}</td></tr>`, testData).
			Rets(`<tr><td>1</td><td>2</td></tr><tr><td>3</td></tr>`, nil),
		tt.Args(`<template thi-repeat="item in items"><li thi-if="item != 'b'">{{item}}</li></template>`, testData).
			Rets(`<li>a</li><li>c</li>`, nil),
		tt.Args(`<li thi-repeat="item in items" thi-if="item != 'b'">{{item}}</li>`, testData).
			Rets("", tt.ErrorContains("conflicting template directives [thi-repeat] and [thi-if] on <li>")),
		tt.Args(`<template thi-repeat="item in items">{{item}},</template>`, testData).
			Rets(`a,b,c,`, nil),
		tt.Args(`<li thi-repeat="item in items" class="{{$odd ? 'odd' : 'even'}}">x</li>`, testData).
			Rets("", tt.ErrorContains("expression may not contain conditional expression")),

		tt.Args(`<li thi-repeat="items">x</li>`, testData).
			Rets("", tt.ErrorContains(`syntax error: thi-repeat attribute:1:1: thi-repeat expects a definition like "item in collection"`)),
		tt.Args(`<li thi-repeat="a.b in items">x</li>`, testData).
			Rets("", tt.ErrorContains(`thi-repeat expects an identifier or (key, value), got "a.b"`)),
		tt.Args(`<li thi-repeat="x in 5">x</li>`, testData).
			Rets("", tt.ErrorContains("cannot iterate over number")),
	})
}

func TestRepeat_IterationVars(t *testing.T) {
	got, err := render(
		`<i thi-repeat="item in items">{{$index}}:{{$first}}{{$middle}}{{$last}}{{$even}}{{$odd}} </i>`,
		testData)
	if err != nil {
		t.Fatal(err)
	}
	want := `<i>0:truefalsefalsetruefalse </i>` +
		`<i>1:falsetruefalsefalsetrue </i>` +
		`<i>2:falsefalsetruetruefalse </i>`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestRepeat_EndToEnd(t *testing.T) {
	tpl, err := compiler.Compile(compile.Source{Code: `<li thi-repeat="item in items">{{item}}</li>`})
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := tpl.Link(map[string]any{"items": []any{"a", "b", "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	for i, want := range []string{"a", "b", "c"} {
		n := nodes[i]
		if n.Type != node.Element || n.Name != "li" || len(n.Attrs) != 0 {
			t.Errorf("node %d is not a plain li", i)
		}
		if got := n.Text(); got != want {
			t.Errorf("node %d has text %q, want %q", i, got, want)
		}
	}
}

func TestSwitch(t *testing.T) {
	const tpl = `<div thi-switch="kind">` +
		`<p thi-when="'a'">A</p>` +
		`<p thi-when="'b'">B</p>` +
		`<p thi-when="'b'">B2</p>` +
		`<p thi-else>other</p>` +
		`</div>`
	render1 := func(kind any) (string, error) {
		return render(tpl, map[string]any{"kind": kind})
	}
	tt.Test(t, tt.Fn("render", render1), tt.Table{
		tt.Args("a").Rets(`<div thi-switch="kind"><p>A</p></div>`, nil),
		tt.Args("b").Rets(`<div thi-switch="kind"><p>B</p><p>B2</p></div>`, nil),
		tt.Args("c").Rets(`<div thi-switch="kind"><p>other</p></div>`, nil),
		tt.Args(1.0).Rets(`<div thi-switch="kind"><p>other</p></div>`, nil),
		tt.Args([]any{"a"}).Rets(`<div thi-switch="kind"><p>other</p></div>`, nil),
	})
}

func TestSwitch_Constants(t *testing.T) {
	const tpl = `<div thi-switch="v">` +
		`<i thi-when="1">one</i>` +
		`<i thi-when="0.5 * 4">two</i>` +
		`<i thi-when="true">yes</i>` +
		`<i thi-when="null">null</i>` +
		`<i thi-when="'x'">X</i>` +
		`</div>`
	render1 := func(v any) (string, error) {
		return render(tpl, map[string]any{"v": v})
	}
	tt.Test(t, tt.Fn("render", render1), tt.Table{
		tt.Args(1).Rets(`<div thi-switch="v"><i>one</i></div>`, nil),
		tt.Args(2.0).Rets(`<div thi-switch="v"><i>two</i></div>`, nil),
		tt.Args(true).Rets(`<div thi-switch="v"><i>yes</i></div>`, nil),
		tt.Args(nil).Rets(`<div thi-switch="v"><i>null</i></div>`, nil),
		tt.Args("x").Rets(`<div thi-switch="v"><i>X</i></div>`, nil),
		tt.Args("1").Rets(`<div thi-switch="v"></div>`, nil),
	})
}

func TestSwitch_InsideRepeat(t *testing.T) {
	got, err := render(
		`<ul><li thi-repeat="u in users" thi-switch="u.role">{{u.name}}:`+
			`<b thi-when="'admin'">A</b><b thi-when="'guest'">G</b><b thi-else>?</b>`+
			`</li></ul>`,
		testData)
	if err != nil {
		t.Fatal(err)
	}
	want := `<ul>` +
		`<li thi-switch="u.role">ann:<b>A</b></li>` +
		`<li thi-switch="u.role">bob:<b>G</b></li>` +
		`<li thi-switch="u.role">cy:<b>?</b></li>` +
		`</ul>`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestSwitch_Nested(t *testing.T) {
	got, err := render(
		`<div thi-switch="kind">`+
			`<p thi-when="'b'"><span thi-switch="num"><i thi-when="2">two</i><i thi-else>no</i></span>after</p>`+
			`<p thi-else>outer else</p>`+
			`</div>`,
		testData)
	if err != nil {
		t.Fatal(err)
	}
	want := `<div thi-switch="kind"><p><span thi-switch="num"><i>two</i></span>after</p></div>`
	if got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestSwitch_CompileErrors(t *testing.T) {
	tt.Test(t, tt.Fn("render", render), tt.Table{
		tt.Args(`<p thi-when="1">a</p>`, nil).
			Rets("", tt.ErrorContains("compile error: [test]:1:1: thi-when must be inside an element with thi-switch")),
		tt.Args(`<p thi-else>a</p>`, nil).
			Rets("", tt.ErrorContains("thi-else must be inside an element with thi-switch")),
		tt.Args(`<div thi-switch="v" thi-when="1"></div>`, nil).
			Rets("", tt.ErrorContains("thi-when must be inside")),
		tt.Args(`<div thi-switch="v"><p thi-when="kind">a</p></div>`, nil).
			Rets("", tt.ErrorContains("thi-when value must be a constant, but it uses kind")),
		tt.Args(`<div thi-switch="v"><p thi-when="1" thi-else>a</p></div>`, nil).
			Rets("", tt.ErrorContains("conflicting template directives [thi-else] and [thi-when]")),
	})
}

func TestSwitch_LinkError(t *testing.T) {
	_, err := render(`<div thi-switch="a.b.c"></div>`, nil)
	var terr *vals.TypeError
	if !errors.As(err, &terr) {
		t.Errorf("got error %v, want a TypeError", err)
	}
}

func TestSwitch_OnComponent(t *testing.T) {
	card := compile.Must(compile.NewComponent(compile.ComponentDef{
		Common:   compile.Common{Selector: "my-card"},
		Template: `<div><thi-content></thi-content></div>`,
	}))
	c := compile.NewCompiler(append(Standard(), card), nil, nil)
	tpl, err := c.Compile(compile.Source{Name: "[test]", Code: `<my-card thi-switch="k">` +
		`<p thi-when="'a'">A</p><p thi-else>E</p></my-card>`})
	if err != nil {
		t.Fatal(err)
	}
	render1 := func(k string) (string, error) {
		nodes, err := tpl.Link(map[string]any{"k": k})
		if err != nil {
			return "", err
		}
		return markup.String(nodes...)
	}
	tt.Test(t, tt.Fn("render", render1), tt.Table{
		tt.Args("a").Rets(`<div thi-switch="k"><p>A</p></div>`, nil),
		tt.Args("b").Rets(`<div thi-switch="k"><p>E</p></div>`, nil),
	})
}
