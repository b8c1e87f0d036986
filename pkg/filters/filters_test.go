package filters

import (
	"testing"

	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/tt"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

var compiler = expr.NewCompiler(Standard())

var testScope = scope.Map{
	"name":  "  ada lovelace ",
	"word":  "straße",
	"items": []any{"a", 1.0, true},
	"nums":  []any{1.0, 2.0, 3.0, 4.0},
	"obj":   vals.MapOf("b", 1.0, "a", []any{"x"}),
	"empty": "",
	"nul":   nil,
}

func eval(src string) (any, error) {
	fn, err := compiler.Compile(src)
	if err != nil {
		return nil, err
	}
	return fn(testScope)
}

func TestFilters(t *testing.T) {
	tt.Test(t, tt.Fn("eval", eval), tt.Table{
		tt.Args("name | trim").Rets("ada lovelace", nil),
		tt.Args("name | trim | upper").Rets("ADA LOVELACE", nil),
		tt.Args("name | trim | title").Rets("Ada Lovelace", nil),
		tt.Args("'ABC' | lower").Rets("abc", nil),
		tt.Args("'éa' | upper").Rets("ÉA", nil),
		tt.Args("missing | upper").Rets("", nil),

		tt.Args("obj | json").Rets(`{"b":1,"a":["x"]}`, nil),
		tt.Args("'<a>' | json").Rets(`"<a>"`, nil),

		tt.Args("missing | default('x')").Rets("x", nil),
		tt.Args("nul | default('x')").Rets("x", nil),
		tt.Args("empty | default(3)").Rets(3.0, nil),
		tt.Args("0 | default(3)").Rets(0.0, nil),
		tt.Args("missing | default").Rets("", nil),

		tt.Args("items | join").Rets("a,1,true", nil),
		tt.Args("items | join(' - ')").Rets("a - 1 - true", nil),
		tt.Args("5 | join").Rets(nil, tt.ErrorContains("cannot iterate over number")),

		tt.Args("nums | length").Rets(4.0, nil),
		tt.Args("word | length").Rets(6.0, nil),
		tt.Args("obj | length").Rets(2.0, nil),
		tt.Args("missing | length").Rets(0.0, nil),

		tt.Args("nums | limit(2)").Rets([]any{1.0, 2.0}, nil),
		tt.Args("nums | limit(-1)").Rets([]any{4.0}, nil),
		tt.Args("nums | limit(10)").Rets([]any{1.0, 2.0, 3.0, 4.0}, nil),
		tt.Args("nums | limit(0)").Rets([]any{}, nil),
		tt.Args("word | limit(3)").Rets("str", nil),
		tt.Args("nums | limit(1.5)").Rets(nil, tt.ErrorContains("limit needs an integer argument, got 1.5")),
		tt.Args("nums | limit").Rets(nil, tt.ErrorContains("limit needs an argument")),
	})
}

func TestStandard_ReturnsFreshMap(t *testing.T) {
	m := Standard()
	delete(m, "upper")
	if _, ok := Standard()["upper"]; !ok {
		t.Errorf("modifying the result of Standard affects later calls")
	}
}
