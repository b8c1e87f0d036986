package tt

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder implements T and keeps the messages passed to Errorf.
type recorder struct{ msgs []string }

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.msgs = append(r.msgs, fmt.Sprintf(format, args...))
}

func split(s, sep string) (string, string, bool) {
	return strings.Cut(s, sep)
}

func parseName(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty name")
	}
	return strings.ToLower(s), nil
}

type pair struct {
	key   string
	value int
}

func mkPair(k string, v int) pair { return pair{k, v} }

var ttTests = []struct {
	name string
	run  func(T)
	// Number of failures the run should report.
	fails int
}{
	{"passing cases", func(t T) {
		Test(t, Fn("split", split), Table{
			Args("a=b", "=").Rets("a", "b", true),
			Args("ab", "=").Rets("ab", "", false),
		})
	}, 0},
	{"wrong return value", func(t T) {
		Test(t, Fn("split", split), Table{
			Args("a=b", "=").Rets("a", "c", true),
			Args("ab", "=").Rets("ab", "", false),
		})
	}, 1},
	{"several Rets on one case", func(t T) {
		Test(t, Fn("split", split), Table{
			Args("a=b", "=").Rets("a", "b", true).Rets(Any, Any, false),
		})
	}, 1},
	{"matchers", func(t T) {
		Test(t, Fn("parseName", parseName), Table{
			Args("Ada").Rets("ada", nil),
			Args("").Rets(Any, AnyError),
			Args("").Rets("", ErrorContains("empty")),
			Args("x").Rets(Any, ErrorContains("empty")),
		})
	}, 1},
	{"unexported fields compared", func(t T) {
		Test(t, Fn("mkPair", mkPair), Table{
			Args("a", 1).Rets(pair{"a", 1}),
			Args("a", 1).Rets(pair{"a", 2}),
		})
	}, 1},
	{"custom options", func(t T) {
		Test(t, Fn("mkPair", mkPair).CmpOpts(cmp.Comparer(func(a, b pair) bool {
			return a.key == b.key
		})), Table{
			Args("a", 1).Rets(pair{"a", 2}),
		})
	}, 0},
	{"nil argument", func(t T) {
		Test(t, Fn("isNil", func(p *int) bool { return p == nil }), Table{
			Args(nil).Rets(true),
		})
	}, 0},
}

func TestTest(t *testing.T) {
	for _, test := range ttTests {
		t.Run(test.name, func(t *testing.T) {
			var r recorder
			test.run(&r)
			if len(r.msgs) != test.fails {
				t.Errorf("got %d failures, want %d", len(r.msgs), test.fails)
			}
		})
	}
}

func TestTest_Message(t *testing.T) {
	var r recorder
	Test(&r, Fn("split", split).ArgsFmt("%q on %q"), Table{
		Args("a=b", "=").Rets("a", "c", true),
	})
	want := `split("a=b" on "=") returns (-Wanted +Actual):` + "\n"
	if len(r.msgs) != 1 || !strings.HasPrefix(r.msgs[0], want) {
		t.Errorf("got messages %q, want one starting with %q", r.msgs, want)
	}

	r = recorder{}
	Test(&r, Fn("mkPair", mkPair).RetsFmt("%v"), Table{
		Args("a", 1).Rets(pair{"a", 2}),
	})
	if want := "mkPair(a, 1) returns (-Wanted +Actual):\n-{a 2}\n+{a 1}\n"; len(r.msgs) != 1 || r.msgs[0] != want {
		t.Errorf("got messages %q, want %q", r.msgs, want)
	}
}
