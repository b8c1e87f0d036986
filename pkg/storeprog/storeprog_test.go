package storeprog_test

import (
	"path/filepath"
	"testing"

	"github.com/thistle-tpl/thistle/pkg/prog/progtest"
	"github.com/thistle-tpl/thistle/pkg/store"
	. "github.com/thistle-tpl/thistle/pkg/storeprog"
	"github.com/thistle-tpl/thistle/pkg/testutil"
)

var (
	Test        = progtest.Test
	ThatThistle = progtest.ThatThistle
)

func TestProgram(t *testing.T) {
	dir := testutil.TempDirWith(t, testutil.Dir{
		"a.html": `<b>a</b>`,
		"b.html": `<i>b</i>`,
	})
	db := filepath.Join(dir, "db")
	a, b := filepath.Join(dir, "a.html"), filepath.Join(dir, "b.html")

	Test(t, &Program{},
		ThatThistle("-db", db, "-put", "x-b="+b).DoesNothing(),
		ThatThistle("-db", db, "-put", "x-a="+a, "-ls").
			WritesStdoutContaining("x-a\t2\t"),
		ThatThistle("-db", db, "-ls").
			WritesStdoutContaining("x-b\t1\t"),
		ThatThistle("-db", db, "-rm", "x-b").DoesNothing(),
		ThatThistle("-db", db, "-rm", "x-b").
			ExitsWith(2).WritesStderr("x-b: no such template\n"),

		ThatThistle().
			ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
		ThatThistle("-ls").
			ExitsWith(2).WritesStderrContaining("-put, -rm and -ls require -db"),
		ThatThistle("-db", db, "-ls", "foo").
			ExitsWith(2).WritesStderrContaining("arguments are not allowed"),
		ThatThistle("-db", db, "-put", "x-c").
			ExitsWith(2).WritesStderrContaining("-put expects name=file, got x-c"),
		ThatThistle("-db", db, "-put", "x-c="+filepath.Join(dir, "missing")).
			ExitsWith(2).WritesStderrContaining("missing"),
	)

	st, err := store.NewStore(db)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	names, err := st.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "x-a" {
		t.Errorf("got names %v, want [x-a]", names)
	}
}
