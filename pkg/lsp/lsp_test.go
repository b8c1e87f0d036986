package lsp

import (
	"fmt"
	"testing"

	"github.com/thistle-tpl/thistle/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	progtest.Test(t, &Program{},
		progtest.ThatThistle("-lsp").
			WithStdin(fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(initialize), initialize)).
			WritesStdoutContaining(`"hoverProvider":true`),
		progtest.ThatThistle("-lsp", "foo").
			ExitsWith(2).
			WritesStderrContaining("arguments are not allowed with -lsp"),
		progtest.ThatThistle().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}
