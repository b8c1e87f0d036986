// Thistle compiles HTML templates with directives and renders them with
// data from YAML or JSON files. It also manages a library of component
// templates and runs a language server for template editors.
package main

import (
	"os"

	"github.com/thistle-tpl/thistle/pkg/buildinfo"
	"github.com/thistle-tpl/thistle/pkg/lsp"
	"github.com/thistle-tpl/thistle/pkg/pprof"
	"github.com/thistle-tpl/thistle/pkg/prog"
	"github.com/thistle-tpl/thistle/pkg/render"
	"github.com/thistle-tpl/thistle/pkg/storeprog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&buildinfo.Program{}, &pprof.Program{}, &lsp.Program{}, &storeprog.Program{},
			&render.Program{})))
}
