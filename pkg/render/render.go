// Package render implements the subprogram that renders a template file.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/errutil"
	"github.com/thistle-tpl/thistle/pkg/logutil"
	"github.com/thistle-tpl/thistle/pkg/markup"
	"github.com/thistle-tpl/thistle/pkg/prog"
)

var logger = logutil.GetLogger("[render] ")

// DefaultJobs is the default number of data files rendered concurrently.
const DefaultJobs = 4

// Program is the render subprogram. It compiles the template named by the
// first argument and renders it once with each data file named by the
// remaining arguments, or once with no data when there are none.
type Program struct {
	engine *prog.EngineFlags
	jobs   int
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	p.engine = fs.Engine()
	fs.IntVar(&p.jobs, "j", DefaultJobs,
		"Number of data files to render concurrently")
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if len(args) == 0 {
		return prog.BadUsage("no template given")
	}
	if p.jobs < 1 {
		return prog.BadUsage("-j must be positive")
	}
	e, err := p.engine.NewEngine()
	if err != nil {
		return err
	}
	tplPath, dataPaths := args[0], args[1:]
	src, err := os.ReadFile(tplPath)
	if err != nil {
		return err
	}
	tpl, err := e.CompileNamed(tplPath, string(src))
	if err != nil {
		showErrors(fds[2], err)
		return prog.Exit(2)
	}

	if len(dataPaths) == 0 {
		// Render once without data.
		dataPaths = []string{""}
	}
	outputs := make([]string, len(dataPaths))
	errs := make([]error, len(dataPaths))
	var g errgroup.Group
	g.SetLimit(p.jobs)
	for i, dataPath := range dataPaths {
		g.Go(func() error {
			logger.Printf("rendering %s with %q", tplPath, dataPath)
			var data any
			if dataPath != "" {
				var err error
				data, err = LoadData(dataPath)
				if err != nil {
					errs[i] = err
					return nil
				}
			}
			nodes, err := tpl.Link(data)
			if err == nil {
				outputs[i], err = markup.String(nodes...)
			}
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", displayName(dataPath), err)
			}
			return nil
		})
	}
	g.Wait()

	for i, out := range outputs {
		if errs[i] == nil {
			fmt.Fprintln(fds[1], out)
		}
	}
	if err := errutil.Multi(errs...); err != nil {
		showErrors(fds[2], err)
		return prog.Exit(1)
	}
	return nil
}

func displayName(dataPath string) string {
	if dataPath == "" {
		return "[no data]"
	}
	return dataPath
}

// Shows each error of a possibly combined error. On a terminal errors are
// shown with their source context; otherwise each takes one line.
func showErrors(w *os.File, err error) {
	errs := []error{err}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		errs = multi.Unwrap()
	}
	tty := isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())
	for _, err := range errs {
		if tty {
			diag.ShowError(w, err)
		} else {
			io.WriteString(w, err.Error()+"\n")
		}
	}
}
