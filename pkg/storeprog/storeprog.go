// Package storeprog implements the subprogram that manages the template
// library database.
package storeprog

import (
	"fmt"
	"os"
	"strings"

	"github.com/thistle-tpl/thistle/pkg/errutil"
	"github.com/thistle-tpl/thistle/pkg/prog"
	"github.com/thistle-tpl/thistle/pkg/store"
	"github.com/thistle-tpl/thistle/pkg/store/storedefs"
)

// Program is the storeprog subprogram.
type Program struct {
	db  *string
	put string
	rm  string
	ls  bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	p.db = fs.DB()
	fs.StringVar(&p.put, "put", "",
		"Store a template in the library, given as name=file")
	fs.StringVar(&p.rm, "rm", "",
		"Remove the named template from the library")
	fs.BoolVar(&p.ls, "ls", false,
		"List the templates in the library")
}

func (p *Program) Run(fds [3]*os.File, args []string) (err error) {
	if p.put == "" && p.rm == "" && !p.ls {
		return prog.ErrNextProgram
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -put, -rm or -ls")
	}
	if *p.db == "" {
		return prog.BadUsage("-put, -rm and -ls require -db")
	}
	st, err := store.NewStore(*p.db)
	if err != nil {
		return err
	}
	defer func() { err = errutil.Multi(err, st.Close()) }()

	if p.put != "" {
		if err := put(st, p.put); err != nil {
			return err
		}
	}
	if p.rm != "" {
		if err := st.DelTemplate(p.rm); err != nil {
			return fmt.Errorf("%s: %w", p.rm, err)
		}
	}
	if p.ls {
		return list(fds[1], st)
	}
	return nil
}

func put(st storedefs.Store, spec string) error {
	name, file, ok := strings.Cut(spec, "=")
	if !ok || name == "" || file == "" {
		return prog.BadUsage("-put expects name=file, got " + spec)
	}
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	return st.PutTemplate(name, string(src))
}

func list(w *os.File, st storedefs.Store) error {
	names, err := st.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		info, err := st.TemplateInfo(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, info.Revision, info.Updated.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}
