package thistle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thistle-tpl/thistle/pkg/compile"
)

// ComponentLibrary is a collection of named component templates.
type ComponentLibrary interface {
	// Names returns the names of all templates, in a stable order.
	Names() ([]string, error)
	// Template returns the source of a template.
	Template(name string) (string, error)
}

// ComponentExt is the extension of component files in a DirLibrary.
const ComponentExt = ".html"

// DirLibrary is a ComponentLibrary backed by a directory. Each file named
// <name>.html in it is a template called name.
type DirLibrary string

// Names implements ComponentLibrary.
func (d DirLibrary) Names() ([]string, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ComponentExt); ok && name != "" && !entry.IsDir() {
			names = append(names, name)
		}
	}
	return names, nil
}

// Template implements ComponentLibrary.
func (d DirLibrary) Template(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(string(d), name+ComponentExt))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Components returns one component directive for each template in lib. The
// element named after a template uses it.
func Components(lib ComponentLibrary) ([]*compile.Directive, error) {
	names, err := lib.Names()
	if err != nil {
		return nil, err
	}
	ds := make([]*compile.Directive, 0, len(names))
	for _, name := range names {
		src, err := lib.Template(name)
		if err != nil {
			return nil, err
		}
		d, err := compile.NewComponent(compile.ComponentDef{
			Common:   compile.Common{Selector: name},
			Template: src,
		})
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", name, err)
		}
		ds = append(ds, d)
	}
	return ds, nil
}
