package prog

import (
	"flag"

	"github.com/thistle-tpl/thistle/pkg/errutil"
	"github.com/thistle-tpl/thistle/pkg/store"
	"github.com/thistle-tpl/thistle/pkg/thistle"
)

// FlagSet wraps a [flag.FlagSet]. It also provides methods for flags shared
// by several subprograms; such a flag is registered the first time it is
// asked for.
type FlagSet struct {
	*flag.FlagSet
	db     *string
	engine *EngineFlags
	json   *bool
}

// DB returns a pointer to the value of the -db flag.
func (fs *FlagSet) DB() *string {
	if fs.db == nil {
		var db string
		fs.StringVar(&db, "db", "",
			"Path to the template library database")
		fs.db = &db
	}
	return fs.db
}

// EngineFlags keeps the flags that determine how a template engine is set up.
type EngineFlags struct {
	Config     string
	Components string
	DB         *string
}

// Engine returns the flags for setting up a template engine.
func (fs *FlagSet) Engine() *EngineFlags {
	if fs.engine == nil {
		ef := EngineFlags{DB: fs.DB()}
		fs.StringVar(&ef.Config, "config", "",
			"Path to a YAML or TOML configuration file")
		fs.StringVar(&ef.Components, "components", "",
			"Path to a directory of component templates")
		fs.engine = &ef
	}
	return fs.engine
}

// JSON returns a pointer to the value of the -json flag.
func (fs *FlagSet) JSON() *bool {
	if fs.json == nil {
		var json bool
		fs.BoolVar(&json, "json", false,
			"Show the output from -version in JSON")
		fs.json = &json
	}
	return fs.json
}

// NewEngine creates an engine as specified by the flags. Components from the
// -components directory and the -db library are registered, in that order.
func (ef *EngineFlags) NewEngine() (*thistle.Engine, error) {
	cfg := thistle.DefaultConfig()
	if ef.Config != "" {
		var err error
		cfg, err = thistle.LoadConfig(ef.Config)
		if err != nil {
			return nil, err
		}
	}
	e, err := thistle.New(cfg)
	if err != nil {
		return nil, err
	}
	if ef.Components != "" {
		err := e.AddComponents(thistle.DirLibrary(ef.Components))
		if err != nil {
			return nil, err
		}
	}
	if ef.DB != nil && *ef.DB != "" {
		st, err := store.NewStore(*ef.DB)
		if err != nil {
			return nil, err
		}
		err = e.AddComponents(st)
		if err = errutil.Multi(err, st.Close()); err != nil {
			return nil, err
		}
	}
	return e, nil
}
