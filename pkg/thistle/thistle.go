// Package thistle is the entry point for using the template compiler.
//
// An Engine holds the directives, filters and delimiters templates are
// compiled with:
//
//	e, err := thistle.New(thistle.DefaultConfig())
//	out, err := e.Render(`<li thi-repeat="x in xs">{{x | upper}}</li>`, data)
//
// Directives and filters can be added until the first template is compiled.
// After that an Engine is immutable and safe for concurrent use.
package thistle

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/directives"
	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/filters"
	"github.com/thistle-tpl/thistle/pkg/interp"
	"github.com/thistle-tpl/thistle/pkg/logutil"
	"github.com/thistle-tpl/thistle/pkg/markup"
	"github.com/thistle-tpl/thistle/pkg/node"
)

var logger = logutil.GetLogger("[thistle] ")

// ErrFrozen is returned when adding directives or filters to an Engine that
// has already compiled a template.
var ErrFrozen = errors.New("engine has already compiled a template")

// Engine compiles and renders templates.
type Engine struct {
	cfg        Config
	directives []*compile.Directive
	filters    map[string]expr.Filter

	mu       sync.Mutex
	compiler *compile.Compiler
	cache    *templateCache
}

// Option changes an Engine being created.
type Option func(*Engine)

// WithDelimiters sets the interpolation delimiters. An empty value keeps
// the configured delimiter.
func WithDelimiters(start, end string) Option {
	return func(e *Engine) {
		if start != "" {
			e.cfg.StartSymbol = start
		}
		if end != "" {
			e.cfg.EndSymbol = end
		}
	}
}

// WithDirectives adds directives.
func WithDirectives(ds ...*compile.Directive) Option {
	return func(e *Engine) { e.directives = append(e.directives, ds...) }
}

// WithFilters adds filters, replacing standard filters with the same names.
func WithFilters(fs map[string]expr.Filter) Option {
	return func(e *Engine) {
		for name, f := range fs {
			e.filters[name] = f
		}
	}
}

// WithoutStandardDirectives leaves out the standard directives.
func WithoutStandardDirectives() Option {
	return func(e *Engine) { e.cfg.StandardDirectives = false }
}

// WithCacheSize sets the number of compiled templates Render keeps.
func WithCacheSize(n int) Option {
	return func(e *Engine) { e.cfg.CacheSize = n }
}

// WithLogOutput sends the log of all packages to w. Logs are discarded by
// default.
func WithLogOutput(w io.Writer) Option {
	return func(*Engine) { logutil.SetOutput(w) }
}

// New creates an Engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{cfg: cfg, filters: make(map[string]expr.Filter)}
	if cfg.StandardFilters {
		for name, f := range filters.Standard() {
			e.filters[name] = f
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.CacheSize < 0 {
		return nil, fmt.Errorf("negative cache size %d", e.cfg.CacheSize)
	}
	if e.cfg.StandardDirectives {
		e.directives = append(directives.Standard(), e.directives...)
	}
	if e.cfg.CacheSize > 0 {
		e.cache = newTemplateCache(e.cfg.CacheSize)
	}
	return e, nil
}

// Config returns the configuration of the Engine, with options applied.
func (e *Engine) Config() Config { return e.cfg }

// AddDirective adds a directive.
func (e *Engine) AddDirective(d *compile.Directive) error {
	return e.AddDirectives(d)
}

// AddDirectives adds directives.
func (e *Engine) AddDirectives(ds ...*compile.Directive) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compiler != nil {
		return ErrFrozen
	}
	e.directives = append(e.directives, ds...)
	return nil
}

// AddFilter adds a filter.
func (e *Engine) AddFilter(name string, f expr.Filter) error {
	return e.AddFilters(map[string]expr.Filter{name: f})
}

// AddFilters adds filters.
func (e *Engine) AddFilters(fs map[string]expr.Filter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compiler != nil {
		return ErrFrozen
	}
	for name, f := range fs {
		e.filters[name] = f
	}
	return nil
}

// AddComponents adds a component directive for each template in lib.
func (e *Engine) AddComponents(lib ComponentLibrary) error {
	ds, err := Components(lib)
	if err != nil {
		return err
	}
	return e.AddDirectives(ds...)
}

// Compiler returns the underlying compiler. Calling it freezes the Engine.
func (e *Engine) Compiler() *compile.Compiler {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.compiler == nil {
		exprs := expr.NewCompiler(e.filters)
		ip := interp.New(exprs, e.cfg.StartSymbol, e.cfg.EndSymbol)
		e.compiler = compile.NewCompiler(e.directives, exprs, ip)
		logger.Printf("compiler ready with %d directives", len(e.directives))
	}
	return e.compiler
}

// Compile compiles a template.
func (e *Engine) Compile(src string) (*compile.Template, error) {
	return e.CompileNamed("[template]", src)
}

// CompileNamed is like Compile, but uses name in error messages.
func (e *Engine) CompileNamed(name, src string) (*compile.Template, error) {
	return e.Compiler().Compile(compile.Source{Name: name, Code: src})
}

// CompileNodes compiles a template that has already been parsed.
func (e *Engine) CompileNodes(nodes ...*node.Node) (*compile.Template, error) {
	return e.Compiler().CompileNodes(compile.Source{Name: "[nodes]"}, nodes, nil)
}

// Render compiles src, links it against data and serializes the result.
// Compiled templates are cached by source.
func (e *Engine) Render(src string, data any) (string, error) {
	var tpl *compile.Template
	if e.cache != nil {
		tpl, _ = e.cache.get(src)
	}
	if tpl == nil {
		var err error
		tpl, err = e.Compile(src)
		if err != nil {
			return "", err
		}
		if e.cache != nil {
			e.cache.put(src, tpl)
		}
	}
	nodes, err := tpl.Link(data)
	if err != nil {
		return "", err
	}
	return markup.String(nodes...)
}

// SerializeHTML serializes nodes as HTML.
func (e *Engine) SerializeHTML(nodes ...*node.Node) (string, error) {
	return markup.String(nodes...)
}

// ParseExpr compiles an expression with the filters of the Engine.
func (e *Engine) ParseExpr(src string) (expr.Fn, error) {
	return e.Compiler().Exprs().Compile(src)
}

// Interpolate compiles text with embedded expressions, using the delimiters
// of the Engine.
func (e *Engine) Interpolate(text string, opts interp.Options) (interp.Fn, error) {
	return e.Compiler().Interpolator().Interpolate(text, opts)
}
