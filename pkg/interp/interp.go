// Package interp implements interpolation of expressions embedded in text,
// such as "hello {{name}}".
package interp

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/logutil"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

var logger = logutil.GetLogger("[interp] ")

// Default delimiters.
const (
	DefaultStartSymbol = "{{"
	DefaultEndSymbol   = "}}"
)

// InterpolateError is returned for text with an unclosed delimiter.
type InterpolateError = diag.Error[InterpolateErrorTag]

// InterpolateErrorTag parameterizes [diag.Error] to define
// [InterpolateError].
type InterpolateErrorTag struct{}

func (InterpolateErrorTag) ErrorTag() string { return "interpolation error" }

// Options modifies the behavior of [Interpolator.Interpolate].
type Options struct {
	// Return a nil Fn when the text has no embedded expression and no
	// escaped delimiters, so it can be used as it is.
	OnlyIfExpression bool
	// Make the whole result undefined when any expression evaluates to
	// undefined.
	AllOrNothing bool
}

// Fn produces the interpolated text for a scope. The second return value
// is false when the result is undefined, which only happens in
// AllOrNothing mode.
type Fn func(s scope.Scope) (string, bool)

// Interpolator compiles text with embedded expressions.
type Interpolator struct {
	compiler   *expr.Compiler
	start, end string
}

// New creates an Interpolator. Empty delimiters are replaced by the
// defaults.
func New(c *expr.Compiler, start, end string) *Interpolator {
	if start == "" {
		start = DefaultStartSymbol
	}
	if end == "" {
		end = DefaultEndSymbol
	}
	return &Interpolator{c, start, end}
}

// Delimiters returns the start and end symbols.
func (ip *Interpolator) Delimiters() (start, end string) { return ip.start, ip.end }

// Interpolate compiles text. Doubling the start and end symbols, as in
// "{{{{x}}}}", produces the literal text "{{x}}".
func (ip *Interpolator) Interpolate(text string, opts Options) (Fn, error) {
	return ip.InterpolateNamed("[interpolation]", text, opts)
}

// InterpolateNamed is like Interpolate, but uses srcName in error messages.
func (ip *Interpolator) InterpolateNamed(srcName, text string, opts Options) (Fn, error) {
	var parts []string
	var exprs []expr.Fn
	var slots []int
	escaped := false
	pos := 0
	for pos < len(text) {
		start := indexFrom(text, ip.start, pos)
		if start == -1 {
			parts = append(parts, text[pos:])
			break
		}
		end := indexFrom(text, ip.end, start+len(ip.start))
		if end == -1 {
			return nil, &InterpolateError{
				Message: "unclosed interpolated expression",
				Context: *diag.NewContext(srcName, text, diag.Ranging{From: start, To: len(text)}),
			}
		}
		if pos != start {
			parts = append(parts, text[pos:start])
		}
		src := text[start+len(ip.start) : end]
		after := end + len(ip.end)
		if strings.HasPrefix(src, ip.start) && strings.HasPrefix(text[after:], ip.end) {
			parts = append(parts, src+ip.end)
			escaped = true
			pos = after + len(ip.end)
			continue
		}
		fn, err := ip.compiler.CompileNamed(srcName, src)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, fn)
		slots = append(slots, len(parts))
		parts = append(parts, "")
		pos = after
	}

	if opts.OnlyIfExpression && len(exprs) == 0 && !escaped {
		return nil, nil
	}
	allOrNothing := opts.AllOrNothing
	return func(s scope.Scope) (string, bool) {
		values := make([]string, len(parts))
		copy(values, parts)
		for i, fn := range exprs {
			v := safeEvaluate(fn, s)
			if allOrNothing && vals.IsUndefined(v) {
				return "", false
			}
			values[slots[i]] = Stringify(v)
		}
		return strings.Join(values, ""), true
	}, nil
}

func indexFrom(s, substr string, from int) int {
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}
	return from + i
}

// Evaluation errors turn into the empty string, so that one broken
// expression does not abort the whole render.
func safeEvaluate(fn expr.Fn, s scope.Scope) any {
	v, err := fn(s)
	if err != nil {
		logger.Println("evaluation error:", err)
		return ""
	}
	return v
}

// Stringify converts the value of an embedded expression to text. Undefined
// and null become empty, strings and numbers are written as is, and
// anything else is written as JSON indented by 4 spaces.
func Stringify(v any) string {
	switch {
	case v == nil || vals.IsUndefined(v):
		return ""
	case vals.IsNumber(v):
		return vals.FormatNumber(vals.ToNumber(v))
	}
	if s, ok := v.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		logger.Println("cannot stringify value:", err)
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
