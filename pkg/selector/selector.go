// Package selector compiles the selectors that directives use to pick the
// nodes they apply to.
//
// A selector is a comma-separated list of alternatives. Each alternative is
// a compound of an optional tag name (or "*"), class selectors (".name")
// and attribute selectors ("[name]" or "[name=value]", the value optionally
// quoted). Combinators and pseudo-classes are not supported.
package selector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thistle-tpl/thistle/pkg/node"
)

// Restrict is a set of the ways a selector can trigger on a node.
type Restrict uint8

// Possible bits of Restrict.
const (
	Element Restrict = 1 << iota
	Attribute
	Class

	Any = Element | Attribute | Class
)

func (r Restrict) String() string {
	var sb strings.Builder
	for _, b := range []struct {
		bit  Restrict
		name byte
	}{{Element, 'E'}, {Attribute, 'A'}, {Class, 'C'}} {
		if r&b.bit != 0 {
			sb.WriteByte(b.name)
		}
	}
	return sb.String()
}

// Trigger identifies what part of a node a selector matched through.
type Trigger struct {
	Kind Restrict
	// Tag, attribute or class name.
	Name string
}

// AttrName returns the attribute name of an attribute trigger, or "".
func (t Trigger) AttrName() string {
	if t.Kind == Attribute {
		return t.Name
	}
	return ""
}

type attrSel struct {
	name     string
	value    string
	hasValue bool
}

type compound struct {
	tag     string
	classes []string
	attrs   []attrSel
}

// The part of a compound a match is attributed to: the first attribute,
// otherwise the tag, otherwise the first class.
func (c *compound) trigger() Trigger {
	switch {
	case len(c.attrs) > 0:
		return Trigger{Attribute, c.attrs[0].name}
	case c.tag != "" && c.tag != "*":
		return Trigger{Element, c.tag}
	case len(c.classes) > 0:
		return Trigger{Class, c.classes[0]}
	}
	return Trigger{Element, c.tag}
}

func (c *compound) match(n *node.Node) bool {
	if n.Type != node.Element {
		return false
	}
	if c.tag != "" && c.tag != "*" && !strings.EqualFold(c.tag, n.Name) {
		return false
	}
	for _, a := range c.attrs {
		v, ok := n.Attr(a.name)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	if len(c.classes) > 0 {
		have := n.Classes()
		for _, want := range c.classes {
			if !contains(have, want) {
				return false
			}
		}
	}
	return true
}

func contains(ss []string, s string) bool {
	for _, t := range ss {
		if t == s {
			return true
		}
	}
	return false
}

// Selector is a compiled selector.
type Selector struct {
	src  string
	alts []compound
}

var tokenRegexp = regexp.MustCompile(
	`([.]?)([-\w:$*]+)|` + // 1: "." for classes; 2: tag or class name
		`\[\s*([-\w:$.]+)\s*(?:=\s*(?:"([^"]*)"|'([^']*)'|([^\]\s]*)))?\s*\]|` + // 3: attribute; 4-6: value
		`(\s*,\s*)|` + // 7: separator
		`(\s+)`, // 8: whitespace
)

// Compile compiles a selector.
func Compile(src string) (*Selector, error) {
	s := &Selector{src: src}
	var cur compound
	empty := true
	flush := func() error {
		if empty {
			return fmt.Errorf("empty alternative in selector %q", src)
		}
		s.alts = append(s.alts, cur)
		cur, empty = compound{}, true
		return nil
	}
	pos := 0
	for _, m := range tokenRegexp.FindAllStringSubmatchIndex(src, -1) {
		if m[0] != pos {
			return nil, fmt.Errorf("unexpected %q in selector %q", src[pos:m[0]], src)
		}
		pos = m[1]
		group := func(i int) (string, bool) {
			if m[2*i] < 0 {
				return "", false
			}
			return src[m[2*i]:m[2*i+1]], true
		}
		switch {
		case m[4] >= 0:
			name, _ := group(2)
			if dot, _ := group(1); dot == "." {
				cur.classes = append(cur.classes, name)
			} else {
				if cur.tag != "" || !empty {
					return nil, fmt.Errorf("tag name %q must come first in selector %q", name, src)
				}
				cur.tag = name
			}
			empty = false
		case m[6] >= 0:
			name, _ := group(3)
			a := attrSel{name: name}
			for i := 4; i <= 6; i++ {
				if v, ok := group(i); ok {
					a.value, a.hasValue = v, true
				}
			}
			cur.attrs = append(cur.attrs, a)
			empty = false
		case m[14] >= 0:
			if err := flush(); err != nil {
				return nil, err
			}
		default:
			if !empty && pos < len(src) {
				return nil, fmt.Errorf("combinators are not supported in selector %q", src)
			}
		}
	}
	if pos != len(src) {
		return nil, fmt.Errorf("unexpected %q in selector %q", src[pos:], src)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Selector {
	s, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the source of the selector.
func (s *Selector) String() string { return s.src }

// Restrict returns a selector with only the alternatives whose trigger kind
// is in r.
func (s *Selector) Restrict(r Restrict) *Selector {
	restricted := &Selector{src: s.src}
	for _, alt := range s.alts {
		if alt.trigger().Kind&r != 0 {
			restricted.alts = append(restricted.alts, alt)
		}
	}
	return restricted
}

// Kinds returns the union of the trigger kinds of all alternatives.
func (s *Selector) Kinds() Restrict {
	var r Restrict
	for _, alt := range s.alts {
		r |= alt.trigger().Kind
	}
	return r
}

// Match reports whether n matches any alternative, and the trigger of the
// first alternative that matches.
func (s *Selector) Match(n *node.Node) (Trigger, bool) {
	for i := range s.alts {
		if s.alts[i].match(n) {
			return s.alts[i].trigger(), true
		}
	}
	return Trigger{}, false
}

// AttrNames returns the names of the attributes the selector triggers on.
func (s *Selector) AttrNames() []string {
	var names []string
	for _, alt := range s.alts {
		if t := alt.trigger(); t.Kind == Attribute && !contains(names, t.Name) {
			names = append(names, t.Name)
		}
	}
	return names
}

// TagNames returns the names of the elements the selector triggers on.
func (s *Selector) TagNames() []string {
	var names []string
	for _, alt := range s.alts {
		if t := alt.trigger(); t.Kind == Element && t.Name != "*" && !contains(names, t.Name) {
			names = append(names, t.Name)
		}
	}
	return names
}
