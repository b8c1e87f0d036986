package compile

import (
	"fmt"

	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"

	"github.com/thistle-tpl/thistle/pkg/diag"
)

func equalString(a, b any) bool { return a == b }

func hashString(k any) uint32 { return hash.String(k.(string)) }

var emptyServices = hashmap.New(equalString, hashString)

// Context maps role names to compile-time services, letting directives on
// one element coordinate with directives on its descendants.
//
// A Context has two layers: services inherited from ancestors, and services
// registered by the node the Context belongs to. Child contexts take a
// snapshot of both layers, so registrations made after a child context is
// created are not visible to it.
type Context struct {
	inherited hashmap.Map
	local     hashmap.Map
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{emptyServices, emptyServices}
}

// GetAncestorService looks up a service registered by an ancestor. Services
// registered in this Context are not visible.
func (c *Context) GetAncestorService(role string) (any, bool) {
	return c.inherited.Index(role)
}

// AddService registers a service for the node this Context belongs to. Each
// role can be registered once per Context.
func (c *Context) AddService(role string, service any) error {
	if _, dup := c.local.Index(role); dup {
		return &CompileError{
			Message: fmt.Sprintf("service %q is already registered on this node", role),
			Context: diag.Context{Ranging: diag.NoRanging},
		}
	}
	c.local = c.local.Assoc(role, service)
	return nil
}

// MakeChildNodeContext returns a Context for a child node, which inherits
// all services visible from this Context and has no local ones.
func (c *Context) MakeChildNodeContext() *Context {
	inherited := c.inherited
	for it := c.local.Iterator(); it.HasElem(); it.Next() {
		k, v := it.Elem()
		inherited = inherited.Assoc(k, v)
	}
	return &Context{inherited, emptyServices}
}
