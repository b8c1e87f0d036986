package thistle

import (
	"container/list"
	"sync"

	"github.com/thistle-tpl/thistle/pkg/compile"
)

type cacheEntry struct {
	src string
	tpl *compile.Template
}

// An LRU cache of compiled templates, keyed by source. Safe for concurrent
// use.
type templateCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

func newTemplateCache(capacity int) *templateCache {
	return &templateCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *templateCache) get(src string) (*compile.Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[src]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).tpl, true
}

func (c *templateCache) put(src string, tpl *compile.Template) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[src]; ok {
		el.Value.(*cacheEntry).tpl = tpl
		c.ll.MoveToFront(el)
		return
	}
	if c.ll.Len() >= c.capacity {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).src)
	}
	c.items[src] = c.ll.PushFront(&cacheEntry{src, tpl})
}

func (c *templateCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
