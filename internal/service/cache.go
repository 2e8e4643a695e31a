package service

import "sync"

// cache is the in-memory copy of one entity list. The last completed
// mutation wins.
type cache[T any] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	origin Source
}

func (c *cache[T]) replace(items []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.loaded = true
	c.origin = SourceRemote
	return c.copyLocked()
}

// seed fills the cache only when nothing has been loaded yet, then returns
// the current contents.
func (c *cache[T]) seed(items []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.items = append([]T(nil), items...)
		c.loaded = true
		c.origin = SourceDemo
	}
	return c.copyLocked()
}

// seedWith is seed for lists that may already hold items (pushed
// notifications): fn receives them and returns the demo list.
func (c *cache[T]) seedWith(fn func(current []T) []T) []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.items = fn(c.copyLocked())
		c.loaded = true
		c.origin = SourceDemo
	}
	return c.copyLocked()
}

func (c *cache[T]) snapshot() ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyLocked(), c.loaded
}

func (c *cache[T]) isLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// source reports where the cached list was loaded from.
func (c *cache[T]) source() Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.origin
}

func (c *cache[T]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *cache[T]) append(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
}

func (c *cache[T]) prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// update replaces every item with fn(item).
func (c *cache[T]) update(fn func(T) T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i] = fn(c.items[i])
	}
}

// apply replaces the whole list with fn(list) in one mutation.
func (c *cache[T]) apply(fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = fn(c.copyLocked())
}

func (c *cache[T]) filter(keep func(T) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items[:0:0]
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	c.items = out
}

func (c *cache[T]) find(match func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if match(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *cache[T]) copyLocked() []T {
	return append([]T{}, c.items...)
}
