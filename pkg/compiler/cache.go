package compiler

import (
	lru "github.com/hashicorp/golang-lru"
)

// Cache memoizes pipeline results by source text. It is safe for concurrent
// use. Cached results are shared and must be treated as read-only.
type Cache struct {
	opts    Options
	results *lru.ARCCache
}

// NewCache returns a cache holding up to size results.
func NewCache(size int, opts Options) (*Cache, error) {
	results, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{opts: opts, results: results}, nil
}

// Compile returns the cached result for src, compiling it on a miss.
func (c *Cache) Compile(src string) *Result {
	if r, ok := c.results.Get(src); ok {
		return r.(*Result)
	}
	r := CompileWith(src, c.opts)
	c.results.Add(src, r)
	return r
}

// Len returns the number of cached results.
func (c *Cache) Len() int { return c.results.Len() }
