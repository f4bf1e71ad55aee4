package expr

// Cache holds one compiled Expr per distinct formula text.
//
// Cache is not safe for concurrent use; it belongs to the goroutine that renders.
type Cache struct {
	m      map[string]*Expr
	hits   uint64
	misses uint64
}

// CacheStats is a point-in-time view of a Cache.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

func NewCache() *Cache {
	return &Cache{m: make(map[string]*Expr)}
}

// Get returns the compiled Expr for formula, compiling it on first use. Invalid formulas are
// cached too, so a broken formula is not recompiled every frame.
func (c *Cache) Get(formula string) *Expr {
	if c.m == nil {
		c.m = make(map[string]*Expr)
	}
	if ex, ok := c.m[formula]; ok {
		c.hits++
		return ex
	}
	c.misses++
	ex := Compile(formula)
	c.m[formula] = ex
	return ex
}

// Retain evicts every entry whose formula is not in keep and returns how many were dropped.
func (c *Cache) Retain(keep []string) int {
	if len(c.m) == 0 {
		return 0
	}
	live := make(map[string]struct{}, len(keep))
	for _, f := range keep {
		live[f] = struct{}{}
	}
	n := 0
	for f := range c.m {
		if _, ok := live[f]; !ok {
			delete(c.m, f)
			n++
		}
	}
	return n
}

func (c *Cache) Len() int { return len(c.m) }

func (c *Cache) Stats() CacheStats {
	return CacheStats{Entries: len(c.m), Hits: c.hits, Misses: c.misses}
}
