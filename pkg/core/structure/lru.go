package structure

const (
	lruHead int32 = 0 // most-recently-used end
	lruTail int32 = 1 // least-recently-used end
)

type lruNode struct {
	key   string
	value []byte
	prev  int32
	next  int32
}

// LRU is a fixed-capacity least-recently-used cache. The recency list is an
// arena of nodes linked by index, bounded by two sentinel slots that never
// hold data. A capacity <= 0 disables caching.
type LRU struct {
	capacity int
	nodes    []lruNode
	free     []int32
	items    map[string]int32

	hits   uint64
	misses uint64
}

func NewLRU(capacity int) *LRU {
	c := &LRU{capacity: capacity}
	c.Reset()
	return c
}

func (c *LRU) unlink(h int32) {
	n := &c.nodes[h]
	c.nodes[n.prev].next = n.next
	c.nodes[n.next].prev = n.prev
}

func (c *LRU) pushFront(h int32) {
	first := c.nodes[lruHead].next
	c.nodes[h].prev = lruHead
	c.nodes[h].next = first
	c.nodes[first].prev = h
	c.nodes[lruHead].next = h
}

func (c *LRU) alloc(key string, value []byte) int32 {
	n := lruNode{key: key, value: value}
	if l := len(c.free); l > 0 {
		h := c.free[l-1]
		c.free = c.free[:l-1]
		c.nodes[h] = n
		return h
	}
	c.nodes = append(c.nodes, n)
	return int32(len(c.nodes) - 1)
}

func (c *LRU) discard(h int32) {
	c.unlink(h)
	delete(c.items, c.nodes[h].key)
	c.nodes[h] = lruNode{}
	c.free = append(c.free, h)
}

func (c *LRU) Get(key string) ([]byte, bool) {
	h, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.unlink(h)
	c.pushFront(h)
	return c.nodes[h].value, true
}

// Peek reads without promoting or counting.
func (c *LRU) Peek(key string) ([]byte, bool) {
	h, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return c.nodes[h].value, true
}

func (c *LRU) Put(key string, value []byte) {
	if c.capacity <= 0 {
		return
	}
	if h, ok := c.items[key]; ok {
		c.nodes[h].value = value
		c.unlink(h)
		c.pushFront(h)
		return
	}
	if len(c.items) >= c.capacity {
		c.discard(c.nodes[lruTail].prev)
	}
	h := c.alloc(key, value)
	c.pushFront(h)
	c.items[key] = h
}

func (c *LRU) Erase(key string) {
	if h, ok := c.items[key]; ok {
		c.discard(h)
	}
}

func (c *LRU) Len() int {
	return len(c.items)
}

func (c *LRU) Capacity() int {
	return c.capacity
}

// Keys lists cached keys from most to least recently used.
func (c *LRU) Keys() []string {
	keys := make([]string, 0, len(c.items))
	for h := c.nodes[lruHead].next; h != lruTail; h = c.nodes[h].next {
		keys = append(keys, c.nodes[h].key)
	}
	return keys
}

func (c *LRU) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

func (c *LRU) Reset() {
	c.nodes = []lruNode{
		lruHead: {prev: lruHead, next: lruTail},
		lruTail: {prev: lruHead, next: lruTail},
	}
	c.free = nil
	c.items = make(map[string]int32)
	c.hits = 0
	c.misses = 0
}
