package structure

import "slices"

const rootNode int32 = 0

type trieNode struct {
	children map[byte]int32
	terminal bool
}

// Trie indexes keys byte by byte for prefix enumeration. Nodes live in an
// arena and are addressed by handle; handle 0 is the root and is never freed.
type Trie struct {
	nodes []trieNode
	free  []int32
	count int
}

func NewTrie() *Trie {
	t := &Trie{}
	t.Reset()
	return t
}

func (t *Trie) alloc() int32 {
	if n := len(t.free); n > 0 {
		h := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[h] = trieNode{}
		return h
	}
	t.nodes = append(t.nodes, trieNode{})
	return int32(len(t.nodes) - 1)
}

func (t *Trie) release(h int32) {
	t.nodes[h] = trieNode{}
	t.free = append(t.free, h)
}

// Insert is idempotent for a key that is already present.
func (t *Trie) Insert(key string) {
	cur := rootNode
	for i := 0; i < len(key); i++ {
		next, ok := t.nodes[cur].children[key[i]]
		if !ok {
			next = t.alloc()
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[byte]int32)
			}
			t.nodes[cur].children[key[i]] = next
		}
		cur = next
	}
	if !t.nodes[cur].terminal {
		t.nodes[cur].terminal = true
		t.count++
	}
}

// StartsWith returns every key beginning with prefix in ascending byte order.
// The empty prefix enumerates all keys.
func (t *Trie) StartsWith(prefix string) []string {
	cur := rootNode
	for i := 0; i < len(prefix); i++ {
		next, ok := t.nodes[cur].children[prefix[i]]
		if !ok {
			return []string{}
		}
		cur = next
	}

	out := []string{}
	path := []byte(prefix)
	t.collect(cur, &path, &out)
	return out
}

func (t *Trie) collect(h int32, path *[]byte, out *[]string) {
	n := t.nodes[h]
	if n.terminal {
		*out = append(*out, string(*path))
	}
	if len(n.children) == 0 {
		return
	}
	edges := make([]byte, 0, len(n.children))
	for b := range n.children {
		edges = append(edges, b)
	}
	slices.Sort(edges)
	for _, b := range edges {
		*path = append(*path, b)
		t.collect(n.children[b], path, out)
		*path = (*path)[:len(*path)-1]
	}
}

// Remove clears key's terminal mark and prunes every node left childless and
// non-terminal. Removing a key that is not present is a no-op returning false.
func (t *Trie) Remove(key string) bool {
	removed, _ := t.remove(rootNode, key, 0)
	if removed {
		t.count--
	}
	return removed
}

// remove reports whether key was unmarked and whether node h may be pruned by its parent.
func (t *Trie) remove(h int32, key string, depth int) (bool, bool) {
	if depth == len(key) {
		if !t.nodes[h].terminal {
			return false, false
		}
		t.nodes[h].terminal = false
		return true, len(t.nodes[h].children) == 0
	}

	child, ok := t.nodes[h].children[key[depth]]
	if !ok {
		return false, false
	}
	removed, prune := t.remove(child, key, depth+1)
	if prune {
		delete(t.nodes[h].children, key[depth])
		t.release(child)
	}
	n := t.nodes[h]
	return removed, prune && h != rootNode && !n.terminal && len(n.children) == 0
}

func (t *Trie) Contains(key string) bool {
	cur := rootNode
	for i := 0; i < len(key); i++ {
		next, ok := t.nodes[cur].children[key[i]]
		if !ok {
			return false
		}
		cur = next
	}
	return t.nodes[cur].terminal
}

func (t *Trie) Len() int {
	return t.count
}

// Nodes returns the number of live nodes including the root.
func (t *Trie) Nodes() int {
	return len(t.nodes) - len(t.free)
}

// Reset drops the whole arena.
func (t *Trie) Reset() {
	t.nodes = []trieNode{{}}
	t.free = nil
	t.count = 0
}
