package structure

import "github.com/google/btree"

const DefaultBTreeDegree = 32

// OrderedIndex is a sorted key set used for range scans. Keys compare
// byte-wise, which is Go's native string ordering.
type OrderedIndex struct {
	tree *btree.BTreeG[string]
}

func NewOrderedIndex(degree int) *OrderedIndex {
	if degree < 2 {
		degree = DefaultBTreeDegree
	}
	return &OrderedIndex{
		tree: btree.NewOrderedG[string](degree),
	}
}

func (oi *OrderedIndex) Insert(key string) {
	oi.tree.ReplaceOrInsert(key)
}

func (oi *OrderedIndex) Remove(key string) {
	oi.tree.Delete(key)
}

func (oi *OrderedIndex) Contains(key string) bool {
	return oi.tree.Has(key)
}

// Range returns keys k with start <= k <= end in ascending order.
func (oi *OrderedIndex) Range(start, end string) []string {
	out := []string{}
	if start > end {
		return out
	}
	oi.tree.AscendGreaterOrEqual(start, func(k string) bool {
		if k > end {
			return false
		}
		out = append(out, k)
		return true
	})
	return out
}

func (oi *OrderedIndex) All() []string {
	out := make([]string, 0, oi.tree.Len())
	oi.tree.Ascend(func(k string) bool {
		out = append(out, k)
		return true
	})
	return out
}

func (oi *OrderedIndex) Len() int {
	return oi.tree.Len()
}

func (oi *OrderedIndex) Reset() {
	oi.tree.Clear(false)
}
