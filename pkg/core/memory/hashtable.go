package memory

import "hash/fnv"

const (
	DefaultBuckets = 16
	MaxLoadFactor  = 0.75
)

type pair struct {
	key   string
	value []byte
}

// HashTable is the authoritative key -> value store. Buckets are chained;
// the bucket count doubles once the load factor exceeds MaxLoadFactor and
// never shrinks until Reset.
type HashTable struct {
	buckets [][]pair
	count   int
	initial int
}

func NewHashTable(buckets int) *HashTable {
	if buckets <= 0 {
		buckets = DefaultBuckets
	}
	return &HashTable{
		buckets: make([][]pair, buckets),
		initial: buckets,
	}
}

func hashKey(key string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return h.Sum64()
}

func (ht *HashTable) index(key string, n int) int {
	return int(hashKey(key) % uint64(n))
}

func (ht *HashTable) Put(key string, value []byte) {
	idx := ht.index(key, len(ht.buckets))
	bucket := ht.buckets[idx]
	for i := range bucket {
		if bucket[i].key == key {
			bucket[i].value = value
			return
		}
	}
	ht.buckets[idx] = append(bucket, pair{key: key, value: value})
	ht.count++

	if ht.LoadFactor() > MaxLoadFactor {
		ht.rehash()
	}
}

func (ht *HashTable) Get(key string) ([]byte, bool) {
	for _, p := range ht.buckets[ht.index(key, len(ht.buckets))] {
		if p.key == key {
			return p.value, true
		}
	}
	return nil, false
}

// Delete reports whether a pair was actually removed.
func (ht *HashTable) Delete(key string) bool {
	idx := ht.index(key, len(ht.buckets))
	bucket := ht.buckets[idx]
	for i := range bucket {
		if bucket[i].key != key {
			continue
		}
		copy(bucket[i:], bucket[i+1:])
		bucket[len(bucket)-1] = pair{}
		ht.buckets[idx] = bucket[:len(bucket)-1]
		ht.count--
		return true
	}
	return false
}

func (ht *HashTable) rehash() {
	grown := make([][]pair, len(ht.buckets)*2)
	for _, bucket := range ht.buckets {
		for _, p := range bucket {
			idx := ht.index(p.key, len(grown))
			grown[idx] = append(grown[idx], p)
		}
	}
	ht.buckets = grown
}

func (ht *HashTable) LoadFactor() float64 {
	return float64(ht.count) / float64(len(ht.buckets))
}

func (ht *HashTable) Len() int {
	return ht.count
}

func (ht *HashTable) Buckets() int {
	return len(ht.buckets)
}

// Iterator visits every pair in bucket order until fn returns false.
func (ht *HashTable) Iterator(fn func(key string, value []byte) bool) {
	for _, bucket := range ht.buckets {
		for _, p := range bucket {
			if !fn(p.key, p.value) {
				return
			}
		}
	}
}

func (ht *HashTable) Reset() {
	ht.buckets = make([][]pair, ht.initial)
	ht.count = 0
}
