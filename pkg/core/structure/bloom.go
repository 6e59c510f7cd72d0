package structure

import (
	"hash/fnv"
	"math"
)

// BloomFilter answers "definitely absent" for keys never added. Bits are never
// cleared by deletes, so a removed key may still test positive.
type BloomFilter struct {
	bitset []bool
	k      uint
	m      uint
	count  uint
}

func NewBloomFilter(n uint, p float64) *BloomFilter {
	if n == 0 {
		n = 1
	}
	// m = - (n * ln(p)) / (ln(2)^2)
	// k = (m / n) * ln(2)
	m := uint(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	k := uint(math.Ceil((float64(m) / float64(n)) * math.Ln2))
	if m == 0 {
		m = 1
	}
	if k == 0 {
		k = 1
	}

	return &BloomFilter{
		bitset: make([]bool, m),
		k:      k,
		m:      m,
	}
}

func (bf *BloomFilter) Add(key string) {
	h1, h2 := hashPair(key)
	for i := uint(0); i < bf.k; i++ {
		bf.bitset[bf.position(h1, h2, i)] = true
	}
	bf.count++
}

func (bf *BloomFilter) Contains(key string) bool {
	h1, h2 := hashPair(key)
	for i := uint(0); i < bf.k; i++ {
		if !bf.bitset[bf.position(h1, h2, i)] {
			return false
		}
	}
	return true
}

func (bf *BloomFilter) position(h1, h2 uint32, i uint) uint32 {
	return (h1 + uint32(i)*h2) % uint32(bf.m)
}

func hashPair(key string) (uint32, uint32) {
	h := fnv.New64a()
	h.Write([]byte(key))
	sum := h.Sum64()
	// odd second hash so the probe sequence never collapses to one slot
	return uint32(sum), uint32(sum>>32) | 1
}

func (bf *BloomFilter) Reset() {
	clear(bf.bitset)
	bf.count = 0
}

func (bf *BloomFilter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"bloom_bits_size": bf.m,
		"bloom_hashes":    bf.k,
		"bloom_count":     bf.count,
	}
}
