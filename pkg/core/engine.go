package core

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"minikv/pkg/common"
	"minikv/pkg/config"
	"minikv/pkg/core/memory"
	"minikv/pkg/core/structure"
	"minikv/pkg/monitor"
	"minikv/pkg/storage"
)

// Engine owns the primary store, the prefix and ordered indexes, the recency
// cache and the log, and mutates them together. It is not safe for
// concurrent use; callers serialize access.
type Engine struct {
	primary *memory.HashTable
	prefix  *structure.Trie
	ordered *structure.OrderedIndex
	cache   *structure.LRU
	bloom   *structure.BloomFilter
	wal     *storage.WAL // nil when persistence is disabled
	stats   *monitor.WorkloadStats
	conf    *config.Config
	replay  storage.ReplayStats
}

func NewEngine(cfg *config.Config) *Engine {
	e := &Engine{
		primary: memory.NewHashTable(cfg.Engine.InitialBuckets),
		prefix:  structure.NewTrie(),
		ordered: structure.NewOrderedIndex(cfg.Engine.BTreeDegree),
		cache:   structure.NewLRU(cfg.Engine.CacheCapacity),
		bloom:   structure.NewBloomFilter(cfg.Engine.BloomSize, bloomProb(cfg.Engine.BloomFalseProb)),
		stats:   monitor.NewWorkloadStats(),
		conf:    cfg,
	}

	if cfg.PersistenceEnabled() {
		e.wal = openLog(cfg)
	}
	if e.wal != nil {
		e.replayLog()
	}
	return e
}

func bloomProb(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0.01
	}
	return p
}

func openLog(cfg *config.Config) *storage.WAL {
	if err := os.MkdirAll(cfg.Storage.Path, 0755); err != nil {
		log.Printf("[minikv] Warning: cannot create data dir %s, persistence disabled: %v", cfg.Storage.Path, err)
		return nil
	}
	path := filepath.Join(cfg.Storage.Path, cfg.Storage.LogFile)
	w, err := storage.OpenWAL(path)
	if err != nil {
		log.Printf("[minikv] Warning: cannot open log %s, persistence disabled: %v", path, err)
		return nil
	}
	return w
}

// PersistenceEnabled reports whether mutations are being logged.
func (e *Engine) PersistenceEnabled() bool {
	return e.wal != nil
}

func (e *Engine) replayLog() {
	size, err := e.wal.Size()
	if err != nil || size == 0 {
		return
	}

	log.Printf("[minikv] Replaying log %s (%d bytes)...", e.wal.Path(), size)
	entries, stats, err := e.wal.Replay()
	if err != nil {
		log.Printf("[minikv] Replay stopped early: %v", err)
	}
	for _, entry := range entries {
		switch entry.Op {
		case common.OpSet:
			e.applySet(entry.Key, entry.Value)
		case common.OpDel:
			e.applyDelete(entry.Key)
		}
	}
	e.replay = stats
	if stats.TornBytes > 0 {
		log.Printf("[minikv] Cut %d bytes of torn tail from %s", stats.TornBytes, e.wal.Path())
	}
	log.Printf("[minikv] Replayed %d entries, skipped %d malformed, %d keys live.", stats.Applied, stats.Skipped, e.primary.Len())
}

func (e *Engine) applySet(key string, value []byte) {
	e.primary.Put(key, value)
	e.prefix.Insert(key)
	e.ordered.Insert(key)
	e.cache.Put(key, value)
	e.bloom.Add(key)
}

func (e *Engine) applyDelete(key string) {
	e.primary.Delete(key)
	e.prefix.Remove(key)
	e.ordered.Remove(key)
	e.cache.Erase(key)
}

func (e *Engine) appendLog(entry common.LogEntry) error {
	if e.wal == nil {
		return nil
	}
	if err := e.wal.Append(entry); err != nil {
		return fmt.Errorf("log %s %s: %w", entry.Op, entry.Key, err)
	}
	return nil
}

// Insert stores value under key. The in-memory structures are updated before
// the log append, so a returned log error means the write is visible now but
// will not survive a restart.
func (e *Engine) Insert(key string, value []byte) error {
	switch {
	case key == "":
		return ErrEmptyKey
	case !storage.ValidKey(key):
		return ErrInvalidKey
	case len(value) == 0:
		return ErrEmptyValue
	case !storage.ValidValue(value):
		return ErrInvalidValue
	}
	e.stats.RecordWrite()

	value = bytes.Clone(value)
	e.applySet(key, value)
	return e.appendLog(common.LogEntry{Time: time.Now(), Op: common.OpSet, Key: key, Value: value})
}

// Retrieve is a cache-aside read: the recency cache first, then the primary
// store, populating the cache on a primary hit. The returned slice is a copy.
func (e *Engine) Retrieve(key string) ([]byte, bool) {
	e.stats.RecordRead()

	if val, ok := e.cache.Get(key); ok {
		e.stats.RecordHit()
		return bytes.Clone(val), true
	}
	if !e.bloom.Contains(key) {
		return nil, false
	}
	val, ok := e.primary.Get(key)
	if !ok {
		return nil, false
	}
	e.cache.Put(key, val)
	return bytes.Clone(val), true
}

// Remove deletes key from every structure and logs a DEL whether or not the
// key was present. A key Insert would reject cannot be stored, so removing
// one is a no-op that logs nothing.
func (e *Engine) Remove(key string) error {
	if !storage.ValidKey(key) {
		return nil
	}
	e.stats.RecordDelete()

	e.applyDelete(key)
	return e.appendLog(common.LogEntry{Time: time.Now(), Op: common.OpDel, Key: key})
}

// Exists checks the primary store directly, bypassing the cache.
func (e *Engine) Exists(key string) bool {
	if !e.bloom.Contains(key) {
		return false
	}
	_, ok := e.primary.Get(key)
	return ok
}

func (e *Engine) KeysWithPrefix(prefix string) []string {
	return e.prefix.StartsWith(prefix)
}

func (e *Engine) RangeQuery(start, end string) []string {
	return e.ordered.Range(start, end)
}

// Keys matches "*" (all keys), "<text>*" (prefix) or a literal key.
func (e *Engine) Keys(pattern string) []string {
	switch {
	case pattern == "":
		return []string{}
	case pattern == "*":
		return e.ordered.All()
	case strings.HasSuffix(pattern, "*"):
		return e.prefix.StartsWith(strings.TrimSuffix(pattern, "*"))
	case e.Exists(pattern):
		return []string{pattern}
	default:
		return []string{}
	}
}

// FlushAll empties every structure and truncates the log.
func (e *Engine) FlushAll() error {
	e.primary.Reset()
	e.prefix.Reset()
	e.ordered.Reset()
	e.cache.Reset()
	e.bloom.Reset()

	if e.wal == nil {
		return nil
	}
	if err := e.wal.Truncate(); err != nil {
		return fmt.Errorf("truncate log: %w", err)
	}
	return nil
}

func (e *Engine) Len() int {
	return e.primary.Len()
}

// Check verifies that the primary store and both key indexes hold the same
// key set and that every cached value matches the primary store.
func (e *Engine) Check() error {
	indexes := map[string]KeyIndex{"prefix": e.prefix, "ordered": e.ordered}
	for name, idx := range indexes {
		if idx.Len() != e.primary.Len() {
			return fmt.Errorf("%w: %s has %d keys, primary has %d", ErrIndexMismatch, name, idx.Len(), e.primary.Len())
		}
	}

	var err error
	e.primary.Iterator(func(key string, _ []byte) bool {
		for name, idx := range indexes {
			if !idx.Contains(key) {
				err = fmt.Errorf("%w: %s is missing %q", ErrIndexMismatch, name, key)
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	if e.cache.Len() > e.cache.Capacity() {
		return fmt.Errorf("%w: cache holds %d entries, capacity %d", ErrIndexMismatch, e.cache.Len(), e.cache.Capacity())
	}
	for _, key := range e.cache.Keys() {
		want, ok := e.primary.Get(key)
		if !ok {
			return fmt.Errorf("%w: cache holds evicted key %q", ErrIndexMismatch, key)
		}
		if got, _ := e.cache.Peek(key); !bytes.Equal(got, want) {
			return fmt.Errorf("%w: cache value for %q is stale", ErrIndexMismatch, key)
		}
	}
	return nil
}

func (e *Engine) Stats() map[string]interface{} {
	hits, misses := e.cache.Stats()
	stats := map[string]interface{}{
		"keys":                e.primary.Len(),
		"buckets":             e.primary.Buckets(),
		"load_factor":         e.primary.LoadFactor(),
		"trie_nodes":          e.prefix.Nodes(),
		"cache_entries":       e.cache.Len(),
		"cache_capacity":      e.cache.Capacity(),
		"cache_hits":          hits,
		"cache_misses":        misses,
		"hit_ratio":           e.stats.GetHitRatio(),
		"rw_ratio":            e.stats.GetReadWriteRatio(),
		"persistence_enabled": e.PersistenceEnabled(),
		"replay_applied":      e.replay.Applied,
		"replay_skipped":      e.replay.Skipped,
	}
	for k, v := range e.bloom.Stats() {
		stats[k] = v
	}
	if e.wal != nil {
		if size, err := e.wal.Size(); err == nil {
			stats["log_size_bytes"] = size
		}
	}
	return stats
}

func (e *Engine) Close() error {
	if e.wal == nil {
		return nil
	}
	err := e.wal.Close()
	e.wal = nil
	return err
}
