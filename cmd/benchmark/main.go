package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"minikv/pkg/config"
	"minikv/pkg/core"
)

func main() {
	nReq := flag.Int("n", 50000, "Number of keys per run")
	capacity := flag.Int("cache", 1024, "Recency cache capacity")
	persist := flag.Bool("persist", true, "Log every mutation to disk")
	flag.Parse()

	dir, err := os.MkdirTemp("", "minikv-bench-")
	if err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := config.Default()
	cfg.Storage.Path = dir
	cfg.Storage.Persistence = persist
	cfg.Engine.CacheCapacity = *capacity

	engine := core.NewEngine(cfg)
	defer engine.Close()

	fmt.Printf("minikv Engine Benchmark (N=%d, cache=%d, persist=%v)\n", *nReq, *capacity, *persist)
	fmt.Println("---------------------------------------------------")

	report("Insert", *nReq, func(i int) {
		if err := engine.Insert(benchKey(i), []byte("bench_data")); err != nil {
			log.Fatalf("Insert failed: %v", err)
		}
	})
	report("Retrieve (cold)", *nReq, func(i int) {
		engine.Retrieve(benchKey(i))
	})
	hot := max(*capacity, 1)
	report("Retrieve (hot)", *nReq, func(i int) {
		engine.Retrieve(benchKey(i % hot))
	})
	report("Prefix", 1000, func(i int) {
		engine.KeysWithPrefix(fmt.Sprintf("key:%03d", i))
	})
	report("Range", 1000, func(i int) {
		engine.RangeQuery(benchKey(i*10), benchKey(i*10+100))
	})
	report("Remove", *nReq, func(i int) {
		engine.Remove(benchKey(i))
	})

	fmt.Println("---------------------------------------------------")
	stats := engine.Stats()
	fmt.Printf("cache hit ratio: %.2f  buckets: %v  trie nodes: %v\n", stats["hit_ratio"], stats["buckets"], stats["trie_nodes"])
}

func benchKey(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

func report(name string, n int, op func(i int)) {
	start := time.Now()
	for i := 0; i < n; i++ {
		op(i)
	}
	d := time.Since(start)
	fmt.Printf("   %-16s Time: %v | QPS: %.0f\n", name, d, float64(n)/d.Seconds())
}
