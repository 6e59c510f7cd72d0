package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"minikv/pkg/config"
	"minikv/pkg/core"
)

func main() {
	dir, err := os.MkdirTemp("", "minikv-example-")
	if err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := config.Default()
	cfg.Storage.Path = dir

	engine := core.NewEngine(cfg)
	key := "greeting:en"
	value := "Hello, minikv!"

	fmt.Printf("Writing: Key=%s, Val=%s\n", key, value)
	start := time.Now()
	if err := engine.Insert(key, []byte(value)); err != nil {
		log.Fatalf("Insert failed: %v", err)
	}
	engine.Insert("greeting:de", []byte("Hallo, minikv!"))
	fmt.Printf("Insert done in %v\n", time.Since(start))
	engine.Close()

	// a second engine over the same directory rebuilds its state from the log
	engine = core.NewEngine(cfg)
	defer engine.Close()

	fmt.Printf("Reading Key=%s after restart...\n", key)
	start = time.Now()
	val, ok := engine.Retrieve(key)
	if !ok {
		log.Fatalf("Retrieve failed: %s not found", key)
	}
	fmt.Printf("Got Value: %s (in %v)\n", string(val), time.Since(start))
	fmt.Printf("Keys with prefix 'greeting:': %v\n", engine.KeysWithPrefix("greeting:"))
}
