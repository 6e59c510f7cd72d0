package core

import (
	"fmt"
	"log"

	"minikv/pkg/common"
	"minikv/pkg/storage"
)

// ExportSnapshot writes every live record into a SQLite file at path,
// replacing whatever snapshot was there.
func (e *Engine) ExportSnapshot(path string) (int, error) {
	backend, err := storage.NewSQLiteBackend(path)
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	records := make([]common.Record, 0, e.primary.Len())
	e.primary.Iterator(func(key string, value []byte) bool {
		records = append(records, common.Record{Key: key, Value: value})
		return true
	})

	if err := backend.Truncate(); err != nil {
		return 0, fmt.Errorf("clear snapshot: %w", err)
	}
	if err := backend.BatchWrite(records); err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}
	log.Printf("[Snapshot] Exported %d records to %s", len(records), path)
	return len(records), nil
}

// ImportSnapshot inserts every record of a SQLite snapshot through Insert, so
// all structures and the log see the imported keys.
func (e *Engine) ImportSnapshot(path string) (int, error) {
	backend, err := storage.NewSQLiteBackend(path)
	if err != nil {
		return 0, err
	}
	defer backend.Close()

	records, err := backend.LoadAll()
	if err != nil {
		return 0, fmt.Errorf("read snapshot: %w", err)
	}

	n := 0
	for _, rec := range records {
		if err := e.Insert(rec.Key, rec.Value); err != nil {
			log.Printf("[Snapshot] Skipping %s: %v", rec.String(), err)
			continue
		}
		n++
	}
	log.Printf("[Snapshot] Imported %d of %d records from %s", n, len(records), path)
	return n, nil
}
