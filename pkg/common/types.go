package common

import (
	"fmt"
	"time"
)

// Op is the mutation recorded by a log entry.
type Op string

const (
	OpSet Op = "SET"
	OpDel Op = "DEL"
)

// Record is one key/value pair held by the engine.
type Record struct {
	Key   string
	Value []byte
}

func (r *Record) String() string {
	return fmt.Sprintf("Record{Key: %s, ValLen: %d}", r.Key, len(r.Value))
}

// LogEntry is one mutation in the persistence log. Value is only set for OpSet.
type LogEntry struct {
	Time  time.Time
	Op    Op
	Key   string
	Value []byte
}

func (e *LogEntry) String() string {
	if e.Op == OpDel {
		return fmt.Sprintf("LogEntry{DEL %s}", e.Key)
	}
	return fmt.Sprintf("LogEntry{SET %s, ValLen: %d}", e.Key, len(e.Value))
}
