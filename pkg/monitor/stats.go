package monitor

import (
	"sync/atomic"
)

// WorkloadStats counts engine operations. HitCount is cache hits on reads.
type WorkloadStats struct {
	ReadCount   uint64
	WriteCount  uint64
	DeleteCount uint64
	HitCount    uint64
}

func NewWorkloadStats() *WorkloadStats {
	return &WorkloadStats{}
}

func (ws *WorkloadStats) RecordRead() {
	atomic.AddUint64(&ws.ReadCount, 1)
}

func (ws *WorkloadStats) RecordWrite() {
	atomic.AddUint64(&ws.WriteCount, 1)
}

func (ws *WorkloadStats) RecordDelete() {
	atomic.AddUint64(&ws.DeleteCount, 1)
}

func (ws *WorkloadStats) RecordHit() {
	atomic.AddUint64(&ws.HitCount, 1)
}

func (ws *WorkloadStats) GetReadWriteRatio() float64 {
	reads := atomic.LoadUint64(&ws.ReadCount)
	writes := atomic.LoadUint64(&ws.WriteCount) + atomic.LoadUint64(&ws.DeleteCount)

	if writes == 0 {
		if reads > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(reads) / float64(writes)
}

// GetHitRatio is the share of reads served by the recency cache.
func (ws *WorkloadStats) GetHitRatio() float64 {
	reads := atomic.LoadUint64(&ws.ReadCount)
	if reads == 0 {
		return 0.0
	}
	return float64(atomic.LoadUint64(&ws.HitCount)) / float64(reads)
}

func (ws *WorkloadStats) Reset() {
	atomic.StoreUint64(&ws.ReadCount, 0)
	atomic.StoreUint64(&ws.WriteCount, 0)
	atomic.StoreUint64(&ws.DeleteCount, 0)
	atomic.StoreUint64(&ws.HitCount, 0)
}
