package batch

import (
	"runtime"
)

// perPageMB is the rough memory cost of one browser tab
const perPageMB = 50

// OptimalConcurrency derives a worker count from CPU and free heap, capped by
// limit when limit > 0 (the browser pool size: more workers than tabs only
// queue on the pool).
func OptimalConcurrency(limit int) int {
	numCPU := runtime.NumCPU()

	// pages are I/O bound
	optimal := numCPU * 3

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	availMB := (m.Sys - m.Alloc) / 1024 / 1024
	maxByMemory := int(availMB / perPageMB)

	if optimal > 50 {
		optimal = 50
	}
	if maxByMemory > 0 && maxByMemory < optimal {
		optimal = maxByMemory
	}
	if limit > 0 && optimal > limit {
		optimal = limit
	}
	return max(optimal, 1)
}
