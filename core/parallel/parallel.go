// Package parallel splits row-oriented loops across CPU cores.
//
// Every helper hands each worker a disjoint [start, end) range, so callers that
// only write to rows inside their own range need no further synchronisation.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold is the row count at or below which work runs sequentially.
const DefaultThreshold = 1000

// Chunks divides items into at most workers contiguous [start, end) ranges.
// Ranges are returned in order and never empty.
func Chunks(items, workers int) [][2]int {
	if items <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > items {
		workers = items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	chunks := make([][2]int, 0, workers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}

// Parallelize divides items according to the number of CPU cores and runs fn
// concurrently for each range, returning once every range has been processed.
func Parallelize(items int, fn func(start, end int)) {
	chunks := Chunks(items, runtime.NumCPU())
	if len(chunks) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds threshold;
// otherwise fn is called once with the full range on the calling goroutine.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
