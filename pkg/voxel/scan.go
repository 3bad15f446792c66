package voxel

import (
	"runtime"
	"sync"
)

// scanChunk is the number of cells a worker tests per task. Small enough to
// balance uneven fields, large enough that channel traffic stays negligible.
const scanChunk = 4096

// Scan runs test over the index domain [0, n) and collects the Refs of the
// cells that pass. The domain is partitioned into fixed-size chunks; workers
// test chunks independently and the per-chunk partial results are
// concatenated in chunk order, so the output is identical to a sequential
// scan regardless of worker scheduling.
//
// test maps a cell index to the Ref that identifies it and reports whether
// the cell is active. It must be safe for concurrent calls on distinct
// indices; per-cell tests have no cross-cell dependencies.
func Scan(n int, test func(i int) (Ref, bool)) []Ref {
	if n <= 0 {
		return []Ref{}
	}

	numChunks := (n + scanChunk - 1) / scanChunk
	workers := runtime.NumCPU()
	if workers > numChunks {
		workers = numChunks
	}

	if workers <= 1 {
		out := make([]Ref, 0)
		for i := 0; i < n; i++ {
			if ref, ok := test(i); ok {
				out = append(out, ref)
			}
		}
		return out
	}

	partials := make([][]Ref, numChunks)
	chunks := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				lo := c * scanChunk
				hi := lo + scanChunk
				if hi > n {
					hi = n
				}
				var part []Ref
				for i := lo; i < hi; i++ {
					if ref, ok := test(i); ok {
						part = append(part, ref)
					}
				}
				partials[c] = part
			}
		}()
	}

	for c := 0; c < numChunks; c++ {
		chunks <- c
	}
	close(chunks)
	wg.Wait()

	out := make([]Ref, 0)
	for _, part := range partials {
		out = append(out, part...)
	}
	return out
}
