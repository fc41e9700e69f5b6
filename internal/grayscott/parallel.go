package grayscott

import "sync"

// minBandRows keeps tiny grids on the calling goroutine.
const minBandRows = 16

// parallelRows splits [0, n) into at most workers contiguous bands and runs
// fn on each. It returns once every band has finished.
func parallelRows(n, workers int, fn func(start, end int)) {
	if workers <= 1 || n <= minBandRows {
		fn(0, n)
		return
	}

	if n/minBandRows < workers {
		workers = n / minBandRows
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
