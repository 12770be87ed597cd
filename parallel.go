package camouflage

import (
	"sync"
)

// parallelFor calls fn for every index in [0, n) using up to workers
// goroutines. Indices are dealt round-robin, which balances the triangular
// workload of pairwise passes.
func parallelFor(n, workers int, fn func(i int)) {
	if workers <= 1 || n < 2 {
		for i := range n {
			fn(i)
		}
		return
	}
	workers = min(workers, n)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(first int) {
			defer wg.Done()
			for i := first; i < n; i += workers {
				fn(i)
			}
		}(w)
	}
	wg.Wait()
}
