package utils

import "sync"

// ForkJoin runs work(bucket) once per bucket of pm, joining before
// returning. This is the reusable form of the fork-join idiom used
// throughout Notargets-gocfd/model_problems/Euler2D/euler.go:
//
//	for np := 0; np < NP; np++ {
//	    wg.Add(1)
//	    go func(np int) { ...; wg.Done() }(np)
//	}
//	wg.Wait()
//
// In this module only the conjugate-gradient solver uses it, for its
// per-iteration vector updates and inner products (and the DC-term mean);
// splatting, operator assembly, the sparse matrix-vector multiply and
// iso-extraction run on a single goroutine.
func ForkJoin(pm *PartitionMap, work func(bucket int)) {
	if pm.ParallelDegree == 1 {
		work(0)
		return
	}
	var wg sync.WaitGroup
	wg.Add(pm.ParallelDegree)
	for n := 0; n < pm.ParallelDegree; n++ {
		go func(n int) {
			defer wg.Done()
			work(n)
		}(n)
	}
	wg.Wait()
}
