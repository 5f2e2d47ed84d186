// Package parallel runs per-member work across a worker pool.
//
// A network's ensemble member columns are logically independent: the
// unit of exclusivity is the member index, not a lock. ForMembers
// encodes that ownership rule: each member is handed to exactly one
// goroutine, which may run a full forward→tangent-linear/adjoint
// sequence for it while the parameter vector stays shared read-only.
package parallel

import (
	"runtime"
	"sync"
)

// ForMembers executes fn(member) for member in [0, members), spreading
// members across at most workers goroutines. Each member is processed
// by exactly one goroutine. workers <= 0 selects runtime.NumCPU().
//
// fn must not write any state shared between members; per-member
// caches inside a network are safe by construction.
func ForMembers(members, workers int, fn func(member int)) {
	if members <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > members {
		workers = members
	}
	if workers == 1 {
		for m := 0; m < members; m++ {
			fn(m)
		}
		return
	}

	var wg sync.WaitGroup
	next := make(chan int)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for m := range next {
				fn(m)
			}
		}()
	}

	for m := 0; m < members; m++ {
		next <- m
	}
	close(next)
	wg.Wait()
}
