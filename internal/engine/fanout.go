package engine

import (
	"sync"

	"github.com/stlalpha/mudnet/internal/netio"
)

// maxFanoutWorkers caps how many connections each stage processes
// concurrently, so a tick with thousands of ready connections doesn't
// spawn thousands of goroutines at once.
const maxFanoutWorkers = 16

// fanout runs fn(tokens[i]) for every token, bounded to workers
// concurrent goroutines. Each invocation touches only its own
// connection's entry (spec.md §5: "no cross-connection state is
// mutated by these stages"), so no lock is needed beyond whatever fn
// itself takes internally.
func fanout(tokens []netio.Token, workers int, fn func(netio.Token)) {
	if len(tokens) == 0 {
		return
	}
	if workers <= 0 || workers > len(tokens) {
		workers = len(tokens)
	}

	jobs := make(chan netio.Token, len(tokens))
	for _, tok := range tokens {
		jobs <- tok
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for tok := range jobs {
				fn(tok)
			}
		}()
	}
	wg.Wait()
}
