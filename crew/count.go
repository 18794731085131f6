package crew

import (
	"context"
	"sync"

	"github.com/Comcast/rulegraph/core"
)

// DefaultWorkers is the number of goroutines Count uses when not told
// otherwise.
var DefaultWorkers = 4

// Count checks the messages in parallel and returns the number that
// match.
//
// The automaton is shared by the workers, and each check gets its own
// frontier.  If the context is cancelled, Count returns the context's
// error.
func Count(ctx context.Context, a *core.Automaton, messages []string, workers int) (int, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if len(messages) < workers {
		workers = len(messages)
	}

	var (
		in      = make(chan string)
		results = make([]int, workers)
		wg      = sync.WaitGroup{}
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for msg := range in {
				if a.Matches(msg) {
					results[i]++
				}
			}
		}(i)
	}

	var err error
LOOP:
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break LOOP
		case in <- msg:
		}
	}
	close(in)
	wg.Wait()

	if err != nil {
		return 0, err
	}

	n := 0
	for _, k := range results {
		n += k
	}
	return n, nil
}
