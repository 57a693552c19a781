package parallel

import "sync"

import "go.uber.org/atomic"

// ForEach calls body for every integer from 0 to length using at most limit
// goroutines. It returns once every call has returned.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}
	if limit == 1 {
		for i := 0; i < length; i++ {
			body(i)
		}
		return
	}

	var next atomic.Int64
	next.Store(-1)
	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Inc())
				if i >= length {
					return
				}
				body(i)
			}
		}()
	}
	wg.Wait()
}
