package media

import (
	"context"
	"sync"
)

// Progress is called once per key after it was processed.
type Progress func(done, total int, key string, err error)

type WarmResult struct {
	Cached int
	Failed int
}

// Warmer fills the cache for a whole catalog ahead of offline use.
type Warmer struct {
	library     *Library
	concurrency int
}

func NewWarmer(library *Library, concurrency int) *Warmer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Warmer{
		library:     library,
		concurrency: concurrency,
	}
}

// Warm caches every key. A failed key does not stop the others; only
// cancellation of ctx returns an error.
func (w *Warmer) Warm(ctx context.Context, keys []string, progress Progress) (WarmResult, error) {
	keys = uniqueKeys(keys)

	jobs := make(chan string)
	var (
		mu     sync.Mutex
		done   int
		result WarmResult
		wg     sync.WaitGroup
	)
	for i := 0; i < min(w.concurrency, len(keys)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				_, err := w.library.Path(ctx, key)

				mu.Lock()
				done++
				if err != nil {
					result.Failed++
				} else {
					result.Cached++
				}
				if progress != nil {
					progress(done, len(keys), key, err)
				}
				mu.Unlock()
			}
		}()
	}

	var ctxErr error
send:
	for _, key := range keys {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		select {
		case jobs <- key:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break send
		}
	}
	close(jobs)
	wg.Wait()

	return result, ctxErr
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	result := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, key)
	}
	return result
}
