package media

import (
	"context"
	"log/slog"
	"sync"
)

// AudioPreloader downloads audio in background goroutines. Failures are
// logged and otherwise ignored.
type AudioPreloader struct {
	ctx     context.Context
	library *Library
	sem     chan struct{}
	wg      sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewAudioPreloader(ctx context.Context, library *Library, concurrency int) *AudioPreloader {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &AudioPreloader{
		ctx:      ctx,
		library:  library,
		sem:      make(chan struct{}, concurrency),
		inflight: make(map[string]struct{}),
	}
}

func (p *AudioPreloader) Preload(key string) {
	if key == "" || p.library.Cached(key) {
		return
	}

	p.mu.Lock()
	if _, ok := p.inflight[key]; ok {
		p.mu.Unlock()
		return
	}
	p.inflight[key] = struct{}{}
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			p.mu.Lock()
			delete(p.inflight, key)
			p.mu.Unlock()
		}()

		select {
		case p.sem <- struct{}{}:
		case <-p.ctx.Done():
			return
		}
		defer func() { <-p.sem }()

		if _, err := p.library.Path(p.ctx, key); err != nil {
			slog.Default().Debug("audio preload failed",
				slog.String("key", key),
				slog.Any("error", err),
			)
		}
	}()
}

// Wait blocks until every started preload finished.
func (p *AudioPreloader) Wait() {
	p.wg.Wait()
}

type NopPreloader struct{}

func (NopPreloader) Preload(string) {}
