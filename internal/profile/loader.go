package profile

import (
	"context"
	"sync"
	"time"

	"github.com/shiva-garg-77/Swaggo-sub013/internal/models"
)

const (
	defaultBatchWindow = 2 * time.Millisecond
	defaultMaxBatch    = 200
)

// BatchLoader coalesces concurrent Resolve calls into one underlying
// lookup per batch window, avoiding N+1 queries when decorating chat
// lists. Results are not cached across batches.
type BatchLoader struct {
	inner  Directory
	window time.Duration
	max    int

	mu      sync.Mutex
	pending *batch
}

type batch struct {
	ids  map[string]struct{}
	done chan struct{}

	result map[string]models.Profile
	err    error
}

func NewBatchLoader(inner Directory, window time.Duration, maxBatch int) *BatchLoader {
	if window <= 0 {
		window = defaultBatchWindow
	}
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	return &BatchLoader{inner: inner, window: window, max: maxBatch}
}

func (l *BatchLoader) Resolve(ctx context.Context, profileIDs []string) (map[string]models.Profile, error) {
	if len(profileIDs) == 0 {
		return map[string]models.Profile{}, nil
	}

	l.mu.Lock()
	b := l.pending
	flushNow := false
	if b == nil {
		b = &batch{ids: make(map[string]struct{}), done: make(chan struct{})}
		l.pending = b
		time.AfterFunc(l.window, func() { l.flush(b) })
	}
	for _, id := range profileIDs {
		b.ids[id] = struct{}{}
	}
	if len(b.ids) >= l.max {
		flushNow = true
	}
	l.mu.Unlock()

	if flushNow {
		l.flush(b)
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if b.err != nil {
		return nil, b.err
	}

	out := make(map[string]models.Profile, len(profileIDs))
	for _, id := range profileIDs {
		if p, ok := b.result[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// flush runs the batch exactly once; a timer fire and an early max-batch
// flush can both race here.
func (l *BatchLoader) flush(b *batch) {
	l.mu.Lock()
	if l.pending != b {
		l.mu.Unlock()
		return
	}
	l.pending = nil
	ids := make([]string, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	b.result, b.err = l.inner.Resolve(ctx, ids)
	close(b.done)
}
