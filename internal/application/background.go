package application

import (
	"context"
	"sync"
)

// Background tracks goroutines that must finish before shared resources
// such as the database are closed.
type Background struct {
	wg sync.WaitGroup
}

// Go runs fn on a new tracked goroutine.
func (b *Background) Go(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Wait blocks until every tracked goroutine has returned or ctx expires.
func (b *Background) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
