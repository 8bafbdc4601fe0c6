package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// workPool bounds how many uploads are decoded at once across all sessions.
// Spreadsheets are decoded fully in memory, so unbounded fan-out risks OOM.
type workPool struct {
	sem chan struct{}
}

// newWorkPool sizes the pool to the CPU count when size is zero
func newWorkPool(size int, log zerolog.Logger) *workPool {
	if size <= 0 {
		size = runtime.NumCPU()
		if size < 2 {
			size = 2
		}
	}
	log.Info().Int("max_workers", size).Msg("Initializing decode worker pool")
	return &workPool{sem: make(chan struct{}, size)}
}

// Acquire blocks until a slot is free or ctx is done
func (p *workPool) Acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot taken by Acquire
func (p *workPool) Release() {
	<-p.sem
}

// sessionGate lets one operation run per session at a time
type sessionGate struct {
	mu   sync.Mutex
	busy map[string]bool
}

func newSessionGate() *sessionGate {
	return &sessionGate{busy: make(map[string]bool)}
}

// TryEnter marks the session busy. It returns false if it already was.
func (g *sessionGate) TryEnter(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy[sessionID] {
		return false
	}
	g.busy[sessionID] = true
	return true
}

// Leave clears the busy mark
func (g *sessionGate) Leave(sessionID string) {
	g.mu.Lock()
	delete(g.busy, sessionID)
	g.mu.Unlock()
}
