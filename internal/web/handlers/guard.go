package handlers

import "sync/atomic"

// Guard admits one capture pipeline at a time. Requests arriving while it is held are refused.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire takes the guard and reports whether it was free.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}

// Busy reports whether a pipeline is running.
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
