package updatecheck

import "context"

// Pending is a check running in the background.
type Pending struct {
	result chan *Notice
	cached *Notice
}

// Start runs Check in a goroutine. The cached notice, if any, is captured
// up front so Ready has something to show even when the lookup is slow.
func (c *Checker) Start(ctx context.Context) *Pending {
	p := &Pending{result: make(chan *Notice, 1), cached: c.Cached()}
	go func() {
		p.result <- c.Check(ctx)
	}()
	return p
}

// Ready returns the notice without waiting: the fresh result when the
// check already finished, otherwise the cached one.
func (p *Pending) Ready() *Notice {
	if p == nil {
		return nil
	}
	select {
	case n := <-p.result:
		return n
	default:
		return p.cached
	}
}
