package relay

import (
	"slices"
	"sync"
)

// Chain holds the ordered handlers of one event together with its dispatch
// epoch and the arguments of the last completed dispatch.
//
// A chain is never removed from its emitter, even once empty, so that the
// epoch and memory stay available to Reemit and Peek.
type Chain struct {
	name string

	mu         sync.Mutex
	handlers   []*Handler
	handled    uint64
	memory     []any
	remembered bool
}

func newChain(name string) *Chain {
	return &Chain{name: name}
}

// Name returns the event name.
func (c *Chain) Name() string {
	return c.name
}

// Len returns the number of subscribed handlers.
func (c *Chain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers)
}

// Epoch returns the number of dispatches started on the chain.
func (c *Chain) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handled
}

// Memory returns a copy of the last remembered arguments.
func (c *Chain) Memory() ([]any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.remembered {
		return nil, false
	}
	return slices.Clone(c.memory), true
}

// add appends a handler at the tail.
func (c *Chain) add(scope any, cb Callback) (*Handler, error) {
	if cb == nil {
		return nil, ErrMissingCallback
	}
	h := newHandler(scope, cb)

	c.mu.Lock()
	c.handlers = append(c.handlers, h)
	c.mu.Unlock()
	return h, nil
}

// remove drops every handler matching scope and target, keeping the order
// of the survivors. Returns the number removed.
func (c *Chain) remove(scope any, target *Handler) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := make([]*Handler, 0, len(c.handlers))
	for _, h := range c.handlers {
		if !h.matches(scope, target) {
			kept = append(kept, h)
		}
	}
	removed := len(c.handlers) - len(kept)
	if removed > 0 {
		// Fresh slice: snapshots taken earlier keep their own view.
		c.handlers = kept
	}
	return removed
}

// begin snapshots every handler and allocates the next epoch.
func (c *Chain) begin() ([]*Handler, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	candidates := slices.Clone(c.handlers)
	c.handled++
	return candidates, c.handled
}

// replay snapshots the handlers selected for a replay, together with the
// current epoch and remembered arguments. ok is false if nothing has been
// remembered yet.
func (c *Chain) replay(scope any, target *Handler, senile bool) (candidates []*Handler, epoch uint64, args []any, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.remembered {
		return nil, c.handled, nil, false
	}

	for _, h := range c.handlers {
		if !h.matches(scope, target) {
			continue
		}
		if senile || h.Handled() != c.handled {
			candidates = append(candidates, h)
		}
	}
	return candidates, c.handled, slices.Clone(c.memory), true
}

// remember stores args as the chain memory.
func (c *Chain) remember(args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory = slices.Clone(args)
	c.remembered = true
}
