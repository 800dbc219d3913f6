package hub

import (
	"context"
	"io"

	"github.com/randalmurphal/relay/pkg/relay"
	"github.com/randalmurphal/relay/pkg/relay/deadletter"
	"github.com/randalmurphal/relay/pkg/relay/future"
)

// Hub is an emitter preconfigured for lifecycle-aware publish/subscribe.
//
// Its runners skip handlers whose scope is mid-setup or mid-teardown (see
// relay.PhaseAware), and events without a ":runner" suffix go through the
// pipeline runner.
type Hub struct {
	emitter     *relay.Emitter
	deadLetters deadletter.Store
	closers     []io.Closer
}

// New builds a private hub. opts are applied after the hub runners, so they
// may replace them.
func New(opts ...relay.Option) *Hub {
	base := []relay.Option{
		relay.WithRunners(map[string]relay.Runner{
			relay.RunnerDefault:  relay.PhaseAware(relay.Pipeline),
			relay.RunnerSequence: relay.PhaseAware(relay.Sequence),
			relay.RunnerPipeline: relay.PhaseAware(relay.Pipeline),
		}),
	}
	return &Hub{emitter: relay.New(append(base, opts...)...)}
}

// Emitter returns the underlying emitter, for introspection.
func (h *Hub) Emitter() *relay.Emitter {
	return h.emitter
}

// DeadLetters returns the dead letter store opened from settings, or nil.
func (h *Hub) DeadLetters() deadletter.Store {
	return h.deadLetters
}

// Subscribe appends cb to the handlers of event and returns the
// subscription.
func (h *Hub) Subscribe(event string, scope any, cb relay.Callback) (*relay.Handler, error) {
	return h.emitter.On(event, scope, cb)
}

// Unsubscribe removes the handlers of event matching scope and sub (nil
// matches anything) and returns how many were removed.
func (h *Hub) Unsubscribe(event string, scope any, sub *relay.Handler) int {
	return h.emitter.Off(event, scope, sub)
}

// Publish dispatches event to its subscribers.
func (h *Hub) Publish(ctx context.Context, event string, args ...any) (*future.Future[[]any], error) {
	return h.emitter.Emit(ctx, event, args...)
}

// Republish replays the last published arguments of event to the matching
// subscribers that missed it, or to all matching subscribers when senile
// is true.
func (h *Hub) Republish(ctx context.Context, event string, scope any, sub *relay.Handler, senile bool) (*future.Future[[]any], error) {
	return h.emitter.Reemit(ctx, event, senile, scope, sub)
}

// Peek returns the last published arguments of event.
func (h *Hub) Peek(event string) ([]any, bool) {
	return h.emitter.Peek(event)
}

// Close releases resources the hub opened itself, such as a dead letter
// store created from settings. Hubs built with New own nothing.
func (h *Hub) Close() error {
	var first error
	for _, c := range h.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}
