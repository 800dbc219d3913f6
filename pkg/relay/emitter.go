package relay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/relay/pkg/relay/deadletter"
	"github.com/randalmurphal/relay/pkg/relay/future"
	"github.com/randalmurphal/relay/pkg/relay/observability"
	"github.com/randalmurphal/relay/pkg/relay/registry"
)

// Emitter registers handler chains per event name and dispatches events
// through runners.
//
// All methods are safe for concurrent use. No lock is held while a
// callback runs, so callbacks may call On, Off, Emit and Reemit on the
// emitter that invoked them.
type Emitter struct {
	chains  *registry.Registry[string, *Chain]
	runners *registry.Registry[string, Runner]
	opts    options
}

// New creates an emitter whose default runner is Sequence.
func New(opts ...Option) *Emitter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Emitter{
		chains:  registry.New[string, *Chain](),
		runners: registry.From(baseRunners()).Overlay(o.runners),
		opts:    o,
	}
}

// On appends cb to the handlers of event and returns the subscription.
// scope groups subscriptions for Off and Reemit and, when it implements
// Phaser, decides phase-aware deferral. The emitter only compares scope; it
// never keeps it alive on behalf of the subscriber beyond the subscription.
func (e *Emitter) On(event string, scope any, cb Callback) (*Handler, error) {
	if cb == nil {
		return nil, fmt.Errorf("on %s: %w", event, ErrMissingCallback)
	}
	return e.chain(event).add(scope, cb)
}

// Off removes the handlers of event matching scope and sub, where nil
// matches anything. Returns the number of handlers removed.
//
// Handlers already captured by an in-flight dispatch are still invoked by
// that dispatch.
func (e *Emitter) Off(event string, scope any, sub *Handler) int {
	c, ok := e.chains.Get(event)
	if !ok {
		return 0
	}
	return c.remove(scope, sub)
}

// Emit dispatches event to every handler subscribed at call time.
//
// event may name a runner with a suffix, "name:runner". The error return
// is set only for problems detected before any handler runs
// (ErrUnknownRunner); handler failures reject the returned future with a
// *HandlerError.
func (e *Emitter) Emit(ctx context.Context, event string, args ...any) (*future.Future[[]any], error) {
	name, runnerName := splitEvent(event)
	runner, runnerName, err := e.runner(runnerName)
	if err != nil {
		return nil, fmt.Errorf("emit %s: %w", event, err)
	}

	c := e.chain(name)
	candidates, epoch := c.begin()

	return e.run(ctx, runner, &Dispatch{
		Event:      name,
		Runner:     runnerName,
		Epoch:      epoch,
		Args:       slices.Clone(args),
		Candidates: candidates,
		chain:      c,
	}), nil
}

// Reemit replays the remembered arguments of event without starting a new
// epoch.
//
// Only handlers matching scope and sub (nil matches anything) are replayed,
// and of those only the ones not invoked by the latest dispatch, unless
// senile is true. If event has never completed a dispatch nothing is
// replayed and the future resolves with an empty result.
func (e *Emitter) Reemit(ctx context.Context, event string, senile bool, scope any, sub *Handler) (*future.Future[[]any], error) {
	name, runnerName := splitEvent(event)
	runner, runnerName, err := e.runner(runnerName)
	if err != nil {
		return nil, fmt.Errorf("reemit %s: %w", event, err)
	}

	c := e.chain(name)
	candidates, epoch, args, ok := c.replay(scope, sub, senile)
	if !ok {
		return future.Resolved([]any{}), nil
	}

	return e.run(ctx, runner, &Dispatch{
		Event:      name,
		Runner:     runnerName,
		Epoch:      epoch,
		Args:       args,
		Candidates: candidates,
		Replay:     true,
		chain:      c,
	}), nil
}

// Peek returns the remembered arguments of event. ok is false until a
// dispatch of event has completed.
func (e *Emitter) Peek(event string) (args []any, ok bool) {
	c, found := e.chains.Get(event)
	if !found {
		return nil, false
	}
	return c.Memory()
}

// Events returns the names of every event with a chain, sorted.
func (e *Emitter) Events() []string {
	return e.chains.Names()
}

// HandlerCount returns the number of handlers subscribed to event.
func (e *Emitter) HandlerCount(event string) int {
	c, ok := e.chains.Get(event)
	if !ok {
		return 0
	}
	return c.Len()
}

// Epoch returns the number of dispatches started for event.
func (e *Emitter) Epoch(event string) uint64 {
	c, ok := e.chains.Get(event)
	if !ok {
		return 0
	}
	return c.Epoch()
}

// Runners returns the registered runner names, sorted.
func (e *Emitter) Runners() []string {
	return e.runners.Names()
}

func (e *Emitter) chain(event string) *Chain {
	return e.chains.Ensure(event, newChain)
}

// runner resolves a runner name; "" selects the default.
func (e *Emitter) runner(name string) (Runner, string, error) {
	if name == "" {
		name = RunnerDefault
		if e.opts.defaultRunner != "" {
			name = e.opts.defaultRunner
		}
	}
	r, ok := e.runners.Get(name)
	if !ok {
		return nil, name, fmt.Errorf("%w: %q", ErrUnknownRunner, name)
	}
	return r, name, nil
}

// run starts d on r and attaches logging, metrics, tracing and dead
// letters to the outcome.
func (e *Emitter) run(ctx context.Context, r Runner, d *Dispatch) *future.Future[[]any] {
	d.ID = uuid.NewString()
	d.logger = observability.EnrichLogger(e.opts.logger, d.Event, d.Runner, d.ID)
	d.metrics = e.opts.metrics
	d.spans = e.opts.spans

	ctx, span := e.opts.spans.StartDispatchSpan(ctx, observability.DispatchInfo{
		ID:         d.ID,
		Event:      d.Event,
		Runner:     d.Runner,
		Epoch:      d.Epoch,
		Candidates: len(d.Candidates),
		Replay:     d.Replay,
	})
	observability.LogDispatchStart(d.logger, d.Epoch, len(d.Candidates), d.Replay)
	start := time.Now()

	out := callRunner(ctx, r, d)
	out.OnSettle(func(results []any, err error) {
		elapsed := time.Since(start)
		ms := float64(elapsed.Microseconds()) / 1000
		e.opts.metrics.RecordDispatch(ctx, d.Event, d.Runner, elapsed, err)
		e.opts.spans.EndSpanWithError(span, err)
		if err != nil {
			observability.LogDispatchError(d.logger, err, ms)
			e.deadLetter(ctx, d, err)
			return
		}
		observability.LogDispatchComplete(d.logger, ms, len(results))
	})
	return out
}

// callRunner shields the emitter from runners that panic or return nil.
func callRunner(ctx context.Context, r Runner, d *Dispatch) (out *future.Future[[]any]) {
	defer func() {
		if p := recover(); p != nil {
			out = future.Rejected[[]any](fmt.Errorf("runner %s panic: %v", d.Runner, p))
		}
	}()
	out = r(ctx, d)
	if out == nil {
		out = future.Resolved([]any{})
	}
	return out
}

func (e *Emitter) deadLetter(ctx context.Context, d *Dispatch, err error) {
	if e.opts.deadLetters == nil {
		return
	}

	position := -1
	var herr *HandlerError
	if errors.As(err, &herr) {
		position = herr.Position
	}

	failed := deadletter.NewFailedDispatch(d.Event, d.Runner, d.Epoch, position, d.Args, err)
	if qerr := e.opts.deadLetters.Enqueue(context.WithoutCancel(ctx), failed); qerr != nil {
		observability.LogDeadLetterError(d.logger, qerr)
		return
	}
	e.opts.metrics.RecordDeadLetter(ctx, d.Event)
}

// splitEvent splits "name:runner" on the first colon.
func splitEvent(event string) (name, runner string) {
	name, runner, _ = strings.Cut(event, ":")
	return name, runner
}
