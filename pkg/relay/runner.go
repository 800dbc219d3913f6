package relay

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/relay/pkg/relay/future"
	"github.com/randalmurphal/relay/pkg/relay/observability"
)

// Runner is a dispatch strategy. It drives the candidates of d and returns
// a future for the aggregate result.
//
// A runner must invoke candidates one at a time, in order, and must not
// invoke the next candidate before the previous one's result has settled.
type Runner func(ctx context.Context, d *Dispatch) *future.Future[[]any]

// Built-in runner names.
const (
	RunnerDefault  = "default"
	RunnerSequence = "sequence"
	RunnerPipeline = "pipeline"
)

// Dispatch is the input of a Runner: one emit or reemit of one event.
type Dispatch struct {
	ID         string     // Unique per dispatch, for logs and spans
	Event      string     // Event name without runner suffix
	Runner     string     // Name the runner was selected by
	Epoch      uint64     // Stamp given to every invoked candidate
	Args       []any      // Arguments passed to the first candidate
	Candidates []*Handler // Snapshot taken when the dispatch started
	Replay     bool       // True for Reemit

	chain   *Chain
	skip    func(*Handler) bool
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// Stamp records that h is being invoked by this dispatch.
func (d *Dispatch) Stamp(h *Handler) {
	h.handled.Store(d.Epoch)
}

// Skip reports whether h must be passed over without stamping or invoking
// it. Skipped handlers are reported to logs, metrics and the dispatch span.
func (d *Dispatch) Skip(ctx context.Context, h *Handler) bool {
	if d.skip == nil || !d.skip(h) {
		return false
	}

	phase := ""
	if p, ok := h.scope.(Phaser); ok {
		phase = p.Phase().String()
	}
	observability.LogHandlerDeferred(d.logger, scopeName(h.scope), phase)
	d.metrics.RecordDeferred(ctx, d.Event)
	d.spans.AddSpanEvent(ctx, "handler.deferred",
		attribute.String("scope", scopeName(h.scope)),
		attribute.String("phase", phase),
	)
	return true
}

// Invoke calls h with a copy of args, so a handler writing to its
// arguments cannot change what the caller, later handlers or the event
// memory see. Errors and panics come back as *HandlerError.
func (d *Dispatch) Invoke(ctx context.Context, position int, h *Handler, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = d.failure(position, fmt.Errorf("handler panic: %v", r))
		}
		d.metrics.RecordHandler(ctx, d.Event, err)
	}()

	result, err = h.callback(ctx, slices.Clone(args)...)
	if err != nil {
		return nil, d.failure(position, err)
	}
	return result, nil
}

// Remember stores args as the memory of the dispatched event.
func (d *Dispatch) Remember(args []any) {
	d.chain.remember(args)
}

func (d *Dispatch) failure(position int, err error) error {
	return &HandlerError{
		Event:    d.Event,
		Runner:   d.Runner,
		Epoch:    d.Epoch,
		Position: position,
		Err:      err,
	}
}

// walker steps through the candidates of one dispatch.
type walker struct {
	ctx  context.Context
	d    *Dispatch
	args []any
	pos  int
	out  *future.Future[[]any]

	// settle consumes the settled result of one candidate.
	settle func(w *walker, result any)
	// finish produces the resolved value once candidates are exhausted.
	finish func(w *walker) []any
}

func walk(ctx context.Context, d *Dispatch, settle func(*walker, any), finish func(*walker) []any) *future.Future[[]any] {
	w := &walker{
		ctx:    ctx,
		d:      d,
		args:   d.Args,
		out:    future.New[[]any](),
		settle: settle,
		finish: finish,
	}
	w.next()
	return w.out
}

// next invokes candidates until one suspends, fails, or the snapshot is
// exhausted. A suspended candidate re-enters next from its continuation.
func (w *walker) next() {
	for {
		h, pos, ok := w.advance()
		if !ok {
			w.out.Resolve(w.finish(w))
			return
		}

		w.d.Stamp(h)
		result, err := w.d.Invoke(w.ctx, pos, h, w.args)
		if err != nil {
			w.out.Reject(err)
			return
		}

		th, result := pending(result)
		if th != nil {
			w.await(pos, th)
			return
		}
		w.settle(w, result)
	}
}

// await resumes the walk once th settles. Thenables resolving to further
// thenables are followed.
func (w *walker) await(pos int, th future.Thenable) {
	th.Notify(func(v any, err error) {
		if err != nil {
			w.out.Reject(w.d.failure(pos, err))
			return
		}
		inner, v := pending(v)
		if inner != nil {
			w.await(pos, inner)
			return
		}
		w.settle(w, v)
		w.next()
	})
}

// pending splits a handler result into a Thenable to wait on, or a plain
// value. A nil pointer that implements Thenable is a nil result.
func pending(v any) (future.Thenable, any) {
	th, ok := v.(future.Thenable)
	if !ok {
		return nil, v
	}
	if rv := reflect.ValueOf(th); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return th, nil
}

// advance returns the next candidate that is not skipped.
func (w *walker) advance() (*Handler, int, bool) {
	for w.pos < len(w.d.Candidates) {
		pos := w.pos
		h := w.d.Candidates[pos]
		w.pos++
		if w.d.Skip(w.ctx, h) {
			continue
		}
		return h, pos, true
	}
	return nil, 0, false
}

// Sequence invokes every candidate with the dispatch arguments and resolves
// with their results in order. On completion the dispatch arguments become
// the event memory.
func Sequence(ctx context.Context, d *Dispatch) *future.Future[[]any] {
	results := make([]any, 0, len(d.Candidates))
	return walk(ctx, d,
		func(_ *walker, result any) {
			results = append(results, result)
		},
		func(w *walker) []any {
			w.d.Remember(w.d.Args)
			return results
		},
	)
}

// Pipeline threads each candidate's result into the next candidate's
// arguments and resolves with the final arguments, which also become the
// event memory.
//
// A nil result keeps the current arguments, a []any result replaces them,
// and any other result becomes the single argument.
func Pipeline(ctx context.Context, d *Dispatch) *future.Future[[]any] {
	return walk(ctx, d,
		func(w *walker, result any) {
			switch v := result.(type) {
			case nil:
			case []any:
				w.args = v
			default:
				w.args = []any{v}
			}
		},
		func(w *walker) []any {
			w.d.Remember(w.args)
			return w.args
		},
	)
}

// baseRunners is the runner table of a plain Emitter.
func baseRunners() map[string]Runner {
	return map[string]Runner{
		RunnerDefault:  Sequence,
		RunnerSequence: Sequence,
		RunnerPipeline: Pipeline,
	}
}
