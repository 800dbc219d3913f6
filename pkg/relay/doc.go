// Package relay is an in-process event emitter with ordered, serialized
// handler chains, replay of the last dispatch, and pluggable dispatch
// strategies.
//
// # Subscribing and Emitting
//
// Handlers are registered per event name together with a scope value that
// identifies the subscriber:
//
//	e := relay.New()
//	sub, err := e.On("user.saved", svc, func(ctx context.Context, args ...any) (any, error) {
//	    return svc.index(args[0].(User)), nil
//	})
//
//	f, err := e.Emit(ctx, "user.saved", user)
//	if err != nil {
//	    return err // unknown runner
//	}
//	results, err := f.Await(ctx)
//
// The returned *Handler is the subscription. Off and Reemit select
// handlers by scope, by subscription, or both; nil matches anything:
//
//	e.Off("user.saved", nil, sub) // just this subscription
//	e.Off("user.saved", svc, nil) // everything svc subscribed
//
// Every dispatch snapshots the chain before invoking anything. Handlers
// subscribed afterwards wait for the next dispatch; handlers unsubscribed
// afterwards are still invoked by the dispatch that captured them.
//
// # Runners
//
// A runner decides how handler results combine. The event name selects one
// with a suffix: "user.saved:pipeline".
//
//   - Sequence (the Emitter default) calls every handler with the same
//     arguments and resolves with the list of their results.
//   - Pipeline feeds each handler's result to the next one and resolves
//     with the final arguments.
//
// Both invoke handlers strictly one at a time. A handler may return a
// future.Thenable; the dispatch resumes when it settles, on the goroutine
// that settles it. The first failure aborts the dispatch and rejects its
// future with a *HandlerError.
//
// # Replay and Memory
//
// Each event keeps an epoch counter, bumped by every Emit, and the
// arguments of its last completed dispatch. Reemit replays those arguments
// to the handlers that the latest Emit did not reach (for example handlers
// subscribed since), without bumping the epoch:
//
//	e.Emit(ctx, "config.loaded", cfg)
//	e.On("config.loaded", late, late.onConfig)
//	e.Reemit(ctx, "config.loaded", false, late, nil) // only late sees cfg
//
// Peek returns the remembered arguments directly.
//
// # Lifecycle Phases
//
// PhaseAware decorates a runner so that handlers whose scope is a
// component in setup or teardown are skipped without being marked as
// handled. The hub package installs phase-aware runners by default.
package relay
