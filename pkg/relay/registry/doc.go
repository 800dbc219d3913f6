// Package registry provides the name tables behind an emitter: event names
// to handler chains, and runner names to dispatch strategies.
//
// Ensure creates a chain the first time an event is touched, exactly once
// even when several goroutines race on a new event:
//
//	chains := registry.New[string, *Chain]()
//	c := chains.Ensure("user.saved", newChain)
//
// Overlay derives one runner table from another without touching either:
//
//	base := registry.From(map[string]Runner{"default": Sequence})
//	hub := base.Overlay(map[string]Runner{"default": Pipeline})
//	// base still maps "default" to Sequence
package registry
