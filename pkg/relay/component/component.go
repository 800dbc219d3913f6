// Package component provides the lifecycle base that hub subscribers embed.
//
// A Component moves through a fixed set of phases:
//
//	new -> initializing -> initialized -> starting -> started
//	    -> stopping -> stopped -> finalizing -> finalized
//
// The hub consults the phase of a subscriber's scope on every dispatch and
// defers handlers whose component is still being set up or torn down.
package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Phase is a lifecycle phase name.
type Phase string

// Lifecycle phases in the order a component passes through them.
const (
	PhaseNew          Phase = ""
	PhaseInitializing Phase = "initializing"
	PhaseInitialized  Phase = "initialized"
	PhaseStarting     Phase = "starting"
	PhaseStarted      Phase = "started"
	PhaseStopping     Phase = "stopping"
	PhaseStopped      Phase = "stopped"
	PhaseFinalizing   Phase = "finalizing"
	PhaseFinalized    Phase = "finalized"
)

// String returns the phase name, "new" for the zero phase.
func (p Phase) String() string {
	if p == PhaseNew {
		return "new"
	}
	return string(p)
}

// Transitional reports whether p is part of setup or teardown
// (initializing, initialized, finalizing, finalized).
func (p Phase) Transitional() bool {
	switch p {
	case PhaseInitializing, PhaseInitialized, PhaseFinalizing, PhaseFinalized:
		return true
	default:
		return false
	}
}

// ErrInvalidTransition is returned when a lifecycle method is called from
// a phase that does not allow it.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Hook runs while a component is inside a transitional phase.
type Hook func(ctx context.Context) error

var (
	countersMu sync.Mutex
	counters   = map[string]int{}
)

// Component tracks a lifecycle phase and a stable display name.
// The zero value is not usable; use New.
type Component struct {
	name     string
	instance int

	mu    sync.Mutex // serializes transitions
	phase atomic.Value
}

// New creates a component in PhaseNew. Each call with the same name gets the
// next instance number, starting at 1.
func New(name string) *Component {
	countersMu.Lock()
	counters[name]++
	n := counters[name]
	countersMu.Unlock()

	c := &Component{name: name, instance: n}
	c.phase.Store(PhaseNew)
	return c
}

// Name returns the component name without the instance number.
func (c *Component) Name() string {
	return c.name
}

// Instance returns the component's instance number.
func (c *Component) Instance() int {
	return c.instance
}

// String returns "name@instance".
func (c *Component) String() string {
	return fmt.Sprintf("%s@%d", c.name, c.instance)
}

// Phase returns the current lifecycle phase. Safe for concurrent use.
func (c *Component) Phase() Phase {
	return c.phase.Load().(Phase)
}

// Initialize moves a new component through initializing to initialized,
// running hook in between.
func (c *Component) Initialize(ctx context.Context, hook Hook) error {
	return c.transition(ctx, hook, PhaseInitializing, PhaseInitialized, PhaseNew)
}

// Start moves an initialized component through starting to started.
func (c *Component) Start(ctx context.Context, hook Hook) error {
	return c.transition(ctx, hook, PhaseStarting, PhaseStarted, PhaseInitialized)
}

// Stop moves a started component through stopping to stopped.
func (c *Component) Stop(ctx context.Context, hook Hook) error {
	return c.transition(ctx, hook, PhaseStopping, PhaseStopped, PhaseStarted)
}

// Finalize moves a stopped (or never started) component through finalizing
// to finalized.
func (c *Component) Finalize(ctx context.Context, hook Hook) error {
	return c.transition(ctx, hook, PhaseFinalizing, PhaseFinalized, PhaseStopped, PhaseInitialized)
}

// transition runs hook while the component sits in during. On hook failure
// the component returns to the phase it started from.
func (c *Component) transition(ctx context.Context, hook Hook, during, after Phase, from ...Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := c.Phase()
	allowed := false
	for _, p := range from {
		if current == p {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s cannot enter %s from %s", ErrInvalidTransition, c, during, current)
	}

	c.phase.Store(during)
	if hook != nil {
		if err := hook(ctx); err != nil {
			c.phase.Store(current)
			return fmt.Errorf("%s %s: %w", c, during, err)
		}
	}
	c.phase.Store(after)
	return nil
}
