package relay

import (
	"context"

	"github.com/randalmurphal/relay/pkg/relay/component"
	"github.com/randalmurphal/relay/pkg/relay/future"
)

// Phaser is implemented by scopes that have a lifecycle phase.
// *component.Component satisfies it.
type Phaser interface {
	Phase() component.Phase
}

// Compile-time interface check.
var _ Phaser = (*component.Component)(nil)

// Deferred reports whether handlers subscribed with scope must currently be
// passed over: the scope is initializing, initialized, finalizing or
// finalized. Scopes without a phase are never deferred.
func Deferred(scope any) bool {
	p, ok := scope.(Phaser)
	return ok && p.Phase().Transitional()
}

// PhaseAware decorates r so that candidates whose scope is Deferred are
// skipped: not stamped, not invoked, and not counted as results. They stay
// eligible for the next dispatch or replay.
func PhaseAware(r Runner) Runner {
	return func(ctx context.Context, d *Dispatch) *future.Future[[]any] {
		prev := d.skip
		d.skip = func(h *Handler) bool {
			if prev != nil && prev(h) {
				return true
			}
			return Deferred(h.scope)
		}
		return r(ctx, d)
	}
}
