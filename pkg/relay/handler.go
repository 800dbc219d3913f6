package relay

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
)

// Callback is a subscribed function.
//
// The returned value steers the dispatch:
//   - nil: nothing
//   - []any: a list (spread into the next handler's arguments by Pipeline)
//   - future.Thenable: pending; the dispatch resumes once it settles and
//     the settled value is read with the same rules
//   - anything else: a single value
//
// A non-nil error, a panic, or a rejected Thenable fails the dispatch.
type Callback func(ctx context.Context, args ...any) (any, error)

// Handler is one subscription in a chain. The *Handler returned by On is
// the subscription's identity: pass it to Off or Reemit to select exactly
// that subscription.
type Handler struct {
	scope    any
	callback Callback
	handled  atomic.Uint64
}

func newHandler(scope any, cb Callback) *Handler {
	return &Handler{scope: scope, callback: cb}
}

// Scope returns the value the handler was subscribed with.
func (h *Handler) Scope() any {
	return h.scope
}

// Handled returns the epoch of the last dispatch that invoked the handler,
// or 0 if it has never been invoked.
func (h *Handler) Handled() uint64 {
	return h.handled.Load()
}

// matches reports whether h is selected by a (scope, subscription) filter.
// A nil scope or a nil target matches anything.
func (h *Handler) matches(scope any, target *Handler) bool {
	if scope != nil && !sameScope(h.scope, scope) {
		return false
	}
	return target == nil || h == target
}

// sameScope compares scopes without panicking on non-comparable values.
func sameScope(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// scopeName renders a scope for logs and span events.
func scopeName(scope any) string {
	switch s := scope.(type) {
	case nil:
		return "<nil>"
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprintf("%T", scope)
	}
}
