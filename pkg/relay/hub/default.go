package hub

import (
	"context"
	"errors"
	"sync"

	"github.com/randalmurphal/relay/pkg/relay"
	"github.com/randalmurphal/relay/pkg/relay/config"
	"github.com/randalmurphal/relay/pkg/relay/future"
)

// ErrAlreadyInitialized is returned by Configure once the process-wide hub
// exists.
var ErrAlreadyInitialized = errors.New("hub already initialized")

var (
	defaultMu  sync.Mutex
	defaultHub *Hub
)

// Configure builds the process-wide hub from settings. It must run before
// the first call to Default or any package-level function; afterwards it
// returns ErrAlreadyInitialized and changes nothing.
//
// The process-wide hub is never torn down.
func Configure(s config.Settings, opts ...relay.Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHub != nil {
		return ErrAlreadyInitialized
	}
	h, err := FromSettings(s, opts...)
	if err != nil {
		return err
	}
	defaultHub = h
	return nil
}

// Default returns the process-wide hub, creating it with default settings
// on first use.
func Default() *Hub {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultHub == nil {
		defaultHub = New()
	}
	return defaultHub
}

// Subscribe subscribes cb to event on the process-wide hub.
func Subscribe(event string, scope any, cb relay.Callback) (*relay.Handler, error) {
	return Default().Subscribe(event, scope, cb)
}

// Unsubscribe unsubscribes from event on the process-wide hub.
func Unsubscribe(event string, scope any, sub *relay.Handler) int {
	return Default().Unsubscribe(event, scope, sub)
}

// Publish publishes event on the process-wide hub.
func Publish(ctx context.Context, event string, args ...any) (*future.Future[[]any], error) {
	return Default().Publish(ctx, event, args...)
}

// Republish replays event on the process-wide hub.
func Republish(ctx context.Context, event string, scope any, sub *relay.Handler, senile bool) (*future.Future[[]any], error) {
	return Default().Republish(ctx, event, scope, sub, senile)
}

// Peek returns the last published arguments of event on the process-wide hub.
func Peek(event string) ([]any, bool) {
	return Default().Peek(event)
}
