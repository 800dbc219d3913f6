package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/relay/pkg/relay"
	"github.com/randalmurphal/relay/pkg/relay/component"
	"github.com/randalmurphal/relay/pkg/relay/future"
	"github.com/randalmurphal/relay/pkg/relay/hub"
)

func passThrough(_ context.Context, args ...any) (any, error) {
	return nil, nil
}

func increment(_ context.Context, args ...any) (any, error) {
	return args[0].(int) + 1, nil
}

func deferredResult(_ context.Context, args ...any) (any, error) {
	return future.Resolved[any](args[0]), nil
}

// buildEmitter subscribes n handlers to "evt".
func buildEmitter(b *testing.B, n int, cb relay.Callback) *relay.Emitter {
	b.Helper()
	e := relay.New()
	for i := 0; i < n; i++ {
		if _, err := e.On("evt", nil, cb); err != nil {
			b.Fatal(err)
		}
	}
	return e
}

func runEmit(b *testing.B, e *relay.Emitter, event string, args ...any) {
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := e.Emit(ctx, event, args...)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := f.Await(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEmit_Sequence_5 dispatches to 5 handlers.
func BenchmarkEmit_Sequence_5(b *testing.B) {
	runEmit(b, buildEmitter(b, 5, passThrough), "evt", 1)
}

// BenchmarkEmit_Sequence_10 dispatches to 10 handlers.
func BenchmarkEmit_Sequence_10(b *testing.B) {
	runEmit(b, buildEmitter(b, 10, passThrough), "evt", 1)
}

// BenchmarkEmit_Sequence_100 dispatches to 100 handlers.
func BenchmarkEmit_Sequence_100(b *testing.B) {
	runEmit(b, buildEmitter(b, 100, passThrough), "evt", 1)
}

// BenchmarkEmit_Pipeline_10 threads a value through 10 handlers.
func BenchmarkEmit_Pipeline_10(b *testing.B) {
	runEmit(b, buildEmitter(b, 10, increment), "evt:pipeline", 0)
}

// BenchmarkEmit_Pipeline_100 threads a value through 100 handlers.
func BenchmarkEmit_Pipeline_100(b *testing.B) {
	runEmit(b, buildEmitter(b, 100, increment), "evt:pipeline", 0)
}

// BenchmarkEmit_Futures_10 dispatches to 10 handlers returning settled futures.
func BenchmarkEmit_Futures_10(b *testing.B) {
	runEmit(b, buildEmitter(b, 10, deferredResult), "evt", 1)
}

// BenchmarkEmit_NoHandlers measures dispatch overhead alone.
func BenchmarkEmit_NoHandlers(b *testing.B) {
	runEmit(b, relay.New(), "evt", 1)
}

// BenchmarkReemit_Senile_10 replays memory to 10 handlers.
func BenchmarkReemit_Senile_10(b *testing.B) {
	ctx := context.Background()
	e := buildEmitter(b, 10, passThrough)
	f, _ := e.Emit(ctx, "evt", 1)
	_, _ = f.Await(ctx)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := e.Reemit(ctx, "evt", true, nil, nil)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = f.Await(ctx)
	}
}

// BenchmarkPublish_PhaseAware_10 publishes on a hub where half the
// subscribers are still initializing.
func BenchmarkPublish_PhaseAware_10(b *testing.B) {
	ctx := context.Background()
	h := hub.New()
	for i := 0; i < 10; i++ {
		c := component.New("bench")
		if err := c.Initialize(ctx, nil); err != nil {
			b.Fatal(err)
		}
		if i%2 == 0 {
			if err := c.Start(ctx, nil); err != nil {
				b.Fatal(err)
			}
		}
		if _, err := h.Subscribe("evt", c, increment); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f, err := h.Publish(ctx, "evt", 0)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = f.Await(ctx)
	}
}

// BenchmarkEmit_Parallel emits from many goroutines onto one chain.
func BenchmarkEmit_Parallel(b *testing.B) {
	ctx := context.Background()
	e := buildEmitter(b, 10, passThrough)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			f, err := e.Emit(ctx, "evt", 1)
			if err != nil {
				b.Error(err)
				return
			}
			_, _ = f.Await(ctx)
		}
	})
}
