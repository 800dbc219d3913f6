// Package hub provides the process-wide publish/subscribe entry point.
//
// A Hub wraps a relay.Emitter whose runners are phase-aware: handlers
// subscribed with a scope that implements relay.Phaser are passed over
// while that scope is initializing, initialized, finalizing or finalized.
// Events published without a ":runner" suffix use the pipeline runner, so
// each subscriber may transform the arguments seen by the next.
//
// Most code uses the package-level functions, which share one hub:
//
//	sub, err := hub.Subscribe("config.loaded", svc, svc.onConfig)
//	f, err := hub.Publish(ctx, "config.loaded", cfg)
//	hub.Unsubscribe("config.loaded", nil, sub)
//
// Configure the shared hub once at startup to enable logging, metrics,
// tracing or dead letters:
//
//	settings, err := config.Load("relay.yaml")
//	if err != nil {
//		return err
//	}
//	if err := hub.Configure(settings); err != nil {
//		return err
//	}
//
// Tests and libraries that need isolation build their own with New or
// FromSettings.
package hub
