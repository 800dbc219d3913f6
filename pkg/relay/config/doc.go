// Package config loads hub settings.
//
// Settings come from an optional YAML or JSON file and are then overlaid
// with RELAY_* environment variables:
//
//	s, err := config.Load("relay.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := hub.Configure(s); err != nil {
//	    return err
//	}
//
// Config is the untyped view used while reading files; its accessors
// return a default when a key is missing or has the wrong type.
package config
