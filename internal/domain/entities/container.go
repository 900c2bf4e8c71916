package entities

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all entity providers with the DIG container.
func RegisterProviders(_ *dig.Container) error {
	// Registry, settings, and caches depend on runtime paths resolved by
	// the controllers layer; nothing is provided eagerly here.
	return nil
}
