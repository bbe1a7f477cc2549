//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/tickcore/internal/core/config"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
	"github.com/zeusync/tickcore/internal/core/system"
)

// InitializeWorld assembles a World from cfg around an already populated
// registry.
func InitializeWorld(cfg config.Config, reg *registry.Registry) (*system.World, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
