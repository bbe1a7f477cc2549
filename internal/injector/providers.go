package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/tickcore/internal/core/config"
	"github.com/zeusync/tickcore/internal/core/ecs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/observability/metrics"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
	"github.com/zeusync/tickcore/internal/core/system"
	"github.com/zeusync/tickcore/internal/game/movement"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	ProvideStore,
	ProvideBus,
	metrics.NewEventStats,
	ProvideMovement,
	ProvideManager,
	ProvideWorld,
)

// ProvideLogger returns the process logger; call log.New first to configure it.
func ProvideLogger() *log.Logger {
	return log.Provide()
}

func ProvideStore(cfg config.Config, reg *registry.Registry, l log.Log) *ecs.Store {
	return ecs.NewStore(reg,
		ecs.WithLogger(l.With(log.String("component", "store"))),
		ecs.WithCapacity(cfg.Store.CapacityHint),
		ecs.WithMaxID(ecs.EntityID(cfg.Store.MaxEntityID)),
	)
}

func ProvideBus(cfg config.Config, l log.Log) *bus.Bus {
	return bus.New(
		bus.WithLogger(l.With(log.String("component", "bus"))),
		bus.WithQueueCapacity(cfg.Bus.QueueCapacity),
		bus.WithMaxDrain(cfg.Bus.MaxDrain),
	)
}

func ProvideMovement(store *ecs.Store, l log.Log) *movement.System {
	return movement.New(store, l)
}

// ProvideManager registers the built-in game services.
func ProvideManager(l log.Log, mov *movement.System) (*system.Manager, error) {
	m := system.NewManager(l.With(log.String("component", "services")))
	if err := m.Register(mov.Service()); err != nil {
		return nil, err
	}
	return m, nil
}

func ProvideWorld(cfg config.Config, reg *registry.Registry, store *ecs.Store, b *bus.Bus, services *system.Manager, stats *metrics.EventStats, l log.Log) *system.World {
	return system.NewWorld(reg, store, b, services,
		system.WithWorldLogger(l.With(log.String("component", "world"))),
		system.WithTickInterval(cfg.TickInterval()),
		system.WithEventStats(stats),
	)
}
