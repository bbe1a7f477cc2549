package system

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/zeusync/tickcore/internal/core/ecs"
	"github.com/zeusync/tickcore/internal/core/errs"
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/observability/metrics"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
)

const DefaultTickInterval = time.Second / 30

// TickEvent is posted at the start of every frame.
type TickEvent struct {
	Frame uint64
	Delta time.Duration
}

func (TickEvent) Type() string { return "tick" }

// World owns the registry, entity store, event bus and services of one
// simulation. All methods must be called from the goroutine running the loop.
type World struct {
	registry *registry.Registry
	store    *ecs.Store
	bus      *bus.Bus
	services *Manager
	stats    *metrics.EventStats
	log      log.Log

	interval time.Duration
	frame    uint64
	running  bool
}

type WorldOption func(*World)

func WithWorldLogger(l log.Log) WorldOption {
	return func(w *World) {
		if l != nil {
			w.log = l
		}
	}
}

// WithTickInterval sets the period used by Run.
func WithTickInterval(d time.Duration) WorldOption {
	return func(w *World) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithEventStats attaches stats to the world's bus. A summary is logged on Stop.
func WithEventStats(stats *metrics.EventStats) WorldOption {
	return func(w *World) {
		w.stats = stats
	}
}

func NewWorld(reg *registry.Registry, store *ecs.Store, b *bus.Bus, services *Manager, opts ...WorldOption) *World {
	w := &World{
		registry: reg,
		store:    store,
		bus:      b,
		services: services,
		log:      log.NewNop(),
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.stats != nil {
		b.AddObserver(w.stats)
	}
	return w
}

func (w *World) Registry() *registry.Registry { return w.registry }
func (w *World) Store() *ecs.Store            { return w.store }
func (w *World) Bus() *bus.Bus                { return w.bus }
func (w *World) Services() *Manager           { return w.services }
func (w *World) Stats() *metrics.EventStats   { return w.stats }
func (w *World) TickInterval() time.Duration  { return w.interval }
func (w *World) FrameCount() uint64           { return w.frame }
func (w *World) IsRunning() bool              { return w.running }

// Start starts every registered service and then freezes the registry.
// A failed start leaves the registry open.
func (w *World) Start() error {
	if w.running {
		return eris.Wrap(errs.ErrAlreadyRunning, "start world")
	}
	if err := w.services.StartAll(w.bus); err != nil {
		return eris.Wrap(err, "start world")
	}
	w.registry.Freeze()
	w.running = true
	w.log.Info("world started",
		log.Int("services", w.services.Len()),
		log.Int("components", w.registry.Len()),
		log.Duration("interval", w.interval),
	)
	return nil
}

// Tick advances one frame: it posts a TickEvent and drains the bus.
// Handler failures are returned but do not undo the frame.
func (w *World) Tick(delta time.Duration) error {
	if !w.running {
		return eris.Wrap(errs.ErrNotRunning, "tick world")
	}
	w.frame++
	if err := w.bus.Post(TickEvent{Frame: w.frame, Delta: delta}); err != nil {
		return err
	}
	err := w.bus.PublishPosts()
	w.log.Debug("tick",
		log.Uint64("frame", w.frame),
		log.Duration("delta", delta),
		log.Int("entities", w.store.Len()),
		log.Int("pending", w.bus.Pending()),
	)
	return err
}

// Run ticks at the configured interval until ctx is cancelled. Failed ticks
// are logged and the loop goes on.
func (w *World) Run(ctx context.Context) error {
	if !w.running {
		return eris.Wrap(errs.ErrNotRunning, "run world")
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			w.log.Info("world loop finished", log.Uint64("frames", w.frame))
			return nil
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			if err := w.Tick(delta); err != nil {
				w.log.Warn("tick failed", log.Uint64("frame", w.frame), log.Error(err))
			}
		}
	}
}

// Stop stops every service. The world can be started again afterwards.
func (w *World) Stop() error {
	if !w.running {
		return eris.Wrap(errs.ErrNotRunning, "stop world")
	}
	w.running = false
	err := w.services.StopAll()
	if w.stats != nil {
		w.stats.LogSummary(w.log)
	}
	w.log.Info("world stopped", log.Uint64("frames", w.frame))
	return err
}
