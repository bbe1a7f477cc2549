package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/tickcore/internal/core/config"
	"github.com/zeusync/tickcore/internal/core/observability/log"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
	"github.com/zeusync/tickcore/internal/core/system"
	"github.com/zeusync/tickcore/internal/game/movement"
	"github.com/zeusync/tickcore/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	walkers := flag.Int("walkers", 0, "number of drifting entities to spawn")
	flag.Parse()

	if err := run(*configPath, *walkers); err != nil {
		fmt.Fprintln(os.Stderr, "tickd:", err)
		os.Exit(1)
	}
}

func run(configPath string, walkers int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := log.New(cfg.LoggerOptions())
	defer func() { _ = logger.Sync() }()

	reg, err := registry.Init(movement.Components())
	if err != nil {
		return err
	}
	world, err := injector.InitializeWorld(cfg, reg)
	if err != nil {
		return err
	}
	if err = spawn(world, walkers); err != nil {
		return err
	}
	if err = world.Start(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return world.Run(gctx)
	})
	g.Go(func() error {
		stopCh := make(chan os.Signal, 1)
		signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(stopCh)

		select {
		case sig := <-stopCh:
			logger.Info("shutting down", log.String("signal", sig.String()))
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	runErr := g.Wait()
	return errors.Join(runErr, world.Stop())
}

func spawn(world *system.World, n int) error {
	for i := range n {
		p, err := movement.Walker(world.Registry(), fmt.Sprintf("walker-%d", i),
			movement.Position{},
			movement.Velocity{DX: rand.Float64()*2 - 1, DY: rand.Float64()*2 - 1},
		)
		if err != nil {
			return err
		}
		if _, err = world.Store().Create(p); err != nil {
			return err
		}
	}
	return nil
}
