package movement

import (
	"github.com/zeusync/tickcore/internal/core/ecs"
	"github.com/zeusync/tickcore/internal/core/schema/registry"
)

// Position is a point in world units.
type Position struct {
	X, Y float64
}

// Velocity is a displacement in world units per second.
type Velocity struct {
	DX, DY float64
}

func (v Velocity) IsZero() bool {
	return v.DX == 0 && v.DY == 0
}

// Components queues the movement component types for the process registry.
func Components() *registry.Builder {
	b := registry.NewBuilder()
	registry.Add[Position](b, "movement.Position")
	registry.Add[Velocity](b, "movement.Velocity")
	return b
}

// Walker returns a prefab for an entity placed at pos and drifting at vel.
func Walker(reg *registry.Registry, name string, pos Position, vel Velocity) (*ecs.Prefab, error) {
	return ecs.NewPrefab(reg, name, pos, vel)
}
