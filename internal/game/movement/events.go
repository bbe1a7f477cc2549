package movement

import (
	"github.com/zeusync/tickcore/internal/core/events/bus"
	"github.com/zeusync/tickcore/internal/core/models"
)

// Move displaces an entity's Position by (DX, DY).
type Move struct {
	ID     models.EntityID
	DX, DY float64
}

func (Move) Type() string { return "movement.move" }

// Moved is posted after an entity's Position changed.
type Moved struct {
	ID       models.EntityID
	From, To Position
}

func (Moved) Type() string { return "movement.moved" }

// PositionQuery asks for the current Position of an entity.
type PositionQuery struct {
	bus.Request[Position]
	ID models.EntityID
}

func (*PositionQuery) Type() string { return "movement.position_query" }
