package main

import "github.com/google/uuid"

// JunkPickupRadius is the fixed collision radius used when robots
// sweep up junk; junk mass does not change its pickup size.
const JunkPickupRadius = 5.0

// Junk is a transient resource pickup. It is consumed atomically: at
// most one robot claims a given junk item, in iteration order, per tick.
type Junk struct {
	ID       string
	Position Position
	Mass     float64
	Type     JunkType
}

// NewJunk creates a junk item of the given mass and flavor
func NewJunk(pos Position, mass float64, typ JunkType) *Junk {
	return &Junk{
		ID:       uuid.New().String(),
		Position: pos,
		Mass:     mass,
		Type:     typ,
	}
}

// ToState converts to the snapshot representation
func (j *Junk) ToState() JunkState {
	return JunkState{
		ID:       j.ID,
		Position: Position{X: round1(j.Position.X), Y: round1(j.Position.Y)},
		Mass:     j.Mass,
		Type:     j.Type,
	}
}
