package main

import "github.com/google/uuid"

const BaseStartHealth = 100

// Structure is a persistent placed object owned by a robot. Health is
// carried for clients but never depleted: there are no siege mechanics
// in this version.
type Structure struct {
	ID       string
	Position Position
	Type     StructureType
	Health   int
	OwnerID  string
}

// NewBase creates a base structure owned by the given robot
func NewBase(pos Position, ownerID string) *Structure {
	return &Structure{
		ID:       uuid.New().String(),
		Position: pos,
		Type:     StructureBase,
		Health:   BaseStartHealth,
		OwnerID:  ownerID,
	}
}

// ToState converts to the snapshot representation
func (s *Structure) ToState() StructureState {
	return StructureState{
		ID:       s.ID,
		Position: s.Position,
		Type:     s.Type,
		Health:   s.Health,
		OwnerID:  s.OwnerID,
	}
}
