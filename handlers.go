package main

const (
	DropJunkFloor   = 5.0  // mass must exceed this to drop
	DropJunkRate    = 0.1  // fraction of mass dropped, floored to integer
	DropJunkScatter = 50.0 // positional jitter around the robot

	BaseCost = 50.0

	EvolveCost  = 20.0
	SpeedStep   = 0.2
	DefenseStep = 0.3
	AttackStep  = 0.25
)

// Cost-gated actions live here. Each is atomic: validation happens
// before any mutation, so either the cost is deducted and the benefit
// granted or nothing changes at all.

// DropJunk sheds a tenth of the robot's mass (floored to an integer)
// as a junk item near it. Mass at or below the floor is rejected; a
// floored amount of zero still creates a zero-mass junk item.
func (m *RoomManager) DropJunk(roomID, robotID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return false
	}
	robot, found := room.Robots[robotID]
	if !found || robot.Mass <= DropJunkFloor {
		return false
	}

	dropped := float64(int(robot.Mass * DropJunkRate))
	robot.AddMass(-dropped)

	junk := NewJunk(Position{
		X: robot.Position.X + (randFloat()-0.5)*DropJunkScatter,
		Y: robot.Position.Y + (randFloat()-0.5)*DropJunkScatter,
	}, dropped, RandomJunkType())
	room.Junk[junk.ID] = junk
	return true
}

// ConstructBase spends mass to place a base structure owned by the robot
func (m *RoomManager) ConstructBase(roomID, robotID string, pos Position) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return false
	}
	robot, found := room.Robots[robotID]
	if !found || robot.Mass < BaseCost {
		return false
	}

	robot.AddMass(-BaseCost)
	base := NewBase(pos, robot.ID)
	room.Structures[base.ID] = base
	return true
}

// Evolve spends mass on a permanent stat increase, or on a tool slot
// that grants the first unowned tool in canonical order. A toolSlot
// request with all four tools owned changes nothing and costs nothing.
func (m *RoomManager) Evolve(roomID, robotID string, upgrade Upgrade) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return false
	}
	robot, found := room.Robots[robotID]
	if !found || robot.Mass < EvolveCost {
		return false
	}

	switch upgrade {
	case UpgradeSpeed:
		robot.Speed += SpeedStep
	case UpgradeDefense:
		robot.Defense += DefenseStep
	case UpgradeAttack:
		robot.Attack += AttackStep
	case UpgradeToolSlot:
		if len(robot.Tools) >= MaxTools {
			return false
		}
		available := AvailableTools(robot)
		if len(available) == 0 {
			return false
		}
		robot.Tools = append(robot.Tools, available[0])
	default:
		return false
	}

	robot.AddMass(-EvolveCost)
	return true
}
