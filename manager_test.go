package main

import (
	"testing"
	"time"
)

func tick(m *RoomManager) []RoomUpdate {
	return m.Tick(time.Now())
}

func publicRoom(m *RoomManager) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[PublicRoomID]
}

func TestNewRoomManagerHasPublicRoom(t *testing.T) {
	m := NewRoomManager()
	if !m.RoomExists(PublicRoomID) {
		t.Fatal("public room should exist at startup")
	}
}

func TestCreateRobot(t *testing.T) {
	m := NewRoomManager()
	id, mass, ok := m.CreateRobot("Tester", PublicRoomID)
	if !ok {
		t.Fatal("CreateRobot failed")
	}
	if id == "" {
		t.Error("robot id should not be empty")
	}
	if mass != StartingMass {
		t.Errorf("starting mass = %f, want %f", mass, StartingMass)
	}

	robot := publicRoom(m).Robots[id]
	if robot == nil {
		t.Fatal("robot not in room")
	}
	if robot.Radius != RadiusForMass(StartingMass) {
		t.Errorf("radius = %f, want %f", robot.Radius, RadiusForMass(StartingMass))
	}
}

func TestCreateRobotUnknownRoom(t *testing.T) {
	m := NewRoomManager()
	if _, _, ok := m.CreateRobot("Lost", "no-such-room"); ok {
		t.Error("CreateRobot should fail for unknown room")
	}
}

func TestCreatePrivateRoom(t *testing.T) {
	m := NewRoomManager()
	id := m.CreatePrivateRoom(ModeFFA)
	if !m.RoomExists(id) {
		t.Fatal("private room should exist")
	}
	if m.RoomExists("some-other-id") {
		t.Error("RoomExists should be false for unknown id")
	}
}

func TestRemoveRobot(t *testing.T) {
	m := NewRoomManager()
	id, _, _ := m.CreateRobot("Tester", PublicRoomID)

	stats, ok := m.RemoveRobot(PublicRoomID, id)
	if !ok {
		t.Fatal("RemoveRobot failed")
	}
	if stats.PeakMass != StartingMass {
		t.Errorf("peak mass = %f, want %f", stats.PeakMass, StartingMass)
	}
	if _, found := publicRoom(m).Robots[id]; found {
		t.Error("robot should be gone from room")
	}

	// Second removal is a no-op
	if _, ok := m.RemoveRobot(PublicRoomID, id); ok {
		t.Error("removing a removed robot should report false")
	}
}

func TestHandleMoveClampsDirection(t *testing.T) {
	m := NewRoomManager()
	id, _, _ := m.CreateRobot("Mover", PublicRoomID)

	// Oversized vector is scaled to unit length
	m.HandleMove(PublicRoomID, id, Position{X: 3, Y: 4})
	robot := publicRoom(m).Robots[id]
	if robot.Direction.X != 0.6 || robot.Direction.Y != 0.8 {
		t.Errorf("direction = %v, want (0.6, 0.8)", robot.Direction)
	}

	// Sub-unit analog input passes through
	m.HandleMove(PublicRoomID, id, Position{X: 0.5, Y: 0})
	if robot.Direction.X != 0.5 || robot.Direction.Y != 0 {
		t.Errorf("direction = %v, want (0.5, 0)", robot.Direction)
	}
}

func TestTickMovesRobot(t *testing.T) {
	m := NewRoomManager()
	id, _, _ := m.CreateRobot("Mover", PublicRoomID)
	robot := publicRoom(m).Robots[id]
	robot.Position = Position{X: 1000, Y: 1000}

	m.HandleMove(PublicRoomID, id, Position{X: 1, Y: 0})
	tick(m)

	want := 1000 + robot.Speed*TickSpeedFactor
	if robot.Position.X != want {
		t.Errorf("X after tick = %f, want %f", robot.Position.X, want)
	}
	if robot.Position.Y != 1000 {
		t.Errorf("Y after tick = %f, want 1000", robot.Position.Y)
	}
}

func TestTickClampsToBounds(t *testing.T) {
	m := NewRoomManager()
	id, _, _ := m.CreateRobot("Edge", PublicRoomID)
	robot := publicRoom(m).Robots[id]
	robot.Position = Position{X: robot.Radius, Y: 1000}

	m.HandleMove(PublicRoomID, id, Position{X: -1, Y: 0})
	tick(m)

	if robot.Position.X != robot.Radius {
		t.Errorf("X after tick = %f, want %f (clamped)", robot.Position.X, robot.Radius)
	}
}

func TestTickJunkPickup(t *testing.T) {
	m := NewRoomManager()
	id, _, _ := m.CreateRobot("Eater", PublicRoomID)
	room := publicRoom(m)
	robot := room.Robots[id]
	robot.Position = Position{X: 500, Y: 500}

	junk := NewJunk(Position{X: 500, Y: 500}, 5, JunkMetal)
	room.Junk[junk.ID] = junk

	tick(m)

	if robot.Mass != StartingMass+5 {
		t.Errorf("mass after pickup = %f, want %f", robot.Mass, StartingMass+5)
	}
	if robot.JunkCollected != 1 {
		t.Errorf("junkCollected = %d, want 1", robot.JunkCollected)
	}
	if robot.PeakMass != StartingMass+5 {
		t.Errorf("peak mass = %f, want %f", robot.PeakMass, StartingMass+5)
	}
	if _, found := room.Junk[junk.ID]; found {
		t.Error("junk should be consumed")
	}
}

func TestTickJunkConsumedOnce(t *testing.T) {
	m := NewRoomManager()
	id1, _, _ := m.CreateRobot("A", PublicRoomID)
	id2, _, _ := m.CreateRobot("B", PublicRoomID)
	room := publicRoom(m)
	a, b := room.Robots[id1], room.Robots[id2]

	// Both overlap the same junk item but must not both absorb it.
	// Kept far enough apart that neither can be eaten afterwards.
	a.Position = Position{X: 500, Y: 490}
	b.Position = Position{X: 500, Y: 510}
	junk := NewJunk(Position{X: 500, Y: 500}, 1, JunkCircuit)
	room.Junk[junk.ID] = junk

	tick(m)

	total := a.Mass + b.Mass
	if total != 2*StartingMass+1 {
		t.Errorf("total mass = %f, want %f (junk absorbed exactly once)", total, 2*StartingMass+1)
	}
}

func TestTickEatingRequiresMargin(t *testing.T) {
	m := NewRoomManager()
	id1, _, _ := m.CreateRobot("Big", PublicRoomID)
	id2, _, _ := m.CreateRobot("Small", PublicRoomID)
	room := publicRoom(m)
	big, small := room.Robots[id1], room.Robots[id2]

	// 11.9 vs 10: touching but under the 1.2x margin, both survive
	big.SetMass(11.9)
	big.Position = Position{X: 800, Y: 800}
	small.Position = Position{X: 800, Y: 800}

	updates := tick(m)
	for _, u := range updates {
		if len(u.Destructions) != 0 {
			t.Fatal("no robot should be destroyed under the margin")
		}
	}
	if len(room.Robots) != 2 {
		t.Errorf("robots = %d, want 2", len(room.Robots))
	}
}

func TestTickEatingAboveMargin(t *testing.T) {
	m := NewRoomManager()
	id1, _, _ := m.CreateRobot("Big", PublicRoomID)
	id2, _, _ := m.CreateRobot("Small", PublicRoomID)
	room := publicRoom(m)
	big, small := room.Robots[id1], room.Robots[id2]

	big.SetMass(13)
	big.Position = Position{X: 800, Y: 800}
	small.Position = Position{X: 800, Y: 800}

	updates := tick(m)

	var destructions []Destruction
	for _, u := range updates {
		if u.RoomID == PublicRoomID {
			destructions = u.Destructions
		}
	}
	if len(destructions) != 1 {
		t.Fatalf("destructions = %d, want 1", len(destructions))
	}
	d := destructions[0]
	if d.DestroyedID != id2 || d.AttackerID != id1 {
		t.Errorf("destruction = %+v, want %s eaten by %s", d, id2, id1)
	}
	if d.Mass != StartingMass {
		t.Errorf("destruction mass = %f, want %f", d.Mass, StartingMass)
	}

	if big.Mass != 13+StartingMass {
		t.Errorf("winner mass = %f, want %f", big.Mass, 13+StartingMass)
	}
	if big.Kills != 1 {
		t.Errorf("winner kills = %d, want 1", big.Kills)
	}
	if _, alive := room.Robots[id2]; alive {
		t.Error("eaten robot should be removed")
	}
}

func TestTickAmbientJunkCap(t *testing.T) {
	m := NewRoomManager()
	room := publicRoom(m)
	for i := 0; i < MaxJunkPerRoom; i++ {
		junk := NewJunk(Position{X: 10, Y: 10}, 1, JunkMetal)
		room.Junk[junk.ID] = junk
	}

	for i := 0; i < 50; i++ {
		tick(m)
	}
	if len(room.Junk) > MaxJunkPerRoom {
		t.Errorf("junk count = %d, want <= %d", len(room.Junk), MaxJunkPerRoom)
	}
}

func TestLeaderboardsSortedByMass(t *testing.T) {
	m := NewRoomManager()
	id1, _, _ := m.CreateRobot("Low", PublicRoomID)
	id2, _, _ := m.CreateRobot("High", PublicRoomID)
	id3, _, _ := m.CreateRobot("Mid", PublicRoomID)
	room := publicRoom(m)
	room.Robots[id1].SetMass(10)
	room.Robots[id2].SetMass(100)
	room.Robots[id3].SetMass(50)

	boards := m.Leaderboards()
	ranked := boards[PublicRoomID]
	if len(ranked) != 3 {
		t.Fatalf("ranked = %d, want 3", len(ranked))
	}
	if ranked[0].RobotID != id2 || ranked[1].RobotID != id3 || ranked[2].RobotID != id1 {
		t.Errorf("order = %s, %s, %s; want High, Mid, Low",
			ranked[0].Nickname, ranked[1].Nickname, ranked[2].Nickname)
	}
}

func TestReapEmptyPrivateRooms(t *testing.T) {
	m := NewRoomManager()
	roomID := m.CreatePrivateRoom(ModeFFA)

	// Not yet past the TTL
	if reaped := m.ReapEmptyRooms(time.Now()); len(reaped) != 0 {
		t.Errorf("reaped %v before TTL", reaped)
	}

	reaped := m.ReapEmptyRooms(time.Now().Add(EmptyRoomTTL + time.Second))
	if len(reaped) != 1 || reaped[0] != roomID {
		t.Fatalf("reaped = %v, want [%s]", reaped, roomID)
	}
	if m.RoomExists(roomID) {
		t.Error("reaped room should be gone")
	}
}

func TestReapSkipsOccupiedAndPublicRooms(t *testing.T) {
	m := NewRoomManager()
	roomID := m.CreatePrivateRoom(ModeFFA)
	m.CreateRobot("Resident", roomID)

	reaped := m.ReapEmptyRooms(time.Now().Add(EmptyRoomTTL + time.Second))
	if len(reaped) != 0 {
		t.Errorf("reaped %v, want none", reaped)
	}
	if !m.RoomExists(PublicRoomID) {
		t.Error("public room must never be reaped")
	}
}

func TestSpawnClearsReapTimer(t *testing.T) {
	m := NewRoomManager()
	roomID := m.CreatePrivateRoom(ModeFFA)
	id, _, _ := m.CreateRobot("Guest", roomID)
	m.RemoveRobot(roomID, id)

	// The timer restarts when the room empties, so a TTL measured from
	// creation must not fire right after the robot leaves.
	if reaped := m.ReapEmptyRooms(time.Now()); len(reaped) != 0 {
		t.Errorf("reaped %v right after robot left", reaped)
	}
}

func TestTickSnapshotConsistent(t *testing.T) {
	m := NewRoomManager()
	m.CreateRobot("Snap", PublicRoomID)

	updates := tick(m)
	var state GameStateMessage
	for _, u := range updates {
		if u.RoomID == PublicRoomID {
			state = u.State
		}
	}
	if state.Type != MsgGameState {
		t.Errorf("snapshot type = %q, want %q", state.Type, MsgGameState)
	}
	if len(state.Robots) != 1 {
		t.Errorf("snapshot robots = %d, want 1", len(state.Robots))
	}
	if state.Timestamp == 0 {
		t.Error("snapshot timestamp should be set")
	}
}

func TestTopUpBots(t *testing.T) {
	m := NewRoomManager()
	m.SetBotTarget(3)
	room := publicRoom(m)

	tick(m)
	bots := 0
	for _, robot := range room.Robots {
		if robot.Bot {
			bots++
		}
	}
	if bots != 3 {
		t.Fatalf("bots = %d, want 3", bots)
	}

	// Population holds across ticks
	tick(m)
	bots = 0
	for _, robot := range room.Robots {
		if robot.Bot {
			bots++
		}
	}
	if bots != 3 {
		t.Errorf("bots after second tick = %d, want 3", bots)
	}
}
