package main

import (
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	PublicRoomID = "public"

	TickSpeedFactor = 2.0 // distance per tick = direction * speed * factor
	EatMassMargin   = 1.2 // attacker needs mass > victim mass * margin

	MaxJunkPerRoom  = 200
	JunkSpawnChance = 0.1
	JunkSpawnBase   = 1.0
	JunkSpawnSpread = 3.0

	// Empty private rooms are reaped after this long; the public room
	// is created at startup and never reaped.
	EmptyRoomTTL = 5 * time.Minute
)

// Destruction reports one robot eaten during a tick
type Destruction struct {
	DestroyedID string
	AttackerID  string
	Mass        float64 // victim mass at the moment of destruction
	Stats       SessionStats
}

// RoomUpdate is the per-room result of one simulation tick
type RoomUpdate struct {
	RoomID       string
	Destructions []Destruction
	State        GameStateMessage
}

// RankedRobot is one row of a room leaderboard, sorted by mass
type RankedRobot struct {
	RobotID  string
	Nickname string
	Mass     float64
}

// RoomManager owns every room and all world mutation. A single mutex
// serializes message handling against the tick: once a tick starts its
// movement/pickup/eating phases run to completion before any client
// message can touch the same state.
type RoomManager struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	botTarget int

	// tick scratch space, reused across rooms
	grid       SpatialGrid
	candidates []string
}

// NewRoomManager creates the manager with the public room in place
func NewRoomManager() *RoomManager {
	m := &RoomManager{rooms: make(map[string]*Room)}
	m.CreateRoom(PublicRoomID, ModeFFA, false)
	return m
}

// SetBotTarget sets how many AI robots the tick keeps in the public room
func (m *RoomManager) SetBotTarget(n int) {
	m.mu.Lock()
	m.botTarget = n
	m.mu.Unlock()
}

// CreateRoom creates (or overwrites) a room. Not idempotent by id:
// callers that must not clobber an existing room check RoomExists first.
func (m *RoomManager) CreateRoom(id string, mode GameMode, isPrivate bool) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := NewRoom(id, mode, isPrivate)
	m.rooms[id] = room
	log.Printf("created room %s (%s, private=%v)", id, mode, isPrivate)
	return room
}

// CreatePrivateRoom creates a private room under a fresh generated id
func (m *RoomManager) CreatePrivateRoom(mode GameMode) string {
	id := uuid.New().String()
	m.CreateRoom(id, mode, true)
	return id
}

// RoomCount returns the number of live rooms
func (m *RoomManager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

// RoomExists reports whether a room id is live
func (m *RoomManager) RoomExists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[id]
	return ok
}

// CreateRobot spawns a robot into the given room and returns its id and
// starting mass. Returns ok=false if the room is gone.
func (m *RoomManager) CreateRobot(nickname, roomID string) (robotID string, mass float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return "", 0, false
	}
	robot := NewRobot(nickname, room)
	room.Robots[robot.ID] = robot
	room.emptySince = time.Time{}
	return robot.ID, robot.Mass, true
}

// RemoveRobot detaches a robot from its room; no-op if absent.
// Returns the robot's final session stats for bookkeeping.
func (m *RoomManager) RemoveRobot(roomID, robotID string) (SessionStats, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return SessionStats{}, false
	}
	robot, found := room.Robots[robotID]
	if !found {
		return SessionStats{}, false
	}
	delete(room.Robots, robotID)
	m.noteIfEmpty(room)
	return robotStats(robot), true
}

// SessionStats is what a robot accumulated while alive, flushed to the
// account store when the robot is destroyed or its owner disconnects.
type SessionStats struct {
	Kills         int
	JunkCollected int
	PeakMass      float64
}

func robotStats(r *Robot) SessionStats {
	return SessionStats{Kills: r.Kills, JunkCollected: r.JunkCollected, PeakMass: r.PeakMass}
}

// HandleMove overwrites the robot's direction. Directions longer than
// unit length are scaled down so oversized client vectors cannot buy
// extra speed; shorter vectors pass through as analog input.
func (m *RoomManager) HandleMove(roomID, robotID string, dir Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	robot := m.lookupRobot(roomID, robotID)
	if robot == nil {
		return
	}
	if mag2 := dir.X*dir.X + dir.Y*dir.Y; mag2 > 1 {
		scale := 1 / math.Sqrt(mag2)
		dir.X *= scale
		dir.Y *= scale
	}
	robot.Direction = dir
	robot.LastUpdate = time.Now().UnixMilli()
}

// ActivateTool applies a tool effect inside the robot's room
func (m *RoomManager) ActivateTool(roomID, robotID string, tool Tool, target *Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, found := m.rooms[roomID]
	if !found {
		return
	}
	robot, found := room.Robots[robotID]
	if !found {
		return
	}
	ApplyTool(robot, tool, target, room)
}

// lookupRobot resolves a robot; callers hold the lock
func (m *RoomManager) lookupRobot(roomID, robotID string) *Robot {
	room, found := m.rooms[roomID]
	if !found {
		return nil
	}
	return room.Robots[robotID]
}

// Tick advances every room by one simulation step and returns the
// per-room destructions plus a consistent state snapshot taken under
// the same lock.
func (m *RoomManager) Tick(now time.Time) []RoomUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()

	nowMs := now.UnixMilli()
	updates := make([]RoomUpdate, 0, len(m.rooms))
	for id, room := range m.rooms {
		if id == PublicRoomID && m.botTarget > 0 {
			m.topUpBots(room)
		}
		destructions := m.updateRoom(room)
		updates = append(updates, RoomUpdate{
			RoomID:       id,
			Destructions: destructions,
			State:        room.Snapshot(nowMs),
		})
	}
	return updates
}

// updateRoom is the per-tick physics step. The three collision phases
// are sequential on purpose: pickup sees post-movement positions and
// eating sees post-pickup masses from the same tick.
func (m *RoomManager) updateRoom(room *Room) []Destruction {
	// Phase 1: movement. Bots steer first, then everything moves.
	for _, robot := range room.Robots {
		if robot.Bot {
			steerBot(robot, room)
		}
		if robot.Direction.X != 0 || robot.Direction.Y != 0 {
			step := robot.Speed * TickSpeedFactor
			robot.Position.X += robot.Direction.X * step
			robot.Position.Y += robot.Direction.Y * step
			robot.Position = ClampToBounds(robot.Position, robot.Radius, room)
		}
	}

	// Phase 2: robot-junk pickup. The grid is a broad phase only; a
	// junk item is consumed by the first overlapping robot tested.
	m.grid.Clear()
	for id, junk := range room.Junk {
		m.grid.Insert(junk.Position, id)
	}
	for _, robot := range room.Robots {
		m.candidates = m.grid.QueryCircle(robot.Position, robot.Radius+JunkPickupRadius, m.candidates[:0])
		for _, junkID := range m.candidates {
			junk, present := room.Junk[junkID]
			if !present {
				continue // already claimed this tick
			}
			if CheckCollision(robot.Position, robot.Radius, junk.Position, JunkPickupRadius) {
				robot.AddMass(junk.Mass)
				robot.JunkCollected++
				robot.notePeakMass()
				delete(room.Junk, junkID)
			}
		}
	}

	// Phase 3: robot-robot eating. Each unordered pair is tested once;
	// the advantage must be decisive (margin), near-equal masses touch
	// without effect. Robots destroyed earlier in the pass are skipped.
	robots := make([]*Robot, 0, len(room.Robots))
	for _, robot := range room.Robots {
		robots = append(robots, robot)
	}
	var destructions []Destruction
	for i := 0; i < len(robots); i++ {
		for j := i + 1; j < len(robots); j++ {
			a, b := robots[i], robots[j]
			if _, alive := room.Robots[a.ID]; !alive {
				break
			}
			if _, alive := room.Robots[b.ID]; !alive {
				continue
			}
			if !CheckCollision(a.Position, a.Radius, b.Position, b.Radius) {
				continue
			}
			var winner, loser *Robot
			if a.Mass > b.Mass*EatMassMargin {
				winner, loser = a, b
			} else if b.Mass > a.Mass*EatMassMargin {
				winner, loser = b, a
			} else {
				continue
			}
			destructions = append(destructions, Destruction{
				DestroyedID: loser.ID,
				AttackerID:  winner.ID,
				Mass:        loser.Mass,
				Stats:       robotStats(loser),
			})
			winner.AddMass(loser.Mass)
			winner.Kills++
			winner.notePeakMass()
			delete(room.Robots, loser.ID)
		}
	}
	if len(destructions) > 0 {
		m.noteIfEmpty(room)
	}

	// Phase 4: ambient junk spawning
	if len(room.Junk) < MaxJunkPerRoom && randFloat() < JunkSpawnChance {
		junk := NewJunk(Position{
			X: randFloat() * room.Bounds.Width,
			Y: randFloat() * room.Bounds.Height,
		}, JunkSpawnBase+randFloat()*JunkSpawnSpread, RandomJunkType())
		room.Junk[junk.ID] = junk
	}

	return destructions
}

// Leaderboards ranks every room's robots by mass, descending
func (m *RoomManager) Leaderboards() map[string][]RankedRobot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]RankedRobot, len(m.rooms))
	for id, room := range m.rooms {
		ranked := make([]RankedRobot, 0, len(room.Robots))
		for _, robot := range room.Robots {
			ranked = append(ranked, RankedRobot{RobotID: robot.ID, Nickname: robot.Nickname, Mass: robot.Mass})
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].Mass > ranked[j].Mass })
		out[id] = ranked
	}
	return out
}

// ReapEmptyRooms deletes private rooms that have been empty past the
// TTL and returns their ids. Runs at the slow maintenance rate.
func (m *RoomManager) ReapEmptyRooms(now time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var reaped []string
	for id, room := range m.rooms {
		if !room.IsPrivate || len(room.Robots) > 0 || room.emptySince.IsZero() {
			continue
		}
		if now.Sub(room.emptySince) >= EmptyRoomTTL {
			delete(m.rooms, id)
			reaped = append(reaped, id)
			log.Printf("reaped empty private room %s", id)
		}
	}
	return reaped
}

// noteIfEmpty starts the reap timer for a private room that just lost
// its last robot; callers hold the lock.
func (m *RoomManager) noteIfEmpty(room *Room) {
	if room.IsPrivate && len(room.Robots) == 0 && room.emptySince.IsZero() {
		room.emptySince = time.Now()
	}
}
