package main

import "time"

const (
	RoomWidth  = 2000.0
	RoomHeight = 2000.0
)

// Bounds is the rectangular extent of a room
type Bounds struct {
	Width  float64
	Height float64
}

// Room is the isolation boundary: one independent set of robots, junk
// and structures. An entity belongs to exactly one room for its
// lifetime and never migrates.
type Room struct {
	ID         string
	Mode       GameMode
	IsPrivate  bool
	Bounds     Bounds
	Robots     map[string]*Robot
	Junk       map[string]*Junk
	Structures map[string]*Structure

	// emptySince is set when the last robot leaves a private room and
	// cleared on the next spawn; used by the reaper.
	emptySince time.Time
}

// NewRoom creates an empty room with the standard bounds
func NewRoom(id string, mode GameMode, isPrivate bool) *Room {
	room := &Room{
		ID:         id,
		Mode:       mode,
		IsPrivate:  isPrivate,
		Bounds:     Bounds{Width: RoomWidth, Height: RoomHeight},
		Robots:     make(map[string]*Robot),
		Junk:       make(map[string]*Junk),
		Structures: make(map[string]*Structure),
	}
	if isPrivate {
		// The reap timer runs from creation so a room nobody joins
		// still gets collected.
		room.emptySince = time.Now()
	}
	return room
}

// Snapshot builds the full state snapshot for broadcast
func (room *Room) Snapshot(now int64) GameStateMessage {
	state := GameStateMessage{
		Type:       MsgGameState,
		Robots:     make([]RobotState, 0, len(room.Robots)),
		Junk:       make([]JunkState, 0, len(room.Junk)),
		Structures: make([]StructureState, 0, len(room.Structures)),
		Timestamp:  now,
	}
	for _, r := range room.Robots {
		state.Robots = append(state.Robots, r.ToState())
	}
	for _, j := range room.Junk {
		state.Junk = append(state.Junk, j.ToState())
	}
	for _, s := range room.Structures {
		state.Structures = append(state.Structures, s.ToState())
	}
	return state
}
