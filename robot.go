package main

import (
	"time"

	"github.com/google/uuid"
)

const (
	StartingMass    = 10.0
	MinMass         = 1.0 // blaster damage floor, robots never drop below this
	BaselineSpeed   = 1.0
	BaselineDefense = 1.0
	BaselineAttack  = 1.0
	MaxTools        = 4
)

// Robot is one player- or bot-controlled entity, alive inside exactly
// one room. Radius is derived from mass and recomputed on every mass
// change via SetMass.
type Robot struct {
	ID         string
	Nickname   string
	Mass       float64
	Tools      []Tool
	Position   Position
	Radius     float64
	Color      string
	Speed      float64
	Defense    float64
	Attack     float64
	Direction  Position
	LastUpdate int64 // unix ms of the last move message
	Bot        bool

	// session stats, flushed to the account store on death/disconnect
	Kills         int
	JunkCollected int
	PeakMass      float64
}

// NewRobot creates a robot at a random spawn point inside the room
func NewRobot(nickname string, room *Room) *Robot {
	return &Robot{
		ID:         uuid.New().String(),
		Nickname:   nickname,
		Mass:       StartingMass,
		Tools:      []Tool{},
		Position:   RandomSpawnPosition(room),
		Radius:     RadiusForMass(StartingMass),
		Color:      RandomColor(),
		Speed:      BaselineSpeed,
		Defense:    BaselineDefense,
		Attack:     BaselineAttack,
		LastUpdate: time.Now().UnixMilli(),
		PeakMass:   StartingMass,
	}
}

// notePeakMass records the largest mass ever reached this life
func (r *Robot) notePeakMass() {
	if r.Mass > r.PeakMass {
		r.PeakMass = r.Mass
	}
}

// SetMass updates mass and recomputes the derived radius
func (r *Robot) SetMass(mass float64) {
	r.Mass = mass
	r.Radius = RadiusForMass(mass)
}

// AddMass grows (or shrinks, for negative deltas) the robot
func (r *Robot) AddMass(delta float64) {
	r.SetMass(r.Mass + delta)
}

// HasTool reports whether the robot owns the given tool
func (r *Robot) HasTool(tool Tool) bool {
	for _, t := range r.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

// ToState converts to the snapshot representation
func (r *Robot) ToState() RobotState {
	return RobotState{
		ID:       r.ID,
		Nickname: r.Nickname,
		Mass:     r.Mass,
		Tools:    r.Tools,
		Position: Position{X: round1(r.Position.X), Y: round1(r.Position.Y)},
		Radius:   round1(r.Radius),
		Color:    r.Color,
	}
}
