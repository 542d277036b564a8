package main

import (
	"bytes"
	"encoding/json"
)

// Client -> Server message types
const (
	MsgJoin          = "join"
	MsgMove          = "move"
	MsgActivateTool  = "activateTool"
	MsgDropJunk      = "dropJunk"
	MsgConstructBase = "constructBase"
	MsgEvolve        = "evolve"
	MsgRegister      = "register"
	MsgLogin         = "login"
	MsgAuth          = "auth"
	MsgProfile       = "profile"
)

// Server -> Client message types
const (
	MsgSpawnConfirm = "spawnConfirm"
	MsgGameState    = "gameState"
	MsgLeaderboard  = "leaderboard"
	MsgDestroyed    = "destroyed"
	MsgPlayerLeft   = "playerLeft"
	MsgError        = "error"
	MsgAuthOK       = "authOK"
	MsgProfileData  = "profileData"
	MsgAchievement  = "achievement"
)

// GameMode tags a room's ruleset. Only free-for-all rules are implemented;
// the tag is carried for clients and future modes.
type GameMode string

const (
	ModeFFA     GameMode = "ffa"
	ModeTeams   GameMode = "teams"
	ModeSandbox GameMode = "sandbox"
)

// Tool identifies an equippable ability
type Tool string

const (
	ToolBlaster     Tool = "blaster"
	ToolMagnet      Tool = "magnet"
	ToolTeleport    Tool = "teleport"
	ToolTransformer Tool = "transformer"
)

// Upgrade identifies an evolution purchase
type Upgrade string

const (
	UpgradeSpeed    Upgrade = "speed"
	UpgradeDefense  Upgrade = "defense"
	UpgradeAttack   Upgrade = "attack"
	UpgradeToolSlot Upgrade = "toolSlot"
)

// JunkType is a rendering flavor tag; it has no gameplay effect
type JunkType string

const (
	JunkMetal   JunkType = "metal"
	JunkCircuit JunkType = "circuit"
	JunkEnergy  JunkType = "energy"
)

// StructureType distinguishes placed structures
type StructureType string

const (
	StructureBase StructureType = "base"
	StructureWall StructureType = "wall"
)

// Position is a point in room coordinates
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// typeProbe is the first-pass decode used to route an incoming message
type typeProbe struct {
	Type string `json:"type"`
}

// PrivateRoom is either absent (public room), true (create a private
// room) or a room-id string (join an existing private room).
type PrivateRoom struct {
	Create bool
	RoomID string
}

// UnmarshalJSON accepts a JSON bool or string, anything else is ignored
func (p *PrivateRoom) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("true")) {
		p.Create = true
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &p.RoomID)
	}
	return nil
}

// JoinMessage requests a spawn in the public room, a fresh private room
// or a named private room. Binary opts in to msgpack state snapshots.
type JoinMessage struct {
	Nickname    string      `json:"nickname"`
	Mode        GameMode    `json:"mode,omitempty"`
	PrivateRoom PrivateRoom `json:"privateRoom,omitempty"`
	Binary      bool        `json:"binary,omitempty"`
}

// MoveMessage overwrites the robot's movement direction
type MoveMessage struct {
	Direction Position `json:"direction"`
}

// ActivateToolMessage fires an owned tool, optionally at a target point
type ActivateToolMessage struct {
	Tool   Tool      `json:"tool"`
	Target *Position `json:"target,omitempty"`
}

// ConstructBaseMessage places a base at the given position
type ConstructBaseMessage struct {
	Position Position `json:"position"`
}

// EvolveMessage spends mass on a permanent upgrade
type EvolveMessage struct {
	Upgrade Upgrade `json:"upgrade"`
}

// RegisterMessage creates a persistent account
type RegisterMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMessage authenticates an existing account
type LoginMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMessage resumes a session from a stored token
type AuthMessage struct {
	Token string `json:"token"`
}

// SpawnConfirmMessage acknowledges a join
type SpawnConfirmMessage struct {
	Type        string  `json:"type"`
	ID          string  `json:"id"`
	Nickname    string  `json:"nickname"`
	RoomID      string  `json:"roomId"`
	InitialMass float64 `json:"initialMass"`
}

// RobotState is one robot in a state snapshot
type RobotState struct {
	ID       string   `json:"id"`
	Nickname string   `json:"nickname"`
	Mass     float64  `json:"mass"`
	Tools    []Tool   `json:"tools"`
	Position Position `json:"position"`
	Radius   float64  `json:"radius"`
	Color    string   `json:"color"`
}

// JunkState is one junk item in a state snapshot
type JunkState struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Mass     float64  `json:"mass"`
	Type     JunkType `json:"type"`
}

// StructureState is one structure in a state snapshot
type StructureState struct {
	ID       string        `json:"id"`
	Position Position      `json:"position"`
	Type     StructureType `json:"type"`
	Health   int           `json:"health"`
	OwnerID  string        `json:"ownerId,omitempty"`
}

// GameStateMessage is the room-scoped snapshot broadcast every tick
type GameStateMessage struct {
	Type       string           `json:"type"`
	Robots     []RobotState     `json:"robots"`
	Junk       []JunkState      `json:"junk"`
	Structures []StructureState `json:"structures"`
	Timestamp  int64            `json:"timestamp"`
}

// LeaderboardRow is one entry in the shared top list
type LeaderboardRow struct {
	Nickname string  `json:"nickname"`
	Score    float64 `json:"score"`
}

// LeaderboardSelf is the personal rank attached per client
type LeaderboardSelf struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

// LeaderboardMessage is broadcast at the slow leaderboard rate
type LeaderboardMessage struct {
	Type string           `json:"type"`
	Top  []LeaderboardRow `json:"top"`
	Self *LeaderboardSelf `json:"self,omitempty"`
}

// DestroyedMessage tells a client its robot was eaten
type DestroyedMessage struct {
	Type  string  `json:"type"`
	Score float64 `json:"score"`
	By    string  `json:"by"`
}

// PlayerLeftMessage tells room occupants a robot disconnected
type PlayerLeftMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ErrorMessage reports a request error to the caller
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthOKMessage confirms register/login/auth
type AuthOKMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ProfileDataMessage carries lifetime account stats
type ProfileDataMessage struct {
	Type          string  `json:"type"`
	Username      string  `json:"username"`
	Kills         int     `json:"kills"`
	Deaths        int     `json:"deaths"`
	PeakMass      float64 `json:"peakMass"`
	JunkCollected int     `json:"junkCollected"`
	Playtime      float64 `json:"playtime"`
}

// AchievementMessage announces a newly unlocked achievement
type AchievementMessage struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
