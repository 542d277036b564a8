package main

import (
	"encoding/json"
	"testing"
)

func TestPrivateRoomUnmarshalBool(t *testing.T) {
	var msg JoinMessage
	raw := []byte(`{"nickname":"A","privateRoom":true}`)
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if !msg.PrivateRoom.Create {
		t.Error("privateRoom:true should request creation")
	}
	if msg.PrivateRoom.RoomID != "" {
		t.Errorf("roomID = %q, want empty", msg.PrivateRoom.RoomID)
	}
}

func TestPrivateRoomUnmarshalString(t *testing.T) {
	var msg JoinMessage
	raw := []byte(`{"nickname":"A","privateRoom":"abc-123"}`)
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.PrivateRoom.Create {
		t.Error("a room-id string should not request creation")
	}
	if msg.PrivateRoom.RoomID != "abc-123" {
		t.Errorf("roomID = %q, want abc-123", msg.PrivateRoom.RoomID)
	}
}

func TestPrivateRoomUnmarshalAbsent(t *testing.T) {
	var msg JoinMessage
	raw := []byte(`{"nickname":"A"}`)
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.PrivateRoom.Create || msg.PrivateRoom.RoomID != "" {
		t.Errorf("absent privateRoom should mean public, got %+v", msg.PrivateRoom)
	}
}

func TestPrivateRoomUnmarshalGarbage(t *testing.T) {
	var msg JoinMessage
	// Unexpected shapes are ignored rather than failing the join
	raw := []byte(`{"nickname":"A","privateRoom":42}`)
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("numeric privateRoom should be ignored, got error: %v", err)
	}
	if msg.PrivateRoom.Create || msg.PrivateRoom.RoomID != "" {
		t.Errorf("numeric privateRoom should mean public, got %+v", msg.PrivateRoom)
	}
}

func TestGameStateMessageJSON(t *testing.T) {
	room := NewRoom("test", ModeFFA, false)
	robot := NewRobot("Nick", room)
	room.Robots[robot.ID] = robot
	junk := NewJunk(Position{X: 10, Y: 20}, 2, JunkMetal)
	room.Junk[junk.ID] = junk

	raw, err := json.Marshal(room.Snapshot(12345))
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != MsgGameState {
		t.Errorf("type = %v, want %s", m["type"], MsgGameState)
	}
	if m["timestamp"].(float64) != 12345 {
		t.Errorf("timestamp = %v, want 12345", m["timestamp"])
	}
	robots := m["robots"].([]interface{})
	if len(robots) != 1 {
		t.Fatalf("robots = %d, want 1", len(robots))
	}
	first := robots[0].(map[string]interface{})
	if first["nickname"] != "Nick" {
		t.Errorf("nickname = %v, want Nick", first["nickname"])
	}
	if m["structures"] == nil {
		t.Error("structures should marshal as an empty array, not null")
	}
}

func TestLeaderboardMessageJSON(t *testing.T) {
	msg := LeaderboardMessage{
		Type: MsgLeaderboard,
		Top:  []LeaderboardRow{{Nickname: "A", Score: 50.5}},
		Self: &LeaderboardSelf{Rank: 3, Score: 12},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	json.Unmarshal(raw, &m)
	top := m["top"].([]interface{})
	row := top[0].(map[string]interface{})
	if row["score"].(float64) != 50.5 {
		t.Errorf("score = %v, want 50.5", row["score"])
	}
	self := m["self"].(map[string]interface{})
	if self["rank"].(float64) != 3 {
		t.Errorf("rank = %v, want 3", self["rank"])
	}
}

func TestUnknownMessageTypeDropped(t *testing.T) {
	var probe typeProbe
	if err := json.Unmarshal([]byte(`{"type":"fly"}`), &probe); err != nil {
		t.Fatal(err)
	}
	switch probe.Type {
	case MsgJoin, MsgMove, MsgActivateTool, MsgDropJunk, MsgConstructBase, MsgEvolve:
		t.Errorf("type %q should not match any known client message", probe.Type)
	}
}
