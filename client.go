package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // move messages arrive at input rate
	maxNicknameLen    = 16
)

// Client represents a WebSocket connection and its session binding.
// A connection with no robot id is pre-game and can only join.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	// Session state, written by the read pump and read by the hub's
	// clock goroutines during fan-out.
	sessMu     sync.Mutex
	robotID    string
	roomID     string
	binary     bool // msgpack state snapshots
	spawnedAtT time.Time
	authPID    int64  // 0 = unauthenticated/guest
	authUser   string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// session returns the current binding
func (c *Client) session() (robotID, roomID string, binary bool) {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.robotID, c.roomID, c.binary
}

func (c *Client) bindSession(robotID, roomID string, binary bool) {
	c.sessMu.Lock()
	c.robotID = robotID
	c.roomID = roomID
	c.binary = binary
	c.spawnedAtT = time.Now()
	c.sessMu.Unlock()
}

func (c *Client) clearSession() {
	c.sessMu.Lock()
	c.robotID = ""
	c.roomID = ""
	c.sessMu.Unlock()
}

func (c *Client) authPlayerID() int64 {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.authPID
}

func (c *Client) spawnedAt() time.Time {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.spawnedAtT
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(message string) {
	c.SendJSON(ErrorMessage{Type: MsgError, Message: message})
}

// handleMessage routes an incoming frame. Unknown types are dropped,
// malformed JSON is logged and dropped; the connection stays open.
func (c *Client) handleMessage(raw []byte) {
	var probe typeProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch probe.Type {
	case MsgJoin:
		c.handleJoin(raw)
	case MsgMove:
		c.handleMove(raw)
	case MsgActivateTool:
		c.handleActivateTool(raw)
	case MsgDropJunk:
		c.handleDropJunk()
	case MsgConstructBase:
		c.handleConstructBase(raw)
	case MsgEvolve:
		c.handleEvolve(raw)
	case MsgRegister:
		c.handleRegister(raw)
	case MsgLogin:
		c.handleLogin(raw)
	case MsgAuth:
		c.handleAuth(raw)
	case MsgProfile:
		c.handleProfile()
	}
}

func (c *Client) handleJoin(raw []byte) {
	var msg JoinMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	nickname := msg.Nickname
	if nickname == "" {
		nickname = "Robot"
	}
	if len(nickname) > maxNicknameLen {
		nickname = nickname[:maxNicknameLen]
	}
	mode := msg.Mode
	if mode != ModeFFA && mode != ModeTeams && mode != ModeSandbox {
		mode = ModeFFA
	}

	var roomID string
	switch {
	case msg.PrivateRoom.Create:
		roomID = c.hub.rooms.CreatePrivateRoom(mode)
		c.hub.track(EvtRoomCreated, c.authPlayerID(), roomID, "")
	case msg.PrivateRoom.RoomID != "":
		roomID = msg.PrivateRoom.RoomID
		if !c.hub.rooms.RoomExists(roomID) {
			c.sendError("Room not found")
			return
		}
	default:
		roomID = PublicRoomID
	}

	// A rejoin abandons the previous robot
	c.hub.dropRobot(c, false)

	robotID, mass, ok := c.hub.rooms.CreateRobot(nickname, roomID)
	if !ok {
		c.sendError("Room not available")
		return
	}
	c.bindSession(robotID, roomID, msg.Binary)
	c.hub.track(EvtRobotSpawn, c.authPlayerID(), roomID, "")

	c.SendJSON(SpawnConfirmMessage{
		Type:        MsgSpawnConfirm,
		ID:          robotID,
		Nickname:    nickname,
		RoomID:      roomID,
		InitialMass: mass,
	})
	log.Printf("player %s joined room %s", nickname, roomID)
}

func (c *Client) handleMove(raw []byte) {
	robotID, roomID, _ := c.session()
	if robotID == "" || roomID == "" {
		return
	}
	var msg MoveMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.hub.rooms.HandleMove(roomID, robotID, msg.Direction)
}

func (c *Client) handleActivateTool(raw []byte) {
	robotID, roomID, _ := c.session()
	if robotID == "" || roomID == "" {
		return
	}
	var msg ActivateToolMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	c.hub.rooms.ActivateTool(roomID, robotID, msg.Tool, msg.Target)
}

func (c *Client) handleDropJunk() {
	robotID, roomID, _ := c.session()
	if robotID == "" || roomID == "" {
		return
	}
	c.hub.rooms.DropJunk(roomID, robotID)
}

func (c *Client) handleConstructBase(raw []byte) {
	robotID, roomID, _ := c.session()
	if robotID == "" || roomID == "" {
		return
	}
	var msg ConstructBaseMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.hub.rooms.ConstructBase(roomID, robotID, msg.Position) {
		c.hub.track(EvtBaseBuilt, c.authPlayerID(), roomID, "")
	}
}

func (c *Client) handleEvolve(raw []byte) {
	robotID, roomID, _ := c.session()
	if robotID == "" || roomID == "" {
		return
	}
	var msg EvolveMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if c.hub.rooms.Evolve(roomID, robotID, msg.Upgrade) {
		c.hub.track(EvtEvolve, c.authPlayerID(), roomID, string(msg.Upgrade))
	}
}

func (c *Client) handleRegister(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg RegisterMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.setAuth(id, msg.Username)
	c.SendJSON(AuthOKMessage{Type: MsgAuthOK, Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleLogin(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg LoginMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.setAuth(id, msg.Username)
	c.SendJSON(AuthOKMessage{Type: MsgAuthOK, Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleAuth(raw []byte) {
	if c.hub.auth == nil {
		return
	}
	var msg AuthMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.setAuth(id, username)
	c.SendJSON(AuthOKMessage{Type: MsgAuthOK, Token: msg.Token, Username: username, PlayerID: id})
}

func (c *Client) handleProfile() {
	pid := c.authPlayerID()
	if c.hub.db == nil || pid == 0 {
		c.sendError("not authenticated")
		return
	}
	stats, err := c.hub.db.GetStats(pid)
	if err != nil || stats == nil {
		c.sendError("profile not found")
		return
	}
	c.sessMu.Lock()
	username := c.authUser
	c.sessMu.Unlock()
	c.SendJSON(ProfileDataMessage{
		Type:          MsgProfileData,
		Username:      username,
		Kills:         stats.Kills,
		Deaths:        stats.Deaths,
		PeakMass:      stats.PeakMass,
		JunkCollected: stats.JunkCollected,
		Playtime:      stats.Playtime,
	})
}

func (c *Client) setAuth(id int64, username string) {
	c.sessMu.Lock()
	c.authPID = id
	c.authUser = username
	c.sessMu.Unlock()
}
