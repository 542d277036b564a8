package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000

	TickRate        = 60 // simulation ticks per second
	TickDuration    = time.Second / TickRate
	LeaderboardRate = time.Second // leaderboard/maintenance interval
	LeaderboardSize = 10
)

// Hub owns the connections, their sessions, and the two clocks: the
// fast simulation tick and the slow leaderboard/maintenance tick. All
// world mutation goes through the RoomManager it holds.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      *RoomManager
	stop       chan struct{}
	stopOnce   sync.Once

	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	// Accounts & instrumentation; all optional (nil without a DB)
	db        *DB
	auth      *Auth
	analytics *Analytics
}

// NewHub creates a Hub. db may be nil, in which case accounts,
// achievements and analytics are disabled and everyone plays as guest.
func NewHub(db *DB) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		rooms:      NewRoomManager(),
		stop:       make(chan struct{}),
		ipConns:    make(map[string]int),
		db:         db,
	}
	if db != nil {
		h.auth = NewAuth(db)
		h.analytics = NewAnalytics(db)
	}
	return h
}

// CanAccept reports whether a new connection from ip is allowed
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

// TrackConnect records an accepted connection
func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

// TrackDisconnect records a closed connection
func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.track(EvtSessionStart, 0, "", "")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.dropRobot(client, false)
			h.track(EvtSessionEnd, client.authPlayerID(), "", "")

		case <-h.stop:
			return
		}
	}
}

// Stop halts the hub's clocks and registry loop
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
	if h.analytics != nil {
		h.analytics.Stop()
	}
}

// RunSimulation drives the fixed-rate simulation clock. Each tick
// advances every room, notifies destroyed robots' owners and fans the
// room snapshot out to the room's connections.
func (h *Hub) RunSimulation() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, update := range h.rooms.Tick(time.Now()) {
				for _, d := range update.Destructions {
					h.notifyDestroyed(update.RoomID, d)
				}
				h.broadcastState(update.RoomID, update.State)
			}
		case <-h.stop:
			return
		}
	}
}

// RunLeaderboard drives the slow clock: per-room mass rankings with a
// personalized rank per client, plus room reaping and live metrics.
func (h *Hub) RunLeaderboard() {
	ticker := time.NewTicker(LeaderboardRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sendLeaderboards()
			for _, id := range h.rooms.ReapEmptyRooms(time.Now()) {
				h.track(EvtRoomReaped, 0, id, "")
			}
			if h.analytics != nil {
				h.mu.RLock()
				peers := len(h.clients)
				h.mu.RUnlock()
				h.analytics.SetConcurrentPeers(peers)
				h.analytics.SetActiveRooms(h.rooms.RoomCount())
			}
		case <-h.stop:
			return
		}
	}
}

func (h *Hub) sendLeaderboards() {
	boards := h.rooms.Leaderboards()

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		robotID, roomID, _ := client.session()
		if robotID == "" || roomID == "" {
			continue
		}
		ranked, ok := boards[roomID]
		if !ok {
			continue
		}
		msg := LeaderboardMessage{Type: MsgLeaderboard}
		top := len(ranked)
		if top > LeaderboardSize {
			top = LeaderboardSize
		}
		msg.Top = make([]LeaderboardRow, 0, top)
		for _, r := range ranked[:top] {
			msg.Top = append(msg.Top, LeaderboardRow{Nickname: r.Nickname, Score: r.Mass})
		}
		for i, r := range ranked {
			if r.RobotID == robotID {
				msg.Self = &LeaderboardSelf{Rank: i + 1, Score: r.Mass}
				break
			}
		}
		if msg.Self == nil {
			continue // robot destroyed since the ranking was taken
		}
		client.SendJSON(msg)
	}
}

// broadcastState sends a snapshot to every connection bound to the
// room: JSON text by default, msgpack binary for clients that opted in.
// Each encoding is marshaled at most once per tick.
func (h *Hub) broadcastState(roomID string, state GameStateMessage) {
	var jsonData, binData []byte

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		_, boundRoom, binary := client.session()
		if boundRoom != roomID {
			continue
		}
		if binary {
			if binData == nil {
				var err error
				if binData, err = msgpack.Marshal(state); err != nil {
					log.Printf("msgpack marshal error: %v", err)
					continue
				}
			}
			client.SendBinary(binData)
		} else {
			if jsonData == nil {
				var err error
				if jsonData, err = json.Marshal(state); err != nil {
					log.Printf("marshal error: %v", err)
					return
				}
			}
			client.SendRaw(jsonData)
		}
	}
}

// broadcastRoom sends a JSON message to every connection bound to the room
func (h *Hub) broadcastRoom(roomID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		_, boundRoom, _ := client.session()
		if boundRoom == roomID {
			client.SendRaw(data)
		}
	}
}

// notifyDestroyed tells the losing connection its robot was eaten and
// folds the dead robot's life into its account stats.
func (h *Hub) notifyDestroyed(roomID string, d Destruction) {
	h.track(EvtRobotDestroyed, 0, roomID, "")

	var victim *Client
	h.mu.RLock()
	for client := range h.clients {
		robotID, _, _ := client.session()
		if robotID == d.DestroyedID {
			victim = client
			break
		}
	}
	h.mu.RUnlock()
	if victim == nil {
		return // bot or already disconnected
	}

	victim.SendJSON(DestroyedMessage{Type: MsgDestroyed, Score: d.Mass, By: d.AttackerID})
	h.flushLife(victim, d.Stats, true)
	victim.clearSession()
}

// dropRobot removes a disconnecting client's robot from its room and
// notifies the remaining occupants.
func (h *Hub) dropRobot(client *Client, died bool) {
	robotID, roomID, _ := client.session()
	if robotID == "" || roomID == "" {
		return
	}
	stats, removed := h.rooms.RemoveRobot(roomID, robotID)
	client.clearSession()
	if !removed {
		return // already destroyed during a tick
	}
	h.broadcastRoom(roomID, PlayerLeftMessage{Type: MsgPlayerLeft, ID: robotID})
	h.flushLife(client, stats, died)
}

// flushLife persists one robot life for authenticated players and
// pushes any achievements the flush unlocked.
func (h *Hub) flushLife(client *Client, stats SessionStats, died bool) {
	pid := client.authPlayerID()
	if pid == 0 || h.db == nil {
		return
	}
	playtime := time.Since(client.spawnedAt()).Seconds()
	if err := h.db.FlushLifeStats(pid, stats, died, playtime); err != nil {
		log.Printf("stats flush error: %v", err)
		return
	}
	for _, def := range CheckAchievements(h.db, pid) {
		client.SendJSON(AchievementMessage{
			Type:        MsgAchievement,
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
		})
	}
}

// track forwards to analytics when enabled
func (h *Hub) track(evtType string, playerID int64, roomID, data string) {
	if h.analytics != nil {
		h.analytics.Track(evtType, playerID, roomID, data)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
